package pricing

import "encoding/json"

// Session owns one working set of items plus its settings. A web tab and a
// bot chat each hold their own session; sessions never share state.
//
// Every mutation of a discount input marks the session dirty and triggers
// a full recomputation pass over all items. There is no partial or delta
// recomputation: a rehydrated session is always treated as dirty and
// recomputed before the first render.
type Session struct {
	ID       string   `json:"id"`
	Items    []Item   `json:"items"`
	Settings Settings `json:"settings"`
	NextID   int64    `json:"nextId"`

	dirty bool
}

// NewSession creates an empty session with default settings.
func NewSession(id string) *Session {
	return &Session{
		ID:       id,
		Items:    []Item{},
		Settings: DefaultSettings(),
		NextID:   1,
	}
}

// UnmarshalJSON rehydrates a persisted session. The restored session is
// dirty: persisted discount prices may predate a settings change.
func (s *Session) UnmarshalJSON(data []byte) error {
	type plain Session
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Session(p)
	if s.Items == nil {
		s.Items = []Item{}
	}
	if s.NextID < 1 {
		s.NextID = 1
	}
	s.dirty = true
	return nil
}

// Dirty reports whether discount prices may be stale.
func (s *Session) Dirty() bool { return s.dirty }

// Recompute runs the discount pipeline over every item. Atomic with
// respect to the item list it reads; call sites are single-threaded per
// session.
func (s *Session) Recompute() {
	for i := range s.Items {
		s.Items[i].DiscountPrice = DiscountPriceFor(s.Items[i], s.Settings)
	}
	s.dirty = false
}

// AddItem appends a manually entered item and returns it. IDs come from a
// monotonic per-session counter and are never reused after delete.
func (s *Session) AddItem(label string, price float64) Item {
	item := Item{ID: s.allocID(), Label: label, Price: price}
	s.Items = append(s.Items, item)
	s.markDirty()
	return s.Items[len(s.Items)-1]
}

// ItemPatch carries the mutable fields of an item edit. Nil fields are
// left unchanged.
type ItemPatch struct {
	Label       *string  `json:"label,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	DesignType  *string  `json:"designType,omitempty"`
	HasDiscount **bool   `json:"-"`
	PriceFor2   *float64 `json:"priceFor2,omitempty"`
	PriceFrom3  *float64 `json:"priceFrom3,omitempty"`
}

// UpdateItem applies a patch to the item with the given id. Returns false
// when no such item exists.
func (s *Session) UpdateItem(id int64, patch ItemPatch) bool {
	for i := range s.Items {
		if s.Items[i].ID != id {
			continue
		}
		if patch.Label != nil {
			s.Items[i].Label = *patch.Label
		}
		if patch.Price != nil {
			s.Items[i].Price = *patch.Price
		}
		if patch.DesignType != nil {
			s.Items[i].DesignType = *patch.DesignType
		}
		if patch.HasDiscount != nil {
			s.Items[i].HasDiscount = *patch.HasDiscount
		}
		if patch.PriceFor2 != nil {
			s.Items[i].PriceFor2 = *patch.PriceFor2
		}
		if patch.PriceFrom3 != nil {
			s.Items[i].PriceFrom3 = *patch.PriceFrom3
		}
		s.markDirty()
		return true
	}
	return false
}

// DeleteItem removes the item with the given id. The ID counter does not
// move backwards, so the slot is never reused.
func (s *Session) DeleteItem(id int64) bool {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Item returns the item with the given id, if present.
func (s *Session) Item(id int64) (Item, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Clear drops all items and the table flags that came with them.
func (s *Session) Clear() {
	s.Items = []Item{}
	s.Settings.HasTableDesigns = false
	s.Settings.HasTableDiscounts = false
	s.markDirty()
}

// ApplyImport replaces the item list with imported rows and records
// whether the source carried per-row design/discount columns. Imported
// rows get fresh IDs from the session counter.
func (s *Session) ApplyImport(items []Item, hasTableDesigns, hasTableDiscounts bool) {
	s.Items = make([]Item, 0, len(items))
	for _, item := range items {
		item.ID = s.allocID()
		s.Items = append(s.Items, item)
	}
	s.Settings.HasTableDesigns = hasTableDesigns
	s.Settings.HasTableDiscounts = hasTableDiscounts
	s.markDirty()
}

// SetSettings replaces the settings. The table flags are owned by the
// import step and carried over from the current settings.
func (s *Session) SetSettings(next Settings) {
	next.HasTableDesigns = s.Settings.HasTableDesigns
	next.HasTableDiscounts = s.Settings.HasTableDiscounts
	s.Settings = next
	s.markDirty()
}

// ResetSettings restores default settings, keeping the table flags so a
// re-imported table does not have to be loaded again.
func (s *Session) ResetSettings() {
	s.SetSettings(DefaultSettings())
}

// RenderAll returns the render descriptors for every item, recomputing
// first when the session is dirty.
func (s *Session) RenderAll(themes ThemeSet) []RenderParams {
	if s.dirty {
		s.Recompute()
	}
	return BuildAll(s.Items, themes, s.Settings)
}

// RenderItem returns the descriptor for a single item.
func (s *Session) RenderItem(id int64, themes ThemeSet) (RenderParams, bool) {
	if s.dirty {
		s.Recompute()
	}
	item, ok := s.Item(id)
	if !ok {
		return RenderParams{}, false
	}
	return BuildRenderParams(item, themes, s.Settings), true
}

func (s *Session) allocID() int64 {
	id := s.NextID
	s.NextID++
	return id
}

func (s *Session) markDirty() {
	s.dirty = true
	s.Recompute()
}
