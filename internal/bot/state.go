package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pricetag-studio/pkg/redis"
)

const (
	StepMainMenu       = "main_menu"
	StepItemName       = "item_name"
	StepItemPrice      = "item_price"
	StepEditItem       = "edit_item"
	StepEditPrice      = "edit_price"
	StepDeleteItem     = "delete_item"
	StepSettingsMenu   = "settings_menu"
	StepThemeSelection = "theme_selection"
	StepDiscountAmount = "discount_amount"
	StepDiscountLimit  = "discount_limit"
	StepDiscountText   = "discount_text"
	StepCutLineColor   = "cut_line_color"
)

// UserState is the per-chat dialog position. The item list itself lives
// in the session storage; only the conversation step and the half-entered
// item are kept here.
type UserState struct {
	Step          string `json:"step"`
	PendingLabel  string `json:"pending_label"`
	PendingItemID int64  `json:"pending_item_id"`
}

type StateStorage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStateStorage(redisClient *redis.Client) *StateStorage {
	return &StateStorage{
		redis: redisClient,
		ttl:   24 * time.Hour,
	}
}

func (s *StateStorage) Save(ctx context.Context, chatID int64, state UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := s.redis.SetTTL(ctx, stateKey(chatID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Get returns the chat's dialog state. A chat without saved state starts
// at the main menu.
func (s *StateStorage) Get(ctx context.Context, chatID int64) (UserState, error) {
	data, err := s.redis.Get(ctx, stateKey(chatID))
	if err != nil {
		if redis.IsNil(err) {
			return UserState{Step: StepMainMenu}, nil
		}
		return UserState{}, fmt.Errorf("failed to get state: %w", err)
	}

	var state UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return UserState{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

func (s *StateStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.redis.Del(ctx, stateKey(chatID)); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

func (s *StateStorage) SetStep(ctx context.Context, chatID int64, step string) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.Step = step
	return s.Save(ctx, chatID, state)
}

func (s *StateStorage) SetPendingLabel(ctx context.Context, chatID int64, label string) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.PendingLabel = label
	state.Step = StepItemPrice
	return s.Save(ctx, chatID, state)
}

func (s *StateStorage) SetPendingItem(ctx context.Context, chatID int64, itemID int64) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	state.PendingItemID = itemID
	state.Step = StepEditPrice
	return s.Save(ctx, chatID, state)
}

func stateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}
