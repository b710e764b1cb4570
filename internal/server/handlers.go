package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pricetag-studio/internal/ingest"
	"pricetag-studio/internal/pricing"
	"pricetag-studio/internal/render"
	"pricetag-studio/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// loadSession resolves the {sessionID} route parameter. A missing session
// answers 404 and returns nil.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) *pricing.Session {
	id := chi.URLParam(r, "sessionID")
	session, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found")
			return nil
		}
		s.logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil
	}
	return session
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, session *pricing.Session) bool {
	if err := s.store.Save(r.Context(), storage.KindWeb, session); err != nil {
		s.logger.Error("Failed to save session", zap.String("session_id", session.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to save session")
		return false
	}
	return true
}

func itemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := pricing.NewSession(uuid.NewString())
	if !s.saveSession(w, r, session) {
		return
	}
	s.writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.logger.Error("Failed to delete session", zap.String("session_id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importReport struct {
	Imported          int               `json:"imported"`
	Skipped           []ingest.RowError `json:"skipped,omitempty"`
	HasTableDesigns   bool              `json:"hasTableDesigns"`
	HasTableDiscounts bool              `json:"hasTableDiscounts"`
}

func (s *Server) applyImport(w http.ResponseWriter, r *http.Request, session *pricing.Session, res *ingest.Result) {
	session.ApplyImport(res.Items, res.HasTableDesigns, res.HasTableDiscounts)
	if !s.saveSession(w, r, session) {
		return
	}
	s.writeJSON(w, http.StatusOK, importReport{
		Imported:          len(res.Items),
		Skipped:           res.Skipped,
		HasTableDesigns:   res.HasTableDesigns,
		HasTableDiscounts: res.HasTableDiscounts,
	})
}

func (s *Server) handleImportExcel(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	res, err := ingest.ParseWorkbook(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to parse workbook")
		return
	}
	s.applyImport(w, r, session, res)
}

type sheetsImportRequest struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Range         string `json:"range"`
}

func (s *Server) handleImportSheets(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		s.writeError(w, http.StatusServiceUnavailable, "google sheets import is not configured")
		return
	}
	session := s.loadSession(w, r)
	if session == nil {
		return
	}

	var req sheetsImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SpreadsheetID == "" {
		s.writeError(w, http.StatusBadRequest, "spreadsheetId is required")
		return
	}

	res, err := s.sheets.Import(r.Context(), req.SpreadsheetID, req.Range)
	if err != nil {
		s.logger.Error("Sheets import failed", zap.String("spreadsheet_id", req.SpreadsheetID), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "failed to fetch spreadsheet")
		return
	}
	s.applyImport(w, r, session, res)
}

type addItemRequest struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	if session.Dirty() {
		session.Recompute()
	}
	s.writeJSON(w, http.StatusOK, session.Items)
}

type replaceItemRequest struct {
	Label       string  `json:"label"`
	Price       float64 `json:"price"`
	DesignType  string  `json:"designType"`
	HasDiscount *bool   `json:"hasDiscount"`
	PriceFor2   float64 `json:"priceFor2"`
	PriceFrom3  float64 `json:"priceFrom3"`
}

// handleReplaceItems swaps the whole item list in one call, the manual
// counterpart of a table import. Rows carrying per-row design or discount
// values turn the matching table flags on.
func (s *Server) handleReplaceItems(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}

	var rows []replaceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]pricing.Item, 0, len(rows))
	hasDesigns, hasDiscounts := false, false
	for i, row := range rows {
		row.Label = strings.TrimSpace(row.Label)
		if row.Label == "" {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("row %d: label is required", i+1))
			return
		}
		if row.Price <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("row %d: price must be positive", i+1))
			return
		}
		if row.DesignType != "" {
			hasDesigns = true
		}
		if row.HasDiscount != nil {
			hasDiscounts = true
		}
		items = append(items, pricing.Item{
			Label:       row.Label,
			Price:       row.Price,
			DesignType:  strings.ToLower(strings.TrimSpace(row.DesignType)),
			HasDiscount: row.HasDiscount,
			PriceFor2:   row.PriceFor2,
			PriceFrom3:  row.PriceFrom3,
		})
	}

	session.ApplyImport(items, hasDesigns, hasDiscounts)
	if !s.saveSession(w, r, session) {
		return
	}
	s.writeJSON(w, http.StatusOK, session.Items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		s.writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	if req.Price <= 0 {
		s.writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	item := session.AddItem(req.Label, req.Price)
	if !s.saveSession(w, r, session) {
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

// handleUpdateItem applies a partial item edit. Fields absent from the
// body stay untouched; "hasDiscount": null clears the per-row override.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var patch pricing.ItemPatch
	if err := decodePatch(raw, &patch); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !session.UpdateItem(id, patch) {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if !s.saveSession(w, r, session) {
		return
	}
	item, _ := session.Item(id)
	s.writeJSON(w, http.StatusOK, item)
}

func decodePatch(raw map[string]json.RawMessage, patch *pricing.ItemPatch) error {
	if v, ok := raw["label"]; ok {
		if err := json.Unmarshal(v, &patch.Label); err != nil || patch.Label == nil || strings.TrimSpace(*patch.Label) == "" {
			return errors.New("label must be a non-empty string")
		}
	}
	if v, ok := raw["price"]; ok {
		if err := json.Unmarshal(v, &patch.Price); err != nil || patch.Price == nil || *patch.Price <= 0 {
			return errors.New("price must be positive")
		}
	}
	if v, ok := raw["designType"]; ok {
		if err := json.Unmarshal(v, &patch.DesignType); err != nil || patch.DesignType == nil {
			return errors.New("designType must be a string")
		}
	}
	if v, ok := raw["hasDiscount"]; ok {
		var flag *bool
		if err := json.Unmarshal(v, &flag); err != nil {
			return errors.New("hasDiscount must be a boolean or null")
		}
		patch.HasDiscount = &flag
	}
	if v, ok := raw["priceFor2"]; ok {
		if err := json.Unmarshal(v, &patch.PriceFor2); err != nil || patch.PriceFor2 == nil {
			return errors.New("priceFor2 must be a number")
		}
	}
	if v, ok := raw["priceFrom3"]; ok {
		if err := json.Unmarshal(v, &patch.PriceFrom3); err != nil || patch.PriceFrom3 == nil {
			return errors.New("priceFrom3 must be a number")
		}
	}
	return nil
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if !session.DeleteItem(id) {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if !s.saveSession(w, r, session) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearItems(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	session.Clear()
	if !s.saveSession(w, r, session) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, session.Settings)
}

func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}

	next := session.Settings
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if next.DiscountAmount < 0 {
		s.writeError(w, http.StatusBadRequest, "discountAmount must not be negative")
		return
	}
	if next.MaxDiscountPercent < 0 || next.MaxDiscountPercent > 100 {
		s.writeError(w, http.StatusBadRequest, "maxDiscountPercent must be between 0 and 100")
		return
	}

	session.SetSettings(next)
	if !s.saveSession(w, r, session) {
		return
	}
	s.writeJSON(w, http.StatusOK, session.Settings)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	session.ResetSettings()
	if !s.saveSession(w, r, session) {
		return
	}
	s.writeJSON(w, http.StatusOK, session.Settings)
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.themes)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, session.RenderAll(s.themes))
}

func (s *Server) handleTagSVG(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	params, ok := session.RenderItem(id, s.themes)
	if !ok {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	_, _ = w.Write([]byte(render.TagSVG(params)))
}

func (s *Server) handlePrintPage(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	html, err := render.PrintHTML(session.RenderAll(s.themes))
	if err != nil {
		s.logger.Error("Failed to render print page", zap.String("session_id", session.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to render print page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) handlePreviewTag(w http.ResponseWriter, r *http.Request) {
	params := render.ParamsFromQuery(r.URL.Query())
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	_, _ = w.Write([]byte(render.TagSVG(params)))
}

func (s *Server) printURL(sessionID string) string {
	return strings.TrimRight(s.baseURL, "/") + "/print/" + sessionID
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if s.chrome == nil {
		s.writeError(w, http.StatusServiceUnavailable, "pdf rendering is not configured")
		return
	}
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	pdf, err := s.chrome.GeneratePDF(r.Context(), s.printURL(session.ID))
	if err != nil {
		s.logger.Error("PDF generation failed", zap.String("session_id", session.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to generate pdf")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="pricetags.pdf"`)
	_, _ = w.Write(pdf)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	if s.chrome == nil {
		s.writeError(w, http.StatusServiceUnavailable, "png rendering is not configured")
		return
	}
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	png, err := s.chrome.GeneratePNG(r.Context(), s.printURL(session.ID))
	if err != nil {
		s.logger.Error("PNG generation failed", zap.String("session_id", session.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to generate png")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="pricetags.png"`)
	_, _ = w.Write(png)
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	session := s.loadSession(w, r)
	if session == nil {
		return
	}
	if session.Dirty() {
		session.Recompute()
	}
	data, err := storage.ExportItemsToExcel(session)
	if err != nil {
		s.logger.Error("Excel export failed", zap.String("session_id", session.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to export items")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pricetags.xlsx"`)
	_, _ = w.Write(data)
}
