package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pricetag-studio/internal/pricing"
	"pricetag-studio/internal/storage"
)

// memStore round-trips sessions through JSON, so handlers see the same
// rehydrated state they would get from the real cache.
type memStore struct {
	sessions map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string][]byte{}}
}

func (m *memStore) Save(_ context.Context, _ string, session *pricing.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.sessions[session.ID] = payload
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*pricing.Session, error) {
	payload, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	var session pricing.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := newMemStore()
	srv := New(":0", store, pricing.DefaultThemes(), Options{BaseURL: "http://localhost"}, zap.NewNop())
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session pricing.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	require.NotEmpty(t, session.ID)
	return session.ID
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestCreateSessionDefaults(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session pricing.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.Equal(t, pricing.DefaultSettings(), session.Settings)
	assert.Empty(t, session.Items)
}

func TestGetSessionNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/sessions/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddItemAndRenderTags(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items",
		map[string]interface{}{"label": "Молоко", "price": 1299})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item pricing.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, int64(1), item.ID)

	settings := pricing.DefaultSettings()
	settings.Design = true
	put := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/settings", settings)
	put.Body.Close()
	require.Equal(t, http.StatusOK, put.StatusCode)

	tags, err := http.Get(ts.URL + "/api/sessions/" + id + "/tags")
	require.NoError(t, err)
	defer tags.Body.Close()
	require.Equal(t, http.StatusOK, tags.StatusCode)

	var params []pricing.RenderParams
	require.NoError(t, json.NewDecoder(tags.Body).Decode(&params))
	require.Len(t, params, 1)
	assert.Equal(t, "1 299", params[0].BasePrice)
	assert.True(t, params[0].ShowDiscount)
	assert.Equal(t, "1 234", params[0].DiscountPrice)
}

func TestAddItemValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	for _, body := range []map[string]interface{}{
		{"label": "", "price": 100},
		{"label": "Хлеб", "price": 0},
		{"label": "Хлеб", "price": -5},
	} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items", body)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestUpdateItemClearsDiscountOverride(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items",
		map[string]interface{}{"label": "Сыр", "price": 800})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	set := doJSON(t, http.MethodPatch, ts.URL+"/api/sessions/"+id+"/items/1",
		map[string]interface{}{"hasDiscount": true})
	defer set.Body.Close()
	require.Equal(t, http.StatusOK, set.StatusCode)

	var item pricing.Item
	require.NoError(t, json.NewDecoder(set.Body).Decode(&item))
	require.NotNil(t, item.HasDiscount)
	assert.True(t, *item.HasDiscount)

	clear := doJSON(t, http.MethodPatch, ts.URL+"/api/sessions/"+id+"/items/1",
		map[string]interface{}{"hasDiscount": nil})
	defer clear.Body.Close()
	require.Equal(t, http.StatusOK, clear.StatusCode)

	var cleared pricing.Item
	require.NoError(t, json.NewDecoder(clear.Body).Decode(&cleared))
	assert.Nil(t, cleared.HasDiscount)
}

func TestDeleteItemKeepsIDsMonotonic(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	for _, label := range []string{"A", "B"} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items",
			map[string]interface{}{"label": label, "price": 100})
		resp.Body.Close()
	}

	del := doJSON(t, http.MethodDelete, ts.URL+"/api/sessions/"+id+"/items/2", nil)
	del.Body.Close()
	require.Equal(t, http.StatusNoContent, del.StatusCode)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items",
		map[string]interface{}{"label": "C", "price": 100})
	defer resp.Body.Close()
	var item pricing.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, int64(3), item.ID)
}

func TestReplaceItems(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items",
		map[string]interface{}{"label": "Старый", "price": 100})
	resp.Body.Close()

	rows := []map[string]interface{}{
		{"label": "Молоко", "price": 1299, "designType": "sale", "hasDiscount": true},
		{"label": "Хлеб", "price": 80},
	}
	put := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/items", rows)
	defer put.Body.Close()
	require.Equal(t, http.StatusOK, put.StatusCode)

	var items []pricing.Item
	require.NoError(t, json.NewDecoder(put.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, "Молоко", items[0].Label)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, int64(3), items[1].ID)

	settings, err := http.Get(ts.URL + "/api/sessions/" + id + "/settings")
	require.NoError(t, err)
	defer settings.Body.Close()
	var s pricing.Settings
	require.NoError(t, json.NewDecoder(settings.Body).Decode(&s))
	assert.True(t, s.HasTableDesigns)
	assert.True(t, s.HasTableDiscounts)
}

func TestReplaceItemsValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	rows := []map[string]interface{}{
		{"label": "Молоко", "price": 0},
	}
	put := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/items", rows)
	put.Body.Close()
	assert.Equal(t, http.StatusBadRequest, put.StatusCode)
}

func TestSettingsValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	bad := pricing.DefaultSettings()
	bad.MaxDiscountPercent = 150
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/settings", bad)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad = pricing.DefaultSettings()
	bad.DiscountAmount = -1
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/settings", bad)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsKeepTableFlags(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	uploadWorkbook(t, ts, id, [][]interface{}{
		{"Название", "Цена", "Дизайн", "Скидка"},
		{"Молоко", 1299, "sale", "да"},
	})

	next := pricing.DefaultSettings()
	next.DesignType = pricing.DesignTypeTable
	put := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/settings", next)
	defer put.Body.Close()
	require.Equal(t, http.StatusOK, put.StatusCode)

	var saved pricing.Settings
	require.NoError(t, json.NewDecoder(put.Body).Decode(&saved))
	assert.True(t, saved.HasTableDesigns)
	assert.True(t, saved.HasTableDiscounts)
}

func uploadWorkbook(t *testing.T, ts *httptest.Server, id string, rows [][]interface{}) importReport {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var workbook bytes.Buffer
	require.NoError(t, f.Write(&workbook))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "items.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/sessions/"+id+"/import/excel", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report importReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	return report
}

func TestImportExcelReportsSkippedRows(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	report := uploadWorkbook(t, ts, id, [][]interface{}{
		{"Название", "Цена"},
		{"Молоко", 1299},
		{"", 100},
		{"Хлеб", "дорого"},
	})

	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 3, report.Skipped[0].Row)
	assert.Equal(t, 4, report.Skipped[1].Row)
}

func TestImportSheetsUnconfigured(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/import/sheets",
		map[string]interface{}{"spreadsheetId": "abc"})
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestTagSVGEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items",
		map[string]interface{}{"label": "Молоко", "price": 1299})
	resp.Body.Close()

	svg, err := http.Get(ts.URL + "/api/sessions/" + id + "/tags/1/svg")
	require.NoError(t, err)
	defer svg.Body.Close()
	require.Equal(t, http.StatusOK, svg.StatusCode)
	assert.Contains(t, svg.Header.Get("Content-Type"), "image/svg+xml")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(svg.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Молоко")
}

func TestPrintPagePaginates(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	for i := 0; i < 9; i++ {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/items",
			map[string]interface{}{"label": fmt.Sprintf("Товар %d", i+1), "price": 100})
		resp.Body.Close()
	}

	page, err := http.Get(ts.URL + "/print/" + id)
	require.NoError(t, err)
	defer page.Body.Close()
	require.Equal(t, http.StatusOK, page.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(page.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), `class="page"`))
}

func TestPreviewTag(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/preview/tag?label=%D0%A1%D1%8B%D1%80&price=1+299&discount=1+234")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Сыр")
	assert.Contains(t, buf.String(), "1 234")
}

func TestPDFUnconfigured(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp, err := http.Get(ts.URL + "/api/sessions/" + id + "/pdf")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestExportExcelRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	uploadWorkbook(t, ts, id, [][]interface{}{
		{"Название", "Цена", "Скидка"},
		{"Молоко", 1299, "да"},
	})

	resp, err := http.Get(ts.URL + "/api/sessions/" + id + "/export/excel")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Товары")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Молоко", rows[1][0])
	assert.Equal(t, "да", rows[1][4])
}

func TestDeleteSession(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	del := doJSON(t, http.MethodDelete, ts.URL+"/api/sessions/"+id, nil)
	del.Body.Close()
	require.Equal(t, http.StatusNoContent, del.StatusCode)

	resp, err := http.Get(ts.URL + "/api/sessions/" + id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
