package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"flagman/parser/internal/config"
	"flagman/parser/internal/domain"
	"flagman/parser/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// stubClient serves canned crawl data for handler tests.
type stubClient struct{}

func (stubClient) GetSubcategories(_ context.Context, rootURL string) ([]domain.CategoryRef, error) {
	return []domain.CategoryRef{
		{Name: "Вудилища", URL: "https://flagman.ua/c855"},
		{Name: "Котушки", URL: "https://flagman.ua/c861"},
	}, nil
}

func (stubClient) CollectProductURLs(_ context.Context, categoryURL string, _ int) ([]string, error) {
	if categoryURL == "https://flagman.ua/c855" {
		return []string{"https://flagman.ua/p1", "https://flagman.ua/p2"}, nil
	}
	return []string{"https://flagman.ua/p2", "https://flagman.ua/p3"}, nil
}

func (stubClient) GetProductPage(_ context.Context, pageURL string, locale domain.Locale) (*domain.ProductPage, error) {
	sku := "SKU-" + pageURL[len(pageURL)-2:]
	title := "Товар"
	if locale == domain.LocaleUA {
		title = "Товар UA"
	}
	return &domain.ProductPage{
		Title: title,
		Meta:  domain.ProductMeta{SKU: sku, Brand: "Flagman", Price: "100"},
	}, nil
}

func newTestServer() *httptest.Server {
	svc := service.NewService(stubClient{}, config.FlagmanConfig{})
	return httptest.NewServer(NewServer(svc).Router())
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestFullCrawlFlow(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	// Resolve categories
	resp := postJSON(t, srv.URL+"/api/categories", map[string]string{"url": "https://flagman.ua/ru/c800"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cats struct {
		Categories []domain.CategoryRef `json:"categories"`
	}
	decodeBody(t, resp, &cats)
	require.Len(t, cats.Categories, 2)

	// Collect links for both categories: p2 is shared, 3 unique remain
	resp = postJSON(t, srv.URL+"/api/links", map[string]any{
		"urls": []string{"https://flagman.ua/c855", "https://flagman.ua/c861"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var links struct {
		QueueSize int `json:"queue_size"`
	}
	decodeBody(t, resp, &links)
	assert.Equal(t, 3, links.QueueSize)

	// Run the whole queue in one batch
	resp = postJSON(t, srv.URL+"/api/batch", map[string]any{"size": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var batch service.BatchResult
	decodeBody(t, resp, &batch)
	assert.Equal(t, 3, batch.Cursor)
	assert.Equal(t, 3, batch.Inserted)

	// Session status reflects the crawl
	resp, err := http.Get(srv.URL + "/api/session")
	require.NoError(t, err)
	var status sessionStatusResponse
	decodeBody(t, resp, &status)
	assert.Equal(t, 3, status.Records)
	assert.Equal(t, 3, status.Cursor)

	// Download and reopen the export
	resp, err = http.Get(srv.URL + "/api/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Flagman")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestBatchValidationError(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/batch", map[string]any{"size": 10})
	defer resp.Body.Close()
	// Empty queue is a user-input error, not a crash
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportWithoutRecords(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionReset(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/categories", map[string]string{"url": "https://flagman.ua/c800"})
	resp.Body.Close()

	resp, err := http.Post(srv.URL+"/api/session/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/session")
	require.NoError(t, err)
	var status sessionStatusResponse
	decodeBody(t, resp, &status)
	assert.Zero(t, status.Records)
	assert.Empty(t, status.Categories)
}

func TestInvalidBody(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/categories", "application/json", bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
