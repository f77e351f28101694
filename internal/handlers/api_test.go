package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"retention-dashboard/internal/models"
	"retention-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAnalytics() *services.Analytics {
	a := services.NewAnalytics(nil, 0, testLogger())
	a.SetRows([]models.RawRow{
		{
			models.ColDate: "2024-01-10", models.ColCustomerID: "c1",
			models.ColOrderIndex: "1", models.ColProduct: "ProdA",
			models.ColShop: "Shop1", models.ColTotalSales: "40", models.ColOrderName: "#1",
		},
		{
			models.ColDate: "2024-01-20", models.ColCustomerID: "c1",
			models.ColOrderIndex: "2", models.ColProduct: "ProdB",
			models.ColShop: "Shop1", models.ColTotalSales: "60", models.ColOrderName: "#2",
		},
		{
			models.ColDate: "2024-01-15", models.ColCustomerID: "c2",
			models.ColOrderIndex: "1", models.ColProduct: "ProdA",
			models.ColShop: "Shop2", models.ColTotalSales: "30", models.ColOrderName: "#3",
		},
	})
	return a
}

type dataEnvelope struct {
	Success bool          `json:"success"`
	Data    models.Report `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHandleData(t *testing.T) {
	h := NewAPIHandlers(testAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	w := httptest.NewRecorder()
	h.HandleData(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", cc)
	}

	var env dataEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success {
		t.Error("success = false, want true")
	}
	if len(env.Data.Shops) != 3 { // All, Shop1, Shop2
		t.Errorf("Shops = %v, want 3 entries", env.Data.Shops)
	}
	if _, ok := env.Data.Results["All"]; !ok {
		t.Error("missing All slice in results")
	}
}

func TestHandleData_ShopFilter(t *testing.T) {
	h := NewAPIHandlers(testAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/data?shop=Shop1", nil)
	w := httptest.NewRecorder()
	h.HandleData(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var env dataEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data.Results) != 1 {
		t.Errorf("results = %d slices, want 1", len(env.Data.Results))
	}
	if _, ok := env.Data.Results["Shop1"]; !ok {
		t.Error("missing Shop1 slice")
	}
	// Shop list stays complete so the client can keep offering options.
	if len(env.Data.Shops) != 3 {
		t.Errorf("Shops = %v, want full list", env.Data.Shops)
	}
}

func TestHandleData_UnknownShop(t *testing.T) {
	h := NewAPIHandlers(testAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/data?shop=Nope", nil)
	w := httptest.NewRecorder()
	h.HandleData(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var env dataEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Success {
		t.Error("success = true, want false")
	}
	if env.Error == nil || env.Error.Code != "BAD_REQUEST" {
		t.Errorf("error = %+v, want BAD_REQUEST", env.Error)
	}
}

func TestHandleData_SourceUnavailable(t *testing.T) {
	// No injected rows and no source: the analytics layer fails the fetch.
	a := services.NewAnalytics(nil, 0, testLogger())
	h := NewAPIHandlers(a, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	w := httptest.NewRecorder()
	h.HandleData(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewAPIHandlers(testAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var env struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", env.Data["status"])
	}
}

func TestHandleStats(t *testing.T) {
	h := NewAPIHandlers(testAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data["cached_rows"] != float64(3) {
		t.Errorf("cached_rows = %v, want 3", env.Data["cached_rows"])
	}
}
