package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"retention-dashboard/internal/models"
	"retention-dashboard/internal/server"
	"retention-dashboard/internal/services"
)

func newTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(nil, 0, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	a.SetRows([]models.RawRow{
		{
			models.ColDate: "2024-01-10", models.ColCustomerID: "c1",
			models.ColOrderIndex: "1", models.ColProduct: "Espresso Cup",
			models.ColShop: "Shop1", models.ColTotalSales: "40", models.ColOrderName: "#1",
		},
		{
			models.ColDate: "2024-02-10", models.ColCustomerID: "c1",
			models.ColOrderIndex: "2", models.ColProduct: "Filter Kit",
			models.ColShop: "Shop1", models.ColTotalSales: "60", models.ColOrderName: "#2",
		},
		{
			models.ColDate: "2024-01-15", models.ColCustomerID: "c2",
			models.ColOrderIndex: "1", models.ColProduct: "Espresso Cup",
			models.ColShop: "Shop2", models.ColTotalSales: "30", models.ColOrderName: "#3",
		},
	})
	return a
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	pages := &server.PageHandlers{Dashboard: handleDashboard}
	return server.NewServer(newTestAnalytics(), logger, pages)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/data", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_DataResponse(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/data", nil)
	srv.ServeHTTP(w, r)

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data object in response")
	}

	shops, ok := data["shops"].([]any)
	if !ok || len(shops) != 3 {
		t.Errorf("shops = %v, want 3 entries", data["shops"])
	}
	if shops[0] != "All" {
		t.Errorf("shops[0] = %v, want All", shops[0])
	}

	results, ok := data["results"].(map[string]any)
	if !ok {
		t.Fatal("expected results map in response")
	}
	all, ok := results["All"].(map[string]any)
	if !ok {
		t.Fatal("expected All slice in results")
	}
	if got := all["totalCustomers"].(float64); got != 2 {
		t.Errorf("totalCustomers = %v, want 2", got)
	}
	if got := all["repeatRate"].(float64); got != 50.0 {
		t.Errorf("repeatRate = %v, want 50", got)
	}
}

func TestServer_SSERoute(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/sse/report", nil)

	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Errorf("cache-control = %q, should contain 'no-cache'", cc)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/data"},
		{"PUT", "/"},
		{"DELETE", "/health"},
		{"PATCH", "/sse/report"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	handleDashboard(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Customer Retention Dashboard") {
		t.Error("dashboard should contain title")
	}
	if !strings.Contains(body, "@get('/sse/report')") {
		t.Error("dashboard should load the report stream on mount")
	}

	expectedSections := []string{
		"summary-content",
		"monthly-content",
		"cohorts-content",
		"products-content",
		"ltv-content",
	}
	for _, section := range expectedSections {
		if !strings.Contains(body, section) {
			t.Errorf("dashboard should contain '%s'", section)
		}
	}
}
