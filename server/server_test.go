package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/medicines-api/config"
	"github.com/giygas/medicines-api/data"
	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/handlers"
	"github.com/giygas/medicines-api/validation"
)

const testCSV = `id,name,price(₹),Is_discontinued,manufacturer_name,type,pack_size_label,short_composition1,short_composition2
1,Panacea 500,12.5,FALSE,Cipla,allopathy,strip of 10 tablets,Paracetamol (500mg),
2,Panadol,8.0,FALSE,GSK,allopathy,strip of 15 tablets,Paracetamol (650mg),Caffeine (50mg)
3,Glycomet 500,NA,FALSE,Cipla,allopathy,strip of 10 tablets,Metformin (500mg),
`

func newTestConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Address:           "127.0.0.1",
		Env:               config.EnvTest,
		LogLevel:          "error",
		MaxRequestBody:    1024 * 1024,
		MaxHeaderSize:     1024 * 1024,
		RateLimitRate:     10,
		RateLimitCapacity: 1000,
	}
}

func newLoadedContainer(t *testing.T) *data.DataContainer {
	t.Helper()
	ds, err := dataset.Parse(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	dc := data.NewDataContainer()
	dc.SetServerStartTime(time.Now())
	if err := dc.Publish(ds); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	return dc
}

func newTestServer(t *testing.T, limiter *RateLimiter) *Server {
	t.Helper()
	handler := handlers.NewHTTPHandler(newLoadedContainer(t), validation.NewDataValidator())
	return NewServer(newTestConfig(), handler, limiter)
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t, nil)

	if s.server.Addr != "127.0.0.1:0" {
		t.Errorf("Expected address 127.0.0.1:0, got %s", s.server.Addr)
	}
	if s.server.MaxHeaderBytes != 1024*1024 {
		t.Errorf("Expected MaxHeaderBytes from config, got %d", s.server.MaxHeaderBytes)
	}
	if s.profiling != nil {
		t.Error("Profiling should only run in development")
	}
}

func TestNewServer_DevelopmentProfiling(t *testing.T) {
	cfg := newTestConfig()
	cfg.Env = config.EnvDevelopment
	handler := handlers.NewHTTPHandler(data.NewDataContainer(), validation.NewDataValidator())

	s := NewServer(cfg, handler, nil)
	if s.profiling == nil || s.profiling.Addr != profilingAddr {
		t.Errorf("Expected a profiling server on %s", profilingAddr)
	}
}

func TestRouter_Routes(t *testing.T) {
	router := newTestServer(t, nil).Router()

	tests := []struct {
		name           string
		method         string
		target         string
		expectedStatus int
	}{
		{"manufacturers", http.MethodGet, "/api/manufacturers", http.StatusOK},
		{"paracetamol", http.MethodGet, "/api/paracetamol", http.StatusOK},
		{"price stats", http.MethodGet, "/api/price-stats", http.StatusOK},
		{"diabetes", http.MethodGet, "/api/diabetes", http.StatusOK},
		{"compositions", http.MethodGet, "/api/compositions", http.StatusOK},
		{"summary", http.MethodGet, "/api/summary", http.StatusOK},
		{"search", http.MethodGet, "/api/search?q=pan", http.StatusOK},
		{"suggestions", http.MethodGet, "/api/suggestions?q=pan", http.StatusOK},
		{"companies", http.MethodGet, "/api/companies", http.StatusOK},
		{"filter by company", http.MethodGet, "/api/filter-by-company?company=Cipla", http.StatusOK},
		{"medicine details", http.MethodGet, "/api/medicine-details?name=Panadol", http.StatusOK},
		{"unknown medicine", http.MethodGet, "/api/medicine-details?name=Unknown", http.StatusNotFound},
		{"blood pressure", http.MethodGet, "/api/blood-pressure", http.StatusOK},
		{"diclofenac", http.MethodGet, "/api/diclofenac", http.StatusOK},
		{"complexity", http.MethodGet, "/api/complexity", http.StatusOK},
		{"portfolio", http.MethodGet, "/api/portfolio?company=cip", http.StatusOK},
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/unknown", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/api/summary", http.StatusMethodNotAllowed},
		{"trailing slash", http.MethodGet, "/api/summary/", http.StatusMovedPermanently},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(router, tt.method, tt.target)
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRouter_Summary(t *testing.T) {
	rr := serve(newTestServer(t, nil).Router(), http.MethodGet, "/api/summary")

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["total_medicines"] != float64(3) || body["total_manufacturers"] != float64(2) {
		t.Errorf("Unexpected summary %v", body)
	}
}

func TestRouter_NotLoaded(t *testing.T) {
	handler := handlers.NewHTTPHandler(data.NewDataContainer(), validation.NewDataValidator())
	router := NewServer(newTestConfig(), handler, nil).Router()

	rr := serve(router, http.MethodGet, "/api/summary")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"Data not loaded"}` {
		t.Errorf("Unexpected body %s", rr.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestServer(t, nil).Router()

	serve(router, http.MethodGet, "/api/companies")
	rr := serve(router, http.MethodGet, "/metrics")

	if !strings.Contains(rr.Body.String(), `http_request_total{method="GET",path="/api/companies",status="200"}`) {
		t.Error("Expected the companies request in the exported metrics")
	}
	if !strings.Contains(rr.Body.String(), "dataset_loaded") {
		t.Error("Expected the dataset gauges in the exported metrics")
	}
}

func TestServer_StartShutdown(t *testing.T) {
	s := newTestServer(t, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	// give ListenAndServe a moment to bind
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start should return nil after a graceful shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
