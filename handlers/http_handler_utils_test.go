package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/interfaces"
	"github.com/giygas/medicines-api/query"
	"github.com/giygas/medicines-api/validation"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

const csvHeader = "id,name,price(₹),Is_discontinued,manufacturer_name,type,pack_size_label,short_composition1,short_composition2\n"

// TestDataFactory creates consistent test data across all tests
type TestDataFactory struct{}

func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// CreateRows returns the CSV rows of a small but realistic dataset
func (f *TestDataFactory) CreateRows() []string {
	return []string{
		"1,Panacea 500,12.5,FALSE,Cipla,allopathy,strip of 10 tablets,Paracetamol (500mg),",
		"2,Panadol,8.0,FALSE,GSK,allopathy,strip of 15 tablets,Paracetamol (650mg),Caffeine (50mg)",
		"3,Glycomet 500,NA,FALSE,Cipla,allopathy,strip of 10 tablets,Metformin (500mg),",
		"4,Amlokind 5,30,FALSE,Mankind Pharma,allopathy,strip of 10 tablets,Amlodipine (5mg),",
		"5,Telma 40,200,TRUE,Glenmark,allopathy,strip of 15 tablets,Telmisartan (40mg),Amlodipine (5mg)",
		"6,Voveran 50,45.25,FALSE,Novartis,allopathy,strip of 10 tablets,Diclofenac (50mg),",
		"7,Dolo 650,30,FALSE,Micro Labs,allopathy,strip of 15 tablets,Paracetamol (650mg),",
	}
}

// CreateGeneratedRows returns count rows sharing one manufacturer and composition
func (f *TestDataFactory) CreateGeneratedRows(count int, manufacturer, composition string) []string {
	rows := make([]string, count)
	for i := 0; i < count; i++ {
		rows[i] = fmt.Sprintf("%d,Generated %03d,%d,FALSE,%s,allopathy,strip,%s,", 1000+i, i, i+1, manufacturer, composition)
	}
	return rows
}

// CreateDataset parses rows under the standard header
func (f *TestDataFactory) CreateDataset(t *testing.T, rows []string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse(strings.NewReader(csvHeader + strings.Join(rows, "\n") + "\n"))
	if err != nil {
		t.Fatalf("Failed to parse test dataset: %v", err)
	}
	return ds
}

// ============================================================================
// MOCK DATA STORE
// ============================================================================

// MockDataStore implements interfaces.DataStore over a fixed dataset
type MockDataStore struct {
	dataset         *dataset.Dataset
	loading         bool
	loadedAt        time.Time
	loadErr         error
	serverStartTime time.Time
}

var _ interfaces.DataStore = (*MockDataStore)(nil)

func (m *MockDataStore) GetDataset() (*dataset.Dataset, bool) {
	return m.dataset, m.dataset != nil
}

func (m *MockDataStore) GetEngine() (*query.Engine, error) {
	if m.dataset == nil {
		return nil, fmt.Errorf("data not loaded")
	}
	return query.New(m.dataset), nil
}

func (m *MockDataStore) IsLoaded() bool {
	return m.dataset != nil
}

func (m *MockDataStore) IsLoading() bool {
	return m.loading
}

func (m *MockDataStore) GetLoadedAt() time.Time {
	return m.loadedAt
}

func (m *MockDataStore) GetLoadError() error {
	return m.loadErr
}

func (m *MockDataStore) GetServerStartTime() time.Time {
	return m.serverStartTime
}

// MockDataStoreBuilder provides fluent interface for building mock data stores
type MockDataStoreBuilder struct {
	mock *MockDataStore
}

func NewMockDataStoreBuilder() *MockDataStoreBuilder {
	return &MockDataStoreBuilder{
		mock: &MockDataStore{
			serverStartTime: time.Now().Add(-time.Minute),
		},
	}
}

func (b *MockDataStoreBuilder) WithDataset(ds *dataset.Dataset) *MockDataStoreBuilder {
	b.mock.dataset = ds
	b.mock.loadedAt = time.Now()
	return b
}

func (b *MockDataStoreBuilder) WithLoading(loading bool) *MockDataStoreBuilder {
	b.mock.loading = loading
	return b
}

func (b *MockDataStoreBuilder) WithLoadError(err error) *MockDataStoreBuilder {
	b.mock.loadErr = err
	return b
}

func (b *MockDataStoreBuilder) Build() *MockDataStore {
	return b.mock
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler against method and target
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	h.t.Helper()
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	if ct := resp.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		h.t.Errorf("Expected JSON content type, got %q", ct)
	}

	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v (%s)", err, resp.Body.String())
	}
}

// AssertErrorResponse asserts an {"error": message} body with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	h.t.Helper()
	var body map[string]any
	h.AssertJSONResponse(resp, expectedStatus, &body)

	if len(body) != 1 {
		h.t.Errorf("Error response should only carry the error field, got %v", body)
	}
	if expectedMessage != "" && body["error"] != expectedMessage {
		h.t.Errorf("Expected error %q, got %v", expectedMessage, body["error"])
	}
}

func newLoadedHandler(t *testing.T) *HTTPHandlerImpl {
	t.Helper()
	factory := NewTestDataFactory()
	store := NewMockDataStoreBuilder().WithDataset(factory.CreateDataset(t, factory.CreateRows())).Build()
	return NewHTTPHandler(store, validation.NewDataValidator()).(*HTTPHandlerImpl)
}
