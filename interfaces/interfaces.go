// Package interfaces defines core abstractions for the medicines API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/query"
)

// DataQualityReport provides a summary of data quality issues found at load
type DataQualityReport struct {
	TotalRecords                int
	RecordsWithoutManufacturer  int
	RecordsWithoutComposition   int
	RecordsWithoutPrice         int
	DiscontinuedRecords         int
	DuplicateIDs                []int    // First 10 only
	DuplicateNames              []string // First 10 only
	DuplicateIDCount            int
	DuplicateNameCount          int
	RecordsWithoutPriceIDs      []int // First 10 only
	RecordsWithoutCompositionID []int // First 10 only
}

// DataStore defines the contract for access to the loaded dataset.
// The store moves once from Unloaded to Loaded and never back.
type DataStore interface {
	GetDataset() (*dataset.Dataset, bool)
	GetEngine() (*query.Engine, error)
	IsLoaded() bool
	IsLoading() bool
	GetLoadedAt() time.Time
	GetLoadError() error
	GetServerStartTime() time.Time
}

// Scheduler defines the contract for background maintenance jobs.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// BucketSweeper is implemented by rate limiters that keep one bucket per client.
type BucketSweeper interface {
	// Sweep drops buckets idle for longer than maxIdle and returns how many remain
	Sweep(maxIdle time.Duration) int
}

// LogPruner removes log files past their retention period.
type LogPruner interface {
	PruneOldLogs() (removed int, err error)
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// Dashboard endpoints
	TopManufacturers(w http.ResponseWriter, r *http.Request)
	Paracetamol(w http.ResponseWriter, r *http.Request)
	PriceStats(w http.ResponseWriter, r *http.Request)
	Diabetes(w http.ResponseWriter, r *http.Request)
	Compositions(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
	Suggestions(w http.ResponseWriter, r *http.Request)
	Companies(w http.ResponseWriter, r *http.Request)
	FilterByCompany(w http.ResponseWriter, r *http.Request)
	MedicineDetails(w http.ResponseWriter, r *http.Request)

	// Analysis endpoints
	BloodPressure(w http.ResponseWriter, r *http.Request)
	Diclofenac(w http.ResponseWriter, r *http.Request)
	Complexity(w http.ResponseWriter, r *http.Request)
	Portfolio(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current health status, its details and the HTTP code to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataValidator defines the contract for input and data validation.
type DataValidator interface {
	// NormalizeQuery trims a user supplied query parameter and checks its size
	NormalizeQuery(input string) (string, error)

	// ReportDataQuality generates a data quality report for a loaded dataset
	ReportDataQuality(ds *dataset.Dataset) *DataQualityReport
}
