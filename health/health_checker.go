// Package health provides health checking functionality for the medicines API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/medicines-api/interfaces"
)

const (
	StatusHealthy   = "healthy"
	StatusStarting  = "starting"
	StatusUnhealthy = "unhealthy"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(dataStore interfaces.DataStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
	}
}

// HealthCheck reports whether the dataset is being served.
// The dataset never reloads, so its age is informational only.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	ds, loaded := h.dataStore.GetDataset()
	loadErr := h.dataStore.GetLoadError()

	switch {
	case loaded:
		status = StatusHealthy
		httpStatus = http.StatusOK

	case h.dataStore.IsLoading():
		status = StatusStarting
		httpStatus = http.StatusServiceUnavailable

	default:
		status = StatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	}

	data = map[string]any{
		"loaded":     loaded,
		"records":    0,
		"loaded_at":  nil,
		"load_error": nil,
	}

	if loaded {
		loadedAt := h.dataStore.GetLoadedAt()
		data["records"] = ds.Len()
		data["source"] = ds.Source()
		data["loaded_at"] = loadedAt.Format(time.RFC3339)
		data["data_age_hours"] = math.Round(time.Since(loadedAt).Hours()*10) / 10
	}

	if loadErr != nil {
		data["load_error"] = loadErr.Error()
	}

	return status, data, httpStatus
}
