// Package data owns the lifecycle of the loaded medicines dataset.
// The DataContainer moves one way, from Unloaded to Loaded, and publishes the
// dataset atomically so request handlers never observe a half-built state.
package data

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/interfaces"
	"github.com/giygas/medicines-api/logging"
	"github.com/giygas/medicines-api/query"
)

var (
	ErrNotLoaded     = errors.New("data not loaded")
	ErrAlreadyLoaded = errors.New("data already loaded")
	ErrNilDataset    = errors.New("dataset is nil")
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// loadFailure wraps the load error so atomic.Value always stores one type
type loadFailure struct {
	err error
}

// DataContainer holds the dataset behind atomic pointers
type DataContainer struct {
	dataset         atomic.Pointer[dataset.Dataset]
	loadedAt        atomic.Value // time.Time
	loadErr         atomic.Value // loadFailure
	loading         atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates an Unloaded container
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.loadedAt.Store(time.Time{})
	dc.loadErr.Store(loadFailure{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// GetDataset returns the dataset and whether it has been loaded
func (dc *DataContainer) GetDataset() (*dataset.Dataset, bool) {
	ds := dc.dataset.Load()
	return ds, ds != nil
}

// GetEngine returns a query engine over the loaded dataset, or ErrNotLoaded
func (dc *DataContainer) GetEngine() (*query.Engine, error) {
	ds, ok := dc.GetDataset()
	if !ok {
		return nil, ErrNotLoaded
	}
	return query.New(ds), nil
}

// IsLoaded reports whether the container reached the Loaded state
func (dc *DataContainer) IsLoaded() bool {
	return dc.dataset.Load() != nil
}

// GetLoadedAt returns when the dataset was published, zero while Unloaded
func (dc *DataContainer) GetLoadedAt() time.Time {
	if v := dc.loadedAt.Load(); v != nil {
		if loadedAt, ok := v.(time.Time); ok {
			return loadedAt
		}
	}

	logging.Warn("Could not get the loaded at value")
	return time.Time{}
}

// GetLoadError returns the error of the failed load, if any
func (dc *DataContainer) GetLoadError() error {
	if v, ok := dc.loadErr.Load().(loadFailure); ok {
		return v.err
	}
	return nil
}

// IsLoading returns true while a load is in progress
func (dc *DataContainer) IsLoading() bool {
	return dc.loading.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// BeginLoad marks the start of the load.
// Returns false if a load is running or the dataset is already published.
func (dc *DataContainer) BeginLoad() bool {
	if dc.IsLoaded() {
		return false
	}
	return dc.loading.CompareAndSwap(false, true)
}

// EndLoad marks the end of the load
func (dc *DataContainer) EndLoad() {
	dc.loading.Store(false)
}

// Publish moves the container to Loaded. It can succeed only once.
func (dc *DataContainer) Publish(ds *dataset.Dataset) error {
	if ds == nil {
		return ErrNilDataset
	}
	if !dc.dataset.CompareAndSwap(nil, ds) {
		return ErrAlreadyLoaded
	}
	dc.loadedAt.Store(time.Now())
	dc.loadErr.Store(loadFailure{})
	return nil
}

// MarkLoadFailed records why the load failed; the container stays Unloaded.
func (dc *DataContainer) MarkLoadFailed(err error) {
	if dc.IsLoaded() {
		return
	}
	dc.loadErr.Store(loadFailure{err: err})
}
