// Package handlers provides the HTTP handlers of the medicines dashboard API.
// Every handler resolves the query engine first and answers 503 with
// {"error":"Data not loaded"} while the dataset is unavailable.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/giygas/medicines-api/health"
	"github.com/giygas/medicines-api/interfaces"
	"github.com/giygas/medicines-api/logging"
	"github.com/giygas/medicines-api/metrics"
	"github.com/giygas/medicines-api/query"
	"github.com/giygas/medicines-api/responses"
	"github.com/giygas/medicines-api/validation"
)

// Result sizes of the dashboard endpoints
const (
	TopManufacturersLimit = 15
	TopCompositionsLimit  = 15
	ParacetamolLimit      = 20
	PriceExtremesLimit    = 10
	DiabetesLimit         = 20
	SearchLimit           = 50
	CompanyLimit          = 100
	DiclofenacLimit       = 20
	ComplexityLimit       = 10
	PortfolioLimit        = 5
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: health.NewHealthChecker(dataStore),
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a {"error": message} response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, responses.ErrorResponse{Error: message})
}

// engine returns the query engine, or answers 503 and returns false
func (h *HTTPHandlerImpl) engine(w http.ResponseWriter) (*query.Engine, bool) {
	engine, err := h.dataStore.GetEngine()
	if err != nil {
		RespondWithError(w, http.StatusServiceUnavailable, responses.MsgDataNotLoaded)
		return nil, false
	}
	return engine, true
}

// param reads and validates a query parameter. The returned value is empty
// when the parameter is missing or blank; false means a 400 was written.
func (h *HTTPHandlerImpl) param(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.URL.Query().Get(name)
	value, err := h.validator.NormalizeQuery(raw)
	switch {
	case err == nil:
		return value, true
	case errors.Is(err, validation.ErrEmptyQuery):
		return "", true
	default:
		logging.Warn("Unusual user input", "param", name, "length", len(raw), "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
}

func countEmpty(endpoint string, n int) {
	if n == 0 {
		metrics.EmptyResultsTotal.WithLabelValues(endpoint).Inc()
	}
}

// TopManufacturers serves the 15 manufacturers with the most medicines
func (h *HTTPHandlerImpl) TopManufacturers(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, responses.NewLabelsData(engine.TopManufacturers(TopManufacturersLimit)))
}

// Paracetamol serves the cheapest analgesics, cheapest first
func (h *HTTPHandlerImpl) Paracetamol(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	sorted := query.SortByPrice(engine.FilterByClass(query.Analgesic))
	if len(sorted) > ParacetamolLimit {
		sorted = sorted[:ParacetamolLimit]
	}
	RespondWithJSON(w, http.StatusOK, responses.MedicinesResponse{Medicines: responses.NewPriceItems(sorted)})
}

// PriceStats serves the price extremes and every known price
func (h *HTTPHandlerImpl) PriceStats(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	RespondWithJSON(w, http.StatusOK, responses.PriceStatsResponse{
		Expensive:         responses.NewPriceItems(engine.TopNByPrice(PriceExtremesLimit, query.MostExpensive)),
		Cheapest:          responses.NewPriceItems(engine.TopNByPrice(PriceExtremesLimit, query.Cheapest)),
		PriceDistribution: engine.Prices(),
	})
}

// Diabetes serves the first 20 diabetes medicines in source order
func (h *HTTPHandlerImpl) Diabetes(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	matches := engine.FilterByClass(query.Diabetes)
	if len(matches) > DiabetesLimit {
		matches = matches[:DiabetesLimit]
	}
	RespondWithJSON(w, http.StatusOK, responses.CompositionMedicinesResponse{Medicines: responses.NewCompositionItems(matches)})
}

// Compositions serves the 15 most frequent compositions
func (h *HTTPHandlerImpl) Compositions(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, responses.NewLabelsData(engine.CompositionFrequency(TopCompositionsLimit)))
}

// Summary serves the dataset overview
func (h *HTTPHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, responses.NewSummaryResponse(engine.PriceSummary()))
}

// Search serves medicines whose name starts with q
func (h *HTTPHandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	q, ok := h.param(w, r, "q")
	if !ok {
		return
	}

	results := engine.SearchByNamePrefix(q, SearchLimit)
	countEmpty("search", len(results))
	RespondWithJSON(w, http.StatusOK, responses.NewSearchResponse(results))
}

// Suggestions serves autocomplete suggestions for q
func (h *HTTPHandlerImpl) Suggestions(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	q, ok := h.param(w, r, "q")
	if !ok {
		return
	}

	suggestions := engine.AutocompleteSuggestions(q, query.DefaultSuggestionLimits)
	countEmpty("suggestions", len(suggestions))
	RespondWithJSON(w, http.StatusOK, responses.NewSuggestionsResponse(suggestions))
}

// Companies serves every manufacturer name, sorted
func (h *HTTPHandlerImpl) Companies(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, responses.NewCompaniesResponse(engine.ListDistinctManufacturers()))
}

// FilterByCompany serves the medicines of one manufacturer, exact match
func (h *HTTPHandlerImpl) FilterByCompany(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	company, ok := h.param(w, r, "company")
	if !ok {
		return
	}
	if company == "" {
		RespondWithJSON(w, http.StatusOK, responses.SearchResponse{Medicines: []responses.SearchItem{}})
		return
	}

	matches := engine.FilterByManufacturer(company, CompanyLimit)
	countEmpty("filter-by-company", matches.Total)
	RespondWithJSON(w, http.StatusOK, responses.NewCompanyResponse(company, matches))
}

// MedicineDetails serves one medicine and the medicines similar to it
func (h *HTTPHandlerImpl) MedicineDetails(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	name, ok := h.param(w, r, "name")
	if !ok {
		return
	}
	if name == "" {
		RespondWithError(w, http.StatusBadRequest, responses.MsgMedicineNameRequired)
		return
	}

	detail, err := engine.GetRecordDetail(name)
	if errors.Is(err, query.ErrNotFound) {
		RespondWithError(w, http.StatusNotFound, responses.MsgMedicineNotFound)
		return
	}
	if err != nil {
		logging.Error("Medicine detail lookup failed", "error", err)
		RespondWithError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	RespondWithJSON(w, http.StatusOK, responses.NewDetailResponse(detail))
}

// BloodPressure serves price statistics of blood pressure medicines
func (h *HTTPHandlerImpl) BloodPressure(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, responses.NewClassStatsResponse(engine.ClassPriceStats(query.BloodPressure)))
}

// Diclofenac serves the first 20 diclofenac medicines and the match count
func (h *HTTPHandlerImpl) Diclofenac(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	matches := engine.FilterByClass(query.Diclofenac)
	total := len(matches)
	if len(matches) > DiclofenacLimit {
		matches = matches[:DiclofenacLimit]
	}
	RespondWithJSON(w, http.StatusOK, responses.ClassListingResponse{
		Medicines:  responses.NewPriceItems(matches),
		TotalCount: total,
	})
}

// Complexity serves the medicines listing the most compositions
func (h *HTTPHandlerImpl) Complexity(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, responses.NewComplexityResponse(engine.CompositionComplexity(ComplexityLimit)))
}

// Portfolio serves the most common compositions of matching manufacturers
func (h *HTTPHandlerImpl) Portfolio(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	company, ok := h.param(w, r, "company")
	if !ok {
		return
	}

	portfolio := engine.ManufacturerPortfolio(company, PortfolioLimit)
	countEmpty("portfolio", portfolio.TotalMedicines)
	RespondWithJSON(w, http.StatusOK, responses.NewPortfolioResponse(portfolio))
}

// HealthCheck serves the dataset state with runtime statistics
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}
