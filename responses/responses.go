// Package responses maps query engine results onto the JSON documents served
// to the dashboard front end. Nullable fields stay null; only rounded
// aggregates are transformed.
package responses

import (
	"strconv"

	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/query"
)

// Error messages shared by every endpoint
const (
	MsgDataNotLoaded        = "Data not loaded"
	MsgMedicineNotFound     = "Medicine not found"
	MsgMedicineNameRequired = "Medicine name required"
)

// CompositionSeparator joins the first and second composition for display
const CompositionSeparator = " + "

// ErrorResponse is the body of every failure
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
}

// LabelsData is a chart series
type LabelsData struct {
	Labels []string `json:"labels" yaml:"labels"`
	Data   []int    `json:"data" yaml:"data"`
}

// PriceItem is a medicine in a price listing
type PriceItem struct {
	Name             string   `json:"name" yaml:"name"`
	ManufacturerName *string  `json:"manufacturer_name" yaml:"manufacturer_name"`
	Price            *float64 `json:"price" yaml:"price"`
}

// MedicinesResponse wraps a price listing
type MedicinesResponse struct {
	Medicines []PriceItem `json:"medicines" yaml:"medicines"`
}

// PriceStatsResponse lists price extremes and the raw price distribution
type PriceStatsResponse struct {
	Expensive         []PriceItem `json:"expensive" yaml:"expensive"`
	Cheapest          []PriceItem `json:"cheapest" yaml:"cheapest"`
	PriceDistribution []float64   `json:"price_distribution" yaml:"price_distribution"`
}

// CompositionItem is a medicine listed with its first composition
type CompositionItem struct {
	Name              string  `json:"name" yaml:"name"`
	ManufacturerName  *string `json:"manufacturer_name" yaml:"manufacturer_name"`
	ShortComposition1 *string `json:"short_composition1" yaml:"short_composition1"`
}

// CompositionMedicinesResponse wraps a composition listing
type CompositionMedicinesResponse struct {
	Medicines []CompositionItem `json:"medicines" yaml:"medicines"`
}

// SummaryResponse is the dataset overview
type SummaryResponse struct {
	TotalMedicines     int      `json:"total_medicines" yaml:"total_medicines"`
	TotalManufacturers int      `json:"total_manufacturers" yaml:"total_manufacturers"`
	AvgPrice           *float64 `json:"avg_price" yaml:"avg_price"`
	MinPrice           *float64 `json:"min_price" yaml:"min_price"`
	MaxPrice           *float64 `json:"max_price" yaml:"max_price"`
	UniqueCompositions int      `json:"unique_compositions" yaml:"unique_compositions"`
}

// SearchItem is a medicine as shown in search and company listings
type SearchItem struct {
	Name         string   `json:"name" yaml:"name"`
	Manufacturer *string  `json:"manufacturer" yaml:"manufacturer"`
	Composition  string   `json:"composition" yaml:"composition"`
	Price        *float64 `json:"price" yaml:"price"`
	PackSize     *string  `json:"pack_size" yaml:"pack_size"`
	Type         *string  `json:"type" yaml:"type"`
	Discontinued bool     `json:"discontinued" yaml:"discontinued"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Medicines []SearchItem `json:"medicines" yaml:"medicines"`
}

// SuggestionsResponse wraps autocomplete suggestions
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// CompaniesResponse lists every manufacturer
type CompaniesResponse struct {
	Companies []string `json:"companies" yaml:"companies"`
}

// CompanyResponse is a truncated company listing with the full match count
type CompanyResponse struct {
	Medicines  []SearchItem `json:"medicines" yaml:"medicines"`
	TotalCount int          `json:"total_count" yaml:"total_count"`
	Company    string       `json:"company" yaml:"company"`
}

// SimilarItem is a medicine from the same manufacturer
type SimilarItem struct {
	Name     string   `json:"name" yaml:"name"`
	Price    *float64 `json:"price" yaml:"price"`
	PackSize *string  `json:"pack_size" yaml:"pack_size"`
}

// CompositionSimilarItem is a medicine sharing the first composition
type CompositionSimilarItem struct {
	Name         string   `json:"name" yaml:"name"`
	Manufacturer *string  `json:"manufacturer" yaml:"manufacturer"`
	Price        *float64 `json:"price" yaml:"price"`
}

// DetailResponse is the full view of one medicine
type DetailResponse struct {
	Name               string                   `json:"name" yaml:"name"`
	Manufacturer       *string                  `json:"manufacturer" yaml:"manufacturer"`
	Composition1       *string                  `json:"composition1" yaml:"composition1"`
	Composition2       string                   `json:"composition2" yaml:"composition2"`
	Price              *float64                 `json:"price" yaml:"price"`
	PackSize           *string                  `json:"pack_size" yaml:"pack_size"`
	Type               *string                  `json:"type" yaml:"type"`
	Discontinued       bool                     `json:"discontinued" yaml:"discontinued"`
	ID                 int                      `json:"id" yaml:"id"`
	SimilarMedicines   []SimilarItem            `json:"similar_medicines" yaml:"similar_medicines"`
	CompositionSimilar []CompositionSimilarItem `json:"composition_similar" yaml:"composition_similar"`
}

// ClassStatsResponse summarises the prices of a drug class
type ClassStatsResponse struct {
	Count    int      `json:"count" yaml:"count"`
	AvgPrice *float64 `json:"avg_price" yaml:"avg_price"`
	MinPrice *float64 `json:"min_price" yaml:"min_price"`
	MaxPrice *float64 `json:"max_price" yaml:"max_price"`
}

// ClassListingResponse is a truncated class listing with the full match count
type ClassListingResponse struct {
	Medicines  []PriceItem `json:"medicines" yaml:"medicines"`
	TotalCount int         `json:"total_count" yaml:"total_count"`
}

// ComplexityItem is a medicine name with its number of compositions
type ComplexityItem struct {
	Name             string `json:"name" yaml:"name"`
	CompositionCount int    `json:"composition_count" yaml:"composition_count"`
}

// ComplexityResponse wraps the composition complexity ranking
type ComplexityResponse struct {
	Medicines []ComplexityItem `json:"medicines" yaml:"medicines"`
}

// PortfolioResponse is the composition profile of matching manufacturers
type PortfolioResponse struct {
	Company        string   `json:"company" yaml:"company"`
	TotalMedicines int      `json:"total_medicines" yaml:"total_medicines"`
	Labels         []string `json:"labels" yaml:"labels"`
	Data           []int    `json:"data" yaml:"data"`
}

// RoundPrice rounds to 2 decimals, half to even on the exact binary value.
// nil stays nil.
func RoundPrice(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(*v, 'f', 2, 64), 64)
	if err != nil {
		// only reachable for ±Inf, which is returned unchanged
		rounded = *v
	}
	return &rounded
}

// CompositionLabel renders both compositions as one string. An absent first
// composition renders empty; the second is appended only when present.
func CompositionLabel(m dataset.Medicine) string {
	label, _ := m.Primary()
	if secondary, ok := m.Secondary(); ok {
		label += CompositionSeparator + secondary
	}
	return label
}

// NewLabelsData turns a frequency table into a chart series
func NewLabelsData(counts []query.Count) LabelsData {
	series := LabelsData{
		Labels: make([]string, 0, len(counts)),
		Data:   make([]int, 0, len(counts)),
	}
	for _, c := range counts {
		series.Labels = append(series.Labels, c.Label)
		series.Data = append(series.Data, c.Count)
	}
	return series
}

// NewPriceItems maps records to price items
func NewPriceItems(records []dataset.Medicine) []PriceItem {
	items := make([]PriceItem, 0, len(records))
	for _, m := range records {
		items = append(items, PriceItem{
			Name:             m.Name,
			ManufacturerName: m.ManufacturerName,
			Price:            m.Price,
		})
	}
	return items
}

// NewCompositionItems maps records to composition items
func NewCompositionItems(records []dataset.Medicine) []CompositionItem {
	items := make([]CompositionItem, 0, len(records))
	for _, m := range records {
		items = append(items, CompositionItem{
			Name:              m.Name,
			ManufacturerName:  m.ManufacturerName,
			ShortComposition1: m.CompositionPrimary,
		})
	}
	return items
}

// NewSearchItem maps one record to its search listing form
func NewSearchItem(m dataset.Medicine) SearchItem {
	return SearchItem{
		Name:         m.Name,
		Manufacturer: m.ManufacturerName,
		Composition:  CompositionLabel(m),
		Price:        m.Price,
		PackSize:     m.PackSizeLabel,
		Type:         m.Type,
		Discontinued: m.IsDiscontinued,
	}
}

// NewSearchResponse maps records to a search response
func NewSearchResponse(records []dataset.Medicine) SearchResponse {
	return SearchResponse{Medicines: newSearchItems(records)}
}

func newSearchItems(records []dataset.Medicine) []SearchItem {
	items := make([]SearchItem, 0, len(records))
	for _, m := range records {
		items = append(items, NewSearchItem(m))
	}
	return items
}

// NewSummaryResponse maps the engine summary, rounding the mean price
func NewSummaryResponse(s query.Summary) SummaryResponse {
	return SummaryResponse{
		TotalMedicines:     s.TotalRecords,
		TotalManufacturers: s.UniqueManufacturers,
		AvgPrice:           RoundPrice(s.Prices.Mean),
		MinPrice:           s.Prices.Min,
		MaxPrice:           s.Prices.Max,
		UniqueCompositions: s.UniqueCompositions,
	}
}

// NewSuggestionsResponse never returns a null list
func NewSuggestionsResponse(suggestions []string) SuggestionsResponse {
	if suggestions == nil {
		suggestions = []string{}
	}
	return SuggestionsResponse{Suggestions: suggestions}
}

// NewCompaniesResponse never returns a null list
func NewCompaniesResponse(companies []string) CompaniesResponse {
	if companies == nil {
		companies = []string{}
	}
	return CompaniesResponse{Companies: companies}
}

// NewCompanyResponse keeps both the truncated list and the total
func NewCompanyResponse(company string, matches query.ManufacturerMatches) CompanyResponse {
	return CompanyResponse{
		Medicines:  newSearchItems(matches.Medicines),
		TotalCount: matches.Total,
		Company:    company,
	}
}

// NewDetailResponse maps a detail lookup. The second composition is the empty
// string when absent, every other nullable field stays null.
func NewDetailResponse(d query.Detail) DetailResponse {
	m := d.Medicine
	secondary, _ := m.Secondary()

	resp := DetailResponse{
		Name:               m.Name,
		Manufacturer:       m.ManufacturerName,
		Composition1:       m.CompositionPrimary,
		Composition2:       secondary,
		Price:              m.Price,
		PackSize:           m.PackSizeLabel,
		Type:               m.Type,
		Discontinued:       m.IsDiscontinued,
		ID:                 m.ID,
		SimilarMedicines:   make([]SimilarItem, 0, len(d.SameManufacturer)),
		CompositionSimilar: make([]CompositionSimilarItem, 0, len(d.SameComposition)),
	}

	for _, s := range d.SameManufacturer {
		resp.SimilarMedicines = append(resp.SimilarMedicines, SimilarItem{
			Name:     s.Name,
			Price:    s.Price,
			PackSize: s.PackSizeLabel,
		})
	}
	for _, s := range d.SameComposition {
		resp.CompositionSimilar = append(resp.CompositionSimilar, CompositionSimilarItem{
			Name:         s.Name,
			Manufacturer: s.ManufacturerName,
			Price:        s.Price,
		})
	}

	return resp
}

// NewClassStatsResponse maps class statistics, rounding the mean price
func NewClassStatsResponse(s query.ClassStats) ClassStatsResponse {
	return ClassStatsResponse{
		Count:    s.Matches,
		AvgPrice: RoundPrice(s.Prices.Mean),
		MinPrice: s.Prices.Min,
		MaxPrice: s.Prices.Max,
	}
}

// NewComplexityResponse maps the complexity ranking
func NewComplexityResponse(counts []query.Count) ComplexityResponse {
	items := make([]ComplexityItem, 0, len(counts))
	for _, c := range counts {
		items = append(items, ComplexityItem{Name: c.Label, CompositionCount: c.Count})
	}
	return ComplexityResponse{Medicines: items}
}

// NewPortfolioResponse maps a manufacturer portfolio
func NewPortfolioResponse(p query.Portfolio) PortfolioResponse {
	series := NewLabelsData(p.Compositions)
	return PortfolioResponse{
		Company:        p.Query,
		TotalMedicines: p.TotalMedicines,
		Labels:         series.Labels,
		Data:           series.Data,
	}
}
