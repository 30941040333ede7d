package main

import (
	"io"

	"github.com/giygas/medicines-api/handlers"
	"github.com/giygas/medicines-api/query"
	"github.com/giygas/medicines-api/responses"
)

// report is a section that can also render itself as aligned text
type report interface {
	writeText(w io.Writer) error
}

type ManufacturerReport struct {
	TopManufacturers []query.Count               `json:"top_manufacturers" yaml:"top_manufacturers"`
	ParacetamolCount int                         `json:"paracetamol_count" yaml:"paracetamol_count"`
	Paracetamol      []responses.PriceItem       `json:"paracetamol" yaml:"paracetamol"`
	Portfolio        responses.PortfolioResponse `json:"portfolio" yaml:"portfolio"`
}

type PriceReport struct {
	Expensive     []responses.PriceItem        `json:"expensive" yaml:"expensive"`
	Cheapest      []responses.PriceItem        `json:"cheapest" yaml:"cheapest"`
	BloodPressure responses.ClassStatsResponse `json:"blood_pressure" yaml:"blood_pressure"`
}

type TherapeuticReport struct {
	DiabetesCount int                        `json:"diabetes_count" yaml:"diabetes_count"`
	Diabetes      []responses.SearchItem     `json:"diabetes" yaml:"diabetes"`
	Complexity    []responses.ComplexityItem `json:"complexity" yaml:"complexity"`
}

type CompositionReport struct {
	TopCompositions []query.Count         `json:"top_compositions" yaml:"top_compositions"`
	DiclofenacCount int                   `json:"diclofenac_count" yaml:"diclofenac_count"`
	Diclofenac      []responses.PriceItem `json:"diclofenac" yaml:"diclofenac"`
}

type SummaryReport struct {
	responses.SummaryResponse `yaml:",inline"`
}

// FullReport holds every section in the order they are printed
type FullReport struct {
	Manufacturers ManufacturerReport `json:"manufacturers" yaml:"manufacturers"`
	Prices        PriceReport        `json:"prices" yaml:"prices"`
	Therapeutic   TherapeuticReport  `json:"therapeutic" yaml:"therapeutic"`
	Compositions  CompositionReport  `json:"compositions" yaml:"compositions"`
	Summary       SummaryReport      `json:"summary" yaml:"summary"`
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func buildManufacturers(e *query.Engine, company string) report {
	paracetamol := query.SortByPrice(e.FilterByClass(query.Analgesic))
	return &ManufacturerReport{
		TopManufacturers: e.TopManufacturers(handlers.TopManufacturersLimit),
		ParacetamolCount: len(paracetamol),
		Paracetamol:      responses.NewPriceItems(head(paracetamol, handlers.ParacetamolLimit)),
		Portfolio:        responses.NewPortfolioResponse(e.ManufacturerPortfolio(company, handlers.PortfolioLimit)),
	}
}

func buildPrices(e *query.Engine, _ string) report {
	return &PriceReport{
		Expensive:     responses.NewPriceItems(e.TopNByPrice(handlers.PriceExtremesLimit, query.MostExpensive)),
		Cheapest:      responses.NewPriceItems(e.TopNByPrice(handlers.PriceExtremesLimit, query.Cheapest)),
		BloodPressure: responses.NewClassStatsResponse(e.ClassPriceStats(query.BloodPressure)),
	}
}

func buildTherapeutic(e *query.Engine, _ string) report {
	diabetes := e.FilterByClass(query.Diabetes)
	return &TherapeuticReport{
		DiabetesCount: len(diabetes),
		Diabetes:      responses.NewSearchResponse(head(diabetes, handlers.DiabetesLimit)).Medicines,
		Complexity:    responses.NewComplexityResponse(e.CompositionComplexity(handlers.ComplexityLimit)).Medicines,
	}
}

func buildCompositions(e *query.Engine, _ string) report {
	diclofenac := e.FilterByClass(query.Diclofenac)
	return &CompositionReport{
		TopCompositions: e.CompositionFrequency(handlers.TopCompositionsLimit),
		DiclofenacCount: len(diclofenac),
		Diclofenac:      responses.NewPriceItems(head(diclofenac, handlers.DiclofenacLimit)),
	}
}

func buildSummary(e *query.Engine, _ string) report {
	return &SummaryReport{responses.NewSummaryResponse(e.PriceSummary())}
}

func buildFull(e *query.Engine, company string) report {
	return &FullReport{
		Manufacturers: *buildManufacturers(e, company).(*ManufacturerReport),
		Prices:        *buildPrices(e, company).(*PriceReport),
		Therapeutic:   *buildTherapeutic(e, company).(*TherapeuticReport),
		Compositions:  *buildCompositions(e, company).(*CompositionReport),
		Summary:       *buildSummary(e, company).(*SummaryReport),
	}
}
