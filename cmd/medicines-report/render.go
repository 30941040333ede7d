package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/giygas/medicines-api/query"
	"github.com/giygas/medicines-api/responses"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	rule = "------------------------------------------------------------"
)

func parseFormat(value string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(value)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q, expected text, json or yaml", value)
}

func render(w io.Writer, format string, r report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.writeText(w)
	}
}

// table buffers aligned columns and reports the first write error on flush
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.row(headers...)
	}
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, strings.ToUpper(title), rule)
}

// clip shortens s to n characters
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func price(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func rupees(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("Rs%.2f", *p)
}

func priceTable(w io.Writer, items []responses.PriceItem) error {
	t := newTable(w, "MEDICINE", "MANUFACTURER", "PRICE (RS)")
	for _, item := range items {
		t.row(clip(item.Name, 39), clip(optional(item.ManufacturerName), 24), price(item.Price))
	}
	return t.flush()
}

func rankTable(w io.Writer, counts []query.Count, label string) error {
	t := newTable(w, "#", strings.ToUpper(label), "COUNT")
	for i, c := range counts {
		t.row(strconv.Itoa(i+1), clip(c.Label, 50), strconv.Itoa(c.Count))
	}
	return t.flush()
}

func (r *ManufacturerReport) writeText(w io.Writer) error {
	heading(w, "Manufacturer analysis")

	fmt.Fprintf(w, "\nTop %d manufacturers:\n", len(r.TopManufacturers))
	if err := rankTable(w, r.TopManufacturers, "manufacturer"); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nParacetamol medicines, cheapest first (%d medicines):\n", r.ParacetamolCount)
	if err := priceTable(w, r.Paracetamol); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s: %d medicines, top %d compositions:\n", r.Portfolio.Company, r.Portfolio.TotalMedicines, len(r.Portfolio.Labels))
	t := newTable(w, "#", "COMPOSITION", "COUNT")
	for i, label := range r.Portfolio.Labels {
		t.row(strconv.Itoa(i+1), clip(label, 50), strconv.Itoa(r.Portfolio.Data[i]))
	}
	return t.flush()
}

func (r *PriceReport) writeText(w io.Writer) error {
	heading(w, "Price analysis")

	fmt.Fprintf(w, "\n%d most expensive medicines:\n", len(r.Expensive))
	if err := priceTable(w, r.Expensive); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d cheapest medicines:\n", len(r.Cheapest))
	if err := priceTable(w, r.Cheapest); err != nil {
		return err
	}

	bp := r.BloodPressure
	fmt.Fprintln(w, "\nBlood pressure medicines price statistics:")
	t := newTable(w)
	t.row("Average:", rupees(bp.AvgPrice))
	t.row("Minimum:", rupees(bp.MinPrice))
	t.row("Maximum:", rupees(bp.MaxPrice))
	t.row("Count:", strconv.Itoa(bp.Count))
	return t.flush()
}

func (r *TherapeuticReport) writeText(w io.Writer) error {
	heading(w, "Therapeutic use analysis")

	fmt.Fprintf(w, "\nDiabetes medicines (%d found):\n", r.DiabetesCount)
	t := newTable(w, "MEDICINE", "MANUFACTURER", "COMPOSITION")
	for _, item := range r.Diabetes {
		t.row(clip(item.Name, 24), clip(optional(item.Manufacturer), 19), clip(item.Composition, 39))
	}
	if err := t.flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTop %d medicines by number of compositions:\n", len(r.Complexity))
	t = newTable(w, "MEDICINE", "COMPOSITIONS")
	for _, item := range r.Complexity {
		t.row(clip(item.Name, 34), strconv.Itoa(item.CompositionCount))
	}
	return t.flush()
}

func (r *CompositionReport) writeText(w io.Writer) error {
	heading(w, "Composition analysis")

	fmt.Fprintf(w, "\nTop %d compositions:\n", len(r.TopCompositions))
	if err := rankTable(w, r.TopCompositions, "composition"); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nMedicines containing diclofenac (%d found):\n", r.DiclofenacCount)
	return priceTable(w, r.Diclofenac)
}

func (r *SummaryReport) writeText(w io.Writer) error {
	heading(w, "Dataset summary")

	t := newTable(w)
	t.row("Total medicines:", strconv.Itoa(r.TotalMedicines))
	t.row("Total manufacturers:", strconv.Itoa(r.TotalManufacturers))
	t.row("Average price:", rupees(r.AvgPrice))
	t.row("Price range:", rupees(r.MinPrice)+" - "+rupees(r.MaxPrice))
	t.row("Unique compositions:", strconv.Itoa(r.UniqueCompositions))
	return t.flush()
}

func (r *FullReport) writeText(w io.Writer) error {
	sections := []report{&r.Manufacturers, &r.Prices, &r.Therapeutic, &r.Compositions, &r.Summary}
	for _, s := range sections {
		if err := s.writeText(w); err != nil {
			return err
		}
	}
	return nil
}
