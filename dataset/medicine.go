package dataset

// Medicine is one row of the medicines dataset.
// Optional columns are pointers: nil means the source cell was empty or one of
// the NA tokens (see IsNA), never a zero value.
type Medicine struct {
	ID                   int      `json:"id"`
	Name                 string   `json:"name"`
	ManufacturerName     *string  `json:"manufacturer_name"`
	CompositionPrimary   *string  `json:"short_composition1"`
	CompositionSecondary *string  `json:"short_composition2"`
	Price                *float64 `json:"price"`
	PackSizeLabel        *string  `json:"pack_size_label"`
	Type                 *string  `json:"type"`
	IsDiscontinued       bool     `json:"is_discontinued"`
}

// Manufacturer returns the manufacturer name and whether it is present.
func (m Medicine) Manufacturer() (string, bool) {
	return deref(m.ManufacturerName)
}

// Primary returns the first composition and whether it is present.
func (m Medicine) Primary() (string, bool) {
	return deref(m.CompositionPrimary)
}

// Secondary returns the second composition and whether it is present.
// An absent secondary composition marks a single-component drug.
func (m Medicine) Secondary() (string, bool) {
	return deref(m.CompositionSecondary)
}

// HasPrice reports whether the record carries a price.
func (m Medicine) HasPrice() bool {
	return m.Price != nil
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// naTokens mirrors the default missing-value markers of the tool the dataset
// was exported with, so "nan" and a truly empty cell mean the same thing.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNA reports whether a raw cell value stands for a missing value.
// Matching is exact: " nan" is a present value.
func IsNA(raw string) bool {
	_, ok := naTokens[raw]
	return ok
}
