// Package query answers the read-only questions asked of the medicines
// dataset: filtering, prefix and substring search, aggregation and similar
// item lookups. Every operation is a pure function of the Dataset and its
// arguments; ties are always broken by source order.
package query

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/giygas/medicines-api/dataset"
)

// ErrNotFound is returned when no record has the requested name.
var ErrNotFound = errors.New("medicine not found")

const (
	similarByManufacturerLimit = 5
	similarByCompositionLimit  = 3

	// MinSuggestionQueryLength is the shortest query that yields suggestions.
	MinSuggestionQueryLength = 2
)

// Engine runs queries against one Dataset. It holds no other state, so two
// engines over equal datasets give equal answers.
type Engine struct {
	ds *dataset.Dataset
}

// New returns an Engine over ds, which must not be nil.
func New(ds *dataset.Dataset) *Engine {
	return &Engine{ds: ds}
}

// Dataset returns the dataset the engine reads from.
func (e *Engine) Dataset() *dataset.Dataset {
	return e.ds
}

// FilterByCompositionKeyword returns, in source order, the records whose first
// or second composition contains any of the keywords, ignoring case.
// Absent compositions never match.
func (e *Engine) FilterByCompositionKeyword(keywords []string) []dataset.Medicine {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = dataset.Lower(k)
	}

	var results []dataset.Medicine
	for i := 0; i < e.ds.Len(); i++ {
		keys := e.ds.Keys(i)
		if containsAny(keys.Primary, lowered) || containsAny(keys.Secondary, lowered) {
			results = append(results, e.ds.At(i))
		}
	}
	return results
}

// FilterByClass is FilterByCompositionKeyword over the keywords of c.
func (e *Engine) FilterByClass(c Class) []dataset.Medicine {
	return e.FilterByCompositionKeyword(c.Keywords)
}

func containsAny(key string, needles []string) bool {
	if key == "" {
		return false
	}
	for _, needle := range needles {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

// SortByPrice returns a copy of records ordered by ascending price. The sort
// is stable and records without a price go last.
func SortByPrice(records []dataset.Medicine) []dataset.Medicine {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b dataset.Medicine) int {
		switch {
		case a.Price == nil && b.Price == nil:
			return 0
		case a.Price == nil:
			return 1
		case b.Price == nil:
			return -1
		case *a.Price < *b.Price:
			return -1
		case *a.Price > *b.Price:
			return 1
		}
		return 0
	})
	return sorted
}

// SearchByNamePrefix returns up to limit records, in source order, whose name
// starts with query ignoring case. A blank query matches nothing.
func (e *Engine) SearchByNamePrefix(query string, limit int) []dataset.Medicine {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil
	}
	prefix := dataset.Lower(query)

	var results []dataset.Medicine
	for i := 0; i < e.ds.Len() && len(results) < limit; i++ {
		if strings.HasPrefix(e.ds.Keys(i).Name, prefix) {
			results = append(results, e.ds.At(i))
		}
	}
	return results
}

// SuggestionLimits caps each autocomplete pass and the combined list.
type SuggestionLimits struct {
	Names         int
	Manufacturers int
	Compositions  int
	Total         int
}

// DefaultSuggestionLimits are the caps used by the suggestions endpoint.
var DefaultSuggestionLimits = SuggestionLimits{
	Names:         10,
	Manufacturers: 5,
	Compositions:  5,
	Total:         15,
}

// AutocompleteSuggestions returns distinct medicine names, then manufacturer
// names, then first compositions containing query (ignoring case), each pass
// in first-seen order and capped, the whole list capped at limits.Total.
func (e *Engine) AutocompleteSuggestions(query string, limits SuggestionLimits) []string {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSuggestionQueryLength {
		return nil
	}
	needle := dataset.Lower(query)

	names := e.distinctMatches(limits.Names, func(m dataset.Medicine, k dataset.SearchKeys) (string, bool) {
		return m.Name, strings.Contains(k.Name, needle)
	})
	manufacturers := e.distinctMatches(limits.Manufacturers, func(m dataset.Medicine, k dataset.SearchKeys) (string, bool) {
		manufacturer, ok := m.Manufacturer()
		return manufacturer, ok && strings.Contains(k.Manufacturer, needle)
	})
	compositions := e.distinctMatches(limits.Compositions, func(m dataset.Medicine, k dataset.SearchKeys) (string, bool) {
		primary, ok := m.Primary()
		return primary, ok && strings.Contains(k.Primary, needle)
	})

	suggestions := make([]string, 0, len(names)+len(manufacturers)+len(compositions))
	suggestions = append(suggestions, names...)
	suggestions = append(suggestions, manufacturers...)
	suggestions = append(suggestions, compositions...)

	if len(suggestions) > limits.Total {
		suggestions = suggestions[:max(limits.Total, 0)]
	}
	return suggestions
}

// distinctMatches scans the dataset once and collects up to limit distinct
// values accepted by match, in first-seen order.
func (e *Engine) distinctMatches(limit int, match func(dataset.Medicine, dataset.SearchKeys) (string, bool)) []string {
	var values []string
	seen := make(map[string]struct{})
	for i := 0; i < e.ds.Len() && len(values) < limit; i++ {
		value, ok := match(e.ds.At(i), e.ds.Keys(i))
		if !ok {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}

// ListDistinctManufacturers returns all manufacturer names, sorted ascending.
func (e *Engine) ListDistinctManufacturers() []string {
	return e.ds.Manufacturers()
}

// ManufacturerMatches is a truncated result set with the untruncated count.
type ManufacturerMatches struct {
	Medicines []dataset.Medicine
	Total     int
}

// FilterByManufacturer returns the first limit records whose manufacturer is
// exactly name, and the total number of such records.
func (e *Engine) FilterByManufacturer(name string, limit int) ManufacturerMatches {
	positions := e.ds.ByManufacturer(name)
	return ManufacturerMatches{
		Medicines: e.collect(positions, max(limit, 0), nil),
		Total:     len(positions),
	}
}

// Detail is a medicine together with its similar items.
type Detail struct {
	Medicine dataset.Medicine
	// SameManufacturer holds up to 5 other medicines from the same manufacturer.
	SameManufacturer []dataset.Medicine
	// SameComposition holds up to 3 other medicines with the same first composition.
	SameComposition []dataset.Medicine
}

// GetRecordDetail looks up the first record named exactly name.
// "Other" means a different name: rows that repeat the name are skipped.
func (e *Engine) GetRecordDetail(name string) (Detail, error) {
	i, ok := e.ds.FirstByName(name)
	if !ok {
		return Detail{}, ErrNotFound
	}

	medicine := e.ds.At(i)
	detail := Detail{Medicine: medicine}
	otherName := func(m dataset.Medicine) bool { return m.Name != name }

	if manufacturer, ok := medicine.Manufacturer(); ok {
		detail.SameManufacturer = e.collect(e.ds.ByManufacturer(manufacturer), similarByManufacturerLimit, otherName)
	}
	if primary, ok := medicine.Primary(); ok {
		detail.SameComposition = e.collect(e.ds.ByPrimaryComposition(primary), similarByCompositionLimit, otherName)
	}

	return detail, nil
}

// collect resolves positions to records, keeping the first limit accepted ones.
func (e *Engine) collect(positions []int, limit int, keep func(dataset.Medicine) bool) []dataset.Medicine {
	results := make([]dataset.Medicine, 0, min(limit, len(positions)))
	for _, pos := range positions {
		if len(results) >= limit {
			break
		}
		m := e.ds.At(pos)
		if keep == nil || keep(m) {
			results = append(results, m)
		}
	}
	return results
}
