package query

import (
	"slices"
	"strings"

	"github.com/giygas/medicines-api/dataset"
)

// Count is one group of a frequency table.
type Count struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// counter tallies labels and remembers when each was first seen, so that the
// final ordering breaks ties by first appearance.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// top returns the n most frequent labels by descending count.
func (c *counter) top(n int) []Count {
	if n <= 0 {
		return nil
	}
	groups := make([]Count, len(c.order))
	for i, label := range c.order {
		groups[i] = Count{Label: label, Count: c.counts[label]}
	}
	slices.SortStableFunc(groups, func(a, b Count) int {
		return b.Count - a.Count
	})
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// TopManufacturers returns the n manufacturers with the most records.
// Records without a manufacturer are not grouped.
func (e *Engine) TopManufacturers(n int) []Count {
	c := newCounter()
	for i := 0; i < e.ds.Len(); i++ {
		if manufacturer, ok := e.ds.At(i).Manufacturer(); ok {
			c.add(manufacturer)
		}
	}
	return c.top(n)
}

// CompositionFrequency pools the first compositions of every record followed
// by the second compositions, trims them, and returns the n most frequent.
// Pooling is case sensitive.
func (e *Engine) CompositionFrequency(n int) []Count {
	return pooledCompositions(e.ds, allPositions(e.ds.Len())).top(n)
}

func allPositions(n int) []int {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	return positions
}

func pooledCompositions(ds *dataset.Dataset, positions []int) *counter {
	c := newCounter()
	for _, pos := range positions {
		if primary, ok := ds.At(pos).Primary(); ok {
			c.add(strings.TrimSpace(primary))
		}
	}
	for _, pos := range positions {
		if secondary, ok := ds.At(pos).Secondary(); ok {
			c.add(strings.TrimSpace(secondary))
		}
	}
	return c
}

// Direction selects which end of the price range TopNByPrice returns.
type Direction int

const (
	MostExpensive Direction = iota
	Cheapest
)

// TopNByPrice returns the n priced records at the requested end of the price
// range. Records without a price are excluded; ties keep source order.
func (e *Engine) TopNByPrice(n int, direction Direction) []dataset.Medicine {
	if n <= 0 {
		return nil
	}

	var priced []dataset.Medicine
	for i := 0; i < e.ds.Len(); i++ {
		if m := e.ds.At(i); m.HasPrice() {
			priced = append(priced, m)
		}
	}

	slices.SortStableFunc(priced, func(a, b dataset.Medicine) int {
		x, y := *a.Price, *b.Price
		if direction == MostExpensive {
			x, y = y, x
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})

	if len(priced) > n {
		priced = priced[:n]
	}
	return priced
}

// Prices returns every non-null price in source order.
func (e *Engine) Prices() []float64 {
	prices := make([]float64, 0, e.ds.Len())
	for i := 0; i < e.ds.Len(); i++ {
		if m := e.ds.At(i); m.HasPrice() {
			prices = append(prices, *m.Price)
		}
	}
	return prices
}

// PriceStats summarises a set of prices. The pointers are nil when no price
// was present.
type PriceStats struct {
	Count int
	Mean  *float64
	Min   *float64
	Max   *float64
}

// priceAccumulator folds prices into PriceStats one record at a time.
type priceAccumulator struct {
	count     int
	sum       float64
	low, high float64
}

func (a *priceAccumulator) add(m dataset.Medicine) {
	if !m.HasPrice() {
		return
	}
	p := *m.Price
	if a.count == 0 || p < a.low {
		a.low = p
	}
	if a.count == 0 || p > a.high {
		a.high = p
	}
	a.sum += p
	a.count++
}

func (a *priceAccumulator) stats() PriceStats {
	stats := PriceStats{Count: a.count}
	if a.count > 0 {
		mean := a.sum / float64(a.count)
		low, high := a.low, a.high
		stats.Mean, stats.Min, stats.Max = &mean, &low, &high
	}
	return stats
}

// Summary is the dataset-wide overview.
type Summary struct {
	TotalRecords        int
	UniqueManufacturers int
	UniqueCompositions  int
	Prices              PriceStats
}

// PriceSummary computes record count, price statistics over non-null prices
// and the number of distinct manufacturers and first compositions.
func (e *Engine) PriceSummary() Summary {
	var prices priceAccumulator
	manufacturers := make(map[string]struct{})
	compositions := make(map[string]struct{})
	for i := 0; i < e.ds.Len(); i++ {
		m := e.ds.At(i)
		prices.add(m)
		if manufacturer, ok := m.Manufacturer(); ok {
			manufacturers[manufacturer] = struct{}{}
		}
		if primary, ok := m.Primary(); ok {
			compositions[primary] = struct{}{}
		}
	}

	return Summary{
		TotalRecords:        e.ds.Len(),
		UniqueManufacturers: len(manufacturers),
		UniqueCompositions:  len(compositions),
		Prices:              prices.stats(),
	}
}

// ClassStats is the size of a drug class and the statistics of its prices.
type ClassStats struct {
	Class   string
	Matches int
	Prices  PriceStats
}

// ClassPriceStats counts the records of class c and summarises their prices.
func (e *Engine) ClassPriceStats(c Class) ClassStats {
	matches := e.FilterByClass(c)
	var prices priceAccumulator
	for _, m := range matches {
		prices.add(m)
	}
	return ClassStats{
		Class:   c.Name,
		Matches: len(matches),
		Prices:  prices.stats(),
	}
}

// CompositionComplexity returns, per distinct medicine name, how many
// compositions it lists (1 or 2), highest first, at most n entries.
// A repeated name keeps its first position and takes the count of its last
// row that lists any composition.
func (e *Engine) CompositionComplexity(n int) []Count {
	if n <= 0 {
		return nil
	}

	var entries []Count
	position := make(map[string]int)
	for i := 0; i < e.ds.Len(); i++ {
		m := e.ds.At(i)
		complexity := 0
		if _, ok := m.Primary(); ok {
			complexity++
		}
		if _, ok := m.Secondary(); ok {
			complexity++
		}
		if complexity == 0 {
			continue
		}
		if at, seen := position[m.Name]; seen {
			entries[at].Count = complexity
			continue
		}
		position[m.Name] = len(entries)
		entries = append(entries, Count{Label: m.Name, Count: complexity})
	}

	slices.SortStableFunc(entries, func(a, b Count) int {
		return b.Count - a.Count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Portfolio describes the records of every manufacturer whose name contains
// a query string.
type Portfolio struct {
	Query          string
	Manufacturers  []string
	TotalMedicines int
	Compositions   []Count
}

// ManufacturerPortfolio matches manufacturers by case-insensitive substring
// and returns their n most common pooled compositions.
func (e *Engine) ManufacturerPortfolio(query string, n int) Portfolio {
	query = strings.TrimSpace(query)
	portfolio := Portfolio{Query: query}
	if query == "" {
		return portfolio
	}
	needle := dataset.Lower(query)

	var positions []int
	seen := make(map[string]struct{})
	for i := 0; i < e.ds.Len(); i++ {
		key := e.ds.Keys(i).Manufacturer
		if key == "" || !strings.Contains(key, needle) {
			continue
		}
		positions = append(positions, i)
		manufacturer, _ := e.ds.At(i).Manufacturer()
		if _, dup := seen[manufacturer]; !dup {
			seen[manufacturer] = struct{}{}
			portfolio.Manufacturers = append(portfolio.Manufacturers, manufacturer)
		}
	}

	portfolio.TotalMedicines = len(positions)
	portfolio.Compositions = pooledCompositions(e.ds, positions).top(n)
	return portfolio
}
