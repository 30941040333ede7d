package dataset

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SearchKeys holds the lower-cased forms of the searchable columns of a record.
// An empty key means the column is absent.
type SearchKeys struct {
	Name         string
	Manufacturer string
	Primary      string
	Secondary    string
}

// Dataset is the ordered, immutable medicines table. All indexes are built
// once in newDataset and never change, so a Dataset is safe for any number of
// concurrent readers.
type Dataset struct {
	source  string
	records []Medicine
	keys    []SearchKeys

	firstByName    map[string]int
	byManufacturer map[string][]int
	byPrimary      map[string][]int
	manufacturers  []string
}

func newDataset(records []Medicine, source string) *Dataset {
	ds := &Dataset{
		source:         source,
		records:        slices.Clip(records),
		keys:           make([]SearchKeys, len(records)),
		firstByName:    make(map[string]int),
		byManufacturer: make(map[string][]int),
		byPrimary:      make(map[string][]int),
	}

	// A Caser is stateful, keep this one local to the build
	lowerer := cases.Lower(language.Und)
	lower := func(s string) string {
		lowerer.Reset()
		return lowerer.String(s)
	}

	for i, m := range ds.records {
		keys := SearchKeys{Name: lower(m.Name)}

		if _, seen := ds.firstByName[m.Name]; !seen {
			ds.firstByName[m.Name] = i
		}
		if manufacturer, ok := m.Manufacturer(); ok {
			keys.Manufacturer = lower(manufacturer)
			if _, seen := ds.byManufacturer[manufacturer]; !seen {
				ds.manufacturers = append(ds.manufacturers, manufacturer)
			}
			ds.byManufacturer[manufacturer] = append(ds.byManufacturer[manufacturer], i)
		}
		if primary, ok := m.Primary(); ok {
			keys.Primary = lower(primary)
			ds.byPrimary[primary] = append(ds.byPrimary[primary], i)
		}
		if secondary, ok := m.Secondary(); ok {
			keys.Secondary = lower(secondary)
		}

		ds.keys[i] = keys
	}

	slices.Sort(ds.manufacturers)
	return ds
}

// Source returns the path the dataset was loaded from, empty for readers.
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns the record at source position i.
func (d *Dataset) At(i int) Medicine {
	return d.records[i]
}

// Keys returns the lower-cased search keys of the record at position i.
func (d *Dataset) Keys(i int) SearchKeys {
	return d.keys[i]
}

// Records returns a copy of all records in source order.
func (d *Dataset) Records() []Medicine {
	return slices.Clone(d.records)
}

// FirstByName returns the position of the first record whose name equals name.
func (d *Dataset) FirstByName(name string) (int, bool) {
	i, ok := d.firstByName[name]
	return i, ok
}

// ByManufacturer returns the positions, in source order, of the records made
// by exactly this manufacturer. The slice must not be modified.
func (d *Dataset) ByManufacturer(manufacturer string) []int {
	return slices.Clip(d.byManufacturer[manufacturer])
}

// ByPrimaryComposition returns the positions, in source order, of the records
// whose first composition equals composition. The slice must not be modified.
func (d *Dataset) ByPrimaryComposition(composition string) []int {
	return slices.Clip(d.byPrimary[composition])
}

// Manufacturers returns the distinct manufacturer names sorted ascending.
func (d *Dataset) Manufacturers() []string {
	return slices.Clone(d.manufacturers)
}

// Lower returns the lower-cased form of s, the form SearchKeys are stored in.
// It is plain lowering, not full case folding: "STRASSE" does not match "straße".
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
