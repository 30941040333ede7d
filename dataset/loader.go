// Package dataset parses the medicines CSV export into an ordered, immutable
// Dataset and builds the read-only lookup indexes used by the query engine.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/giygas/medicines-api/logging"
	"golang.org/x/text/encoding/charmap"
)

// Source CSV column names.
const (
	ColumnID           = "id"
	ColumnName         = "name"
	ColumnPrice        = "price(₹)"
	ColumnDiscontinued = "Is_discontinued"
	ColumnManufacturer = "manufacturer_name"
	ColumnType         = "type"
	ColumnPackSize     = "pack_size_label"
	ColumnComposition1 = "short_composition1"
	ColumnComposition2 = "short_composition2"
)

var requiredColumns = []string{
	ColumnID,
	ColumnName,
	ColumnPrice,
	ColumnDiscontinued,
	ColumnManufacturer,
	ColumnType,
	ColumnPackSize,
	ColumnComposition1,
	ColumnComposition2,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads and parses the CSV file at path. It either returns a complete
// Dataset or a *LoadError; rows are never partially loaded.
func Load(path string) (*Dataset, error) {
	start := time.Now()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Err: ErrFileNotFound}
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	ds, err := parseBytes(raw, path)
	if err != nil {
		return nil, err
	}

	logging.Info("Dataset loaded",
		"path", path,
		"records", ds.Len(),
		"duration", time.Since(start).String())

	return ds, nil
}

// Parse reads a CSV document from r. It behaves like Load without the file
// system access.
func Parse(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("failed to read dataset: %w", err)}
	}
	return parseBytes(raw, "")
}

func parseBytes(raw []byte, path string) (*Dataset, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &LoadError{Path: path, Err: ErrEmptyFile}
	}

	// Exports are usually UTF-8, older ones are Latin-1
	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(raw)
	} else {
		logging.Warn("Dataset is not valid UTF-8, decoding as ISO-8859-1", "path", path)
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.ReuseRecord = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Path: path, Err: ErrEmptyFile}
		}
		return nil, &LoadError{Path: path, Line: 1, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, &LoadError{Path: path, Line: 1, Err: err}
	}

	var records []Medicine
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
				err = parseErr.Err
			}
			return nil, &LoadError{Path: path, Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}

		line, _ := csvReader.FieldPos(0)
		if len(row) > len(header) {
			return nil, &LoadError{
				Path: path,
				Line: line,
				Err:  fmt.Errorf("%w: expected %d fields, saw %d", ErrMalformedRow, len(header), len(row)),
			}
		}

		record, err := columns.decode(row)
		if err != nil {
			return nil, &LoadError{Path: path, Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		records = append(records, record)
	}

	return newDataset(records, path), nil
}

// columnIndex maps each known column to its position in the header.
type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	columns := make(columnIndex, len(requiredColumns))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if isPriceColumn(name) {
			name = ColumnPrice
		}
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return columns, nil
}

// isPriceColumn accepts the currency suffixed header as well as a bare "price",
// since the currency symbol does not survive a Latin-1 round trip.
func isPriceColumn(name string) bool {
	return name == "price" || strings.HasPrefix(name, "price(")
}

// cell returns the value of a column and whether it is present.
// Short rows leave trailing columns absent.
func (c columnIndex) cell(row []string, column string) (string, bool) {
	i := c[column]
	if i >= len(row) || IsNA(row[i]) {
		return "", false
	}
	return row[i], true
}

func (c columnIndex) optional(row []string, column string) *string {
	value, ok := c.cell(row, column)
	if !ok {
		return nil
	}
	return &value
}

func (c columnIndex) decode(row []string) (Medicine, error) {
	rawID, ok := c.cell(row, ColumnID)
	if !ok {
		return Medicine{}, fmt.Errorf("missing %s", ColumnID)
	}
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return Medicine{}, fmt.Errorf("invalid %s %q", ColumnID, rawID)
	}

	name, ok := c.cell(row, ColumnName)
	if !ok {
		return Medicine{}, fmt.Errorf("missing %s for id %d", ColumnName, id)
	}

	medicine := Medicine{
		ID:                   id,
		Name:                 name,
		ManufacturerName:     c.optional(row, ColumnManufacturer),
		CompositionPrimary:   c.optional(row, ColumnComposition1),
		CompositionSecondary: c.optional(row, ColumnComposition2),
		PackSizeLabel:        c.optional(row, ColumnPackSize),
		Type:                 c.optional(row, ColumnType),
	}

	if rawPrice, ok := c.cell(row, ColumnPrice); ok {
		price, err := strconv.ParseFloat(strings.TrimSpace(rawPrice), 64)
		if err != nil {
			return Medicine{}, fmt.Errorf("invalid %s %q for id %d", ColumnPrice, rawPrice, id)
		}
		// Non-finite prices are absent, they have no JSON form
		if !math.IsNaN(price) && !math.IsInf(price, 0) {
			medicine.Price = &price
		}
	}

	if rawFlag, ok := c.cell(row, ColumnDiscontinued); ok {
		flag, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(rawFlag)))
		if err != nil {
			return Medicine{}, fmt.Errorf("invalid %s %q for id %d", ColumnDiscontinued, rawFlag, id)
		}
		medicine.IsDiscontinued = flag
	}

	return medicine, nil
}
