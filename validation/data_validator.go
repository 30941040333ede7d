// Package validation provides input and data validation for the medicines API.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/interfaces"
)

// MaxQueryLength is the longest accepted query parameter, in characters
const MaxQueryLength = 200

// reportListLimit caps the example lists carried in a quality report
const reportListLimit = 10

var (
	ErrEmptyQuery        = errors.New("query cannot be empty")
	ErrQueryTooLong      = errors.New("query too long")
	ErrInvalidCharacters = errors.New("query contains control characters")
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// NormalizeQuery trims input and rejects values the query engine should not see.
// A blank query returns ErrEmptyQuery, which callers answer with an empty result.
func (v *DataValidatorImpl) NormalizeQuery(input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", ErrEmptyQuery
	}

	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return "", fmt.Errorf("%w: maximum %d characters, got %d", ErrQueryTooLong, MaxQueryLength, n)
	}

	if strings.IndexFunc(query, unicode.IsControl) >= 0 {
		return "", ErrInvalidCharacters
	}

	return query, nil
}

// ReportDataQuality counts missing values and duplicates in a loaded dataset
func (v *DataValidatorImpl) ReportDataQuality(ds *dataset.Dataset) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateIDs:                []int{},
		DuplicateNames:              []string{},
		RecordsWithoutPriceIDs:      []int{},
		RecordsWithoutCompositionID: []int{},
	}
	if ds == nil {
		return report
	}

	report.TotalRecords = ds.Len()
	seenIDs := make(map[int]bool, ds.Len())
	nameCounts := make(map[string]int, ds.Len())

	for i := 0; i < ds.Len(); i++ {
		m := ds.At(i)

		// Check 1: duplicate ids
		if seenIDs[m.ID] {
			report.DuplicateIDCount++
			if len(report.DuplicateIDs) < reportListLimit {
				report.DuplicateIDs = append(report.DuplicateIDs, m.ID)
			}
		}
		seenIDs[m.ID] = true

		// Check 2: names shared by several records, reported once each
		nameCounts[m.Name]++
		if nameCounts[m.Name] == 2 {
			report.DuplicateNameCount++
			if len(report.DuplicateNames) < reportListLimit {
				report.DuplicateNames = append(report.DuplicateNames, m.Name)
			}
		}

		// Check 3: missing values
		if _, ok := m.Manufacturer(); !ok {
			report.RecordsWithoutManufacturer++
		}
		if _, ok := m.Primary(); !ok {
			report.RecordsWithoutComposition++
			if len(report.RecordsWithoutCompositionID) < reportListLimit {
				report.RecordsWithoutCompositionID = append(report.RecordsWithoutCompositionID, m.ID)
			}
		}
		if !m.HasPrice() {
			report.RecordsWithoutPrice++
			if len(report.RecordsWithoutPriceIDs) < reportListLimit {
				report.RecordsWithoutPriceIDs = append(report.RecordsWithoutPriceIDs, m.ID)
			}
		}

		if m.IsDiscontinued {
			report.DiscontinuedRecords++
		}
	}

	return report
}
