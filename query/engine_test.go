package query

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/giygas/medicines-api/dataset"
)

const testCSV = "id,name,price(₹),Is_discontinued,manufacturer_name,type,pack_size_label,short_composition1,short_composition2\n" +
	"1,Panacea 500,12.5,FALSE,Acme Labs,allopathy,strip of 10 tablets,Paracetamol (500mg),\n" +
	"2,Panadol,8.0,FALSE,Cipla Ltd,allopathy,strip of 15 tablets,Paracetamol (650mg),Caffeine (50mg)\n" +
	"3,Glycomet 500,NA,FALSE,Cipla Ltd,allopathy,strip of 10 tablets,Metformin (500mg),\n" +
	"4,Amlokind 5,30,FALSE,Mankind Pharma,allopathy,strip of 10 tablets,Amlodipine (5mg),\n" +
	"5,Telma 40,200,TRUE,Glenmark,allopathy,strip of 15 tablets,Telmisartan (40mg),Amlodipine (5mg)\n" +
	"6,Voveran 50,45.25,FALSE,Novartis,allopathy,strip of 10 tablets,Diclofenac (50mg),\n" +
	"7,Mystery Syrup,15,FALSE,,allopathy,bottle of 100 ml,,\n" +
	"8,Dolo 650,30,FALSE,Micro Labs,allopathy,strip of 15 tablets,Paracetamol (650mg),\n"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newEngineFrom(t, testCSV)
}

func newEngineFrom(t *testing.T, csv string) *Engine {
	t.Helper()
	ds, err := dataset.Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Failed to parse test dataset: %v", err)
	}
	return New(ds)
}

func names(records []dataset.Medicine) []string {
	out := make([]string, 0, len(records))
	for _, m := range records {
		out = append(out, m.Name)
	}
	return out
}

// ============================================================================
// FILTERS
// ============================================================================

func TestFilterByCompositionKeyword(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name     string
		keywords []string
		want     []string
	}{
		{"single keyword", []string{"Paracetamol"}, []string{"Panacea 500", "Panadol", "Dolo 650"}},
		{"case insensitive", []string{"PARACETAMOL"}, []string{"Panacea 500", "Panadol", "Dolo 650"}},
		{"substring", []string{"cetam"}, []string{"Panacea 500", "Panadol", "Dolo 650"}},
		{"secondary composition", []string{"Caffeine"}, []string{"Panadol"}},
		{"any keyword", []string{"Amlodipine", "Metformin"}, []string{"Glycomet 500", "Amlokind 5", "Telma 40"}},
		{"no match", []string{"Ibuprofen"}, []string{}},
		{"no keywords", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(engine.FilterByCompositionKeyword(tt.keywords))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFilterByClass(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		class Class
		want  []string
	}{
		{Analgesic, []string{"Panacea 500", "Panadol", "Dolo 650"}},
		{Diabetes, []string{"Glycomet 500"}},
		{BloodPressure, []string{"Amlokind 5", "Telma 40"}},
		{Diclofenac, []string{"Voveran 50"}},
	}

	for _, tt := range tests {
		t.Run(tt.class.Name, func(t *testing.T) {
			got := names(engine.FilterByClass(tt.class))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClasses(t *testing.T) {
	for name, class := range Classes {
		if class.Name != name {
			t.Errorf("Class registered as %q is named %q", name, class.Name)
		}
		if len(class.Keywords) == 0 {
			t.Errorf("Class %q has no keywords", name)
		}
	}
}

func TestSortByPrice(t *testing.T) {
	csv := "id,name,price(₹),Is_discontinued,manufacturer_name,type,pack_size_label,short_composition1,short_composition2\n" +
		"1,Panacea 500,12.5,FALSE,Cipla,allopathy,strip,Paracetamol,\n" +
		"2,Panadol,8.0,FALSE,GSK,allopathy,strip,Paracetamol,\n"
	engine := newEngineFrom(t, csv)

	got := names(SortByPrice(engine.FilterByCompositionKeyword([]string{"Paracetamol"})))
	want := []string{"Panadol", "Panacea 500"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSortByPrice_NullsLastAndStable(t *testing.T) {
	engine := newTestEngine(t)
	records := engine.Dataset().Records()

	sorted := SortByPrice(records)

	want := []string{
		"Panadol",       // 8
		"Panacea 500",   // 12.5
		"Mystery Syrup", // 15
		"Amlokind 5",    // 30, first in source order
		"Dolo 650",      // 30
		"Voveran 50",    // 45.25
		"Telma 40",      // 200
		"Glycomet 500",  // null
	}
	if got := names(sorted); !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if names(records)[0] != "Panacea 500" {
		t.Error("SortByPrice must not reorder its input")
	}
}

// ============================================================================
// SEARCH
// ============================================================================

func TestSearchByNamePrefix(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"prefix", "Pana", 50, []string{"Panacea 500", "Panadol"}},
		{"case insensitive", "pANA", 50, []string{"Panacea 500", "Panadol"}},
		{"trimmed", "  dolo ", 50, []string{"Dolo 650"}},
		{"limited", "pana", 1, []string{"Panacea 500"}},
		{"prefix only", "dol", 50, []string{"Dolo 650"}},
		{"empty query", "", 50, nil},
		{"blank query", "   ", 50, nil},
		{"zero limit", "pana", 0, nil},
		{"no match", "zzz", 50, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.SearchByNamePrefix(tt.query, tt.limit)
			if len(got) > tt.limit && tt.limit > 0 {
				t.Errorf("Returned %d records over limit %d", len(got), tt.limit)
			}
			if tt.want == nil {
				if len(got) != 0 {
					t.Errorf("Expected no results, got %v", names(got))
				}
				return
			}
			if !slices.Equal(names(got), tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, names(got))
			}
		})
	}
}

func TestSearchByNamePrefix_OnlyMatchingPrefixes(t *testing.T) {
	engine := newTestEngine(t)
	for _, m := range engine.SearchByNamePrefix("Para", 50) {
		if !strings.HasPrefix(strings.ToLower(m.Name), "para") {
			t.Errorf("%q does not start with Para", m.Name)
		}
	}
}

func TestSearchByNamePrefix_LowerCaseOnly(t *testing.T) {
	engine := newEngineFrom(t, "id,name,price(₹),Is_discontinued,manufacturer_name,type,pack_size_label,short_composition1,short_composition2\n"+
		"1,Straße Tabs,10,FALSE,Acme Labs,allopathy,strip of 10 tablets,Paracetamol (500mg),\n")

	if got := engine.SearchByNamePrefix("STRASSE", 50); len(got) != 0 {
		t.Errorf("Expected no match without full case folding, got %v", names(got))
	}
	if got := engine.SearchByNamePrefix("STRAßE", 50); len(got) != 1 {
		t.Errorf("Expected a case-insensitive match, got %v", names(got))
	}
}

func TestAutocompleteSuggestions(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"manufacturer once", "cip", []string{"Cipla Ltd"}},
		{"names", "dol", []string{"Panadol", "Dolo 650"}},
		{"compositions", "paracet", []string{"Paracetamol (500mg)", "Paracetamol (650mg)"}},
		{"manufacturers in first-seen order", "lab", []string{"Acme Labs", "Micro Labs"}},
		{"too short", "c", nil},
		{"blank", "   ", nil},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.AutocompleteSuggestions(tt.query, DefaultSuggestionLimits)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Expected nil, got %v", got)
				}
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAutocompleteSuggestions_Order(t *testing.T) {
	engine := newTestEngine(t)

	// names first, then manufacturers, then compositions
	got := engine.AutocompleteSuggestions("am", SuggestionLimits{Names: 10, Manufacturers: 5, Compositions: 5, Total: 15})
	want := []string{"Amlokind 5", "Paracetamol (500mg)", "Paracetamol (650mg)", "Amlodipine (5mg)"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestAutocompleteSuggestions_Limits(t *testing.T) {
	engine := newTestEngine(t)

	got := engine.AutocompleteSuggestions("an", SuggestionLimits{Names: 1, Manufacturers: 1, Compositions: 1, Total: 2})
	if len(got) != 2 {
		t.Fatalf("Expected 2 suggestions, got %v", got)
	}
	if got[0] != "Panacea 500" {
		t.Errorf("Expected the first name match first, got %q", got[0])
	}
	if got[1] != "Mankind Pharma" {
		t.Errorf("Expected the first manufacturer match second, got %q", got[1])
	}
}

// ============================================================================
// MANUFACTURERS AND DETAILS
// ============================================================================

func TestListDistinctManufacturers(t *testing.T) {
	engine := newTestEngine(t)

	want := []string{"Acme Labs", "Cipla Ltd", "Glenmark", "Mankind Pharma", "Micro Labs", "Novartis"}
	if got := engine.ListDistinctManufacturers(); !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFilterByManufacturer(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name      string
		company   string
		limit     int
		wantNames []string
		wantTotal int
	}{
		{"all", "Cipla Ltd", 100, []string{"Panadol", "Glycomet 500"}, 2},
		{"truncated", "Cipla Ltd", 1, []string{"Panadol"}, 2},
		{"exact match only", "cipla ltd", 100, []string{}, 0},
		{"no substring match", "Cipla", 100, []string{}, 0},
		{"zero limit", "Cipla Ltd", 0, []string{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.FilterByManufacturer(tt.company, tt.limit)
			if got.Total != tt.wantTotal {
				t.Errorf("Expected total %d, got %d", tt.wantTotal, got.Total)
			}
			if got.Total < len(got.Medicines) {
				t.Errorf("Total %d is smaller than the %d returned", got.Total, len(got.Medicines))
			}
			if !slices.Equal(names(got.Medicines), tt.wantNames) {
				t.Errorf("Expected %v, got %v", tt.wantNames, names(got.Medicines))
			}
		})
	}
}

func TestGetRecordDetail(t *testing.T) {
	engine := newTestEngine(t)

	detail, err := engine.GetRecordDetail("Panadol")
	if err != nil {
		t.Fatalf("GetRecordDetail failed: %v", err)
	}

	if detail.Medicine.ID != 2 {
		t.Errorf("Expected id 2, got %d", detail.Medicine.ID)
	}
	if got := names(detail.SameManufacturer); !slices.Equal(got, []string{"Glycomet 500"}) {
		t.Errorf("Expected [Glycomet 500], got %v", got)
	}
	if got := names(detail.SameComposition); !slices.Equal(got, []string{"Dolo 650"}) {
		t.Errorf("Expected [Dolo 650], got %v", got)
	}
}

func TestGetRecordDetail_NotFound(t *testing.T) {
	engine := newTestEngine(t)

	for _, name := range []string{"Unknown", "panadol", ""} {
		if _, err := engine.GetRecordDetail(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetRecordDetail(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestGetRecordDetail_SkipsSameName(t *testing.T) {
	csv := "id,name,price(₹),Is_discontinued,manufacturer_name,type,pack_size_label,short_composition1,short_composition2\n" +
		"1,Dolo 650,30,FALSE,Micro Labs,allopathy,strip,Paracetamol,\n" +
		"2,Dolo 650,32,FALSE,Micro Labs,allopathy,strip,Paracetamol,\n" +
		"3,Dolo 500,20,FALSE,Micro Labs,allopathy,strip,Paracetamol,\n" +
		"4,Amlong,40,FALSE,Micro Labs,allopathy,strip,Amlodipine,\n" +
		"5,Vasograin,50,FALSE,Micro Labs,allopathy,strip,Ergotamine,\n" +
		"6,Pacimol,10,FALSE,Ipca,allopathy,strip,Paracetamol,\n" +
		"7,Crocin,15,FALSE,GSK,allopathy,strip,Paracetamol,\n" +
		"8,Calpol,12,FALSE,GSK,allopathy,strip,Paracetamol,\n" +
		"9,Micropyrin,5,FALSE,Micro Labs,allopathy,strip,Aspirin,\n" +
		"10,Microdox,8,FALSE,Micro Labs,allopathy,strip,Doxycycline,\n" +
		"11,Microtrip,9,FALSE,Micro Labs,allopathy,strip,Amitriptyline,\n"
	engine := newEngineFrom(t, csv)

	detail, err := engine.GetRecordDetail("Dolo 650")
	if err != nil {
		t.Fatalf("GetRecordDetail failed: %v", err)
	}

	if detail.Medicine.ID != 1 {
		t.Errorf("Expected the first record, got id %d", detail.Medicine.ID)
	}

	wantManufacturer := []string{"Dolo 500", "Amlong", "Vasograin", "Micropyrin", "Microdox"}
	if got := names(detail.SameManufacturer); !slices.Equal(got, wantManufacturer) {
		t.Errorf("Expected %v, got %v", wantManufacturer, got)
	}

	wantComposition := []string{"Dolo 500", "Pacimol", "Crocin"}
	if got := names(detail.SameComposition); !slices.Equal(got, wantComposition) {
		t.Errorf("Expected %v, got %v", wantComposition, got)
	}
}

func TestGetRecordDetail_AbsentColumns(t *testing.T) {
	engine := newTestEngine(t)

	detail, err := engine.GetRecordDetail("Mystery Syrup")
	if err != nil {
		t.Fatalf("GetRecordDetail failed: %v", err)
	}
	if len(detail.SameManufacturer) != 0 || len(detail.SameComposition) != 0 {
		t.Errorf("Absent manufacturer and composition share nothing, got %+v", detail)
	}
}

func TestGetRecordDetail_Idempotent(t *testing.T) {
	engine := newTestEngine(t)

	first, err := engine.GetRecordDetail("Panadol")
	if err != nil {
		t.Fatalf("GetRecordDetail failed: %v", err)
	}
	second, _ := engine.GetRecordDetail("Panadol")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Repeated lookups differ: %+v vs %+v", first, second)
	}
}

// Two engines over two loads of the same bytes answer identically.
func TestEngine_Deterministic(t *testing.T) {
	a := newTestEngine(t)
	b := newTestEngine(t)

	checks := map[string]func(*Engine) any{
		"top manufacturers": func(e *Engine) any { return e.TopManufacturers(15) },
		"compositions":      func(e *Engine) any { return e.CompositionFrequency(15) },
		"expensive":         func(e *Engine) any { return e.TopNByPrice(10, MostExpensive) },
		"cheapest":          func(e *Engine) any { return e.TopNByPrice(10, Cheapest) },
		"summary":           func(e *Engine) any { return e.PriceSummary() },
		"search":            func(e *Engine) any { return e.SearchByNamePrefix("pa", 50) },
		"suggestions":       func(e *Engine) any { return e.AutocompleteSuggestions("la", DefaultSuggestionLimits) },
		"company":           func(e *Engine) any { return e.FilterByManufacturer("Cipla Ltd", 100) },
		"blood pressure":    func(e *Engine) any { return e.ClassPriceStats(BloodPressure) },
		"complexity":        func(e *Engine) any { return e.CompositionComplexity(10) },
		"portfolio":         func(e *Engine) any { return e.ManufacturerPortfolio("labs", 5) },
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			if x, y := check(a), check(b); !reflect.DeepEqual(x, y) {
				t.Errorf("Engines disagree: %+v vs %+v", x, y)
			}
		})
	}
}
