package query

// Class is a named drug class recognised by composition keywords.
// Matching is a plain case-insensitive substring heuristic over both
// composition columns, not a therapeutic classification.
type Class struct {
	Name     string
	Keywords []string
}

var (
	Analgesic = Class{
		Name:     "analgesic",
		Keywords: []string{"Paracetamol"},
	}

	Diabetes = Class{
		Name:     "diabetes",
		Keywords: []string{"Glimepiride", "Metformin", "Insulin", "Sitagliptin"},
	}

	BloodPressure = Class{
		Name:     "blood-pressure",
		Keywords: []string{"Amlodipine", "Atenolol", "Losartan", "Telmisartan"},
	}

	Diclofenac = Class{
		Name:     "diclofenac",
		Keywords: []string{"Diclofenac"},
	}
)

// Classes lists every known class, keyed by Class.Name.
var Classes = map[string]Class{
	Analgesic.Name:     Analgesic,
	Diabetes.Name:      Diabetes,
	BloodPressure.Name: BloodPressure,
	Diclofenac.Name:    Diclofenac,
}
