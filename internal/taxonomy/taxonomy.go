package taxonomy

// Family identifies which endpoint family serves a category.
type Family string

const (
	// FamilyAggregate endpoints are queried once per polarity value.
	FamilyAggregate Family = "aggregate"
	// FamilyBasic endpoints take a lookback window and no polarity parameter.
	FamilyBasic Family = "basic"
	// FamilyBinary endpoints return an opaque report body and take no record
	// parameters.
	FamilyBinary Family = "binary"
)

// Polarity distinguishes record holders from non-holders on aggregate queries.
type Polarity int

const (
	PolarityNonHolder Polarity = 0
	PolarityHolder    Polarity = 1
)

// Polarities lists both polarity values in fetch order.
func Polarities() []Polarity {
	return []Polarity{PolarityNonHolder, PolarityHolder}
}

// Code is an upstream category code.
type Code string

const (
	CodeTreatmentHistory Code = "ANS001"
	CodeOutpatient       Code = "ANS002"
	CodeInpatient        Code = "ANS003"
	CodeSurgery          Code = "ANS004"
	CodeLongTermMeds     Code = "ANS005"
	CodeCheckup          Code = "ANS006"
	CodeDental           Code = "ANS007"
	CodeProcedure        Code = "ANS008"
	CodeMedicalRecords   Code = "ANS009"
	CodeLifeInsurance    Code = "ANS010"
	CodeIndemnity        Code = "ANS011"
	CodeDentalInsurance  Code = "ANS012"
	CodeAnnuity          Code = "ANS013"
	CodeHiddenReport     Code = "REPORT"
)

// Category describes one entry of the fixed category table.
type Category struct {
	Code   Code
	Family Family
	Label  string
}

var categories = []Category{
	{Code: CodeTreatmentHistory, Family: FamilyAggregate, Label: "진료내역"},
	{Code: CodeOutpatient, Family: FamilyAggregate, Label: "통원/처방"},
	{Code: CodeInpatient, Family: FamilyAggregate, Label: "입원"},
	{Code: CodeSurgery, Family: FamilyAggregate, Label: "수술"},
	{Code: CodeLongTermMeds, Family: FamilyAggregate, Label: "장기투약"},
	{Code: CodeCheckup, Family: FamilyAggregate, Label: "건강검진"},
	{Code: CodeDental, Family: FamilyBasic, Label: "치과치료"},
	{Code: CodeProcedure, Family: FamilyBasic, Label: "시술"},
	{Code: CodeMedicalRecords, Family: FamilyBasic, Label: "의료기록"},
	{Code: CodeLifeInsurance, Family: FamilyBasic, Label: "생명보험"},
	{Code: CodeIndemnity, Family: FamilyBasic, Label: "실손보험"},
	{Code: CodeDentalInsurance, Family: FamilyBasic, Label: "치과보험"},
	{Code: CodeAnnuity, Family: FamilyBasic, Label: "연금보험"},
	{Code: CodeHiddenReport, Family: FamilyBinary, Label: "숨은보험 보고서"},
}

var categoryIndex = func() map[Code]Category {
	index := make(map[Code]Category, len(categories))
	for _, category := range categories {
		index[category.Code] = category
	}
	return index
}()

// All returns the full category table in fetch order. The returned slice is
// a copy; callers may reorder it freely.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup returns the category for a code.
func Lookup(code Code) (Category, bool) {
	category, ok := categoryIndex[code]
	return category, ok
}

// IsPaginated reports whether a category's endpoint family pages results.
func (c Category) IsPaginated() bool {
	return c.Family != FamilyBinary
}
