package collect

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

// Descriptor identifies exactly one endpoint call. Descriptors are values;
// pagination derives new ones with NextPage rather than mutating.
type Descriptor struct {
	AnalysisID  int64
	Category    taxonomy.Category
	Polarity    taxonomy.Polarity
	HasPolarity bool
	Page        int
}

// Path returns the endpoint path for the descriptor's family.
func (d Descriptor) Path() string {
	switch d.Category.Family {
	case taxonomy.FamilyAggregate:
		return fmt.Sprintf("/analyze/%d/aggregate", d.AnalysisID)
	case taxonomy.FamilyBasic:
		return fmt.Sprintf("/analyze/%d/basic", d.AnalysisID)
	default:
		return fmt.Sprintf("/analyze/%d/hidden-insurance", d.AnalysisID)
	}
}

// Query returns the query parameters for the call. Binary endpoints take
// none; basic endpoints carry the lookback window in years.
func (d Descriptor) Query(searchYear int) url.Values {
	params := url.Values{}
	switch d.Category.Family {
	case taxonomy.FamilyAggregate:
		params.Set("page", strconv.Itoa(d.Page))
		params.Set("ansType", string(d.Category.Code))
		params.Set("asbSicked", strconv.Itoa(int(d.Polarity)))
	case taxonomy.FamilyBasic:
		params.Set("page", strconv.Itoa(d.Page))
		params.Set("ansType", string(d.Category.Code))
		params.Set("asbDiseaseCode", "")
		params.Set("searchYear", strconv.Itoa(searchYear))
	}
	return params
}

// NextPage returns the descriptor for the following page.
func (d Descriptor) NextPage() Descriptor {
	next := d
	next.Page = d.Page + 1
	return next
}

// Label names the call for logs and the audit trail.
func (d Descriptor) Label() string {
	if d.HasPolarity {
		return fmt.Sprintf("%s/%s sicked=%d page=%d", d.Category.Code, d.Category.Family, d.Polarity, d.Page)
	}
	if d.Category.IsPaginated() {
		return fmt.Sprintf("%s/%s page=%d", d.Category.Code, d.Category.Family, d.Page)
	}
	return fmt.Sprintf("%s/%s", d.Category.Code, d.Category.Family)
}

// Enumerate builds the ordered call sequence for one analysis: aggregate
// categories once per polarity value, basic categories once, the binary
// report once. Only page 1 is emitted here; the executor follows pagination
// from observed item counts.
func Enumerate(analysisID int64, categories []taxonomy.Category) []Descriptor {
	descriptors := make([]Descriptor, 0, len(categories)*2)
	for _, category := range categories {
		switch category.Family {
		case taxonomy.FamilyAggregate:
			for _, polarity := range taxonomy.Polarities() {
				descriptors = append(descriptors, Descriptor{
					AnalysisID:  analysisID,
					Category:    category,
					Polarity:    polarity,
					HasPolarity: true,
					Page:        1,
				})
			}
		case taxonomy.FamilyBasic:
			descriptors = append(descriptors, Descriptor{
				AnalysisID: analysisID,
				Category:   category,
				Page:       1,
			})
		case taxonomy.FamilyBinary:
			descriptors = append(descriptors, Descriptor{
				AnalysisID: analysisID,
				Category:   category,
			})
		}
	}
	return descriptors
}
