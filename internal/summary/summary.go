package summary

import (
	"github.com/jhkim09/insuuniverse/internal/normalize"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

// CategoryStats aggregates the records of one category.
type CategoryStats struct {
	Count      int
	VisitDays  int
	DosingDays int
	Operations []string
	Treatments []string
}

// Summary maps each category to its aggregated stats. Categories without
// records are absent; Stats returns zero values for them.
type Summary struct {
	Categories   map[taxonomy.Code]CategoryStats
	TotalRecords int
}

// Summarize groups records by category and computes the derived totals:
// visit-day sums for outpatient and inpatient records, dosing-day sums for
// long-term medication, distinct operation names for surgery, distinct
// treatment descriptions for dental, distinct procedure names for
// procedures. Empty input yields all-zero stats.
func Summarize(records []normalize.Record) Summary {
	categories := make(map[taxonomy.Code]CategoryStats)
	seenOperations := make(map[taxonomy.Code]map[string]struct{})
	seenTreatments := make(map[taxonomy.Code]map[string]struct{})

	for _, record := range records {
		stats := categories[record.CategoryCode]
		stats.Count++

		switch record.CategoryCode {
		case taxonomy.CodeOutpatient, taxonomy.CodeInpatient:
			stats.VisitDays += record.VisitDays
		case taxonomy.CodeLongTermMeds:
			stats.DosingDays += record.DosingDays
		case taxonomy.CodeSurgery, taxonomy.CodeProcedure:
			stats.Operations = appendDistinct(stats.Operations, seen(seenOperations, record.CategoryCode), record.Operation)
		case taxonomy.CodeDental:
			stats.Treatments = appendDistinct(stats.Treatments, seen(seenTreatments, record.CategoryCode), record.Treatment)
		}

		categories[record.CategoryCode] = stats
	}

	return Summary{Categories: categories, TotalRecords: len(records)}
}

func seen(index map[taxonomy.Code]map[string]struct{}, code taxonomy.Code) map[string]struct{} {
	values, ok := index[code]
	if !ok {
		values = make(map[string]struct{})
		index[code] = values
	}
	return values
}

func appendDistinct(values []string, seen map[string]struct{}, value string) []string {
	if value == "" {
		return values
	}
	if _, dup := seen[value]; dup {
		return values
	}
	seen[value] = struct{}{}
	return append(values, value)
}

// Stats returns the aggregated stats for a category, zero-valued when the
// category produced no records.
func (s Summary) Stats(code taxonomy.Code) CategoryStats {
	return s.Categories[code]
}

// Count returns the deduplicated record count for a category.
func (s Summary) Count(code taxonomy.Code) int {
	return s.Categories[code].Count
}

// HasSurgery reports whether any surgery records were collected.
func (s Summary) HasSurgery() bool {
	return s.Count(taxonomy.CodeSurgery) > 0
}

// HasInpatientStay reports whether any inpatient records were collected.
func (s Summary) HasInpatientStay() bool {
	return s.Count(taxonomy.CodeInpatient) > 0
}

// HasDentalTreatment reports whether any dental records were collected.
func (s Summary) HasDentalTreatment() bool {
	return s.Count(taxonomy.CodeDental) > 0
}
