package taxonomy_test

import (
	"testing"

	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

func TestAllContainsThirteenCategoriesPlusReport(t *testing.T) {
	all := taxonomy.All()
	if len(all) != 14 {
		t.Fatalf("expected 14 table entries, got %d", len(all))
	}

	var binary int
	for _, category := range all {
		if category.Family == taxonomy.FamilyBinary {
			binary++
		}
		if category.Label == "" {
			t.Fatalf("category %s has no label", category.Code)
		}
	}
	if binary != 1 {
		t.Fatalf("expected exactly one binary category, got %d", binary)
	}
}

func TestAllIsStableAcrossCalls(t *testing.T) {
	first := taxonomy.All()
	second := taxonomy.All()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("table order changed at index %d: %v vs %v", i, first[i], second[i])
		}
	}

	// Mutating a returned copy must not leak into the table.
	first[0].Label = "changed"
	if got := taxonomy.All()[0].Label; got == "changed" {
		t.Fatal("All returned a shared slice")
	}
}

func TestLookup(t *testing.T) {
	category, ok := taxonomy.Lookup(taxonomy.CodeSurgery)
	if !ok {
		t.Fatal("expected surgery category")
	}
	if category.Family != taxonomy.FamilyAggregate {
		t.Fatalf("expected surgery on the aggregate family, got %s", category.Family)
	}
	if _, ok := taxonomy.Lookup("ANS999"); ok {
		t.Fatal("expected miss for unknown code")
	}
}

func TestReportIsNotPaginated(t *testing.T) {
	report, ok := taxonomy.Lookup(taxonomy.CodeHiddenReport)
	if !ok {
		t.Fatal("expected report category")
	}
	if report.IsPaginated() {
		t.Fatal("report endpoint must not paginate")
	}
}
