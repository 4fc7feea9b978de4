package collect_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/jhkim09/insuuniverse/internal/collect"
	"github.com/jhkim09/insuuniverse/internal/config"
	"github.com/jhkim09/insuuniverse/internal/portal"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

type fakeFetcher struct {
	calls   []string
	handler func(path string, params url.Values) (int, []byte, error)
}

func (f *fakeFetcher) Get(_ context.Context, _ *portal.AuthContext, path string, params url.Values) (int, []byte, error) {
	f.calls = append(f.calls, path+"?"+params.Encode())
	return f.handler(path, params)
}

func testAuth() *portal.AuthContext {
	return &portal.AuthContext{AccountID: 808, Token: "token"}
}

func testCollector() config.Collector {
	return config.Collector{PageSize: 2, MaxPages: 3, CallDelayMS: 0, SearchYear: 5}
}

func listBody(items int) []byte {
	elements := make([]string, items)
	for i := range elements {
		elements[i] = fmt.Sprintf(`{"basic": {"asbDiseaseCode": "D%02d"}}`, i)
	}
	return []byte(`{"list": [` + strings.Join(elements, ",") + `]}`)
}

func TestEnumerateCoversFullTaxonomy(t *testing.T) {
	descriptors := collect.Enumerate(42, taxonomy.All())

	// 6 aggregate categories x 2 polarities, 7 basic categories, 1 report.
	if len(descriptors) != 20 {
		t.Fatalf("expected 20 descriptors, got %d", len(descriptors))
	}
	for _, d := range descriptors {
		if d.AnalysisID != 42 {
			t.Errorf("descriptor %s carries analysis %d", d.Label(), d.AnalysisID)
		}
		switch d.Category.Family {
		case taxonomy.FamilyAggregate:
			if !d.HasPolarity || d.Page != 1 {
				t.Errorf("aggregate descriptor %s misconfigured", d.Label())
			}
		case taxonomy.FamilyBasic:
			if d.HasPolarity || d.Page != 1 {
				t.Errorf("basic descriptor %s misconfigured", d.Label())
			}
		case taxonomy.FamilyBinary:
			if d.HasPolarity || d.Page != 0 {
				t.Errorf("binary descriptor %s misconfigured", d.Label())
			}
		}
	}
}

func TestEnumerateIsDeterministic(t *testing.T) {
	first := collect.Enumerate(42, taxonomy.All())
	second := collect.Enumerate(42, taxonomy.All())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("enumeration differs between runs")
	}
}

func TestDescriptorQueryShapes(t *testing.T) {
	categories := taxonomy.All()
	descriptors := collect.Enumerate(7, categories)

	aggregate := descriptors[0]
	params := aggregate.Query(5)
	if params.Get("ansType") != string(taxonomy.CodeTreatmentHistory) {
		t.Errorf("aggregate ansType = %q", params.Get("ansType"))
	}
	if params.Get("asbSicked") != "0" {
		t.Errorf("aggregate asbSicked = %q", params.Get("asbSicked"))
	}

	var basic, binary collect.Descriptor
	for _, d := range descriptors {
		switch d.Category.Family {
		case taxonomy.FamilyBasic:
			if basic.Category.Code == "" {
				basic = d
			}
		case taxonomy.FamilyBinary:
			binary = d
		}
	}
	params = basic.Query(5)
	if params.Get("searchYear") != "5" {
		t.Errorf("basic searchYear = %q", params.Get("searchYear"))
	}
	if _, ok := params["asbDiseaseCode"]; !ok {
		t.Error("basic query should carry an empty asbDiseaseCode")
	}
	if len(binary.Query(5)) != 0 {
		t.Error("binary query should be empty")
	}
	if !strings.HasSuffix(binary.Path(), "/hidden-insurance") {
		t.Errorf("binary path = %q", binary.Path())
	}
}

func TestRunStopsPaginatingOnPartialPage(t *testing.T) {
	fetcher := &fakeFetcher{handler: func(_ string, params url.Values) (int, []byte, error) {
		if params.Get("page") == "1" {
			return http.StatusOK, listBody(2), nil
		}
		return http.StatusOK, listBody(1), nil
	}}
	executor := collect.NewExecutor(fetcher, testCollector(), nil)

	category, _ := taxonomy.Lookup(taxonomy.CodeDental)
	descriptors := collect.Enumerate(7, []taxonomy.Category{category})
	results := executor.Run(context.Background(), testAuth(), descriptors)

	if len(results) != 2 {
		t.Fatalf("expected exactly 2 pages fetched, got %d", len(results))
	}
	if results[0].Descriptor.Page != 1 || results[1].Descriptor.Page != 2 {
		t.Errorf("unexpected page order: %d then %d", results[0].Descriptor.Page, results[1].Descriptor.Page)
	}
}

func TestRunHonorsPageCap(t *testing.T) {
	fetcher := &fakeFetcher{handler: func(_ string, _ url.Values) (int, []byte, error) {
		return http.StatusOK, listBody(2), nil
	}}
	executor := collect.NewExecutor(fetcher, testCollector(), nil)

	category, _ := taxonomy.Lookup(taxonomy.CodeDental)
	descriptors := collect.Enumerate(7, []taxonomy.Category{category})
	results := executor.Run(context.Background(), testAuth(), descriptors)

	if len(results) != 3 {
		t.Fatalf("expected page cap of 3, got %d pages", len(results))
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	fetcher := &fakeFetcher{handler: func(_ string, params url.Values) (int, []byte, error) {
		switch params.Get("ansType") {
		case string(taxonomy.CodeDental):
			return 0, nil, errors.New("connection reset")
		case string(taxonomy.CodeProcedure):
			return http.StatusNotFound, []byte("not found"), nil
		default:
			return http.StatusOK, listBody(1), nil
		}
	}}
	executor := collect.NewExecutor(fetcher, testCollector(), nil)

	dental, _ := taxonomy.Lookup(taxonomy.CodeDental)
	procedure, _ := taxonomy.Lookup(taxonomy.CodeProcedure)
	records, _ := taxonomy.Lookup(taxonomy.CodeMedicalRecords)
	descriptors := collect.Enumerate(7, []taxonomy.Category{dental, procedure, records})
	results := executor.Run(context.Background(), testAuth(), descriptors)

	if len(results) != 3 {
		t.Fatalf("expected one result per descriptor, got %d", len(results))
	}
	if results[0].Succeeded || results[0].Err == nil {
		t.Error("network failure should produce a failed result")
	}
	if results[1].Succeeded || results[1].HTTPStatus != http.StatusNotFound {
		t.Error("404 should produce a failed result carrying the status")
	}
	if !results[2].Succeeded {
		t.Errorf("later call should still run and succeed: %v", results[2].Err)
	}
}

func TestNewExecutorDefaultsSearchYear(t *testing.T) {
	var gotSearchYear string
	fetcher := &fakeFetcher{handler: func(_ string, params url.Values) (int, []byte, error) {
		gotSearchYear = params.Get("searchYear")
		return http.StatusOK, listBody(0), nil
	}}
	executor := collect.NewExecutor(fetcher, config.Collector{}, nil)

	category, _ := taxonomy.Lookup(taxonomy.CodeDental)
	descriptors := collect.Enumerate(7, []taxonomy.Category{category})
	executor.Run(context.Background(), testAuth(), descriptors)

	if gotSearchYear != "5" {
		t.Errorf("zero-value config should query searchYear=5, got %q", gotSearchYear)
	}
}

func TestRunFetchesReportOnce(t *testing.T) {
	fetcher := &fakeFetcher{handler: func(path string, _ url.Values) (int, []byte, error) {
		return http.StatusOK, []byte("%PDF-1.4 binary"), nil
	}}
	executor := collect.NewExecutor(fetcher, testCollector(), nil)

	report, _ := taxonomy.Lookup(taxonomy.CodeHiddenReport)
	descriptors := collect.Enumerate(7, []taxonomy.Category{report})
	results := executor.Run(context.Background(), testAuth(), descriptors)

	if len(results) != 1 {
		t.Fatalf("expected a single report fetch, got %d", len(results))
	}
	if !results[0].Succeeded {
		t.Fatalf("report fetch failed: %v", results[0].Err)
	}
	if got := results[0].Classified.Shape; got != "opaque" {
		t.Errorf("report body should classify opaque, got %s", got)
	}
}
