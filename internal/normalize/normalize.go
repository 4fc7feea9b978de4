package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhkim09/insuuniverse/internal/collect"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

// itemEnvelope is the per-element schema of array-shaped endpoint
// responses. Both sub-objects are optional upstream; missing fields decode
// to zero values and are validated once here rather than probed at every
// use site.
type itemEnvelope struct {
	Basic  basicFields  `json:"basic"`
	Detail detailFields `json:"detail"`
}

type basicFields struct {
	DiseaseCode    string `json:"asbDiseaseCode"`
	DiseaseName    string `json:"asbDiseaseName"`
	TreatStartDate string `json:"asbTreatStartDate"`
	TreatEndDate   string `json:"asbTreatEndDate"`
	HospitalName   string `json:"asbHospitalName"`
	Department     string `json:"asbDepartment"`
	VisitDays      int    `json:"asbVisitDays"`
	DosingDays     int    `json:"asbDosingDays"`
	TreatType      string `json:"asbTreatType"`
	Disease        string `json:"asbDisease"`
	InDisease      string `json:"asbInDisease"`
	Sicked         *int   `json:"asbSicked"`
	Duplicated     int    `json:"asbDuplicated"`
}

type detailFields struct {
	Operation string `json:"asdOperation"`
}

// Record is one deduplicated disease/treatment occurrence.
type Record struct {
	DiseaseCode          string
	DiseaseName          string
	CategoryCode         taxonomy.Code
	Polarity             taxonomy.Polarity
	DataSource           string
	TreatStartDate       string
	TreatEndDate         string
	Hospital             string
	Department           string
	VisitDays            int
	DosingDays           int
	TreatType            string
	Treatment            string
	Operation            string
	InsurancePossibility string
	Duplicated           bool
	SourceIndex          int
}

type dedupKey struct {
	diseaseCode    string
	treatStartDate string
}

// Normalize extracts records from the successful, array-shaped call
// results. Dedup runs across the entire batch on (diseaseCode,
// treatStartDate); the first occurrence wins and later ones are dropped
// regardless of which category produced them. Output order is insertion
// order, so the same input always yields the same records.
func Normalize(results []collect.Result) []Record {
	seen := make(map[dedupKey]struct{})
	var records []Record

	for _, result := range results {
		if !result.Succeeded || !result.Classified.IsArray() {
			continue
		}
		for _, raw := range result.Classified.Items {
			var item itemEnvelope
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			code := strings.TrimSpace(item.Basic.DiseaseCode)
			if code == "" {
				continue
			}
			key := dedupKey{diseaseCode: code, treatStartDate: item.Basic.TreatStartDate}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, buildRecord(result.Descriptor, item, code, len(records)))
		}
	}
	return records
}

func buildRecord(descriptor collect.Descriptor, item itemEnvelope, code string, index int) Record {
	return Record{
		DiseaseCode:          code,
		DiseaseName:          item.Basic.DiseaseName,
		CategoryCode:         descriptor.Category.Code,
		Polarity:             recordPolarity(descriptor, item.Basic),
		DataSource:           fmt.Sprintf("%s/%s", descriptor.Category.Code, descriptor.Category.Family),
		TreatStartDate:       item.Basic.TreatStartDate,
		TreatEndDate:         item.Basic.TreatEndDate,
		Hospital:             item.Basic.HospitalName,
		Department:           item.Basic.Department,
		VisitDays:            item.Basic.VisitDays,
		DosingDays:           item.Basic.DosingDays,
		TreatType:            item.Basic.TreatType,
		Treatment:            item.Basic.Disease,
		Operation:            item.Detail.Operation,
		InsurancePossibility: item.Basic.InDisease,
		Duplicated:           item.Basic.Duplicated != 0,
		SourceIndex:          index,
	}
}

// recordPolarity takes the polarity from the query dimension when the
// descriptor carried one, otherwise from the item's own sicked field.
func recordPolarity(descriptor collect.Descriptor, basic basicFields) taxonomy.Polarity {
	if descriptor.HasPolarity {
		return descriptor.Polarity
	}
	if basic.Sicked != nil && *basic.Sicked == int(taxonomy.PolarityHolder) {
		return taxonomy.PolarityHolder
	}
	return taxonomy.PolarityNonHolder
}
