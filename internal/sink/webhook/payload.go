package webhook

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhkim09/insuuniverse/internal/normalize"
	"github.com/jhkim09/insuuniverse/internal/portal"
	"github.com/jhkim09/insuuniverse/internal/summary"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

// topDiseaseCount is how many records are exploded into numbered field
// groups. Part of the payload contract.
const topDiseaseCount = 5

const payloadVersion = "2.0"

// Payload is the flattened webhook body.
type Payload map[string]any

// Build assembles the webhook payload from one collection run. Records are
// already deduplicated; the first five, in collection order, become the
// disease1..disease5 field groups.
func Build(customer *portal.CustomerMatch, analysisID int64, records []normalize.Record, sum summary.Summary, processedAt time.Time) Payload {
	payload := Payload{
		"analysis_id":     analysisID,
		"processed_at":    processedAt.UTC().Format(time.RFC3339),
		"data_source":     "insuuniverse-collector",
		"webhook_version": payloadVersion,
	}
	if customer != nil {
		payload["customer_name"] = customer.Name
		payload["customer_phone"] = customer.Phone
		payload["customer_birth"] = customer.Birth
		payload["transaction_id"] = customer.TransactionID
		payload["analysis_state"] = customer.State
	}

	outpatient := sum.Stats(taxonomy.CodeOutpatient)
	inpatient := sum.Stats(taxonomy.CodeInpatient)
	surgery := sum.Stats(taxonomy.CodeSurgery)
	longTerm := sum.Stats(taxonomy.CodeLongTermMeds)
	dental := sum.Stats(taxonomy.CodeDental)
	procedure := sum.Stats(taxonomy.CodeProcedure)

	payload["ANS002_outpatient_count"] = outpatient.Count
	payload["ANS002_outpatient_days"] = outpatient.VisitDays
	payload["ANS003_inpatient_count"] = inpatient.Count
	payload["ANS003_inpatient_days"] = inpatient.VisitDays
	payload["ANS004_surgery_count"] = surgery.Count
	payload["ANS004_surgery_list"] = strings.Join(surgery.Operations, ", ")
	payload["ANS005_longterm_medication_days"] = longTerm.DosingDays
	payload["ANS007_dental_count"] = dental.Count
	payload["ANS007_dental_treatments"] = strings.Join(dental.Treatments, ", ")
	payload["ANS008_procedure_count"] = procedure.Count
	payload["ANS008_procedure_list"] = strings.Join(procedure.Operations, ", ")

	payload["total_disease_count"] = len(records)
	payload["has_surgery"] = sum.HasSurgery()
	payload["has_inpatient"] = sum.HasInpatientStay()
	payload["has_dental"] = sum.HasDentalTreatment()

	for i, record := range records {
		if i >= topDiseaseCount {
			break
		}
		num := i + 1
		payload[fmt.Sprintf("disease%d_ans_type", num)] = string(record.CategoryCode)
		payload[fmt.Sprintf("disease%d_ans_category", num)] = categoryLabel(record.CategoryCode)
		payload[fmt.Sprintf("disease%d_code", num)] = record.DiseaseCode
		payload[fmt.Sprintf("disease%d_name", num)] = record.DiseaseName
		payload[fmt.Sprintf("disease%d_start_date", num)] = record.TreatStartDate
		payload[fmt.Sprintf("disease%d_end_date", num)] = record.TreatEndDate
		payload[fmt.Sprintf("disease%d_hospital", num)] = record.Hospital
		payload[fmt.Sprintf("disease%d_visit_days", num)] = record.VisitDays
		payload[fmt.Sprintf("disease%d_dosing_days", num)] = record.DosingDays
		payload[fmt.Sprintf("disease%d_operation", num)] = record.Operation
	}
	return payload
}

func categoryLabel(code taxonomy.Code) string {
	if category, ok := taxonomy.Lookup(code); ok {
		return category.Label
	}
	return "기타"
}
