package docstore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jhkim09/insuuniverse/internal/logging"
	"github.com/jhkim09/insuuniverse/internal/normalize"
	"github.com/jhkim09/insuuniverse/internal/portal"
	"github.com/jhkim09/insuuniverse/internal/summary"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

// SyncResult reports how a run's mirror into the document database went.
// Per-record failures are counted, not fatal.
type SyncResult struct {
	MasterPageID    string
	RecordsUpserted int
	RecordsFailed   int
	Err             error
}

type pageResponse struct {
	ID string `json:"id"`
}

type queryResponse struct {
	Results []pageResponse `json:"results"`
}

// SyncRun writes the master summary page and upserts one page per record.
// A master page failure aborts the sync; individual record failures are
// logged and counted so one bad page never loses the rest.
func (c *Client) SyncRun(ctx context.Context, customer *portal.CustomerMatch, analysisID int64, records []normalize.Record, sum summary.Summary) SyncResult {
	masterID, err := c.createMasterPage(ctx, customer, analysisID, records, sum)
	if err != nil {
		return SyncResult{Err: fmt.Errorf("create master page: %w", err)}
	}

	result := SyncResult{MasterPageID: masterID}
	for _, record := range records {
		if err := c.upsertRecord(ctx, analysisID, record); err != nil {
			result.RecordsFailed++
			c.logger.Warn("record upsert failed",
				logging.String("disease_code", record.DiseaseCode),
				logging.Int("source_index", record.SourceIndex),
				logging.Error(err))
			continue
		}
		result.RecordsUpserted++
	}
	return result
}

func (c *Client) createMasterPage(ctx context.Context, customer *portal.CustomerMatch, analysisID int64, records []normalize.Record, sum summary.Summary) (string, error) {
	name := ""
	phone := ""
	birth := ""
	state := ""
	if customer != nil {
		name = customer.Name
		phone = customer.Phone
		birth = customer.Birth
		state = customer.State
	}
	if state == "" {
		state = "분석중"
	}

	properties := map[string]any{
		"고객명":  titleProp(name),
		"전화번호": phoneProp(phone),
		"생년월일": richTextProp(birth),
		"분석상태": selectProp(state),
		"분석ID": numberProp(float64(analysisID)),
		"질병수":  numberProp(float64(len(records))),
		"수술":   checkboxProp(sum.HasSurgery()),
		"입원":   checkboxProp(sum.HasInpatientStay()),
		"치과":   checkboxProp(sum.HasDentalTreatment()),
	}

	var created pageResponse
	err := c.do(ctx, http.MethodPost, "/pages", map[string]any{
		"parent":     map[string]any{"database_id": c.masterDatabaseID},
		"properties": properties,
	}, &created)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// upsertKey is the stable identity of a record page.
func upsertKey(analysisID int64, record normalize.Record) string {
	return fmt.Sprintf("%d/%s/%d", analysisID, record.DiseaseCode, record.SourceIndex)
}

func (c *Client) upsertRecord(ctx context.Context, analysisID int64, record normalize.Record) error {
	key := upsertKey(analysisID, record)

	var existing queryResponse
	err := c.do(ctx, http.MethodPost, "/databases/"+c.recordsDatabaseID+"/query", map[string]any{
		"filter": map[string]any{
			"property":  "키",
			"rich_text": map[string]any{"equals": key},
		},
	}, &existing)
	if err != nil {
		return fmt.Errorf("query existing page: %w", err)
	}

	properties := recordProperties(analysisID, record, key)
	if len(existing.Results) > 0 {
		return c.do(ctx, http.MethodPatch, "/pages/"+existing.Results[0].ID, map[string]any{
			"properties": properties,
		}, nil)
	}
	return c.do(ctx, http.MethodPost, "/pages", map[string]any{
		"parent":     map[string]any{"database_id": c.recordsDatabaseID},
		"properties": properties,
	}, nil)
}

func recordProperties(analysisID int64, record normalize.Record, key string) map[string]any {
	label := "기타"
	if category, ok := taxonomy.Lookup(record.CategoryCode); ok {
		label = category.Label
	}
	return map[string]any{
		"질병명":  titleProp(record.DiseaseName),
		"질병코드": richTextProp(record.DiseaseCode),
		"키":    richTextProp(key),
		"분석ID": numberProp(float64(analysisID)),
		"순번":   numberProp(float64(record.SourceIndex)),
		"카테고리": selectProp(label),
		"시작일":  richTextProp(record.TreatStartDate),
		"종료일":  richTextProp(record.TreatEndDate),
		"병원":   richTextProp(record.Hospital),
		"진료과":  richTextProp(record.Department),
		"통원일수": numberProp(float64(record.VisitDays)),
		"투약일수": numberProp(float64(record.DosingDays)),
		"수술명":  richTextProp(record.Operation),
		"보험가능": richTextProp(record.InsurancePossibility),
	}
}

func titleProp(text string) map[string]any {
	return map[string]any{
		"title": []any{map[string]any{"text": map[string]any{"content": text}}},
	}
}

func richTextProp(text string) map[string]any {
	return map[string]any{
		"rich_text": []any{map[string]any{"text": map[string]any{"content": text}}},
	}
}

func numberProp(value float64) map[string]any {
	return map[string]any{"number": value}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func checkboxProp(value bool) map[string]any {
	return map[string]any{"checkbox": value}
}

func phoneProp(phone string) map[string]any {
	if phone == "" {
		return map[string]any{"phone_number": nil}
	}
	return map[string]any{"phone_number": phone}
}
