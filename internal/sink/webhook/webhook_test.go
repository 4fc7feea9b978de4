package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhkim09/insuuniverse/internal/config"
	"github.com/jhkim09/insuuniverse/internal/normalize"
	"github.com/jhkim09/insuuniverse/internal/portal"
	"github.com/jhkim09/insuuniverse/internal/sink/webhook"
	"github.com/jhkim09/insuuniverse/internal/summary"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

func sampleRecords() []normalize.Record {
	return []normalize.Record{
		{DiseaseCode: "K35", DiseaseName: "급성 충수염", CategoryCode: taxonomy.CodeSurgery,
			TreatStartDate: "2024-03-01", TreatEndDate: "2024-03-10", Hospital: "서울병원",
			VisitDays: 3, Operation: "충수절제술"},
		{DiseaseCode: "J20", DiseaseName: "급성 기관지염", CategoryCode: taxonomy.CodeOutpatient,
			TreatStartDate: "2024-01-05", VisitDays: 2},
		{DiseaseCode: "I20", CategoryCode: taxonomy.CodeInpatient, VisitDays: 14},
		{DiseaseCode: "E11", CategoryCode: taxonomy.CodeLongTermMeds, DosingDays: 90},
		{DiseaseCode: "K02", CategoryCode: taxonomy.CodeDental, Treatment: "충치치료"},
		{DiseaseCode: "J45", CategoryCode: taxonomy.CodeOutpatient, VisitDays: 1},
	}
}

func TestBuildFlattensTopFiveRecords(t *testing.T) {
	records := sampleRecords()
	sum := summary.Summarize(records)
	customer := &portal.CustomerMatch{
		Name: "김지훈", Phone: "010-2022-1053", Birth: "1985-03-01",
		State: "completed", TransactionID: "TXN-20260801-0042",
	}
	processedAt := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

	payload := webhook.Build(customer, 4521, records, sum, processedAt)

	if payload["customer_name"] != "김지훈" {
		t.Errorf("customer_name = %v", payload["customer_name"])
	}
	if payload["customer_phone"] != "010-2022-1053" {
		t.Errorf("customer_phone = %v", payload["customer_phone"])
	}
	if payload["customer_birth"] != "1985-03-01" {
		t.Errorf("customer_birth = %v", payload["customer_birth"])
	}
	if payload["transaction_id"] != "TXN-20260801-0042" {
		t.Errorf("transaction_id = %v", payload["transaction_id"])
	}
	if payload["analysis_state"] != "completed" {
		t.Errorf("analysis_state = %v", payload["analysis_state"])
	}
	if payload["analysis_id"] != int64(4521) {
		t.Errorf("analysis_id = %v", payload["analysis_id"])
	}
	if payload["total_disease_count"] != 6 {
		t.Errorf("total_disease_count = %v", payload["total_disease_count"])
	}
	if payload["has_surgery"] != true || payload["has_inpatient"] != true || payload["has_dental"] != true {
		t.Error("expected all convenience flags set")
	}
	if payload["ANS004_surgery_list"] != "충수절제술" {
		t.Errorf("surgery list = %v", payload["ANS004_surgery_list"])
	}
	if payload["ANS003_inpatient_days"] != 14 {
		t.Errorf("inpatient days = %v", payload["ANS003_inpatient_days"])
	}
	if payload["ANS005_longterm_medication_days"] != 90 {
		t.Errorf("medication days = %v", payload["ANS005_longterm_medication_days"])
	}
	if payload["processed_at"] != "2026-08-01T09:30:00Z" {
		t.Errorf("processed_at = %v", payload["processed_at"])
	}

	if payload["disease1_code"] != "K35" || payload["disease1_operation"] != "충수절제술" {
		t.Errorf("disease1 group wrong: %v / %v", payload["disease1_code"], payload["disease1_operation"])
	}
	if payload["disease5_code"] != "K02" {
		t.Errorf("disease5_code = %v", payload["disease5_code"])
	}
	if _, ok := payload["disease6_code"]; ok {
		t.Error("payload must cut off after five disease groups")
	}
}

func TestBuildWithNoRecords(t *testing.T) {
	payload := webhook.Build(nil, 1, nil, summary.Summarize(nil), time.Now())
	if payload["total_disease_count"] != 0 {
		t.Errorf("total_disease_count = %v", payload["total_disease_count"])
	}
	if payload["has_surgery"] != false {
		t.Error("empty run should report no surgery")
	}
	if _, ok := payload["disease1_code"]; ok {
		t.Error("no disease groups expected for empty input")
	}
}

func TestDeliverPostsJSON(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := webhook.New(config.Webhook{URL: server.URL, RetryAttempts: 3}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	result := client.Deliver(context.Background(), webhook.Payload{"name": "김지훈"})
	if !result.Delivered {
		t.Fatalf("delivery failed: %v", result.Err)
	}
	if result.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", result.Attempts)
	}
	if gotBody["name"] != "김지훈" {
		t.Errorf("server received %v", gotBody)
	}
}

func TestDeliverRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := webhook.New(config.Webhook{URL: server.URL, RetryAttempts: 3, RetryDelayMS: 1}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	result := client.Deliver(context.Background(), webhook.Payload{})
	if !result.Delivered {
		t.Fatalf("delivery failed after retries: %v", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", result.Attempts)
	}
}

func TestDeliverExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := webhook.New(config.Webhook{URL: server.URL, RetryAttempts: 3, RetryDelayMS: 1}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	result := client.Deliver(context.Background(), webhook.Payload{})
	if result.Delivered {
		t.Fatal("delivery should have failed")
	}
	if result.Attempts != 3 || calls.Load() != 3 {
		t.Errorf("attempts = %d, calls = %d, want 3/3", result.Attempts, calls.Load())
	}
	if result.Err == nil {
		t.Error("failed result must carry the last error")
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", result.StatusCode)
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := webhook.New(config.Webhook{}, nil); err == nil {
		t.Fatal("expected error for missing url")
	}
}
