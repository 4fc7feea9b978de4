package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jhkim09/insuuniverse/internal/collect"
	"github.com/jhkim09/insuuniverse/internal/config"
	"github.com/jhkim09/insuuniverse/internal/jobstore"
	"github.com/jhkim09/insuuniverse/internal/logging"
	"github.com/jhkim09/insuuniverse/internal/normalize"
	"github.com/jhkim09/insuuniverse/internal/notifications"
	"github.com/jhkim09/insuuniverse/internal/portal"
	"github.com/jhkim09/insuuniverse/internal/sink/docstore"
	"github.com/jhkim09/insuuniverse/internal/sink/webhook"
	"github.com/jhkim09/insuuniverse/internal/summary"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

// Session is the portal surface the runner needs. Satisfied by
// *portal.Client.
type Session interface {
	Login(ctx context.Context) (*portal.AuthContext, error)
	ResolveAnalysis(ctx context.Context, auth *portal.AuthContext, name, phone string) (*portal.CustomerMatch, error)
}

// Executor runs enumerated descriptors. Satisfied by *collect.Executor.
type Executor interface {
	Run(ctx context.Context, auth *portal.AuthContext, descriptors []collect.Descriptor) []collect.Result
}

// WebhookSink delivers the flattened payload. Satisfied by
// *webhook.Client.
type WebhookSink interface {
	Deliver(ctx context.Context, payload webhook.Payload) webhook.Result
}

// DocSink mirrors records into the document database. Satisfied by
// *docstore.Client.
type DocSink interface {
	SyncRun(ctx context.Context, customer *portal.CustomerMatch, analysisID int64, records []normalize.Record, sum summary.Summary) docstore.SyncResult
}

// Request names the customer or analysis to collect. AnalysisID zero means
// resolve it through the order search.
type Request struct {
	CustomerName  string
	CustomerPhone string
	AnalysisID    int64
}

// CollectionResult is the complete outcome of one run, including partial
// failure detail.
type CollectionResult struct {
	JobID       string
	AnalysisID  int64
	Customer    *portal.CustomerMatch
	Records     []normalize.Record
	Summary     summary.Summary
	CallLog     []collect.Result
	FailedCalls int
	Webhook     *webhook.Result
	Docstore    *docstore.SyncResult
	Duration    time.Duration
}

// Runner wires the pipeline stages together. Sinks and the job store are
// optional; nil fields are skipped.
type Runner struct {
	session  Session
	executor Executor
	webhook  WebhookSink
	docstore DocSink
	notifier notifications.Service
	jobs     jobstore.Store

	categories  []taxonomy.Category
	keepCallLog bool
	logger      *slog.Logger
}

// Options configures a Runner beyond its required collaborators.
type Options struct {
	Webhook    WebhookSink
	Docstore   DocSink
	Notifier   notifications.Service
	Jobs       jobstore.Store
	Collector  config.Collector
	Categories []taxonomy.Category
	Logger     *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(session Session, executor Executor, opts Options) (*Runner, error) {
	if session == nil || executor == nil {
		return nil, errors.New("pipeline requires a session and an executor")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(config.Notifications{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = taxonomy.All()
	}
	return &Runner{
		session:     session,
		executor:    executor,
		webhook:     opts.Webhook,
		docstore:    opts.Docstore,
		notifier:    notifier,
		jobs:        opts.Jobs,
		categories:  categories,
		keepCallLog: opts.Collector.KeepCallLog,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Run executes one collection. The returned error is non-nil only for the
// fatal cases: authentication failure or an unresolvable analysis target.
// Endpoint and sink failures are recorded in the result instead.
func (r *Runner) Run(ctx context.Context, req Request) (*CollectionResult, error) {
	started := time.Now()

	var jobID string
	if r.jobs != nil {
		job, err := r.jobs.Create(ctx, req.CustomerName, req.CustomerPhone)
		if err != nil {
			return nil, fmt.Errorf("create job: %w", err)
		}
		jobID = job.ID
	}
	if err := r.notifier.NotifyRunStarted(ctx, req.CustomerName); err != nil {
		r.logger.Warn("start notification failed", logging.Error(err))
	}

	auth, err := r.session.Login(ctx)
	if err != nil {
		r.failJob(ctx, jobID, err)
		r.notifyFailure(ctx, req.CustomerName, err)
		return nil, err
	}
	r.logger.Info("portal session established", logging.Int64("account_id", auth.AccountID))

	analysisID := req.AnalysisID
	var customer *portal.CustomerMatch
	if analysisID == 0 {
		customer, err = r.session.ResolveAnalysis(ctx, auth, req.CustomerName, req.CustomerPhone)
		if err != nil {
			err = fmt.Errorf("resolve analysis: %w", err)
			r.failJob(ctx, jobID, err)
			r.notifyFailure(ctx, req.CustomerName, err)
			return nil, err
		}
		analysisID = customer.AnalysisID
	}
	r.updateJob(ctx, jobID, jobstore.Update{
		Status:     jobstore.StatusPtr(jobstore.StatusRunning),
		AnalysisID: jobstore.Int64Ptr(analysisID),
	})

	descriptors := collect.Enumerate(analysisID, r.categories)
	callLog := r.executor.Run(ctx, auth, descriptors)

	failedCalls := 0
	for _, call := range callLog {
		if !call.Succeeded {
			failedCalls++
		}
	}

	records := normalize.Normalize(callLog)
	sum := summary.Summarize(records)
	r.logger.Info("collection finished",
		logging.Int64("analysis_id", analysisID),
		logging.Int("calls", len(callLog)),
		logging.Int("failed_calls", failedCalls),
		logging.Int("records", len(records)))

	result := &CollectionResult{
		JobID:       jobID,
		AnalysisID:  analysisID,
		Customer:    customer,
		Records:     records,
		Summary:     sum,
		FailedCalls: failedCalls,
	}
	if r.keepCallLog {
		result.CallLog = callLog
	}

	if r.webhook != nil {
		payload := webhook.Build(customer, analysisID, records, sum, time.Now())
		delivered := r.webhook.Deliver(ctx, payload)
		result.Webhook = &delivered
		if !delivered.Delivered {
			r.logger.Warn("webhook delivery exhausted its retry budget",
				logging.Int("attempts", delivered.Attempts),
				logging.Error(delivered.Err))
		}
	}
	if r.docstore != nil {
		synced := r.docstore.SyncRun(ctx, customer, analysisID, records, sum)
		result.Docstore = &synced
		if synced.Err != nil {
			r.logger.Warn("docstore sync failed", logging.Error(synced.Err))
		}
	}

	r.updateJob(ctx, jobID, jobstore.Update{
		Status:      jobstore.StatusPtr(jobstore.StatusCompleted),
		RecordCount: jobstore.IntPtr(len(records)),
	})
	result.Duration = time.Since(started)
	if err := r.notifier.NotifyRunCompleted(ctx, req.CustomerName, len(records), failedCalls, result.Duration); err != nil {
		r.logger.Warn("completion notification failed", logging.Error(err))
	}
	return result, nil
}

func (r *Runner) failJob(ctx context.Context, jobID string, runErr error) {
	if jobID == "" {
		return
	}
	r.updateJob(ctx, jobID, jobstore.Update{
		Status:       jobstore.StatusPtr(jobstore.StatusFailed),
		ErrorMessage: jobstore.StringPtr(runErr.Error()),
	})
}

func (r *Runner) updateJob(ctx context.Context, jobID string, update jobstore.Update) {
	if r.jobs == nil || jobID == "" {
		return
	}
	if _, err := r.jobs.Apply(ctx, jobID, update); err != nil {
		r.logger.Warn("job update failed",
			logging.String("job_id", jobID),
			logging.Error(err))
	}
}

func (r *Runner) notifyFailure(ctx context.Context, customerName string, runErr error) {
	if err := r.notifier.NotifyRunFailed(ctx, customerName, runErr); err != nil {
		r.logger.Warn("failure notification failed", logging.Error(err))
	}
}
