package collect

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jhkim09/insuuniverse/internal/classify"
	"github.com/jhkim09/insuuniverse/internal/config"
	"github.com/jhkim09/insuuniverse/internal/logging"
	"github.com/jhkim09/insuuniverse/internal/portal"
)

// Fetcher issues one authenticated GET. Satisfied by *portal.Client.
type Fetcher interface {
	Get(ctx context.Context, auth *portal.AuthContext, path string, params url.Values) (int, []byte, error)
}

// Result records the outcome of one endpoint call. Every descriptor the
// executor visits produces exactly one Result, success or failure.
type Result struct {
	Descriptor Descriptor
	Succeeded  bool
	HTTPStatus int
	Body       []byte
	Classified classify.Classification
	Err        error
}

// Executor runs call descriptors sequentially through the portal session.
type Executor struct {
	fetcher    Fetcher
	pageSize   int
	maxPages   int
	delay      time.Duration
	searchYear int
	logger     *slog.Logger
}

// NewExecutor creates an executor with the configured pacing and pagination
// limits.
func NewExecutor(fetcher Fetcher, cfg config.Collector, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 3
	}
	searchYear := cfg.SearchYear
	if searchYear <= 0 {
		searchYear = 5
	}
	return &Executor{
		fetcher:    fetcher,
		pageSize:   pageSize,
		maxPages:   maxPages,
		delay:      time.Duration(cfg.CallDelayMS) * time.Millisecond,
		searchYear: searchYear,
		logger:     logging.NewComponentLogger(logger, "collect"),
	}
}

// Run executes the descriptors in order, one call at a time with a fixed
// pause between calls. A failing call is recorded and the loop moves on;
// nothing here aborts the batch. Paginated categories continue onto the
// next page only while pages arrive full, up to the page cap, and each
// category's pagination finishes before the next descriptor starts.
func (e *Executor) Run(ctx context.Context, auth *portal.AuthContext, descriptors []Descriptor) []Result {
	results := make([]Result, 0, len(descriptors))
	first := true
	for _, descriptor := range descriptors {
		current := descriptor
		for {
			if !first {
				if err := e.pause(ctx); err != nil {
					e.logger.Warn("run cancelled between calls", logging.Error(err))
					return results
				}
			}
			first = false

			result := e.fetchOne(ctx, auth, current)
			results = append(results, result)

			if !e.shouldContinuePaging(result) {
				break
			}
			current = current.NextPage()
		}
	}
	return results
}

func (e *Executor) fetchOne(ctx context.Context, auth *portal.AuthContext, descriptor Descriptor) Result {
	status, body, err := e.fetcher.Get(ctx, auth, descriptor.Path(), descriptor.Query(e.searchYear))
	if err != nil {
		e.logger.Warn("endpoint call failed",
			logging.String("call", descriptor.Label()),
			logging.Error(err))
		return Result{Descriptor: descriptor, HTTPStatus: status, Err: err}
	}
	if status < 200 || status > 299 {
		e.logger.Warn("endpoint returned error status",
			logging.String("call", descriptor.Label()),
			logging.Int("status", status))
		return Result{
			Descriptor: descriptor,
			HTTPStatus: status,
			Err:        fmt.Errorf("endpoint returned %d", status),
		}
	}

	classified := classify.Classify(body)
	e.logger.Debug("endpoint call succeeded",
		logging.String("call", descriptor.Label()),
		logging.String("shape", string(classified.Shape)),
		logging.Int("items", classified.ItemCount))
	return Result{
		Descriptor: descriptor,
		Succeeded:  true,
		HTTPStatus: status,
		Body:       body,
		Classified: classified,
	}
}

// shouldContinuePaging reports whether the next page of the same category
// should be fetched: the page must have succeeded, arrived exactly full,
// and the page cap must not be reached.
func (e *Executor) shouldContinuePaging(result Result) bool {
	if !result.Succeeded || !result.Descriptor.Category.IsPaginated() {
		return false
	}
	if result.Descriptor.Page >= e.maxPages {
		return false
	}
	return result.Classified.IsArray() && result.Classified.ItemCount == e.pageSize
}

func (e *Executor) pause(ctx context.Context) error {
	if e.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
