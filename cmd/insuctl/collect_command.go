package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhkim09/insuuniverse/internal/collect"
	"github.com/jhkim09/insuuniverse/internal/jobstore"
	"github.com/jhkim09/insuuniverse/internal/notifications"
	"github.com/jhkim09/insuuniverse/internal/pipeline"
	"github.com/jhkim09/insuuniverse/internal/portal"
	"github.com/jhkim09/insuuniverse/internal/sink/docstore"
	"github.com/jhkim09/insuuniverse/internal/sink/webhook"
	"github.com/jhkim09/insuuniverse/internal/taxonomy"
)

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var customerName string
	var customerPhone string
	var analysisID int64

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect and normalize the records of one customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(customerName) == "" && strings.TrimSpace(customerPhone) == "" && analysisID == 0 {
				return errors.New("provide --name, --phone, or --analysis-id")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			client, err := portal.New(cfg.Portal)
			if err != nil {
				return err
			}
			executor := collect.NewExecutor(client, cfg.Collector, logger)

			opts := pipeline.Options{
				Collector: cfg.Collector,
				Notifier:  notifications.NewService(cfg.Notifications),
				Logger:    logger,
			}
			if strings.TrimSpace(cfg.Webhook.URL) != "" {
				hook, err := webhook.New(cfg.Webhook, logger)
				if err != nil {
					return err
				}
				opts.Webhook = hook
			}
			if cfg.Docstore.Enabled {
				docs, err := docstore.New(cfg.Docstore, logger)
				if err != nil {
					return err
				}
				opts.Docstore = docs
			}

			store, err := jobstore.Open(cfg.JobStore)
			if err != nil {
				return err
			}
			defer store.Close()
			if _, err := store.Expire(cmd.Context(), time.Now()); err != nil {
				return fmt.Errorf("expire stale jobs: %w", err)
			}
			opts.Jobs = store

			runner, err := pipeline.NewRunner(client, executor, opts)
			if err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context(), pipeline.Request{
				CustomerName:  strings.TrimSpace(customerName),
				CustomerPhone: strings.TrimSpace(customerPhone),
				AnalysisID:    analysisID,
			})
			if err != nil {
				return err
			}

			renderCollectionResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&customerName, "name", "", "Customer name to search for")
	cmd.Flags().StringVar(&customerPhone, "phone", "", "Customer phone number to search for")
	cmd.Flags().Int64Var(&analysisID, "analysis-id", 0, "Collect a known analysis id directly")
	return cmd
}

func renderCollectionResult(cmd *cobra.Command, result *pipeline.CollectionResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Analysis %d: %d records", result.AnalysisID, len(result.Records))
	if result.FailedCalls > 0 {
		fmt.Fprintf(out, " (%d endpoint calls failed)", result.FailedCalls)
	}
	fmt.Fprintf(out, " in %s\n", result.Duration.Round(time.Millisecond))
	if result.Customer != nil {
		fmt.Fprintf(out, "Customer: %s %s\n", result.Customer.Name, result.Customer.Phone)
	}

	var rows [][]string
	for _, category := range taxonomy.All() {
		if category.Family == taxonomy.FamilyBinary {
			continue
		}
		stats := result.Summary.Stats(category.Code)
		if stats.Count == 0 {
			continue
		}
		detail := ""
		switch {
		case len(stats.Operations) > 0:
			detail = strings.Join(stats.Operations, ", ")
		case len(stats.Treatments) > 0:
			detail = strings.Join(stats.Treatments, ", ")
		case stats.VisitDays > 0:
			detail = fmt.Sprintf("%d visit days", stats.VisitDays)
		case stats.DosingDays > 0:
			detail = fmt.Sprintf("%d dosing days", stats.DosingDays)
		}
		rows = append(rows, []string{string(category.Code), category.Label, strconv.Itoa(stats.Count), detail})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Code", "Category", "Count", "Detail"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		))
	}

	if result.Webhook != nil {
		if result.Webhook.Delivered {
			fmt.Fprintf(out, "Webhook delivered (attempt %d)\n", result.Webhook.Attempts)
		} else {
			fmt.Fprintf(out, "Webhook delivery failed after %d attempts: %v\n", result.Webhook.Attempts, result.Webhook.Err)
		}
	}
	if result.Docstore != nil {
		if result.Docstore.Err != nil {
			fmt.Fprintf(out, "Docstore sync failed: %v\n", result.Docstore.Err)
		} else {
			fmt.Fprintf(out, "Docstore: %d records upserted, %d failed\n", result.Docstore.RecordsUpserted, result.Docstore.RecordsFailed)
		}
	}
	if result.JobID != "" {
		fmt.Fprintf(out, "Job: %s\n", result.JobID)
	}
}
