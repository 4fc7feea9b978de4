package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhkim09/insuuniverse/internal/jobstore"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect collection jobs",
	}
	cmd.AddCommand(newJobsListCommand(ctx))
	cmd.AddCommand(newJobsShowCommand(ctx))
	return cmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent collection jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobstore.Open(cfg.JobStore)
			if err != nil {
				return err
			}
			defer store.Close()
			if _, err := store.Expire(cmd.Context(), time.Now()); err != nil {
				return fmt.Errorf("expire stale jobs: %w", err)
			}

			jobs, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					job.ID,
					job.CustomerName,
					string(job.Status),
					strconv.Itoa(job.RecordCount),
					job.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Customer", "Status", "Records", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one collection job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobstore.Open(cfg.JobStore)
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, jobstore.ErrNotFound) {
				return fmt.Errorf("no job with id %q", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %s\n", job.ID)
			fmt.Fprintf(out, "Customer:  %s %s\n", job.CustomerName, job.CustomerPhone)
			fmt.Fprintf(out, "Status:    %s\n", job.Status)
			if job.AnalysisID != 0 {
				fmt.Fprintf(out, "Analysis:  %d\n", job.AnalysisID)
			}
			fmt.Fprintf(out, "Records:   %d\n", job.RecordCount)
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", job.ErrorMessage)
			}
			fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "Updated:   %s\n", job.UpdatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "Expires:   %s\n", job.ExpiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}
