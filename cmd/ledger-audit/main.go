// ledger-audit verifies balance snapshot chains (end = start + in - out,
// start = previous end) and optionally records mismatches in ledger_audit_reports.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/ledger-audit --user-id 42
//	go run ./cmd/ledger-audit --all --persist
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"bitbucket.org/mmdatafocus/ledger_backend/workflow"
	"github.com/spf13/cobra"
)

var errUnhealthyLedger = errors.New("ledger audit found mismatches")

func newRootCmd() *cobra.Command {
	var (
		userId  int
		all     bool
		persist bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:           "ledger-audit",
		Short:         "Verify balance snapshot chains",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if !all && userId <= 0 {
				return errors.New("either --user-id or --all is required")
			}
			if all && userId > 0 {
				return errors.New("--user-id and --all are mutually exclusive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.ConnectDatabaseWithRetry()
			db := config.GetDB()
			if db == nil {
				return errors.New("database not initialized; set DB_* env vars")
			}
			logger := config.GetLogger()
			ctx := utils.SetSkipUserScopeInContext(cmd.Context(), true)

			var results []*workflow.LedgerAuditResult
			if all {
				var err error
				results, err = workflow.AuditAllLedgers(ctx, db, logger, persist)
				if err != nil {
					return err
				}
			} else {
				result, err := workflow.AuditLedger(ctx, db, logger, userId, persist)
				if err != nil {
					return err
				}
				results = append(results, result)
			}

			if err := printResults(cmd, results, asJSON); err != nil {
				return err
			}
			for _, r := range results {
				if !r.Healthy() {
					return errUnhealthyLedger
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&userId, "user-id", 0, "audit a single user's ledger")
	cmd.Flags().BoolVar(&all, "all", false, "audit every user with at least one snapshot")
	cmd.Flags().BoolVar(&persist, "persist", false, "write mismatches to ledger_audit_reports")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func printResults(cmd *cobra.Command, results []*workflow.LedgerAuditResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		status := "OK"
		if !r.Healthy() {
			status = "MISMATCH"
		}
		fmt.Fprintf(out, "user=%d snapshots=%d mismatches=%d status=%s\n", r.UserId, r.Snapshots, len(r.Mismatches), status)
		for _, m := range r.Mismatches {
			fmt.Fprintf(out, "  balance=%d check=%s %s\n", m.BalanceId, m.CheckType, m.Details)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUnhealthyLedger) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
