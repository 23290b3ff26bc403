// =============================================================================
// Bank Payment Generator - Check Command
// =============================================================================
//
// COMMAND USAGE:
//   bankpay check [--invoice NAME ...] [--error-log]
//
// Runs every selected bill through the generation path without stopping at
// the first problem, prints all issues and exits non-zero when generation
// would fail. With --error-log the issues are also written to an
// error_log_<timestamp>.txt file in output_dir.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flexerp/bankpay/internal/validation"
	"github.com/flexerp/bankpay/pkg/utils"
)

var (
	checkInvoices []string
	writeErrorLog bool
	strict        bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report every problem that would stop generation",
	Long: `Check loads the selected bills and reports, for each one, every missing or
invalid field, unknown selection values and text that would be cut off.

The command exits with an error when generation would fail.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSliceVar(&checkInvoices, "invoice", nil, "Bill number to check (repeatable)")
	checkCmd.Flags().BoolVar(&writeErrorLog, "error-log", false, "Write the issues to an error log in output_dir")
	checkCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	src, err := a.source()
	if err != nil {
		return err
	}

	invoices, err := src.Load(cmd.Context(), checkInvoices)
	if err != nil {
		return fmt.Errorf("failed to load invoices: %w", err)
	}
	a.log.Infof("Loaded %d invoice(s)", len(invoices))

	report := validation.NewValidator(a.assembler, validation.Options{TreatWarningsAsErrors: strict}).CheckAll(invoices)

	fmt.Fprint(cmd.OutOrStdout(), validation.FormatIssues(report.Issues))
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d invoice(s) checked, %d error(s), %d warning(s); %d record(s) totalling %d\n",
		report.InvoicesChecked, report.ErrorCount, report.WarningCount, report.Lines, report.TotalAmount)

	if writeErrorLog {
		now := time.Now()
		path, err := utils.WriteErrorLog(report.LogEntries(now), a.cfg.OutputDir, now)
		if err != nil {
			return err
		}
		if path != "" {
			a.log.Infof("Wrote error log %s", path)
		}
	}

	if !report.OK() {
		return fmt.Errorf("check found %d error(s)", report.ErrorCount)
	}
	return nil
}
