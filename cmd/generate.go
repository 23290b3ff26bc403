// =============================================================================
// Bank Payment Generator - Generate Command
// =============================================================================
//
// COMMAND USAGE:
//   bankpay generate [flags]
//
// FLAGS:
//   --invoice NAME  : Bill to include; repeat for several. Records follow
//                     the flag order. Default: every bill in the source.
//   --dry-run       : Build and encode the file without writing it
//   --stdout        : Write the file to standard output instead of output_dir
//
// PIPELINE:
//   1. Load configuration, logger and field rules
//   2. Load bills from the configured source
//   3. Assemble header, one record per bill, footer
//   4. Encode to the configured character set
//   5. Write atomically to output_dir, then archive if enabled
//
// Any failing bill aborts the run before anything is written.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flexerp/bankpay/pkg/utils"
)

var (
	invoiceNames []string
	dryRun       bool
	toStdout     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the bank payment file",
	Long: `Generate loads the selected bills, encodes one payment record per bill and
writes the bank payment file to the output directory.

The file is only written when every bill can be encoded. On failure the error
names the bill and the missing field; 'bankpay check' lists all of them.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVar(&invoiceNames, "invoice", nil, "Bill number to include (repeatable, keeps order)")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the file without writing it")
	generateCmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the file to standard output")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()

	a, err := setup(cmd)
	if err != nil {
		return err
	}

	src, err := a.source()
	if err != nil {
		return err
	}

	invoices, err := src.Load(cmd.Context(), invoiceNames)
	if err != nil {
		return fmt.Errorf("failed to load invoices: %w", err)
	}
	a.log.Infof("Loaded %d invoice(s)", len(invoices))

	file, err := a.assembler.Generate(invoices)
	if err != nil {
		return err
	}

	data, err := utils.Encode(file.Content, a.cfg.Encoding)
	if err != nil {
		return fmt.Errorf("failed to encode payment file: %w", err)
	}

	fileName := utils.GenerateOutputFileName(a.cfg.FileNameFormat, file.CreatedAt, file.BatchID, nil)
	log := a.log.WithFields(logrus.Fields{
		"batch":    file.BatchID.String(),
		"file":     fileName,
		"encoding": a.cfg.Encoding,
	})

	switch {
	case toStdout:
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("failed to write payment file: %w", err)
		}
	case dryRun:
		log.Infof("Dry run: %d byte(s) not written", len(data))
	default:
		fm := utils.NewFileManager(a.cfg.OutputDir, a.cfg.ArchiveDir)
		fm.ArchiveOnSuccess = a.cfg.ArchiveOnSuccess

		if err := fm.EnsureDirectories(); err != nil {
			return err
		}

		path, err := fm.WriteOutput(fileName, data)
		if err != nil {
			return err
		}
		log.Infof("Wrote %s", path)

		if fm.ArchiveOnSuccess {
			archived, err := fm.ArchiveOutputFile(path)
			if err != nil {
				return err
			}
			log.Infof("Archived to %s", archived)
		}
	}

	log.WithFields(logrus.Fields{
		"records":  file.Totals.TotalLines,
		"amount":   file.Totals.TotalAmount,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("Payment file complete")

	return nil
}
