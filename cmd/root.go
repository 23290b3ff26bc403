// =============================================================================
// Bank Payment Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI and the start-up
// sequence shared by the subcommands.
//
// COBRA CLI STRUCTURE:
//   rootCmd (bankpay)
//   ├── generateCmd (bankpay generate)
//   ├── checkCmd    (bankpay check)
//   ├── rulesCmd    (bankpay rules)
//   └── versionCmd  (bankpay version)
//
// START-UP:
//   1. Load config.yaml (or --config), then BANKPAY_ environment overrides
//   2. Build the logger
//   3. Load the field rule table and check it against every record layout
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flexerp/bankpay/internal/batch"
	"github.com/flexerp/bankpay/internal/config"
	"github.com/flexerp/bankpay/internal/fieldcodec"
	"github.com/flexerp/bankpay/internal/logging"
	"github.com/flexerp/bankpay/internal/source"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

const defaultConfigFile = "config.yaml"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "bankpay",
	Short: "Bank payment file generator - turn posted vendor bills into a bank upload file",
	Long: `bankpay turns posted vendor bills into the fixed-width, comma separated
payment file the bank imports for outgoing transfers.

Each bill becomes one record: a domestic transfer, an international transfer
or a payment card slip, chosen by the bill's fiscal position. A header and a
footer with record count and total amount frame the records.

Generation is all-or-nothing. Run 'bankpay check' to see every problem at once.

Example Usage:
  bankpay generate                              # All bills in the configured source
  bankpay generate --invoice BILL/2024/01/0001  # Selected bills, in the given order
  bankpay check                                 # Report problems without writing a file
  bankpay rules                                 # Show field widths and layouts`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. Errors are printed and exit with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// START-UP
// =============================================================================

// app bundles what every command needs.
type app struct {
	cfg       *config.MainConfig
	log       *logrus.Logger
	rules     *fieldcodec.RuleTable
	assembler *batch.Assembler
}

// setup loads configuration, logger and rule table. A missing config file
// is only an error when --config was given explicitly.
func setup(cmd *cobra.Command) (*app, error) {
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.LoadMainConfig(cfgFile, allowMissing)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	rules := fieldcodec.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = fieldcodec.LoadRulesFile(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		log.Debugf("Loaded field rules from %s", cfg.RulesFile)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	assembler, err := batch.New(batch.Options{
		Rules:    rules,
		Location: loc,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, rules: rules, assembler: assembler}, nil
}

// source returns the configured invoice source.
func (a *app) source() (source.Source, error) {
	src, err := source.New(a.cfg.Source)
	if err != nil {
		return nil, err
	}
	a.log.WithField("kind", a.cfg.Source.Kind).Debug("Using invoice source")
	return src, nil
}
