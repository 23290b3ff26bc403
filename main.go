// =============================================================================
// Bank Payment Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the bankpay CLI. It initializes the Cobra
// CLI framework and delegates command execution to the cmd package.
//
// USAGE:
//   bankpay generate   - Generate the bank payment file for posted bills
//   bankpay check      - Report every problem that would stop generation
//   bankpay rules      - Print the field rule table and record layouts
//   bankpay version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Payment file engine, invoice sources, configuration
//   - pkg/           : Shared file delivery utilities
//
// =============================================================================

package main

import (
	"github.com/flexerp/bankpay/cmd"
)

func main() {
	cmd.Execute()
}
