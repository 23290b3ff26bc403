// =============================================================================
// Bank Payment Generator - Rules Command
// =============================================================================
//
// COMMAND USAGE:
//   bankpay rules [--layouts]
//
// Prints the active field rule table (built in, or rules_file) and, with
// --layouts, the slot order and record width of every record layout.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flexerp/bankpay/internal/fieldcodec"
	"github.com/flexerp/bankpay/internal/layout"
)

var showLayouts bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the field rule table and record layouts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := printRules(out, a.rules); err != nil {
			return err
		}
		if showLayouts {
			return printLayouts(out, a.rules)
		}
		return nil
	},
}

func init() {
	rulesCmd.Flags().BoolVar(&showLayouts, "layouts", false, "Also print every record layout")

	rootCmd.AddCommand(rulesCmd)
}

func printRules(out io.Writer, rules *fieldcodec.RuleTable) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tWIDTH\tKIND")
	for _, name := range rules.Names() {
		rule, _ := rules.Lookup(name)
		fmt.Fprintf(w, "%s\t%d\t%s\n", rule.Name, rule.Width, rule.Kind)
	}
	return w.Flush()
}

func printLayouts(out io.Writer, rules *fieldcodec.RuleTable) error {
	for _, l := range layout.All() {
		width, err := l.Width(rules)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s (%d slots, %d characters)\n", l.Name, len(l.Slots), width)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSLOT\tFIELD\tVALUE\tSIGNED")
		for i, s := range l.Slots {
			value := s.Value
			if s.Filler() {
				value = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", i+1, s.Label, s.Field, value, s.Signed)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
