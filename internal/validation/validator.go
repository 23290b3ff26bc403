// =============================================================================
// Bank Payment Generator - Pre-flight Check
// =============================================================================
//
// Generation stops at the first invoice it cannot encode. Before a run,
// operators want the complete list of problems so every invoice can be fixed
// in one pass. This module runs the same path as the batch assembler for
// each invoice and collects every issue instead of stopping.
//
// CHECKS:
//   1. Status and extraction: the exact error generation would raise
//   2. Selection tags: values the host system does not offer (warnings)
//   3. Truncation: text longer than its slot, cut off on output (warnings)
//   4. Totals: a footer total wider than its slot (error)
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/flexerp/bankpay/internal/batch"
	"github.com/flexerp/bankpay/internal/extractor"
	"github.com/flexerp/bankpay/internal/fieldcodec"
	"github.com/flexerp/bankpay/internal/invoice"
	"github.com/flexerp/bankpay/internal/layout"
	"github.com/flexerp/bankpay/pkg/utils"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Field names used by issues that do not come from an extraction label.
const (
	FieldState             = "State"
	FieldTransactionOption = "Payment Term Transaction Option"
	FieldTransferType      = "Payment Term Transfer Type"
	FieldTotalAmount       = "Total amount"
	FieldTotalLines        = "Total lines"
)

// =============================================================================
// ISSUES
// =============================================================================

// Issue is one problem found in one invoice.
type Issue struct {
	// Severity is SeverityError (generation would fail) or SeverityWarning
	// (generation succeeds but the result may not be what was meant).
	Severity string

	// Invoice is the invoice number. Empty for batch level issues.
	Invoice string

	// Field is the label of the offending field.
	Field string

	// Value is the offending value, when there is one.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Issue) Error() string {
	s := fmt.Sprintf("[%s] Invoice %s", strings.ToUpper(e.Severity), e.Invoice)
	if e.Invoice == "" {
		s = fmt.Sprintf("[%s] Batch", strings.ToUpper(e.Severity))
	}
	if e.Field != "" {
		s += fmt.Sprintf(", Field '%s'", e.Field)
	}
	s += ": " + e.Message
	if e.Value != "" {
		s += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return s
}

// =============================================================================
// REPORT
// =============================================================================

// Report is the result of checking a set of invoices.
type Report struct {
	// Issues lists every issue in invoice order.
	Issues []*Issue

	// ErrorCount is the number of issues that would stop generation.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// InvoicesChecked is the number of invoices looked at.
	InvoicesChecked int

	// Lines and TotalAmount are the footer values a run would produce from
	// the invoices without errors.
	Lines       int
	TotalAmount int64
}

// OK reports whether generation would succeed.
func (r *Report) OK() bool {
	return r.ErrorCount == 0
}

func (r *Report) add(issue *Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// LogEntries converts the issues for utils.WriteErrorLog.
func (r *Report) LogEntries(now time.Time) []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, 0, len(r.Issues))
	for _, issue := range r.Issues {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			Invoice:      issue.Invoice,
			ErrorType:    issue.Severity,
			ErrorMessage: issue.Message,
			FieldName:    issue.Field,
		})
	}
	return entries
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks invoices against the path the assembler takes.
type Validator struct {
	assembler *batch.Assembler
	options   Options
}

// Options contains options for validation.
type Options struct {
	// TreatWarningsAsErrors counts warnings as errors.
	// Default: false
	TreatWarningsAsErrors bool
}

// NewValidator creates a new Validator.
func NewValidator(assembler *batch.Assembler, options Options) *Validator {
	return &Validator{assembler: assembler, options: options}
}

// Check checks invoices with default options.
func Check(invoices []*invoice.Invoice, assembler *batch.Assembler) *Report {
	return NewValidator(assembler, Options{}).CheckAll(invoices)
}

// CheckAll checks every invoice and returns the collected report.
func (v *Validator) CheckAll(invoices []*invoice.Invoice) *Report {
	report := &Report{InvoicesChecked: len(invoices)}
	seen := make(map[string]bool, len(invoices))

	for i, inv := range invoices {
		if inv == nil {
			report.add(&Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("entry %d: %v", i+1, batch.ErrNilInvoice),
			})
			continue
		}
		if seen[inv.Name] {
			report.add(&Issue{
				Severity: SeverityError,
				Invoice:  inv.Name,
				Message:  "invoice appears more than once in the batch",
			})
		}
		seen[inv.Name] = true

		values, issues := v.CheckInvoice(inv)
		for _, issue := range issues {
			if v.options.TreatWarningsAsErrors {
				issue.Severity = SeverityError
			}
			report.add(issue)
		}
		if values != nil {
			report.Lines++
			report.TotalAmount += values.Amount
		}
	}

	for _, issue := range v.checkTotals(report) {
		report.add(issue)
	}

	return report
}

// CheckInvoice returns the issues of one invoice, and its extracted values
// when it can be encoded.
func (v *Validator) CheckInvoice(inv *invoice.Invoice) (*extractor.Values, []*Issue) {
	var issues []*Issue

	_, values, err := v.assembler.Body(inv)
	if err != nil {
		issues = append(issues, issueFromError(inv, err))
	}

	issues = append(issues, checkSelections(inv)...)

	if values != nil {
		issues = append(issues, v.checkTruncation(inv, values)...)
	}

	return values, issues
}

// issueFromError turns a generation error into an issue.
func issueFromError(inv *invoice.Invoice, err error) *Issue {
	issue := &Issue{Severity: SeverityError, Invoice: inv.Name, Message: err.Error()}

	var missing *invoice.MissingFieldError
	var status *invoice.StatusError
	var invalid *fieldcodec.InvalidValueError

	switch {
	case errors.As(err, &missing):
		issue.Field = missing.Field
		issue.Message = "missing or invalid"
	case errors.As(err, &status):
		issue.Field = FieldState
		issue.Value = status.State
		issue.Message = "bill must be posted"
	case errors.As(err, &invalid):
		issue.Field = invalid.Field
		issue.Value = invalid.Value
		issue.Message = invalid.Reason
	}

	return issue
}

// =============================================================================
// SELECTION TAGS
// =============================================================================

func checkSelections(inv *invoice.Invoice) []*Issue {
	var issues []*Issue

	check := func(field, value string, allowed invoice.Selection) {
		if value == "" || allowed.Has(value) {
			return
		}
		issues = append(issues, &Issue{
			Severity: SeverityWarning,
			Invoice:  inv.Name,
			Field:    field,
			Value:    value,
			Message:  "not one of " + describe(allowed),
		})
	}

	if bank := inv.PartnerBank; bank != nil {
		check(extractor.LabelFromType, bank.FromType, invoice.FromTypes)
		if c, err := layout.Classify(inv); err == nil && c == layout.PaymentCard {
			check(extractor.LabelCardCode, bank.CardCode, invoice.CardCodes)
		}
	}
	if term := inv.PaymentTerm; term != nil {
		check(FieldTransactionOption, term.TransactionOption, invoice.TransactionOptions)
		check(FieldTransferType, term.TransferType, invoice.TransferTypes)
	}

	return issues
}

// describe lists a selection as "1 (Label), 2 (Label)".
func describe(s invoice.Selection) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		if s[k] == k {
			parts[i] = k
		} else {
			parts[i] = fmt.Sprintf("%s (%s)", k, s[k])
		}
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// WIDTHS
// =============================================================================

// checkTruncation warns about text values longer than their slot.
func (v *Validator) checkTruncation(inv *invoice.Invoice, values *extractor.Values) []*Issue {
	l, err := layout.For(values.Classification)
	if err != nil {
		return nil
	}
	rules := v.assembler.Rules()

	var issues []*Issue
	for _, s := range l.Slots {
		if s.Filler() {
			continue
		}
		rule, ok := rules.Lookup(s.Field)
		if !ok {
			continue
		}
		value := values.Fields[s.Value]
		if n := utf8.RuneCountInString(value); n > rule.Width {
			issues = append(issues, &Issue{
				Severity: SeverityWarning,
				Invoice:  inv.Name,
				Field:    s.Label,
				Value:    value,
				Message:  fmt.Sprintf("%d characters, only the first %d are written", n, rule.Width),
			})
		}
	}
	return issues
}

// checkTotals reports footer totals that do not fit their slots.
func (v *Validator) checkTotals(report *Report) []*Issue {
	rules := v.assembler.Rules()

	var issues []*Issue
	totals := []struct {
		field, rule, value string
	}{
		{FieldTotalLines, "total_lines", strconv.Itoa(report.Lines)},
		{FieldTotalAmount, "total_amount", strconv.FormatInt(report.TotalAmount, 10)},
	}
	for _, t := range totals {
		rule, ok := rules.Lookup(t.rule)
		if ok && len(t.value) > rule.Width {
			issues = append(issues, &Issue{
				Severity: SeverityError,
				Field:    t.field,
				Value:    t.value,
				Message:  fmt.Sprintf("%d digits do not fit the %d digit footer slot; split the batch", len(t.value), rule.Width),
			})
		}
	}
	return issues
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatIssues formats issues for display or logging.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No issues found."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Check completed with %d issue(s):\n\n", len(issues))
	for i, issue := range issues {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, issue.Error())
	}
	return builder.String()
}
