// =============================================================================
// Bank Payment Generator - Batch Assembler
// =============================================================================
//
// The assembler turns an ordered list of invoices into the text of one bank
// payment file.
//
// FILE STRUCTURE:
//   header          - marker IB000000000000, creation date, fillers
//   body x N        - one record per invoice, in the order given
//   footer          - marker IB999999999999, creation date, record count,
//                     total amount in minor units, fillers
//
// Records are joined with "\n"; the footer is not followed by a newline.
//
// ERROR POLICY:
//   The first error aborts the whole batch and no content is returned. The
//   bank rejects a malformed file as a whole, so there is no skip-and-continue.
//
// =============================================================================

package batch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flexerp/bankpay/internal/extractor"
	"github.com/flexerp/bankpay/internal/fieldcodec"
	"github.com/flexerp/bankpay/internal/invoice"
	"github.com/flexerp/bankpay/internal/layout"
	"github.com/flexerp/bankpay/internal/logging"
)

// Suggested delivery attributes of a generated file.
const (
	FileName = "bank_payment.txt"
	MIMEType = "text/plain"
)

// LineSeparator separates records in a file.
const LineSeparator = "\n"

// ErrNilInvoice is returned for a nil entry in the invoice list.
var ErrNilInvoice = errors.New("nil invoice")

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures an Assembler.
type Options struct {
	// Rules is the field rule table. Default: fieldcodec.DefaultRules().
	Rules *fieldcodec.RuleTable

	// Clock returns the current time, used for the creation date.
	// Default: time.Now.
	Clock func() time.Time

	// Location is the time zone of the creation date. Default: time.Local.
	Location *time.Location

	// Logger receives progress messages. Default: a logger that discards.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the default assembler options.
func DefaultOptions() Options {
	return Options{
		Rules:    fieldcodec.DefaultRules(),
		Clock:    time.Now,
		Location: time.Local,
		Logger:   logging.Discard(),
	}
}

// =============================================================================
// BATCH STATE
// =============================================================================

// State accumulates the footer totals while bodies are emitted.
type State struct {
	TotalLines  int
	TotalAmount int64
}

// Add records one emitted body of amount minor units.
func (s *State) Add(amount int64) {
	s.TotalLines++
	s.TotalAmount += amount
}

// =============================================================================
// FILE
// =============================================================================

// File is one generated bank payment file.
type File struct {
	// BatchID identifies the generation run in logs and file names.
	BatchID uuid.UUID

	// CreatedAt is the creation timestamp written in header and footer.
	CreatedAt time.Time

	// Content is the complete file text.
	Content string

	// Invoices lists the invoice numbers in record order.
	Invoices []string

	// Totals are the values written in the footer.
	Totals State
}

// Bytes returns the content as UTF-8 bytes.
func (f *File) Bytes() []byte {
	return []byte(f.Content)
}

// Lines returns the records of the file, header and footer included.
func (f *File) Lines() []string {
	return strings.Split(f.Content, LineSeparator)
}

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler generates bank payment files.
type Assembler struct {
	rules    *fieldcodec.RuleTable
	clock    func() time.Time
	location *time.Location
	logger   logrus.FieldLogger
}

// New creates an Assembler. Unset options take their defaults. The rule
// table is checked against every layout.
func New(opts Options) (*Assembler, error) {
	defaults := DefaultOptions()
	if opts.Rules == nil {
		opts.Rules = defaults.Rules
	}
	if opts.Clock == nil {
		opts.Clock = defaults.Clock
	}
	if opts.Location == nil {
		opts.Location = defaults.Location
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	if err := layout.Check(opts.Rules); err != nil {
		return nil, fmt.Errorf("rule table does not cover record layouts: %w", err)
	}

	return &Assembler{
		rules:    opts.Rules,
		clock:    opts.Clock,
		location: opts.Location,
		logger:   opts.Logger,
	}, nil
}

// Rules returns the rule table the assembler encodes with.
func (a *Assembler) Rules() *fieldcodec.RuleTable {
	return a.rules
}

// Generate builds the file for invoices. On error no file is returned.
func (a *Assembler) Generate(invoices []*invoice.Invoice) (*File, error) {
	now := a.clock().In(a.location)
	file := &File{
		BatchID:   uuid.New(),
		CreatedAt: now,
		Invoices:  make([]string, 0, len(invoices)),
	}
	log := a.logger.WithField("batch", file.BatchID.String())

	lines := make([]string, 0, len(invoices)+2)

	header, err := a.Header(now)
	if err != nil {
		return nil, err
	}
	lines = append(lines, header)

	var state State
	for i, inv := range invoices {
		if inv == nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, ErrNilInvoice)
		}
		body, values, err := a.Body(inv)
		if err != nil {
			log.WithField("invoice", inv.Name).Debugf("Batch aborted: %v", err)
			return nil, err
		}
		lines = append(lines, body)
		state.Add(values.Amount)
		file.Invoices = append(file.Invoices, inv.Name)

		log.WithFields(logrus.Fields{
			"invoice":        inv.Name,
			"classification": values.Classification.String(),
			"amount":         values.Amount,
		}).Debug("Encoded invoice")
	}

	footer, err := a.Footer(now, state)
	if err != nil {
		return nil, err
	}
	lines = append(lines, footer)

	file.Content = strings.Join(lines, LineSeparator)
	file.Totals = state

	log.Infof("Assembled %d invoice record(s), total amount %d", state.TotalLines, state.TotalAmount)
	return file, nil
}

// Header encodes the first record of a file created at now.
func (a *Assembler) Header(now time.Time) (string, error) {
	line, err := layout.Header().Encode(a.rules, map[string]string{
		layout.ValTransType:    layout.HeaderMarker,
		layout.ValCreationDate: now.Format(extractor.DueDateFormat),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode header: %w", err)
	}
	return line, nil
}

// Footer encodes the last record of a file created at now.
func (a *Assembler) Footer(now time.Time, state State) (string, error) {
	totalLines := strconv.Itoa(state.TotalLines)
	totalAmount := strconv.FormatInt(state.TotalAmount, 10)

	a.warnIfTruncated("total_lines", totalLines)
	a.warnIfTruncated("total_amount", totalAmount)

	line, err := layout.Footer().Encode(a.rules, map[string]string{
		layout.ValTransType:    layout.FooterMarker,
		layout.ValCreationDate: now.Format(extractor.DueDateFormat),
		layout.ValTotalLines:   totalLines,
		layout.ValTotalAmount:  totalAmount,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode footer: %w", err)
	}
	return line, nil
}

// Body encodes the record of one invoice and returns the extracted values
// with it. Data errors are returned as is; configuration errors are wrapped
// with the invoice number.
func (a *Assembler) Body(inv *invoice.Invoice) (string, *extractor.Values, error) {
	if inv == nil {
		return "", nil, ErrNilInvoice
	}
	if !inv.Posted() {
		return "", nil, &invoice.StatusError{Invoice: inv.Name, State: inv.State}
	}

	c, err := layout.Classify(inv)
	if err != nil {
		return "", nil, fmt.Errorf("invoice %s: %w", inv.Name, err)
	}

	values, err := extractor.Extract(inv, c)
	if err != nil {
		if errors.Is(err, invoice.ErrInsufficientData) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("invoice %s: %w", inv.Name, err)
	}

	l, err := layout.For(c)
	if err != nil {
		return "", nil, fmt.Errorf("invoice %s: %w", inv.Name, err)
	}

	line, err := l.Encode(a.rules, values.Fields)
	if err != nil {
		return "", nil, fmt.Errorf("invoice %s: %w", inv.Name, err)
	}

	return line, values, nil
}

// warnIfTruncated logs when a footer total is wider than its slot. The codec
// keeps the leading digits.
func (a *Assembler) warnIfTruncated(field, digits string) {
	rule, ok := a.rules.Lookup(field)
	if ok && len(digits) > rule.Width {
		a.logger.WithField("field", field).Warnf("Total %s has %d digits, slot holds %d; value is truncated", digits, len(digits), rule.Width)
	}
}
