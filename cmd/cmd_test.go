package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoicesYAML = `
invoices:
  - name: BILL/2024/01/0001
    state: posted
    invoice_date_due: 2024-02-15
    amount_total: 1250.50
    currency: DKK
    payment_reference: INV 4711
    invoice_origin: P00042
    journal_name: Vendor Bills
    partner: {name: Nordic Supplies ApS, street: Vestergade 12, zip: "8000", city: Aarhus C, country: Denmark}
    partner_bank: {acc_number: "12345678901234", from_type: "2"}
    company: {name: FlexERP ApS, bank_accounts: ["987654321012345"]}
  - name: BILL/2024/01/0002
    state: posted
    invoice_date_due: 2024-02-20
    amount_total: 99.95
    currency: EUR
    payment_reference: RF18 5390 0754 7034
    ref: R-77
    fiscal_position: {name: EU, bank_trans_type: international}
    partner: {name: Rhein GmbH, street: Hauptstrasse 1, city: Köln, country: Germany}
    partner_bank:
      acc_number: DE89370400440532013000
      from_type: "1"
      bank: {name: Commerzbank, bic: COBADEFFXXX}
    company: {name: FlexERP ApS, bank_accounts: ["987654321012345"]}
  - name: BILL/2024/01/0003
    state: draft
`

// workspace writes a config and an invoice file and returns the config path
// and the output directory.
func workspace(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	invoices := filepath.Join(dir, "invoices.yaml")
	require.NoError(t, os.WriteFile(invoices, []byte(invoicesYAML), 0o644))

	out := filepath.Join(dir, "out")
	cfg := "output_dir: " + out + "\n" +
		"archive_dir: " + filepath.Join(dir, "archive") + "\n" +
		"source:\n  kind: yaml\n  path: " + invoices + "\n" + extra
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	return cfgPath, out
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dryRun, toStdout, writeErrorLog, strict, showLayouts, verbose = false, false, false, false, false, false
	invoiceNames, checkInvoices = nil, nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestGenerateWritesPaymentFile(t *testing.T) {
	cfgPath, out := workspace(t, "archive_on_success: true\n")

	_, err := run(t, "--config", cfgPath, "generate", "--invoice", "BILL/2024/01/0002", "--invoice", "BILL/2024/01/0001")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "bank_payment.txt"))
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], `"IB000000000000",`))
	assert.True(t, strings.HasPrefix(lines[1], `"IB030204000004","0001","20240220","0000000009995+","1",`))
	assert.True(t, strings.HasPrefix(lines[2], `"IB030202000006","0001","20240215","0000000125050+",`))
	assert.Contains(t, lines[3], `"000002","0000000135045+"`)
}

func TestGenerateAbortsOnDraft(t *testing.T) {
	cfgPath, out := workspace(t, "")

	_, err := run(t, "--config", cfgPath, "generate")
	require.Error(t, err)
	assert.Equal(t, `insufficient data: invoice number: BILL/2024/01/0003: status "draft", bill must be posted`, err.Error())

	_, statErr := os.Stat(filepath.Join(out, "bank_payment.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckReportsProblems(t *testing.T) {
	cfgPath, _ := workspace(t, "")

	stdout, err := run(t, "--config", cfgPath, "check")
	require.Error(t, err)
	assert.Equal(t, "check found 1 error(s)", err.Error())
	assert.Contains(t, stdout, "[ERROR] Invoice BILL/2024/01/0003, Field 'State': bill must be posted (value: 'draft')")
	assert.Contains(t, stdout, "3 invoice(s) checked, 1 error(s), 0 warning(s); 2 record(s) totalling 135045")
}

func TestInvoiceSelectionIsPerRun(t *testing.T) {
	cfgPath, _ := workspace(t, "")

	_, err := run(t, "--config", cfgPath, "generate", "--stdout", "--invoice", "BILL/2024/01/0001")
	require.NoError(t, err)

	stdout, err := run(t, "--config", cfgPath, "generate", "--stdout", "--invoice", "BILL/2024/01/0002")
	require.NoError(t, err)
	lines := strings.Split(stdout, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `"IB030204000004",`))

	_, err = run(t, "--config", cfgPath, "check", "--invoice", "BILL/2024/01/0001")
	require.NoError(t, err)

	stdout, err = run(t, "--config", cfgPath, "check")
	require.Error(t, err)
	assert.Contains(t, stdout, "3 invoice(s) checked")
}

func TestRulesPrintsTable(t *testing.T) {
	cfgPath, _ := workspace(t, "")

	stdout, err := run(t, "--config", cfgPath, "rules", "--layouts")
	require.NoError(t, err)
	assert.Contains(t, stdout, "FIELD")
	assert.Contains(t, stdout, "total_amount")
	assert.Contains(t, stdout, "domestic (35 slots,")
	assert.Contains(t, stdout, "payment_card (27 slots,")
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
