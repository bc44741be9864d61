package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickdnickd/taxmycrypto/ledger"
	"github.com/nickdnickd/taxmycrypto/log"
)

const testLedgerCsv = `Transactions
All amounts are reported in USD.

Timestamp,Transaction Type,Asset,Quantity Transacted,USD Spot Price at Transaction,USD Subtotal,USD Total (inclusive of fees),USD Fees
2019-06-01T00:00:00Z,Buy,BTC,1.0,10.00,10.00,11.00,1.00
2020-06-01T00:00:00Z,Sell,BTC,1.0,10.00,10.00,10.00,0
`

func testOptions() Options {
	options := NewOptions()
	options.Year = 2020
	return options
}

func TestRunProceedsAppToModel(t *testing.T) {
	res, err := RunProceedsAppToModel(
		DescribedReader{Desc: "test.csv", Reader: strings.NewReader(testLedgerCsv)},
		testOptions())
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "BTC", rec.Asset)
	assert.True(t, rec.CostBasis.Equal(decimal.RequireFromString("11.00")))
	assert.True(t, rec.Gain.Equal(decimal.RequireFromString("-1.00")))
	assert.True(t, res.Summary.TotalLoss.Equal(decimal.RequireFromString("-1.00")))
	assert.True(t, res.Summary.TotalProfit.IsZero())
	require.Len(t, res.Ledger.Txs, 2)
}

func TestRunProceedsAppToModelTrackedAssets(t *testing.T) {
	options := testOptions()
	options.TrackedAssets = []string{"ETH", "LTC"}

	_, err := RunProceedsAppToModel(
		DescribedReader{Desc: "test.csv", Reader: strings.NewReader(testLedgerCsv)},
		options)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BTC")
}

func TestRunProceedsAppToWriterReportsErrors(t *testing.T) {
	// A sale with no buy lots at all.
	input := strings.Replace(testLedgerCsv,
		"2019-06-01T00:00:00Z,Buy,BTC,1.0,10.00,10.00,11.00,1.00\n", "", 1)

	var out, errOut bytes.Buffer
	ok, res := RunProceedsAppToWriter(
		&out,
		DescribedReader{Desc: "test.csv", Reader: strings.NewReader(input)},
		testOptions(),
		&log.WriterErrorPrinter{Writer: &errOut})

	assert.False(t, ok)
	assert.Nil(t, res)
	assert.Contains(t, errOut.String(), "insufficient cost basis")
	// All-or-nothing: no partial report is rendered.
	assert.Empty(t, out.String())
}

func TestRunProceedsAppToFiles(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "coinbase.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte(testLedgerCsv), 0644))

	var out bytes.Buffer
	ok := RunProceedsAppToFiles(&out, inputPath, testOptions(), log.NewStderrErrorPrinter())
	require.True(t, ok)
	assert.Contains(t, out.String(), "Proceeds for tax year 2020")

	proceeds, err := os.ReadFile(filepath.Join(dir, "coinbase_proceeds.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"ASSET NAME,RECEIVED DATE,COST BASIS(USD),DATE SOLD,PROCEEDS\n"+
			"BTC,2019-06-01,11.00,2020-06-01,-1.00\n",
		string(proceeds))

	updatedPath := filepath.Join(dir, "coinbase_cost_basis_source.csv")
	updated, err := os.ReadFile(updatedPath)
	require.NoError(t, err)
	assert.Contains(t, string(updated), "Quantity Attributed to Gains")

	// The updated ledger must reparse and carry the consumed attribution.
	fp, err := os.Open(updatedPath)
	require.NoError(t, err)
	defer fp.Close()
	lf, err := ledger.ParseTxCsv(fp, 0, "updated")
	require.NoError(t, err)
	require.Len(t, lf.Txs, 2)
	assert.True(t, lf.Txs[0].Attributed.Equal(decimal.RequireFromString("1")))
}

func TestRunProceedsAppToFilesPrintOnly(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "coinbase.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte(testLedgerCsv), 0644))

	options := testOptions()
	options.PrintOnly = true

	var out bytes.Buffer
	ok := RunProceedsAppToFiles(&out, inputPath, options, log.NewStderrErrorPrinter())
	require.True(t, ok)

	_, err := os.Stat(filepath.Join(dir, "coinbase_proceeds.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestDerivedArtifactPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "tx_proceeds.csv"),
		ProceedsCsvPath(filepath.Join("data", "tx.csv"), ""))
	assert.Equal(t, filepath.Join("out", "tx_cost_basis_source.csv"),
		UpdatedLedgerCsvPath(filepath.Join("data", "tx.csv"), "out"))
}
