package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nickdnickd/taxmycrypto/ledger"
	"github.com/nickdnickd/taxmycrypto/log"
)

// AppVersion is of the format 0.YY.MM[.i], or 0.year.month.optional_minor_increment.
// Major version is kept at 0, since the app is perpetually in 'beta' due to
// there not being a tax lawyer on staff to verify anything.
var AppVersion = "0.26.09"

type DescribedReader struct {
	Desc   string
	Reader io.Reader
}

type Options struct {
	Year                   int
	Strategy               ledger.Strategy
	TrackedAssets          []string
	RenderFullDollarValues bool
	ShowLotPools           bool
	OutputDir              string
	PrintOnly              bool
}

func NewOptions() Options {
	return Options{
		Year:     DefaultTaxYear(),
		Strategy: ledger.HIFO,
	}
}

// ProceedsAppResult bundles everything one run produces: the proceeds
// records and summary, plus the parsed ledger and mutated pools needed
// for the updated-ledger write-back.
type ProceedsAppResult struct {
	Ledger  *ledger.LedgerFile
	Records []*ledger.Proceeds
	Summary ledger.ProceedsSummary
	Pools   map[string]*ledger.LotPool
}

// RunProceedsAppToModel parses one ledger and runs the aggregation.
func RunProceedsAppToModel(
	csvReader DescribedReader, options Options) (*ProceedsAppResult, error) {

	lf, err := ledger.ParseTxCsv(csvReader.Reader, 0, csvReader.Desc)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateAssets(lf.Txs, options.TrackedAssets); err != nil {
		return nil, err
	}
	log.Infof("parsed %d transactions from %s", len(lf.Txs), csvReader.Desc)

	res, err := ledger.CalcProceeds(lf.Txs, options.Year, options.Strategy)
	if err != nil {
		return nil, err
	}
	log.Infof("year %d: %d proceeds records, total profit %s, total loss %s",
		options.Year, len(res.Records),
		res.Summary.TotalProfit.StringFixed(2), res.Summary.TotalLoss.StringFixed(2))

	return &ProceedsAppResult{
		Ledger:  lf,
		Records: res.Records,
		Summary: res.Summary,
		Pools:   res.Pools,
	}, nil
}

func WriteRenderResult(res *ProceedsAppResult, options Options, writer io.Writer) {
	proceedsTable := ledger.RenderProceedsTableModel(
		res.Records, res.Summary, options.RenderFullDollarValues)
	ledger.PrintRenderTable(
		fmt.Sprintf("Proceeds for tax year %d (%s)", options.Year, options.Strategy),
		proceedsTable, writer)

	if options.ShowLotPools {
		fmt.Fprintln(writer, "")
		ledger.PrintRenderTable("Lot attribution after run",
			ledger.RenderLotPools(res.Pools, options.RenderFullDollarValues), writer)
	}
}

// RunProceedsAppToWriter renders the report to writer without producing
// file artifacts. Returns an OK flag signalling the exit code to use.
func RunProceedsAppToWriter(
	writer io.Writer,
	csvReader DescribedReader,
	options Options,
	errPrinter log.ErrorPrinter) (bool, *ProceedsAppResult) {

	res, err := RunProceedsAppToModel(csvReader, options)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return false, nil
	}
	WriteRenderResult(res, options, writer)
	return true, res
}

// ProceedsCsvPath derives the proceeds artifact path from the input path.
func ProceedsCsvPath(inputPath, outputDir string) string {
	return derivedPath(inputPath, outputDir, "_proceeds.csv")
}

// UpdatedLedgerCsvPath derives the updated-ledger artifact path from the
// input path.
func UpdatedLedgerCsvPath(inputPath, outputDir string) string {
	return derivedPath(inputPath, outputDir, "_cost_basis_source.csv")
}

func derivedPath(inputPath, outputDir, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), ".csv") + suffix
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	return filepath.Join(outputDir, base)
}

// RunProceedsAppToFiles runs the app over the ledger at inputPath,
// renders the report to writer, and writes the two derived artifacts:
// the proceeds CSV and the updated ledger carrying attribution state.
// Returns an OK flag. All errors get printed to the errPrinter.
func RunProceedsAppToFiles(
	writer io.Writer,
	inputPath string,
	options Options,
	errPrinter log.ErrorPrinter) bool {

	fp, err := os.Open(inputPath)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return false
	}
	defer fp.Close()

	ok, res := RunProceedsAppToWriter(
		writer, DescribedReader{Desc: filepath.Base(inputPath), Reader: fp}, options,
		errPrinter)
	if !ok {
		return false
	}
	if options.PrintOnly {
		return true
	}

	if options.OutputDir != "" {
		if err := os.MkdirAll(options.OutputDir, os.ModePerm); err != nil {
			errPrinter.Ln("Error:", err)
			return false
		}
	}

	proceedsPath := ProceedsCsvPath(inputPath, options.OutputDir)
	if err := writeFileArtifact(proceedsPath, func(w io.Writer) error {
		return ledger.WriteProceedsCsv(w, res.Records)
	}); err != nil {
		errPrinter.Ln("Error:", err)
		return false
	}
	fmt.Fprintln(writer, "\nWrote proceeds to", proceedsPath)

	updatedPath := UpdatedLedgerCsvPath(inputPath, options.OutputDir)
	if err := writeFileArtifact(updatedPath, func(w io.Writer) error {
		return res.Ledger.WriteUpdated(w, res.Pools)
	}); err != nil {
		errPrinter.Ln("Error:", err)
		return false
	}
	fmt.Fprintln(writer, "Wrote updated ledger to", updatedPath)
	return true
}

func writeFileArtifact(path string, write func(io.Writer) error) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("opening output file %q: %w", path, err)
	}
	if err := write(fp); err != nil {
		fp.Close()
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return fp.Close()
}
