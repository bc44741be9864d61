package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column names of the Coinbase-style transaction ledger.
const (
	colTimestamp  = "Timestamp"
	colTxType     = "Transaction Type"
	colAsset      = "Asset"
	colQuantity   = "Quantity Transacted"
	colSpotPrice  = "USD Spot Price at Transaction"
	colSubtotal   = "USD Subtotal"
	colTotal      = "USD Total (inclusive of fees)"
	colFees       = "USD Fees"
	colAttributed = "Quantity Attributed to Gains"
)

var requiredLedgerCols = []string{
	colTimestamp, colTxType, colAsset, colQuantity,
	colSpotPrice, colSubtotal, colTotal, colFees,
}

// LedgerCsvHeader is the column order of the updated ledger written back
// after a run. The attribution column is the persisted checkpoint that
// makes reprocessing in later tax years idempotent.
var LedgerCsvHeader = append(append([]string{}, requiredLedgerCols...), colAttributed)

// ProceedsCsvHeader is the fixed column order of the proceeds report.
var ProceedsCsvHeader = []string{
	"ASSET NAME", "RECEIVED DATE", "COST BASIS(USD)", "DATE SOLD", "PROCEEDS",
}

const csvDateFormat = "2006-01-02"

// InvalidInputError is a malformed ledger row or header. Rows are never
// skipped silently; the first bad row fails the whole ingest.
type InvalidInputError struct {
	Desc string
	Row  int
	Err  error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input in %s, row %d: %v", e.Desc, e.Row, e.Err)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCsvTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func parseCsvDecimal(name, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable %s %q", name, s)
	}
	return d, nil
}

// LedgerFile is one parsed transaction ledger. Preamble lines before the
// header row are preserved verbatim for write-back.
type LedgerFile struct {
	Desc     string
	Preamble []string
	Txs      []*Tx
}

// ParseTxCsv reads a transaction ledger. Exported ledgers carry a
// free-text preamble before the column header, so the parser scans
// forward to the first line starting with the Timestamp column.
// globalReadIndex is the ReadIndex assigned to the first transaction.
func ParseTxCsv(reader io.Reader, globalReadIndex uint32, desc string) (*LedgerFile, error) {
	br := bufio.NewReader(reader)

	var preamble []string
	var headerLine string
	for {
		line, err := br.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == colTimestamp || strings.HasPrefix(trimmed, colTimestamp+",") {
			headerLine = trimmed
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &InvalidInputError{Desc: desc, Row: 0,
					Err: fmt.Errorf("no header row starting with %q found", colTimestamp)}
			}
			return nil, fmt.Errorf("reading %s: %w", desc, err)
		}
		preamble = append(preamble, trimmed)
	}

	csvReader := csv.NewReader(io.MultiReader(strings.NewReader(headerLine+"\n"), br))
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", desc, err)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredLedgerCols {
		if _, ok := colIdx[name]; !ok {
			return nil, &InvalidInputError{Desc: desc, Row: 0,
				Err: fmt.Errorf("missing required column %q", name)}
		}
	}
	attributedIdx, hasAttributedCol := colIdx[colAttributed]

	field := func(record []string, name string) string {
		i := colIdx[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	lf := &LedgerFile{Desc: desc, Preamble: preamble}
	row := 0
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, &InvalidInputError{Desc: desc, Row: row, Err: err}
		}

		rowErr := func(err error) error {
			return &InvalidInputError{Desc: desc, Row: row, Err: err}
		}

		ts, err := parseCsvTimestamp(field(record, colTimestamp))
		if err != nil {
			return nil, rowErr(err)
		}
		action, err := ParseTxAction(strings.TrimSpace(field(record, colTxType)))
		if err != nil {
			return nil, rowErr(err)
		}

		tx := &Tx{
			Timestamp: ts,
			Action:    action,
			Asset:     strings.TrimSpace(field(record, colAsset)),
			ReadIndex: globalReadIndex,
		}
		for _, numCol := range []struct {
			name string
			dst  *decimal.Decimal
		}{
			{colQuantity, &tx.Quantity},
			{colSpotPrice, &tx.SpotPrice},
			{colSubtotal, &tx.Subtotal},
			{colTotal, &tx.Total},
			{colFees, &tx.Fees},
		} {
			val, err := parseCsvDecimal(numCol.name, field(record, numCol.name))
			if err != nil {
				return nil, rowErr(err)
			}
			*numCol.dst = val
		}
		if hasAttributedCol && attributedIdx < len(record) {
			val, err := parseCsvDecimal(colAttributed, record[attributedIdx])
			if err != nil {
				return nil, rowErr(err)
			}
			tx.Attributed = val
		}
		if err := tx.Validate(); err != nil {
			return nil, rowErr(err)
		}

		lf.Txs = append(lf.Txs, tx)
		globalReadIndex++
	}
	return lf, nil
}

// WriteProceedsCsv writes the proceeds report, rounded to cents.
func WriteProceedsCsv(w io.Writer, records []*Proceeds) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(ProceedsCsvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		err := csvWriter.Write([]string{
			rec.Asset,
			rec.AcquiredDate.Format(csvDateFormat),
			rec.CostBasis.StringFixed(2),
			rec.SaleDate.Format(csvDateFormat),
			rec.Gain.StringFixed(2),
		})
		if err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteUpdated writes the full ledger back out with the attribution
// column reflecting the pools mutated by the run. Transactions keep their
// input order and the original preamble is preserved, so the output can
// be re-ingested as-is for a later tax year.
func (lf *LedgerFile) WriteUpdated(w io.Writer, pools map[string]*LotPool) error {
	attributedByIndex := make(map[uint32]decimal.Decimal)
	for _, pool := range pools {
		for _, lot := range pool.Lots() {
			attributedByIndex[lot.Tx.ReadIndex] = lot.Attributed
		}
	}

	bw := bufio.NewWriter(w)
	for _, line := range lf.Preamble {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}

	csvWriter := csv.NewWriter(bw)
	if err := csvWriter.Write(LedgerCsvHeader); err != nil {
		return err
	}
	for _, tx := range lf.Txs {
		attributed, ok := attributedByIndex[tx.ReadIndex]
		if !ok {
			attributed = tx.Attributed
		}
		err := csvWriter.Write([]string{
			tx.Timestamp.UTC().Format(time.RFC3339),
			tx.Action.String(),
			tx.Asset,
			tx.Quantity.String(),
			tx.SpotPrice.String(),
			tx.Subtotal.String(),
			tx.Total.String(),
			tx.Fees.String(),
			attributed.String(),
		})
		if err != nil {
			return err
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
