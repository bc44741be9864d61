package ledger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nickdnickd/taxmycrypto/util"
)

type _PrintHelper struct {
	PrintAllDecimals bool
}

var humanizeEnvSetting util.Optional[string]

func humanizeDecimalStr(val string) string {
	if !humanizeEnvSetting.Present() {
		humanizeEnvSetting.Set(os.Getenv("HUMANIZE"))
	}
	if humanizeEnvSetting.MustGet() == "" {
		return val
	}
	negative := ""
	if strings.HasPrefix(val, "-") {
		negative, val = val[:1], val[1:]
	}
	before, after, found := strings.Cut(val, ".")
	suffix := ""
	if found {
		suffix = fmt.Sprintf(".%s", after)
	}
	i, err := strconv.ParseInt(before, 10, 64)
	if err != nil {
		panic(err)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s%d%s", negative, i, suffix)
}

func (h _PrintHelper) CurrStr(val decimal.Decimal) string {
	if h.PrintAllDecimals {
		return val.String()
	}
	return humanizeDecimalStr(val.StringFixed(2))
}

func (h _PrintHelper) DollarStr(val decimal.Decimal) string {
	return "$" + h.CurrStr(val)
}

func (h _PrintHelper) PlusMinusDollar(val decimal.Decimal, showPlus bool) string {
	if val.IsNegative() {
		return fmt.Sprintf("-$%s", h.CurrStr(val.Neg()))
	}
	plus := ""
	if showPlus {
		plus = "+"
	}
	return fmt.Sprintf("%s$%s", plus, h.CurrStr(val))
}

type RenderTable struct {
	Header []string
	Rows   [][]string
	Footer []string
	Notes  []string
	Errors []error
}

// RenderProceedsTableModel builds the console view of the proceeds
// report: one row per matched lot fragment, with profit/loss totals in
// the footer.
func RenderProceedsTableModel(
	records []*Proceeds, summary ProceedsSummary, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = append([]string{}, ProceedsCsvHeader...)

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	for _, rec := range records {
		table.Rows = append(table.Rows, []string{
			rec.Asset,
			rec.AcquiredDate.Format(csvDateFormat),
			ph.DollarStr(rec.CostBasis),
			rec.SaleDate.Format(csvDateFormat),
			ph.PlusMinusDollar(rec.Gain, false),
		})
	}

	table.Footer = []string{
		"", "", "",
		"Profit\nLoss\nNet",
		fmt.Sprintf("%s\n%s\n%s",
			ph.PlusMinusDollar(summary.TotalProfit, false),
			ph.PlusMinusDollar(summary.TotalLoss, false),
			ph.PlusMinusDollar(summary.Net(), true)),
	}
	return table
}

// RenderLotPools builds a table of the attribution state left in the
// pools after a run, one row per lot.
func RenderLotPools(pools map[string]*LotPool, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Asset", "Acquired", "Quantity", "Spot Price", "Attributed", "Headroom"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	assets := make([]string, 0, len(pools))
	for asset := range pools {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	for _, asset := range assets {
		for _, lot := range pools[asset].Lots() {
			table.Rows = append(table.Rows, []string{
				asset,
				lot.Tx.Timestamp.Format(csvDateFormat),
				lot.Tx.Quantity.String(),
				ph.DollarStr(lot.Tx.SpotPrice),
				lot.Attributed.String(),
				lot.Headroom().String(),
			})
		}
	}
	return table
}

// PrintRenderTable renders tbl to writer with an optional title line.
func PrintRenderTable(title string, tbl *RenderTable, writer io.Writer) {
	if title != "" {
		fmt.Fprintln(writer, title)
	}

	table := tablewriter.NewWriter(writer)
	table.SetHeader(tbl.Header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	for _, row := range tbl.Rows {
		table.Append(row)
	}
	if len(tbl.Footer) > 0 {
		table.SetFooter(tbl.Footer)
		table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)
	}
	table.Render()

	for _, note := range tbl.Notes {
		fmt.Fprintln(writer, note)
	}
}
