package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TxAction int

const (
	BUY TxAction = iota
	SELL
)

func (a TxAction) String() string {
	switch a {
	case BUY:
		return "Buy"
	case SELL:
		return "Sell"
	default:
		return "invalid-action"
	}
}

func ParseTxAction(s string) (TxAction, error) {
	switch s {
	case "Buy":
		return BUY, nil
	case "Sell":
		return SELL, nil
	default:
		return 0, fmt.Errorf("unrecognized transaction type %q", s)
	}
}

// Tx is one ledger entry. Fields other than Attributed are read-only
// after ingest.
type Tx struct {
	// Timestamp is normalized to UTC at parse time.
	Timestamp time.Time
	Action    TxAction
	Asset     string
	// Quantity is the number of asset units transacted. Always positive.
	Quantity decimal.Decimal
	// SpotPrice is the USD price of one unit at transaction time.
	SpotPrice decimal.Decimal
	// Subtotal is Quantity * SpotPrice, before fees.
	Subtotal decimal.Decimal
	// Total is the USD amount inclusive of fees.
	Total decimal.Decimal
	Fees  decimal.Decimal
	// Attributed is the quantity of a buy already matched to sales by a
	// previous run, as read from the ledger's checkpoint column. It seeds
	// the lot pool so reprocessing never double-counts consumed capacity.
	Attributed decimal.Decimal
	// ReadIndex is the global position of this entry in the input.
	// It is the deterministic tie-break for lot selection.
	ReadIndex uint32
}

func (tx *Tx) Validate() error {
	if tx.Asset == "" {
		return fmt.Errorf("missing asset symbol")
	}
	if !tx.Quantity.IsPositive() {
		return fmt.Errorf("quantity %s of %s is not positive", tx.Quantity, tx.Asset)
	}
	if tx.SpotPrice.IsNegative() {
		return fmt.Errorf("negative spot price %s for %s", tx.SpotPrice, tx.Asset)
	}
	if tx.Fees.IsNegative() {
		return fmt.Errorf("negative fees %s for %s", tx.Fees, tx.Asset)
	}
	if tx.Attributed.IsNegative() || tx.Attributed.GreaterThan(tx.Quantity) {
		return fmt.Errorf("attributed quantity %s for %s is outside [0, %s]",
			tx.Attributed, tx.Asset, tx.Quantity)
	}
	return nil
}

// InYear reports whether ts falls in tax year, i.e. within
// [Jan 1 year, Jan 1 year+1) in UTC.
func InYear(ts time.Time, year int) bool {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	utc := ts.UTC()
	return !utc.Before(start) && utc.Before(end)
}

// SplitTxsByAsset preserves the relative input order within each asset.
func SplitTxsByAsset(txs []*Tx) map[string][]*Tx {
	txsByAsset := make(map[string][]*Tx)
	for _, tx := range txs {
		assetTxs, ok := txsByAsset[tx.Asset]
		if !ok {
			assetTxs = make([]*Tx, 0, 8)
		}
		assetTxs = append(assetTxs, tx)
		txsByAsset[tx.Asset] = assetTxs
	}
	return txsByAsset
}

// ValidateAssets rejects transactions in assets outside the tracked set.
// An empty set accepts any symbol.
func ValidateAssets(txs []*Tx, tracked []string) error {
	if len(tracked) == 0 {
		return nil
	}
	trackedSet := make(map[string]bool, len(tracked))
	for _, a := range tracked {
		trackedSet[a] = true
	}
	for _, tx := range txs {
		if !trackedSet[tx.Asset] {
			return fmt.Errorf("asset %s is not in the tracked asset set", tx.Asset)
		}
	}
	return nil
}
