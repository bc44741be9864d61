package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nickdnickd/taxmycrypto/util"
)

// ErrNoEligibleLots is returned by LotPool.Eligible when every lot in the
// pool is fully attributed (or the pool is empty). It signals that the
// ledger holds insufficient cost basis to cover a sale.
var ErrNoEligibleLots = errors.New("no buy lots with unattributed quantity remain")

// Lot is one buy transaction treated as a divisible pool of cost-basis
// capacity. Attributed is the only mutable state in the engine; it starts
// at the checkpoint value carried by the ledger and grows as sales
// consume the lot.
type Lot struct {
	Tx         *Tx
	Attributed decimal.Decimal
}

// Headroom is the quantity still available to match against sales.
func (l *Lot) Headroom() decimal.Decimal {
	return l.Tx.Quantity.Sub(l.Attributed)
}

func (l *Lot) Eligible() bool {
	return l.Attributed.LessThan(l.Tx.Quantity)
}

// CostBasis returns the USD cost attributed to quantity units of this
// lot. Fees are apportioned pro-rata over the lot's original quantity,
// so a partial consumption still carries a fair share of the purchase fee.
func (l *Lot) CostBasis(quantity decimal.Decimal) decimal.Decimal {
	perUnitFee := l.Tx.Fees.Div(l.Tx.Quantity)
	return quantity.Mul(l.Tx.SpotPrice.Add(perUnitFee))
}

// LotPool holds every buy lot for one asset. The aggregator owns the
// pool exclusively for the duration of a run; attribution applied for one
// sale is visible to all later selections.
type LotPool struct {
	Asset string
	lots  []*Lot
}

func NewLotPool(asset string, buys []*Tx) *LotPool {
	lots := make([]*Lot, 0, len(buys))
	for _, tx := range buys {
		util.Assertf(tx.Action == BUY,
			"NewLotPool: %s tx on %v is not a Buy", asset, tx.Timestamp)
		lots = append(lots, &Lot{Tx: tx, Attributed: tx.Attributed})
	}
	return &LotPool{Asset: asset, lots: lots}
}

func (p *LotPool) Lots() []*Lot {
	return p.lots
}

// Eligible returns the lots with remaining headroom, in input order.
func (p *LotPool) Eligible() ([]*Lot, error) {
	var eligible []*Lot
	for _, lot := range p.lots {
		if lot.Eligible() {
			eligible = append(eligible, lot)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleLots
	}
	return eligible, nil
}

// ApplyAttribution consumes delta units of lot. The caller computes delta
// against the lot's headroom, so exceeding the lot quantity is an
// internal invariant violation rather than a data error.
func (p *LotPool) ApplyAttribution(lot *Lot, delta decimal.Decimal) {
	util.Assertf(delta.IsPositive(),
		"ApplyAttribution: delta %s is not positive", delta)
	newAttributed := lot.Attributed.Add(delta)
	util.Assertf(newAttributed.LessThanOrEqual(lot.Tx.Quantity),
		"ApplyAttribution: %s lot acquired %v would be over-attributed (%s of %s)",
		p.Asset, lot.Tx.Timestamp, newAttributed, lot.Tx.Quantity)
	lot.Attributed = newAttributed
}
