package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nickdnickd/taxmycrypto/log"
	"github.com/nickdnickd/taxmycrypto/util"
)

// Proceeds is one (sale, matched lot) pairing. Gain is the sale revenue
// apportioned to the matched quantity, minus its cost basis.
//
// Sale-side fees are deliberately not subtracted from Gain; the original
// formula leaves them as a potential separate deductible expense.
type Proceeds struct {
	Asset        string
	AcquiredDate time.Time
	CostBasis    decimal.Decimal
	SaleDate     time.Time
	Gain         decimal.Decimal
}

// InsufficientCostBasisError aborts a run when a sale cannot be fully
// covered by the eligible lots of its asset. It carries the unresolved
// sale for diagnostics; no partial report is valid once it occurs.
type InsufficientCostBasisError struct {
	Asset     string
	SaleDate  time.Time
	Uncovered decimal.Decimal
}

func (e *InsufficientCostBasisError) Error() string {
	return fmt.Sprintf(
		"insufficient cost basis: sale of %s on %v has %s units not covered by any buy lot",
		e.Asset, e.SaleDate.Format("2006-01-02"), e.Uncovered)
}

// MatchSale covers the sale's full quantity from the pool, consuming one
// lot per iteration in strategy order. Each iteration emits one Proceeds
// record and advances the consumed lot's attribution, so the mutation is
// visible to later sales of the same asset.
func MatchSale(sale *Tx, pool *LotPool, strategy Strategy) ([]*Proceeds, error) {
	util.Assertf(sale.Action == SELL,
		"MatchSale: tx on %v is not a Sell", sale.Timestamp)
	util.Assertf(sale.Asset == pool.Asset,
		"MatchSale: sale asset %s does not match pool asset %s", sale.Asset, pool.Asset)

	log.Debugf("taxable event: sold %s %s at %s USD subtotal",
		sale.Quantity, sale.Asset, sale.Subtotal)

	remaining := sale.Quantity
	var records []*Proceeds
	for remaining.IsPositive() {
		eligible, err := pool.Eligible()
		if err != nil {
			return nil, &InsufficientCostBasisError{
				Asset:     sale.Asset,
				SaleDate:  sale.Timestamp,
				Uncovered: remaining,
			}
		}
		lot := SelectLot(eligible, strategy)

		attributable := util.MinDecimal(remaining, lot.Headroom())
		costBasis := lot.CostBasis(attributable)
		revenue := sale.Subtotal.Mul(attributable).Div(sale.Quantity)

		records = append(records, &Proceeds{
			Asset:        sale.Asset,
			AcquiredDate: lot.Tx.Timestamp,
			CostBasis:    costBasis,
			SaleDate:     sale.Timestamp,
			Gain:         revenue.Sub(costBasis),
		})

		pool.ApplyAttribution(lot, attributable)
		remaining = remaining.Sub(attributable)
		log.Debugf("matched %s %s against lot acquired %v; %s left to cover",
			attributable, sale.Asset, lot.Tx.Timestamp, remaining)
	}
	return records, nil
}
