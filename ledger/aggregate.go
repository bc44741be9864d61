package ledger

import (
	"github.com/shopspring/decimal"
)

// ProceedsSummary totals the proceeds records of one run. TotalLoss holds
// the (negative) sum of losing records.
type ProceedsSummary struct {
	TotalProfit decimal.Decimal
	TotalLoss   decimal.Decimal
}

func (s ProceedsSummary) Net() decimal.Decimal {
	return s.TotalProfit.Add(s.TotalLoss)
}

func SummarizeProceeds(records []*Proceeds) ProceedsSummary {
	var summary ProceedsSummary
	for _, rec := range records {
		if rec.Gain.IsNegative() {
			summary.TotalLoss = summary.TotalLoss.Add(rec.Gain)
		} else {
			summary.TotalProfit = summary.TotalProfit.Add(rec.Gain)
		}
	}
	return summary
}

// AggregateResult is the output of one full run. Pools expose the mutated
// attribution state so the caller can write the updated ledger back to
// storage for later tax years.
type AggregateResult struct {
	Records []*Proceeds
	Summary ProceedsSummary
	Pools   map[string]*LotPool
}

// CalcProceeds runs the lot matcher over every sale of the tax year.
//
// Buys from any year form the cost-basis pools; sales are filtered to the
// tax year and processed in input order, never re-sorted, since
// attribution updates are order-dependent. The run is all-or-nothing: the
// first unmatchable sale aborts it.
func CalcProceeds(txs []*Tx, year int, strategy Strategy) (*AggregateResult, error) {
	var buys, sales []*Tx
	for _, tx := range txs {
		switch tx.Action {
		case BUY:
			buys = append(buys, tx)
		case SELL:
			if InYear(tx.Timestamp, year) {
				sales = append(sales, tx)
			}
		}
	}

	pools := make(map[string]*LotPool)
	for asset, assetBuys := range SplitTxsByAsset(buys) {
		pools[asset] = NewLotPool(asset, assetBuys)
	}

	var records []*Proceeds
	for _, sale := range sales {
		pool, ok := pools[sale.Asset]
		if !ok {
			pool = NewLotPool(sale.Asset, nil)
			pools[sale.Asset] = pool
		}
		saleRecords, err := MatchSale(sale, pool, strategy)
		if err != nil {
			return nil, err
		}
		records = append(records, saleRecords...)
	}

	return &AggregateResult{
		Records: records,
		Summary: SummarizeProceeds(records),
		Pools:   pools,
	}, nil
}
