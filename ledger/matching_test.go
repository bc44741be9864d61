package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSaleSimpleFullMatch(t *testing.T) {
	m := &txMaker{}
	pool := NewLotPool("BTC", []*Tx{m.buy("2019-06-01", "BTC", "1.0", "10.00", "1.00")})
	sale := m.sell("2020-06-01", "BTC", "1.0", "10.00", "0")

	records, err := MatchSale(sale, pool, HIFO)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "BTC", rec.Asset)
	assert.Equal(t, mkDate("2019-06-01"), rec.AcquiredDate)
	assert.Equal(t, mkDate("2020-06-01"), rec.SaleDate)
	// Cost basis is 1.0 * (10.00 + 1.00/1.0) = 11.00; proceeds 10.00 - 11.00.
	assert.True(t, rec.CostBasis.Equal(dec("11.00")), "cost basis was %s", rec.CostBasis)
	assert.True(t, rec.Gain.Equal(dec("-1.00")), "gain was %s", rec.Gain)

	assert.False(t, pool.Lots()[0].Eligible())
}

func TestMatchSaleSpansMultipleLots(t *testing.T) {
	m := &txMaker{}
	cheap := m.buy("2019-01-01", "BTC", "1.0", "5.00", "0")
	expensive := m.buy("2019-02-01", "BTC", "1.0", "10.00", "0")
	pool := NewLotPool("BTC", []*Tx{cheap, expensive})

	// Sell 1.5 at 12/unit: subtotal 18.
	sale := m.sell("2020-06-01", "BTC", "1.5", "12.00", "0")

	records, err := MatchSale(sale, pool, HIFO)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// HIFO consumes the expensive lot first, fully.
	assert.Equal(t, mkDate("2019-02-01"), records[0].AcquiredDate)
	assert.True(t, records[0].CostBasis.Equal(dec("10.00")))
	assert.True(t, records[0].Gain.Equal(dec("2.00")), "gain was %s", records[0].Gain)

	// The remainder comes out of the cheap lot.
	assert.Equal(t, mkDate("2019-01-01"), records[1].AcquiredDate)
	assert.True(t, records[1].CostBasis.Equal(dec("2.50")))
	assert.True(t, records[1].Gain.Equal(dec("3.50")), "gain was %s", records[1].Gain)

	assert.True(t, pool.Lots()[0].Attributed.Equal(dec("0.5")))
	assert.True(t, pool.Lots()[1].Attributed.Equal(dec("1.0")))
}

func TestMatchSaleConservation(t *testing.T) {
	m := &txMaker{}
	pool := NewLotPool("ETH", []*Tx{
		m.buy("2019-01-01", "ETH", "0.3", "100", "0.10"),
		m.buy("2019-02-01", "ETH", "0.4", "150", "0.20"),
		m.buy("2019-03-01", "ETH", "0.5", "120", "0.30"),
	})
	sale := m.sell("2020-06-01", "ETH", "1.0", "200", "0")

	before := make(map[*Lot]decimal.Decimal)
	for _, lot := range pool.Lots() {
		before[lot] = lot.Attributed
	}

	records, err := MatchSale(sale, pool, FIFO)
	require.NoError(t, err)

	// The attributed deltas across all lots must sum to the sale quantity.
	var attributedTotal decimal.Decimal
	for _, lot := range pool.Lots() {
		assert.True(t, lot.Attributed.GreaterThanOrEqual(before[lot]))
		assert.True(t, lot.Attributed.LessThanOrEqual(lot.Tx.Quantity))
		attributedTotal = attributedTotal.Add(lot.Attributed.Sub(before[lot]))
	}
	assert.True(t, attributedTotal.Equal(sale.Quantity),
		"attributed %s, sold %s", attributedTotal, sale.Quantity)
	require.Len(t, records, 3)
}

func TestMatchSaleFeeApportionmentOnPartialFill(t *testing.T) {
	m := &txMaker{}
	pool := NewLotPool("BTC", []*Tx{m.buy("2019-01-01", "BTC", "2.0", "100", "4.00")})
	sale := m.sell("2020-06-01", "BTC", "0.5", "200", "0")

	records, err := MatchSale(sale, pool, HIFO)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// 0.5 * (100 + 4.00/2.0) = 51; a quarter of the lot carries a quarter
	// of the purchase fee.
	assert.True(t, records[0].CostBasis.Equal(dec("51")), "cost basis was %s", records[0].CostBasis)
}

func TestMatchSaleInsufficientCostBasis(t *testing.T) {
	m := &txMaker{}
	pool := NewLotPool("BTC", []*Tx{m.buy("2019-01-01", "BTC", "0.4", "100", "0")})
	sale := m.sell("2020-06-01", "BTC", "1.0", "200", "0")

	_, err := MatchSale(sale, pool, HIFO)
	require.Error(t, err)

	var icbErr *InsufficientCostBasisError
	require.True(t, errors.As(err, &icbErr))
	assert.Equal(t, "BTC", icbErr.Asset)
	assert.Equal(t, mkDate("2020-06-01"), icbErr.SaleDate)
	assert.True(t, icbErr.Uncovered.Equal(dec("0.6")), "uncovered was %s", icbErr.Uncovered)
}

func TestExhaustedLotIsNeverSelectedAgain(t *testing.T) {
	m := &txMaker{}
	expensive := m.buy("2019-01-01", "BTC", "1.0", "10.00", "0")
	cheap := m.buy("2019-02-01", "BTC", "1.0", "5.00", "0")
	pool := NewLotPool("BTC", []*Tx{expensive, cheap})

	// First sale exhausts the expensive lot under HIFO.
	_, err := MatchSale(m.sell("2020-03-01", "BTC", "1.0", "12.00", "0"), pool, HIFO)
	require.NoError(t, err)

	// The second sale must fall through to the cheap lot.
	records, err := MatchSale(m.sell("2020-04-01", "BTC", "1.0", "12.00", "0"), pool, HIFO)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, mkDate("2019-02-01"), records[0].AcquiredDate)
	assert.True(t, records[0].CostBasis.Equal(dec("5.00")))
}
