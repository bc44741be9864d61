package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mkDate(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s+"T00:00:00Z")
	if err != nil {
		panic(err)
	}
	return ts
}

type txMaker struct {
	readIndex uint32
}

func (m *txMaker) tx(action TxAction, date, asset, qty, spot, fees string) *Tx {
	quantity := dec(qty)
	spotPrice := dec(spot)
	subtotal := quantity.Mul(spotPrice)
	tx := &Tx{
		Timestamp: mkDate(date),
		Action:    action,
		Asset:     asset,
		Quantity:  quantity,
		SpotPrice: spotPrice,
		Subtotal:  subtotal,
		Total:     subtotal.Add(dec(fees)),
		Fees:      dec(fees),
		ReadIndex: m.readIndex,
	}
	m.readIndex++
	return tx
}

func (m *txMaker) buy(date, asset, qty, spot, fees string) *Tx {
	return m.tx(BUY, date, asset, qty, spot, fees)
}

func (m *txMaker) sell(date, asset, qty, spot, fees string) *Tx {
	return m.tx(SELL, date, asset, qty, spot, fees)
}
