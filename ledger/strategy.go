package ledger

import (
	"fmt"
	"strings"
)

// Strategy determines which eligible lot a sale consumes next.
type Strategy int

const (
	// HIFO consumes the highest-cost lots first, minimizing reported gain.
	HIFO Strategy = iota
	// LIFO consumes the most recently acquired lots first.
	LIFO
	// FIFO consumes the oldest lots first.
	FIFO
)

func (s Strategy) String() string {
	switch s {
	case HIFO:
		return "hifo"
	case LIFO:
		return "lifo"
	case FIFO:
		return "fifo"
	default:
		return "invalid-strategy"
	}
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hifo":
		return HIFO, nil
	case "lifo":
		return LIFO, nil
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("unrecognized strategy %q (want fifo, lifo or hifo)", s)
	}
}

// takesPrecedence reports whether lot a is consumed before lot b under s.
// Ties fall back to input order, so identical inputs always produce
// identical output.
func (s Strategy) takesPrecedence(a, b *Lot) bool {
	switch s {
	case HIFO:
		if !a.Tx.SpotPrice.Equal(b.Tx.SpotPrice) {
			return a.Tx.SpotPrice.GreaterThan(b.Tx.SpotPrice)
		}
	case LIFO:
		if !a.Tx.Timestamp.Equal(b.Tx.Timestamp) {
			return a.Tx.Timestamp.After(b.Tx.Timestamp)
		}
	case FIFO:
		if !a.Tx.Timestamp.Equal(b.Tx.Timestamp) {
			return a.Tx.Timestamp.Before(b.Tx.Timestamp)
		}
	}
	return a.Tx.ReadIndex < b.Tx.ReadIndex
}

// SelectLot returns the next lot to consume out of the eligible set.
// The caller must pass a non-empty slice.
func SelectLot(eligible []*Lot, strategy Strategy) *Lot {
	selected := eligible[0]
	for _, lot := range eligible[1:] {
		if strategy.takesPrecedence(lot, selected) {
			selected = lot
		}
	}
	return selected
}
