package util

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

func MinValue[T constraints.Ordered](val0 T, vals ...T) T {
	min := val0
	for _, v := range vals {
		if v < min {
			min = v
		}
	}
	return min
}

func MinDecimal(val0 decimal.Decimal, vals ...decimal.Decimal) decimal.Decimal {
	min := val0
	for _, v := range vals {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}

func Tern[T any](cond bool, ifTrue T, ifFalse T) T {
	if cond {
		return ifTrue
	}
	return ifFalse
}
