package util

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMathMin(t *testing.T) {
	require.Equal(t, MinValue(50, 40), 40)
	require.Equal(t, MinValue(40, 50, 60), 40)
	require.Equal(t, MinValue(60, 50, 40), 40)
}

func TestMinDecimal(t *testing.T) {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	require.True(t, MinDecimal(d("0.5"), d("0.4")).Equal(d("0.4")))
	require.True(t, MinDecimal(d("0.4"), d("0.5"), d("0.6")).Equal(d("0.4")))
	require.True(t, MinDecimal(d("-1"), d("0")).Equal(d("-1")))
}
