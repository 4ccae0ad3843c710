package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-graves/internal/util"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func inputs(avgBuy, avgSell, current, totalBuy, totalSell string) PositionInputs {
	return PositionInputs{
		AvgBuyPrice:     d(avgBuy),
		AvgSellPrice:    d(avgSell),
		CurrentPrice:    d(current),
		TotalBuyAmount:  d(totalBuy),
		TotalSellAmount: d(totalSell),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestEvaluatePosition(t *testing.T) {
	t.Run("HalfValueLost", func(t *testing.T) {
		res, err := EvaluatePosition(inputs("100", "0", "50", "1000", "0"))
		require.NoError(t, err)
		assertDecimal(t, "500", res.LossAmount)
		assertDecimal(t, "50", res.LossRate)
	})

	t.Run("PartiallySold", func(t *testing.T) {
		// 20 units bought for 2000, 10 sold for 500, 10 left worth 30 each.
		res, err := EvaluatePosition(inputs("100", "50", "30", "2000", "500"))
		require.NoError(t, err)
		assertDecimal(t, "1200", res.LossAmount)
		assertDecimal(t, "60", res.LossRate)
	})

	t.Run("TotalLoss", func(t *testing.T) {
		res, err := EvaluatePosition(inputs("10", "0", "0", "1000", "0"))
		require.NoError(t, err)
		assertDecimal(t, "1000", res.LossAmount)
		assertDecimal(t, "100", res.LossRate)
	})

	t.Run("InProfit", func(t *testing.T) {
		res, err := EvaluatePosition(inputs("100", "0", "150", "1000", "0"))
		require.NoError(t, err)
		assertDecimal(t, "0", res.LossAmount)
		assertDecimal(t, "0", res.LossRate)
	})

	t.Run("BreakEven", func(t *testing.T) {
		res, err := EvaluatePosition(inputs("100", "0", "100", "1000", "0"))
		require.NoError(t, err)
		assertDecimal(t, "0", res.LossAmount)
		assertDecimal(t, "0", res.LossRate)
	})

	t.Run("OversoldHoldingsFloorAtZero", func(t *testing.T) {
		// Sold more units than bought: remaining holdings are zero, not negative.
		res, err := EvaluatePosition(inputs("100", "10", "1000", "1000", "200"))
		require.NoError(t, err)
		assertDecimal(t, "800", res.LossAmount)
		assertDecimal(t, "80", res.LossRate)
	})

	t.Run("UnknownBuyPriceCountsNoHoldings", func(t *testing.T) {
		res, err := EvaluatePosition(inputs("0", "0", "50", "1000", "250"))
		require.NoError(t, err)
		assertDecimal(t, "750", res.LossAmount)
		assertDecimal(t, "75", res.LossRate)
	})

	t.Run("RoundsLossRate", func(t *testing.T) {
		// 3 units at 100, worth 66.67 each now.
		res, err := EvaluatePosition(inputs("100", "0", "66.67", "300", "0"))
		require.NoError(t, err)
		assertDecimal(t, "99.99", res.LossAmount)
		assertDecimal(t, "33.33", res.LossRate)
	})
}

func TestRemainingValue(t *testing.T) {
	assertDecimal(t, "1000", inputs("300000000", "0", "300000000", "1000", "0").RemainingValue())
	// 20 bought, 10 sold, 10 left at 30.
	assertDecimal(t, "300", inputs("100", "50", "30", "2000", "500").RemainingValue())
	assertDecimal(t, "0", inputs("100", "10", "1000", "1000", "200").RemainingValue())
	assertDecimal(t, "0", inputs("0", "10", "50", "1000", "200").RemainingValue())
}

func TestEvaluatePositionZeroInvestment(t *testing.T) {
	cases := []PositionInputs{
		inputs("0", "0", "0", "0", "0"),
		inputs("100", "0", "50", "0", "0"),
		inputs("0", "10", "50", "0", "500"),
		inputs("5", "0", "0", "0", "1000"),
	}
	for _, in := range cases {
		res, err := EvaluatePosition(in)
		require.NoError(t, err)
		assert.True(t, res.LossAmount.IsZero())
		assert.True(t, res.LossRate.IsZero())
	}
}

func TestEvaluatePositionCoveredByMarketValue(t *testing.T) {
	cases := []PositionInputs{
		inputs("10", "20", "5", "100", "200"),
		inputs("10", "0", "10", "100", "0"),
		inputs("10", "12", "11", "100", "60"),
		inputs("1", "0", "0", "100", "100"),
		// High unit prices must not turn division rounding into a loss.
		inputs("300000000", "0", "300000000", "1000", "0"),
		inputs("70000000", "90000000", "70000000", "1000", "300"),
		inputs("3", "0", "3", "1", "0"),
	}
	for _, in := range cases {
		marketValue := in.TotalSellAmount.Add(in.RemainingValue())
		require.True(t, marketValue.Round(8).GreaterThanOrEqual(in.TotalBuyAmount), "market value %s", marketValue)

		res, err := EvaluatePosition(in)
		require.NoError(t, err)
		assert.True(t, res.LossAmount.IsZero())
		assert.True(t, res.LossRate.IsZero())
	}
}

func TestEvaluatePositionRejectsUnstorableAmounts(t *testing.T) {
	_, err := EvaluatePosition(inputs("1", "0", "1", "10000000000000000000000", "0"))
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	assert.NotErrorIs(t, err, util.ErrNegativeValue)
}

func TestEvaluatePositionRejectsNegativeInputs(t *testing.T) {
	cases := map[string]PositionInputs{
		"AvgBuyPrice":     inputs("-1", "0", "0", "0", "0"),
		"AvgSellPrice":    inputs("0", "-1", "0", "0", "0"),
		"CurrentPrice":    inputs("0", "0", "-0.01", "0", "0"),
		"TotalBuyAmount":  inputs("0", "0", "0", "-100", "0"),
		"TotalSellAmount": inputs("0", "0", "0", "0", "-5"),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := EvaluatePosition(in)
			assert.ErrorIs(t, err, util.ErrNegativeValue)
		})
	}
}

func TestEvaluatePositionIsDeterministic(t *testing.T) {
	in := inputs("3", "7", "1.5", "1234.5678", "99.1")
	first, err := EvaluatePosition(in)
	require.NoError(t, err)
	second, err := EvaluatePosition(in)
	require.NoError(t, err)

	assert.True(t, first.LossAmount.Equal(second.LossAmount))
	assert.True(t, first.LossRate.Equal(second.LossRate))
}

func TestLossRateBounds(t *testing.T) {
	assertDecimal(t, "0", LossRate(d("10"), d("0")))
	assertDecimal(t, "0", LossRate(d("-10"), d("100")))
	assertDecimal(t, "100", LossRate(d("150"), d("100")))
	assertDecimal(t, "12.5", LossRate(d("1"), d("8")))
}

func TestNewWalletPosition(t *testing.T) {
	user := NewUser("0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6")
	user.ID = 7

	pos, err := NewWalletPosition(user, " eth ", inputs("100", "0", "50", "1000", "0"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos.UserID)
	assert.Equal(t, user.UUID, pos.UserUUID)
	assert.Equal(t, user.WalletAddress, pos.WalletAddress)
	assert.Equal(t, "ETH", pos.Ticker)
	assertDecimal(t, "500", pos.LossAmount)
	assertDecimal(t, "50", pos.LossRate)
	assertDecimal(t, "100", pos.AvgBuyPrice)
	assertDecimal(t, "1000", pos.TotalBuyAmount)

	_, err = NewWalletPosition(user, "ETH", inputs("100", "0", "-50", "1000", "0"))
	assert.ErrorIs(t, err, util.ErrNegativeValue)
}
