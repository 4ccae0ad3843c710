package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crypto-graves/internal/util"
)

var hundred = decimal.NewFromInt(100)

const (
	lossRatePlaces   = 4
	lossAmountPlaces = 8
	holdingsPlaces   = 32
)

// PositionInputs are the raw trade figures submitted for one (wallet, ticker).
type PositionInputs struct {
	AvgBuyPrice     decimal.Decimal `json:"avg_buy_price"`
	AvgSellPrice    decimal.Decimal `json:"avg_sell_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	TotalBuyAmount  decimal.Decimal `json:"total_buy_amount"`
	TotalSellAmount decimal.Decimal `json:"total_sell_amount"`
}

// PositionResult holds the derived figures of a position.
type PositionResult struct {
	LossRate   decimal.Decimal `json:"loss_rate"`   // Percentage in [0, 100]
	LossAmount decimal.Decimal `json:"loss_amount"` // Currency units
}

// Validate rejects negative inputs and amounts too large to store.
func (in PositionInputs) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"avg_buy_price", in.AvgBuyPrice},
		{"avg_sell_price", in.AvgSellPrice},
		{"current_price", in.CurrentPrice},
		{"total_buy_amount", in.TotalBuyAmount},
		{"total_sell_amount", in.TotalSellAmount},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return util.ErrNegativeValue
		}
	}
	for _, f := range fields {
		if err := CheckAmount(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// RemainingValue is the market value of the units still held: units bought
// minus units sold, never below zero, times the current price. A zero average
// price contributes no units. Prices are multiplied before the single division
// so high unit prices do not amplify division rounding.
func (in PositionInputs) RemainingValue() decimal.Decimal {
	buyPrice, sellPrice := in.AvgBuyPrice, in.AvgSellPrice
	switch {
	case !buyPrice.IsPositive():
		return decimal.Zero
	case !sellPrice.IsPositive():
		return in.TotalBuyAmount.Mul(in.CurrentPrice).DivRound(buyPrice, holdingsPlaces)
	}
	// bought - sold = (total_buy*avg_sell - total_sell*avg_buy) / (avg_buy*avg_sell)
	held := in.TotalBuyAmount.Mul(sellPrice).Sub(in.TotalSellAmount.Mul(buyPrice))
	if !held.IsPositive() {
		return decimal.Zero
	}
	return held.Mul(in.CurrentPrice).DivRound(buyPrice.Mul(sellPrice), holdingsPlaces)
}

// EvaluatePosition computes the unrealized loss of a position:
//
//	loss_amount = total_buy - (total_sell + remaining_holdings*current_price), floored at 0
//	loss_rate   = loss_amount / total_buy * 100, 0 when total_buy is 0
//
// It is a pure function of its inputs.
func EvaluatePosition(in PositionInputs) (PositionResult, error) {
	if err := in.Validate(); err != nil {
		return PositionResult{}, err
	}
	zero := PositionResult{LossRate: decimal.Zero, LossAmount: decimal.Zero}
	if !in.TotalBuyAmount.IsPositive() {
		return zero, nil
	}

	marketValue := in.TotalSellAmount.Add(in.RemainingValue())
	loss := in.TotalBuyAmount.Sub(marketValue).Round(lossAmountPlaces)
	if !loss.IsPositive() {
		return zero, nil
	}

	return PositionResult{
		LossRate:   LossRate(loss, in.TotalBuyAmount),
		LossAmount: loss,
	}, nil
}

// LossRate expresses loss as a percentage of invested, clamped to [0, 100].
func LossRate(loss, invested decimal.Decimal) decimal.Decimal {
	if !invested.IsPositive() || !loss.IsPositive() {
		return decimal.Zero
	}
	rate := loss.Div(invested).Mul(hundred)
	return decimal.Min(rate, hundred).Round(lossRatePlaces)
}

// WalletPosition is the stored trade summary of one ticker held by a wallet.
type WalletPosition struct {
	ID              int64           `db:"id" json:"id"`
	UUID            uuid.UUID       `db:"uuid" json:"uuid"`
	UserID          int64           `db:"user_id" json:"user_id"`
	UserUUID        uuid.UUID       `db:"user_uuid" json:"user_uuid"`
	WalletAddress   string          `db:"wallet_address" json:"wallet_address"`
	Ticker          string          `db:"ticker" json:"ticker"`
	AvgBuyPrice     decimal.Decimal `db:"avg_buy_price" json:"avg_buy_price"`
	AvgSellPrice    decimal.Decimal `db:"avg_sell_price" json:"avg_sell_price"`
	CurrentPrice    decimal.Decimal `db:"current_price" json:"current_price"`
	TotalBuyAmount  decimal.Decimal `db:"total_buy_amount" json:"total_buy_amount"`
	TotalSellAmount decimal.Decimal `db:"total_sell_amount" json:"total_sell_amount"`
	LossRate        decimal.Decimal `db:"loss_rate" json:"loss_rate"`
	LossAmount      decimal.Decimal `db:"loss_amount" json:"loss_amount"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWalletPosition evaluates in and builds the position owned by user.
func NewWalletPosition(user *User, ticker string, in PositionInputs) (*WalletPosition, error) {
	result, err := EvaluatePosition(in)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &WalletPosition{
		UUID:            uuid.New(),
		UserID:          user.ID,
		UserUUID:        user.UUID,
		WalletAddress:   user.WalletAddress,
		Ticker:          NormalizeTicker(ticker),
		AvgBuyPrice:     in.AvgBuyPrice,
		AvgSellPrice:    in.AvgSellPrice,
		CurrentPrice:    in.CurrentPrice,
		TotalBuyAmount:  in.TotalBuyAmount,
		TotalSellAmount: in.TotalSellAmount,
		LossRate:        result.LossRate,
		LossAmount:      result.LossAmount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NormalizeTicker trims and upper-cases an asset ticker.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
