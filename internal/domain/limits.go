package domain

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"crypto-graves/internal/util"
)

// Column limits of the stored records.
const (
	MaxTickerLength      = 20
	MaxAssetNameLength   = 100
	MaxTokenNameLength   = 100
	MaxTokenSymbolLength = 20
)

// maxAmount is the smallest magnitude NUMERIC(30, 8) cannot hold.
var maxAmount = decimal.New(1, 22)

// CheckLength rejects values longer than limit characters.
func CheckLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%s must be at most %d characters: %w", field, limit, util.ErrInvalidInput)
	}
	return nil
}

// CheckAmount rejects amounts with more than 22 integer digits.
func CheckAmount(field string, v decimal.Decimal) error {
	if v.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%s is too large: %w", field, util.ErrInvalidInput)
	}
	return nil
}
