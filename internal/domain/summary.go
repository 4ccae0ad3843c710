package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const topTickerCount = 3

// TickerLoss is the loss of a wallet on a single ticker.
type TickerLoss struct {
	Ticker     string          `json:"ticker"`
	LossAmount decimal.Decimal `json:"loss_amount"`
	LossRate   decimal.Decimal `json:"loss_rate"`
}

// WalletSummary aggregates all positions of one wallet.
type WalletSummary struct {
	WalletAddress   string          `json:"wallet_address"`
	PositionCount   int             `json:"position_count"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalLossAmount decimal.Decimal `json:"total_loss_amount"`
	LossRate        decimal.Decimal `json:"loss_rate"`
	TopTickers      []TickerLoss    `json:"top_tickers"`
}

// SummarizePositions aggregates positions of walletAddress. Top tickers are
// the positions with the largest loss amounts, ties broken by ticker.
func SummarizePositions(walletAddress string, positions []WalletPosition) WalletSummary {
	summary := WalletSummary{
		WalletAddress:   walletAddress,
		PositionCount:   len(positions),
		TotalInvested:   decimal.Zero,
		TotalLossAmount: decimal.Zero,
		TopTickers:      []TickerLoss{},
	}

	losing := make([]TickerLoss, 0, len(positions))
	for _, p := range positions {
		summary.TotalInvested = summary.TotalInvested.Add(p.TotalBuyAmount)
		summary.TotalLossAmount = summary.TotalLossAmount.Add(p.LossAmount)
		if p.LossAmount.IsPositive() {
			losing = append(losing, TickerLoss{Ticker: p.Ticker, LossAmount: p.LossAmount, LossRate: p.LossRate})
		}
	}
	summary.LossRate = LossRate(summary.TotalLossAmount, summary.TotalInvested)

	sort.Slice(losing, func(i, j int) bool {
		if c := losing[i].LossAmount.Cmp(losing[j].LossAmount); c != 0 {
			return c > 0
		}
		return losing[i].Ticker < losing[j].Ticker
	})
	if len(losing) > topTickerCount {
		losing = losing[:topTickerCount]
	}
	summary.TopTickers = append(summary.TopTickers, losing...)
	return summary
}

// LeaderboardEntry is one ranked wallet on the loss leaderboard.
type LeaderboardEntry struct {
	Rank            int             `db:"-" json:"rank"`
	WalletAddress   string          `db:"wallet_address" json:"wallet_address"`
	TotalLossAmount decimal.Decimal `db:"total_loss_amount" json:"total_loss_amount"`
	TotalInvested   decimal.Decimal `db:"total_invested" json:"total_invested"`
	LossRate        decimal.Decimal `db:"-" json:"loss_rate"`
	TopTickers      []string        `db:"-" json:"top_tickers"`
	LastUpdated     time.Time       `db:"last_updated" json:"last_updated"`
}

// RankLeaderboard assigns ranks in slice order and derives loss rates.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].LossRate = LossRate(entries[i].TotalLossAmount, entries[i].TotalInvested)
		if entries[i].TopTickers == nil {
			entries[i].TopTickers = []string{}
		}
	}
	return entries
}
