package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"crypto-graves/internal/api/types"
	"crypto-graves/internal/domain"
	"crypto-graves/internal/service"
)

// PositionHandler handles HTTP requests for wallet positions, summaries and the leaderboard.
type PositionHandler struct {
	base
	service service.PositionService
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(svc service.PositionService, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		base:    base{logger: logger},
		service: svc,
	}
}

// SubmitPositionRequest represents the request body for a position submission.
// Numbers may be sent as JSON numbers or strings.
type SubmitPositionRequest struct {
	WalletAddress   string          `json:"wallet_address"`
	Ticker          string          `json:"ticker"`
	AvgBuyPrice     decimal.Decimal `json:"avg_buy_price"`
	AvgSellPrice    decimal.Decimal `json:"avg_sell_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	TotalBuyAmount  decimal.Decimal `json:"total_buy_amount"`
	TotalSellAmount decimal.Decimal `json:"total_sell_amount"`
}

// SubmitPosition evaluates and stores the position of a wallet for a ticker.
// POST /wallet-info
func (h *PositionHandler) SubmitPosition(w http.ResponseWriter, r *http.Request) {
	var req SubmitPositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	walletAddress, err := parseWalletAddress(req.WalletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	position, created, err := h.service.SubmitPosition(r.Context(), walletAddress, req.Ticker, domain.PositionInputs{
		AvgBuyPrice:     req.AvgBuyPrice,
		AvgSellPrice:    req.AvgSellPrice,
		CurrentPrice:    req.CurrentPrice,
		TotalBuyAmount:  req.TotalBuyAmount,
		TotalSellAmount: req.TotalSellAmount,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if created {
		h.respondWithJSON(w, http.StatusCreated, types.DataResponse[*domain.WalletPosition]{Message: "Position created", Data: position})
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.DataResponse[*domain.WalletPosition]{Message: "Position updated", Data: position})
}

// ListPositions returns a page of positions, optionally for one wallet.
// GET /wallet-info?wallet_address=0x...&limit=50&offset=0
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	var walletAddress string
	if raw := r.URL.Query().Get("wallet_address"); raw != "" {
		var err error
		if walletAddress, err = parseWalletAddress(raw); err != nil {
			h.respondWithError(w, err)
			return
		}
	}
	limit, offset := parsePage(r)
	limit, offset = service.ClampPage(limit, offset, service.DefaultPositionLimit, service.MaxPositionLimit)

	positions, err := h.service.ListPositions(r.Context(), walletAddress, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewPaginatedResponse(positions, limit, offset))
}

// GetPosition returns the position of a wallet for a ticker.
// GET /wallet-info/{walletAddress}/{ticker}
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	walletAddress, err := parseWalletAddress(chi.URLParam(r, "walletAddress"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	position, err := h.service.GetPosition(r.Context(), walletAddress, chi.URLParam(r, "ticker"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, position)
}

// GetWalletSummary returns the aggregated losses of a wallet.
// GET /wallets/{walletAddress}/summary
func (h *PositionHandler) GetWalletSummary(w http.ResponseWriter, r *http.Request) {
	walletAddress, err := parseWalletAddress(chi.URLParam(r, "walletAddress"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	summary, err := h.service.GetWalletSummary(r.Context(), walletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, summary)
}

// GetLeaderboard ranks wallets by total loss.
// GET /leaderboard?limit=10
func (h *PositionHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}
	limit, _ = service.ClampPage(limit, 0, service.DefaultLeaderboardLimit, service.MaxLeaderboardLimit)

	entries, err := h.service.GetLeaderboard(r.Context(), limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewPaginatedResponse(entries, limit, 0))
}
