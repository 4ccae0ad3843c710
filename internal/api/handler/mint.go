package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/service"
)

// MintHandler handles HTTP requests for simulated minting.
type MintHandler struct {
	base
	service service.MintService
}

// NewMintHandler creates a new MintHandler.
func NewMintHandler(svc service.MintService, logger *slog.Logger) *MintHandler {
	return &MintHandler{
		base:    base{logger: logger},
		service: svc,
	}
}

// MintRequest represents the request body for a mint.
type MintRequest struct {
	WalletAddress string          `json:"wallet_address"`
	Ticker        string          `json:"ticker"`
	MintType      domain.MintType `json:"mint_type"`
	TokenName     *string         `json:"token_name"`
	TokenSymbol   *string         `json:"token_symbol"`
	TotalSupply   *int64          `json:"total_supply"`
	LossID        *int64          `json:"loss_id"`
}

// MintResponse describes a completed simulated mint.
type MintResponse struct {
	Message         string              `json:"message"`
	TokenID         int64               `json:"token_id"`
	MintType        domain.MintType     `json:"mint_type"`
	WalletAddress   string              `json:"wallet_address"`
	Ticker          string              `json:"ticker"`
	ContractAddress string              `json:"contract_address"`
	TransactionHash string              `json:"transaction_hash"`
	ChainID         int64               `json:"chain_id"`
	LossID          *int64              `json:"loss_id,omitempty"`
	TokenName       *string             `json:"token_name,omitempty"`
	TokenSymbol     *string             `json:"token_symbol,omitempty"`
	TotalSupply     *int64              `json:"total_supply,omitempty"`
	Metadata        *domain.NFTMetadata `json:"metadata,omitempty"`
	MintedAt        time.Time           `json:"minted_at"`
}

// Mint simulates minting a loss NFT or meme token for a position.
// POST /mint
func (h *MintHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	walletAddress, err := parseWalletAddress(req.WalletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.Mint(r.Context(), service.MintRequest{
		WalletAddress: walletAddress,
		Ticker:        req.Ticker,
		MintType:      req.MintType,
		TokenName:     req.TokenName,
		TokenSymbol:   req.TokenSymbol,
		TotalSupply:   req.TotalSupply,
		LossID:        req.LossID,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	mint := result.Mint
	h.respondWithJSON(w, http.StatusCreated, MintResponse{
		Message:         "Mint simulated",
		TokenID:         mint.ID,
		MintType:        mint.MintType,
		WalletAddress:   mint.WalletAddress,
		Ticker:          mint.Ticker,
		ContractAddress: mint.ContractAddress,
		TransactionHash: mint.TransactionHash,
		ChainID:         result.ChainID,
		LossID:          mint.LossID,
		TokenName:       mint.TokenName,
		TokenSymbol:     mint.TokenSymbol,
		TotalSupply:     mint.TotalSupply,
		Metadata:        result.Metadata,
		MintedAt:        mint.CreatedAt,
	})
}

// ListMints returns the mints of a wallet.
// GET /wallets/{walletAddress}/mints
func (h *MintHandler) ListMints(w http.ResponseWriter, r *http.Request) {
	walletAddress, err := parseWalletAddress(chi.URLParam(r, "walletAddress"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	mints, err := h.service.ListMints(r.Context(), walletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if mints == nil {
		mints = []domain.Mint{}
	}
	h.respondWithJSON(w, http.StatusOK, mints)
}
