package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// MintType is the kind of asset minted for a position.
type MintType string

const (
	MintTypeNFT   MintType = "nft"
	MintTypeToken MintType = "token"
)

// IsValid reports whether t is a known mint type.
func (t MintType) IsValid() bool {
	return t == MintTypeNFT || t == MintTypeToken
}

// Mint records one simulated mint. Its ID doubles as the token id.
type Mint struct {
	ID              int64          `db:"id" json:"token_id"`
	UUID            uuid.UUID      `db:"uuid" json:"uuid"`
	UserID          int64          `db:"user_id" json:"user_id"`
	WalletAddress   string         `db:"wallet_address" json:"wallet_address"`
	Ticker          string         `db:"ticker" json:"ticker"`
	MintType        MintType       `db:"mint_type" json:"mint_type"`
	LossID          *int64         `db:"loss_id" json:"loss_id"`
	TokenName       *string        `db:"token_name" json:"token_name,omitempty"`
	TokenSymbol     *string        `db:"token_symbol" json:"token_symbol,omitempty"`
	TotalSupply     *int64         `db:"total_supply" json:"total_supply,omitempty"`
	ContractAddress string         `db:"contract_address" json:"contract_address"`
	TransactionHash string         `db:"transaction_hash" json:"transaction_hash"`
	Metadata        types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// NFTAttribute is one trait of the NFT metadata document.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NFTMetadata follows the ERC-721 metadata JSON layout.
type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  []NFTAttribute `json:"attributes"`
}

// BuildNFTMetadata describes the loss NFT of a position.
func BuildNFTMetadata(p *WalletPosition, imageBaseURL string, mintedAt time.Time) NFTMetadata {
	rate := p.LossRate.String() + "%"
	return NFTMetadata{
		Name:        fmt.Sprintf("Crypto Grave - %s", p.Ticker),
		Description: fmt.Sprintf("Loss NFT for %s - %s loss on %s", p.WalletAddress, rate, p.Ticker),
		Image:       fmt.Sprintf("%s/%s_%s.png", strings.TrimRight(imageBaseURL, "/"), p.WalletAddress, p.Ticker),
		Attributes: []NFTAttribute{
			{TraitType: "Wallet Address", Value: p.WalletAddress},
			{TraitType: "Loss Rate", Value: rate},
			{TraitType: "Loss Amount", Value: p.LossAmount.String() + " MON"},
			{TraitType: "Ticker", Value: p.Ticker},
			{TraitType: "Minted At", Value: mintedAt.UTC().Format(time.RFC3339)},
		},
	}
}

// JSON encodes the metadata for storage.
func (m NFTMetadata) JSON() (types.JSONText, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b), nil
}

// SimulatedTransactionHash derives a stable, unique 0x-prefixed hash for a
// mint that was not broadcast to any chain.
func SimulatedTransactionHash(m *Mint) string {
	return crypto.Keccak256Hash(
		[]byte(m.WalletAddress),
		[]byte(m.Ticker),
		[]byte(m.MintType),
		m.UUID[:],
	).Hex()
}
