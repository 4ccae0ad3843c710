package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	"crypto-graves/internal/util"
)

// LossStatus defines the verification status of a loss record.
type LossStatus string

const (
	LossStatusPending  LossStatus = "pending"
	LossStatusVerified LossStatus = "verified"
	LossStatusRejected LossStatus = "rejected"
)

// IsValid reports whether s is a known status.
func (s LossStatus) IsValid() bool {
	switch s {
	case LossStatusPending, LossStatusVerified, LossStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next.
// Only pending -> verified and pending -> rejected exist.
func (s LossStatus) CanTransitionTo(next LossStatus) bool {
	return s == LossStatusPending && (next == LossStatusVerified || next == LossStatusRejected)
}

// Loss represents a user-reported trading loss.
type Loss struct {
	ID                 int64           `db:"id" json:"id"`
	UUID               uuid.UUID       `db:"uuid" json:"uuid"`
	UserID             int64           `db:"user_id" json:"user_id"`
	UserUUID           uuid.UUID       `db:"user_uuid" json:"user_uuid"`
	AssetName          string          `db:"asset_name" json:"asset_name"`
	AssetTicker        string          `db:"asset_ticker" json:"asset_ticker"`
	LossAmount         decimal.Decimal `db:"loss_amount" json:"loss_amount"`         // In the lost asset
	LossAmountMon      decimal.Decimal `db:"loss_amount_mon" json:"loss_amount_mon"` // In MON
	TransactionHash    string          `db:"transaction_hash" json:"transaction_hash"`
	TransactionData    types.JSONText  `db:"transaction_data" json:"transaction_data"`
	Signature          string          `db:"signature" json:"-"`
	Status             LossStatus      `db:"status" json:"status"`
	VerifiedAt         *time.Time      `db:"verified_at" json:"verified_at"`
	VerifiedBy         *int64          `db:"verified_by" json:"verified_by"`
	VerifiedByUUID     uuid.NullUUID   `db:"verified_by_uuid" json:"verified_by_uuid"`
	NFTTokenID         *int64          `db:"nft_token_id" json:"nft_token_id"`
	NFTContractAddress *string         `db:"nft_contract_address" json:"nft_contract_address"`
	Notes              *string         `db:"notes" json:"notes"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// NewLoss creates a pending loss owned by user. The transaction hash is
// stored lower-cased so each on-chain transaction backs at most one loss.
func NewLoss(
	user *User,
	assetName, assetTicker string,
	lossAmount, lossAmountMon decimal.Decimal,
	transactionHash string,
	transactionData types.JSONText,
	signature string,
) *Loss {
	now := time.Now().UTC()
	if len(transactionData) == 0 {
		transactionData = types.JSONText("{}")
	}
	return &Loss{
		UUID:            uuid.New(),
		UserID:          user.ID,
		UserUUID:        user.UUID,
		AssetName:       assetName,
		AssetTicker:     NormalizeTicker(assetTicker),
		LossAmount:      lossAmount,
		LossAmountMon:   lossAmountMon,
		TransactionHash: strings.ToLower(transactionHash),
		TransactionData: transactionData,
		Signature:       signature,
		Status:          LossStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Verify moves a pending loss to verified, recording who verified it and when.
func (l *Loss) Verify(verifier *User, at time.Time) error {
	if !l.Status.CanTransitionTo(LossStatusVerified) {
		return util.ErrInvalidStatusTransition
	}
	at = at.UTC()
	verifierID := verifier.ID
	l.Status = LossStatusVerified
	l.VerifiedAt = &at
	l.VerifiedBy = &verifierID
	l.VerifiedByUUID = uuid.NullUUID{UUID: verifier.UUID, Valid: true}
	l.UpdatedAt = at
	return nil
}

// Reject moves a pending loss to rejected.
func (l *Loss) Reject(notes *string, at time.Time) error {
	if !l.Status.CanTransitionTo(LossStatusRejected) {
		return util.ErrInvalidStatusTransition
	}
	l.Status = LossStatusRejected
	if notes != nil {
		l.Notes = notes
	}
	l.UpdatedAt = at.UTC()
	return nil
}

// LossUpdate carries the partial fields that may change without a status
// transition.
type LossUpdate struct {
	Notes              *string `json:"notes"`
	NFTTokenID         *int64  `json:"nft_token_id"`
	NFTContractAddress *string `json:"nft_contract_address"`
}

// Empty reports whether the update changes nothing.
func (u LossUpdate) Empty() bool {
	return u.Notes == nil && u.NFTTokenID == nil && u.NFTContractAddress == nil
}

// SetsNFTLink reports whether the update touches NFT linkage.
func (u LossUpdate) SetsNFTLink() bool {
	return u.NFTTokenID != nil || u.NFTContractAddress != nil
}

// ApplyUpdate copies the set fields onto l. NFT linkage is only accepted
// once the loss is verified. Status is never changed.
func (l *Loss) ApplyUpdate(u LossUpdate, at time.Time) error {
	if u.SetsNFTLink() && l.Status != LossStatusVerified {
		return util.ErrLossNotVerified
	}
	if u.Notes != nil {
		l.Notes = u.Notes
	}
	if u.NFTTokenID != nil {
		l.NFTTokenID = u.NFTTokenID
	}
	if u.NFTContractAddress != nil {
		l.NFTContractAddress = u.NFTContractAddress
	}
	l.UpdatedAt = at.UTC()
	return nil
}

// LossFilter narrows loss listings. Zero values mean no filter.
type LossFilter struct {
	UserID   *int64
	UserUUID *uuid.UUID
	Status   *LossStatus
	Limit    int
	Offset   int
}
