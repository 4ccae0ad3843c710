package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	apitypes "crypto-graves/internal/api/types"
	"crypto-graves/internal/domain"
	"crypto-graves/internal/service"
	"crypto-graves/internal/util"
)

// multipartOverhead is allowed on top of the file size for form boundaries and headers.
const multipartOverhead = 64 << 10

// LossHandler handles HTTP requests for loss records.
type LossHandler struct {
	base
	service       service.LossService
	maxUploadSize int64
}

// NewLossHandler creates a new LossHandler.
func NewLossHandler(svc service.LossService, maxUploadSize int64, logger *slog.Logger) *LossHandler {
	return &LossHandler{
		base:          base{logger: logger},
		service:       svc,
		maxUploadSize: maxUploadSize,
	}
}

// CreateLossRequest represents the request body for recording a loss.
type CreateLossRequest struct {
	UserID          int64           `json:"user_id"`
	AssetName       string          `json:"asset_name"`
	AssetTicker     string          `json:"asset_ticker"`
	LossAmount      decimal.Decimal `json:"loss_amount"`
	LossAmountMon   decimal.Decimal `json:"loss_amount_mon"`
	TransactionHash string          `json:"transaction_hash"`
	TransactionData types.JSONText  `json:"transaction_data"`
	Signature       string          `json:"signature"`
}

// CreateLoss records a pending loss.
// POST /losses
func (h *LossHandler) CreateLoss(w http.ResponseWriter, r *http.Request) {
	var req CreateLossRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.UserID <= 0 {
		h.respondWithError(w, fmt.Errorf("user_id is required: %w", util.ErrInvalidInput))
		return
	}

	loss, err := h.service.CreateLoss(r.Context(), service.CreateLossInput{
		UserID:          req.UserID,
		AssetName:       req.AssetName,
		AssetTicker:     req.AssetTicker,
		LossAmount:      req.LossAmount,
		LossAmountMon:   req.LossAmountMon,
		TransactionHash: req.TransactionHash,
		TransactionData: req.TransactionData,
		Signature:       req.Signature,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, loss)
}

// ListLosses returns losses filtered by user_id, user_uuid and status.
// GET /losses?user_id=1&status=pending&limit=50&offset=0
func (h *LossHandler) ListLosses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter domain.LossFilter

	if v := query.Get("user_id"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.respondWithError(w, fmt.Errorf("user_id must be an integer: %w", util.ErrInvalidInput))
			return
		}
		filter.UserID = &userID
	}
	if v := query.Get("user_uuid"); v != "" {
		userUUID, err := uuid.Parse(v)
		if err != nil {
			h.respondWithError(w, fmt.Errorf("user_uuid must be a UUID: %w", util.ErrInvalidInput))
			return
		}
		filter.UserUUID = &userUUID
	}
	if v := query.Get("status"); v != "" {
		status := domain.LossStatus(v)
		filter.Status = &status
	}
	filter.Limit, filter.Offset = parsePage(r)
	filter.Limit, filter.Offset = service.ClampPage(filter.Limit, filter.Offset, service.DefaultLossLimit, service.MaxLossLimit)

	losses, err := h.service.ListLosses(r.Context(), filter)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, apitypes.NewPaginatedResponse(losses, filter.Limit, filter.Offset))
}

// GetLoss returns a loss by ID.
// GET /losses/{lossID}
func (h *LossHandler) GetLoss(w http.ResponseWriter, r *http.Request) {
	lossID, err := parseIDParam(r, "lossID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	loss, err := h.service.GetLoss(r.Context(), lossID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, loss)
}

// UpdateLoss changes notes or NFT linkage of a loss.
// PATCH /losses/{lossID}
func (h *LossHandler) UpdateLoss(w http.ResponseWriter, r *http.Request) {
	lossID, err := parseIDParam(r, "lossID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req domain.LossUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	loss, err := h.service.UpdateLoss(r.Context(), lossID, req)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, loss)
}

// VerifyLossRequest represents the request body for verifying a loss.
type VerifyLossRequest struct {
	VerifierID int64 `json:"verifier_id"`
}

// VerifyLoss moves a pending loss to verified.
// POST /losses/{lossID}/verify
func (h *LossHandler) VerifyLoss(w http.ResponseWriter, r *http.Request) {
	lossID, err := parseIDParam(r, "lossID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req VerifyLossRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.VerifierID <= 0 {
		h.respondWithError(w, fmt.Errorf("verifier_id is required: %w", util.ErrInvalidInput))
		return
	}

	loss, err := h.service.VerifyLoss(r.Context(), lossID, req.VerifierID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, apitypes.DataResponse[*domain.Loss]{Message: "Loss verified", Data: loss})
}

// RejectLossRequest represents the optional request body for rejecting a loss.
type RejectLossRequest struct {
	Notes *string `json:"notes"`
}

// RejectLoss moves a pending loss to rejected. The body is optional.
// POST /losses/{lossID}/reject
func (h *LossHandler) RejectLoss(w http.ResponseWriter, r *http.Request) {
	lossID, err := parseIDParam(r, "lossID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req RejectLossRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.respondWithError(w, err)
		return
	}

	loss, err := h.service.RejectLoss(r.Context(), lossID, req.Notes)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, apitypes.DataResponse[*domain.Loss]{Message: "Loss rejected", Data: loss})
}

// UploadTransactionResponse echoes a parsed transaction file.
type UploadTransactionResponse struct {
	Filename        string            `json:"filename"`
	Size            int64             `json:"size"`
	TransactionData types.JSONText    `json:"transaction_data"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// UploadTransaction parses an uploaded .json transaction export so it can be
// attached to a loss. Query parameters are echoed back as metadata.
// POST /losses/upload-transaction (multipart field "file")
func (h *LossHandler) UploadTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.respondWithError(w, fmt.Errorf("invalid multipart upload: %w", util.ErrInvalidInput))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondWithError(w, fmt.Errorf("file is required: %w", util.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := h.service.ParseTransactionUpload(header.Filename, file)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var metadata map[string]string
	for key := range r.URL.Query() {
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[key] = r.URL.Query().Get(key)
	}

	h.respondWithJSON(w, http.StatusOK, UploadTransactionResponse{
		Filename:        header.Filename,
		Size:            header.Size,
		TransactionData: data,
		Metadata:        metadata,
	})
}
