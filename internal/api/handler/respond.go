package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"crypto-graves/internal/api/types"
	"crypto-graves/internal/util"
	"crypto-graves/pkg/ethsig"
)

// DefaultTimeout bounds the handling time of every request.
const DefaultTimeout = 30 * time.Second

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// base carries the response helpers shared by all handlers.
type base struct {
	logger *slog.Logger
}

// respondWithJSON sends payload as a JSON response.
func (b base) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps an error kind onto a status code and message.
func (b base) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidWalletAddress):
		statusCode = http.StatusBadRequest
		message = "Invalid wallet address: expected 0x followed by 40 hex characters"
	case util.IsError(err, util.ErrNegativeValue):
		statusCode = http.StatusBadRequest
		message = "Prices and amounts must not be negative"
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrVerifierNotFound):
		statusCode = http.StatusNotFound
		message = "Verifier not found"
	case util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "User not found"
	case util.IsError(err, util.ErrLossNotFound):
		statusCode = http.StatusNotFound
		message = "Loss not found"
	case util.IsError(err, util.ErrPositionNotFound):
		statusCode = http.StatusNotFound
		message = "Wallet position not found"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInvalidSignature):
		statusCode = http.StatusUnauthorized
		message = "Invalid signature"
	case util.IsError(err, util.ErrInvalidStatusTransition):
		statusCode = http.StatusConflict
		message = "Loss is no longer pending"
	case util.IsError(err, util.ErrLossNotVerified):
		statusCode = http.StatusConflict
		message = "Loss must be verified first"
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
		message = "Conflicting record already exists"
	case util.IsError(err, util.ErrStorage):
		statusCode = http.StatusServiceUnavailable
		message = "Storage unavailable"
		b.logger.Error("Storage error", "error", err)
	default:
		b.logger.Error("Unhandled service error", "error", err)
	}

	b.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// decodeJSON decodes a bounded JSON request body into dst. An empty body
// yields an error that also matches io.EOF.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %w", util.ErrInvalidInput, err)
	}
	return nil
}

// parseWalletAddress validates the 0x + 40 hex format and returns the
// EIP-55 checksummed address used everywhere past the HTTP boundary.
func parseWalletAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !ethsig.IsValidAddress(raw) {
		return "", util.ErrInvalidWalletAddress
	}
	return ethsig.NormalizeAddress(raw), nil
}

// parseIDParam reads a positive int64 URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// parsePage reads limit and offset query parameters. Missing or malformed
// values become 0 and are defaulted by the service.
func parsePage(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
