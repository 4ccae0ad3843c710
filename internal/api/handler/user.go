package handler

import (
	"log/slog"
	"net/http"

	"crypto-graves/internal/api/types"
	"crypto-graves/internal/domain"
	"crypto-graves/internal/service"
	"crypto-graves/internal/util"
)

// UserHandler handles HTTP requests for users and wallet authentication.
type UserHandler struct {
	base
	service service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		base:    base{logger: logger},
		service: svc,
	}
}

// RegisterUserRequest represents the request body for user registration.
type RegisterUserRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// RegisterUser registers a wallet, or returns the existing user.
// POST /users
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	walletAddress, err := parseWalletAddress(req.WalletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	user, created, err := h.service.RegisterUser(r.Context(), walletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if created {
		h.respondWithJSON(w, http.StatusCreated, types.DataResponse[*domain.User]{Message: "User registered", Data: user})
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.DataResponse[*domain.User]{Message: "User already registered", Data: user})
}

// GetUserByWallet returns the user registered for the wallet_address query parameter.
// GET /users?wallet_address=0x...
// GET /auth/me?wallet_address=0x...
func (h *UserHandler) GetUserByWallet(w http.ResponseWriter, r *http.Request) {
	walletAddress, err := parseWalletAddress(r.URL.Query().Get("wallet_address"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.GetUserByWallet(r.Context(), walletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, user)
}

// GetUser returns a user by ID.
// GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the provided profile fields.
// PATCH /users/{userID}
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req domain.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, user)
}

// WalletAuthRequest represents the request body for wallet authentication.
type WalletAuthRequest struct {
	WalletAddress string `json:"wallet_address"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

// WalletAuthResponse is returned after a successful wallet authentication.
type WalletAuthResponse struct {
	Message   string       `json:"message"`
	User      *domain.User `json:"user"`
	IsNewUser bool         `json:"is_new_user"`
}

// WalletAuth verifies a personal_sign signature and registers the wallet on first login.
// POST /auth/wallet-auth
func (h *UserHandler) WalletAuth(w http.ResponseWriter, r *http.Request) {
	var req WalletAuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	walletAddress, err := parseWalletAddress(req.WalletAddress)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.Message == "" || req.Signature == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	user, created, err := h.service.AuthenticateWallet(r.Context(), walletAddress, req.Message, req.Signature)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, WalletAuthResponse{
		Message:   "Wallet authenticated",
		User:      user,
		IsNewUser: created,
	})
}
