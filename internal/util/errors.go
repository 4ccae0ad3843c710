package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input provided")
	ErrInvalidWalletAddress = errors.New("invalid wallet address format")
	ErrNegativeValue        = errors.New("prices and amounts must be non-negative")
	ErrUserNotFound         = errors.New("user not found")
	ErrLossNotFound         = errors.New("loss not found")
	ErrPositionNotFound     = errors.New("wallet position not found")
	ErrVerifierNotFound     = errors.New("verifier not found")
	ErrInvalidSignature     = errors.New("invalid signature")

	// Loss lifecycle errors.
	ErrInvalidStatusTransition = errors.New("invalid loss status transition")
	ErrLossNotVerified         = errors.New("loss is not verified")

	// Persistence errors. ErrConflict covers unique violations, ErrStorage
	// everything else the database or driver reports.
	ErrConflict = errors.New("storage conflict")
	ErrStorage  = errors.New("storage unavailable")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
