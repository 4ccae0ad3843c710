package ethsig

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Verifier checks that a personal_sign signature was produced by a wallet.
type Verifier interface {
	Verify(address, message, signature string) bool
}

// PersonalSignVerifier recovers the signer of an EIP-191 "personal_sign"
// message and compares it with the claimed address, ignoring case.
type PersonalSignVerifier struct {
	logger *slog.Logger
}

// NewVerifier creates a PersonalSignVerifier.
func NewVerifier(logger *slog.Logger) *PersonalSignVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersonalSignVerifier{logger: logger}
}

// Verify never returns an error: malformed input or a failed recovery is
// reported as false.
func (v *PersonalSignVerifier) Verify(address, message, signature string) bool {
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		v.logger.Debug("Signature verification failed", "address", address, "error", err)
		return false
	}
	return strings.EqualFold(recovered, address)
}

// RecoverAddress returns the checksummed address that signed message.
// The signature is 65 bytes of hex, with or without the 0x prefix, and a
// recovery id of 0/1 or 27/28.
func RecoverAddress(message, signature string) (string, error) {
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
