package ethsig

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the length of a textual wallet address: "0x" + 40 hex characters.
const AddressLength = 2 + 2*common.AddressLength

// IsValidAddress reports whether s is "0x" followed by exactly 40 hex characters.
func IsValidAddress(s string) bool {
	return len(s) == AddressLength && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// NormalizeAddress returns the EIP-55 checksummed form of a valid address.
func NormalizeAddress(s string) string {
	return common.HexToAddress(s).Hex()
}

// IsValidTxHash reports whether s is "0x" followed by exactly 64 hex characters.
func IsValidTxHash(s string) bool {
	if len(s) != 2+2*common.HashLength || !strings.HasPrefix(s, "0x") {
		return false
	}
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}
