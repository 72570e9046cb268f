// Package walletauth verifies the EIP-191 "personal_sign" wallet
// signature spec.md §4.6's POST /api/auth relies on, over the literal
// message "I agree to connect my wallet to the simple push service.
// <timestamp>". Grounded on the go-ethereum crypto package attested in
// the example pack (C12).
package walletauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrSignatureMismatch = errors.New("signature does not match address")

// Message builds the literal challenge text the wallet must sign.
func Message(timestamp string) string {
	return fmt.Sprintf("I agree to connect my wallet to the simple push service. %s", timestamp)
}

// Verify recovers the signer from sig over the EIP-191-prefixed hash of
// message and confirms it matches address. sig is the raw 65-byte
// (r, s, v) signature; v may be 0/1 or 27/28 per common wallet
// conventions.
func Verify(address, message string, sig []byte) error {
	if len(sig) != 65 {
		return fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}

	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	hash := eip191Hash(message)

	pubKey, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return fmt.Errorf("recover public key: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	if !strings.EqualFold(recovered.Hex(), common.HexToAddress(address).Hex()) {
		return ErrSignatureMismatch
	}
	return nil
}

// eip191Hash implements the "\x19Ethereum Signed Message:\n<len>" prefix
// personal_sign applies before hashing with Keccak-256.
func eip191Hash(message string) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256([]byte(prefix + message))
}
