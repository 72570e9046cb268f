package api

import (
	"encoding/hex"
	"strings"
)

// decodeSignature accepts a hex-encoded wallet signature, with or without
// the conventional "0x" prefix.
func decodeSignature(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}
