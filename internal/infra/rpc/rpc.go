// Package rpc queries the chain head of Ethereum-compatible JSON-RPC endpoints.
//
// The package offers:
//   - DecodeHex: quantity decoding for "0x"-prefixed or bare hex strings
//   - Client: a single-shot eth_blockNumber caller with a typed failure taxonomy
//
// # Quick Start
//
//	client := rpc.NewClient(10 * time.Second)
//	height, err := client.GetBlockNumber(ctx, rpc.Endpoint{Name: "local", URL: "http://localhost:8545"})
//	if rpc.IsKind(err, rpc.KindTransport) {
//	    // node is not reachable
//	}
//
// The client never retries. Retry policy belongs to the caller.
package rpc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is returned when a string is not a valid hex quantity.
var ErrParse = errors.New("invalid hex quantity")

// DecodeHex parses a hex quantity such as "0x10a" or "10a" into a uint64.
// The prefix is case-insensitive. Empty digits, signs, non-hex characters
// and values wider than 64 bits are rejected with ErrParse.
func DecodeHex(s string) (uint64, error) {
	digits := s
	if len(digits) >= 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits = digits[2:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: %q has no digits", ErrParse, s)
	}
	// Only plain hex digits; no signs or separators.
	if strings.IndexFunc(digits, func(r rune) bool { return !isHexDigit(r) }) >= 0 {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}

	n, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	return n, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
