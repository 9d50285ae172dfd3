package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"strings"
)

// Service tokens have the shape
//
//	sk_<account_id>_<body>-<checksum>
//
// where checksum is the CRC-32 (IEEE) of everything before the final '-',
// hex encoded. Account ids may contain hyphens but not underscores. The
// checksum catches truncated or mangled tokens before any account lookup
// happens.
const serviceTokenPrefix = "sk_"

// ParseServiceToken validates the token's format and checksum and returns
// the direct-service payload. Malformed tokens return
// ErrMalformedServiceToken; a well-formed token with a bad checksum is
// ErrUnauthorized.
func ParseServiceToken(token string) (DirectService, error) {
	accountID, err := ServiceTokenAccount(token)
	if err != nil {
		return DirectService{}, err
	}

	sep := strings.LastIndexByte(token, '-')
	body, sum := token[:sep], token[sep+1:]
	want := fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(body)))
	if sum != want {
		return DirectService{}, ErrUnauthorized
	}

	return DirectService{
		AccountID:        accountID,
		TokenFingerprint: fingerprint(token),
	}, nil
}

// ServiceTokenAccount extracts the embedded account id without verifying
// the checksum. Used for actor addressing, where determinism matters and
// authorization is checked later in the call.
func ServiceTokenAccount(token string) (string, error) {
	if !strings.HasPrefix(token, serviceTokenPrefix) {
		return "", ErrMalformedServiceToken
	}
	rest := token[len(serviceTokenPrefix):]
	idx := strings.IndexByte(rest, '_')
	if idx <= 0 {
		return "", ErrMalformedServiceToken
	}
	accountID := rest[:idx]
	body := rest[idx+1:]
	sep := strings.LastIndexByte(body, '-')
	if sep <= 0 || sep == len(body)-1 {
		return "", ErrMalformedServiceToken
	}
	return accountID, nil
}

// MintServiceToken builds a well-formed service token for the given
// account. Intended for tests and local tooling.
func MintServiceToken(accountID, body string) (string, error) {
	if accountID == "" || strings.Contains(accountID, "_") {
		return "", fmt.Errorf("account id must be non-empty and contain no underscores")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}
	base := serviceTokenPrefix + accountID + "_" + body
	return fmt.Sprintf("%s-%08x", base, crc32.ChecksumIEEE([]byte(base))), nil
}

// fingerprint derives a short, non-reversible digest of a token.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
