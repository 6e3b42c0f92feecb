package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Domain prefixes for content-addressed identity.
const (
	DomainOp     = "watchset/op/v1"
	DomainConfig = "watchset/config/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalOp returns the canonical JSON of an op.
func CanonicalOp(op Op) ([]byte, error) {
	data, err := MarshalCanonical(op.canonicalObject())
	if err != nil {
		return nil, fmt.Errorf("canonical op: %w", err)
	}
	return data, nil
}

// OpID computes the journal identity of an op applied in a session at a
// journal sequence number. Same inputs give the same ID on every replay.
//
// The hashed payload is session, 0x00, seq in decimal, 0x00, then the
// canonical op.
func OpID(sessionID string, seq int64, op Op) (string, error) {
	canonical, err := CanonicalOp(op)
	if err != nil {
		return "", fmt.Errorf("OpID: %w", err)
	}
	data := make([]byte, 0, len(sessionID)+len(canonical)+24)
	data = append(data, sessionID...)
	data = append(data, 0x00)
	data = strconv.AppendInt(data, seq, 10)
	data = append(data, 0x00)
	data = append(data, canonical...)
	return hashWithDomain(DomainOp, data), nil
}

// MustOpID is like OpID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustOpID(sessionID string, seq int64, op Op) string {
	id, err := OpID(sessionID, seq, op)
	if err != nil {
		panic(err)
	}
	return id
}

// ConfigHash fingerprints a canonical configuration document.
func ConfigHash(canonical []byte) string {
	return hashWithDomain(DomainConfig, canonical)
}
