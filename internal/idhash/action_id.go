package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrInvalidSignature is returned for strings that are not base58 encoded
// 64-byte transaction signatures.
var ErrInvalidSignature = errors.New("invalid transaction signature")

// SignatureLen is the byte length of an ed25519 transaction signature.
const SignatureLen = 64

// ComputeActionID computes a deterministic action_id using SHA256.
// Formula: SHA256(signature|wallet|seq1,seq2,...)
// seqs are expected sorted; the caller keeps leg paths sorted.
// Returns hex-encoded hash (64 characters).
func ComputeActionID(signature, wallet string, seqs []int) string {
	parts := make([]string, len(seqs))
	for i, s := range seqs {
		parts[i] = strconv.Itoa(s)
	}

	data := fmt.Sprintf("%s|%s|%s", signature, wallet, strings.Join(parts, ","))

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ValidateSignature checks that sig decodes to a 64-byte signature.
func ValidateSignature(sig string) error {
	raw, err := base58.Decode(sig)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSignature, sig, err)
	}
	if len(raw) != SignatureLen {
		return fmt.Errorf("%w: %s: %d bytes", ErrInvalidSignature, sig, len(raw))
	}
	return nil
}
