package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet selects the character set one-time codes are drawn from.
type Alphabet string

const (
	// AlphabetNumeric draws codes from the digits 0-9.
	AlphabetNumeric Alphabet = "numeric"
	// AlphabetAlphanumeric draws codes from digits and letters. Ambiguous
	// glyph pairs are not excluded; codes are machine-compared, not typed
	// from memory.
	AlphabetAlphanumeric Alphabet = "alphanumeric"
)

const minCodeLength = 4

const (
	numericCharset      = "0123456789"
	alphanumericCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// CodePolicy controls how one-time codes are generated and compared.
type CodePolicy struct {
	// Length is the number of characters in a generated code. Minimum 4.
	Length int
	// Alphabet is the character set codes are drawn from.
	Alphabet Alphabet
	// CaseSensitive controls whether letter case matters when a supplied
	// code is compared against the issued one. Ignored for numeric codes.
	CaseSensitive bool
}

// DefaultCodePolicy matches the common emailed-OTP shape: six digits.
var DefaultCodePolicy = CodePolicy{
	Length:   6,
	Alphabet: AlphabetNumeric,
}

// Validate reports whether the policy can produce codes.
func (p CodePolicy) Validate() error {
	if p.Length < minCodeLength {
		return fmt.Errorf("cryptox: code length %d below minimum %d", p.Length, minCodeLength)
	}
	switch p.Alphabet {
	case AlphabetNumeric, AlphabetAlphanumeric:
		return nil
	default:
		return fmt.Errorf("cryptox: unknown code alphabet %q", p.Alphabet)
	}
}

func (p CodePolicy) charset() string {
	if p.Alphabet == AlphabetAlphanumeric {
		return alphanumericCharset
	}
	return numericCharset
}

// GenerateCode produces a one-time code under the policy using a
// cryptographically strong random source. Each position is drawn uniformly
// from the policy's charset; there is no fallback to weaker randomness.
func GenerateCode(p CodePolicy) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	charset := p.charset()
	code := make([]byte, p.Length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to generate code: %w", err)
		}
		code[i] = charset[n.Int64()]
	}

	return string(code), nil
}

// NormalizeCode folds a supplied code under the policy's comparison rules.
// Case-insensitive policies compare codes uppercased; whitespace around the
// code is always irrelevant.
func NormalizeCode(p CodePolicy, code string) string {
	code = strings.TrimSpace(code)
	if !p.CaseSensitive {
		code = strings.ToUpper(code)
	}
	return code
}

// FingerprintCode returns a deterministic SHA-256 fingerprint of a normalized
// code, base64url encoded. Only fingerprints are persisted, so a read of the
// challenge store never yields a redeemable code.
func FingerprintCode(p CodePolicy, code string) string {
	sum := sha256.Sum256([]byte(NormalizeCode(p, code)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// MatchCode compares a supplied code against a stored fingerprint in
// constant time.
func MatchCode(p CodePolicy, storedFingerprint, supplied string) bool {
	candidate := FingerprintCode(p, supplied)
	return subtle.ConstantTimeCompare([]byte(storedFingerprint), []byte(candidate)) == 1
}
