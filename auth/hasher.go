// Package auth provides password hashing, cookie sessions, the admin set, and
// the account operations built on them.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Hashes are stored in the werkzeug pbkdf2 encoding:
//
//	pbkdf2:sha256:600000$<salt>$<hex digest>
const (
	DefaultIterations = 600000
	SaltLength        = 15
	saltChars         = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrInvalidHash   = errors.New("invalid password hash")
)

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)
}

// PBKDF2Hasher implements PasswordHasher with PBKDF2-HMAC-SHA256.
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher creates a hasher that derives new hashes with the given
// iteration count. Non-positive values select DefaultIterations. Verify always
// uses the iteration count recorded in the hash being checked.
func NewPBKDF2Hasher(iterations int) *PBKDF2Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &PBKDF2Hasher{iterations: iterations}
}

// Hash produces a pbkdf2:sha256 hash of the password with a fresh salt.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt, err := genSalt(SaltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.iterations, salt, hex.EncodeToString(digest)), nil
}

// Verify checks if the password matches the hash.
func (h *PBKDF2Hasher) Verify(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 3 {
		return false, fmt.Errorf("%w: expected method$salt$digest", ErrInvalidHash)
	}
	method, salt, digestHex := parts[0], parts[1], parts[2]

	newHash, size, iterations, err := parseMethod(method)
	if err != nil {
		return false, err
	}

	expected, err := hex.DecodeString(digestHex)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if len(expected) != size {
		return false, fmt.Errorf("%w: digest length %d", ErrInvalidHash, len(expected))
	}

	computed := pbkdf2.Key([]byte(password), []byte(salt), iterations, size, newHash)
	return hmac.Equal(computed, expected), nil
}

// parseMethod reads "pbkdf2[:<hash>[:<iterations>]]".
func parseMethod(method string) (func() hash.Hash, int, int, error) {
	fields := strings.Split(method, ":")
	if fields[0] != "pbkdf2" || len(fields) > 3 {
		return nil, 0, 0, fmt.Errorf("%w: unsupported method %q", ErrInvalidHash, method)
	}

	newHash, size := sha256.New, sha256.Size
	if len(fields) > 1 {
		switch fields[1] {
		case "sha256":
		case "sha512":
			newHash, size = sha512.New, sha512.Size
		default:
			return nil, 0, 0, fmt.Errorf("%w: unsupported digest %q", ErrInvalidHash, fields[1])
		}
	}

	iterations := DefaultIterations
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n <= 0 {
			return nil, 0, 0, fmt.Errorf("%w: bad iteration count %q", ErrInvalidHash, fields[2])
		}
		iterations = n
	}

	return newHash, size, iterations, nil
}

func genSalt(length int) (string, error) {
	limit := big.NewInt(int64(len(saltChars)))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		sb.WriteByte(saltChars[n.Int64()])
	}
	return sb.String(), nil
}
