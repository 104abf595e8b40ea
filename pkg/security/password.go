package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed    = errors.New("password hashing failed")
	ErrPasswordMismatch = errors.New("password does not match")
)

// Password schemes
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// PasswordHasher provides interface for password operations
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

// NewPasswordHasher returns the hasher for scheme. cost only applies to bcrypt.
func NewPasswordHasher(scheme string, cost int) (PasswordHasher, error) {
	switch scheme {
	case "", SchemeSHA256:
		return NewSHA256Hasher(), nil
	case SchemeBcrypt:
		return NewBcryptHasher(cost), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// sha256Hasher renders base64(SHA-256(password)). It is unsalted and
// deterministic; existing rows were written with this format.
type sha256Hasher struct{}

// NewSHA256Hasher creates the legacy digest hasher
func NewSHA256Hasher() PasswordHasher {
	return sha256Hasher{}
}

func (sha256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func (h sha256Hasher) Compare(hashedPassword, password string) error {
	hashed, _ := h.Hash(password)
	if subtle.ConstantTimeCompare([]byte(hashed), []byte(hashedPassword)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new password hasher using bcrypt
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
