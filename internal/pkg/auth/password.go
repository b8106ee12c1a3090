package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost for stored passwords.
const BcryptCost = 12

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hash with a plain text password.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// Hasher hashes and verifies passwords. Tests swap in a cheaper cost.
type Hasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) bool
}

// BcryptHasher implements Hasher with a configurable cost.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using BcryptCost.
func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: BcryptCost}
}

// Hash implements Hasher.
func (h BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Check implements Hasher.
func (h BcryptHasher) Check(hash, password string) bool {
	return CheckPassword(hash, password)
}
