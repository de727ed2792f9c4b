package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt reads. Longer passwords are
// cut to this length on both hash and verify.
const MaxPasswordBytes = 72

func clip(plain string) []byte {
	b := []byte(plain)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword(clip(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), clip(plain)) == nil
}

// Hasher binds HashPassword to a cost so it can be handed to code that only
// knows about plaintext in, digest out.
func Hasher(cost int) func(plain string) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return func(plain string) (string, error) {
		return HashPassword(plain, cost)
	}
}

// LooksHashed reports whether s is already a bcrypt digest, so an update
// carrying the stored value back is not hashed twice.
func LooksHashed(s string) bool {
	if len(s) != 60 {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
