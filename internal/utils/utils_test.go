package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "Trainer", "key-1", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	c, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Claims{LoginID: 42, Role: "Trainer", AccessKey: "key-1"}, c)
}

func TestParseAccessTokenRejects(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "Member", "key-1", 15)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("s3cret", 42, "Member", "key-1", -1)
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 42, "role": "Member", "exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", noSid)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasherAndVerify(t *testing.T) {
	digest, err := Hasher(bcrypt.MinCost)("password1")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(digest, "password1"))
	assert.False(t, VerifyPassword(digest, "password2"))
	assert.True(t, LooksHashed(digest))
	assert.False(t, LooksHashed("password1"))
}

func TestNewAccessKeyIsUnique(t *testing.T) {
	assert.NotEqual(t, NewAccessKey(), NewAccessKey())
}

func TestHashPasswordClipsAtBcryptLimit(t *testing.T) {
	hash := Hasher(bcrypt.MinCost)
	at := strings.Repeat("a", MaxPasswordBytes)
	over := at + "b"

	digest, err := hash(at)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(digest, at))

	// 72 multi-byte runes pass length validation but are 216 bytes long.
	wide, err := hash(strings.Repeat("é", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, VerifyPassword(wide, strings.Repeat("é", MaxPasswordBytes)))

	digest, err = hash(over)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(digest, over))
	assert.True(t, VerifyPassword(digest, at))
	assert.False(t, VerifyPassword(digest, strings.Repeat("a", MaxPasswordBytes-1)))
}
