package utils // package utils provides helpers for session tokens and password hashing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by ParseAccessToken for any token that is
// malformed, expired, signed with another key or missing a claim.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed HS256 JWT together with its expiry.  The token
// carries the login id (sub), its role and the session access key (sid).
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims is the decoded content of an access token.
type Claims struct {
	LoginID   uint64
	Role      string
	AccessKey string
}

// NewAccessKey returns a fresh random session key.  Each successful login
// stores a new key on the login row, invalidating earlier sessions.
func NewAccessKey() string {
	return uuid.NewString()
}

// NewAccessToken builds and signs a token for loginID valid for ttlMin
// minutes.  accessKey binds the token to the session stored server side so
// that logging out revokes it before it expires.
func NewAccessToken(secret string, loginID uint64, role, accessKey string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  loginID,
		"role": role,
		"sid":  accessKey,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates raw against secret and extracts its claims.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	// Numeric claims decode as float64.
	sub, ok := mc["sub"].(float64)
	if !ok || sub < 1 {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mc["role"].(string)
	sid, _ := mc["sid"].(string)
	if role == "" || sid == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{LoginID: uint64(sub), Role: role, AccessKey: sid}, nil
}
