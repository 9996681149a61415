package accessgate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

const tokenSeparator = "."

var (
	ErrEmptySecret     = errors.New("token secret must not be empty")
	ErrInvalidTokenTTL = errors.New("token ttl must be positive")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
)

// Claims is the signed payload of a token.
type Claims struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"exp"`
}

// TokenIssuer signs and verifies bearer tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) (TokenIssuer, error) {
	if len(secret) == 0 {
		return TokenIssuer{}, ErrEmptySecret
	}

	if ttl <= 0 {
		return TokenIssuer{}, ErrInvalidTokenTTL
	}

	return TokenIssuer{secret: secret, ttl: ttl}, nil
}

// Issue returns a token for caller that expires ttl after now, at second precision.
func (i TokenIssuer) Issue(caller core.Caller, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.ttl).Truncate(time.Second).UTC()

	payload, err := jsoniter.ConfigFastest.Marshal(Claims{
		Subject:   caller.ID.String(),
		Role:      string(caller.Role),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)

	return encodedPayload + tokenSeparator + i.sign(encodedPayload), expiresAt, nil
}

// Verify checks the signature and expiry of token and returns the caller it was issued for.
// The caller's role is the one at issue time, Gate.Authorize replaces it with the stored one.
func (i TokenIssuer) Verify(token string, now time.Time) (core.Caller, error) {
	encodedPayload, signature, found := strings.Cut(token, tokenSeparator)
	if !found || encodedPayload == "" || signature == "" {
		return core.Caller{}, ErrInvalidToken
	}

	if !hmac.Equal([]byte(signature), []byte(i.sign(encodedPayload))) {
		return core.Caller{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return core.Caller{}, errors.Join(ErrInvalidToken, err)
	}

	var claims Claims
	if err = jsoniter.ConfigFastest.Unmarshal(payload, &claims); err != nil {
		return core.Caller{}, errors.Join(ErrInvalidToken, err)
	}

	if !now.Before(time.Unix(claims.ExpiresAt, 0)) {
		return core.Caller{}, ErrExpiredToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return core.Caller{}, errors.Join(ErrInvalidToken, err)
	}

	role, err := recordstore.ParseRole(claims.Role)
	if err != nil {
		return core.Caller{}, errors.Join(ErrInvalidToken, err)
	}

	return core.Caller{ID: userID, Role: role}, nil
}

func (i TokenIssuer) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(encodedPayload))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
