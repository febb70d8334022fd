package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "mathdrill"

// DefaultTokenTTL is used when NewTokenIssuer is given a zero ttl.
const DefaultTokenTTL = 72 * time.Hour

type claims struct {
	Username string `json:"name"`
	Guest    bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 principal tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. The secret must not be empty.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("identity: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for p.
func (t *TokenIssuer) Issue(p Principal) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	now := t.now()
	c := claims{
		Username: p.Username,
		Guest:    p.Guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its principal. Failures are *Error
// values whose kind can be read with Kind.
func (t *TokenIssuer) Verify(token string) (Principal, error) {
	token = bearerToken(token)
	if token == "" {
		return Principal{}, &Error{Kind: KindMissingToken}
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Principal{}, wrap(err)
	}

	p := Principal{UID: c.Subject, Username: c.Username, Guest: c.Guest}
	if err := p.Validate(); err != nil {
		return Principal{}, err
	}
	return p, nil
}

// bearerToken strips an optional "Bearer" scheme, in any case, and the
// surrounding whitespace.
func bearerToken(h string) string {
	h = strings.TrimSpace(h)
	const scheme = "bearer"
	if len(h) >= len(scheme) && strings.EqualFold(h[:len(scheme)], scheme) {
		if rest := h[len(scheme):]; rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			h = rest
		}
	}
	return strings.TrimSpace(h)
}
