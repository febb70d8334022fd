package identity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T, now time.Time) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	iss.now = func() time.Time { return now }
	return iss
}

func TestGuest(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	g := Guest(now)
	assert.Equal(t, "guest-1700000000123", g.UID)
	assert.True(t, g.Guest)
	assert.True(t, IsGuestUID(g.UID))
	assert.False(t, IsGuestUID("u-42"))
	assert.NoError(t, g.Validate())
}

func TestPrincipalValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Principal
		ok   bool
	}{
		{"user", Principal{UID: "u1", Username: "ada"}, true},
		{"empty uid", Principal{UID: "  "}, false},
		{"guest flag without prefix", Principal{UID: "u1", Guest: true}, false},
		{"guest prefix without flag", Principal{UID: "guest-1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, KindInvalidClaims, Kind(err))
		})
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	iss := testIssuer(t, now)

	for _, p := range []Principal{
		{UID: "u1", Username: "ada"},
		Guest(now),
	} {
		tok, err := iss.Issue(p)
		require.NoError(t, err)

		for _, header := range []string{"Bearer " + tok, "bearer  " + tok, tok} {
			got, err := iss.Verify(header)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		}
	}
}

func TestVerifyErrorKinds(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	iss := testIssuer(t, now)
	tok, err := iss.Issue(Principal{UID: "u1", Username: "ada"})
	require.NoError(t, err)

	other := testIssuer(t, now)
	other.secret = []byte("other-secret")
	foreign, err := other.Issue(Principal{UID: "u1"})
	require.NoError(t, err)

	later := testIssuer(t, now.Add(2*time.Hour))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: tokenIssuer},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		issuer *TokenIssuer
		token  string
		want   ErrorKind
	}{
		{"empty", iss, "", KindMissingToken},
		{"bearer only", iss, "Bearer ", KindMissingToken},
		{"bearer without space", iss, "Bearer", KindMissingToken},
		{"lowercase bearer padded", iss, "  bearer \t ", KindMissingToken},
		{"garbage", iss, "not-a-token", KindMalformed},
		{"wrong key", iss, foreign, KindInvalidSignature},
		{"expired", later, tok, KindExpired},
		{"no expiry", iss, noExp, KindInvalidClaims},
		{"wrong issuer", iss, wrongIssuer, KindInvalidClaims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.issuer.Verify(tt.token)
			require.Error(t, err)
			if got := Kind(err); got != tt.want {
				t.Errorf("Kind = %v, want %v (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	iss := testIssuer(t, now)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	assert.Equal(t, KindInvalidSignature, Kind(err))
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindNone, Kind(nil))
	assert.Equal(t, KindUnknown, Kind(errors.New("boom")))

	wrapped := errors.Join(errors.New("context"), &Error{Kind: KindExpired})
	assert.Equal(t, KindExpired, Kind(wrapped))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "expired", KindExpired.String())
	assert.Equal(t, "unknown", ErrorKind(99).String())
	assert.True(t, strings.Contains((&Error{Kind: KindMalformed}).Error(), "malformed"))
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(nil, time.Hour)
	assert.Error(t, err)

	iss, err := NewTokenIssuer([]byte("s"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, iss.ttl)
}

func TestNamed(t *testing.T) {
	tests := []struct {
		in      string
		wantUID string
	}{
		{"Ada", "user-ada"},
		{"  Ada Lovelace ", "user-ada-lovelace"},
		{"ada__lovelace!!", "user-ada-lovelace"},
		{"R2-D2", "user-r2-d2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := Named(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, p.UID)
			assert.Equal(t, strings.TrimSpace(tt.in), p.Username)
			assert.False(t, p.Guest)
			assert.NoError(t, p.Validate())
		})
	}

	_, err := Named(" !! ")
	require.Error(t, err)
	assert.Equal(t, KindInvalidClaims, Kind(err))
}
