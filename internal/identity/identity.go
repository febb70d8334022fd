// Package identity supplies the principal a practice session awards points
// to, and issues signed tokens that carry it across the server boundary.
package identity

import (
	"fmt"
	"strings"
	"time"
)

// GuestPrefix marks principals whose progress is never persisted.
const GuestPrefix = "guest-"

// Principal is the signed-in (or guest) user.
type Principal struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Guest    bool   `json:"guest"`
}

// Guest returns a guest principal identified by the current time.
func Guest(now time.Time) Principal {
	return Principal{
		UID:      fmt.Sprintf("%s%d", GuestPrefix, now.UnixMilli()),
		Username: "Guest",
		Guest:    true,
	}
}

// IsGuestUID reports whether uid was minted by Guest.
func IsGuestUID(uid string) bool {
	return strings.HasPrefix(uid, GuestPrefix)
}

// Validate checks that the principal can be used for scoring.
func (p Principal) Validate() error {
	if strings.TrimSpace(p.UID) == "" {
		return &Error{Kind: KindInvalidClaims, Err: fmt.Errorf("empty uid")}
	}
	if p.Guest != IsGuestUID(p.UID) {
		return &Error{Kind: KindInvalidClaims, Err: fmt.Errorf("guest flag does not match uid %q", p.UID)}
	}
	return nil
}

// UserPrefix marks principals derived from a local username.
const UserPrefix = "user-"

// Named returns a registered principal for a local player. The UID is a
// slug of the name, so the same name always maps to the same totals.
func Named(username string) (Principal, error) {
	username = strings.TrimSpace(username)
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(username) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return Principal{}, &Error{Kind: KindInvalidClaims, Err: fmt.Errorf("username %q has no letters or digits", username)}
	}
	return Principal{UID: UserPrefix + slug, Username: username}, nil
}
