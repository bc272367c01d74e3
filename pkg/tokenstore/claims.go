package tokenstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoUserID is returned when a token carries no usable user identifier.
var ErrNoUserID = errors.New("token carries no user id")

// SessionClaims is what the client can learn from its own token. The signature is not
// checked: the backend remains the only authority on whether the token is valid.
type SessionClaims struct {
	UserID    int64
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp is in the past relative to now.
func (c SessionClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims reads the session claims from a JWT without verifying it.
func ParseClaims(token string) (*SessionClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	out := &SessionClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	for _, key := range []string{"id", "userId", "user_id", "sub"} {
		if id, ok := numericClaim(claims[key]); ok {
			out.UserID = id
			return out, nil
		}
	}
	return out, ErrNoUserID
}

func numericClaim(v interface{}) (int64, bool) {
	switch value := v.(type) {
	case float64:
		if value <= 0 || value != float64(int64(value)) {
			return 0, false
		}
		return int64(value), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
