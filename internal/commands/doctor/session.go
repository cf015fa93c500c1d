package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/leadr/internal/core/session"
)

// TokenSource reports the stored token.
type TokenSource interface {
	CurrentToken() (string, bool)
}

// SessionCheck inspects the stored token without contacting the server.
type SessionCheck struct {
	tokens TokenSource
	now    func() time.Time
}

// NewSessionCheck creates a new session check.
func NewSessionCheck(tokens TokenSource) *SessionCheck {
	return &SessionCheck{tokens: tokens, now: time.Now}
}

func (c *SessionCheck) Name() string {
	return "Session"
}

func (c *SessionCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	token, ok := c.tokens.CurrentToken()
	if !ok {
		result.add("Token", StatusWarn, "not logged in, run 'leadr login'")
		return result
	}
	result.add("Token", StatusPass, "present")

	claims, ok := session.ParseClaims(token)
	if !ok {
		result.add("Claims", StatusPass, "opaque token")
		return result
	}

	switch {
	case claims.Expired(c.now()):
		result.add("Expiry", StatusFail, fmt.Sprintf("expired %s", claims.ExpiresAt.Local().Format(time.DateTime)))
	case claims.ExpiresAt.IsZero():
		result.add("Expiry", StatusPass, "no expiry")
	default:
		result.add("Expiry", StatusPass, fmt.Sprintf("valid until %s", claims.ExpiresAt.Local().Format(time.DateTime)))
	}

	return result
}
