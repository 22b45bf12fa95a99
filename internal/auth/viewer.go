package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenViewer is the client-side current viewer: it holds the bearer token
// the client sends and reads the viewer id from its subject. The signature
// is not checked here; the server does that on every request.
type TokenViewer struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

// NewTokenViewer returns a viewer holding token, which may be empty.
func NewTokenViewer(token string) *TokenViewer {
	return &TokenViewer{token: token, now: time.Now}
}

// SetToken replaces the held token (sign-in).
func (v *TokenViewer) SetToken(token string) {
	v.mu.Lock()
	v.token = token
	v.mu.Unlock()
}

// Clear drops the held token (sign-out).
func (v *TokenViewer) Clear() { v.SetToken("") }

// Token returns the held token.
func (v *TokenViewer) Token() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.token
}

// ViewerID returns the token's subject, or false when there is no token,
// it cannot be decoded, or it has expired.
func (v *TokenViewer) ViewerID() (string, bool) {
	token := v.Token()
	if token == "" {
		return "", false
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", false
	}
	if claims.ExpiresAt != nil && !v.now().Before(claims.ExpiresAt.Time) {
		return "", false
	}
	if claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
