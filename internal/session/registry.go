package session

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"
)

// TokenPrefix marks a credential as a taskhub session token. Tokens are
// opaque: validity is decided solely by registry lookup.
const TokenPrefix = "mtok."

const tokenBytes = 24 // 192 bits of entropy before encoding

// ExpiryPolicy decides whether a session issued at the given time is stale.
// The registry has no policy by default; sessions live for the process.
type ExpiryPolicy interface {
	Expired(issuedAt time.Time) bool
}

// MaxAge is an ExpiryPolicy that invalidates sessions older than the duration.
type MaxAge time.Duration

func (m MaxAge) Expired(issuedAt time.Time) bool {
	return time.Since(issuedAt) > time.Duration(m)
}

type entry struct {
	userID   int
	issuedAt time.Time
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]entry
	policy   ExpiryPolicy
}

type Option func(*Registry)

func WithExpiryPolicy(p ExpiryPolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]entry),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Issue creates a fresh token for the user. A user may hold any number of
// concurrent sessions.
func (r *Registry) Issue(userID int) (string, error) {
	buf := make([]byte, tokenBytes)

	_, err := rand.Read(buf)

	if err != nil {
		return "", err
	}

	token := TokenPrefix + base64.RawURLEncoding.EncodeToString(buf)

	r.mu.Lock()
	r.sessions[token] = entry{userID: userID, issuedAt: time.Now().UTC()}
	r.mu.Unlock()

	return token, nil
}

// Resolve maps a token back to a user id. Unknown, malformed, and expired
// tokens all fail the same way.
func (r *Registry) Resolve(token string) (int, bool) {
	if !strings.HasPrefix(token, TokenPrefix) {
		return 0, false
	}

	r.mu.RLock()
	e, ok := r.sessions[token]
	r.mu.RUnlock()

	if !ok {
		return 0, false
	}

	if r.policy != nil && r.policy.Expired(e.issuedAt) {
		r.mu.Lock()
		delete(r.sessions, token)
		r.mu.Unlock()

		return 0, false
	}

	return e.userID, true
}

// Revoke removes a session. The returned bool distinguishes "logged out now"
// from "already logged out".
func (r *Registry) Revoke(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[token]

	if ok {
		delete(r.sessions, token)
	}

	return ok
}
