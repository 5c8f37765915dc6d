package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Event signals a session state transition to subscribers.
type Event int

const (
	EventLogin Event = iota
	EventLogout
)

// Session holds the current credential token and fans out login/logout events.
// It is injected into every aggregate; aggregates only ever read the token,
// writes come from the authentication flow.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *jwt.RegisteredClaims
	subs   []func(Event)
	logger *zap.Logger
}

func New(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{logger: logger}
}

// SetToken stores a credential token and notifies subscribers of a login.
// JWT claims are parsed without signature verification (the client holds no
// signing key); opaque tokens are accepted as-is.
func (s *Session) SetToken(token string) {
	var claims *jwt.RegisteredClaims
	if token != "" {
		parsed := &jwt.RegisteredClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, parsed); err == nil {
			claims = parsed
		} else {
			s.logger.Debug("token is not a JWT, treating as opaque", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.token = token
	s.claims = claims
	s.mu.Unlock()

	if token != "" {
		s.notify(EventLogin)
	} else {
		s.notify(EventLogout)
	}
}

// Clear drops the stored token and notifies subscribers of a logout.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.claims = nil
	s.mu.Unlock()

	s.notify(EventLogout)
}

// Token returns the raw bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a usable credential is present. A token with
// an expiry claim in the past does not count.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return false
	}
	if s.claims != nil && s.claims.ExpiresAt != nil {
		return s.claims.ExpiresAt.After(time.Now())
	}
	return true
}

// Subject returns the token subject claim when available.
func (s *Session) Subject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.Subject
}

// Subscribe registers a callback for login/logout transitions. Callbacks run
// synchronously on the goroutine that changed the session.
func (s *Session) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Session) notify(e Event) {
	s.mu.RLock()
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}
