package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSession_Empty_NotAuthenticated(t *testing.T) {
	s := New(nil)

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
}

func TestSession_OpaqueToken_Authenticated(t *testing.T) {
	s := New(nil)

	s.SetToken("not-a-jwt-at-all")

	assert.True(t, s.Authenticated())
	assert.Equal(t, "not-a-jwt-at-all", s.Token())
	assert.Empty(t, s.Subject())
}

func TestSession_JWT_SubjectAndExpiry(t *testing.T) {
	s := New(nil)

	s.SetToken(signedToken(t, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}))

	assert.True(t, s.Authenticated())
	assert.Equal(t, "user-42", s.Subject())
}

func TestSession_ExpiredJWT_NotAuthenticated(t *testing.T) {
	s := New(nil)

	s.SetToken(signedToken(t, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}))

	assert.False(t, s.Authenticated())
}

func TestSession_Clear(t *testing.T) {
	s := New(nil)
	s.SetToken("tok")

	s.Clear()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
}

func TestSession_Events(t *testing.T) {
	s := New(nil)

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	s.SetToken("tok")
	s.Clear()
	s.SetToken("") // empty token counts as a logout

	assert.Equal(t, []Event{EventLogin, EventLogout, EventLogout}, events)
}

func TestSession_MultipleSubscribers(t *testing.T) {
	s := New(nil)

	first, second := 0, 0
	s.Subscribe(func(Event) { first++ })
	s.Subscribe(func(Event) { second++ })

	s.SetToken("tok")

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
