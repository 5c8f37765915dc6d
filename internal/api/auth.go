package api

import (
	"context"
	"net/http"
	"net/url"
)

// AuthService handles login and profile lookup.
type AuthService struct {
	c *Client
}

// Login exchanges credentials for an access token. The endpoint implements the
// OAuth2 password flow, so the email travels in the "username" form field.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok TokenResponse
	if err := s.c.doForm(ctx, "/auth/login", form, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
