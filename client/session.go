package client

import (
	"context"
	"log"

	"github.com/VyacheslavBabenko/beejee/models"
)

const msgLoginFailed = "Authorization failed"

// Session is the authentication state of the client.
type Session struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	// IsInitialized is set once the stored token has been checked, whatever
	// the outcome, so views can render.
	IsInitialized bool
	Loading       bool
	Error         string

	api    *API
	tokens TokenStore
}

func newSession(api *API, tokens TokenStore) *Session {
	token, err := tokens.Load()
	if err != nil {
		log.Printf("Failed to load stored token: %v", err)
	}
	return &Session{Token: token, api: api, tokens: tokens}
}

// Init verifies a stored token, or marks the session initialized right away
// when there is none.
func (s *Session) Init(ctx context.Context) error {
	if s.Token == "" {
		s.IsInitialized = true
		return nil
	}
	return s.Verify(ctx)
}

// Verify checks the stored token with the server. Any failure clears the
// token and user.
func (s *Session) Verify(ctx context.Context) error {
	s.Loading = true
	res, err := s.api.Verify(ctx)
	s.Loading = false
	s.IsInitialized = true
	if err != nil {
		s.clear()
		return err
	}
	s.User = &res.User
	s.IsAuthenticated = true
	return nil
}

// Login authenticates and stores the issued token.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.Loading = true
	s.Error = ""
	res, err := s.api.Login(ctx, username, password)
	s.Loading = false
	if err != nil {
		s.Error = message(err, msgLoginFailed)
		s.IsAuthenticated = false
		return err
	}

	if err := s.tokens.Save(res.Token); err != nil {
		return err
	}
	s.User = &res.User
	s.Token = res.Token
	s.IsAuthenticated = true
	return nil
}

// Logout ends the session locally even when the server call fails.
func (s *Session) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		log.Printf("Logout request failed: %v", err)
	}
	s.clear()
}

func (s *Session) ClearError() { s.Error = "" }

func (s *Session) clear() {
	s.User = nil
	s.Token = ""
	s.IsAuthenticated = false
	if err := s.tokens.Clear(); err != nil {
		log.Printf("Failed to clear stored token: %v", err)
	}
}
