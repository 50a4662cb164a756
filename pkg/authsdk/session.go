package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// refreshSkew is how long before expiry the access token is refreshed.
const refreshSkew = 30 * time.Second

// ErrNoSession is returned by a Session that has been logged out.
var ErrNoSession = errors.New("authsdk: session has no refresh token")

// Session holds the tokens of one signed-in device and refreshes the access
// token when it gets close to expiry.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	now          func() time.Time
}

func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	s := &Session{
		client:       client,
		accessToken:  tokenResp.AccessToken,
		refreshToken: tokenResp.RefreshToken,
		now:          time.Now,
	}
	s.expiresAt = s.deadline(tokenResp.ExpiresIn)
	return s
}

func (s *Session) deadline(expiresIn int64) time.Time {
	return s.now().Add(time.Duration(expiresIn)*time.Second - refreshSkew)
}

// AccessToken returns a valid access token, refreshing it first if needed.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.refreshToken != "" && s.now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if s.refreshToken == "" {
		return "", ErrNoSession
	}
	if s.now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	resp, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = resp.AccessToken
	s.expiresAt = s.deadline(resp.ExpiresIn)
	return s.accessToken, nil
}

// RefreshToken returns the refresh token, or "" after Logout.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Logout signs the session out server side and forgets its tokens. The
// tokens are dropped even if the request fails.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}

	err = s.client.Logout(ctx, token)

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	return err
}
