// Package strava relays OAuth token refreshes and athlete statistics.
package strava

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const refreshMargin = 5 * time.Minute

var (
	ErrNotConnected = errors.New("strava account not connected")
	ErrNoCache      = errors.New("strava token cache unavailable")

	nowFn = time.Now
)

type Service struct {
	client *Client
	cache  TokenCache
}

// NewService wires the relay. cache may be nil when Redis is not configured.
func NewService(client *Client, cache TokenCache) *Service {
	return &Service{client: client, cache: cache}
}

// Connect stores the grant a member obtained through the OAuth redirect.
func (s *Service) Connect(ctx context.Context, userID string, token Token) error {
	if s.cache == nil {
		return ErrNoCache
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("refresh_token required")
	}
	return s.cache.Set(ctx, userID, token)
}

// AccessToken returns a token valid for at least five more minutes,
// refreshing and storing a new one when needed.
func (s *Service) AccessToken(ctx context.Context, userID string) (Token, error) {
	if s.cache == nil {
		return Token{}, ErrNoCache
	}
	tok, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, ErrNotConnected
	}
	if tok.AccessToken != "" && tok.ExpiresAt.Sub(nowFn()) > refreshMargin {
		return tok, nil
	}

	fresh, err := s.client.RefreshToken(ctx, tok.RefreshToken)
	if err != nil {
		return Token{}, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}
	if err := s.cache.Set(ctx, userID, fresh); err != nil {
		return Token{}, err
	}
	return fresh, nil
}

func (s *Service) Stats(ctx context.Context, userID, athleteID string) (AthleteStats, error) {
	tok, err := s.AccessToken(ctx, userID)
	if err != nil {
		return AthleteStats{}, err
	}
	return s.client.AthleteStats(ctx, tok.AccessToken, athleteID)
}
