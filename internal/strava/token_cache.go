package strava

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// TokenCache keeps each member's current Strava grant.
type TokenCache interface {
	Get(ctx context.Context, userID string) (Token, bool, error)
	Set(ctx context.Context, userID string, token Token) error
}

type RedisTokenCache struct {
	client *redis.Client
}

func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func tokenKey(userID string) string {
	return "strava:token:" + userID
}

func (c *RedisTokenCache) Get(ctx context.Context, userID string) (Token, bool, error) {
	data, err := c.client.Get(ctx, tokenKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, err
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return Token{}, false, err
	}
	return tok, true, nil
}

// Set stores the grant without expiry; the refresh token outlives the access token.
func (c *RedisTokenCache) Set(ctx context.Context, userID string, token Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tokenKey(userID), data, 0).Err()
}
