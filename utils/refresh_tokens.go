package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const refreshTokenPrefix = "refresh_token:"

// StoreRefreshToken maps an opaque refresh token to a user id with a TTL.
// With no Redis configured the caller falls back to JWT-only refresh.
func StoreRefreshToken(redisClient *redis.Client, token, userID string, expiration time.Duration) error {
	if redisClient == nil {
		return fmt.Errorf("redis is not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return redisClient.Set(ctx, refreshTokenPrefix+token, userID, expiration).Err()
}

// LookupRefreshToken resolves a refresh token to the owning user id.
func LookupRefreshToken(redisClient *redis.Client, token string) (string, error) {
	if redisClient == nil {
		return "", fmt.Errorf("redis is not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, err := redisClient.Get(ctx, refreshTokenPrefix+token).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("refresh token not found or expired")
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeRefreshToken removes a refresh token, ending the session.
func RevokeRefreshToken(redisClient *redis.Client, token string) error {
	if redisClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return redisClient.Del(ctx, refreshTokenPrefix+token).Err()
}
