// Package profile maintains the per-user reference tree in Redis: the
// profile references that list a user's own content and the draft
// references for cases still awaiting moderation.
package profile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"caseboard/internal/content"
)

// RedisStore keeps references under the same path shape the mobile client
// reads: users/{userId}/profile/{kind}/{contentId} and
// users/{userId}/drafts/{kind}/{contentId}. Each path maps a content id to
// its timestamp in seconds.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Client exposes the underlying connection so collaborators sharing the
// same tree (the feed fan-out) can reuse it.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func profileKey(userID string, kind content.Kind) string {
	return fmt.Sprintf("users/%s/profile/%s", userID, kind)
}

func draftKey(userID string, kind content.Kind) string {
	return fmt.Sprintf("users/%s/drafts/%s", userID, kind)
}

// SetReference records contentID under the user's profile tree,
// unconditionally overwriting any previous timestamp.
func (s *RedisStore) SetReference(ctx context.Context, userID string, kind content.Kind, contentID string, timestampSeconds int64) error {
	if err := s.client.HSet(ctx, profileKey(userID, kind), contentID, strconv.FormatInt(timestampSeconds, 10)).Err(); err != nil {
		return fmt.Errorf("set profile reference: %w", err)
	}
	return nil
}

// RemoveReference deletes the profile entry for contentID. Removing an
// absent reference is not an error.
func (s *RedisStore) RemoveReference(ctx context.Context, userID string, kind content.Kind, contentID string) error {
	if err := s.client.HDel(ctx, profileKey(userID, kind), contentID).Err(); err != nil {
		return fmt.Errorf("remove profile reference: %w", err)
	}
	return nil
}

// SetDraft records contentID under the user's draft tree.
func (s *RedisStore) SetDraft(ctx context.Context, userID string, kind content.Kind, contentID string, timestampSeconds int64) error {
	if err := s.client.HSet(ctx, draftKey(userID, kind), contentID, strconv.FormatInt(timestampSeconds, 10)).Err(); err != nil {
		return fmt.Errorf("set draft reference: %w", err)
	}
	return nil
}

// RemoveDraft deletes the draft entry for contentID; idempotent like
// RemoveReference.
func (s *RedisStore) RemoveDraft(ctx context.Context, userID string, kind content.Kind, contentID string) error {
	if err := s.client.HDel(ctx, draftKey(userID, kind), contentID).Err(); err != nil {
		return fmt.Errorf("remove draft reference: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
