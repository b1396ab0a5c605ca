package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Session is an issued bearer token and the actor it authenticates.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Actor     shared.Actor `json:"actor"`
}

// SessionStore keeps bearer tokens in Redis under session:<token>. The tokens of
// each user are indexed in the set session:user:<id> so they can be revoked together.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

// TTL exposes the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create issues a new token for actor.
func (s *SessionStore) Create(ctx context.Context, actor shared.Actor) (Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Session{}, fmt.Errorf("auth: session token: %w", err)
	}
	data, err := json.Marshal(actor)
	if err != nil {
		return Session{}, err
	}
	token := id.String()
	index := userKey(actor.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(token), data, s.ttl)
		pipe.SAdd(ctx, index, token)
		pipe.Expire(ctx, index, s.ttl)
		return nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("auth: store session: %w", err)
	}
	return Session{Token: token, ExpiresAt: s.now().Add(s.ttl), Actor: actor}, nil
}

// Lookup resolves a token. Unknown or expired tokens yield shared.ErrUnauthorized.
func (s *SessionStore) Lookup(ctx context.Context, token string) (shared.Actor, error) {
	if _, err := uuid.Parse(token); err != nil {
		return shared.Actor{}, shared.ErrUnauthorized
	}
	payload, err := s.client.Get(ctx, redisKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return shared.Actor{}, shared.ErrUnauthorized
	}
	if err != nil {
		return shared.Actor{}, fmt.Errorf("auth: load session: %w", err)
	}
	var actor shared.Actor
	if err := json.Unmarshal(payload, &actor); err != nil {
		return shared.Actor{}, fmt.Errorf("auth: decode session: %w", err)
	}
	return actor, nil
}

// Delete revokes a token. Deleting an unknown token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	return nil
}

// RevokeUser deletes every indexed token of userID.
func (s *SessionStore) RevokeUser(ctx context.Context, userID int64) error {
	index := userKey(userID)
	tokens, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("auth: list user sessions: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, redisKey(token))
	}
	keys = append(keys, index)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("auth: revoke user sessions: %w", err)
	}
	return nil
}

func redisKey(token string) string {
	return "session:" + token
}

func userKey(userID int64) string {
	return "session:user:" + strconv.FormatInt(userID, 10)
}
