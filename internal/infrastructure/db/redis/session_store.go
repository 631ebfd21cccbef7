package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

// SessionStore keeps the current profile snapshot in Redis as JSON.
// Key format: <prefix>auth_user
type SessionStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps client. ttl <= 0 stores the snapshot without expiry.
func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration, log zerolog.Logger) *SessionStore {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionStore{client: client, key: prefix + ports.SessionStoreKey, ttl: ttl, log: log}
}

func (s *SessionStore) Save(ctx context.Context, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context) (*domain.UserProfile, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: redis get: %v", domain.ErrStorageUnavailable, err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil || profile.ID == "" {
		s.log.Warn().Str("key", s.key).Msg("ignoring undecodable session snapshot")
		return nil, nil
	}
	return &profile, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
