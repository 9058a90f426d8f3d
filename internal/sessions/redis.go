package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"photo-exchange-bot/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "visitor_session:"

// RedisStore keeps sessions as JSON documents in Redis so they survive restarts
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// ConnectRedis opens a client for the given URL and checks it with a ping
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Msg("Redis connection established")
	return client, nil
}

// NewRedisStore creates a session store on an existing client.
// A zero ttl keeps sessions forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get loads a session, returning nil when the visitor has none
func (s *RedisStore) Get(ctx context.Context, visitorID int64) (*models.VisitorSession, error) {
	data, err := s.client.Get(ctx, sessionKey(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.VisitorSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.SentOwnerPhotos == nil {
		session.SentOwnerPhotos = make(map[string]struct{})
	}
	return &session, nil
}

// Save writes a session and refreshes its expiry
func (s *RedisStore) Save(ctx context.Context, session *models.VisitorSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.VisitorID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionKey(visitorID int64) string {
	return keyPrefix + strconv.FormatInt(visitorID, 10)
}
