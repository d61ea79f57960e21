// Package redis stores import sessions in Redis as JSON with a native TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/catalog/internal/core"
)

const keyPrefix = "import:"

// maxUpdateAttempts bounds the optimistic retries of Update.
const maxUpdateAttempts = 5

// SessionStore implements core.SessionStore using Redis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ core.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Redis-backed session store. ttl applies to
// sessions without an expiry time.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = core.DefaultSessionTTL
	}
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

// Options holds Redis connection settings.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Save writes the session. Its key expires at sess.ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, sess *core.ImportSession) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("save session: missing id")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := s.ttl
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			return s.Delete(ctx, sess.ID)
		}
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get reads a session. A missing or expired key is core.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*core.ImportSession, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var sess core.ImportSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Update applies fn inside a WATCH/MULTI transaction on the session key and
// retries when another client changed the key first.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*core.ImportSession) error) (*core.ImportSession, error) {
	key := keyPrefix + id

	var updated *core.ImportSession
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
			}
			return fmt.Errorf("redis get session: %w", err)
		}

		var sess core.ImportSession
		if err := json.Unmarshal(data, &sess); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if err := fn(&sess); err != nil {
			return err
		}

		out, err := json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &sess
		return nil
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update session %s: too many concurrent updates", id)
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
