package sessionstorage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/errors/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rxstock/session/sessiontypes"
)

// DefaultRedisTTL bounds how long an untouched session record survives in
// Redis. Every save resets the clock.
const DefaultRedisTTL = 7 * 24 * time.Hour

// Redis keeps the session record server-side, keyed by the client's session
// ID, for deployments where the browser holds only the session cookie.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed session store scoped to one client
// session. Records expire ttl after their last save; ttl <= 0 selects
// DefaultRedisTTL.
func NewRedis(client *redis.Client, sessionID string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}

	return &Redis{
		client: client,
		key:    "session:" + sessionID,
		ttl:    ttl,
	}
}

func (r *Redis) pendingKey() string {
	return r.key + ":pending"
}

// Load returns the persisted record, or nil when none is stored. A record
// that fails decoding returns sessiontypes.ErrMalformedState.
func (r *Redis) Load(ctx context.Context) (*Record, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis.Client.Get()")
	}

	record := &Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, errors.Wrap(sessiontypes.ErrMalformedState, "session record failed decoding")
	}

	return record, nil
}

// Save persists the record under the session key and resets its TTL.
func (r *Redis) Save(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "json.Marshal()")
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis.Client.Set()")
	}

	return nil
}

// Clear removes the record and the pending redirect path in one call.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key, r.pendingKey()).Err(); err != nil {
		return errors.Wrap(err, "redis.Client.Del()")
	}

	return nil
}

// SetPendingPath stores the destination to return to after sign-in.
func (r *Redis) SetPendingPath(ctx context.Context, path string) error {
	if err := r.client.Set(ctx, r.pendingKey(), path, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis.Client.Set()")
	}

	return nil
}

// ConsumePendingPath returns the stored destination and deletes it in the
// same round trip.
func (r *Redis) ConsumePendingPath(ctx context.Context) (string, error) {
	path, err := r.client.GetDel(ctx, r.pendingKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "redis.Client.GetDel()")
	}

	return path, nil
}
