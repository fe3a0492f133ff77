package refresh

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps any Redis I/O failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrRecordNotFound is returned when no refresh record exists for the session id.
	ErrRecordNotFound = errors.New("refresh record not found")
	// ErrRecordExpired is returned when the record outlived its encoded expiry.
	ErrRecordExpired = errors.New("refresh record expired")
	// ErrAckMismatch is returned when the presented ack does not match the stored digest.
	ErrAckMismatch = errors.New("refresh ack mismatch")
	// ErrRecordCorrupt is returned when the stored blob cannot be decoded.
	ErrRecordCorrupt = errors.New("refresh record corrupt")
	// ErrInvalidTTL is returned when a non-positive lifetime is requested.
	ErrInvalidTTL = errors.New("refresh ttl must be > 0")
)

// Store is a Redis-backed refresh record store keyed by session id.
//
// Store is safe for concurrent use. It performs no locking; Redis provides
// per-key atomicity and TTL enforcement.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore creates a refresh [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "rt"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Create persists a refresh record for sessionID with the given lifetime,
// overwriting any previous record for the same id.
//
//	Performance: 1 Redis SET.
func (s *Store) Create(ctx context.Context, sessionID, ack string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	now := s.now()
	data, err := Encode(&Record{
		SessionID: sessionID,
		AckHash:   HashAck(ack),
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the decoded record for sessionID. Expired records are deleted
// and reported as [ErrRecordExpired].
//
//	Performance: 1 Redis GET (+1 DEL when the record is stale).
func (s *Store) Get(ctx context.Context, sessionID string) (*Record, error) {
	key := s.key(sessionID)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, err
	}
	rec.SessionID = sessionID

	if s.now().Unix() >= rec.ExpiresAt {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil, ErrRecordExpired
	}

	return rec, nil
}

// Verify reports whether a live record exists for sessionID and its stored
// digest matches ack. A nil error means the session may be renewed.
func (s *Store) Verify(ctx context.Context, sessionID, ack string) error {
	rec, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	provided := HashAck(ack)
	if subtle.ConstantTimeCompare(rec.AckHash[:], provided[:]) != 1 {
		return ErrAckMismatch
	}
	return nil
}

// Clear deletes the record for sessionID. Deleting an absent record is not an error.
//
//	Performance: 1 Redis DEL.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Renew restarts the lifetime of an existing record. It never creates a record.
//
//	Performance: 1 Redis GET + 1 SET XX.
func (s *Store) Renew(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	rec, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	rec.ExpiresAt = s.now().Add(ttl).Unix()

	data, err := Encode(rec)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetXX(ctx, s.key(sessionID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrRecordNotFound
	}
	return nil
}

// TTL returns the remaining Redis lifetime of the record for sessionID.
func (s *Store) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := s.redis.PTTL(ctx, s.key(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ttl < 0 {
		return 0, ErrRecordNotFound
	}
	return ttl, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
