package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"legend/api/types"
)

const (
	scanLockKey     = "scan:lock"
	lastScanKeyBase = "scan:last:"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ScanState keeps the cross-process scan lock and the last finished scan per
// group in Redis.
type ScanState struct {
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewScanState(client *redis.Client, lockTTL time.Duration, log *zap.Logger) *ScanState {
	if log == nil {
		log = zap.NewNop()
	}

	return &ScanState{
		redis: client,
		ttl:   lockTTL,
		log:   log,
	}
}

// Acquire takes the scan lock or returns types.ErrScanInProgress. The returned
// release only deletes the lock if this holder still owns it.
func (s *ScanState) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ok, err := s.redis.SetNX(ctx, scanLockKey, token, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !ok {
		return nil, types.ErrScanInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, s.redis, []string{scanLockKey}, token).Err(); err != nil {
			s.log.Warn("failed to release scan lock, it stays held until expiry",
				zap.Duration("ttl", s.ttl), zap.Error(err))
		}
	}, nil
}

func (s *ScanState) MarkScanned(ctx context.Context, group string, at time.Time) error {
	return s.redis.Set(ctx, lastScanKeyBase+group, at.UTC().Format(time.RFC3339), 0).Err()
}

func (s *ScanState) LastScans(ctx context.Context, groups ...string) (map[string]time.Time, error) {
	result := make(map[string]time.Time, len(groups))

	for _, group := range groups {
		raw, err := s.redis.Get(ctx, lastScanKeyBase+group).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read last scan for %s: %w", group, err)
		}

		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		result[group] = at
	}

	return result, nil
}
