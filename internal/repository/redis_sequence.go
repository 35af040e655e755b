package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stayloop/service-booking/internal/domain/sequence"
)

const sequenceKeyPrefix = "booking:seq:"

// RedisSequenceAllocator issues IDs with INCR, which is atomic on the server.
type RedisSequenceAllocator struct {
	client redis.Cmdable
}

// NewRedisSequenceAllocator creates a new RedisSequenceAllocator.
func NewRedisSequenceAllocator(client redis.Cmdable) *RedisSequenceAllocator {
	return &RedisSequenceAllocator{client: client}
}

// Next returns the next value of counter. INCR on a missing key yields 1.
func (a *RedisSequenceAllocator) Next(ctx context.Context, counter sequence.Counter) (int64, error) {
	seq, err := a.client.Incr(ctx, sequenceKeyPrefix+string(counter)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s: %w", counter, err)
	}
	return seq, nil
}
