package storage

import (
	"context"
	"errors"
	"strconv"

	redisLib "github.com/redis/go-redis/v9"
)

const sequenceKey = "market:sequence"

// SequenceStorage exposes the logical clock all deadlines and order
// identifiers are computed against. The value mirrors the chain height and is
// advanced by the block follower, not by the settlement engine.
type SequenceStorage struct {
	client *RedisClient
}

func NewSequenceStorage(client *RedisClient) *SequenceStorage {
	return &SequenceStorage{client: client}
}

func (s *SequenceStorage) Current(ctx context.Context) (uint64, error) {
	raw, err := s.client.getKey(ctx, sequenceKey)

	if err != nil {
		if errors.Is(err, redisLib.Nil) {
			return 0, nil
		}
		return 0, err
	}

	return strconv.ParseUint(*raw, 10, 64)
}

func (s *SequenceStorage) Advance(ctx context.Context) (uint64, error) {
	value, err := s.client.incrementKey(ctx, sequenceKey)

	if err != nil {
		return 0, err
	}

	return uint64(value), nil
}
