package storage

import (
	"context"
	"time"

	"nft-settlement-service/staticerr"

	redisLib "github.com/redis/go-redis/v9"
	logger "github.com/sirupsen/logrus"
)

type TxContainer struct {
	tx redisLib.Pipeliner
}

type RedisClient struct {
	cli *redisLib.Client
}

func NewRedisClient(host string) (*RedisClient, error) {
	cli := redisLib.NewClient(&redisLib.Options{
		Addr:     host,
		Password: "",
		DB:       0,
	})

	pong, err := cli.Ping(context.Background()).Result()

	if err != nil {
		return nil, err
	}

	logger.Infoln(pong)
	return &RedisClient{cli: cli}, nil
}

func (r *RedisClient) setNX(ctx context.Context, key string, value interface{}, expire time.Duration) error {
	setted, err := r.cli.SetNX(ctx, key, value, expire).Result()

	if err != nil {
		return err
	}

	if !setted {
		return staticerr.ErrorReentrantCall
	}

	return nil
}

func (r *RedisClient) deleteWithValue(ctx context.Context, key string, value interface{}) error {
	err := r.cli.Watch(ctx, func(tx *redisLib.Tx) error {
		valueFromRedis, err := tx.Get(ctx, key).Result()

		if err != nil {
			return err
		}

		if valueFromRedis != value {
			return staticerr.ErrorReentrantCall
		}

		_, err = tx.Del(ctx, key).Result()

		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return err
	}

	return nil
}

func (r *RedisClient) getKey(ctx context.Context, key string) (*string, error) {
	value, err := r.cli.Get(ctx, key).Result()

	if err != nil {
		return nil, err
	}

	return &value, nil
}

func (r *RedisClient) incrementKey(ctx context.Context, key string) (int64, error) {
	value, err := r.cli.Incr(ctx, key).Result()

	if err != nil {
		return 0, err
	}

	return value, nil
}

func (r *RedisClient) addInHash(ctx context.Context, key string, fieldKey string, fieldValue interface{}) error {
	_, err := r.cli.HSet(ctx, key, fieldKey, fieldValue).Result()

	if err != nil {
		return err
	}

	return nil
}

func (x *TxContainer) removeFromHash(ctx context.Context, key string, field string) *TxContainer {
	x.tx.HDel(ctx, key, field)

	return x
}

func (x *TxContainer) removeFromList(ctx context.Context, key string, value interface{}) *TxContainer {
	x.tx.LRem(ctx, key, -1, value)

	return x
}

func (r *RedisClient) getFromHash(ctx context.Context, key string, field string) (*string, error) {
	value, err := r.cli.HGet(ctx, key, field).Result()

	if err != nil {
		return nil, err
	}

	return &value, err
}

func (r *RedisClient) getAllFromHash(ctx context.Context, key string) (map[string]string, error) {
	values, err := r.cli.HGetAll(ctx, key).Result()

	if err != nil {
		return nil, err
	}

	return values, nil
}

func (r *RedisClient) getListRange(ctx context.Context, key string, offset int64, limit int64) ([]string, error) {
	values, err := r.cli.LRange(ctx, key, offset, offset+limit-1).Result()

	if err != nil {
		return nil, err
	}

	return values, nil
}

func (r *RedisClient) getListLen(ctx context.Context, key string) (int64, error) {
	length, err := r.cli.LLen(ctx, key).Result()

	if err != nil {
		return 0, err
	}

	return length, nil
}

func (r *RedisClient) performTx(ctx context.Context) TxContainer {
	tx := r.cli.TxPipeline()
	return TxContainer{tx: tx}
}

func (x *TxContainer) execTx(ctx context.Context) error {
	_, err := x.tx.Exec(ctx)
	return err
}
