package storage

import (
	"context"
	"strconv"

	"nft-settlement-service/staticerr"

	redisLib "github.com/redis/go-redis/v9"
)

const ledgerHashKey = "market:ledger"

// LedgerStorage is a reference implementation of the payment collaborator: a
// redis-backed balance ledger with push transfers. Deployments settling real
// funds replace it with a client to the payment service.
type LedgerStorage struct {
	client *RedisClient
}

func NewLedgerStorage(client *RedisClient) *LedgerStorage {
	return &LedgerStorage{client: client}
}

func (l *LedgerStorage) Transfer(ctx context.Context, from string, to string, amount uint64) error {
	return l.client.cli.Watch(ctx, func(tx *redisLib.Tx) error {
		balance, err := tx.HGet(ctx, ledgerHashKey, from).Uint64()

		if err != nil && err != redisLib.Nil {
			return err
		}

		if balance < amount {
			return staticerr.ErrorPaymentRejected
		}

		_, err = tx.TxPipelined(ctx, func(pipe redisLib.Pipeliner) error {
			pipe.HIncrBy(ctx, ledgerHashKey, from, -int64(amount))
			pipe.HIncrBy(ctx, ledgerHashKey, to, int64(amount))
			return nil
		})

		return err
	}, ledgerHashKey)
}

func (l *LedgerStorage) GetBalance(ctx context.Context, account string) (uint64, error) {
	balance, err := l.client.cli.HGet(ctx, ledgerHashKey, account).Result()

	if err != nil {
		if err == redisLib.Nil {
			return 0, nil
		}
		return 0, err
	}

	return strconv.ParseUint(balance, 10, 64)
}

func (l *LedgerStorage) Deposit(ctx context.Context, account string, amount uint64) error {
	_, err := l.client.cli.HIncrBy(ctx, ledgerHashKey, account, int64(amount)).Result()
	return err
}
