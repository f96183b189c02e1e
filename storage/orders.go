package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nft-settlement-service/models"
	"nft-settlement-service/staticerr"

	redisLib "github.com/redis/go-redis/v9"
)

const (
	ordersHashKey        = "market:orders"
	ordersTokenIndexKey  = "market:orders:token:%s:%s"
	ordersSellerIndexKey = "market:orders:seller:%s"
	ordersLocksKey       = "market:lock:order:"

	orderLockTtl = time.Minute
)

func buildTokenIndexKey(collection string, tokenId string) string {
	return fmt.Sprintf(ordersTokenIndexKey, collection, tokenId)
}

func buildSellerIndexKey(seller string) string {
	return fmt.Sprintf(ordersSellerIndexKey, seller)
}

type OrdersStorage struct {
	client *RedisClient
}

func NewOrdersStorage(client *RedisClient) *OrdersStorage {
	return &OrdersStorage{client: client}
}

// AddOrderToStorage inserts the order record and appends its id to the token
// and seller index lists in one transaction. An already occupied identifier
// fails with ErrorDuplicateOrder and the index appends are compensated, since
// the identifier is a content fingerprint and a collision means the same
// listing was created twice within one sequence value.
func (o *OrdersStorage) AddOrderToStorage(ctx context.Context, orderInfo models.OrderModel) error {
	jsonData, err := json.Marshal(orderInfo)

	if err != nil {
		return err
	}

	tokenKey := buildTokenIndexKey(orderInfo.Collection, orderInfo.TokenId)
	sellerKey := buildSellerIndexKey(orderInfo.Seller)

	tx := o.client.cli.TxPipeline()
	insertCmd := tx.HSetNX(ctx, ordersHashKey, orderInfo.OrderId, jsonData)
	tx.RPush(ctx, tokenKey, orderInfo.OrderId)
	tx.RPush(ctx, sellerKey, orderInfo.OrderId)

	if _, err = tx.Exec(ctx); err != nil {
		return err
	}

	if !insertCmd.Val() {
		rollback := o.client.performTx(ctx)
		if err = rollback.
			removeFromList(ctx, tokenKey, orderInfo.OrderId).
			removeFromList(ctx, sellerKey, orderInfo.OrderId).
			execTx(ctx); err != nil {
			return err
		}

		return staticerr.ErrorDuplicateOrder
	}

	return nil
}

func (o *OrdersStorage) GetOrderFromStorage(ctx context.Context, id string) (*models.OrderModel, error) {
	jsonData, err := o.client.getFromHash(ctx, ordersHashKey, id)

	if err != nil {
		if errors.Is(err, redisLib.Nil) {
			return nil, staticerr.ErrorOrderNotFound
		}
		return nil, err
	}

	var orderInfo models.OrderModel

	if err = json.Unmarshal([]byte(*jsonData), &orderInfo); err != nil {
		return nil, err
	}

	return &orderInfo, nil
}

func (o *OrdersStorage) UpdateOrderInfo(ctx context.Context, orderInfo models.OrderModel) error {
	orderInfo.UpdatedDate = time.Now().UTC().UnixMilli()

	jsonData, err := json.Marshal(orderInfo)

	if err != nil {
		return err
	}

	if err = o.client.addInHash(ctx, ordersHashKey, orderInfo.OrderId, jsonData); err != nil {
		return err
	}

	return nil
}

// DropOrderFromStorage removes a record that never became public. It exists
// only as the compensation step of bulk listing; committed orders are closed
// through their terminal flags and are never removed.
func (o *OrdersStorage) DropOrderFromStorage(ctx context.Context, orderInfo models.OrderModel) error {
	tx := o.client.performTx(ctx)

	err := tx.
		removeFromHash(ctx, ordersHashKey, orderInfo.OrderId).
		removeFromList(ctx, buildTokenIndexKey(orderInfo.Collection, orderInfo.TokenId), orderInfo.OrderId).
		removeFromList(ctx, buildSellerIndexKey(orderInfo.Seller), orderInfo.OrderId).
		execTx(ctx)

	if err != nil {
		return err
	}

	return nil
}

func (o *OrdersStorage) GetTokenOrderIds(ctx context.Context, collection string, tokenId string, offset int64, limit int64) ([]string, error) {
	return o.client.getListRange(ctx, buildTokenIndexKey(collection, tokenId), offset, limit)
}

func (o *OrdersStorage) GetSellerOrderIds(ctx context.Context, seller string, offset int64, limit int64) ([]string, error) {
	return o.client.getListRange(ctx, buildSellerIndexKey(seller), offset, limit)
}

func (o *OrdersStorage) GetTokenOrderCount(ctx context.Context, collection string, tokenId string) (int64, error) {
	return o.client.getListLen(ctx, buildTokenIndexKey(collection, tokenId))
}

func (o *OrdersStorage) GetSellerOrderCount(ctx context.Context, seller string) (int64, error) {
	return o.client.getListLen(ctx, buildSellerIndexKey(seller))
}

// TryLockOrder is the single-entry guard around every operation that performs
// an external custody or payment call for the order. A nested entry observes
// the held lock and fails with ErrorReentrantCall.
func (o *OrdersStorage) TryLockOrder(ctx context.Context, id string, guid string) error {
	return o.client.setNX(ctx, ordersLocksKey+id, guid, orderLockTtl)
}

func (o *OrdersStorage) TryUnlockOrder(ctx context.Context, id string, guid string) error {
	return o.client.deleteWithValue(ctx, ordersLocksKey+id, guid)
}
