package service

import (
	"context"

	"nft-settlement-service/models"
)

// QueryService is the non-mutating read surface: enumeration over the
// append-only registry indices with bounded pages.
type QueryService struct {
	orderStorage iOrderStorage
}

func NewQueryService(orderStorage iOrderStorage) *QueryService {
	return &QueryService{orderStorage: orderStorage}
}

func (q *QueryService) GetOrdersByToken(ctx context.Context, collection string, tokenId string, offset int64, limit int64) ([]models.OrderModel, error) {
	ids, err := q.orderStorage.GetTokenOrderIds(ctx, collection, tokenId, offset, clampPageSize(limit))

	if err != nil {
		return nil, err
	}

	return q.hydrate(ctx, ids)
}

func (q *QueryService) GetOrdersBySeller(ctx context.Context, seller string, offset int64, limit int64) ([]models.OrderModel, error) {
	ids, err := q.orderStorage.GetSellerOrderIds(ctx, seller, offset, clampPageSize(limit))

	if err != nil {
		return nil, err
	}

	return q.hydrate(ctx, ids)
}

func (q *QueryService) GetTokenOrderCount(ctx context.Context, collection string, tokenId string) (int64, error) {
	return q.orderStorage.GetTokenOrderCount(ctx, collection, tokenId)
}

func (q *QueryService) GetSellerOrderCount(ctx context.Context, seller string) (int64, error) {
	return q.orderStorage.GetSellerOrderCount(ctx, seller)
}

func (q *QueryService) hydrate(ctx context.Context, ids []string) ([]models.OrderModel, error) {
	orders := make([]models.OrderModel, 0, len(ids))

	for _, id := range ids {
		orderInfo, err := q.orderStorage.GetOrderFromStorage(ctx, id)

		if err != nil {
			return nil, err
		}

		orders = append(orders, *orderInfo)
	}

	return orders, nil
}

func clampPageSize(limit int64) int64 {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
