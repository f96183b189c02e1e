package service

import (
	"context"
	"fmt"

	"nft-settlement-service/models"
	"nft-settlement-service/staticerr"
)

type fakeOrderStorage struct {
	orders      map[string]models.OrderModel
	tokenIndex  map[string][]string
	sellerIndex map[string][]string
	locks       map[string]string

	failAdd    error
	failUpdate error
}

func newFakeOrderStorage() *fakeOrderStorage {
	return &fakeOrderStorage{
		orders:      make(map[string]models.OrderModel),
		tokenIndex:  make(map[string][]string),
		sellerIndex: make(map[string][]string),
		locks:       make(map[string]string),
	}
}

func tokenIndexKey(collection string, tokenId string) string {
	return fmt.Sprintf("%s:%s", collection, tokenId)
}

func (f *fakeOrderStorage) AddOrderToStorage(ctx context.Context, orderInfo models.OrderModel) error {
	if f.failAdd != nil {
		return f.failAdd
	}

	if _, ok := f.orders[orderInfo.OrderId]; ok {
		return staticerr.ErrorDuplicateOrder
	}

	f.orders[orderInfo.OrderId] = orderInfo
	key := tokenIndexKey(orderInfo.Collection, orderInfo.TokenId)
	f.tokenIndex[key] = append(f.tokenIndex[key], orderInfo.OrderId)
	f.sellerIndex[orderInfo.Seller] = append(f.sellerIndex[orderInfo.Seller], orderInfo.OrderId)
	return nil
}

func (f *fakeOrderStorage) GetOrderFromStorage(ctx context.Context, id string) (*models.OrderModel, error) {
	orderInfo, ok := f.orders[id]

	if !ok {
		return nil, staticerr.ErrorOrderNotFound
	}

	return &orderInfo, nil
}

func (f *fakeOrderStorage) UpdateOrderInfo(ctx context.Context, orderInfo models.OrderModel) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}

	f.orders[orderInfo.OrderId] = orderInfo
	return nil
}

func (f *fakeOrderStorage) DropOrderFromStorage(ctx context.Context, orderInfo models.OrderModel) error {
	delete(f.orders, orderInfo.OrderId)
	key := tokenIndexKey(orderInfo.Collection, orderInfo.TokenId)
	f.tokenIndex[key] = dropLast(f.tokenIndex[key], orderInfo.OrderId)
	f.sellerIndex[orderInfo.Seller] = dropLast(f.sellerIndex[orderInfo.Seller], orderInfo.OrderId)
	return nil
}

func dropLast(ids []string, id string) []string {
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (f *fakeOrderStorage) GetTokenOrderIds(ctx context.Context, collection string, tokenId string, offset int64, limit int64) ([]string, error) {
	return pageIds(f.tokenIndex[tokenIndexKey(collection, tokenId)], offset, limit), nil
}

func (f *fakeOrderStorage) GetSellerOrderIds(ctx context.Context, seller string, offset int64, limit int64) ([]string, error) {
	return pageIds(f.sellerIndex[seller], offset, limit), nil
}

func pageIds(ids []string, offset int64, limit int64) []string {
	if offset >= int64(len(ids)) {
		return nil
	}

	end := offset + limit
	if end > int64(len(ids)) {
		end = int64(len(ids))
	}

	return ids[offset:end]
}

func (f *fakeOrderStorage) GetTokenOrderCount(ctx context.Context, collection string, tokenId string) (int64, error) {
	return int64(len(f.tokenIndex[tokenIndexKey(collection, tokenId)])), nil
}

func (f *fakeOrderStorage) GetSellerOrderCount(ctx context.Context, seller string) (int64, error) {
	return int64(len(f.sellerIndex[seller])), nil
}

func (f *fakeOrderStorage) TryLockOrder(ctx context.Context, id string, guid string) error {
	if _, ok := f.locks[id]; ok {
		return staticerr.ErrorReentrantCall
	}

	f.locks[id] = guid
	return nil
}

func (f *fakeOrderStorage) TryUnlockOrder(ctx context.Context, id string, guid string) error {
	if f.locks[id] != guid {
		return staticerr.ErrorReentrantCall
	}

	delete(f.locks, id)
	return nil
}

type fakeConfigStorage struct {
	config    models.MarketConfigModel
	royalties map[string]uint64
}

func newFakeConfigStorage(config models.MarketConfigModel) *fakeConfigStorage {
	return &fakeConfigStorage{config: config, royalties: make(map[string]uint64)}
}

func (f *fakeConfigStorage) GetMarketConfig(ctx context.Context) (*models.MarketConfigModel, error) {
	configInfo := f.config
	return &configInfo, nil
}

func (f *fakeConfigStorage) GetRoyalty(ctx context.Context, collection string) (uint64, error) {
	return f.royalties[collection], nil
}

func (f *fakeConfigStorage) SetFeeRate(ctx context.Context, feeBps uint64) error {
	f.config.FeeBps = feeBps
	return nil
}

func (f *fakeConfigStorage) SetFeeRecipient(ctx context.Context, recipient string) error {
	f.config.FeeRecipient = recipient
	return nil
}

func (f *fakeConfigStorage) SetExtensionWindow(ctx context.Context, window uint64) error {
	f.config.ExtensionWindow = window
	return nil
}

func (f *fakeConfigStorage) SetRecoverGrace(ctx context.Context, grace uint64) error {
	f.config.RecoverGrace = grace
	return nil
}

func (f *fakeConfigStorage) SetRoyalty(ctx context.Context, collection string, royaltyBps uint64) error {
	f.royalties[collection] = royaltyBps
	return nil
}

type fakeAssetRegistry struct {
	owners map[string]string
}

func newFakeAssetRegistry() *fakeAssetRegistry {
	return &fakeAssetRegistry{owners: make(map[string]string)}
}

func (f *fakeAssetRegistry) setOwner(collection string, tokenId string, owner string) {
	f.owners[tokenIndexKey(collection, tokenId)] = owner
}

func (f *fakeAssetRegistry) TransferAsset(ctx context.Context, collection string, tokenId string, from string, to string) error {
	key := tokenIndexKey(collection, tokenId)

	if f.owners[key] != from {
		return staticerr.ErrorTransferRejected
	}

	f.owners[key] = to
	return nil
}

func (f *fakeAssetRegistry) OwnerOf(ctx context.Context, collection string, tokenId string) (string, error) {
	owner, ok := f.owners[tokenIndexKey(collection, tokenId)]

	if !ok {
		return "", staticerr.ErrorTransferRejected
	}

	return owner, nil
}

type transferRecord struct {
	from   string
	to     string
	amount uint64
}

type fakePayments struct {
	transfers []transferRecord
	failOn    func(from string, to string, amount uint64) error
}

func newFakePayments() *fakePayments {
	return &fakePayments{}
}

func (f *fakePayments) Transfer(ctx context.Context, from string, to string, amount uint64) error {
	if f.failOn != nil {
		if err := f.failOn(from, to, amount); err != nil {
			return err
		}
	}

	f.transfers = append(f.transfers, transferRecord{from: from, to: to, amount: amount})
	return nil
}

type fakeEventSender struct {
	makeOrderEvents   []models.MakeOrderEvent
	bidEvents         []models.BidEvent
	buyOrderEvents    []models.BuyOrderEvent
	cancelOrderEvents []models.CancelOrderEvent
}

func newFakeEventSender() *fakeEventSender {
	return &fakeEventSender{}
}

func (f *fakeEventSender) SendMakeOrderEvent(ctx context.Context, event models.MakeOrderEvent) error {
	f.makeOrderEvents = append(f.makeOrderEvents, event)
	return nil
}

func (f *fakeEventSender) SendBidEvent(ctx context.Context, event models.BidEvent) error {
	f.bidEvents = append(f.bidEvents, event)
	return nil
}

func (f *fakeEventSender) SendBuyOrderEvent(ctx context.Context, event models.BuyOrderEvent) error {
	f.buyOrderEvents = append(f.buyOrderEvents, event)
	return nil
}

func (f *fakeEventSender) SendCancelOrderEvent(ctx context.Context, event models.CancelOrderEvent) error {
	f.cancelOrderEvents = append(f.cancelOrderEvents, event)
	return nil
}

type fakeSequence struct {
	value uint64
}

func (f *fakeSequence) Current(ctx context.Context) (uint64, error) {
	return f.value, nil
}
