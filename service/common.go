package service

import (
	"context"
	"math"

	"nft-settlement-service/models"

	"github.com/sirupsen/logrus"
)

const (
	maxFeeBps     = 1000
	maxRoyaltyBps = 1000

	// prices above this overflow the basis point fee math
	maxOrderPrice = math.MaxUint64 / 10000

	maxExtensionWindow = 7200
	minRecoverGrace    = 7200

	maxPageSize = 100
)

type iOrderStorage interface {
	AddOrderToStorage(ctx context.Context, orderInfo models.OrderModel) error
	GetOrderFromStorage(ctx context.Context, id string) (*models.OrderModel, error)
	UpdateOrderInfo(ctx context.Context, orderInfo models.OrderModel) error
	DropOrderFromStorage(ctx context.Context, orderInfo models.OrderModel) error
	GetTokenOrderIds(ctx context.Context, collection string, tokenId string, offset int64, limit int64) ([]string, error)
	GetSellerOrderIds(ctx context.Context, seller string, offset int64, limit int64) ([]string, error)
	GetTokenOrderCount(ctx context.Context, collection string, tokenId string) (int64, error)
	GetSellerOrderCount(ctx context.Context, seller string) (int64, error)
	TryLockOrder(ctx context.Context, id string, guid string) error
	TryUnlockOrder(ctx context.Context, id string, guid string) error
}

type iMarketConfigStorage interface {
	GetMarketConfig(ctx context.Context) (*models.MarketConfigModel, error)
	GetRoyalty(ctx context.Context, collection string) (uint64, error)
	SetFeeRate(ctx context.Context, feeBps uint64) error
	SetFeeRecipient(ctx context.Context, recipient string) error
	SetExtensionWindow(ctx context.Context, window uint64) error
	SetRecoverGrace(ctx context.Context, grace uint64) error
	SetRoyalty(ctx context.Context, collection string, royaltyBps uint64) error
}

type iAssetRegistry interface {
	TransferAsset(ctx context.Context, collection string, tokenId string, from string, to string) error
	OwnerOf(ctx context.Context, collection string, tokenId string) (string, error)
}

type iPaymentProvider interface {
	Transfer(ctx context.Context, from string, to string, amount uint64) error
}

type iEventSender interface {
	SendMakeOrderEvent(ctx context.Context, event models.MakeOrderEvent) error
	SendBidEvent(ctx context.Context, event models.BidEvent) error
	SendBuyOrderEvent(ctx context.Context, event models.BuyOrderEvent) error
	SendCancelOrderEvent(ctx context.Context, event models.CancelOrderEvent) error
}

type iSequenceProvider interface {
	Current(ctx context.Context) (uint64, error)
}

type iAccessGuard interface {
	IsAdministrator(identity string) bool
}

type payPolicy int

const (
	payMustSucceed payPolicy = iota
	payFallbackToFeeRecipient
)

// disburse is the single push-payment primitive every settlement path goes
// through. With payFallbackToFeeRecipient a refused recipient does not block
// the operation: the amount is rerouted to the fee recipient instead.
func disburse(ctx context.Context, payments iPaymentProvider, from string, to string, amount uint64, policy payPolicy, feeRecipient string) error {
	if amount == 0 {
		return nil
	}

	err := payments.Transfer(ctx, from, to, amount)

	if err == nil {
		return nil
	}

	if policy == payFallbackToFeeRecipient && to != feeRecipient {
		logrus.WithField("recipient", to).Warningln("Payment rejected, reroute to fee recipient, reason: ", err.Error())
		return payments.Transfer(ctx, from, feeRecipient, amount)
	}

	return err
}

func sendEvent(orderId string, send func() error) {
	if err := send(); err != nil {
		logrus.WithField("orderId", orderId).Warningln("Publish event failed, reason: ", err.Error())
	}
}
