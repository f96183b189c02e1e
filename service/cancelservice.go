package service

import (
	"context"

	"nft-settlement-service/metrics"
	"nft-settlement-service/models"
	"nft-settlement-service/staticerr"
	"nft-settlement-service/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CancellationService struct {
	orderStorage  iOrderStorage
	configStorage iMarketConfigStorage
	assetRegistry iAssetRegistry
	payments      iPaymentProvider
	eventSender   iEventSender
	sequence      iSequenceProvider
	accessGuard   iAccessGuard
	escrowAccount string
}

func NewCancellationService(orderStorage iOrderStorage, configStorage iMarketConfigStorage, assetRegistry iAssetRegistry, payments iPaymentProvider, eventSender iEventSender, sequence iSequenceProvider, accessGuard iAccessGuard, escrowAccount string) *CancellationService {
	return &CancellationService{
		orderStorage:  orderStorage,
		configStorage: configStorage,
		assetRegistry: assetRegistry,
		payments:      payments,
		eventSender:   eventSender,
		sequence:      sequence,
		accessGuard:   accessGuard,
		escrowAccount: escrowAccount,
	}
}

// CancelOrder returns custody to the seller. Once any bid exists cancellation
// is blocked for good; the auction can only end through Claim or, for stuck
// auctions, through EmergencyRecover.
func (c *CancellationService) CancelOrder(ctx context.Context, request *models.CancelOrderRequest) error {
	lockId := uuid.NewString()

	if err := c.orderStorage.TryLockOrder(ctx, request.OrderId, lockId); err != nil {
		return err
	}
	defer c.orderStorage.TryUnlockOrder(ctx, request.OrderId, lockId)

	orderInfo, err := c.orderStorage.GetOrderFromStorage(ctx, request.OrderId)

	if err != nil {
		return err
	}

	if request.Caller != orderInfo.Seller {
		return staticerr.ErrorNotSeller
	}

	if orderInfo.IsSold {
		return staticerr.ErrorAlreadySold
	}

	if orderInfo.IsCancelled {
		return staticerr.ErrorAlreadyCancelled
	}

	if orderInfo.LastBidPrice > 0 {
		return staticerr.ErrorBiddingExists
	}

	orderInfo.IsCancelled = true

	if err = c.orderStorage.UpdateOrderInfo(ctx, *orderInfo); err != nil {
		return err
	}

	if err = c.assetRegistry.TransferAsset(ctx, orderInfo.Collection, orderInfo.TokenId, c.escrowAccount, orderInfo.Seller); err != nil {
		c.unmarkCancelled(ctx, *orderInfo)
		return err
	}

	logrus.WithField("orderId", request.OrderId).Infoln("Order cancelled by seller")

	metrics.OrdersCancelled.Inc()
	sendEvent(orderInfo.OrderId, func() error {
		return c.eventSender.SendCancelOrderEvent(ctx, utils.MapModelToCancelOrderEvent(*orderInfo))
	})

	return nil
}

// EmergencyRecover frees an auctioned asset whose settlement transfer is
// permanently rejected by the winner. Administrators only, and only once the
// clock is past the deadline by the configured grace margin, so the path
// cannot preempt a normal claim. The asset returns to the seller and the last
// bid is refunded, falling back to the fee recipient rather than losing it.
func (c *CancellationService) EmergencyRecover(ctx context.Context, request *models.EmergencyRecoverRequest) error {
	if !c.accessGuard.IsAdministrator(request.Caller) {
		return staticerr.ErrorNotAdministrator
	}

	lockId := uuid.NewString()

	if err := c.orderStorage.TryLockOrder(ctx, request.OrderId, lockId); err != nil {
		return err
	}
	defer c.orderStorage.TryUnlockOrder(ctx, request.OrderId, lockId)

	orderInfo, err := c.orderStorage.GetOrderFromStorage(ctx, request.OrderId)

	if err != nil {
		return err
	}

	if orderInfo.OrderType != models.OrderTypeEnglishAuction {
		return staticerr.ErrorWrongOrderType
	}

	if orderInfo.IsSold {
		return staticerr.ErrorAlreadySold
	}

	if orderInfo.IsCancelled {
		return staticerr.ErrorAlreadyCancelled
	}

	if orderInfo.LastBidPrice == 0 {
		return staticerr.ErrorNoBids
	}

	seq, err := c.sequence.Current(ctx)

	if err != nil {
		return err
	}

	configInfo, err := c.configStorage.GetMarketConfig(ctx)

	if err != nil {
		return err
	}

	if seq <= orderInfo.EndSequence+configInfo.RecoverGrace {
		return staticerr.ErrorGracePeriodActive
	}

	orderInfo.IsCancelled = true

	if err = c.orderStorage.UpdateOrderInfo(ctx, *orderInfo); err != nil {
		return err
	}

	if err = c.assetRegistry.TransferAsset(ctx, orderInfo.Collection, orderInfo.TokenId, c.escrowAccount, orderInfo.Seller); err != nil {
		c.unmarkCancelled(ctx, *orderInfo)
		return err
	}

	if err = disburse(ctx, c.payments, c.escrowAccount, orderInfo.LastBidder, orderInfo.LastBidPrice, payFallbackToFeeRecipient, configInfo.FeeRecipient); err != nil {
		logrus.WithField("orderId", request.OrderId).Errorln("Bidder refund and fallback both failed, reason: ", err.Error())
		return staticerr.ErrorFeeTransferFailed
	}

	logrus.WithField("orderId", request.OrderId).Infoln("Stuck auction recovered for seller ", orderInfo.Seller)

	metrics.EmergencyRecoveries.Inc()
	sendEvent(orderInfo.OrderId, func() error {
		return c.eventSender.SendCancelOrderEvent(ctx, utils.MapModelToCancelOrderEvent(*orderInfo))
	})

	return nil
}

func (c *CancellationService) unmarkCancelled(ctx context.Context, orderInfo models.OrderModel) {
	orderInfo.IsCancelled = false

	if err := c.orderStorage.UpdateOrderInfo(ctx, orderInfo); err != nil {
		logrus.WithField("orderId", orderInfo.OrderId).Errorln("Restore active state, reason: ", err.Error())
	}
}
