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

type BiddingService struct {
	orderStorage  iOrderStorage
	configStorage iMarketConfigStorage
	payments      iPaymentProvider
	eventSender   iEventSender
	sequence      iSequenceProvider
	escrowAccount string
}

func NewBiddingService(orderStorage iOrderStorage, configStorage iMarketConfigStorage, payments iPaymentProvider, eventSender iEventSender, sequence iSequenceProvider, escrowAccount string) *BiddingService {
	return &BiddingService{
		orderStorage:  orderStorage,
		configStorage: configStorage,
		payments:      payments,
		eventSender:   eventSender,
		sequence:      sequence,
		escrowAccount: escrowAccount,
	}
}

// PlaceBid validates and records an auction bid. The new bid amount is
// escrowed before any state changes; the previous bidder is refunded in full
// after the record is committed. A failed refund rolls the record back to its
// prior image and surrenders the new bid, keeping funds safe at the cost of
// auction liveness.
func (b *BiddingService) PlaceBid(ctx context.Context, request *models.PlaceBidRequest) error {
	lockId := uuid.NewString()

	if err := b.orderStorage.TryLockOrder(ctx, request.OrderId, lockId); err != nil {
		return err
	}
	defer b.orderStorage.TryUnlockOrder(ctx, request.OrderId, lockId)

	orderInfo, err := b.orderStorage.GetOrderFromStorage(ctx, request.OrderId)

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

	seq, err := b.sequence.Current(ctx)

	if err != nil {
		return err
	}

	if seq > orderInfo.EndSequence {
		return staticerr.ErrorAuctionEnded
	}

	if request.Bidder == orderInfo.Seller {
		return staticerr.ErrorSelfBid
	}

	if err = validateBidAmount(orderInfo, request.Amount); err != nil {
		return err
	}

	configInfo, err := b.configStorage.GetMarketConfig(ctx)

	if err != nil {
		return err
	}

	if err = b.payments.Transfer(ctx, request.Bidder, b.escrowAccount, request.Amount); err != nil {
		logrus.WithField("orderId", request.OrderId).Warningln("Bid escrow rejected, reason: ", err.Error())
		return staticerr.ErrorPaymentRejected
	}

	prior := *orderInfo

	orderInfo.LastBidder = request.Bidder
	orderInfo.LastBidPrice = request.Amount

	// anti-snipe: a bid landing inside the closing window pushes the
	// deadline out by exactly one window
	if seq+configInfo.ExtensionWindow > orderInfo.EndSequence {
		orderInfo.EndSequence += configInfo.ExtensionWindow
	}

	if err = b.orderStorage.UpdateOrderInfo(ctx, *orderInfo); err != nil {
		b.refundEscrow(ctx, request.OrderId, request.Bidder, request.Amount)
		return err
	}

	if prior.LastBidPrice > 0 {
		if err = b.payments.Transfer(ctx, b.escrowAccount, prior.LastBidder, prior.LastBidPrice); err != nil {
			logrus.WithField("orderId", request.OrderId).Errorln("Refund of outbid party failed, roll back bid, reason: ", err.Error())

			if rollbackErr := b.orderStorage.UpdateOrderInfo(ctx, prior); rollbackErr != nil {
				logrus.WithField("orderId", request.OrderId).Errorln("Restore prior bid state, reason: ", rollbackErr.Error())
			}
			b.refundEscrow(ctx, request.OrderId, request.Bidder, request.Amount)

			return staticerr.ErrorRefundFailed
		}
	}

	logrus.WithFields(logrus.Fields{
		"orderId": request.OrderId,
		"bidder":  request.Bidder}).Infoln("Bid accepted with amount ", request.Amount)

	metrics.BidsAccepted.Inc()
	sendEvent(orderInfo.OrderId, func() error {
		return b.eventSender.SendBidEvent(ctx, utils.MapModelToBidEvent(*orderInfo))
	})

	return nil
}

func (b *BiddingService) refundEscrow(ctx context.Context, orderId string, bidder string, amount uint64) {
	if err := b.payments.Transfer(ctx, b.escrowAccount, bidder, amount); err != nil {
		logrus.WithField("orderId", orderId).Errorln("Return escrowed bid, reason: ", err.Error())
	}
}

func validateBidAmount(orderInfo *models.OrderModel, amount uint64) error {
	if amount > maxOrderPrice {
		return staticerr.ErrorInvalidPrice
	}

	if orderInfo.LastBidPrice == 0 {
		if amount == 0 || amount < orderInfo.StartPrice {
			return staticerr.ErrorBidTooLow
		}
		return nil
	}

	if amount < utils.MinNextBid(orderInfo.LastBidPrice) {
		return staticerr.ErrorBidTooLow
	}

	return nil
}
