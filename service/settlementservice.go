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

const (
	settlementKindBuy   = "buy"
	settlementKindClaim = "claim"
)

type SettlementService struct {
	orderStorage  iOrderStorage
	configStorage iMarketConfigStorage
	assetRegistry iAssetRegistry
	payments      iPaymentProvider
	eventSender   iEventSender
	sequence      iSequenceProvider
	escrowAccount string
}

func NewSettlementService(orderStorage iOrderStorage, configStorage iMarketConfigStorage, assetRegistry iAssetRegistry, payments iPaymentProvider, eventSender iEventSender, sequence iSequenceProvider, escrowAccount string) *SettlementService {
	return &SettlementService{
		orderStorage:  orderStorage,
		configStorage: configStorage,
		assetRegistry: assetRegistry,
		payments:      payments,
		eventSender:   eventSender,
		sequence:      sequence,
		escrowAccount: escrowAccount,
	}
}

// Buy settles a fixed price order. The payment must match the price exactly;
// overpayment is rejected, not refunded. The sold flag is committed before any
// funds move, so a reentrant call observes AlreadySold.
func (s *SettlementService) Buy(ctx context.Context, request *models.BuyOrderRequest) error {
	return s.withOrderLock(ctx, request.OrderId, func() error {
		return s.buyLocked(ctx, request.OrderId, request.Buyer, request.Payment)
	})
}

// BulkBuy settles many fixed price orders under one aggregate payment. The
// aggregate must cover the sum of current prices up front; settlement is then
// per item isolated: a failure stops the batch but already settled items stay
// committed. A duplicate id fails its second occurrence with AlreadySold.
func (s *SettlementService) BulkBuy(ctx context.Context, request *models.BulkBuyRequest) error {
	if len(request.OrderIds) == 0 {
		return staticerr.ErrorEmptyBatch
	}

	var total uint64

	for _, orderId := range request.OrderIds {
		orderInfo, err := s.orderStorage.GetOrderFromStorage(ctx, orderId)

		if err != nil {
			return err
		}

		// records created before the price cap existed may carry amounts
		// whose sum wraps; a wrapped aggregate must not pass the funds check
		next := total + orderInfo.StartPrice
		if next < total {
			return staticerr.ErrorInsufficientFunds
		}

		total = next
	}

	if request.Payment < total {
		return staticerr.ErrorInsufficientFunds
	}

	for _, orderId := range request.OrderIds {
		id := orderId

		err := s.withOrderLock(ctx, id, func() error {
			orderInfo, err := s.orderStorage.GetOrderFromStorage(ctx, id)

			if err != nil {
				return err
			}

			return s.buyLocked(ctx, id, request.Buyer, orderInfo.StartPrice)
		})

		if err != nil {
			logrus.WithFields(logrus.Fields{
				"requestId": request.Id,
				"orderId":   id}).Errorln("Bulk buy stopped, reason: ", err.Error())
			return err
		}
	}

	return nil
}

// Claim settles an ended auction. Either side may call it so a
// non-cooperative counterpart cannot block settlement.
func (s *SettlementService) Claim(ctx context.Context, request *models.ClaimOrderRequest) error {
	return s.withOrderLock(ctx, request.OrderId, func() error {
		return s.claimLocked(ctx, request.OrderId, request.Caller)
	})
}

// BulkClaim applies Claim per item and stops on the first failure; completed
// settlements stay committed since their disbursements cannot be recalled.
func (s *SettlementService) BulkClaim(ctx context.Context, request *models.BulkClaimRequest) error {
	if len(request.OrderIds) == 0 {
		return staticerr.ErrorEmptyBatch
	}

	for _, orderId := range request.OrderIds {
		id := orderId

		err := s.withOrderLock(ctx, id, func() error {
			return s.claimLocked(ctx, id, request.Caller)
		})

		if err != nil {
			logrus.WithFields(logrus.Fields{
				"requestId": request.Id,
				"orderId":   id}).Errorln("Bulk claim stopped, reason: ", err.Error())
			return err
		}
	}

	return nil
}

func (s *SettlementService) buyLocked(ctx context.Context, orderId string, buyer string, payment uint64) error {
	orderInfo, err := s.orderStorage.GetOrderFromStorage(ctx, orderId)

	if err != nil {
		return err
	}

	if orderInfo.OrderType != models.OrderTypeFixedPrice {
		return staticerr.ErrorWrongOrderType
	}

	if orderInfo.IsSold {
		return staticerr.ErrorAlreadySold
	}

	if orderInfo.IsCancelled {
		return staticerr.ErrorAlreadyCancelled
	}

	seq, err := s.sequence.Current(ctx)

	if err != nil {
		return err
	}

	if seq > orderInfo.EndSequence {
		return staticerr.ErrorOrderExpired
	}

	price := orderInfo.StartPrice

	if payment != price {
		return staticerr.ErrorPriceMismatch
	}

	configInfo, err := s.configStorage.GetMarketConfig(ctx)

	if err != nil {
		return err
	}

	royalty, err := s.configStorage.GetRoyalty(ctx, orderInfo.Collection)

	if err != nil {
		return err
	}

	fee := utils.CalculateFee(price, configInfo.FeeBps, royalty)

	orderInfo.IsSold = true

	if err = s.orderStorage.UpdateOrderInfo(ctx, *orderInfo); err != nil {
		return err
	}

	// collect the full price into escrow before splitting it, so a failed
	// split leg can be compensated from one place
	if err = s.payments.Transfer(ctx, buyer, s.escrowAccount, price); err != nil {
		s.unmarkSold(ctx, *orderInfo)
		return staticerr.ErrorPaymentRejected
	}

	if err = disburse(ctx, s.payments, s.escrowAccount, configInfo.FeeRecipient, fee, payMustSucceed, configInfo.FeeRecipient); err != nil {
		logrus.WithField("orderId", orderId).Errorln("Fee transfer failed, reason: ", err.Error())
		s.unmarkSold(ctx, *orderInfo)
		s.returnEscrow(ctx, orderId, buyer, price)
		return staticerr.ErrorFeeTransferFailed
	}

	if err = disburse(ctx, s.payments, s.escrowAccount, orderInfo.Seller, price-fee, payFallbackToFeeRecipient, configInfo.FeeRecipient); err != nil {
		// the fee recipient accepted the fee leg moments ago but refuses
		// the fallback: only the seller share is still recoverable, the
		// fee portion needs manual reconciliation
		logrus.WithField("orderId", orderId).Errorln("Seller payout and fallback both failed, reason: ", err.Error())
		s.unmarkSold(ctx, *orderInfo)
		s.returnEscrow(ctx, orderId, buyer, price-fee)
		return staticerr.ErrorFeeTransferFailed
	}

	if err = s.assetRegistry.TransferAsset(ctx, orderInfo.Collection, orderInfo.TokenId, s.escrowAccount, buyer); err != nil {
		logrus.WithField("orderId", orderId).Errorln("Custody release to buyer failed after disbursement, reason: ", err.Error())
		return err
	}

	logrus.WithField("orderId", orderId).Infoln("Order bought by ", buyer)

	metrics.OrdersSettled.WithLabelValues(settlementKindBuy).Inc()
	sendEvent(orderId, func() error {
		return s.eventSender.SendBuyOrderEvent(ctx, utils.MapModelToBuyOrderEvent(*orderInfo, buyer, price, fee))
	})

	return nil
}

func (s *SettlementService) claimLocked(ctx context.Context, orderId string, caller string) error {
	orderInfo, err := s.orderStorage.GetOrderFromStorage(ctx, orderId)

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

	if caller != orderInfo.Seller && caller != orderInfo.LastBidder {
		return staticerr.ErrorNotParticipant
	}

	if orderInfo.LastBidPrice == 0 {
		return staticerr.ErrorNoBids
	}

	seq, err := s.sequence.Current(ctx)

	if err != nil {
		return err
	}

	if seq <= orderInfo.EndSequence {
		return staticerr.ErrorAuctionNotEnded
	}

	configInfo, err := s.configStorage.GetMarketConfig(ctx)

	if err != nil {
		return err
	}

	royalty, err := s.configStorage.GetRoyalty(ctx, orderInfo.Collection)

	if err != nil {
		return err
	}

	price := orderInfo.LastBidPrice
	fee := utils.CalculateFee(price, configInfo.FeeBps, royalty)

	orderInfo.IsSold = true

	if err = s.orderStorage.UpdateOrderInfo(ctx, *orderInfo); err != nil {
		return err
	}

	// custody moves before the bid funds are split: if the winner cannot
	// receive the asset the claim rolls back and the order stays active,
	// keeping the emergency recovery path reachable
	if err = s.assetRegistry.TransferAsset(ctx, orderInfo.Collection, orderInfo.TokenId, s.escrowAccount, orderInfo.LastBidder); err != nil {
		s.unmarkSold(ctx, *orderInfo)
		return err
	}

	if err = s.disburseSettlement(ctx, orderInfo, price, fee, configInfo.FeeRecipient); err != nil {
		logrus.WithField("orderId", orderId).Errorln("Disbursement failed after custody release, reason: ", err.Error())
		return err
	}

	logrus.WithField("orderId", orderId).Infoln("Auction claimed for bidder ", orderInfo.LastBidder)

	metrics.OrdersSettled.WithLabelValues(settlementKindClaim).Inc()
	sendEvent(orderId, func() error {
		return s.eventSender.SendBuyOrderEvent(ctx, utils.MapModelToBuyOrderEvent(*orderInfo, orderInfo.LastBidder, price, fee))
	})

	return nil
}

// disburseSettlement splits escrowed settlement funds: the platform fee must
// reach the fee recipient or the whole settlement fails; the seller share may
// fall back to the fee recipient so a seller refusing payment cannot block a
// valid settlement.
func (s *SettlementService) disburseSettlement(ctx context.Context, orderInfo *models.OrderModel, price uint64, fee uint64, feeRecipient string) error {
	if err := disburse(ctx, s.payments, s.escrowAccount, feeRecipient, fee, payMustSucceed, feeRecipient); err != nil {
		logrus.WithField("orderId", orderInfo.OrderId).Errorln("Fee transfer failed, reason: ", err.Error())
		return staticerr.ErrorFeeTransferFailed
	}

	if err := disburse(ctx, s.payments, s.escrowAccount, orderInfo.Seller, price-fee, payFallbackToFeeRecipient, feeRecipient); err != nil {
		logrus.WithField("orderId", orderInfo.OrderId).Errorln("Seller payout and fallback both failed, reason: ", err.Error())
		return staticerr.ErrorFeeTransferFailed
	}

	return nil
}

func (s *SettlementService) unmarkSold(ctx context.Context, orderInfo models.OrderModel) {
	orderInfo.IsSold = false

	if err := s.orderStorage.UpdateOrderInfo(ctx, orderInfo); err != nil {
		logrus.WithField("orderId", orderInfo.OrderId).Errorln("Restore unsold state, reason: ", err.Error())
	}
}

func (s *SettlementService) returnEscrow(ctx context.Context, orderId string, to string, amount uint64) {
	if err := s.payments.Transfer(ctx, s.escrowAccount, to, amount); err != nil {
		logrus.WithField("orderId", orderId).Errorln("Return escrowed payment, reason: ", err.Error())
	}
}

func (s *SettlementService) withOrderLock(ctx context.Context, orderId string, fn func() error) error {
	lockId := uuid.NewString()

	if err := s.orderStorage.TryLockOrder(ctx, orderId, lockId); err != nil {
		return err
	}
	defer s.orderStorage.TryUnlockOrder(ctx, orderId, lockId)

	return fn()
}
