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

type ListingService struct {
	orderStorage  iOrderStorage
	assetRegistry iAssetRegistry
	eventSender   iEventSender
	sequence      iSequenceProvider
	escrowAccount string
}

func NewListingService(orderStorage iOrderStorage, assetRegistry iAssetRegistry, eventSender iEventSender, sequence iSequenceProvider, escrowAccount string) *ListingService {
	return &ListingService{
		orderStorage:  orderStorage,
		assetRegistry: assetRegistry,
		eventSender:   eventSender,
		sequence:      sequence,
		escrowAccount: escrowAccount,
	}
}

// ListAsset creates the order record and takes custody of the asset. The
// record is inserted before the custody call; a rejected transfer drops the
// never-published record so no state survives a failed listing.
func (l *ListingService) ListAsset(ctx context.Context, request *models.ListOrderRequest) (string, error) {
	seq, err := l.sequence.Current(ctx)

	if err != nil {
		return "", err
	}

	if err = validateListing(request.Price, request.EndSequence, request.OrderType, seq); err != nil {
		return "", err
	}

	orderInfo, err := l.listOne(ctx, request, seq)

	if err != nil {
		logrus.WithField("requestId", request.Id).Errorln("Listing failed, reason: ", err.Error())
		return "", err
	}

	logrus.WithField("orderId", orderInfo.OrderId).Infoln("Order listed for token ", request.TokenId)

	metrics.OrdersListed.Inc()
	sendEvent(orderInfo.OrderId, func() error {
		return l.eventSender.SendMakeOrderEvent(ctx, utils.MapModelToMakeOrderEvent(orderInfo))
	})

	return orderInfo.OrderId, nil
}

// BulkList lists many tokens of one collection under shared price, deadline
// and order type. The batch is all-or-nothing: a failure on any item returns
// custody of the already escrowed tokens and drops their records.
func (l *ListingService) BulkList(ctx context.Context, request *models.BulkListRequest) ([]string, error) {
	if len(request.TokenIds) == 0 {
		return nil, staticerr.ErrorEmptyBatch
	}

	seq, err := l.sequence.Current(ctx)

	if err != nil {
		return nil, err
	}

	if err = validateListing(request.Price, request.EndSequence, request.OrderType, seq); err != nil {
		return nil, err
	}

	created := make([]models.OrderModel, 0, len(request.TokenIds))

	for _, tokenId := range request.TokenIds {
		itemRequest := &models.ListOrderRequest{
			Id:          request.Id,
			Seller:      request.Seller,
			Collection:  request.Collection,
			TokenId:     tokenId,
			Price:       request.Price,
			EndSequence: request.EndSequence,
			OrderType:   request.OrderType,
		}

		orderInfo, err := l.listOne(ctx, itemRequest, seq)

		if err != nil {
			logrus.WithFields(logrus.Fields{
				"requestId": request.Id,
				"tokenId":   tokenId}).Errorln("Bulk listing failed, roll back batch, reason: ", err.Error())
			l.rollbackListed(ctx, created)
			return nil, err
		}

		created = append(created, orderInfo)
	}

	orderIds := make([]string, 0, len(created))

	for _, orderInfo := range created {
		orderIds = append(orderIds, orderInfo.OrderId)
		metrics.OrdersListed.Inc()

		info := orderInfo
		sendEvent(info.OrderId, func() error {
			return l.eventSender.SendMakeOrderEvent(ctx, utils.MapModelToMakeOrderEvent(info))
		})
	}

	return orderIds, nil
}

func (l *ListingService) listOne(ctx context.Context, request *models.ListOrderRequest, seq uint64) (models.OrderModel, error) {
	orderId := utils.ComputeOrderId(seq, request.Collection, request.TokenId, request.Seller)

	lockId := uuid.NewString()

	if err := l.orderStorage.TryLockOrder(ctx, orderId, lockId); err != nil {
		return models.OrderModel{}, err
	}
	defer l.orderStorage.TryUnlockOrder(ctx, orderId, lockId)

	orderInfo := utils.MapListRequestToModel(request, orderId, seq)

	if err := l.orderStorage.AddOrderToStorage(ctx, orderInfo); err != nil {
		return models.OrderModel{}, err
	}

	if err := l.assetRegistry.TransferAsset(ctx, request.Collection, request.TokenId, request.Seller, l.escrowAccount); err != nil {
		if dropErr := l.orderStorage.DropOrderFromStorage(ctx, orderInfo); dropErr != nil {
			logrus.WithField("orderId", orderId).Errorln("Drop record after custody failure, reason: ", dropErr.Error())
		}
		return models.OrderModel{}, err
	}

	return orderInfo, nil
}

func (l *ListingService) rollbackListed(ctx context.Context, created []models.OrderModel) {
	for _, orderInfo := range created {
		if err := l.assetRegistry.TransferAsset(ctx, orderInfo.Collection, orderInfo.TokenId, l.escrowAccount, orderInfo.Seller); err != nil {
			logrus.WithField("orderId", orderInfo.OrderId).Errorln("Return custody on batch rollback, reason: ", err.Error())
			continue
		}

		if err := l.orderStorage.DropOrderFromStorage(ctx, orderInfo); err != nil {
			logrus.WithField("orderId", orderInfo.OrderId).Errorln("Drop record on batch rollback, reason: ", err.Error())
		}
	}
}

func validateListing(price uint64, endSequence uint64, orderType int, seq uint64) error {
	if orderType != models.OrderTypeFixedPrice && orderType != models.OrderTypeEnglishAuction {
		return staticerr.ErrorWrongOrderType
	}

	if price == 0 || price > maxOrderPrice {
		return staticerr.ErrorInvalidPrice
	}

	if endSequence <= seq {
		return staticerr.ErrorInvalidDeadline
	}

	return nil
}
