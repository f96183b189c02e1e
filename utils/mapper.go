package utils

import (
	"time"

	"nft-settlement-service/models"
)

func MapListRequestToModel(request *models.ListOrderRequest, orderId string, sequence uint64) models.OrderModel {
	return models.OrderModel{
		OrderId:       orderId,
		Seller:        request.Seller,
		Collection:    request.Collection,
		TokenId:       request.TokenId,
		OrderType:     request.OrderType,
		StartPrice:    request.Price,
		StartSequence: sequence,
		EndSequence:   request.EndSequence,
		CreationDate:  time.Now().UTC().UnixMilli(),
		UpdatedDate:   time.Now().UTC().UnixMilli(),
	}
}

func MapModelToMakeOrderEvent(orderInfo models.OrderModel) models.MakeOrderEvent {
	return models.MakeOrderEvent{
		OrderId:       orderInfo.OrderId,
		Collection:    orderInfo.Collection,
		TokenId:       orderInfo.TokenId,
		Seller:        orderInfo.Seller,
		OrderType:     orderInfo.OrderType,
		Price:         orderInfo.StartPrice,
		StartSequence: orderInfo.StartSequence,
		EndSequence:   orderInfo.EndSequence,
		EmittedDate:   time.Now().UTC().UnixMilli(),
	}
}

func MapModelToBidEvent(orderInfo models.OrderModel) models.BidEvent {
	return models.BidEvent{
		OrderId:     orderInfo.OrderId,
		Collection:  orderInfo.Collection,
		TokenId:     orderInfo.TokenId,
		Bidder:      orderInfo.LastBidder,
		Amount:      orderInfo.LastBidPrice,
		EndSequence: orderInfo.EndSequence,
		EmittedDate: time.Now().UTC().UnixMilli(),
	}
}

func MapModelToBuyOrderEvent(orderInfo models.OrderModel, taker string, price uint64, fee uint64) models.BuyOrderEvent {
	return models.BuyOrderEvent{
		OrderId:     orderInfo.OrderId,
		Collection:  orderInfo.Collection,
		TokenId:     orderInfo.TokenId,
		Seller:      orderInfo.Seller,
		Taker:       taker,
		Price:       price,
		Fee:         fee,
		EmittedDate: time.Now().UTC().UnixMilli(),
	}
}

func MapModelToCancelOrderEvent(orderInfo models.OrderModel) models.CancelOrderEvent {
	return models.CancelOrderEvent{
		OrderId:     orderInfo.OrderId,
		Collection:  orderInfo.Collection,
		TokenId:     orderInfo.TokenId,
		Seller:      orderInfo.Seller,
		EmittedDate: time.Now().UTC().UnixMilli(),
	}
}
