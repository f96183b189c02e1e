package service

import (
	"context"
	"errors"
	"testing"

	"nft-settlement-service/models"
	"nft-settlement-service/staticerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type biddingFixture struct {
	biddingService *BiddingService
	orderStorage   *fakeOrderStorage
	payments       *fakePayments
	eventSender    *fakeEventSender
	sequence       *fakeSequence
}

func newBiddingFixture(t *testing.T, orderInfo models.OrderModel, seq uint64) *biddingFixture {
	orderStorage := newFakeOrderStorage()
	require.NoError(t, orderStorage.AddOrderToStorage(context.Background(), orderInfo))

	payments := newFakePayments()
	eventSender := newFakeEventSender()
	sequence := &fakeSequence{value: seq}
	configStorage := newFakeConfigStorage(models.MarketConfigModel{
		FeeBps:          100,
		FeeRecipient:    "treasury",
		ExtensionWindow: 50,
		RecoverGrace:    7200,
	})

	return &biddingFixture{
		biddingService: NewBiddingService(orderStorage, configStorage, payments, eventSender, sequence, testEscrowAccount),
		orderStorage:   orderStorage,
		payments:       payments,
		eventSender:    eventSender,
		sequence:       sequence,
	}
}

func auctionOrder() models.OrderModel {
	return models.OrderModel{
		OrderId:       "auction-1",
		Seller:        "bob",
		Collection:    "punks",
		TokenId:       "17",
		OrderType:     models.OrderTypeEnglishAuction,
		StartPrice:    1000,
		StartSequence: 100,
		EndSequence:   200,
	}
}

func TestBiddingService_PlaceBid_First(t *testing.T) {
	f := newBiddingFixture(t, auctionOrder(), 120)

	err := f.biddingService.PlaceBid(context.Background(), &models.PlaceBidRequest{
		OrderId: "auction-1", Bidder: "carol", Amount: 1000,
	})
	require.NoError(t, err)

	orderInfo, err := f.orderStorage.GetOrderFromStorage(context.Background(), "auction-1")
	require.NoError(t, err)
	assert.Equal(t, "carol", orderInfo.LastBidder)
	assert.Equal(t, uint64(1000), orderInfo.LastBidPrice)
	assert.Equal(t, uint64(200), orderInfo.EndSequence)

	require.Len(t, f.payments.transfers, 1)
	assert.Equal(t, transferRecord{from: "carol", to: testEscrowAccount, amount: 1000}, f.payments.transfers[0])

	require.Len(t, f.eventSender.bidEvents, 1)
	assert.Equal(t, uint64(1000), f.eventSender.bidEvents[0].Amount)
}

func TestBiddingService_PlaceBid_Validation(t *testing.T) {
	fixedPrice := auctionOrder()
	fixedPrice.OrderType = models.OrderTypeFixedPrice

	sold := auctionOrder()
	sold.IsSold = true

	cancelled := auctionOrder()
	cancelled.IsCancelled = true

	outbid := auctionOrder()
	outbid.LastBidder = "carol"
	outbid.LastBidPrice = 1000

	tests := []struct {
		name      string
		orderInfo models.OrderModel
		seq       uint64
		request   *models.PlaceBidRequest
		want      error
	}{
		{
			name:      "not an auction",
			orderInfo: fixedPrice,
			seq:       120,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "carol", Amount: 1000},
			want:      staticerr.ErrorWrongOrderType,
		},
		{
			name:      "already sold",
			orderInfo: sold,
			seq:       120,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "carol", Amount: 1000},
			want:      staticerr.ErrorAlreadySold,
		},
		{
			name:      "already cancelled",
			orderInfo: cancelled,
			seq:       120,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "carol", Amount: 1000},
			want:      staticerr.ErrorAlreadyCancelled,
		},
		{
			name:      "auction ended",
			orderInfo: auctionOrder(),
			seq:       201,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "carol", Amount: 1000},
			want:      staticerr.ErrorAuctionEnded,
		},
		{
			name:      "seller bids on own auction",
			orderInfo: auctionOrder(),
			seq:       120,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "bob", Amount: 1000},
			want:      staticerr.ErrorSelfBid,
		},
		{
			name:      "first bid below reserve",
			orderInfo: auctionOrder(),
			seq:       120,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "carol", Amount: 999},
			want:      staticerr.ErrorBidTooLow,
		},
		{
			name:      "successor bid below five percent increment",
			orderInfo: outbid,
			seq:       120,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "dave", Amount: 1049},
			want:      staticerr.ErrorBidTooLow,
		},
		{
			name:      "bid above fee math cap",
			orderInfo: auctionOrder(),
			seq:       120,
			request:   &models.PlaceBidRequest{OrderId: "auction-1", Bidder: "carol", Amount: maxOrderPrice + 1},
			want:      staticerr.ErrorInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBiddingFixture(t, tt.orderInfo, tt.seq)

			err := f.biddingService.PlaceBid(context.Background(), tt.request)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.payments.transfers)
		})
	}
}

func TestBiddingService_PlaceBid_RefundsOutbidParty(t *testing.T) {
	outbid := auctionOrder()
	outbid.LastBidder = "carol"
	outbid.LastBidPrice = 1000

	f := newBiddingFixture(t, outbid, 120)

	err := f.biddingService.PlaceBid(context.Background(), &models.PlaceBidRequest{
		OrderId: "auction-1", Bidder: "dave", Amount: 1050,
	})
	require.NoError(t, err)

	orderInfo, err := f.orderStorage.GetOrderFromStorage(context.Background(), "auction-1")
	require.NoError(t, err)
	assert.Equal(t, "dave", orderInfo.LastBidder)
	assert.Equal(t, uint64(1050), orderInfo.LastBidPrice)

	require.Len(t, f.payments.transfers, 2)
	assert.Equal(t, transferRecord{from: "dave", to: testEscrowAccount, amount: 1050}, f.payments.transfers[0])
	assert.Equal(t, transferRecord{from: testEscrowAccount, to: "carol", amount: 1000}, f.payments.transfers[1])
}

func TestBiddingService_PlaceBid_AntiSnipeExtension(t *testing.T) {
	// window is 50: a bid at 151 lands inside the closing window of an
	// auction ending at 200, a bid at 150 does not
	tests := []struct {
		name    string
		seq     uint64
		wantEnd uint64
	}{
		{name: "late bid extends deadline", seq: 151, wantEnd: 250},
		{name: "early bid keeps deadline", seq: 150, wantEnd: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBiddingFixture(t, auctionOrder(), tt.seq)

			err := f.biddingService.PlaceBid(context.Background(), &models.PlaceBidRequest{
				OrderId: "auction-1", Bidder: "carol", Amount: 1000,
			})
			require.NoError(t, err)

			orderInfo, err := f.orderStorage.GetOrderFromStorage(context.Background(), "auction-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnd, orderInfo.EndSequence)
		})
	}
}

func TestBiddingService_PlaceBid_EscrowRejected(t *testing.T) {
	f := newBiddingFixture(t, auctionOrder(), 120)
	f.payments.failOn = func(from, to string, amount uint64) error {
		if from == "carol" {
			return staticerr.ErrorPaymentRejected
		}
		return nil
	}

	err := f.biddingService.PlaceBid(context.Background(), &models.PlaceBidRequest{
		OrderId: "auction-1", Bidder: "carol", Amount: 1000,
	})
	assert.ErrorIs(t, err, staticerr.ErrorPaymentRejected)

	orderInfo, err := f.orderStorage.GetOrderFromStorage(context.Background(), "auction-1")
	require.NoError(t, err)
	assert.Empty(t, orderInfo.LastBidder)
	assert.Zero(t, orderInfo.LastBidPrice)
}

func TestBiddingService_PlaceBid_RefundFailureRollsBack(t *testing.T) {
	outbid := auctionOrder()
	outbid.LastBidder = "carol"
	outbid.LastBidPrice = 1000

	f := newBiddingFixture(t, outbid, 120)
	f.payments.failOn = func(from, to string, amount uint64) error {
		if to == "carol" {
			return errors.New("recipient refuses funds")
		}
		return nil
	}

	err := f.biddingService.PlaceBid(context.Background(), &models.PlaceBidRequest{
		OrderId: "auction-1", Bidder: "dave", Amount: 1050,
	})
	assert.ErrorIs(t, err, staticerr.ErrorRefundFailed)

	orderInfo, err := f.orderStorage.GetOrderFromStorage(context.Background(), "auction-1")
	require.NoError(t, err)
	assert.Equal(t, "carol", orderInfo.LastBidder)
	assert.Equal(t, uint64(1000), orderInfo.LastBidPrice)

	// dave got his escrowed bid back
	require.Len(t, f.payments.transfers, 2)
	assert.Equal(t, transferRecord{from: testEscrowAccount, to: "dave", amount: 1050}, f.payments.transfers[1])

	assert.Empty(t, f.eventSender.bidEvents)
}

func TestBiddingService_PlaceBid_Reentrancy(t *testing.T) {
	f := newBiddingFixture(t, auctionOrder(), 120)
	require.NoError(t, f.orderStorage.TryLockOrder(context.Background(), "auction-1", "other-entry"))

	err := f.biddingService.PlaceBid(context.Background(), &models.PlaceBidRequest{
		OrderId: "auction-1", Bidder: "carol", Amount: 1000,
	})
	assert.ErrorIs(t, err, staticerr.ErrorReentrantCall)
}
