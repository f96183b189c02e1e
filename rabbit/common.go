package rabbit

import (
	"time"

	"nft-settlement-service/staticerr"

	"github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "market.events"

	RoutingKeyMakeOrder   = "market.order.make"
	RoutingKeyBid         = "market.order.bid"
	RoutingKeyBuyOrder    = "market.order.buy"
	RoutingKeyCancelOrder = "market.order.cancel"

	ListQueue      = "market.list"
	BulkListQueue  = "market.list.bulk"
	BidQueue       = "market.bid"
	BuyQueue       = "market.buy"
	BulkBuyQueue   = "market.buy.bulk"
	ClaimQueue     = "market.claim"
	BulkClaimQueue = "market.claim.bulk"
	CancelQueue    = "market.cancel"
	RecoverQueue   = "market.recover"
	AdminQueue     = "market.admin"
)

func GetRabbitConnection(connectionString string) (*amqp091.Connection, error) {
	timeout := time.After(time.Minute * 5)
	for {
		select {
		case <-timeout:
			return nil, staticerr.ErrorRabbitConnectionFail
		default:
			connect, err := amqp091.Dial(connectionString)

			if err != nil {
				time.Sleep(time.Millisecond * 100)
				continue
			}

			return connect, nil
		}
	}
}

func DeclareTopology(channel *amqp091.Channel) error {
	if err := channel.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	queues := []string{
		ListQueue,
		BulkListQueue,
		BidQueue,
		BuyQueue,
		BulkBuyQueue,
		ClaimQueue,
		BulkClaimQueue,
		CancelQueue,
		RecoverQueue,
		AdminQueue,
	}

	for _, queue := range queues {
		if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return err
		}
	}

	return nil
}
