package rabbit

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	logger "github.com/sirupsen/logrus"
)

type ParserFunc[T any] func([]byte) (*T, error)
type HandlerFunc[T any] func(context.Context, *T)

type Processor[T any] struct {
	parser  ParserFunc[T]
	handler HandlerFunc[T]
}

func NewProcessor[T any](parser ParserFunc[T], handler HandlerFunc[T]) Processor[T] {
	return Processor[T]{parser: parser, handler: handler}
}

func JsonParser[T any](body []byte) (*T, error) {
	var value T

	if err := json.Unmarshal(body, &value); err != nil {
		return nil, err
	}

	return &value, nil
}

// Run consumes the queue until the context is cancelled. Unparseable messages
// are dropped without requeue; handler failures are the handler's business,
// the engine never retries an operation on its own.
func (p *Processor[T]) Run(ctx context.Context, channel *amqp091.Channel, queue string) error {
	deliveries, err := channel.Consume(queue, "", false, false, false, false, nil)

	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-deliveries:
				if !ok {
					logger.WithField("queue", queue).Warningln("Delivery channel closed, stop consuming")
					return
				}
				p.processMessage(ctx, msg)
			}
		}
	}()

	return nil
}

func (p *Processor[T]) processMessage(ctx context.Context, msg amqp091.Delivery) {
	body, err := p.parser(msg.Body)

	if err != nil {
		msg.Nack(false, false)
		return
	}

	msg.Ack(false)
	p.handler(ctx, body)
}
