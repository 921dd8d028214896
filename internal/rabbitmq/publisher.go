// Package rabbitmq ships audit events to an external exchange. Deployments
// without a broker run on the noop publisher, which only logs.
package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/terenamutolder-oss/pro-node/internal/observability"
)

// Publisher publishes audit events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher builds a RabbitMQ publisher, or a noop publisher when the
// AMQP url is empty or the broker is unreachable.
func NewPublisher(amqpURL, exchange string, log *slog.Logger) Publisher {
	if log == nil {
		log = slog.Default()
	}
	if amqpURL == "" {
		log.Info("rabbitmq disabled, using noop publisher", "reason", "empty amqp url")
		return noopPublisher{log: log}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Warn("rabbitmq disabled, using noop publisher", "error", err)
		return noopPublisher{log: log}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq disabled, using noop publisher", "error", err)
		_ = conn.Close()
		return noopPublisher{log: log}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		log.Warn("rabbitmq disabled, using noop publisher", "error", err)
		_ = ch.Close()
		_ = conn.Close()
		return noopPublisher{log: log}
	}

	log.Info("rabbitmq connected", "exchange", exchange)
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange, log: log}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.log.Warn("rabbitmq publish failed", "routingKey", routingKey, "error", err)
		observability.IncAMQPPublishError()
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct {
	log *slog.Logger
}

func (n noopPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	n.log.Debug("noop publish", "routingKey", routingKey)
	return nil
}

func (noopPublisher) Close() error { return nil }
