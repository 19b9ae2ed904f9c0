package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher hands a message body off to the exchange under the configured
// routing key. Messages are persistent so they survive a broker restart.
type Publisher struct {
	conn *Connection
	cfg  Config
	log  *zap.Logger
}

func NewPublisher(conn *Connection, cfg Config, log *zap.Logger) *Publisher {
	return &Publisher{
		conn: conn,
		cfg:  cfg,
		log:  log.Named("publisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	ch, err := p.conn.channel()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx,
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		// force a re-dial on the next attempt
		p.conn.Reset()
		return errors.Wrap(err, "publish")
	}

	p.log.Debug("published",
		zap.String("exchange", p.cfg.Exchange),
		zap.String("routingKey", p.cfg.RoutingKey))
	return nil
}
