package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/rateflow/rateflow/pkg/events"
)

// HandleFunc processes one decoded event. A non-nil error makes the consumer
// reject the delivery with requeue, so the broker redelivers it.
type HandleFunc func(ctx context.Context, event events.RatingCreatedEvent) error

const (
	connectAttempts = 10
	connectDelay    = 5 * time.Second
	prefetchCount   = 1
	consumerTag     = "notification-consumer"
)

// Consumer is a long-lived background listener on the rating events queue.
// It processes one message at a time (prefetch=1) and survives broker
// outages by re-running its connect cycle; it never exits on its own except
// through context cancellation.
type Consumer struct {
	cfg    Config
	handle HandleFunc
	log    *zap.Logger
}

func NewConsumer(cfg Config, handle HandleFunc, log *zap.Logger) *Consumer {
	return &Consumer{
		cfg:    cfg,
		handle: handle,
		log:    log.Named("consumer"),
	}
}

// Run blocks until ctx is canceled. Each iteration dials the broker with a
// bounded retry cycle, declares the topology, and drains deliveries until the
// connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		conn, ch, deliveries, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("broker unreachable, connect cycle exhausted", zap.Error(err))
			continue
		}

		c.consumeLoop(ctx, ch, deliveries)

		// shutdown: cancel the subscription, then channel, then connection,
		// so unacknowledged messages return to the queue cleanly.
		if err := ch.Cancel(consumerTag, false); err != nil {
			c.log.Warn("cancel subscription", zap.Error(err))
		}
		_ = ch.Close()
		_ = conn.Close()

		if ctx.Err() != nil {
			c.log.Info("consumer stopped")
			return nil
		}
		c.log.Warn("connection lost, reconnecting")
	}
}

// connect dials with a fixed delay between attempts and declares the
// exchange, queue and binding idempotently.
func (c *Consumer) connect(ctx context.Context) (*amqp.Connection, *amqp.Channel, <-chan amqp.Delivery, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, nil, ctx.Err()
		}
		conn, ch, deliveries, err := c.setup()
		if err == nil {
			c.log.Info("consuming",
				zap.String("queue", c.cfg.Queue),
				zap.String("routingKey", c.cfg.RoutingKey))
			return conn, ch, deliveries, nil
		}
		lastErr = err
		c.log.Warn("broker connect failed",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", connectAttempts),
			zap.Error(err))
		if attempt < connectAttempts {
			select {
			case <-ctx.Done():
				return nil, nil, nil, ctx.Err()
			case <-time.After(connectDelay):
			}
		}
	}
	return nil, nil, nil, lastErr
}

func (c *Consumer) setup() (*amqp.Connection, *amqp.Channel, <-chan amqp.Delivery, error) {
	conn, err := amqp.Dial(c.cfg.URL())
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, nil, errors.Wrap(err, "amqp channel")
	}
	cleanup := func() {
		_ = ch.Close()
		_ = conn.Close()
	}

	if err := ch.ExchangeDeclare(
		c.cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrapf(err, "exchange declare %q", c.cfg.Exchange)
	}
	if _, err := ch.QueueDeclare(
		c.cfg.Queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrapf(err, "queue declare %q", c.cfg.Queue)
	}
	if err := ch.QueueBind(c.cfg.Queue, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrap(err, "queue bind")
	}

	// strict one-in-flight: the next message is not dispatched until the
	// current one is acked or rejected
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrap(err, "qos")
	}

	deliveries, err := ch.Consume(
		c.cfg.Queue,
		consumerTag,
		false, // auto-ack off: ack/reject is an explicit decision per message
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		cleanup()
		return nil, nil, nil, errors.Wrap(err, "consume")
	}
	return conn, ch, deliveries, nil
}

// consumeLoop drains deliveries until the channel closes or ctx is canceled.
func (c *Consumer) consumeLoop(ctx context.Context, ch *amqp.Channel, deliveries <-chan amqp.Delivery) {
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-closed:
			if err != nil {
				c.log.Warn("channel closed by broker", zap.Error(err))
			}
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery makes exactly one ack/reject decision per delivery:
//   - undecodable body: reject without requeue, a poison message must not
//     block the queue
//   - handler error: reject with requeue so the broker redelivers
//   - success: ack
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event events.RatingCreatedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.log.Error("malformed event payload, discarding",
			zap.String("messageId", d.MessageId),
			zap.ByteString("body", d.Body),
			zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			c.log.Error("nack", zap.Error(err))
		}
		return
	}

	if err := c.handle(ctx, event); err != nil {
		c.log.Error("event handler failed, requeueing",
			zap.String("eventId", event.ID.String()),
			zap.Error(err))
		if err := d.Nack(false, true); err != nil {
			c.log.Error("nack", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		c.log.Error("ack", zap.Error(err))
		return
	}
	c.log.Debug("event processed",
		zap.String("eventId", event.ID.String()),
		zap.String("serviceProviderId", event.ServiceProviderID.String()))
}
