package rabbitmq

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Config struct {
	Host       string `yaml:"host" envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port       string `yaml:"port" envconfig:"RABBITMQ_PORT" default:"5672"`
	User       string `yaml:"user" envconfig:"RABBITMQ_USER" default:"guest"`
	Password   string `yaml:"password" envconfig:"RABBITMQ_PASSWORD" default:"guest"`
	VHost      string `yaml:"vhost" envconfig:"RABBITMQ_VHOST" default:"/"`
	Exchange   string `yaml:"exchange" envconfig:"RABBITMQ_EXCHANGE" default:"rating.events"`
	Queue      string `yaml:"queue" envconfig:"RABBITMQ_QUEUE" default:"notification.rating-created"`
	RoutingKey string `yaml:"routingKey" envconfig:"RABBITMQ_ROUTING_KEY" default:"rating.created"`
}

func (c Config) URL() string {
	vhost := c.VHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, vhost)
}

// Connection is the process-wide broker resource: one AMQP connection and one
// channel, dialed lazily and re-dialed after Reset. A single channel must not
// be used by uncoordinated concurrent writers, so channel access is serialized
// through the mutex.
type Connection struct {
	cfg Config
	log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConnection(cfg Config, log *zap.Logger) *Connection {
	return &Connection{
		cfg: cfg,
		log: log.Named("rabbitmq"),
	}
}

// channel returns the live channel, dialing the broker and declaring the
// exchange if needed. Callers must hold no assumption about channel identity
// across calls: after a broker outage, Reset forces a fresh dial here.
func (c *Connection) channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil && !c.ch.IsClosed() {
		return c.ch, nil
	}
	c.closeLocked()

	conn, err := amqp.Dial(c.cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("amqp dial %s:%s: %w", c.cfg.Host, c.cfg.Port, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		c.cfg.Exchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-delete
		false,          // internal
		false,          // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare %q: %w", c.cfg.Exchange, err)
	}

	c.conn, c.ch = conn, ch
	c.log.Info("broker connected", zap.String("exchange", c.cfg.Exchange))
	return c.ch, nil
}

// Reset drops the current channel and connection so the next use re-dials.
func (c *Connection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Close releases the channel, then the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Connection) closeLocked() {
	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
