// File: internal/infra/queue/client.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"docustream/internal/config"
	"docustream/internal/domain"
	"docustream/internal/domain/model"
	"docustream/internal/domain/ports"
	"docustream/internal/infra/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ports.QueuePublisher = (*Client)(nil)

const (
	publishAttempts = 3
	publishBackoff  = 250 * time.Millisecond
)

// Client owns the broker connection and channel for the durable
// document queue. One publish per accepted upload, persistent delivery.
type Client struct {
	cfg config.QueueConfig
	log *zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewClient(cfg config.QueueConfig, logger *zerolog.Logger) *Client {
	return &Client{cfg: cfg, log: logger}
}

// Initialize dials the broker and declares the durable queue. Calling
// it again after success is a no-op.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		return nil
	}

	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		c.cfg.Name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue %q: %w", c.cfg.Name, err)
	}

	c.conn = conn
	c.ch = ch
	c.log.Info().Str("queue", c.cfg.Name).Msg("connected to broker")
	return nil
}

// Publish marshals the descriptor and publishes it with persistent
// delivery. Retries transient failures with a short backoff; the
// stored file is the caller's to keep either way.
func (c *Client) Publish(ctx context.Context, d model.JobDescriptor) error {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch == nil {
		return domain.ErrQueueNotReady
	}

	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		lastErr = ch.PublishWithContext(ctx,
			"",         // default exchange
			c.cfg.Name, // routing key = queue name
			false,      // mandatory
			false,      // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
		if lastErr == nil {
			metrics.IncQueuePublish("ok")
			c.log.Debug().Str("job_id", d.JobID).Msg("descriptor published")
			return nil
		}
		c.log.Warn().Err(lastErr).Int("attempt", attempt).Str("job_id", d.JobID).Msg("publish failed")
		select {
		case <-ctx.Done():
			metrics.IncQueuePublish("error")
			return ctx.Err()
		case <-time.After(publishBackoff * time.Duration(attempt)):
		}
	}
	metrics.IncQueuePublish("error")
	return fmt.Errorf("publish to %q: %w", c.cfg.Name, lastErr)
}

// Close drains the channel before the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		if err := c.ch.Close(); err != nil {
			c.log.Warn().Err(err).Msg("channel close")
		}
		c.ch = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
		c.conn = nil
	}
	return nil
}
