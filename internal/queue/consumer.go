package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/obs"
	"github.com/iliyamo/stylehub/internal/provider"
)

// Consumer turns order events into customer e-mails.
type Consumer struct {
	url    string
	mailer provider.Mailer
	logger *zap.Logger
}

func NewConsumer(url string, mailer provider.Mailer, logger *zap.Logger) *Consumer {
	return &Consumer{url: url, mailer: mailer, logger: logger}
}

// Run connects to the broker and consumes order.events until ctx is
// cancelled, reconnecting with exponential backoff after failures.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("order-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("order-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		c.logger.Warn("order-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				obs.QueueEvents.WithLabelValues("consume", "error").Inc()
				c.logger.Error("order-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // do not requeue to avoid tight loops
				continue
			}
			obs.QueueEvents.WithLabelValues("consume", "ok").Inc()
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one event and e-mails the customer.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.CustomerEmail == "" {
		c.logger.Info("order-consumer: event without customer e-mail skipped", zap.String("order_id", ev.OrderID))
		return nil
	}
	subject, html, err := provider.RenderOrderUpdate(provider.OrderEmail{
		CustomerName: ev.CustomerName,
		OrderNumber:  ev.OrderNumber,
		TenantName:   ev.TenantName,
		Status:       ev.Status,
		Total:        ev.Total,
		Currency:     ev.Currency,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	id, err := c.mailer.Send(ctx, ev.CustomerEmail, subject, html)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	c.logger.Info("order e-mail sent",
		zap.String("type", ev.Type),
		zap.String("order_number", ev.OrderNumber),
		zap.String("message_id", id),
	)
	return nil
}
