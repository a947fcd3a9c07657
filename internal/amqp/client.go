// Package amqp carries the out-of-band channel between writers of the sale
// ledger: every confirmed write publishes a change event (which makes other
// instances reload their mirrors) and a sync request (which the mirror
// worker turns into a remote ledger row).
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	changesQueue string
	syncQueue    string
}

func NewClient(url, exchangeName, changesQueue, syncQueue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		changesQueue: changesQueue,
		syncQueue:    syncQueue,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{c.changesQueue, c.syncQueue} {
		_, err = c.channel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		// Routing key matches the queue name on the direct exchange.
		err = c.channel.QueueBind(queue, queue, c.exchangeName, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

// PublishSaleChanged announces a mutation of the sales collection.
func (c *Client) PublishSaleChanged(ctx context.Context, saleID, action string) error {
	msg := NewSaleChangedMessage(saleID, action)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, c.changesQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published sale change",
		"id", saleID,
		"action", action,
		"queue", c.changesQueue)
	return nil
}

// PublishSaleSync asks the mirror worker to copy the sale remotely.
func (c *Client) PublishSaleSync(ctx context.Context, saleID string) error {
	msg := NewSaleSyncMessage(saleID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, c.syncQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published sale sync request",
		"id", saleID,
		"queue", c.syncQueue)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeSaleChanges delivers change events until the context is cancelled.
// The handler is the reload trigger; a handler error requeues the delivery.
func (c *Client) ConsumeSaleChanges(ctx context.Context, handler func(*SaleChangedMessage) error) error {
	return c.consume(ctx, c.changesQueue, func(body []byte) error {
		msg, err := SaleChangedMessageFromJSON(body)
		if err != nil {
			return errUnmarshal
		}
		return handler(msg)
	})
}

// ConsumeSaleSync delivers mirror sync requests until the context is
// cancelled.
func (c *Client) ConsumeSaleSync(ctx context.Context, handler func(*SaleSyncMessage) error) error {
	return c.consume(ctx, c.syncQueue, func(body []byte) error {
		msg, err := SaleSyncMessageFromJSON(body)
		if err != nil {
			return errUnmarshal
		}
		return handler(msg)
	})
}

var errUnmarshal = fmt.Errorf("unmarshal message")

func (c *Client) consume(ctx context.Context, queue string, handle func([]byte) error) error {
	msgs, err := c.channel.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "queue", queue, "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			if err := handle(delivery.Body); err != nil {
				if err == errUnmarshal {
					slog.ErrorContext(ctx, "Failed to unmarshal message", "queue", queue)
					delivery.Nack(false, false) // reject and don't requeue
					continue
				}
				slog.ErrorContext(ctx, "Failed to handle message", "queue", queue, "error", err)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
