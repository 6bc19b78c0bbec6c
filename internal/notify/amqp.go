package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes settlement change events to a durable direct
// exchange, routed by group id. Publish failures are logged and dropped;
// the polling fallback covers missed events.
type AMQPNotifier struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewAMQPNotifier connects to the broker and declares the exchange.
func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPNotifier{conn: conn, channel: channel, exchange: exchange}, nil
}

// SettlementChanged publishes the event with the group id as routing key.
func (n *AMQPNotifier) SettlementChanged(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		slog.Warn("failed to encode settlement event", "error", err)
		return
	}

	err = n.channel.PublishWithContext(ctx,
		n.exchange, // exchange
		e.GroupID,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		slog.Warn("failed to publish settlement event",
			"group_id", e.GroupID,
			"settlement_id", e.SettlementID,
			"error", err,
		)
	}
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
