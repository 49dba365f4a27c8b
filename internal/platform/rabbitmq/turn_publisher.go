package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TurnEvent signals that a chat turn for a conversation has been fully
// persisted. Consumers rebuild derived state (the transcript cache) from it.
type TurnEvent struct {
	ConversationID uint `json:"conversation_id"`
}

type TurnPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewTurnPublisher(conn *amqp.Connection, queueName string) *TurnPublisher {
	return &TurnPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *TurnPublisher) Publish(ctx context.Context, conversationID uint) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(TurnEvent{ConversationID: conversationID})
	if err != nil {
		return fmt.Errorf("marshal turn event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish turn event failed: %w", err)
	}
	return nil
}
