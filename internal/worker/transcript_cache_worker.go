package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"mcp-chat/internal/app"
	"mcp-chat/internal/platform/rabbitmq"
)

// TranscriptCacheWorker consumes turn events and rebuilds the redis
// transcript cache from the store, so readers after a completed turn hit a
// warm cache instead of the database.
type TranscriptCacheWorker struct {
	conn      *amqp.Connection
	messages  app.MessageStore
	cache     app.TranscriptCache
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTranscriptCacheWorker(
	conn *amqp.Connection,
	messages app.MessageStore,
	cache app.TranscriptCache,
	queueName string,
	logger *zap.Logger,
) *TranscriptCacheWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptCacheWorker{
		conn:      conn,
		messages:  messages,
		cache:     cache,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *TranscriptCacheWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *TranscriptCacheWorker) handle(ctx context.Context, d amqp.Delivery) {
	var event rabbitmq.TurnEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.logger.Error("worker decode turn event failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	messages, err := w.messages.ListByConversationID(ctx, event.ConversationID)
	if err != nil {
		w.logger.Error("worker load transcript failed",
			zap.Uint("conversation_id", event.ConversationID),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}

	if err := w.cache.Set(ctx, event.ConversationID, messages); err != nil {
		w.logger.Warn("worker refresh transcript cache failed",
			zap.Uint("conversation_id", event.ConversationID),
			zap.Error(err),
		)
	}

	_ = d.Ack(false)
}

func (w *TranscriptCacheWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
