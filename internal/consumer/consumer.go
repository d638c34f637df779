package consumer

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventHandler is the interface that consumers must implement to handle
// delivered payloads.
type EventHandler interface {
	HandleEvent(body []byte) error
}

// ProcessMessage processes one delivery following the abstract consumer
// pattern: hand the raw payload to the handler, ACK on success, NACK without
// requeue on failure. Redelivery and dead-lettering are broker policy.
func ProcessMessage(
	logger *zap.Logger,
	queue string,
	msg amqp.Delivery,
	handler EventHandler,
) {
	logger.Debug("Received message from queue",
		zap.String("queue", queue),
		zap.Uint64("delivery_tag", msg.DeliveryTag),
	)

	if err := handler.HandleEvent(msg.Body); err != nil {
		logger.Error("Failed to process message from queue",
			zap.String("queue", queue),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		rejectMessage(logger, msg)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to ack message from queue",
			zap.String("queue", queue),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		rejectMessage(logger, msg)
		return
	}
}

// rejectMessage rejects a message (NACK with requeue=false)
func rejectMessage(logger *zap.Logger, msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		logger.Error("Failed to nack a message",
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
	}
}
