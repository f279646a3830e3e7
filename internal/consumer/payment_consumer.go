package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stayflow/service-hotel/internal/application"
	"github.com/stayflow/service-hotel/internal/domain"
	"github.com/stayflow/service-hotel/internal/events"
	"github.com/stayflow/service-hotel/internal/kafka"
)

// PaymentEventConsumer listens to payment events and applies them to booking
// payment state.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is
// cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentReceived:
		return c.handlePaymentReceived(ctx, cloudEvent)
	case events.PaymentRefunded:
		return c.handlePaymentRefunded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentReceived(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment received event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.Int64("amount_cents", evt.AmountCents),
		zap.Bool("is_deposit", evt.IsDeposit),
	)

	_, err := c.service.RecordPayment(ctx, evt.BookingID, application.PaymentRequest{
		AmountCents: evt.AmountCents,
		IsDeposit:   evt.IsDeposit,
	})
	if err != nil {
		if domain.IsNotFound(err) || domain.IsValidation(err) {
			c.logger.Warn("payment event not applicable, dropping",
				zap.String("booking_id", evt.BookingID.String()),
				zap.Error(err),
			)
			return nil
		}
		return err
	}
	return nil
}

func (c *PaymentEventConsumer) handlePaymentRefunded(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentEvent data", zap.Error(err))
		return nil
	}

	_, err := c.service.RefundPayment(ctx, evt.BookingID)
	if err != nil {
		if domain.IsNotFound(err) || domain.IsInvalidTransition(err) {
			c.logger.Warn("refund event not applicable, dropping",
				zap.String("booking_id", evt.BookingID.String()),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	c.logger.Info("booking refunded after payment event",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
