package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-orgflow/internal/events"
	"go-orgflow/internal/notification"
)

func ConsumeExitLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.exit_lifecycle")
	log.Info("exit lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("exit lifecycle consumer stopped")
				return
			}
			log.Error("fetch exit lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.ExitLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode exit lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.NotifyExitLifecycle(ctx, event); err != nil {
			log.Error("deliver exit lifecycle notification failed",
				zap.String("exit_request_id", event.ExitRequestID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit exit lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("exit lifecycle event processed",
			zap.String("exit_request_id", event.ExitRequestID),
			zap.String("event_type", event.EventType),
		)
	}
}
