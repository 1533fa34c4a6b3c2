package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-orgflow/internal/events"
	"go-orgflow/internal/notification"
)

// ConsumeTeamJoinLifecycle turns committed proposal events into inbox
// notifications. Undecodable messages are committed and dropped; delivery
// failures leave the message uncommitted for redelivery.
func ConsumeTeamJoinLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.team_join")
	log.Info("team join lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("team join lifecycle consumer stopped")
				return
			}
			log.Error("fetch team join message failed", zap.Error(err))
			continue
		}

		var event events.TeamJoinEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode team join event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.NotifyTeamJoin(ctx, event); err != nil {
			log.Error("deliver team join notification failed",
				zap.String("proposal_id", event.ProposalID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit team join message failed", zap.Error(err))
			continue
		}

		log.Info("team join event processed",
			zap.String("proposal_id", event.ProposalID),
			zap.String("event_type", event.EventType),
		)
	}
}
