package consumer

import (
	"context"
	"encoding/json"

	"github.com/achla24/LeaveEase/internal/bootstrap"
	"github.com/achla24/LeaveEase/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeLeaveDecisions writes every leave decision event to the audit log.
// Messages that cannot be decoded are committed and skipped.
func ConsumeLeaveDecisions(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decision")
	log.Info("leave decision consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decision consumer stopped")
				return
			}
			log.Error("fetch leave decision message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.LeaveID == "" {
			log.Error("decode leave decision event failed",
				zap.Int64("offset", msg.Offset),
				zap.Int("partition", msg.Partition),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		audit.Log(ctx, auditEntry(event))

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decision message failed", zap.Error(err))
			continue
		}

		log.Info("leave decision audited",
			zap.String("leave_id", event.LeaveID),
			zap.String("status", event.Status),
			zap.String("decided_by", event.DecidedBy),
		)
	}
}

func auditEntry(event events.LeaveDecidedEvent) bootstrap.AuditLog {
	meta := map[string]any{
		"leave_id":      event.LeaveID,
		"status":        event.Status,
		"employee_name": event.EmployeeName,
		"decided_by":    event.DecidedBy,
		"occurred_at":   event.OccurredAt,
	}
	if event.RejectionReason != nil {
		meta["rejection_reason"] = *event.RejectionReason
	}
	if event.RequestID != "" {
		meta["request_id"] = event.RequestID
	}

	return bootstrap.AuditLog{
		Action:  event.EventType,
		Message: "leave request " + event.LeaveID + " " + event.Status,
		Meta:    meta,
	}
}
