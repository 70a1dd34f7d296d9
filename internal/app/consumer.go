package app

import (
	"context"
	"fmt"

	"github.com/achla24/LeaveEase/internal/bootstrap"
	"github.com/achla24/LeaveEase/internal/config"
	"github.com/achla24/LeaveEase/internal/events"
	"github.com/achla24/LeaveEase/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const auditConsumerGroup = "leaveease-decision-audit"

// RunConsumer writes every leave decision event to the audit log.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.LeaveDecisionTopic,
		GroupID:        auditConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeLeaveDecisions(ctx, reader, bootstrap.NewStdoutAuditLogger(logger), logger)

	sig := bootstrap.WaitForSignal()
	logger.Info("consumer shutting down", zap.String("signal", sig.String()))
	cancel()

	return nil
}
