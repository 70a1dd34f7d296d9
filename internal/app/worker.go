package app

import (
	"context"
	"time"

	"github.com/achla24/LeaveEase/internal/bootstrap"
	"github.com/achla24/LeaveEase/internal/config"
	"github.com/achla24/LeaveEase/internal/credential"
	"github.com/achla24/LeaveEase/internal/events"
	"github.com/achla24/LeaveEase/internal/leave"
	"github.com/achla24/LeaveEase/internal/messaging/kafka"
	"github.com/achla24/LeaveEase/internal/messaging/kafka/producer"
	"github.com/achla24/LeaveEase/internal/reminder"
	"github.com/achla24/LeaveEase/internal/shared/connection"
	"github.com/achla24/LeaveEase/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const outboxPollInterval = 3 * time.Second

// RunWorker relays outbox events to Kafka and runs the leave reminder cron.
// The relay is skipped when no broker is configured.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries); err != nil {
			return err
		}
		defer rdb.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.KafkaBroker != "" {
		kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, events.LeaveDecisionTopic, connectRetries)
		if err != nil {
			return err
		}
		defer kafkaWriter.Close()

		go producer.ProcessOutboxEvents(
			ctx,
			kafka.NewOutboxRepository(gormDB),
			kafkaWriter,
			logger,
			outboxPollInterval,
		)
	} else {
		logger.Warn("KAFKA_BROKER not set, outbox relay disabled")
	}

	store, err := newCredentialStore(cfg, rdb, logger)
	if err != nil {
		return err
	}
	userRepo := user.NewRepository(gormDB)
	dispatcher := newDispatcher(
		cfg,
		user.NewDirectory(userRepo, logger),
		credential.NewService(store, cfg.Mail.Host, cfg.Mail.Port, logger),
		logger,
	)

	scheduler := reminder.NewScheduler(
		cfg.Reminder.CronSpec,
		cfg.Reminder.LeadDays,
		leave.NewRepository(gormDB),
		dispatcher,
		logger,
	)
	if err := scheduler.Start(); err != nil {
		return err
	}

	sig := bootstrap.WaitForSignal()
	logger.Info("worker shutting down", zap.String("signal", sig.String()))
	cancel()
	scheduler.Stop()

	return nil
}
