package app

import (
	"net/http"

	"github.com/achla24/LeaveEase/internal/attendance"
	"github.com/achla24/LeaveEase/internal/config"
	"github.com/achla24/LeaveEase/internal/leave"
	"github.com/achla24/LeaveEase/internal/messaging/kafka"
	"github.com/achla24/LeaveEase/internal/metrics"
	"github.com/achla24/LeaveEase/internal/middleware"
	"github.com/achla24/LeaveEase/internal/shared/connection"
	"github.com/achla24/LeaveEase/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const connectRetries = 5

// Cleanup releases what BuildApp opened.
type Cleanup func()

func BuildApp(router *gin.Engine, cfg *config.Config) (Cleanup, error) {
	logger := zap.L().Named("app")

	gormDB, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", zap.String("driver", cfg.DB.Driver))

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("REDIS_ADDR not set, caching and idempotency disabled")
	}

	cleanup := func() {
		if rdb != nil {
			rdb.Close()
		}
		sqlDB.Close()
	}

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
		metrics.Instrument(),
	)
	router.GET("/healthz", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb); err != nil {
		cleanup()
		return nil, err
	}
	return cleanup, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := connection.ConnectGORMWithRetry(connection.DBOptions{
		Driver:     cfg.DB.Driver,
		Host:       cfg.DB.Host,
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Name:       cfg.DB.Name,
		Port:       cfg.DB.Port,
		SSLMode:    cfg.DB.SSLMode,
		SQLitePath: cfg.DB.SQLitePath,
	}, connectRetries)
	if err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&user.User{}, &leave.LeaveRequest{}, &attendance.LateAttendance{}, &kafka.OutboxEvent{}); err != nil {
			return nil, err
		}
	}
	return db, nil
}
