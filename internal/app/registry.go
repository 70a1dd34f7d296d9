package app

import (
	"database/sql"
	"fmt"

	"github.com/achla24/LeaveEase/internal/attendance"
	"github.com/achla24/LeaveEase/internal/auth"
	"github.com/achla24/LeaveEase/internal/chat"
	"github.com/achla24/LeaveEase/internal/config"
	"github.com/achla24/LeaveEase/internal/credential"
	"github.com/achla24/LeaveEase/internal/dashboard"
	"github.com/achla24/LeaveEase/internal/leave"
	"github.com/achla24/LeaveEase/internal/mailer"
	"github.com/achla24/LeaveEase/internal/messaging/kafka"
	"github.com/achla24/LeaveEase/internal/middleware"
	"github.com/achla24/LeaveEase/internal/notification"
	"github.com/achla24/LeaveEase/internal/rbac"
	"github.com/achla24/LeaveEase/internal/rbac/infra"
	"github.com/achla24/LeaveEase/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)

	// --- Notification ---
	credentialStore, err := newCredentialStore(cfg, rdb, logger)
	if err != nil {
		return err
	}
	credentialService := credential.NewService(credentialStore, cfg.Mail.Host, cfg.Mail.Port, logger)
	directory := user.NewDirectory(userRepo, logger)
	dispatcher := newDispatcher(cfg, directory, credentialService, logger)

	// --- Services ---
	userService := user.NewService(userRepo, rdb, logger)
	authService := auth.NewService(userRepo, userService, cfg.JWTSecret, logger)
	leaveService := leave.NewService(db, leaveRepo, outboxRepo, dispatcher, leave.Options{
		SurfaceWebhookErrors: cfg.SurfaceWebhookErrors,
	}, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, userRepo, logger)
	dashboardService := dashboard.NewService(leaveRepo, userRepo, nil, logger)
	assistant := chat.NewAssistant(userRepo, leaveRepo, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	userHandler := user.NewHandler(userService, rbacService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	credentialHandler := credential.NewHandler(credentialService, directory, logger)
	notificationHandler := notification.NewHandler(dispatcher, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)
	chatHandler := chat.NewHandler(assistant, logger)

	// --- Routes Registration ---
	limit := middleware.RateLimitByUser(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	idempotent := middleware.Idempotency(rdb)

	api := router.Group("/api/v1")
	auth.RegisterRoutes(api, authHandler, cfg.JWTSecret)

	protected := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret))
	{
		user.RegisterRoutes(protected, userHandler, rbacService)
		rbac.RegisterRoutes(protected, rbacHandler)

		leaves := protected.Group("/leaves")
		leave.RegisterRoutes(leaves, leaveHandler, rbacService, idempotent, limit)
		credential.RegisterRoutes(leaves, credentialHandler, rbacService)
		notification.RegisterRoutes(leaves, notificationHandler, rbacService, limit)

		attendance.RegisterRoutes(protected, attendanceHandler, rbacService)
		dashboard.RegisterRoutes(protected, dashboardHandler, rbacService)
		chat.RegisterRoutes(protected, chatHandler, rbacService, limit)
	}

	return nil
}

func newCredentialStore(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (credential.Store, error) {
	switch cfg.Credential.Store {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("credential store %q requires redis", cfg.Credential.Store)
		}
		return credential.NewRedisStore(rdb), nil
	default:
		return credential.NewFileStore(cfg.Credential.FilePath, logger)
	}
}

// newDispatcher assembles the generator waterfall: the configured LLM, then
// the smart template, with the static template as the floor.
func newDispatcher(
	cfg *config.Config,
	directory *user.Directory,
	creds notification.Credentials,
	logger *zap.Logger,
) *notification.Dispatcher {
	llmCfg := notification.LLMConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.OpenAIKey,
		URL:      cfg.LLM.OpenAIURL,
		Model:    cfg.LLM.OpenAIModel,
		Timeout:  cfg.LLM.Timeout,
	}
	if cfg.LLM.Provider == "ollama" {
		llmCfg.URL = cfg.LLM.OllamaURL
		llmCfg.Model = cfg.LLM.OllamaModel
	}

	static := notification.NewStaticTemplate()
	smart := notification.NewSmartTemplate(cfg.Mail.HRContact)
	waterfall := notification.NewWaterfall(static, []notification.ContentGenerator{
		notification.NewLLMGenerator(llmCfg),
		smart,
	}, logger)

	return notification.NewDispatcher(notification.Deps{
		Directory:   directory,
		Webhook:     notification.NewWebhookClient(cfg.Webhook.URL, cfg.Webhook.APIKey, cfg.Webhook.Timeout),
		Waterfall:   waterfall,
		Smart:       smart,
		Static:      static,
		Mailer:      mailer.New(cfg.Mail, logger),
		Credentials: creds,
	}, logger)
}
