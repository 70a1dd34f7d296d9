package credential

import (
	"context"
	"strings"

	credentialerrors "github.com/achla24/LeaveEase/internal/credential/errors"
	"github.com/achla24/LeaveEase/internal/mailer"

	"go.uber.org/zap"
)

const (
	StatusConfigured    = "configured"
	StatusNotConfigured = "not_configured"
)

//go:generate mockgen -source=credential_service.go -destination=mock/credential_service_mock.go -package=mock
type Service interface {
	Configure(ctx context.Context, email, appPassword string) (StatusResponse, error)
	Status(ctx context.Context, email string) (StatusResponse, error)
	Remove(ctx context.Context, email string) error
	// Lookup returns the usable credential for email. Placeholders and empty
	// values report false.
	Lookup(ctx context.Context, email string) (string, bool)
}

type service struct {
	store        Store
	fallbackHost string
	fallbackPort int
	logger       *zap.Logger
}

func NewService(store Store, fallbackHost string, fallbackPort int, logger ...*zap.Logger) Service {
	l := zap.L().Named("credential.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credential.service")
	}
	return &service{store: store, fallbackHost: fallbackHost, fallbackPort: fallbackPort, logger: l}
}

func (s *service) Configure(ctx context.Context, email, appPassword string) (StatusResponse, error) {
	appPassword = strings.TrimSpace(appPassword)
	if appPassword == "" {
		return StatusResponse{}, credentialerrors.ErrAppPasswordRequired
	}
	if email == "" {
		return StatusResponse{}, credentialerrors.ErrActorEmailMissing
	}

	if err := s.store.Set(ctx, email, appPassword); err != nil {
		s.logger.Error("store credential failed", zap.String("email", email), zap.Error(err))
		return StatusResponse{}, err
	}
	s.logger.Info("credential configured", zap.String("email", email))

	return s.Status(ctx, email)
}

func (s *service) Status(ctx context.Context, email string) (StatusResponse, error) {
	v, ok, err := s.store.Get(ctx, email)
	if err != nil {
		return StatusResponse{}, err
	}

	host, port := mailer.ProviderSMTP(email, s.fallbackHost, s.fallbackPort)
	resp := StatusResponse{
		Email:            email,
		Configured:       ok,
		HasValidPassword: ok && usable(v),
		Provider:         providerName(email),
		SMTPHost:         host,
		SMTPPort:         port,
	}
	if resp.HasValidPassword {
		resp.Status = StatusConfigured
		resp.Message = "HR email is configured and ready for direct communication"
	} else {
		resp.Status = StatusNotConfigured
		resp.Message = "HR email not configured - using system fallback"
	}
	return resp, nil
}

func (s *service) Remove(ctx context.Context, email string) error {
	if err := s.store.Delete(ctx, email); err != nil {
		s.logger.Error("remove credential failed", zap.String("email", email), zap.Error(err))
		return err
	}
	s.logger.Info("credential removed", zap.String("email", email))
	return nil
}

func (s *service) Lookup(ctx context.Context, email string) (string, bool) {
	if email == "" {
		return "", false
	}
	v, ok, err := s.store.Get(ctx, email)
	if err != nil {
		s.logger.Warn("credential lookup failed", zap.String("email", email), zap.Error(err))
		return "", false
	}
	if !ok || !usable(v) {
		return "", false
	}
	return v, true
}

func usable(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != PlaceholderPassword
}

func providerName(email string) string {
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	switch {
	case strings.Contains(domain, "gmail"):
		return "gmail"
	case strings.Contains(domain, "outlook"), strings.Contains(domain, "hotmail"):
		return "outlook"
	case strings.Contains(domain, "yahoo"):
		return "yahoo"
	default:
		return "custom"
	}
}
