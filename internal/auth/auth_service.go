package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "github.com/achla24/LeaveEase/internal/auth/errors"
	"github.com/achla24/LeaveEase/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, identifier, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo   user.Repository
	users  user.Service
	secret []byte
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo user.Repository, users user.Service, secret string, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, users: users, secret: []byte(secret), now: time.Now, logger: l}
}

func (s *service) Login(ctx context.Context, identifier, password string) (string, string, AuthResponse, error) {
	u, err := s.findByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
			return "", "", AuthResponse{}, err
		}
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("username", u.Username))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	access, refresh, err := s.issueTokens(u)
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	s.logger.Info("login succeeded", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return access, refresh, toAuthResponse(u), nil
}

// findByIdentifier tries the identifier as email first when it looks like
// one, then as a username.
func (s *service) findByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	if strings.Contains(identifier, "@") {
		u, err := s.repo.FindByEmail(ctx, strings.ToLower(identifier))
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return u, err
		}
	}
	return s.repo.FindByUsername(ctx, identifier)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userID, _ := claims["user_id"].(string)
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	access, refresh, err := s.issueTokens(u)
	if err != nil {
		return "", "", AuthResponse{}, err
	}
	return access, refresh, toAuthResponse(u), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp := toAuthResponse(u)
	return &resp, nil
}

// Register is the public signup; it always creates an EMPLOYEE.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	created, err := s.users.Create(ctx, user.CreateUserRequest{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Department: req.Department,
		Role:       user.RoleEmployee,
	})
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		ID:         created.ID,
		Username:   created.Username,
		Email:      created.Email,
		FullName:   created.FullName,
		Department: created.Department,
		Role:       created.Role,
	}, nil
}

func (s *service) issueTokens(u *user.User) (string, string, error) {
	access, err := s.generateToken(u, "access", AccessTokenTTL)
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return "", "", autherrors.ErrTokenGenerationFailed
	}
	refresh, err := s.generateToken(u, "refresh", RefreshTokenTTL)
	if err != nil {
		s.logger.Error("sign refresh token failed", zap.Error(err))
		return "", "", autherrors.ErrTokenGenerationFailed
	}
	return access, refresh, nil
}

func (s *service) generateToken(u *user.User, typ string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   u.ID.String(),
		"username":  u.Username,
		"full_name": u.FullName,
		"role":      u.Role,
		"typ":       typ,
		"exp":       s.now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func toAuthResponse(u *user.User) AuthResponse {
	return AuthResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Department: u.Department,
		Role:       u.Role,
	}
}
