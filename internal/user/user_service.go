package user

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/achla24/LeaveEase/internal/shared/contextutil"
	usererrors "github.com/achla24/LeaveEase/internal/user/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

const (
	AllUsersCacheKey = "users:all"
	allUsersCacheTTL = 10 * time.Minute
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (UserResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, AllUsersCacheKey).Result(); err == nil {
			var resp []UserResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(AllUsersCacheKey, func() (interface{}, error) {
		users, err := s.repo.FindAll(ctx)
		if err != nil {
			s.logger.Error("get all users failed", zap.Error(err))
			return nil, MapRepositoryError(err)
		}

		resp := mapToListResponse(users)
		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, AllUsersCacheKey, string(data), allUsersCacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]UserResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, MapRepositoryError(err)
	}
	return mapToResponse(*u), nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = RoleEmployee
	case RoleEmployee, RoleHR, RoleAdmin:
	default:
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:         uuid.New(),
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Password:   string(hashed),
		FullName:   strings.TrimSpace(req.FullName),
		Department: strings.TrimSpace(req.Department),
		Role:       role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		l.Warn("failed to create user", zap.String("username", u.Username), zap.Error(err))
		return UserResponse{}, MapRepositoryError(err)
	}

	s.invalidate(ctx)
	l.Info("user created", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return mapToResponse(*u), nil
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, MapRepositoryError(err)
	}

	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Department != nil {
		u.Department = strings.TrimSpace(*req.Department)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Warn("update profile failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, MapRepositoryError(err)
	}

	s.invalidate(ctx)
	return mapToResponse(*u), nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, AllUsersCacheKey).Err(); err != nil {
		s.logger.Warn("invalidate users cache failed", zap.Error(err))
	}
}
