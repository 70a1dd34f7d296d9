package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/achla24/LeaveEase/internal/user"
	usererrors "github.com/achla24/LeaveEase/internal/user/errors"
	userMock "github.com/achla24/LeaveEase/internal/user/mock"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type serviceDeps struct {
	repo      *userMock.MockRepository
	redismock redismock.ClientMock
	service   user.Service
}

func setupService(t *testing.T) serviceDeps {
	ctrl := gomock.NewController(t)
	repo := userMock.NewMockRepository(ctrl)
	rdb, redisMock := redismock.NewClientMock()

	return serviceDeps{
		repo:      repo,
		redismock: redisMock,
		service:   user.NewService(repo, rdb, zap.NewNop()),
	}
}

func TestUserService_GetAll(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("cache hit", func(t *testing.T) {
		deps := setupService(t)
		cached, _ := json.Marshal([]user.UserResponse{{ID: id.String(), Username: "jdoe"}})
		deps.redismock.ExpectGet(user.AllUsersCacheKey).SetVal(string(cached))

		res, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, "jdoe", res[0].Username)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupService(t)
		deps.redismock.ExpectGet(user.AllUsersCacheKey).RedisNil()
		deps.repo.EXPECT().FindAll(ctx).Return([]user.User{
			{ID: id, Username: "jdoe", Email: "john.doe@company.com", FullName: "John Doe", Role: user.RoleEmployee},
		}, nil)

		expected := []user.UserResponse{{
			ID:        id.String(),
			Username:  "jdoe",
			Email:     "john.doe@company.com",
			FullName:  "John Doe",
			Role:      user.RoleEmployee,
			CreatedAt: "0001-01-01 00:00:00",
		}}
		payload, _ := json.Marshal(expected)
		deps.redismock.ExpectSet(user.AllUsersCacheKey, string(payload), 10*time.Minute).SetVal("OK")

		res, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expected, res)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupService(t)
		deps.redismock.ExpectGet(user.AllUsersCacheKey).RedisNil()
		deps.repo.EXPECT().FindAll(ctx).Return(nil, errors.New("db down"))

		_, err := deps.service.GetAll(ctx)

		assert.EqualError(t, err, "db down")
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid id", func(t *testing.T) {
		deps := setupService(t)
		_, err := deps.service.GetByID(ctx, "not-a-uuid")
		assert.Equal(t, usererrors.ErrInvalidUserID, err)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupService(t)
		id := uuid.New().String()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id)

		assert.Equal(t, usererrors.ErrUserNotFound, err)
	})
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	req := user.CreateUserRequest{
		Username: "jdoe",
		Email:    "John.Doe@Company.com",
		Password: "secret123",
		FullName: "John Doe",
		Role:     "hr",
	}

	t.Run("success", func(t *testing.T) {
		deps := setupService(t)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.NotEqual(t, uuid.Nil, u.ID)
			assert.Equal(t, "john.doe@company.com", u.Email)
			assert.Equal(t, user.RoleHR, u.Role)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))
			return nil
		})
		deps.redismock.ExpectDel(user.AllUsersCacheKey).SetVal(1)

		res, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "jdoe", res.Username)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("invalid role", func(t *testing.T) {
		deps := setupService(t)
		bad := req
		bad.Role = "OWNER"

		_, err := deps.service.Create(ctx, bad)

		assert.Equal(t, usererrors.ErrInvalidRole, err)
	})

	t.Run("duplicate username", func(t *testing.T) {
		deps := setupService(t)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"})

		_, err := deps.service.Create(ctx, req)

		assert.Equal(t, usererrors.ErrUsernameTaken, err)
	})

	t.Run("duplicate email on sqlite", func(t *testing.T) {
		deps := setupService(t)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("UNIQUE constraint failed: users.email"))

		_, err := deps.service.Create(ctx, req)

		assert.Equal(t, usererrors.ErrEmailTaken, err)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	name := "Johnny Doe"
	dept := "Engineering"

	deps := setupService(t)
	deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Username: "jdoe", FullName: "John Doe", Email: "john.doe@company.com"}, nil)
	deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
		assert.Equal(t, "jdoe", u.Username)
		assert.Equal(t, name, u.FullName)
		assert.Equal(t, dept, u.Department)
		assert.Equal(t, "john.doe@company.com", u.Email)
		return nil
	})
	deps.redismock.ExpectDel(user.AllUsersCacheKey).SetVal(1)

	res, err := deps.service.UpdateProfile(ctx, id.String(), user.UpdateProfileRequest{FullName: &name, Department: &dept})

	assert.NoError(t, err)
	assert.Equal(t, name, res.FullName)
}
