package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/achla24/LeaveEase/internal/auth"
	autherrors "github.com/achla24/LeaveEase/internal/auth/errors"
	"github.com/achla24/LeaveEase/internal/user"
	usererrors "github.com/achla24/LeaveEase/internal/user/errors"
	userMock "github.com/achla24/LeaveEase/internal/user/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeUsers struct {
	createFn func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error)
}

func (f *fakeUsers) GetAll(context.Context) ([]user.UserResponse, error) { return nil, nil }
func (f *fakeUsers) GetByID(context.Context, string) (user.UserResponse, error) {
	return user.UserResponse{}, nil
}
func (f *fakeUsers) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	return f.createFn(ctx, req)
}
func (f *fakeUsers) UpdateProfile(context.Context, string, user.UpdateProfileRequest) (user.UserResponse, error) {
	return user.UserResponse{}, nil
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	assert.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	pw, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	hr := &user.User{
		ID:       uuid.New(),
		Username: "jane",
		Email:    "jane.hr@gmail.com",
		FullName: "Jane HR",
		Password: string(pw),
		Role:     user.RoleHR,
	}

	t.Run("by username", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		repo.EXPECT().FindByUsername(ctx, "jane").Return(hr, nil)
		svc := auth.NewService(repo, &fakeUsers{}, testSecret, zap.NewNop())

		access, refresh, resp, err := svc.Login(ctx, "jane", "password123")

		assert.NoError(t, err)
		assert.Equal(t, "Jane HR", resp.FullName)
		claims := parseClaims(t, access)
		assert.Equal(t, hr.ID.String(), claims["user_id"])
		assert.Equal(t, "jane", claims["username"])
		assert.Equal(t, "Jane HR", claims["full_name"])
		assert.Equal(t, "HR", claims["role"])
		assert.Equal(t, "access", claims["typ"])
		assert.Equal(t, "refresh", parseClaims(t, refresh)["typ"])
	})

	t.Run("by email", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		repo.EXPECT().FindByEmail(ctx, "jane.hr@gmail.com").Return(hr, nil)
		svc := auth.NewService(repo, &fakeUsers{}, testSecret, zap.NewNop())

		_, _, resp, err := svc.Login(ctx, "Jane.HR@gmail.com", "password123")

		assert.NoError(t, err)
		assert.Equal(t, "jane", resp.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		repo.EXPECT().FindByUsername(ctx, "jane").Return(hr, nil)
		svc := auth.NewService(repo, &fakeUsers{}, testSecret, zap.NewNop())

		_, _, _, err := svc.Login(ctx, "jane", "nope")

		assert.Equal(t, autherrors.ErrInvalidCredentials, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		repo.EXPECT().FindByUsername(ctx, "ghost").Return(nil, gorm.ErrRecordNotFound)
		svc := auth.NewService(repo, &fakeUsers{}, testSecret, zap.NewNop())

		_, _, _, err := svc.Login(ctx, "ghost", "password123")

		assert.Equal(t, autherrors.ErrInvalidCredentials, err)
	})
}

func TestService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	pw, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := &user.User{ID: uuid.New(), Username: "jdoe", Password: string(pw), Role: user.RoleEmployee}

	repo := userMock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().FindByUsername(ctx, "jdoe").Return(u, nil)
	repo.EXPECT().FindByID(ctx, u.ID.String()).Return(u, nil)
	svc := auth.NewService(repo, &fakeUsers{}, testSecret, zap.NewNop())

	access, refresh, _, err := svc.Login(ctx, "jdoe", "password123")
	assert.NoError(t, err)

	_, _, _, err = svc.RefreshToken(ctx, access)
	assert.Equal(t, autherrors.ErrInvalidRefreshToken, err)

	newAccess, _, resp, err := svc.RefreshToken(ctx, refresh)
	assert.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.Equal(t, "jdoe", resp.Username)

	_, _, _, err = svc.RefreshToken(ctx, "garbage")
	assert.Equal(t, autherrors.ErrInvalidRefreshToken, err)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	req := auth.RegisterRequest{Username: "jdoe", Email: "john.doe@company.com", Password: "password123", FullName: "John Doe"}

	t.Run("creates employee", func(t *testing.T) {
		users := &fakeUsers{createFn: func(_ context.Context, r user.CreateUserRequest) (user.UserResponse, error) {
			assert.Equal(t, user.RoleEmployee, r.Role)
			return user.UserResponse{ID: "u-1", Username: r.Username, Email: r.Email, FullName: r.FullName, Role: r.Role}, nil
		}}
		svc := auth.NewService(nil, users, testSecret, zap.NewNop())

		resp, err := svc.Register(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "EMPLOYEE", resp.Role)
	})

	t.Run("duplicate username", func(t *testing.T) {
		users := &fakeUsers{createFn: func(context.Context, user.CreateUserRequest) (user.UserResponse, error) {
			return user.UserResponse{}, usererrors.ErrUsernameTaken
		}}
		svc := auth.NewService(nil, users, testSecret, zap.NewNop())

		_, err := svc.Register(ctx, req)

		assert.True(t, errors.Is(err, usererrors.ErrUsernameTaken))
	})
}

func TestService_GetMe(t *testing.T) {
	ctx := context.Background()
	repo := userMock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().FindByID(ctx, "missing").Return(nil, gorm.ErrRecordNotFound)
	svc := auth.NewService(repo, &fakeUsers{}, testSecret, zap.NewNop())

	_, err := svc.GetMe(ctx, "missing")

	assert.Equal(t, autherrors.ErrUserNotFound, err)
}
