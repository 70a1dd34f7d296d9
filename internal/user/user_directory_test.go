package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/achla24/LeaveEase/internal/notification"
	"github.com/achla24/LeaveEase/internal/user"
	userMock "github.com/achla24/LeaveEase/internal/user/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestDirectory_ResolveForLeave(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	john := &user.User{ID: id, Username: "jdoe", FullName: "John Doe", Email: "john.doe@company.com"}

	t.Run("by employee id", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		repo.EXPECT().FindByID(ctx, id.String()).Return(john, nil)

		r, found, err := user.NewDirectory(repo, zap.NewNop()).ResolveForLeave(ctx, notification.LeaveRef{EmployeeID: id.String(), EmployeeName: "John Doe"})

		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "john.doe@company.com", r.Email)
	})

	t.Run("stale id falls back to full name", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		stale := uuid.New().String()
		gomock.InOrder(
			repo.EXPECT().FindByID(ctx, stale).Return(nil, gorm.ErrRecordNotFound),
			repo.EXPECT().FindByFullName(ctx, "John Doe").Return(john, nil),
		)

		r, found, err := user.NewDirectory(repo, zap.NewNop()).ResolveForLeave(ctx, notification.LeaveRef{EmployeeID: stale, EmployeeName: "John Doe"})

		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "jdoe", r.Username)
	})

	t.Run("username match", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		gomock.InOrder(
			repo.EXPECT().FindByFullName(ctx, "jdoe").Return(nil, gorm.ErrRecordNotFound),
			repo.EXPECT().FindByUsername(ctx, "jdoe").Return(john, nil),
		)

		r, found, err := user.NewDirectory(repo, zap.NewNop()).ResolveForLeave(ctx, notification.LeaveRef{EmployeeName: "jdoe"})

		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "John Doe", r.FullName)
	})

	t.Run("miss logs known users", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		repo.EXPECT().FindByFullName(ctx, "Ghost").Return(nil, gorm.ErrRecordNotFound)
		repo.EXPECT().FindByUsername(ctx, "Ghost").Return(nil, gorm.ErrRecordNotFound)
		repo.EXPECT().FindAll(ctx).Return([]user.User{*john}, nil)

		core, logs := observer.New(zap.InfoLevel)
		_, found, err := user.NewDirectory(repo, zap.New(core)).ResolveForLeave(ctx, notification.LeaveRef{EmployeeName: "Ghost"})

		assert.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 1, logs.FilterMessage("no user matches leave request").Len())
		known := logs.FilterMessage("known user").All()
		assert.Len(t, known, 1)
		assert.Equal(t, "john.doe@company.com", known[0].ContextMap()["email"])
	})

	t.Run("database error is returned", func(t *testing.T) {
		repo := userMock.NewMockRepository(gomock.NewController(t))
		repo.EXPECT().FindByFullName(ctx, "John Doe").Return(nil, errors.New("db down"))

		_, found, err := user.NewDirectory(repo, zap.NewNop()).ResolveForLeave(ctx, notification.LeaveRef{EmployeeName: "John Doe"})

		assert.EqualError(t, err, "db down")
		assert.False(t, found)
	})
}

func TestDirectory_FindActor(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	repo := userMock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, FullName: "Jane HR", Email: "jane.hr@gmail.com", Role: user.RoleHR}, nil)
	dir := user.NewDirectory(repo, zap.NewNop())

	email, found, err := dir.ActorEmail(ctx, id.String())
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "jane.hr@gmail.com", email)

	_, found, err = dir.FindActor(ctx, "garbage")
	assert.NoError(t, err)
	assert.False(t, found)
}
