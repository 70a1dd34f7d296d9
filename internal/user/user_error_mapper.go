package user

import (
	"errors"
	"strings"

	usererrors "github.com/achla24/LeaveEase/internal/user/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MapRepositoryError translates persistence errors into user domain errors.
// Unique violations are recognised from Postgres error codes and, for SQLite,
// from the driver message.
func MapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return usererrors.ErrUsernameTaken
		case strings.Contains(pgErr.ConstraintName, "email"):
			return usererrors.ErrEmailTaken
		}
		return usererrors.ErrUserAlreadyExists
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key value") {
		switch {
		case strings.Contains(msg, "username"):
			return usererrors.ErrUsernameTaken
		case strings.Contains(msg, "email"):
			return usererrors.ErrEmailTaken
		}
		return usererrors.ErrUserAlreadyExists
	}

	return err
}
