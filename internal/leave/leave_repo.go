package leave

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByEmployee(ctx context.Context, name, id string) ([]LeaveRequest, error)
	FindByStatus(ctx context.Context, status string) ([]LeaveRequest, error)
	FindStartingBetween(ctx context.Context, from, to time.Time, status string) ([]LeaveRequest, error)
	FindCurrentlyOnLeave(ctx context.Context, day time.Time) ([]LeaveRequest, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Update(ctx context.Context, l *LeaveRequest) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.conn(ctx).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

// FindByEmployee matches on the stored requester id or, for records that
// predate it, on the requester name.
func (r *repository) FindByEmployee(ctx context.Context, name, id string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	db := r.conn(ctx)
	if id != "" {
		db = db.Where("employee_id = ? OR employee_name = ?", id, name)
	} else {
		db = db.Where("employee_name = ?", name)
	}
	err := db.Order("start_date DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByStatus(ctx context.Context, status string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.conn(ctx).
		Where("status = ?", status).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindStartingBetween(ctx context.Context, from, to time.Time, status string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.conn(ctx).
		Where("status = ?", status).
		Where("start_date >= ? AND start_date <= ?", from, to).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindCurrentlyOnLeave(ctx context.Context, day time.Time) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.conn(ctx).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.conn(ctx).
		Model(&LeaveRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Save(l).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&LeaveRequest{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
