package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *LateAttendance) error
	FindByID(ctx context.Context, id string) (*LateAttendance, error)
	FindByEmployee(ctx context.Context, name string) ([]LateAttendance, error)
	FindByDate(ctx context.Context, day time.Time) ([]LateAttendance, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]LateAttendance, error)
	CountByEmployeeBetween(ctx context.Context, name string, from, to time.Time) (int64, error)
	ExistsByEmployeeAndDate(ctx context.Context, name string, day time.Time) (bool, error)
	Update(ctx context.Context, rec *LateAttendance) error
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

func (r *repository) Create(ctx context.Context, rec *LateAttendance) error {
	return r.conn(ctx).Create(rec).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LateAttendance, error) {
	var rec LateAttendance
	err := r.conn(ctx).First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) FindByEmployee(ctx context.Context, name string) ([]LateAttendance, error) {
	var recs []LateAttendance
	err := r.conn(ctx).
		Where("employee_name = ?", name).
		Order("date DESC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) FindByDate(ctx context.Context, day time.Time) ([]LateAttendance, error) {
	var recs []LateAttendance
	err := r.conn(ctx).
		Where("date = ?", day).
		Order("employee_name ASC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) FindBetween(ctx context.Context, from, to time.Time) ([]LateAttendance, error) {
	var recs []LateAttendance
	err := r.conn(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, employee_name ASC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) CountByEmployeeBetween(ctx context.Context, name string, from, to time.Time) (int64, error) {
	var n int64
	err := r.conn(ctx).
		Model(&LateAttendance{}).
		Where("employee_name = ?", name).
		Where("date >= ? AND date <= ?", from, to).
		Count(&n).Error
	return n, err
}

func (r *repository) ExistsByEmployeeAndDate(ctx context.Context, name string, day time.Time) (bool, error) {
	var n int64
	err := r.conn(ctx).
		Model(&LateAttendance{}).
		Where("employee_name = ? AND date = ?", name, day).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) Update(ctx context.Context, rec *LateAttendance) error {
	return r.conn(ctx).Save(rec).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&LateAttendance{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
