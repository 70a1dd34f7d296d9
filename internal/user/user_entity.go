package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleEmployee = "EMPLOYEE"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

type User struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Username   string    `gorm:"column:username;type:varchar(100);not null;uniqueIndex"`
	Email      string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Password   string    `gorm:"column:password;type:text;not null"`
	FullName   string    `gorm:"column:full_name;type:varchar(255);index"`
	Department string    `gorm:"column:department;type:varchar(100)"`
	Role       string    `gorm:"column:role;type:varchar(20);not null;default:EMPLOYEE"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
