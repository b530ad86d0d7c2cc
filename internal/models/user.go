package models

import "time"

type UserRole string

const (
	RoleTechnician UserRole = "technician"
	RoleDispatcher UserRole = "dispatcher"
	RoleSupervisor UserRole = "supervisor"
)

// UserEntity mirrors the identity provider. The engine only consumes ids for
// crew membership and audit stamps.
type UserEntity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:technician" json:"role"`
	Active    *bool     `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserEntity) TableName() string {
	return "users"
}
