package model

import "time"

type UserRole string

const (
	Student   UserRole = "student"
	Professor UserRole = "professor"
	Admin     UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Department string    `gorm:"size:50;index" json:"department"` // 所属学科/院系
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastLogin"`
	LastSeen   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
