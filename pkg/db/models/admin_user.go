package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser marks an auth subject as allowed into the admin panel.
type AdminUser struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Email     *string   `gorm:"column:email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdminUser) TableName() string { return "admin_users" }
