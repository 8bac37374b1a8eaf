package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a producer whose products are listed in the catalog.
type Company struct {
	ID        uuid.UUID `gorm:"column:company_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Company) TableName() string { return "company" }

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
