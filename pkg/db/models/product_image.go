package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductImage stores ordered, externally hosted image URLs for a product.
type ProductImage struct {
	ID         uuid.UUID `gorm:"column:image_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	URL        string    `gorm:"column:url;not null"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProductImage) TableName() string { return "product_image" }

func (i *ProductImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
