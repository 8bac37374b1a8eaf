package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/pkg/enums"
)

// Product represents one catalog listing offered by a producer company.
// Company is filled by the catalog repository, not by GORM associations.
type Product struct {
	ID           uuid.UUID                 `gorm:"column:product_id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID    *uuid.UUID                `gorm:"column:company_id;type:uuid"`
	Name         string                    `gorm:"column:name;not null"`
	Description  *string                   `gorm:"column:description"`
	Price        decimal.Decimal           `gorm:"column:price;type:numeric(12,2);not null"`
	Currency     string                    `gorm:"column:currency;not null;default:'COP'"`
	Category     *string                   `gorm:"column:category"`
	Location     *string                   `gorm:"column:location"`
	Availability enums.ProductAvailability `gorm:"column:availability;not null;default:'available'"`
	IsTop        bool                      `gorm:"column:is_top;not null;default:false"`
	IsActive     bool                      `gorm:"column:is_active;not null;default:true"`
	VariantGroup *string                   `gorm:"column:variant_group"`
	WeightValue  *float64                  `gorm:"column:weight_value;type:numeric(10,2)"`
	WeightUnit   *string                   `gorm:"column:weight_unit"`
	Company      *Company                  `gorm:"-"`
	Images       []ProductImage            `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "product" }

// BeforeCreate assigns the primary key client-side so inserts work without a database default.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
