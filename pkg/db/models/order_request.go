package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/pkg/enums"
	"github.com/origen-putumayo/storefront/pkg/types"
)

// OrderRequest records one confirmed checkout before it is handed off to the seller chat.
type OrderRequest struct {
	ID            uuid.UUID                `gorm:"column:order_request_id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID     string                   `gorm:"column:session_id;not null"`
	Customer      types.CustomerSnapshot   `gorm:"column:customer;type:jsonb;not null"`
	Items         types.OrderItemSnapshots `gorm:"column:items_json;type:jsonb;not null"`
	Total         decimal.Decimal          `gorm:"column:total;type:numeric(14,2);not null"`
	Message       string                   `gorm:"column:message;not null"`
	Status        enums.OrderRequestStatus `gorm:"column:status;not null;default:'pending'"`
	InternalNotes *string                  `gorm:"column:internal_notes"`
	DispatchedAt  *time.Time               `gorm:"column:dispatched_at"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderRequest) TableName() string { return "order_request" }

func (o *OrderRequest) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
