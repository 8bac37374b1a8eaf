package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/pkg/db/models"
	"github.com/origen-putumayo/storefront/pkg/enums"
)

// Repository persists order requests recorded at checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.OrderRequest) error
	FindForSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.OrderRequest, error)
	MarkDispatched(ctx context.Context, id uuid.UUID, at time.Time) error
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order request repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.OrderRequest) error {
	if order.Status == "" {
		order.Status = enums.OrderRequestStatusPending
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// FindForSession returns nil when the order does not exist or belongs to another session.
func (r *repository) FindForSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.OrderRequest, error) {
	var order models.OrderRequest
	err := r.db.WithContext(ctx).
		Where("order_request_id = ? AND session_id = ?", id, sessionID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// MarkDispatched moves a pending order to dispatched. Already dispatched orders are left untouched.
func (r *repository) MarkDispatched(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("order_request_id = ? AND status = ?", id, enums.OrderRequestStatusPending).
		Updates(map[string]any{
			"status":        enums.OrderRequestStatusDispatched,
			"dispatched_at": at,
		}).Error
}

// ExpirePendingBefore marks pending orders created before cutoff as expired.
func (r *repository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("status = ? AND created_at < ?", enums.OrderRequestStatusPending, cutoff).
		Update("status", enums.OrderRequestStatusExpired)
	return res.RowsAffected, res.Error
}

// DeleteOlderThan purges order requests, and the customer data they hold, created before cutoff.
func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.OrderRequest{})
	return res.RowsAffected, res.Error
}
