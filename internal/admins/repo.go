package admins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/pkg/db/models"
)

// Repository reads the admin allow-list.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admins repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Exists reports whether the user id is on the allow-list.
func (r *Repository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
