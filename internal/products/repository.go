package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/pkg/db/models"
)

// Repository wires together all catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) withDetail(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		})
}

// attachCompanies loads the producers of products in one query, keyed by company_id.
func (r *Repository) attachCompanies(ctx context.Context, products []models.Product) error {
	ids := make([]uuid.UUID, 0, len(products))
	seen := make(map[uuid.UUID]struct{}, len(products))
	for i := range products {
		id := products[i].CompanyID
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	if len(ids) == 0 {
		return nil
	}
	var companies []models.Company
	if err := r.db.WithContext(ctx).Where("company_id IN ?", ids).Find(&companies).Error; err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*models.Company, len(companies))
	for i := range companies {
		byID[companies[i].ID] = &companies[i]
	}
	for i := range products {
		if products[i].CompanyID != nil {
			products[i].Company = byID[*products[i].CompanyID]
		}
	}
	return nil
}

func (r *Repository) findDetailed(ctx context.Context, query *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	if err := r.attachCompanies(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListActive returns the public catalog ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	return r.findDetailed(ctx, r.withDetail(ctx).
		Where("is_active = ?", true).
		Order("name ASC"))
}

// ListAll returns every product, active or not, ordered by name.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	return r.findDetailed(ctx, r.withDetail(ctx).Order("name ASC"))
}

// FindByID loads the product with its company and ordered images. Missing rows yield gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.withDetail(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		return nil, err
	}
	found := []models.Product{product}
	if err := r.attachCompanies(ctx, found); err != nil {
		return nil, err
	}
	return &found[0], nil
}

// FindActiveByIDPrefix returns active products whose id starts with the given hex prefix.
func (r *Repository) FindActiveByIDPrefix(ctx context.Context, prefix string) ([]models.Product, error) {
	return r.findDetailed(ctx, r.withDetail(ctx).
		Where("is_active = ? AND CAST(product_id AS TEXT) LIKE ?", true, prefix+"%").
		Order("name ASC"))
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Images").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the given column values to one product.
func (r *Repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_id = ?", id).
		Updates(updates).Error
}

// DeleteProduct removes images before the product row.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
		return false, err
	}
	res := tx.Where("product_id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReplaceImages deletes all images of the product and inserts urls in order.
func (r *Repository) ReplaceImages(ctx context.Context, productID uuid.UUID, urls []string) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	return r.InsertImages(ctx, productID, urls)
}

// InsertImages appends urls using their slice position as order_index.
func (r *Repository) InsertImages(ctx context.Context, productID uuid.UUID, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	rows := make([]models.ProductImage, len(urls))
	for i, url := range urls {
		rows[i] = models.ProductImage{ProductID: productID, URL: url, OrderIndex: i}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListActiveCompanies returns the producers offered in the admin form, by name.
func (r *Repository) ListActiveCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&companies).Error
	return companies, err
}

// FindCompany returns nil when the company does not exist.
func (r *Repository) FindCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "company_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

type sellerRow struct {
	ProductID   string
	CompanyName string
}

// CompanyNamesByProduct maps product ids to their producer names. Products without a company are omitted.
func (r *Repository) CompanyNamesByProduct(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []sellerRow
	err := r.db.WithContext(ctx).
		Table("product AS p").
		Select("p.product_id AS product_id, c.name AS company_name").
		Joins("JOIN company c ON c.company_id = p.company_id").
		Where("p.product_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		id, parseErr := uuid.Parse(row.ProductID)
		if parseErr != nil {
			continue
		}
		out[id] = row.CompanyName
	}
	return out, nil
}
