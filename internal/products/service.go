package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/pkg/db"
	"github.com/origen-putumayo/storefront/pkg/db/models"
	"github.com/origen-putumayo/storefront/pkg/enums"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
)

const defaultCurrency = "COP"

// Service exposes catalog reads and admin product management.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	AdminListProducts(ctx context.Context) ([]AdminProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*AdminProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*AdminProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	ListCompanies(ctx context.Context) ([]CompanyDTO, error)
	SellerNames(ctx context.Context, productIDs []string) (map[string]string, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	CompanyID   *uuid.UUID
	Category    *string
	Location    *string
	ImageURLs   []string
}

// UpdateProductInput carries the editable fields. CompanyID is applied only when set and
// images are replaced only when at least one non-blank url is supplied.
type UpdateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	CompanyID   *uuid.UUID
	ImageURLs   []string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, NewProductDTO(&products[i]))
	}
	return out, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	prefix, ok := SlugSuffix(strings.TrimSpace(slug))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	// product ids are rendered with dashes; the first group holds exactly 8 hex chars
	candidates, err := s.repo.FindActiveByIDPrefix(ctx, prefix)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	for i := range candidates {
		dto := NewProductDTO(&candidates[i])
		if dto.Slug == slug {
			return &dto, nil
		}
	}
	if len(candidates) == 1 {
		// renamed products keep resolving by id prefix
		dto := NewProductDTO(&candidates[0])
		return &dto, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) AdminListProducts(ctx context.Context) ([]AdminProductDTO, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]AdminProductDTO, 0, len(products))
	for i := range products {
		out = append(out, newAdminProductDTO(&products[i]))
	}
	return out, nil
}

// CreateProduct inserts the product with availability=available, is_top=false and is_active=true.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*AdminProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateProductFields(name, input.Price); err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, input.CompanyID); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product := &models.Product{
			CompanyID:    input.CompanyID,
			Name:         name,
			Description:  trimmedOrNil(input.Description),
			Price:        input.Price,
			Currency:     defaultCurrency,
			Category:     trimmedOrNil(input.Category),
			Location:     trimmedOrNil(input.Location),
			Availability: enums.ProductAvailabilityAvailable,
			IsTop:        false,
			IsActive:     true,
		}
		created, err := txRepo.CreateProduct(ctx, product)
		if err != nil {
			return writeError(err, "db: insert product")
		}
		createdID = created.ID
		if err := txRepo.InsertImages(ctx, created.ID, cleanURLs(input.ImageURLs)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product images")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.adminDetail(ctx, createdID)
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*AdminProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateProductFields(name, input.Price); err != nil {
		return nil, err
	}
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, input.CompanyID); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":        name,
		"description": trimmedOrNil(input.Description),
		"price":       input.Price,
	}
	if input.CompanyID != nil {
		updates["company_id"] = *input.CompanyID
	}
	urls := cleanURLs(input.ImageURLs)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateProduct(ctx, productID, updates); err != nil {
			return writeError(err, "db: update product")
		}
		if len(urls) > 0 {
			if err := txRepo.ReplaceImages(ctx, productID, urls); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace product images")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.adminDetail(ctx, productID)
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	var deleted bool
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).DeleteProduct(ctx, productID)
		deleted = ok
		return err
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) ListCompanies(ctx context.Context) ([]CompanyDTO, error) {
	companies, err := s.repo.ListActiveCompanies(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list companies")
	}
	out := make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		out = append(out, newCompanyDTO(c))
	}
	return out, nil
}

// SellerNames resolves producer names for cart line ids. Ids that are not product uuids are skipped.
func (s *service) SellerNames(ctx context.Context, productIDs []string) (map[string]string, error) {
	ids := make([]uuid.UUID, 0, len(productIDs))
	for _, raw := range productIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	names, err := s.repo.CompanyNamesByProduct(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(names))
	for _, raw := range productIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if name, ok := names[id]; ok {
			out[raw] = name
		}
	}
	return out, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) adminDetail(ctx context.Context, id uuid.UUID) (*AdminProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := newAdminProductDTO(product)
	return &dto, nil
}

func (s *service) ensureCompany(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	company, err := s.repo.FindCompany(ctx, *id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	if company == nil || !company.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "company not found").
			WithDetails(map[string]string{"company_id": "must reference an active company"})
	}
	return nil
}

// writeError maps integrity failures to validation errors; a company deactivated or
// deleted between ensureCompany and the write surfaces as a foreign key violation.
func writeError(err error, step string) error {
	switch db.ClassifyConstraint(err) {
	case db.ConstraintForeignKey:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "company not found").
			WithDetails(map[string]string{"company_id": "must reference an active company"})
	case db.ConstraintCheck:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product").
			WithDetails(map[string]string{"price": "must be zero or greater"})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, step)
	}
}

func validateProductFields(name string, price decimal.Decimal) error {
	details := map[string]string{}
	if name == "" {
		details["name"] = "is required"
	}
	if price.IsNegative() {
		details["price"] = "must be zero or greater"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
