package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/origen-putumayo/storefront/pkg/db/models"
)

// ProductDTO is the public catalog projection of a product.
type ProductDTO struct {
	ID           uuid.UUID       `json:"product_id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	CompanyID    *uuid.UUID      `json:"company_id,omitempty"`
	CompanyName  *string         `json:"company_name,omitempty"`
	Images       []string        `json:"images"`
	Availability string          `json:"availability"`
	Category     *string         `json:"category,omitempty"`
	IsTop        bool            `json:"is_top"`
	Location     *string         `json:"location,omitempty"`
	VariantGroup *string         `json:"variant_group,omitempty"`
	WeightValue  *float64        `json:"weight_value,omitempty"`
	WeightUnit   *string         `json:"weight_unit,omitempty"`
}

// AdminProductDTO adds bookkeeping fields for the back office.
type AdminProductDTO struct {
	ProductDTO
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyDTO is a producer option for the admin product form.
type CompanyDTO struct {
	ID   uuid.UUID `json:"company_id"`
	Name string    `json:"name"`
}

// NewProductDTO expects Images and Company to be preloaded.
func NewProductDTO(p *models.Product) ProductDTO {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}
	dto := ProductDTO{
		ID:           p.ID,
		Slug:         GenerateSlug(p.Name, p.ID),
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Currency:     p.Currency,
		CompanyID:    p.CompanyID,
		Images:       images,
		Availability: p.Availability.String(),
		Category:     p.Category,
		IsTop:        p.IsTop,
		Location:     p.Location,
		VariantGroup: p.VariantGroup,
		WeightValue:  p.WeightValue,
		WeightUnit:   p.WeightUnit,
	}
	if p.Company != nil {
		name := p.Company.Name
		dto.CompanyName = &name
	}
	return dto
}

func newAdminProductDTO(p *models.Product) AdminProductDTO {
	return AdminProductDTO{
		ProductDTO: NewProductDTO(p),
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func newCompanyDTO(c models.Company) CompanyDTO {
	return CompanyDTO{ID: c.ID, Name: c.Name}
}
