package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/origen-putumayo/storefront/api/middleware"
	"github.com/origen-putumayo/storefront/api/responses"
	"github.com/origen-putumayo/storefront/api/validators"
	productsvc "github.com/origen-putumayo/storefront/internal/products"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/logger"
)

// AdminListProducts returns every product, active or not, newest first.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		products, err := svc.AdminListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// AdminCreateProduct handles product creation from the back office.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		companyID, err := parseOptionalUUID(payload.CompanyID, "company_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithUserID(ctx, middleware.UserIDFromContext(ctx))
		}

		product, err := svc.CreateProduct(ctx, productsvc.CreateProductInput{
			Name:        validators.SanitizeString(payload.Name, maxProductNameLen),
			Description: payload.Description,
			Price:       payload.Price,
			CompanyID:   companyID,
			Category:    payload.Category,
			Location:    payload.Location,
			ImageURLs:   payload.ImageURLs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "product_id", product.ID.String()), "admin.product.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct replaces the editable fields of a product.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		companyID, err := parseOptionalUUID(payload.CompanyID, "company_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, productsvc.UpdateProductInput{
			Name:        validators.SanitizeString(payload.Name, maxProductNameLen),
			Description: payload.Description,
			Price:       payload.Price,
			CompanyID:   companyID,
			ImageURLs:   payload.ImageURLs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product and its images.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "product_id", productID.String()), "admin.product.deleted")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminListCompanies returns the producers selectable in the product form.
func AdminListCompanies(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		companies, err := svc.ListCompanies(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, companies)
	}
}

const maxProductNameLen = 200

type productRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CompanyID   *string         `json:"company_id,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Location    *string         `json:"location,omitempty"`
	ImageURLs   []string        `json:"image_urls,omitempty" validate:"omitempty,max=20"`
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "productId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]string{field: "must be a uuid"})
	}
	return &id, nil
}
