package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/origen-putumayo/storefront/api/responses"
	productsvc "github.com/origen-putumayo/storefront/internal/products"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/logger"
)

// PublicListProducts returns the active catalog.
func PublicListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// PublicGetProduct resolves a product detail page by its slug.
func PublicGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		product, err := svc.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
