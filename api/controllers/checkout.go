package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/origen-putumayo/storefront/api/middleware"
	"github.com/origen-putumayo/storefront/api/responses"
	"github.com/origen-putumayo/storefront/api/validators"
	cartsvc "github.com/origen-putumayo/storefront/internal/cart"
	checkoutsvc "github.com/origen-putumayo/storefront/internal/checkout"
	"github.com/origen-putumayo/storefront/pkg/enums"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/types"
)

// CheckoutPreview returns the order review for the session cart.
func CheckoutPreview(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		store := cartsvc.FromContext(r.Context())

		responses.WriteSuccess(w, svc.Preview(r.Context(), store))
	}
}

// CheckoutSubmit records the order and returns the composed message with its dispatch link.
// The cart is only cleared once the hand-off is confirmed.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		store := cartsvc.FromContext(r.Context())

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submission, err := svc.Submit(r.Context(), store, checkoutsvc.SubmitInput{
			SessionID: middleware.CartSessionIDFromContext(r.Context()),
			ClientIP:  middleware.ClientIP(r),
			Customer:  payload.toCustomer(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, submission)
	}
}

// CheckoutHandOff confirms whether the chat window opened. An opened hand-off clears the cart.
func CheckoutHandOff(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		store := cartsvc.FromContext(r.Context())

		orderID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "orderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload handOffRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.HandOff(r.Context(), store, middleware.CartSessionIDFromContext(r.Context()), orderID, checkoutsvc.ReportedOpener(payload.Opened))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// checkoutRequest mirrors the buyer form; field rules are enforced by the checkout service
// so violations come back keyed by field.
type checkoutRequest struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	DocumentType string `json:"document_type"`
	DocumentID   string `json:"document_id"`
	References   string `json:"references,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (r checkoutRequest) toCustomer() types.CustomerSnapshot {
	return types.CustomerSnapshot{
		FullName:     r.FullName,
		Phone:        r.Phone,
		Address:      r.Address,
		City:         r.City,
		DocumentType: enums.DocumentType(strings.TrimSpace(r.DocumentType)),
		DocumentID:   r.DocumentID,
		References:   r.References,
		Notes:        r.Notes,
	}
}

type handOffRequest struct {
	Opened bool `json:"opened"`
}
