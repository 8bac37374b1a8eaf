package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartdto "github.com/origen-putumayo/storefront/api/controllers/cart/dto"
	"github.com/origen-putumayo/storefront/api/responses"
	"github.com/origen-putumayo/storefront/api/validators"
	cartsvc "github.com/origen-putumayo/storefront/internal/cart"
	productsvc "github.com/origen-putumayo/storefront/internal/products"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/logger"
)

// ProductLookup resolves the catalog facts captured when a line is added.
type ProductLookup interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error)
}

// CartFetch returns the session cart.
func CartFetch(logg *logger.Logger) http.HandlerFunc {
	return withStore(func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		responses.WriteSuccess(w, newCartView(store.State()))
	})
}

// CartAddItem adds an active catalog product to the session cart.
func CartAddItem(products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return withStore(func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		if products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.AddItem(toItemInput(product), requestedQuantity(payload), addOptions(payload))
		responses.WriteSuccess(w, newCartView(store.State()))
	})
}

// CartUpdateItem moves a line's quantity by the requested delta.
func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return withStore(func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		itemID, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.UpdateQuantity(itemID, payload.Delta)
		responses.WriteSuccess(w, newCartView(store.State()))
	})
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return withStore(func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		itemID, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.RemoveItem(itemID)
		responses.WriteSuccess(w, newCartView(store.State()))
	})
}

// CartClear empties the cart.
func CartClear(logg *logger.Logger) http.HandlerFunc {
	return withStore(func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		store.Clear()
		responses.WriteSuccess(w, newCartView(store.State()))
	})
}

func CartOpenPanel(logg *logger.Logger) http.HandlerFunc {
	return stateAction(logg, (*cartsvc.Store).OpenPanel)
}

func CartClosePanel(logg *logger.Logger) http.HandlerFunc {
	return stateAction(logg, (*cartsvc.Store).ClosePanel)
}

func NotificationPause(logg *logger.Logger) http.HandlerFunc {
	return stateAction(logg, (*cartsvc.Store).PauseNotificationTimer)
}

func NotificationResume(logg *logger.Logger) http.HandlerFunc {
	return stateAction(logg, (*cartsvc.Store).ResumeNotificationTimer)
}

func NotificationDismiss(logg *logger.Logger) http.HandlerFunc {
	return stateAction(logg, (*cartsvc.Store).DismissNotification)
}

func stateAction(logg *logger.Logger, action func(*cartsvc.Store)) http.HandlerFunc {
	return withStore(func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		action(store)
		responses.WriteSuccess(w, newCartView(store.State()))
	})
}

// withStore expects the CartSession middleware upstream; without it FromContext panics
// and Recoverer answers 500.
func withStore(next func(http.ResponseWriter, *http.Request, *cartsvc.Store)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r, cartsvc.FromContext(r.Context()))
	}
}

func itemIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	return id, nil
}
