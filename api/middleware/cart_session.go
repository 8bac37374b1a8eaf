package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/origen-putumayo/storefront/api/responses"
	"github.com/origen-putumayo/storefront/internal/cart"
	"github.com/origen-putumayo/storefront/pkg/config"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/logger"
)

// CartSessionHeader lets non-browser clients carry the session without cookies.
const CartSessionHeader = "X-Cart-Session"

type cartRegistry interface {
	Get(ctx context.Context, sessionID string) (*cart.Store, error)
}

// CartSession resolves the visitor's cart session, minting one when absent or malformed,
// and scopes the session's store into the request context.
func CartSession(cfg config.CartConfig, registry cartRegistry, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, fresh := sessionFromRequest(r, cfg.SessionCookie)
			if fresh {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.SessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.SessionCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(CartSessionHeader, sessionID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			store, err := registry.Get(ctx, sessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart unavailable"))
				return
			}

			ctx = WithCartSessionID(ctx, sessionID)
			ctx = cart.WithStore(ctx, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request, cookieName string) (string, bool) {
	if raw := strings.TrimSpace(r.Header.Get(CartSessionHeader)); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String(), false
		}
	}
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			if id, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
				return id.String(), false
			}
		}
	}
	return uuid.NewString(), true
}
