package checkout

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/origen-putumayo/storefront/pkg/config"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/redis"
)

const (
	ReasonTooManyOrders      = "too_many_orders"
	ReasonConnectionActivity = "connection_activity"

	defaultInFlightTTL = 30 * time.Second
)

type guardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	CheckoutInFlightKey(sessionID string) string
}

var _ guardStore = (*redis.Client)(nil)

// SubmissionGuard debounces concurrent submissions per session and throttles orders per phone and per IP.
type SubmissionGuard struct {
	store       guardStore
	hashKey     []byte
	inFlightTTL time.Duration
	phoneLimit  int64
	phoneWindow time.Duration
	ipLimit     int64
	ipWindow    time.Duration
}

// NewSubmissionGuard builds a guard from checkout config. Non-positive limits disable that window.
func NewSubmissionGuard(store guardStore, cfg config.CheckoutConfig) *SubmissionGuard {
	ttl := cfg.InFlightTTL
	if ttl <= 0 {
		ttl = defaultInFlightTTL
	}
	return &SubmissionGuard{
		store:       store,
		hashKey:     []byte(cfg.PIIHashKey),
		inFlightTTL: ttl,
		phoneLimit:  int64(cfg.PhoneLimit),
		phoneWindow: cfg.PhoneWindow,
		ipLimit:     int64(cfg.IPLimit),
		ipWindow:    cfg.IPWindow,
	}
}

// Acquire marks a submission in flight for the session. The returned release must be called once done.
func (g *SubmissionGuard) Acquire(ctx context.Context, sessionID string) (func(), error) {
	if g == nil || g.store == nil {
		return func() {}, nil
	}
	key := g.store.CheckoutInFlightKey(sessionID)
	ok, err := g.store.SetNX(ctx, key, "1", g.inFlightTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout guard unavailable")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a submission for this cart is already in progress")
	}
	return func() {
		_ = g.store.Del(context.WithoutCancel(ctx), key)
	}, nil
}

// Allow counts one order attempt against the phone and IP windows.
func (g *SubmissionGuard) Allow(ctx context.Context, phone, ip string) error {
	if g == nil || g.store == nil {
		return nil
	}
	if phone != "" && g.phoneLimit > 0 && g.phoneWindow > 0 {
		if err := g.check(ctx, "checkout:phone:"+g.hash(phone), g.phoneLimit, g.phoneWindow, ReasonTooManyOrders,
			"too many orders from this phone number, try again later"); err != nil {
			return err
		}
	}
	if ip != "" && g.ipLimit > 0 && g.ipWindow > 0 {
		if err := g.check(ctx, "checkout:ip:"+g.hash(ip), g.ipLimit, g.ipWindow, ReasonConnectionActivity,
			"too much activity from this connection, try again later"); err != nil {
			return err
		}
	}
	return nil
}

func (g *SubmissionGuard) check(ctx context.Context, scope string, limit int64, window time.Duration, reason, msg string) error {
	allowed, count, err := g.store.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout rate limiter unavailable")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, msg).WithDetails(map[string]any{
			"reason":         reason,
			"limit":          limit,
			"count":          count,
			"window_seconds": int64(window.Seconds()),
		})
	}
	return nil
}

// hash keeps raw phone numbers and addresses out of redis keys.
func (g *SubmissionGuard) hash(value string) string {
	h, err := blake2b.New256(g.hashKey)
	if err != nil {
		// keys longer than 64 bytes are rejected; fall back to unkeyed
		sum := blake2b.Sum256([]byte(value))
		return hex.EncodeToString(sum[:16])
	}
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil)[:16])
}
