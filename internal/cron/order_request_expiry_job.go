package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/origen-putumayo/storefront/pkg/logger"
)

const (
	orderRequestExpiryJobName = "order-request-expiry"
	defaultPendingTTL         = 72 * time.Hour
)

type pendingExpirer interface {
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type OrderRequestExpiryJobParams struct {
	Logger     *logger.Logger
	Repository pendingExpirer
	PendingTTL time.Duration
	Now        func() time.Time
}

// OrderRequestExpiryJob marks order requests that were never handed off as expired.
type OrderRequestExpiryJob struct {
	logg *logger.Logger
	repo pendingExpirer
	ttl  time.Duration
	now  func() time.Time
}

func NewOrderRequestExpiryJob(params OrderRequestExpiryJobParams) (*OrderRequestExpiryJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("order request repository required")
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &OrderRequestExpiryJob{logg: params.Logger, repo: params.Repository, ttl: ttl, now: now}, nil
}

func (j *OrderRequestExpiryJob) Name() string { return orderRequestExpiryJobName }

func (j *OrderRequestExpiryJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.ttl)
	expired, err := j.repo.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire pending order requests: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"cutoff":  cutoff.Format(time.RFC3339),
			"expired": expired,
		}), "pending order requests expired")
	}
	return expired, nil
}
