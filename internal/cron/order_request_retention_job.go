package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/origen-putumayo/storefront/pkg/logger"
)

const (
	orderRequestRetentionJobName = "order-request-retention"
	defaultRetentionDays         = 180
)

type orderPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type OrderRequestRetentionJobParams struct {
	Logger        *logger.Logger
	Repository    orderPurger
	RetentionDays int
	Now           func() time.Time
}

// OrderRequestRetentionJob deletes order requests, and the customer details they hold,
// once they are older than the retention window.
type OrderRequestRetentionJob struct {
	logg      *logger.Logger
	repo      orderPurger
	retention time.Duration
	now       func() time.Time
}

func NewOrderRequestRetentionJob(params OrderRequestRetentionJobParams) (*OrderRequestRetentionJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("order request repository required")
	}
	days := params.RetentionDays
	if days <= 0 {
		days = defaultRetentionDays
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &OrderRequestRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: time.Duration(days) * 24 * time.Hour,
		now:       now,
	}, nil
}

func (j *OrderRequestRetentionJob) Name() string { return orderRequestRetentionJobName }

func (j *OrderRequestRetentionJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge order requests: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff.Format(time.RFC3339),
		"deleted": deleted,
	}), "order request retention applied")
	return deleted, nil
}
