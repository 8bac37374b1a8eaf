package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/origen-putumayo/storefront/internal/cart"
	checkoutrules "github.com/origen-putumayo/storefront/pkg/checkout"
	"github.com/origen-putumayo/storefront/pkg/db/models"
	"github.com/origen-putumayo/storefront/pkg/enums"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/metrics"
	"github.com/origen-putumayo/storefront/pkg/types"
)

// EmptyCartMessage is shown instead of the checkout form when the cart has no lines.
const EmptyCartMessage = "Tu carrito está vacío"

type submissionGuard interface {
	Acquire(ctx context.Context, sessionID string) (func(), error)
	Allow(ctx context.Context, phone, ip string) error
}

// Service orchestrates the checkout review, submission and hand-off.
type Service interface {
	Preview(ctx context.Context, store *cart.Store) Preview
	Submit(ctx context.Context, store *cart.Store, input SubmitInput) (*Submission, error)
	HandOff(ctx context.Context, store *cart.Store, sessionID string, orderID uuid.UUID, opener Opener) (*DispatchResult, error)
}

// Preview is the read-only review of the current cart.
type Preview struct {
	Empty   bool                     `json:"empty"`
	Message string                   `json:"message,omitempty"`
	Items   types.OrderItemSnapshots `json:"items"`
	Total   decimal.Decimal          `json:"total"`
}

// SubmitInput carries the buyer form and the request facts used for throttling.
type SubmitInput struct {
	SessionID string
	ClientIP  string
	Customer  types.CustomerSnapshot
}

// Submission is a recorded order ready to be handed off. The cart is left untouched.
type Submission struct {
	OrderID uuid.UUID                `json:"order_id"`
	Items   types.OrderItemSnapshots `json:"items"`
	Total   decimal.Decimal          `json:"total"`
	Message string                   `json:"message"`
	URL     string                   `json:"url,omitempty"`
}

// ServiceParams wires the checkout service.
type ServiceParams struct {
	Repo      Repository
	Assembler *Assembler
	Formatter MessageFormatter
	Links     LinkBuilder
	Guard     submissionGuard
	Metrics   *metrics.StorefrontMetrics
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      Repository
	assembler *Assembler
	formatter MessageFormatter
	links     LinkBuilder
	guard     submissionGuard
	metrics   *metrics.StorefrontMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the checkout service.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if p.Assembler == nil {
		p.Assembler = NewAssembler(nil, DefaultSellerLabel, p.Logger)
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:      p.Repo,
		assembler: p.Assembler,
		formatter: p.Formatter,
		links:     p.Links,
		guard:     p.Guard,
		metrics:   p.Metrics,
		logg:      p.Logger,
		now:       p.Now,
	}, nil
}

func (s *service) Preview(ctx context.Context, store *cart.Store) Preview {
	items := store.Items()
	if len(items) == 0 {
		return Preview{Empty: true, Message: EmptyCartMessage, Items: types.OrderItemSnapshots{}, Total: decimal.Zero}
	}
	snapshot := s.assembler.Snapshot(ctx, items)
	return Preview{Items: snapshot, Total: snapshot.Total()}
}

func (s *service) Submit(ctx context.Context, store *cart.Store, input SubmitInput) (*Submission, error) {
	items := store.Items()
	if len(items) == 0 {
		s.metrics.IncSubmission(metrics.OutcomeEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, EmptyCartMessage)
	}

	customer := checkoutrules.NormalizeCustomer(input.Customer)
	if err := checkoutrules.CustomerError(customer, len(items)); err != nil {
		s.metrics.IncSubmission(metrics.OutcomeInvalid)
		return nil, err
	}

	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, input.SessionID)
		if err != nil {
			s.metrics.IncSubmission(outcomeFor(err, metrics.OutcomeInFlight))
			return nil, err
		}
		defer release()

		if err := s.guard.Allow(ctx, customer.Phone, input.ClientIP); err != nil {
			s.metrics.IncSubmission(outcomeFor(err, metrics.OutcomeRateLimited))
			return nil, err
		}
	}

	snapshot := s.assembler.Snapshot(ctx, items)
	total := snapshot.Total()
	message := s.formatter.FormatMessage(customer, snapshot, total)

	order := &models.OrderRequest{
		ID:        uuid.New(),
		SessionID: input.SessionID,
		Customer:  customer,
		Items:     snapshot,
		Total:     total,
		Message:   message,
		Status:    enums.OrderRequestStatusPending,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		s.metrics.IncSubmission(metrics.OutcomeFailed)
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.order.persist_failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not record the order, please try again").
			WithDetails(map[string]any{"message": message})
	}

	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithOrderID(ctx, order.ID.String())
	}
	link, err := s.links.Build(message)
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "checkout.dispatch.link_unavailable")
	}

	s.metrics.IncSubmission(metrics.OutcomeAccepted)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
			"items": len(snapshot),
			"total": total.String(),
		}), "checkout.order.recorded")
	}

	return &Submission{
		OrderID: order.ID,
		Items:   snapshot,
		Total:   total,
		Message: message,
		URL:     link,
	}, nil
}

func (s *service) HandOff(ctx context.Context, store *cart.Store, sessionID string, orderID uuid.UUID, opener Opener) (*DispatchResult, error) {
	order, err := s.repo.FindForSession(ctx, orderID, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order request")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order request not found")
	}

	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithOrderID(ctx, order.ID.String())
	}

	result := ConfirmAndHandOff(ctx, store, s.links, order.Message, opener)
	if !result.Opened {
		s.metrics.IncHandOff(metrics.HandOffBlocked)
		if s.logg != nil {
			s.logg.Warn(logCtx, "checkout.handoff.blocked")
		}
		return &result, nil
	}

	s.metrics.IncHandOff(metrics.HandOffOpened)
	if order.Status != enums.OrderRequestStatusDispatched {
		if err := s.repo.MarkDispatched(ctx, order.ID, s.now().UTC()); err != nil && s.logg != nil {
			s.logg.Error(logCtx, "checkout.order.mark_dispatched_failed", err)
		}
	}
	if s.logg != nil {
		s.logg.Info(logCtx, "checkout.handoff.opened")
	}
	return &result, nil
}

func outcomeFor(err error, fallback string) string {
	if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		return metrics.OutcomeFailed
	}
	return fallback
}
