package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/internal/cart"
	"github.com/origen-putumayo/storefront/pkg/db/models"
	"github.com/origen-putumayo/storefront/pkg/enums"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/metrics"
)

type stubOrderRepo struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*models.OrderRequest
	createErr  error
	dispatched int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[uuid.UUID]*models.OrderRequest{}}
}

func (r *stubOrderRepo) WithTx(*gorm.DB) Repository { return r }

func (r *stubOrderRepo) Create(_ context.Context, order *models.OrderRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *stubOrderRepo) FindForSession(_ context.Context, id uuid.UUID, sessionID string) (*models.OrderRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.SessionID != sessionID {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (r *stubOrderRepo) MarkDispatched(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched++
	if order, ok := r.orders[id]; ok {
		order.Status = enums.OrderRequestStatusDispatched
		order.DispatchedAt = &at
	}
	return nil
}

func (r *stubOrderRepo) ExpirePendingBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *stubOrderRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubGuard struct {
	acquireErr error
	allowErr   error
	released   int
	phones     []string
}

func (g *stubGuard) Acquire(context.Context, string) (func(), error) {
	if g.acquireErr != nil {
		return nil, g.acquireErr
	}
	return func() { g.released++ }, nil
}

func (g *stubGuard) Allow(_ context.Context, phone, _ string) error {
	g.phones = append(g.phones, phone)
	return g.allowErr
}

type serviceFixture struct {
	svc     Service
	repo    *stubOrderRepo
	guard   *stubGuard
	metrics *metrics.StorefrontMetrics
	reg     *prometheus.Registry
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	repo := newStubOrderRepo()
	guard := &stubGuard{}
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(reg)
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Formatter: testFormatter(),
		Links:     LinkBuilder{Host: "wa.me", Recipient: "573001112233"},
		Guard:     guard,
		Metrics:   m,
		Now:       func() time.Time { return time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return serviceFixture{svc: svc, repo: repo, guard: guard, metrics: m, reg: reg}
}

func submitInput() SubmitInput {
	customer := testCustomer()
	customer.Phone = "(310) 123-4567"
	return SubmitInput{SessionID: "session-1", ClientIP: "10.0.0.1", Customer: customer}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected error without repository")
	}
}

func TestPreviewEmptyCart(t *testing.T) {
	f := newServiceFixture(t)
	store := cart.NewStore(context.Background(), cart.StoreOptions{Key: "origen_cart_v1"})
	t.Cleanup(store.Close)

	preview := f.svc.Preview(context.Background(), store)
	if !preview.Empty || preview.Message != EmptyCartMessage {
		t.Fatalf("expected empty preview, got %+v", preview)
	}
	if len(preview.Items) != 0 || !preview.Total.IsZero() {
		t.Fatalf("expected no lines and zero total, got %+v", preview)
	}
}

func TestPreviewListsSnapshot(t *testing.T) {
	f := newServiceFixture(t)
	store := newCheckoutStore(t)

	preview := f.svc.Preview(context.Background(), store)
	if preview.Empty || len(preview.Items) != 1 {
		t.Fatalf("unexpected preview %+v", preview)
	}
	if preview.Total.IntPart() != 50000 {
		t.Fatalf("expected total 50000, got %s", preview.Total)
	}
}

func TestSubmitEmptyCartIsStateConflict(t *testing.T) {
	f := newServiceFixture(t)
	store := cart.NewStore(context.Background(), cart.StoreOptions{Key: "origen_cart_v1"})
	t.Cleanup(store.Close)

	_, err := f.svc.Submit(context.Background(), store, submitInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(f.repo.orders) != 0 {
		t.Fatalf("expected nothing recorded")
	}
	if got := counterValue(t, f.reg, "checkout_submissions_total", "outcome", metrics.OutcomeEmptyCart); got != 1 {
		t.Fatalf("expected empty_cart outcome counted, got %v", got)
	}
}

func TestSubmitInvalidCustomer(t *testing.T) {
	f := newServiceFixture(t)
	store := newCheckoutStore(t)
	input := submitInput()
	input.Customer.FullName = "Al"

	_, err := f.svc.Submit(context.Background(), store, input)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.guard.phones) != 0 {
		t.Fatalf("guard must not be consulted for invalid forms")
	}
}

func TestSubmitRecordsOrderAndLeavesCart(t *testing.T) {
	f := newServiceFixture(t)
	store := newCheckoutStore(t)

	submission, err := f.svc.Submit(context.Background(), store, submitInput())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(store.Items()) != 1 {
		t.Fatalf("submit must not clear the cart")
	}
	order, ok := f.repo.orders[submission.OrderID]
	if !ok {
		t.Fatalf("expected order recorded")
	}
	if order.Customer.Phone != "3101234567" {
		t.Fatalf("expected sanitized phone, got %q", order.Customer.Phone)
	}
	if order.Message != submission.Message {
		t.Fatalf("stored message differs from returned message")
	}
	if !strings.Contains(submission.Message, "Subtotal: $ 50.000") {
		t.Fatalf("unexpected message:\n%s", submission.Message)
	}
	if !strings.HasPrefix(submission.URL, "https://wa.me/573001112233?text=NUEVO%20PEDIDO") {
		t.Fatalf("unexpected dispatch url %s", submission.URL)
	}
	if f.guard.released != 1 {
		t.Fatalf("expected in-flight marker released, got %d", f.guard.released)
	}
	if got := f.guard.phones; len(got) != 1 || got[0] != "3101234567" {
		t.Fatalf("expected guard keyed by sanitized phone, got %v", got)
	}
	if got := counterValue(t, f.reg, "checkout_submissions_total", "outcome", metrics.OutcomeAccepted); got != 1 {
		t.Fatalf("expected accepted outcome counted, got %v", got)
	}
}

func TestSubmitInFlightConflict(t *testing.T) {
	f := newServiceFixture(t)
	f.guard.acquireErr = pkgerrors.New(pkgerrors.CodeConflict, "in progress")
	store := newCheckoutStore(t)

	_, err := f.svc.Submit(context.Background(), store, submitInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := counterValue(t, f.reg, "checkout_submissions_total", "outcome", metrics.OutcomeInFlight); got != 1 {
		t.Fatalf("expected in_flight outcome counted, got %v", got)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	f := newServiceFixture(t)
	f.guard.allowErr = pkgerrors.New(pkgerrors.CodeRateLimit, "slow down").
		WithDetails(map[string]any{"reason": ReasonTooManyOrders})
	store := newCheckoutStore(t)

	_, err := f.svc.Submit(context.Background(), store, submitInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if f.guard.released != 1 {
		t.Fatalf("expected in-flight marker released after rejection")
	}
	if len(f.repo.orders) != 0 {
		t.Fatalf("expected nothing recorded")
	}
}

func TestSubmitPersistenceFailureKeepsMessage(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.createErr = errors.New("connection reset")
	store := newCheckoutStore(t)

	_, err := f.svc.Submit(context.Background(), store, submitInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || !strings.HasPrefix(details["message"].(string), "NUEVO PEDIDO") {
		t.Fatalf("expected composed message in details, got %#v", typed.Details())
	}
	if !pkgerrors.Retryable(err) {
		t.Fatalf("expected retryable error")
	}
	if len(store.Items()) != 1 {
		t.Fatalf("cart must survive a failed submission")
	}
}

func TestHandOffOpenedClearsCartAndMarksDispatched(t *testing.T) {
	f := newServiceFixture(t)
	store := newCheckoutStore(t)
	ctx := context.Background()

	submission, err := f.svc.Submit(ctx, store, submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	result, err := f.svc.HandOff(ctx, store, "session-1", submission.OrderID, ReportedOpener(true))
	if err != nil {
		t.Fatalf("HandOff: %v", err)
	}
	if !result.Opened || result.Fallback {
		t.Fatalf("expected opened result, got %+v", result)
	}
	if len(store.Items()) != 0 {
		t.Fatalf("expected cart cleared")
	}
	if f.repo.orders[submission.OrderID].Status != enums.OrderRequestStatusDispatched {
		t.Fatalf("expected order dispatched")
	}

	if _, err := f.svc.HandOff(ctx, store, "session-1", submission.OrderID, ReportedOpener(true)); err != nil {
		t.Fatalf("repeat HandOff: %v", err)
	}
	if f.repo.dispatched != 1 {
		t.Fatalf("expected a single dispatch transition, got %d", f.repo.dispatched)
	}
}

func TestHandOffBlockedReturnsFallback(t *testing.T) {
	f := newServiceFixture(t)
	store := newCheckoutStore(t)
	ctx := context.Background()

	submission, err := f.svc.Submit(ctx, store, submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	result, err := f.svc.HandOff(ctx, store, "session-1", submission.OrderID, ReportedOpener(false))
	if err != nil {
		t.Fatalf("HandOff: %v", err)
	}
	if result.Opened || !result.Fallback || result.Message != submission.Message {
		t.Fatalf("expected fallback with message, got %+v", result)
	}
	if len(store.Items()) != 1 {
		t.Fatalf("cart must survive a blocked hand-off")
	}
	if f.repo.orders[submission.OrderID].Status != enums.OrderRequestStatusPending {
		t.Fatalf("order must stay pending")
	}
	if got := counterValue(t, f.reg, "checkout_handoffs_total", "result", metrics.HandOffBlocked); got != 1 {
		t.Fatalf("expected blocked hand-off counted, got %v", got)
	}
}

func TestHandOffUnknownOrder(t *testing.T) {
	f := newServiceFixture(t)
	store := newCheckoutStore(t)

	_, err := f.svc.HandOff(context.Background(), store, "session-1", uuid.New(), ReportedOpener(true))
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(store.Items()) != 1 {
		t.Fatalf("cart must be untouched")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
