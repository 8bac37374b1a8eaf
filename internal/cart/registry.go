package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/metrics"
)

// ErrRegistryClosed is returned by Get after Close.
var ErrRegistryClosed = errors.New("cart registry closed")

// RegistryOptions configures the stores a Registry builds.
type RegistryOptions struct {
	Storage     Storage
	KeyFor      func(sessionID string) string
	Clock       Clock
	Budget      time.Duration
	SaveTimeout time.Duration
	IdleTTL     time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.StorefrontMetrics
}

// Registry is the composition root for cart stores: one store per session, created on
// first use and evicted after IdleTTL without activity.
type Registry struct {
	opts   RegistryOptions
	group  singleflight.Group
	mu     sync.Mutex
	stores map[string]*Store
	closed bool
}

// NewRegistry builds an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.KeyFor == nil {
		opts.KeyFor = func(sessionID string) string { return sessionID }
	}
	return &Registry{
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Get returns the store for sessionID, loading it from storage on first use.
// Concurrent first requests for the same session share one load.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if store, err := r.lookup(sessionID); store != nil || err != nil {
		return store, err
	}

	value, err, _ := r.group.Do(sessionID, func() (any, error) {
		if store, err := r.lookup(sessionID); store != nil || err != nil {
			return store, err
		}

		storeCtx := context.WithoutCancel(ctx)
		if r.opts.Logger != nil {
			storeCtx = r.opts.Logger.WithSessionID(storeCtx, sessionID)
		}
		store := NewStore(storeCtx, StoreOptions{
			Key:         r.opts.KeyFor(sessionID),
			Storage:     r.opts.Storage,
			Clock:       r.opts.Clock,
			Budget:      r.opts.Budget,
			SaveTimeout: r.opts.SaveTimeout,
			Logger:      r.opts.Logger,
			Metrics:     r.opts.Metrics,
		})

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			store.Close()
			return nil, ErrRegistryClosed
		}
		r.stores[sessionID] = store
		r.opts.Metrics.SetActiveSessions(len(r.stores))
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Store), nil
}

// lookup marks a held store active under the registry lock, so a concurrent Sweep
// cannot evict a store that was just handed out.
func (r *Registry) lookup(sessionID string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	store := r.stores[sessionID]
	if store != nil {
		store.Touch()
	}
	return store, nil
}

// Len reports how many stores are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep evicts stores idle for at least IdleTTL and returns how many were evicted.
// Evicted carts remain in storage and are reloaded on the next request.
func (r *Registry) Sweep(ctx context.Context) int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	started := time.Now()
	now := r.opts.Clock.Now()

	r.mu.Lock()
	var idle []*Store
	for id, store := range r.stores {
		if now.Sub(store.LastActive()) >= r.opts.IdleTTL {
			idle = append(idle, store)
			delete(r.stores, id)
		}
	}
	remaining := len(r.stores)
	r.mu.Unlock()

	for _, store := range idle {
		store.Close()
	}
	r.opts.Metrics.SetActiveSessions(remaining)
	r.opts.Metrics.ObserveSweep(time.Since(started), len(idle))
	if len(idle) > 0 && r.opts.Logger != nil {
		r.opts.Logger.Info(r.opts.Logger.WithFields(ctx, map[string]any{
			"evicted":   len(idle),
			"remaining": remaining,
		}), "cart.sessions.evicted")
	}
	return len(idle)
}

// Run sweeps idle stores every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Close flushes every held store to storage, stops their timers and rejects further Gets.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	stores := r.stores
	r.stores = make(map[string]*Store)
	r.mu.Unlock()

	var err error
	for id, store := range stores {
		if flushErr := store.Flush(ctx); flushErr != nil {
			err = multierr.Append(err, fmt.Errorf("flush cart %s: %w", id, flushErr))
		}
		store.Close()
	}
	r.opts.Metrics.SetActiveSessions(0)
	return err
}
