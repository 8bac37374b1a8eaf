package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/metrics"
)

const defaultSaveTimeout = 2 * time.Second

// Storage is the durable key/value medium holding cart snapshots.
// Read returns nil data and a nil error when the key has never been written.
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// StoreOptions configures a Store. Storage may be nil, in which case the cart lives in memory only.
type StoreOptions struct {
	Key         string
	Storage     Storage
	Clock       Clock
	Budget      time.Duration
	SaveTimeout time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.StorefrontMetrics
}

// State is an immutable view of the cart at one instant.
type State struct {
	Items         []LineItem
	IsOpen        bool
	LastAddedItem *LineItem
	Notification  NotificationState
	TotalItems    int
	Subtotal      float64
}

// Store owns one session's cart lines and its add-to-cart notification.
// All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	key         string
	storage     Storage
	clock       Clock
	saveTimeout time.Duration
	logg        *logger.Logger
	metrics     *metrics.StorefrontMetrics
	logCtx      context.Context

	items      []LineItem
	isOpen     bool
	lastAdded  *LineItem
	notice     notification
	lastActive time.Time
	closed     bool
}

// NewStore builds a store seeded from the previously persisted snapshot, if any.
// Read failures are logged and yield an empty cart.
func NewStore(ctx context.Context, opts StoreOptions) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	saveTimeout := opts.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := &Store{
		key:         opts.Key,
		storage:     opts.Storage,
		clock:       clock,
		saveTimeout: saveTimeout,
		logg:        opts.Logger,
		metrics:     opts.Metrics,
		logCtx:      context.WithoutCancel(ctx),
		items:       []LineItem{},
		notice:      newNotification(clock, opts.Budget),
		lastActive:  clock.Now(),
	}
	s.items = s.load(ctx)
	return s
}

// AddItem merges quantity into the line for item.ID, appending a new line if needed.
// When notifying and the panel is closed, the notification restarts with a full budget.
func (s *Store) AddItem(item ItemInput, quantity float64, opts AddOptions) {
	qty := NormalizeQuantity(quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if idx := indexOf(s.items, item.ID); idx >= 0 {
		s.items[idx].Quantity += qty
	} else {
		s.items = append(s.items, LineItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    normalizePrice(item.Price),
			Image:    item.Image,
			Quantity: qty,
		})
	}
	s.persist()

	if opts.notify() && !s.isOpen {
		added := LineItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    normalizePrice(item.Price),
			Image:    item.Image,
			Quantity: qty,
		}
		s.lastAdded = &added
		s.notice.trigger(s.onExpire)
	}
}

// UpdateQuantity adds delta to the line's quantity. It is a no-op when the id is unknown
// or the result would drop below 1.
func (s *Store) UpdateQuantity(id string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := indexOf(s.items, id)
	if idx < 0 || delta == 0 {
		return
	}
	next := s.items[idx].Quantity + delta
	if next < 1 {
		return
	}
	s.items[idx].Quantity = next
	s.persist()
}

// RemoveItem deletes the line if present.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := indexOf(s.items, id)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.persist()
}

// Clear empties the cart without touching the panel or the notification.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.items = []LineItem{}
	s.persist()
}

// OpenPanel shows the cart panel, acknowledging any visible notification.
func (s *Store) OpenPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.isOpen = true
	if s.notice.phase.Visible() {
		s.dismiss()
	}
}

// ClosePanel hides the cart panel.
func (s *Store) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.isOpen = false
}

// PauseNotificationTimer suspends a running countdown, keeping the unspent budget.
func (s *Store) PauseNotificationTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.notice.pause()
}

// ResumeNotificationTimer continues a paused countdown for the remaining budget,
// dismissing the notification when none is left.
func (s *Store) ResumeNotificationTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.notice.resume(s.onExpire) && !s.notice.phase.Visible() {
		s.lastAdded = nil
	}
}

// DismissNotification hides the notification immediately.
func (s *Store) DismissNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.dismiss()
}

// Items returns a copy of the current lines.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// Subtotal is the sum of unit price times quantity.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.items)
}

// State returns a consistent snapshot of everything the UI renders.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Items:        cloneItems(s.items),
		IsOpen:       s.isOpen,
		Notification: s.notice.snapshot(),
		TotalItems:   totalItems(s.items),
		Subtotal:     subtotal(s.items),
	}
	if s.lastAdded != nil && state.Notification.Visible() {
		added := *s.lastAdded
		state.LastAddedItem = &added
	}
	return state
}

// LastActive reports when the store was last touched by an operation.
func (s *Store) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch marks the store active without changing it. Reads count as activity.
func (s *Store) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
}

// Flush writes the current lines to storage and returns any write error.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		return nil
	}
	return s.save(ctx)
}

// Close stops the pending countdown. The store must not be used afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice.stopTimer()
	s.notice.generation++
	s.closed = true
}

func (s *Store) onExpire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.notice.expire(gen) {
		s.lastAdded = nil
	}
}

func (s *Store) dismiss() {
	s.notice.hide()
	s.lastAdded = nil
}

func (s *Store) touch() {
	s.lastActive = s.clock.Now()
}

func (s *Store) load(ctx context.Context) []LineItem {
	if s.storage == nil {
		return []LineItem{}
	}
	readCtx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	data, err := s.storage.Read(readCtx, s.key)
	if err != nil {
		s.warn("cart.load.failed", err)
		s.metrics.IncPersistFailure("load")
		return []LineItem{}
	}
	if len(data) == 0 {
		return []LineItem{}
	}
	return DecodeItems(data)
}

// persist overwrites the stored snapshot. Failures are logged and swallowed; the
// in-memory cart stays authoritative.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}
	if err := s.save(s.logCtx); err != nil {
		s.warn("cart.persist.failed", err)
		s.metrics.IncPersistFailure("save")
	}
}

func (s *Store) save(ctx context.Context) error {
	data, err := EncodeItems(s.items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()
	if err := s.storage.Write(writeCtx, s.key, data); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	return nil
}

func (s *Store) warn(msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx := s.logg.WithFields(s.logCtx, map[string]any{
		"storage_key": s.key,
		"error":       err.Error(),
	})
	s.logg.Warn(ctx, msg)
}

func totalItems(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func subtotal(items []LineItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}
