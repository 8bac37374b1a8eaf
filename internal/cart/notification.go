package cart

import "time"

// DefaultNotificationBudget is the full countdown of the "added to cart" notification.
const DefaultNotificationBudget = 4500 * time.Millisecond

// NotificationPhase is the state of the add-to-cart notification.
type NotificationPhase int

const (
	NotificationHidden NotificationPhase = iota
	NotificationCountingDown
	NotificationPaused
)

func (p NotificationPhase) String() string {
	switch p {
	case NotificationCountingDown:
		return "counting_down"
	case NotificationPaused:
		return "paused"
	default:
		return "hidden"
	}
}

// Visible reports whether the notification is on screen.
func (p NotificationPhase) Visible() bool {
	return p != NotificationHidden
}

// NotificationState is the read-only view of the notification.
type NotificationState struct {
	Phase     NotificationPhase
	Remaining time.Duration
}

// Visible reports whether the notification is on screen.
func (n NotificationState) Visible() bool {
	return n.Phase.Visible()
}

// notification is guarded by the owning Store's mutex. generation is bumped every time
// a countdown is started or cancelled, so a callback from an earlier countdown is ignored.
type notification struct {
	clock      Clock
	budget     time.Duration
	phase      NotificationPhase
	remaining  time.Duration
	startedAt  time.Time
	timer      Timer
	generation uint64
}

func newNotification(clock Clock, budget time.Duration) notification {
	if budget <= 0 {
		budget = DefaultNotificationBudget
	}
	return notification{
		clock:     clock,
		budget:    budget,
		phase:     NotificationHidden,
		remaining: budget,
	}
}

// trigger shows the notification with a full budget, replacing any running countdown.
func (n *notification) trigger(onExpire func(generation uint64)) {
	n.remaining = n.budget
	n.start(onExpire)
}

func (n *notification) start(onExpire func(generation uint64)) {
	n.stopTimer()
	n.generation++
	gen := n.generation
	n.phase = NotificationCountingDown
	n.startedAt = n.clock.Now()
	n.timer = n.clock.AfterFunc(n.remaining, func() { onExpire(gen) })
}

// pause records the unspent budget. Only a running countdown can be paused.
func (n *notification) pause() bool {
	if n.phase != NotificationCountingDown {
		return false
	}
	n.remaining = n.elapsedRemaining()
	n.stopTimer()
	n.generation++
	n.phase = NotificationPaused
	return true
}

// resume restarts a paused countdown for exactly the remaining budget, or hides the
// notification when nothing is left.
func (n *notification) resume(onExpire func(generation uint64)) bool {
	if n.phase != NotificationPaused {
		return false
	}
	if n.remaining <= 0 {
		n.hide()
		return true
	}
	n.start(onExpire)
	return true
}

// expire hides the notification if gen is the live countdown.
func (n *notification) expire(gen uint64) bool {
	if gen != n.generation || n.phase != NotificationCountingDown {
		return false
	}
	n.timer = nil
	n.hide()
	return true
}

// hide dismisses the notification and restores the full budget.
func (n *notification) hide() {
	n.stopTimer()
	n.generation++
	n.phase = NotificationHidden
	n.remaining = n.budget
}

func (n *notification) stopTimer() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *notification) elapsedRemaining() time.Duration {
	if n.phase != NotificationCountingDown {
		return n.remaining
	}
	left := n.remaining - n.clock.Now().Sub(n.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (n *notification) snapshot() NotificationState {
	state := NotificationState{Phase: n.phase}
	if n.phase.Visible() {
		state.Remaining = n.elapsedRemaining()
	}
	return state
}
