package notifications

import (
	"slices"
	"sync"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/google/uuid"
)

// Durations controls how long a notification stays active before it expires on its own
type Durations struct {
	XP      time.Duration
	Default time.Duration
}

func DefaultDurations() Durations {
	return Durations{
		XP:      3 * time.Second,
		Default: 6 * time.Second,
	}
}

func (d Durations) forType(t domain.NotificationType) time.Duration {
	if t == domain.NotificationXP {
		return d.XP
	}
	return d.Default
}

// Dispatcher holds the ordered list of active notifications and expires them on its own timers
type Dispatcher struct {
	durations Durations
	nowFunc   func() time.Time

	mu          sync.Mutex
	active      []domain.Notification
	timers      map[string]*time.Timer
	subscribers map[int]chan []domain.Notification
	nextSubID   int
	closed      bool
}

func NewDispatcher(durations Durations, nowFunc func() time.Time) *Dispatcher {
	return &Dispatcher{
		durations:   durations,
		nowFunc:     nowFunc,
		timers:      make(map[string]*time.Timer),
		subscribers: make(map[int]chan []domain.Notification),
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Publish assigns an id, activates the notification and schedules its expiry
func (d *Dispatcher) Publish(n domain.Notification) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n.ID = newID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.nowFunc()
	}

	if d.closed {
		return n.ID
	}

	d.active = append(d.active, n)

	id := n.ID
	d.timers[id] = time.AfterFunc(d.durations.forType(n.Type), func() {
		d.Dismiss(id)
	})

	d.broadcastLocked()
	return id
}

// Dismiss removes the notification with the given id. Unknown ids are ignored.
func (d *Dispatcher) Dismiss(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[id]; ok {
		timer.Stop()
		delete(d.timers, id)
	}

	filtered := slices.DeleteFunc(slices.Clone(d.active), func(n domain.Notification) bool {
		return n.ID == id
	})
	if len(filtered) == len(d.active) {
		return
	}
	d.active = filtered

	d.broadcastLocked()
}

func (d *Dispatcher) Current() []domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.active)
}

// Subscribe returns a channel that always holds the most recent list, starting with the current one.
// Slow readers skip intermediate lists; publishing never blocks on them.
func (d *Dispatcher) Subscribe() (<-chan []domain.Notification, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan []domain.Notification, 1)
	if d.closed {
		close(ch)
		return ch, func() {}
	}

	subID := d.nextSubID
	d.nextSubID++
	d.subscribers[subID] = ch
	ch <- slices.Clone(d.active)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()

			if sub, ok := d.subscribers[subID]; ok {
				delete(d.subscribers, subID)
				close(sub)
			}
		})
	}

	return ch, unsubscribe
}

func (d *Dispatcher) broadcastLocked() {
	for _, ch := range d.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- slices.Clone(d.active)
	}
}

// Close stops all timers and closes every subscription. Later publishes are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true

	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
	d.active = nil

	for subID, ch := range d.subscribers {
		delete(d.subscribers, subID)
		close(ch)
	}
}
