package events

import (
	"sync"
	"time"

	gormModels "winterops/stationboard/internal/models/gorm"
)

// ChangeType identifies what happened to an allocation
type ChangeType string

const (
	AllocationCreated ChangeType = "allocation.created"
	AllocationUpdated ChangeType = "allocation.updated"
	AllocationDeleted ChangeType = "allocation.deleted"
)

// ChangeEvent describes one committed mutation of the allocation set
type ChangeEvent struct {
	Type       ChangeType            `json:"type"`
	Allocation gormModels.Allocation `json:"allocation"`
	At         time.Time             `json:"at"`
}

// Predicate filters events on a subscription
type Predicate func(ChangeEvent) bool

// All matches every allocation change
func All(ChangeEvent) bool { return true }

// ForTail matches changes to a single aircraft
func ForTail(tail string) Predicate {
	return func(ev ChangeEvent) bool { return ev.Allocation.TailNumber == tail }
}

// ForStation matches changes touching a single station
func ForStation(stationID string) Predicate {
	return func(ev ChangeEvent) bool { return ev.Allocation.StationID == stationID }
}

type subscriber struct {
	pred Predicate
	ch   chan ChangeEvent
}

// Dispatcher fans committed allocation changes out to predicate-scoped
// subscribers. Delivery is best-effort: a subscriber that stops
// draining its channel loses events rather than blocking writers.
type Dispatcher struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[int]*subscriber)}
}

// Subscribe registers a predicate-filtered listener. The returned
// cancel func closes the channel and must be called exactly once.
func (d *Dispatcher) Subscribe(pred Predicate) (<-chan ChangeEvent, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++

	sub := &subscriber{pred: pred, ch: make(chan ChangeEvent, 16)}
	d.subs[id] = sub

	cancel := func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if s, ok := d.subs[id]; ok {
			delete(d.subs, id)
			close(s.ch)
		}
	}

	return sub.ch, cancel
}

// Publish delivers ev to every subscriber whose predicate matches
func (d *Dispatcher) Publish(ev ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, sub := range d.subs {
		if !sub.pred(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// slow consumer, drop
		}
	}
}
