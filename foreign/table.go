package foreign

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/jni-bridge/errors"
)

// Table is a fixed-size set of slots holding foreign references.
type Table struct {
	entries   []entry
	order     []int
	observers []Observer
	obsMu     sync.RWMutex
	mu        sync.RWMutex
}

type entry struct {
	ref   Ref
	valid bool
}

// NewTable creates a table with size empty slots.
func NewTable(size int) *Table {
	return &Table{
		entries: make([]entry, size),
		order:   make([]int, 0, size),
	}
}

// Bind stores ref in slot. Binding an absent ref, an occupied slot or a slot
// outside the table fails.
func (t *Table) Bind(slot int, ref Ref) error {
	if ref.IsZero() {
		return errors.InvalidInput(errors.PhaseResolve, "bind absent reference")
	}

	t.mu.Lock()
	if slot < 0 || slot >= len(t.entries) {
		t.mu.Unlock()
		return errors.OutOfBounds(errors.PhaseResolve, nil, slot, len(t.entries))
	}
	if t.entries[slot].valid {
		t.mu.Unlock()
		return errors.New(errors.PhaseResolve, errors.KindDuplicate).
			Detail("slot %d already bound", slot).
			Value(slot).
			Build()
	}
	t.entries[slot] = entry{ref: ref, valid: true}
	t.order = append(t.order, slot)
	t.mu.Unlock()

	t.notify(Event{Type: EventBound, Slot: slot, Ref: ref})
	return nil
}

// Get retrieves the reference in slot.
func (t *Table) Get(slot int) (Ref, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if slot < 0 || slot >= len(t.entries) {
		return Ref{}, false
	}
	e := t.entries[slot]
	if !e.valid {
		return Ref{}, false
	}
	return e.ref, true
}

// Size returns the number of slots.
func (t *Table) Size() int {
	return len(t.entries)
}

// Len returns the number of bound slots.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Each iterates over bound slots in bind order.
func (t *Table) Each(fn func(slot int, ref Ref) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, slot := range t.order {
		if !fn(slot, t.entries[slot].ref) {
			break
		}
	}
}

// ReleaseAll empties the table in reverse bind order, calling release for
// every bound slot. Every slot is absent afterwards even if some releases
// fail; the failures are combined into the returned error.
func (t *Table) ReleaseAll(release ReleaseFunc) error {
	// Detach the entries first so release never runs under the table lock.
	t.mu.Lock()
	order := t.order
	held := make([]Ref, len(order))
	for i, slot := range order {
		held[i] = t.entries[slot].ref
		t.entries[slot] = entry{}
	}
	t.order = make([]int, 0, len(t.entries))
	t.mu.Unlock()

	var errs error
	for i := len(order) - 1; i >= 0; i-- {
		var err error
		if release != nil {
			err = release(order[i], held[i])
			errs = multierr.Append(errs, err)
		}
		t.notify(Event{Type: EventReleased, Slot: order[i], Ref: held[i], Err: err})
	}
	return errs
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnSlotEvent(e)
	}
}
