package resource

import (
	"sync"

	"github.com/gridpointai/nd-runtime/errors"
)

// Handle is an opaque token for engine state retained across calls.
// It packs a slot index in the low 32 bits and a generation counter in
// the high 32. Handle 0 is reserved and always invalid.
type Handle uint64

// Kind tags the resource type a handle refers to. Cross-kind use of a
// handle is rejected.
type Kind uint32

const (
	// KindCoordinateList tags retained morphology worklists.
	KindCoordinateList Kind = 1 + iota
)

func (h Handle) slot() uint32 { return uint32(h) }
func (h Handle) gen() uint32  { return uint32(h >> 32) }

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot))
}

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}

// EventType identifies a handle lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventAcquired
	EventReleased
	EventRemoved
)

// Event describes one handle lifecycle transition.
type Event struct {
	Type   EventType
	Handle Handle
	Kind   Kind
}

// Observer receives handle lifecycle notifications.
type Observer interface {
	OnHandleEvent(Event)
}

type entry struct {
	value any
	kind  Kind
	gen   uint32
	inUse bool
	valid bool
}

// Table issues and validates opaque state handles.
type Table struct {
	mu        sync.Mutex
	entries   []entry
	freeList  []uint32
	observers []Observer
	closed    bool
}

// NewTable creates an empty handle table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 16),
		freeList: make([]uint32, 0, 4),
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Create stores engine state and returns its opaque handle.
func (t *Table) Create(kind Kind, value any) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, errors.InvalidHandle(errors.PhaseHandle, "handle table closed")
	}

	var slot uint32
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		e := &t.entries[slot-1]
		e.value = value
		e.kind = kind
		e.gen++ // stale handles to this slot become invalid
		e.inUse = false
		e.valid = true
	} else {
		t.entries = append(t.entries, entry{value: value, kind: kind, gen: 1, valid: true})
		slot = uint32(len(t.entries))
	}
	h := makeHandle(slot, t.entries[slot-1].gen)
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: h, Kind: kind})
	return h, nil
}

// lookup validates slot, generation, and kind. Caller holds t.mu.
func (t *Table) lookup(h Handle, kind Kind) (*entry, *errors.Error) {
	if h == 0 {
		return nil, errors.InvalidHandle(errors.PhaseHandle, "zero handle")
	}
	slot := h.slot()
	if slot == 0 || int(slot) > len(t.entries) {
		return nil, errors.InvalidHandle(errors.PhaseHandle, "unknown handle")
	}
	e := &t.entries[slot-1]
	if !e.valid || e.gen != h.gen() {
		return nil, errors.InvalidHandle(errors.PhaseHandle, "handle already released")
	}
	if kind != 0 && e.kind != kind {
		return nil, errors.InvalidHandle(errors.PhaseHandle, "handle kind mismatch")
	}
	return e, nil
}

// Get retrieves the state behind a handle without claiming it.
func (t *Table) Get(h Handle, kind Kind) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, err := t.lookup(h, kind)
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// Acquire claims the state behind a handle for one in-flight call.
// At most one holder may exist at a time; a concurrent Acquire fails
// with an invalid_handle error rather than racing on the state.
func (t *Table) Acquire(h Handle, kind Kind) (any, error) {
	t.mu.Lock()
	e, err := t.lookup(h, kind)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if e.inUse {
		t.mu.Unlock()
		return nil, errors.InvalidHandle(errors.PhaseHandle, "handle already held by an in-flight call")
	}
	e.inUse = true
	kindTag := e.kind
	value := e.value
	t.mu.Unlock()

	t.notify(Event{Type: EventAcquired, Handle: h, Kind: kindTag})
	return value, nil
}

// EndUse releases the in-flight claim taken by Acquire. Releasing an
// unclaimed or stale handle is a no-op.
func (t *Table) EndUse(h Handle) {
	t.mu.Lock()
	e, err := t.lookup(h, 0)
	if err != nil || !e.inUse {
		t.mu.Unlock()
		return
	}
	e.inUse = false
	kindTag := e.kind
	t.mu.Unlock()

	t.notify(Event{Type: EventReleased, Handle: h, Kind: kindTag})
}

// Remove destroys the state behind a handle. A second Remove of the
// same handle is detected and fails with an invalid_handle error; it is
// never treated as memory corruption. Removing a claimed handle fails.
func (t *Table) Remove(h Handle) (any, error) {
	t.mu.Lock()
	e, err := t.lookup(h, 0)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if e.inUse {
		t.mu.Unlock()
		return nil, errors.InvalidHandle(errors.PhaseHandle, "cannot release a handle held by an in-flight call")
	}
	value := e.value
	kindTag := e.kind
	e.valid = false
	e.value = nil
	t.freeList = append(t.freeList, h.slot())
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventRemoved, Handle: h, Kind: kindTag})
	return value, nil
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for i := range t.entries {
		if t.entries[i].valid {
			n++
		}
	}
	return n
}

// Close drops all live state and stops accepting operations.
func (t *Table) Close() error {
	t.mu.Lock()
	t.closed = true
	var dropped []any
	for i := range t.entries {
		e := &t.entries[i]
		if e.valid {
			dropped = append(dropped, e.value)
			e.valid = false
			e.value = nil
		}
	}
	t.mu.Unlock()

	for _, v := range dropped {
		if d, ok := v.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.mu.Lock()
	obs := append([]Observer(nil), t.observers...)
	t.mu.Unlock()
	for _, o := range obs {
		o.OnHandleEvent(e)
	}
}
