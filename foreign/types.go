package foreign

import (
	"fmt"

	"github.com/wippyai/jni-bridge/host"
)

// Kind tells what a Ref points at.
type Kind uint8

const (
	KindClass Kind = iota + 1
	KindMethod
	KindStaticMethod
	KindConstructor
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindStaticMethod:
		return "static"
	case KindConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Callable reports whether k names a method or constructor.
func (k Kind) Callable() bool {
	return k == KindMethod || k == KindStaticMethod || k == KindConstructor
}

// Ref is an opaque reference to a host-owned resource.
type Ref struct {
	raw   host.Raw
	kind  Kind
	owned bool
}

// NewClass wraps a global class reference. The bridge owns it and must
// delete it when the slot is released.
func NewClass(raw host.Raw) Ref {
	return Ref{raw: raw, kind: KindClass, owned: true}
}

// NewCallable wraps a method ID. Method IDs are not owned: they stay valid
// for as long as their class is loaded.
func NewCallable(kind Kind, raw host.Raw) Ref {
	return Ref{raw: raw, kind: kind}
}

// Raw returns the host pointer.
func (r Ref) Raw() host.Raw { return r.raw }

// Kind returns what the reference points at.
func (r Ref) Kind() Kind { return r.kind }

// Owned reports whether the host reference must be deleted on release.
func (r Ref) Owned() bool { return r.owned }

// IsZero reports whether r is absent.
func (r Ref) IsZero() bool { return r.raw == 0 }

func (r Ref) String() string {
	if r.IsZero() {
		return "<absent>"
	}
	return fmt.Sprintf("%s@%#x", r.kind, uintptr(r.raw))
}

// Event types for slot lifecycle notifications.
type EventType uint8

const (
	EventBound EventType = iota
	EventReleased
)

// Event represents a slot lifecycle event.
type Event struct {
	Err  error
	Ref  Ref
	Slot int
	Type EventType
}

// Observer receives notifications about slot lifecycle events.
type Observer interface {
	OnSlotEvent(Event)
}

// ReleaseFunc performs the host-side release of one slot.
type ReleaseFunc func(slot int, ref Ref) error
