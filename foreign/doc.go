// Package foreign models references to resources owned by the host runtime.
//
// A Ref wraps a raw host pointer together with its release obligation:
//
//	class references  - global references the bridge must delete at detach
//	method IDs        - valid while their class is loaded, nothing to delete
//
// The zero Ref is absent. Callers check IsZero before use.
//
// # Slot Table
//
// Table holds a fixed number of slots, bound once and released together:
//
//	table := foreign.NewTable(len(decls))
//
//	// Bind a resolved reference to its slot
//	err := table.Bind(slot, foreign.NewClass(raw))
//
//	// Lookup
//	ref, ok := table.Get(slot)
//
//	// Release in reverse bind order; every slot is absent afterwards
//	err = table.ReleaseAll(func(slot int, ref foreign.Ref) error {
//	    if ref.Owned() {
//	        env.DeleteGlobalRef(ref.Raw())
//	    }
//	    return nil
//	})
//
// # Observers
//
// Register observers to track bind and release events:
//
//	type releaseLog struct{}
//
//	func (releaseLog) OnSlotEvent(e foreign.Event) {
//	    if e.Type == foreign.EventReleased {
//	        log.Printf("slot %d released", e.Slot)
//	    }
//	}
//
//	table.Subscribe(releaseLog{})
package foreign
