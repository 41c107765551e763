package foreign

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/jni-bridge/host"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnSlotEvent(e Event) {
	o.events = append(o.events, e)
}

func TestRef(t *testing.T) {
	var zero Ref
	if !zero.IsZero() {
		t.Fatal("zero Ref should be absent")
	}
	if zero.String() != "<absent>" {
		t.Fatalf("String() = %q", zero.String())
	}

	cls := NewClass(0x10)
	if cls.IsZero() || !cls.Owned() || cls.Kind() != KindClass {
		t.Fatalf("unexpected class ref %+v", cls)
	}

	m := NewCallable(KindConstructor, 0x20)
	if m.Owned() {
		t.Fatal("method IDs are not owned")
	}
	if !m.Kind().Callable() || KindClass.Callable() {
		t.Fatal("Callable() mismatch")
	}
	if m.Raw() != host.Raw(0x20) {
		t.Fatalf("Raw() = %#x", m.Raw())
	}
}

func TestTable_Basic(t *testing.T) {
	table := NewTable(3)

	if err := table.Bind(1, NewClass(7)); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	ref, ok := table.Get(1)
	if !ok {
		t.Fatal("Get failed")
	}
	if ref.Raw() != 7 {
		t.Fatalf("Expected raw 7, got %v", ref.Raw())
	}

	if _, ok := table.Get(0); ok {
		t.Fatal("unbound slot should be absent")
	}
	if _, ok := table.Get(5); ok {
		t.Fatal("out of range slot should be absent")
	}

	if table.Len() != 1 || table.Size() != 3 {
		t.Fatalf("Len=%d Size=%d", table.Len(), table.Size())
	}
}

func TestTable_BindErrors(t *testing.T) {
	table := NewTable(2)

	if err := table.Bind(0, Ref{}); err == nil {
		t.Error("binding an absent ref should fail")
	}
	if err := table.Bind(2, NewClass(1)); err == nil {
		t.Error("binding out of range should fail")
	}
	if err := table.Bind(0, NewClass(1)); err != nil {
		t.Fatal(err)
	}
	if err := table.Bind(0, NewClass(2)); err == nil {
		t.Error("binding an occupied slot should fail")
	}

	ref, _ := table.Get(0)
	if ref.Raw() != 1 {
		t.Error("failed bind must not replace the slot")
	}
}

func TestTable_ReleaseAllReverseOrder(t *testing.T) {
	table := NewTable(4)
	for _, slot := range []int{2, 0, 3} {
		if err := table.Bind(slot, NewClass(host.Raw(slot+1))); err != nil {
			t.Fatal(err)
		}
	}

	var released []int
	err := table.ReleaseAll(func(slot int, ref Ref) error {
		released = append(released, slot)
		return nil
	})
	if err != nil {
		t.Fatalf("ReleaseAll: %v", err)
	}

	want := []int{3, 0, 2}
	if len(released) != len(want) {
		t.Fatalf("released %v, want %v", released, want)
	}
	for i := range want {
		if released[i] != want[i] {
			t.Fatalf("released %v, want %v", released, want)
		}
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after ReleaseAll")
	}
}

func TestTable_ReleaseAllAggregatesErrors(t *testing.T) {
	table := NewTable(3)
	for i := 0; i < 3; i++ {
		if err := table.Bind(i, NewClass(host.Raw(i+1))); err != nil {
			t.Fatal(err)
		}
	}

	errA := stderrors.New("a")
	errC := stderrors.New("c")
	calls := 0
	err := table.ReleaseAll(func(slot int, ref Ref) error {
		calls++
		switch slot {
		case 0:
			return errA
		case 2:
			return errC
		}
		return nil
	})

	if calls != 3 {
		t.Fatalf("release called %d times, want 3", calls)
	}
	if !stderrors.Is(err, errA) || !stderrors.Is(err, errC) {
		t.Fatalf("combined error %v should contain both failures", err)
	}
	for i := 0; i < 3; i++ {
		if _, ok := table.Get(i); ok {
			t.Fatalf("slot %d still bound after failed release", i)
		}
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable(2)
	obs := &testObserver{}
	table.Subscribe(obs)

	if err := table.Bind(0, NewClass(1)); err != nil {
		t.Fatal(err)
	}
	if len(obs.events) != 1 || obs.events[0].Type != EventBound || obs.events[0].Slot != 0 {
		t.Fatalf("unexpected events %+v", obs.events)
	}

	_ = table.ReleaseAll(nil)
	if len(obs.events) != 2 || obs.events[1].Type != EventReleased {
		t.Fatalf("unexpected events %+v", obs.events)
	}

	table.Unsubscribe(obs)
	_ = table.Bind(1, NewClass(2))
	if len(obs.events) != 2 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable(3)
	_ = table.Bind(2, NewClass(3))
	_ = table.Bind(1, NewClass(2))

	var slots []int
	table.Each(func(slot int, ref Ref) bool {
		slots = append(slots, slot)
		return true
	})
	if len(slots) != 2 || slots[0] != 2 || slots[1] != 1 {
		t.Fatalf("Each visited %v", slots)
	}

	count := 0
	table.Each(func(int, Ref) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Each should stop early, visited %d", count)
	}
}
