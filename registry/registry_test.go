package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wippyai/jni-bridge/host"
)

type stubEnv struct {
	host.Env
	id      int64
	version host.Version
}

type stubVM struct {
	next    atomic.Int64
	deny    host.Version
	derived atomic.Int64
}

func (vm *stubVM) GetEnv(v host.Version) (host.Env, host.Status) {
	vm.derived.Add(1)
	if v == vm.deny {
		return nil, host.EVersion
	}
	return &stubEnv{id: vm.next.Add(1), version: v}, host.OK
}

func TestRegistry_Connection(t *testing.T) {
	r := New()
	if r.Connection() != nil || r.Attached() {
		t.Fatal("new registry should be detached")
	}

	vm := &stubVM{}
	r.SetConnection(vm)
	if r.Connection() != vm {
		t.Fatal("Connection() should return the stored handle")
	}
	if !r.Attached() {
		t.Fatal("Attached() should be true")
	}

	other := &stubVM{}
	r.SetConnection(other)
	if r.Connection() != other {
		t.Fatal("SetConnection should replace the handle")
	}

	r.Clear()
	if r.Connection() != nil {
		t.Fatal("Connection() should be nil after Clear")
	}

	r.SetConnection(vm)
	r.SetConnection(nil)
	if r.Attached() {
		t.Fatal("SetConnection(nil) should clear")
	}
}

func TestRegistry_EnvAbsentWhenDetached(t *testing.T) {
	r := New()
	if r.Env() != nil {
		t.Fatal("Env() should be nil without a connection")
	}
	env, status := r.EnvStatus()
	if env != nil || status != host.Detached {
		t.Fatalf("EnvStatus() = %v, %v", env, status)
	}

	vm := &stubVM{}
	r.SetConnection(vm)
	if r.Env() == nil {
		t.Fatal("Env() should be non-nil with a connection")
	}

	r.Clear()
	if r.Env() != nil {
		t.Fatal("Env() should be nil after Clear")
	}
}

func TestRegistry_EnvNotCached(t *testing.T) {
	r := New()
	vm := &stubVM{}
	r.SetConnection(vm)

	a := r.Env().(*stubEnv)
	b := r.Env().(*stubEnv)
	if a == b || a.id == b.id {
		t.Fatal("each call should derive a fresh context")
	}
	if vm.derived.Load() != 2 {
		t.Fatalf("derived %d times, want 2", vm.derived.Load())
	}
}

func TestRegistry_Version(t *testing.T) {
	r := New()
	if r.Version() != host.DefaultVersion {
		t.Fatalf("Version() = %v, want %v", r.Version(), host.DefaultVersion)
	}

	vm := &stubVM{deny: host.Version21}
	r.SetConnection(vm)

	before := r.Env().(*stubEnv)
	if before.version != host.DefaultVersion {
		t.Fatalf("derived with %v", before.version)
	}

	r.SetVersion(host.Version1_8)
	after := r.Env().(*stubEnv)
	if after.version != host.Version1_8 {
		t.Fatalf("derived with %v, want 1.8", after.version)
	}
	if before.version != host.DefaultVersion {
		t.Fatal("SetVersion must not affect contexts already derived")
	}

	r.SetVersion(host.Version21)
	env, status := r.EnvStatus()
	if env != nil || status != host.EVersion {
		t.Fatalf("EnvStatus() = %v, %v; want nil, EVERSION", env, status)
	}
	if !r.Attached() {
		t.Fatal("a denied context must not detach the bridge")
	}
}

func TestRegistry_ConcurrentEnv(t *testing.T) {
	r := New()
	vm := &stubVM{}
	r.SetConnection(vm)

	const n = 64
	var wg sync.WaitGroup
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if env, ok := r.Env().(*stubEnv); ok {
				ids[i] = env.id
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i, id := range ids {
		if id == 0 {
			t.Fatalf("goroutine %d got no context", i)
		}
		if seen[id] {
			t.Fatalf("context %d handed out twice", id)
		}
		seen[id] = true
	}
}
