// Package registry holds the bridge's single connection to the host runtime.
//
// The Registry stores the process-wide host.VM between the attach and detach
// hooks and derives a fresh per-thread host.Env on every request. Contexts are
// never cached: the host hands out a different one per thread and may
// invalidate them across thread transitions.
//
// Absence is a normal result. Env returns nil when the bridge is not attached
// or when the host declines to produce a context; callers check before use.
package registry

import (
	"sync/atomic"

	"github.com/wippyai/jni-bridge/host"
)

// Registry is safe for concurrent use. Every method is lock-free.
type Registry struct {
	conn    atomic.Pointer[connection]
	version atomic.Int32
}

type connection struct {
	vm host.VM
}

// New returns an empty registry requesting host.DefaultVersion.
func New() *Registry {
	r := &Registry{}
	r.version.Store(int32(host.DefaultVersion))
	return r
}

// SetConnection stores vm, replacing any previous handle. Calling it twice
// without Clear in between is a caller error and is not checked here.
func (r *Registry) SetConnection(vm host.VM) {
	if vm == nil {
		r.conn.Store(nil)
		return
	}
	r.conn.Store(&connection{vm: vm})
}

// Connection returns the stored handle, or nil.
func (r *Registry) Connection() host.VM {
	if c := r.conn.Load(); c != nil {
		return c.vm
	}
	return nil
}

// Attached reports whether a handle is stored.
func (r *Registry) Attached() bool {
	return r.conn.Load() != nil
}

// Clear drops the stored handle.
func (r *Registry) Clear() {
	r.conn.Store(nil)
}

// Env derives the calling thread's execution context using the current
// version. It returns nil if no handle is stored or the host declines.
func (r *Registry) Env() host.Env {
	env, _ := r.EnvStatus()
	return env
}

// EnvStatus is Env with the host's status code. host.Detached is reported
// when no handle is stored.
func (r *Registry) EnvStatus() (host.Env, host.Status) {
	c := r.conn.Load()
	if c == nil {
		return nil, host.Detached
	}
	env, status := c.vm.GetEnv(r.Version())
	if status != host.OK {
		return nil, status
	}
	return env, host.OK
}

// Version returns the version requested on the next derivation.
func (r *Registry) Version() host.Version {
	return host.Version(r.version.Load())
}

// SetVersion changes the version for future derivations. Contexts already
// handed out are unaffected.
func (r *Registry) SetVersion(v host.Version) {
	r.version.Store(int32(v))
}
