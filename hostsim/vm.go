// Package hostsim is an in-memory host runtime implementing host.VM.
//
// It behaves like a JVM as far as the bridge can observe: contexts are bound
// to OS threads, FindClass hands out local references that must be promoted
// and deleted, global references must be released exactly once, and lookups
// walk the superclass chain. Counters expose leaks and misuse so tests can
// assert on them.
//
//	vm := hostsim.New(hostsim.AndroidUniverse())
//	err := vm.RunThread(func(env host.Env) {
//	    status := bridge.OnLoad(vm, nil)
//	    ...
//	})
//
// Thread identity comes from the kernel thread id, so it is only available
// on Linux; elsewhere AttachCurrentThread fails with host.Err.
package hostsim

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/host"
)

// VM is a simulated host runtime. It is safe for concurrent use.
type VM struct {
	universe   *Universe
	versions   map[host.Version]bool
	threads    map[int]*Env
	globals    map[host.Raw]string
	methods    map[host.Raw]string
	failClass  map[string]bool
	failMember map[string]bool
	next       atomic.Uint64
	violations atomic.Int64
	mu         sync.Mutex
}

// Option configures a VM.
type Option func(*VM)

// WithVersions replaces the set of accepted versions.
func WithVersions(versions ...host.Version) Option {
	return func(vm *VM) {
		vm.versions = make(map[host.Version]bool, len(versions))
		for _, v := range versions {
			vm.versions[v] = true
		}
	}
}

// FailFindClass makes FindClass fail for the named class.
func FailFindClass(name string) Option {
	return func(vm *VM) {
		vm.failClass[name] = true
	}
}

// FailMethod makes method lookups fail for the given member.
func FailMethod(class, name, sig string) Option {
	return func(vm *VM) {
		vm.failMember[class+"."+memberKey(name, sig)] = true
	}
}

// threadID identifies the calling OS thread.
var threadID = osThreadID

// Supported reports whether this platform can identify threads.
func Supported() bool {
	_, ok := threadID()
	return ok
}

// New creates a VM serving the classes in u. All published versions are
// accepted unless WithVersions says otherwise.
func New(u *Universe, opts ...Option) *VM {
	vm := &VM{
		universe:   u,
		versions:   make(map[host.Version]bool, len(host.KnownVersions)),
		threads:    make(map[int]*Env),
		globals:    make(map[host.Raw]string),
		methods:    make(map[host.Raw]string),
		failClass:  make(map[string]bool),
		failMember: make(map[string]bool),
	}
	for _, v := range host.KnownVersions {
		vm.versions[v] = true
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// GetEnv returns the context of the calling thread. Threads that were never
// attached get host.Detached.
func (vm *VM) GetEnv(version host.Version) (host.Env, host.Status) {
	if !vm.versions[version] {
		return nil, host.EVersion
	}
	tid, ok := threadID()
	if !ok {
		return nil, host.Err
	}
	vm.mu.Lock()
	env, ok := vm.threads[tid]
	vm.mu.Unlock()
	if !ok {
		return nil, host.Detached
	}
	return env, host.OK
}

// AttachCurrentThread registers the calling OS thread with the host. The
// calling goroutine must be locked to its thread until DetachCurrentThread.
func (vm *VM) AttachCurrentThread() (host.Env, host.Status) {
	tid, ok := threadID()
	if !ok {
		return nil, host.Err
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if env, ok := vm.threads[tid]; ok {
		return env, host.OK
	}
	env := &Env{vm: vm, tid: tid, locals: make(map[host.Raw]string)}
	vm.threads[tid] = env
	return env, host.OK
}

// DetachCurrentThread unregisters the calling thread. Local references it
// still holds are dropped.
func (vm *VM) DetachCurrentThread() host.Status {
	tid, ok := threadID()
	if !ok {
		return host.Err
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	env, ok := vm.threads[tid]
	if !ok {
		return host.Detached
	}
	env.detached.Store(true)
	delete(vm.threads, tid)
	return host.OK
}

// RunThread runs fn on a fresh goroutine locked to its own OS thread,
// attached to the host for the duration of fn, and waits for it.
func (vm *VM) RunThread(fn func(env host.Env)) error {
	if !Supported() {
		return errors.Unsupported(errors.PhaseHost, "host threads need OS thread identity, unavailable on "+runtime.GOOS)
	}
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		env, status := vm.AttachCurrentThread()
		if status != host.OK {
			err = fmt.Errorf("attach thread: %s", status)
			return
		}
		defer vm.DetachCurrentThread()

		fn(env)
	}()
	<-done
	return err
}

// GlobalRefs returns the number of live global references.
func (vm *VM) GlobalRefs() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.globals)
}

// LocalRefs returns the number of local references held by attached threads.
func (vm *VM) LocalRefs() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	n := 0
	for _, env := range vm.threads {
		n += len(env.locals)
	}
	return n
}

// Threads returns the number of attached threads.
func (vm *VM) Threads() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.threads)
}

// Violations counts contract breaches: contexts used off their thread or
// after detach, and deletes of unknown references.
func (vm *VM) Violations() int {
	return int(vm.violations.Load())
}

func (vm *VM) mint() host.Raw {
	return host.Raw(vm.next.Add(1) << 4)
}

// Env is the per-thread context handed out by VM.
type Env struct {
	vm       *VM
	locals   map[host.Raw]string
	tid      int
	detached atomic.Bool
}

// ThreadID returns the OS thread the context belongs to.
func (e *Env) ThreadID() int {
	return e.tid
}

func (e *Env) check() error {
	if e.detached.Load() {
		e.vm.violations.Add(1)
		return errors.InvalidInput(errors.PhaseHost, "context used after its thread detached")
	}
	tid, _ := threadID()
	if tid != e.tid {
		e.vm.violations.Add(1)
		return errors.WrongThread(e.tid, tid)
	}
	return nil
}

// className resolves a local or global class reference. Caller holds vm.mu.
func (e *Env) className(ref host.Raw) (string, bool) {
	if name, ok := e.locals[ref]; ok {
		return name, true
	}
	name, ok := e.vm.globals[ref]
	return name, ok
}

// FindClass returns a local reference to the named class.
func (e *Env) FindClass(name string) (host.Raw, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	if e.vm.failClass[name] {
		return 0, errors.NotFound(errors.PhaseHost, "class", name)
	}
	if _, ok := e.vm.universe.Lookup(name); !ok {
		return 0, errors.NotFound(errors.PhaseHost, "class", name)
	}
	ref := e.vm.mint()
	e.vm.mu.Lock()
	e.locals[ref] = name
	e.vm.mu.Unlock()
	return ref, nil
}

// NewGlobalRef promotes a class reference.
func (e *Env) NewGlobalRef(ref host.Raw) host.Raw {
	if e.check() != nil {
		return 0
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	name, ok := e.className(ref)
	if !ok {
		e.vm.violations.Add(1)
		return 0
	}
	global := e.vm.mint()
	e.vm.globals[global] = name
	return global
}

// DeleteLocalRef releases a local reference.
func (e *Env) DeleteLocalRef(ref host.Raw) {
	if e.check() != nil {
		return
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	if _, ok := e.locals[ref]; !ok {
		e.vm.violations.Add(1)
		return
	}
	delete(e.locals, ref)
}

// DeleteGlobalRef releases a global reference.
func (e *Env) DeleteGlobalRef(ref host.Raw) {
	if e.check() != nil {
		return
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	if _, ok := e.vm.globals[ref]; !ok {
		e.vm.violations.Add(1)
		return
	}
	delete(e.vm.globals, ref)
}

// GetMethodID resolves an instance method, or a constructor named "<init>".
func (e *Env) GetMethodID(class host.Raw, name, sig string) (host.Raw, error) {
	kind := Method
	if name == "<init>" {
		kind = Constructor
	}
	return e.lookup(class, name, sig, kind)
}

// GetStaticMethodID resolves a static method.
func (e *Env) GetStaticMethodID(class host.Raw, name, sig string) (host.Raw, error) {
	return e.lookup(class, name, sig, Static)
}

func (e *Env) lookup(class host.Raw, name, sig string, kind MemberKind) (host.Raw, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	e.vm.mu.Lock()
	cls, ok := e.className(class)
	e.vm.mu.Unlock()
	if !ok {
		e.vm.violations.Add(1)
		return 0, errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("unknown class reference %#x", uintptr(class)))
	}
	if e.vm.failMember[cls+"."+memberKey(name, sig)] || !e.vm.universe.findMember(cls, name, sig, kind) {
		return 0, errors.New(errors.PhaseHost, errors.KindNotFound).
			Class(cls).
			Member(name, sig).
			Build()
	}
	id := e.vm.mint()
	e.vm.mu.Lock()
	e.vm.methods[id] = cls + "." + memberKey(name, sig)
	e.vm.mu.Unlock()
	return id, nil
}

// Describe names what a raw reference points at, or "" when it is unknown.
func (vm *VM) Describe(ref host.Raw) string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if name, ok := vm.globals[ref]; ok {
		return name
	}
	return vm.methods[ref]
}
