package wasmhost

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/jni-bridge/descriptor"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/host"
)

// VM adapts a wazero runtime to host.VM.
type VM struct {
	rt       wazero.Runtime
	logger   *zap.Logger
	versions map[host.Version]bool
	env      *Env

	mu      sync.Mutex
	next    host.Raw
	locals  map[host.Raw]api.Module
	globals map[host.Raw]api.Module
	funcs   map[host.Raw]binding
}

// binding is a resolved method ID: the export of module it names and its
// definition.
type binding struct {
	module api.Module
	export string
	def    api.FunctionDefinition
}

// Option configures a VM.
type Option func(*VM)

// WithVersions restricts the versions GetEnv accepts.
func WithVersions(versions ...host.Version) Option {
	return func(vm *VM) {
		vm.versions = make(map[host.Version]bool, len(versions))
		for _, v := range versions {
			vm.versions[v] = true
		}
	}
}

// WithLogger sets the VM logger.
func WithLogger(l *zap.Logger) Option {
	return func(vm *VM) {
		if l != nil {
			vm.logger = l
		}
	}
}

// New wraps rt.
func New(rt wazero.Runtime, opts ...Option) *VM {
	vm := &VM{
		rt:      rt,
		logger:  Logger(),
		locals:  make(map[host.Raw]api.Module),
		globals: make(map[host.Raw]api.Module),
		funcs:   make(map[host.Raw]binding),
	}
	WithVersions(host.KnownVersions...)(vm)
	for _, opt := range opts {
		opt(vm)
	}
	vm.env = &Env{vm: vm}
	return vm
}

// GetEnv returns the shared context.
func (vm *VM) GetEnv(version host.Version) (host.Env, host.Status) {
	if !vm.versions[version] {
		return nil, host.EVersion
	}
	return vm.env, host.OK
}

// GlobalRefs returns the number of live global references.
func (vm *VM) GlobalRefs() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.globals)
}

// LocalRefs returns the number of live local references.
func (vm *VM) LocalRefs() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.locals)
}

// Definition returns the wasm definition behind a method ID, or nil.
func (vm *VM) Definition(id host.Raw) api.FunctionDefinition {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if b, ok := vm.funcs[id]; ok {
		return b.def
	}
	return nil
}

// Call invokes the function behind a method ID. Functions implemented in Go
// are called directly; functions defined in wasm go through the guest
// module's export.
func (vm *VM) Call(ctx context.Context, id host.Raw, params ...uint64) ([]uint64, error) {
	vm.mu.Lock()
	b, ok := vm.funcs[id]
	vm.mu.Unlock()
	if !ok {
		return nil, errors.NotFound(errors.PhaseHost, "method id", fmt.Sprintf("%#x", uintptr(id)))
	}
	if len(params) != len(b.def.ParamTypes()) {
		return nil, errors.InvalidInput(errors.PhaseHost,
			fmt.Sprintf("%s.%s takes %d params, got %d", b.module.Name(), b.export, len(b.def.ParamTypes()), len(params)))
	}

	switch fn := b.def.GoFunction().(type) {
	case api.GoModuleFunction:
		stack := callStack(b.def, params)
		fn.Call(ctx, b.module, stack)
		return stack[:len(b.def.ResultTypes())], nil
	case api.GoFunction:
		stack := callStack(b.def, params)
		fn.Call(ctx, stack)
		return stack[:len(b.def.ResultTypes())], nil
	}

	f := b.module.ExportedFunction(b.export)
	if f == nil {
		return nil, errors.NotFound(errors.PhaseHost, "export", b.module.Name()+"."+b.export)
	}
	return f.Call(ctx, params...)
}

func callStack(def api.FunctionDefinition, params []uint64) []uint64 {
	stack := make([]uint64, max(len(def.ParamTypes()), len(def.ResultTypes())))
	copy(stack, params)
	return stack
}

// must hold vm.mu
func (vm *VM) mint() host.Raw {
	vm.next++
	return vm.next
}

// Env is the execution context of a wasm host.
type Env struct {
	vm *VM
}

func (e *Env) module(ref host.Raw) (api.Module, bool) {
	if m, ok := e.vm.globals[ref]; ok {
		return m, true
	}
	m, ok := e.vm.locals[ref]
	return m, ok
}

// FindClass returns a local reference to the module named name.
func (e *Env) FindClass(name string) (host.Raw, error) {
	m := e.vm.rt.Module(name)
	if m == nil || m.IsClosed() {
		return 0, errors.NotFound(errors.PhaseHost, "module", name)
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	ref := e.vm.mint()
	e.vm.locals[ref] = m
	return ref, nil
}

// NewGlobalRef promotes ref. An unknown ref yields zero.
func (e *Env) NewGlobalRef(ref host.Raw) host.Raw {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	m, ok := e.module(ref)
	if !ok {
		return 0
	}
	g := e.vm.mint()
	e.vm.globals[g] = m
	return g
}

// DeleteLocalRef drops a local reference.
func (e *Env) DeleteLocalRef(ref host.Raw) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	delete(e.vm.locals, ref)
}

// DeleteGlobalRef drops a global reference and every method ID minted from a
// module that no longer has one.
func (e *Env) DeleteGlobalRef(ref host.Raw) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	m, ok := e.vm.globals[ref]
	if !ok {
		e.vm.logger.Warn("delete of unknown global reference", zap.Uintptr("ref", uintptr(ref)))
		return
	}
	delete(e.vm.globals, ref)
	for _, other := range e.vm.globals {
		if other == m {
			return
		}
	}
	for id, b := range e.vm.funcs {
		if b.module == m {
			delete(e.vm.funcs, id)
		}
	}
}

// GetMethodID resolves an instance method or constructor.
func (e *Env) GetMethodID(class host.Raw, name, sig string) (host.Raw, error) {
	return e.lookup(class, name, sig, true)
}

// GetStaticMethodID resolves a static method.
func (e *Env) GetStaticMethodID(class host.Raw, name, sig string) (host.Raw, error) {
	return e.lookup(class, name, sig, false)
}

func (e *Env) lookup(class host.Raw, name, sig string, receiver bool) (host.Raw, error) {
	md, err := descriptor.Parse(sig)
	if err != nil {
		return 0, err
	}

	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()

	m, ok := e.module(class)
	if !ok {
		return 0, errors.NotFound(errors.PhaseHost, "class reference", fmt.Sprintf("%#x", uintptr(class)))
	}
	defs := m.ExportedFunctionDefinitions()
	export := name + sig
	def, ok := defs[export]
	if !ok {
		export = name
		def, ok = defs[export]
	}
	if !ok {
		return 0, errors.NotFound(errors.PhaseHost, "export", m.Name()+"."+name+sig)
	}

	params, results := Signature(md, receiver)
	if !sameTypes(def.ParamTypes(), params) || !sameTypes(def.ResultTypes(), results) {
		return 0, errors.New(errors.PhaseHost, errors.KindInvalidDescriptor).
			Class(m.Name()).
			Member(name, sig).
			Detail("export has type %s -> %s, descriptor needs %s -> %s",
				typeList(def.ParamTypes()), typeList(def.ResultTypes()),
				typeList(params), typeList(results)).
			Build()
	}

	id := e.vm.mint()
	e.vm.funcs[id] = binding{module: m, export: export, def: def}
	return id, nil
}
