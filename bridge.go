package jnibridge

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/foreign"
	"github.com/wippyai/jni-bridge/host"
	"github.com/wippyai/jni-bridge/registry"
	"github.com/wippyai/jni-bridge/symbols"
)

// Hook lets feature logic run its own setup once symbols are resolved and its
// teardown before they are released. Attach hooks run in registration order,
// detach hooks in reverse.
type Hook struct {
	Attach func(env host.Env, syms symbols.View) error
	Detach func(env host.Env, syms symbols.View)
	Name   string
}

// Bridge is the explicit context threaded through every call site: the
// connection registry plus the symbol cache for one host runtime.
type Bridge struct {
	registry *registry.Registry
	symbols  *symbols.Cache
	logger   *zap.Logger
	hooks    []Hook
	symOpts  []symbols.Option
	version  host.Version
	mu       sync.Mutex
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger. The symbol cache logs through a child
// named "symbols".
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithHook registers feature setup and teardown.
func WithHook(h Hook) Option {
	return func(b *Bridge) {
		b.hooks = append(b.hooks, h)
	}
}

// WithSymbolObserver subscribes o to slot bind and release events.
func WithSymbolObserver(o foreign.Observer) Option {
	return func(b *Bridge) {
		b.symOpts = append(b.symOpts, symbols.WithObserver(o))
	}
}

// New builds a detached bridge.
func New(cfg Config, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		registry: registry.New(),
		logger:   Logger(),
		version:  cfg.Version,
	}
	if b.version == 0 {
		b.version = host.DefaultVersion
	}
	for _, opt := range opts {
		opt(b)
	}

	m := cfg.Manifest
	if m == nil {
		m = symbols.Android()
	}
	cache, err := symbols.New(m, append(b.symOpts, symbols.WithLogger(b.logger.Named("symbols")))...)
	if err != nil {
		return nil, err
	}
	b.symbols = cache
	b.registry.SetVersion(b.version)
	return b, nil
}

// OnLoad is the attach hook. It returns the negotiated version on success
// and host.OnLoadFailed otherwise, in which case nothing stays attached.
// reserved is accepted for signature compatibility and ignored.
func (b *Bridge) OnLoad(vm host.VM, reserved any) int32 {
	if err := b.Attach(vm); err != nil {
		b.logger.Error("attach failed", zap.Error(err))
		return host.OnLoadFailed
	}
	return int32(b.registry.Version())
}

// OnUnload is the detach hook.
func (b *Bridge) OnUnload(vm host.VM, reserved any) {
	if err := b.Detach(); err != nil {
		b.logger.Warn("detach incomplete",
			zap.Int("failures", len(multierr.Errors(err))),
			zap.Error(err))
	}
}

// Attach stores vm, derives a context on the calling thread and resolves
// every symbol. Any failure rolls back to the detached state.
func (b *Bridge) Attach(vm host.VM) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.registry.Attached() {
		return errors.AlreadyAttached()
	}
	if vm == nil {
		return errors.InvalidInput(errors.PhaseAttach, "nil connection handle")
	}

	b.registry.SetVersion(b.version)
	b.registry.SetConnection(vm)

	env, status := b.registry.EnvStatus()
	if env == nil {
		b.registry.Clear()
		return errors.ContextUnavailable(int32(b.version), status)
	}

	if err := b.symbols.Initialize(env); err != nil {
		b.registry.Clear()
		return err
	}

	for i, h := range b.hooks {
		if h.Attach == nil {
			continue
		}
		if err := h.Attach(env, b.symbols.View()); err != nil {
			b.runDetachHooks(env, b.hooks[:i])
			cerr := b.symbols.Clean(env)
			b.registry.Clear()
			return multierr.Append(errors.Hook(errors.PhaseAttach, h.Name, err), cerr)
		}
	}

	b.logger.Info("bridge attached",
		zap.Stringer("version", b.version),
		zap.Uint64("generation", b.symbols.Generation()),
		zap.Int("symbols", b.symbols.Manifest().Len()))
	return nil
}

// Detach runs detach hooks, releases every symbol on the calling thread and
// drops the connection. It is a no-op when not attached. Without a context
// on the calling thread the slots still go absent, but the class references
// stay held by the host and the returned error lists each of them.
func (b *Bridge) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.registry.Attached() {
		return nil
	}

	env, status := b.registry.EnvStatus()
	if env == nil {
		b.logger.Warn("detaching without a context; class references stay held by the host",
			zap.Stringer("status", status),
			zap.Int("leaked_global_refs", b.heldClasses()))
	}
	b.runDetachHooks(env, b.hooks)
	err := b.symbols.Clean(env)
	b.registry.Clear()

	b.logger.Info("bridge detached")
	return err
}

func (b *Bridge) heldClasses() int {
	n := 0
	for _, s := range b.symbols.Slots() {
		if s.Ref.Owned() {
			n++
		}
	}
	return n
}

func (b *Bridge) runDetachHooks(env host.Env, hooks []Hook) {
	for i := len(hooks) - 1; i >= 0; i-- {
		if hooks[i].Detach != nil {
			hooks[i].Detach(env, b.symbols.View())
		}
	}
}

// Attached reports whether the connection is stored.
func (b *Bridge) Attached() bool {
	return b.registry.Attached()
}

// Connection returns the host connection, or nil when detached.
func (b *Bridge) Connection() host.VM {
	return b.registry.Connection()
}

// Env derives the calling thread's context, or nil.
func (b *Bridge) Env() host.Env {
	return b.registry.Env()
}

// Version returns the version requested for context derivation.
func (b *Bridge) Version() host.Version {
	return b.registry.Version()
}

// SetVersion changes the version used from the next derivation on, including
// the next attach.
func (b *Bridge) SetVersion(v host.Version) {
	b.mu.Lock()
	b.version = v
	b.mu.Unlock()
	b.registry.SetVersion(v)
}

// Class returns a cached class reference, or an absent Ref.
func (b *Bridge) Class(id symbols.ClassID) foreign.Ref {
	return b.symbols.Class(id)
}

// Callable returns a cached method or constructor, or an absent Ref.
func (b *Bridge) Callable(id symbols.CallableID) foreign.Ref {
	return b.symbols.Callable(id)
}

// Symbols returns a read-only view of the symbol cache.
func (b *Bridge) Symbols() symbols.View {
	return b.symbols.View()
}
