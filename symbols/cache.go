package symbols

import (
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/foreign"
	"github.com/wippyai/jni-bridge/host"
)

// Cache holds one generation of resolved symbols at a time.
type Cache struct {
	manifest  *Manifest
	plan      *plan
	logger    *zap.Logger
	observers []foreign.Observer
	live      atomic.Pointer[generation]
	gens      atomic.Uint64
	mu        sync.Mutex
}

type generation struct {
	classes   *foreign.Table
	callables *foreign.Table
	id        uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for resolution and release events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver subscribes o to the slot tables of every generation.
func WithObserver(o foreign.Observer) Option {
	return func(c *Cache) {
		c.observers = append(c.observers, o)
	}
}

// New validates m and returns an uninitialized cache.
func New(m *Manifest, opts ...Option) (*Cache, error) {
	p, err := compile(m)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		manifest: m,
		plan:     p,
		logger:   Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Manifest returns the manifest the cache was built from.
func (c *Cache) Manifest() *Manifest {
	return c.manifest
}

// Initialize resolves every slot using env, which must belong to the calling
// thread. It fails without side effects if the cache is already Ready.
func (c *Cache) Initialize(env host.Env) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if live := c.live.Load(); live != nil {
		return errors.AlreadyInitialized(live.id)
	}
	if env == nil {
		return errors.NotAttached(errors.PhaseResolve, "initialize symbols")
	}

	gen := c.newGeneration()
	if err := c.resolve(env, gen); err != nil {
		rerr := c.release(env, gen)
		c.logger.Warn("symbol resolution failed, rolled back",
			zap.Uint64("generation", gen.id),
			zap.Error(err),
			zap.NamedError("release_error", rerr))
		return multierr.Append(err, rerr)
	}

	c.live.Store(gen)
	c.logger.Debug("symbols ready",
		zap.Uint64("generation", gen.id),
		zap.Int("classes", gen.classes.Len()),
		zap.Int("callables", gen.callables.Len()))
	return nil
}

// Clean releases every held reference and resets all slots to absent. It is
// a no-op when the cache is not Ready. With a nil env the slots are still
// reset, but the class references cannot be deleted and a NotAttached error
// is reported for each.
func (c *Cache) Clean(env host.Env) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.live.Swap(nil)
	if gen == nil {
		return nil
	}
	err := c.release(env, gen)
	if err != nil {
		c.logger.Warn("symbol release incomplete", zap.Uint64("generation", gen.id), zap.Error(err))
	} else {
		c.logger.Debug("symbols released", zap.Uint64("generation", gen.id))
	}
	return err
}

func (c *Cache) newGeneration() *generation {
	gen := &generation{
		classes:   foreign.NewTable(len(c.plan.classes)),
		callables: foreign.NewTable(len(c.plan.callables)),
		id:        c.gens.Add(1),
	}
	for _, o := range c.observers {
		gen.classes.Subscribe(o)
		gen.callables.Subscribe(o)
	}
	return gen
}

func (c *Cache) resolve(env host.Env, gen *generation) error {
	for i, cp := range c.plan.classes {
		ref, err := resolveClass(env, cp)
		if err != nil {
			return err
		}
		if err := gen.classes.Bind(i, ref); err != nil {
			env.DeleteGlobalRef(ref.Raw())
			return err
		}
		c.logger.Debug("resolved class", zap.String("slot", cp.slot), zap.Stringer("ref", ref))
	}

	for i, mp := range c.plan.callables {
		owner, _ := gen.classes.Get(mp.owner)
		ref, err := resolveCallable(env, owner, c.plan.classes[mp.owner], mp)
		if err != nil {
			return err
		}
		if err := gen.callables.Bind(i, ref); err != nil {
			return err
		}
		c.logger.Debug("resolved callable", zap.String("slot", mp.slot), zap.Stringer("ref", ref))
	}
	return nil
}

func resolveClass(env host.Env, cp classPlan) (foreign.Ref, error) {
	path := []string{"symbols", cp.slot}
	local, err := env.FindClass(cp.internal)
	if err != nil || local == 0 {
		return foreign.Ref{}, errors.ClassNotFound(path, cp.internal, err)
	}
	global := env.NewGlobalRef(local)
	env.DeleteLocalRef(local)
	if global == 0 {
		return foreign.Ref{}, errors.New(errors.PhaseResolve, errors.KindClassNotFound).
			Path(path...).
			Class(cp.internal).
			Detail("host refused a global reference").
			Build()
	}
	return foreign.NewClass(global), nil
}

func resolveCallable(env host.Env, owner foreign.Ref, cls classPlan, mp callablePlan) (foreign.Ref, error) {
	var (
		id  host.Raw
		err error
	)
	if mp.kind == foreign.KindStaticMethod {
		id, err = env.GetStaticMethodID(owner.Raw(), mp.name, mp.sig)
	} else {
		id, err = env.GetMethodID(owner.Raw(), mp.name, mp.sig)
	}
	if err != nil || id == 0 {
		return foreign.Ref{}, errors.MethodNotFound([]string{"symbols", mp.slot}, cls.internal, mp.name, mp.sig, err)
	}
	return foreign.NewCallable(mp.kind, id), nil
}

// release drops callables before the classes that keep them valid.
func (c *Cache) release(env host.Env, gen *generation) error {
	errs := gen.callables.ReleaseAll(nil)
	errs = multierr.Append(errs, gen.classes.ReleaseAll(func(slot int, ref foreign.Ref) error {
		if !ref.Owned() {
			return nil
		}
		if env == nil {
			return errors.Release([]string{"symbols", c.plan.classes[slot].slot},
				errors.NotAttached(errors.PhaseRelease, "delete global reference"))
		}
		env.DeleteGlobalRef(ref.Raw())
		return nil
	}))
	return errs
}

// Ready reports whether a generation is published.
func (c *Cache) Ready() bool {
	return c.live.Load() != nil
}

// Generation returns the id of the published generation, or 0.
func (c *Cache) Generation() uint64 {
	if gen := c.live.Load(); gen != nil {
		return gen.id
	}
	return 0
}

// Class returns the class in slot id, or an absent Ref.
func (c *Cache) Class(id ClassID) foreign.Ref {
	gen := c.live.Load()
	if gen == nil {
		return foreign.Ref{}
	}
	ref, _ := gen.classes.Get(int(id))
	return ref
}

// Callable returns the method or constructor in slot id, or an absent Ref.
func (c *Cache) Callable(id CallableID) foreign.Ref {
	gen := c.live.Load()
	if gen == nil {
		return foreign.Ref{}
	}
	ref, _ := gen.callables.Get(int(id))
	return ref
}

// ClassNamed looks a class slot up by its manifest name.
func (c *Cache) ClassNamed(slot string) foreign.Ref {
	i, ok := c.plan.classSlots[slot]
	if !ok {
		return foreign.Ref{}
	}
	return c.Class(ClassID(i))
}

// CallableNamed looks a callable slot up by its manifest name.
func (c *Cache) CallableNamed(slot string) foreign.Ref {
	i, ok := c.plan.callableSlots[slot]
	if !ok {
		return foreign.Ref{}
	}
	return c.Callable(CallableID(i))
}

// Slot describes one manifest entry and its current reference.
type Slot struct {
	Name   string
	Target string
	Ref    foreign.Ref
	Kind   foreign.Kind
}

// Slots returns every declared slot, classes first, in manifest order.
func (c *Cache) Slots() []Slot {
	out := make([]Slot, 0, len(c.plan.classes)+len(c.plan.callables))
	for i, cp := range c.plan.classes {
		out = append(out, Slot{
			Name:   cp.slot,
			Target: cp.internal,
			Kind:   foreign.KindClass,
			Ref:    c.Class(ClassID(i)),
		})
	}
	for i, mp := range c.plan.callables {
		out = append(out, Slot{
			Name:   mp.slot,
			Target: c.plan.classes[mp.owner].internal + "." + mp.name + mp.sig,
			Kind:   mp.kind,
			Ref:    c.Callable(CallableID(i)),
		})
	}
	return out
}
