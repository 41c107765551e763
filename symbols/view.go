package symbols

import "github.com/wippyai/jni-bridge/foreign"

// View is the read-only side of a Cache. Feature code gets a View so that
// only the attach and detach hooks can initialize or clean the cache.
type View interface {
	Ready() bool
	Generation() uint64
	Class(id ClassID) foreign.Ref
	Callable(id CallableID) foreign.Ref
	ClassNamed(slot string) foreign.Ref
	CallableNamed(slot string) foreign.Ref
	Slots() []Slot
}

// view hides the Cache so a View cannot be asserted back to it.
type view struct {
	c *Cache
}

// View returns a read-only view of c.
func (c *Cache) View() View {
	return view{c: c}
}

func (v view) Ready() bool                           { return v.c.Ready() }
func (v view) Generation() uint64                    { return v.c.Generation() }
func (v view) Class(id ClassID) foreign.Ref          { return v.c.Class(id) }
func (v view) Callable(id CallableID) foreign.Ref    { return v.c.Callable(id) }
func (v view) ClassNamed(slot string) foreign.Ref    { return v.c.ClassNamed(slot) }
func (v view) CallableNamed(slot string) foreign.Ref { return v.c.CallableNamed(slot) }
func (v view) Slots() []Slot                         { return v.c.Slots() }
