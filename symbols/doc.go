// Package symbols resolves and caches the host classes, methods and
// constructors the bridge uses on every call.
//
// A Cache is built from a Manifest and moves between two states:
//
//	Uninitialized --Initialize--> Ready --Clean--> Uninitialized
//
// Initialize resolves every slot into a fresh generation and publishes it
// only when all resolutions succeed. On the first failure everything resolved
// so far is released and the cache stays Uninitialized. A second Initialize
// while Ready is rejected with KindAlreadyInitialized; a double attach is a
// host protocol violation.
//
// Accessors never resolve anything. They read the published generation and
// return an absent foreign.Ref when the cache is not Ready:
//
//	cache, err := symbols.New(symbols.Android())
//	if err := cache.Initialize(env); err != nil {
//	    return err
//	}
//	ctor := cache.Callable(symbols.CtorPointII)
//	if ctor.IsZero() {
//	    // not attached
//	}
//
// Custom manifests add their own slots; use ClassNamed and CallableNamed, or
// index them with ClassID/CallableID in declaration order.
package symbols
