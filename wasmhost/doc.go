// Package wasmhost exposes a wazero runtime as a bridge host.
//
// Every module instantiated in the runtime is a class whose internal name is
// the module name, and every exported function is a callable. Lookups check
// the wasm function type against the method descriptor:
//
//	Z B C S I  -> i32
//	J          -> i64
//	F          -> f32
//	D          -> f64
//	L... [     -> externref
//
// Instance methods and constructors take the receiver as a leading externref.
// Overloads are exported as name plus descriptor, e.g. "wait(J)V"; a plain
// name export is accepted when the mangled form is absent.
//
//	rt := wazero.NewRuntime(ctx)
//	_, _ = rt.NewHostModuleBuilder("java/lang/Object").
//		NewFunctionBuilder().
//		WithGoModuleFunction(notify, []api.ValueType{api.ValueTypeExternref}, nil).
//		Export("notify").
//		Instantiate(ctx)
//	vm := wasmhost.New(rt)
//
// Classes may be host modules or compiled guest modules. Exports are resolved
// through their definitions; wazero forbids ExportedFunction on host modules,
// so VM.Call invokes Go-implemented functions directly.
//
// The runtime has no thread affinity, so one context serves every thread.
package wasmhost
