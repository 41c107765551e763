// Package jnibridge is the bootstrap and symbol-registry layer of a native
// bridge loaded into a managed host runtime.
//
// The host loads the bridge and calls its attach hook exactly once; from then
// on any host thread may call into the bridge until the host calls the detach
// hook. This package sequences that lifecycle:
//
//	host loads bridge
//	  -> OnLoad(vm)         store the connection, derive a context on the
//	                        attaching thread, resolve every symbol
//	  -> feature calls      any thread: Env(), Class(id), Callable(id)
//	  -> OnUnload(vm)       release every symbol, drop the connection
//
// # Architecture Overview
//
//	jnibridge/        Bridge, attach/detach hooks, config, default instance
//	├── host/         Capabilities consumed from the host runtime
//	├── registry/     The single connection and per-thread context derivation
//	├── symbols/      Manifest-driven cache of classes, methods, constructors
//	├── foreign/      Opaque host references and the slot table holding them
//	├── descriptor/   Method descriptor parsing
//	├── errors/       Structured error types
//	├── hostsim/      In-memory host runtime for tests and tooling
//	├── wasmhost/     wazero-backed host runtime
//	├── internal/logging  Package logger holders
//	└── cmd/bridgesim Attach/detach cycles against a simulated host
//
// # Quick Start
//
//	b, err := jnibridge.New(jnibridge.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// from the host's attach hook
//	status := b.OnLoad(vm, nil)
//
//	// from any host thread
//	env := b.Env()
//	if env == nil {
//	    return // not attached, or the host refused this thread
//	}
//	ctor := b.Callable(symbols.CtorPointII)
//	width := b.Symbols().CallableNamed("Display.getWidth") // read-only view
//
//	// from the host's detach hook
//	b.OnUnload(vm, nil)
//
// # Failure Handling
//
// Absence is the normal "not attached" signal: Env, Connection, Class and
// Callable return nil or an absent reference and never panic. Resolution
// failures during attach are rolled back completely and reported to the host
// only through OnLoad's status, host.OnLoadFailed.
//
// # Thread Safety
//
// All accessors are safe for concurrent use and lock-free. OnLoad and
// OnUnload are serialized against each other. A host.Env is only valid on
// the OS thread that derived it; goroutines using one must be locked to
// their thread.
package jnibridge
