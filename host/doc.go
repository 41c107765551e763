// Package host declares the capabilities the bridge consumes from the host runtime.
//
// The host runtime owns every resource behind these interfaces. The bridge only
// sequences calls to them:
//
//	VM   - the process-wide connection handle, shared by every thread
//	Env  - the execution context of one thread, derived from VM on demand
//	Raw  - an opaque host pointer (class reference, method ID)
//
// An Env must only be used on the OS thread that obtained it. Goroutines that
// hold one must stay locked to their thread (runtime.LockOSThread) for as long
// as they use it.
//
// Implementations live in hostsim (in-memory, for tests and tooling) and
// wasmhost (wazero-backed).
package host
