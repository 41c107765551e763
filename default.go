package jnibridge

import (
	"sync/atomic"

	"github.com/wippyai/jni-bridge/host"
)

var defaultBridge atomic.Pointer[Bridge]

// Default returns the process-wide bridge, creating one from DefaultConfig
// on first use. Exported native entry points delegate to it.
func Default() *Bridge {
	if b := defaultBridge.Load(); b != nil {
		return b
	}
	b, err := New(DefaultConfig())
	if err != nil {
		// The built-in manifest always validates.
		panic(err)
	}
	if defaultBridge.CompareAndSwap(nil, b) {
		return b
	}
	return defaultBridge.Load()
}

// SetDefault installs b as the process-wide bridge. It must be called before
// the host invokes OnLoad.
func SetDefault(b *Bridge) {
	defaultBridge.Store(b)
}

// OnLoad is the process-wide attach hook.
func OnLoad(vm host.VM, reserved any) int32 {
	return Default().OnLoad(vm, reserved)
}

// OnUnload is the process-wide detach hook.
func OnUnload(vm host.VM, reserved any) {
	Default().OnUnload(vm, reserved)
}
