package wasmhost

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/host"
	"github.com/wippyai/jni-bridge/symbols"
)

var (
	ref = api.ValueTypeExternref
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

func noop(context.Context, api.Module, []uint64) {}

// guestMath imports host.max (i32, i32) -> i32 and exports a wasm function
// "max" that forwards to it.
var guestMath = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i32 i32) -> i32
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	// import "host" "max" func type 0
	0x02, 0x0c, 0x01, 0x04, 'h', 'o', 's', 't', 0x03, 'm', 'a', 'x', 0x00, 0x00,
	// one function of type 0
	0x03, 0x02, 0x01, 0x00,
	// export "max" func 1
	0x07, 0x07, 0x01, 0x03, 'm', 'a', 'x', 0x00, 0x01,
	// code: local.get 0, local.get 1, call 0
	0x0a, 0x0a, 0x01, 0x08, 0x00, 0x20, 0x00, 0x20, 0x01, 0x10, 0x00, 0x0b,
}

func newRuntime(t *testing.T) (context.Context, wazero.Runtime) {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	_, err := rt.NewHostModuleBuilder("java/lang/Object").
		NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(noop), []api.ValueType{ref}, nil).Export("notify").
		NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(noop), []api.ValueType{ref}, nil).Export("wait()V").
		NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(noop), []api.ValueType{ref, i64}, nil).Export("wait(J)V").
		NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(noop), []api.ValueType{ref, i64, i32}, nil).Export("wait(JI)V").
		Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rt.NewHostModuleBuilder("host").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			a, b := api.DecodeI32(stack[0]), api.DecodeI32(stack[1])
			if b > a {
				a = b
			}
			stack[0] = api.EncodeI32(a)
		}), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		Export("max").
		Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rt.InstantiateWithConfig(ctx, guestMath, wazero.NewModuleConfig().WithName("java/lang/Math"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = rt.NewHostModuleBuilder("android/graphics/Point").
		NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(noop), []api.ValueType{ref, i32, i32}, nil).Export("<init>").
		Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	return ctx, rt
}

func manifest() *symbols.Manifest {
	return &symbols.Manifest{
		Classes: []symbols.ClassDecl{
			{Slot: "Object", Name: "java/lang/Object"},
			{Slot: "Math", Name: "java.lang.Math"},
			{Slot: "Point", Name: "android/graphics/Point"},
		},
		Callables: []symbols.CallableDecl{
			{Slot: "Object.notify", Class: "Object", Name: "notify", Signature: "()V"},
			{Slot: "Object.wait", Class: "Object", Name: "wait", Signature: "()V"},
			{Slot: "Object.wait(J)", Class: "Object", Name: "wait", Signature: "(J)V"},
			{Slot: "Object.wait(JI)", Class: "Object", Name: "wait", Signature: "(JI)V"},
			{Slot: "Math.max", Class: "Math", Kind: symbols.KindStatic, Name: "max", Signature: "(II)I"},
			{Slot: "Point(II)", Class: "Point", Kind: symbols.KindConstructor, Signature: "(II)V"},
		},
	}
}

func TestVM_ResolveManifest(t *testing.T) {
	ctx, rt := newRuntime(t)
	vm := New(rt)

	cache, err := symbols.New(manifest())
	if err != nil {
		t.Fatal(err)
	}
	env, status := vm.GetEnv(host.DefaultVersion)
	if status != host.OK {
		t.Fatalf("GetEnv = %s", status)
	}
	if err := cache.Initialize(env); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if vm.GlobalRefs() != 3 || vm.LocalRefs() != 0 {
		t.Fatalf("GlobalRefs=%d LocalRefs=%d", vm.GlobalRefs(), vm.LocalRefs())
	}

	mx := cache.CallableNamed("Math.max")
	if mx.IsZero() {
		t.Fatal("Math.max not cached")
	}
	res, err := vm.Call(ctx, mx.Raw(), api.EncodeI32(3), api.EncodeI32(11))
	if err != nil {
		t.Fatal(err)
	}
	if got := api.DecodeI32(res[0]); got != 11 {
		t.Errorf("max(3, 11) = %d", got)
	}

	if err := cache.Clean(env); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if vm.GlobalRefs() != 0 {
		t.Errorf("GlobalRefs = %d after clean", vm.GlobalRefs())
	}
	if vm.Definition(mx.Raw()) != nil {
		t.Error("method IDs must die with their class")
	}
}

func TestVM_LookupFailures(t *testing.T) {
	_, rt := newRuntime(t)
	vm := New(rt)
	env, _ := vm.GetEnv(host.DefaultVersion)

	if _, err := env.FindClass("java/lang/Thread"); err == nil {
		t.Error("FindClass of an absent module should fail")
	}

	local, err := env.FindClass("java/lang/Object")
	if err != nil {
		t.Fatal(err)
	}
	defer env.DeleteLocalRef(local)

	tests := []struct {
		name   string
		member string
		sig    string
		static bool
		kind   errors.Kind
	}{
		{name: "missing export", member: "hashCode", sig: "()I", kind: errors.KindNotFound},
		{name: "wrong arity", member: "notify", sig: "(I)V", kind: errors.KindInvalidDescriptor},
		{name: "static without receiver", member: "notify", sig: "()V", static: true, kind: errors.KindInvalidDescriptor},
		{name: "bad descriptor", member: "notify", sig: "()", kind: errors.KindInvalidDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.static {
				_, err = env.GetStaticMethodID(local, tt.member, tt.sig)
			} else {
				_, err = env.GetMethodID(local, tt.member, tt.sig)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("lookup = %v, want structured error", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", e.Kind, tt.kind)
			}
		})
	}
}

func TestVM_UnsupportedVersion(t *testing.T) {
	_, rt := newRuntime(t)
	vm := New(rt, WithVersions(host.Version21))
	if env, status := vm.GetEnv(host.Version1_6); env != nil || status != host.EVersion {
		t.Fatalf("GetEnv = %v, %s", env, status)
	}
}

func TestVM_InitializeRollsBack(t *testing.T) {
	_, rt := newRuntime(t)
	vm := New(rt)
	env, _ := vm.GetEnv(host.DefaultVersion)

	m := manifest()
	m.Callables = append(m.Callables, symbols.CallableDecl{
		Slot: "Object.hashCode", Class: "Object", Name: "hashCode", Signature: "()I",
	})
	cache, err := symbols.New(m)
	if err != nil {
		t.Fatal(err)
	}
	err = cache.Initialize(env)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindMethodNotFound}) {
		t.Fatalf("Initialize = %v, want method not found", err)
	}
	if vm.GlobalRefs() != 0 || vm.LocalRefs() != 0 {
		t.Errorf("GlobalRefs=%d LocalRefs=%d after rollback", vm.GlobalRefs(), vm.LocalRefs())
	}
}

func TestVM_CallHostFunction(t *testing.T) {
	ctx, rt := newRuntime(t)

	var got []int32
	_, err := rt.NewHostModuleBuilder("java/lang/System").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			got = append(got, api.DecodeI32(stack[0]))
			stack[0] = api.EncodeI32(api.DecodeI32(stack[0]) * 2)
		}), []api.ValueType{i32}, []api.ValueType{i32}).
		Export("twice").
		Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	vm := New(rt)
	env, _ := vm.GetEnv(host.DefaultVersion)
	local, err := env.FindClass("java/lang/System")
	if err != nil {
		t.Fatal(err)
	}
	class := env.NewGlobalRef(local)
	env.DeleteLocalRef(local)
	defer env.DeleteGlobalRef(class)

	id, err := env.GetStaticMethodID(class, "twice", "(I)I")
	if err != nil {
		t.Fatal(err)
	}
	res, err := vm.Call(ctx, id, api.EncodeI32(21))
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || api.DecodeI32(res[0]) != 42 || len(got) != 1 {
		t.Fatalf("twice(21) = %v, calls %v", res, got)
	}

	if _, err := vm.Call(ctx, id); err == nil {
		t.Error("Call with the wrong arity should fail")
	}
	if _, err := vm.Call(ctx, 0xdead); err == nil {
		t.Error("Call of an unknown id should fail")
	}
}
