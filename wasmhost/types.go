package wasmhost

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/jni-bridge/descriptor"
)

func valueType(t descriptor.Type) api.ValueType {
	switch t.Base {
	case descriptor.Long:
		return api.ValueTypeI64
	case descriptor.Float:
		return api.ValueTypeF32
	case descriptor.Double:
		return api.ValueTypeF64
	case descriptor.Object, descriptor.Array:
		return api.ValueTypeExternref
	default:
		return api.ValueTypeI32
	}
}

// Signature returns the wasm params and results a callable with descriptor m
// must have. receiver adds the leading externref of instance methods and
// constructors.
func Signature(m descriptor.Method, receiver bool) (params, results []api.ValueType) {
	if receiver {
		params = append(params, api.ValueTypeExternref)
	}
	for _, p := range m.Params {
		params = append(params, valueType(p))
	}
	if !m.ReturnsVoid() {
		results = []api.ValueType{valueType(m.Return)}
	}
	return params, results
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func typeList(ts []api.ValueType) string {
	s := "("
	for i, t := range ts {
		if i > 0 {
			s += " "
		}
		s += api.ValueTypeName(t)
	}
	return s + ")"
}
