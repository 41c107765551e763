// Package errors provides structured error types for the jni-bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the symbol context: slot path, class name, member name and
// descriptor, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindMethodNotFound).
//		Path("symbols", "Object.wait(JI)").
//		Class("java/lang/Object").
//		Member("wait", "(JI)V").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ClassNotFound(path, "android/app/Activity", cause)
//	err := errors.NotAttached(errors.PhaseDetach, "release class references")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
