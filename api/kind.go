package api

import "reflect"

// ResponseKind tags a result type a descriptor can be decoded into.
type ResponseKind string

// Kinded is implemented by result types that declare their own tag. The
// method must have a value receiver so it can be called on the zero value.
type Kinded interface {
	ResponseKind() ResponseKind
}

// KindFor returns the tag of T: the declared tag when T implements Kinded,
// otherwise T's Go type name.
func KindFor[T any]() ResponseKind {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		var zero T
		if k, ok := any(zero).(Kinded); ok {
			return k.ResponseKind()
		}
	}
	return ResponseKind(t.String())
}
