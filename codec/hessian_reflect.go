package codec

import (
	"fmt"
	"reflect"
)

// hessianCopy assigns a hessian-decoded value into *v when the decoded
// type is directly assignable or convertible to v's pointee type. This
// covers the struct/slice/map/pointer shapes the mini-rpc envelope and
// typical RPC argument/return types take.
func hessianCopy(decoded any, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("hessian: target must be a non-nil pointer")
	}
	elem := rv.Elem()

	dv := reflect.ValueOf(decoded)
	if !dv.IsValid() {
		return nil
	}

	// dubbo-go-hessian2 decodes a registered POJO back into a pointer of its
	// registered type; unwrap it to match a non-pointer destination field.
	if dv.Kind() == reflect.Ptr && elem.Kind() != reflect.Ptr {
		if dv.IsNil() {
			return nil
		}
		dv = dv.Elem()
	}
	if dv.Type().AssignableTo(elem.Type()) {
		elem.Set(dv)
		return nil
	}
	if dv.Type().ConvertibleTo(elem.Type()) {
		elem.Set(dv.Convert(elem.Type()))
		return nil
	}
	return fmt.Errorf("hessian: cannot assign decoded %s into %s", dv.Type(), elem.Type())
}
