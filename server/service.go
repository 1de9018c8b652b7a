package server

import (
	"fmt"
	"reflect"
)

// methodType describes one exported method eligible for remote dispatch:
// zero or more positional arguments followed by (result, error).
type methodType struct {
	method   reflect.Method
	ArgTypes []reflect.Type
}

// service wraps one registered implementation handle: its receiver value
// and every method matching the RPC-eligible signature.
type service struct {
	name   string
	rcvr   reflect.Value
	typ    reflect.Type
	method map[string]*methodType
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// newService builds a service from rcvr, scanning its exported methods for
// the RPC-eligible shape: func(arg1, arg2, ...) (result, error).
func newService(rcvr any) (*service, error) {
	typ := reflect.TypeOf(rcvr)
	if typ.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("rpc: handle must be a pointer, got %s", typ.Kind())
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("rpc: handle must point to a struct, got %s", typ.Elem().Kind())
	}

	svc := &service{
		name:   typ.Elem().Name(),
		rcvr:   reflect.ValueOf(rcvr),
		typ:    typ,
		method: make(map[string]*methodType),
	}
	svc.registerMethods()
	return svc, nil
}

// registerMethods records every exported method returning (T, error).
func (s *service) registerMethods() {
	for i := 0; i < s.typ.NumMethod(); i++ {
		method := s.typ.Method(i)
		mtype := method.Type
		if mtype.NumOut() != 2 || mtype.Out(1) != errorType {
			continue
		}

		argTypes := make([]reflect.Type, 0, mtype.NumIn()-1)
		for j := 1; j < mtype.NumIn(); j++ {
			argTypes = append(argTypes, mtype.In(j))
		}
		s.method[method.Name] = &methodType{method: method, ArgTypes: argTypes}
	}
}

// call invokes mt with args bound positionally, returning the method's
// result value or its error.
func (s *service) call(mt *methodType, args []reflect.Value) (reflect.Value, error) {
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, s.rcvr)
	in = append(in, args...)

	results := mt.method.Func.Call(in)
	if !results[1].IsNil() {
		return reflect.Value{}, results[1].Interface().(error)
	}
	return results[0], nil
}
