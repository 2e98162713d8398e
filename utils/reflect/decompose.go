/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package reflect

import (
	"errors"
	"reflect"
	"strconv"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTypeNamed indicates that the provided type has a name and
	// therefore is not decomposed.
	ErrReflectTypeNamed = errors.New("reflect: named type is not decomposable")
	// ErrReflectTypeOpaque indicates an unnamed type that has no constructor
	// form (anonymous struct, func, interface).
	ErrReflectTypeOpaque = errors.New("reflect: unnamed type is opaque")
)

// Constructor names produced by Decompose.
const (
	CtorPtr      = "ptr"
	CtorSlice    = "slice"
	CtorMap      = "map"
	CtorChan     = "chan"
	CtorRecvChan = "<-chan"
	CtorSendChan = "chan<-"
	ctorArray    = "array"
)

// Decompose splits an unnamed composite type into a constructor name and its
// parameter types.
//
// Decomposition policy:
//   - *T          -> "ptr",      [T]
//   - []T         -> "slice",    [T]
//   - [N]T        -> "array[N]", [T]
//   - map[K]V     -> "map",      [K, V]
//   - chan T      -> "chan" / "<-chan" / "chan<-", [T]
//   - named types -> ErrReflectTypeNamed
//   - anonymous struct/func/interface -> ErrReflectTypeOpaque
func Decompose(t reflect.Type) (ctor string, params []reflect.Type, err error) {
	if t == nil {
		return "", nil, ErrReflectNilType
	}
	if t.Name() != "" {
		return "", nil, ErrReflectTypeNamed
	}

	switch t.Kind() {
	case reflect.Ptr:
		return CtorPtr, []reflect.Type{t.Elem()}, nil
	case reflect.Slice:
		return CtorSlice, []reflect.Type{t.Elem()}, nil
	case reflect.Array:
		return ArrayCtor(t.Len()), []reflect.Type{t.Elem()}, nil
	case reflect.Map:
		return CtorMap, []reflect.Type{t.Key(), t.Elem()}, nil
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return CtorRecvChan, []reflect.Type{t.Elem()}, nil
		case reflect.SendDir:
			return CtorSendChan, []reflect.Type{t.Elem()}, nil
		default:
			return CtorChan, []reflect.Type{t.Elem()}, nil
		}
	default:
		return "", nil, ErrReflectTypeOpaque
	}
}

// ArrayCtor returns the constructor name for a fixed array of n elements.
func ArrayCtor(n int) string {
	return ctorArray + "[" + strconv.Itoa(n) + "]"
}

// HasPointers reports whether values of t contain Go pointers the garbage
// collector must see.
func HasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && HasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if HasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// PointerShaped reports whether a value of t is represented by exactly one
// machine pointer.
func PointerShaped(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
