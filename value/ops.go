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

package value

import (
	"reflect"
	"unsafe"
)

// ops are the value-level operations of T, chosen once per type.
type ops[T any] struct {
	clone func(T) T
	equal func(a, b T) bool
}

type cloner[T any] interface{ Clone() T }

type equaler[T any] interface{ Equal(T) bool }

func opsFor[T any](rt reflect.Type) ops[T] {
	return ops[T]{clone: cloneFor[T](rt), equal: equalFor[T](rt)}
}

// cloneFor prefers a Clone() T method; otherwise values copy like a Go
// assignment. A nil pointer is copied as is: Clone is never called on it.
func cloneFor[T any](rt reflect.Type) func(T) T {
	var zero T
	if _, ok := any(zero).(cloner[T]); ok {
		if rt.Kind() == reflect.Pointer {
			return func(x T) T {
				if *(*unsafe.Pointer)(unsafe.Pointer(&x)) == nil {
					return x
				}
				return any(x).(cloner[T]).Clone()
			}
		}
		return func(x T) T { return any(x).(cloner[T]).Clone() }
	}
	if _, ok := any(&zero).(cloner[T]); ok {
		return func(x T) T { return any(&x).(cloner[T]).Clone() }
	}
	return func(x T) T { return x }
}

// equalFor prefers an Equal(T) bool method, then ==, then deep equality.
func equalFor[T any](rt reflect.Type) func(a, b T) bool {
	var zero T
	if _, ok := any(zero).(equaler[T]); ok {
		return func(a, b T) bool { return any(a).(equaler[T]).Equal(b) }
	}
	if _, ok := any(&zero).(equaler[T]); ok {
		return func(a, b T) bool { return any(&a).(equaler[T]).Equal(b) }
	}
	if rt.Comparable() {
		return compareEqual[T]
	}
	return func(a, b T) bool { return reflect.DeepEqual(a, b) }
}

// compareEqual uses ==, falling back to deep equality when an interface
// inside T holds an incomparable dynamic type.
func compareEqual[T any](a, b T) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = reflect.DeepEqual(a, b)
		}
	}()
	return any(a) == any(b)
}
