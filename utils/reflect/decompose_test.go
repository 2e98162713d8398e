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

package reflect_test

import (
	"errors"
	"reflect"
	"testing"
	"unsafe"

	uref "dirpx.dev/rtx/utils/reflect"
)

// Local test types.
type A struct{}
type G[T any] struct{}

func TestDecompose_Composites(t *testing.T) {
	typeA := reflect.TypeOf(A{})
	typeS := reflect.TypeOf("")

	cases := []struct {
		name   string
		typ    reflect.Type
		ctor   string
		params []reflect.Type
	}{
		{"ptr", reflect.TypeOf(&A{}), "ptr", []reflect.Type{typeA}},
		{"slice", reflect.TypeOf([]A{}), "slice", []reflect.Type{typeA}},
		{"array", reflect.TypeOf([4]A{}), "array[4]", []reflect.Type{typeA}},
		{"map", reflect.TypeOf(map[string]A{}), "map", []reflect.Type{typeS, typeA}},
		{"chan", reflect.TypeOf((chan A)(nil)), "chan", []reflect.Type{typeA}},
		{"recv chan", reflect.TypeOf((<-chan A)(nil)), "<-chan", []reflect.Type{typeA}},
		{"send chan", reflect.TypeOf((chan<- A)(nil)), "chan<-", []reflect.Type{typeA}},
		{"nested", reflect.TypeOf([]*A{}), "slice", []reflect.Type{reflect.TypeOf(&A{})}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctor, params, err := uref.Decompose(tc.typ)
			if err != nil {
				t.Fatalf("Decompose(%v) returned error: %v", tc.typ, err)
			}
			if ctor != tc.ctor {
				t.Fatalf("Decompose(%v) ctor = %q, want %q", tc.typ, ctor, tc.ctor)
			}
			if !reflect.DeepEqual(params, tc.params) {
				t.Fatalf("Decompose(%v) params = %v, want %v", tc.typ, params, tc.params)
			}
		})
	}
}

func TestDecompose_Errors(t *testing.T) {
	if _, _, err := uref.Decompose(nil); !errors.Is(err, uref.ErrReflectNilType) {
		t.Fatalf("nil: want ErrReflectNilType, got %v", err)
	}
	for _, typ := range []reflect.Type{reflect.TypeOf(A{}), reflect.TypeOf(G[int]{}), reflect.TypeOf(0)} {
		if _, _, err := uref.Decompose(typ); !errors.Is(err, uref.ErrReflectTypeNamed) {
			t.Fatalf("%v: want ErrReflectTypeNamed, got %v", typ, err)
		}
	}
	opaque := []reflect.Type{
		reflect.TypeOf(struct{ X int }{}),
		reflect.TypeOf(func() {}),
		reflect.TypeOf((*any)(nil)).Elem(),
	}
	for _, typ := range opaque {
		if _, _, err := uref.Decompose(typ); !errors.Is(err, uref.ErrReflectTypeOpaque) {
			t.Fatalf("%v: want ErrReflectTypeOpaque, got %v", typ, err)
		}
	}
}

func TestHasPointers(t *testing.T) {
	cases := []struct {
		val  any
		want bool
	}{
		{0, false},
		{3.5, false},
		{[4]int32{}, false},
		{struct{ A, B int }{}, false},
		{"s", true},
		{[]int{}, true},
		{&A{}, true},
		{map[int]int{}, true},
		{struct {
			A int
			B *int
		}{}, true},
		{[0]*int{}, false},
		{unsafe.Pointer(nil), true},
	}
	for _, tc := range cases {
		if got := uref.HasPointers(reflect.TypeOf(tc.val)); got != tc.want {
			t.Errorf("HasPointers(%T) = %v, want %v", tc.val, got, tc.want)
		}
	}
}

func TestPointerShaped(t *testing.T) {
	yes := []any{&A{}, map[string]int{}, make(chan int), func() {}, unsafe.Pointer(nil)}
	no := []any{0, "s", []int{}, A{}, [1]*int{}}
	for _, v := range yes {
		if !uref.PointerShaped(reflect.TypeOf(v)) {
			t.Errorf("PointerShaped(%T) = false, want true", v)
		}
	}
	for _, v := range no {
		if uref.PointerShaped(reflect.TypeOf(v)) {
			t.Errorf("PointerShaped(%T) = true, want false", v)
		}
	}
}
