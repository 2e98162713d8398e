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
	"testing"
	"unsafe"
)

func TestShapeOf(t *testing.T) {
	type pair struct {
		P *int
		N int
	}
	type wrapped struct{ S string }
	type reversed struct {
		N int
		P *int
	}
	type twoPtrs struct{ A, B *int }

	cases := []struct {
		typ  reflect.Type
		want shape
	}{
		{reflect.TypeFor[struct{}](), shapeZero},
		{reflect.TypeFor[[0]int](), shapeZero},
		{reflect.TypeFor[int](), shapeScalar},
		{reflect.TypeFor[[2]int32](), shapeScalar},
		{reflect.TypeFor[*int](), shapePointer},
		{reflect.TypeFor[map[int]int](), shapePointer},
		{reflect.TypeFor[func()](), shapePointer},
		{reflect.TypeFor[unsafe.Pointer](), shapePointer},
		{reflect.TypeFor[struct{ P *int }](), shapePointer},
		{reflect.TypeFor[string](), shapePair},
		{reflect.TypeFor[pair](), shapePair},
		{reflect.TypeFor[wrapped](), shapePair},
		{reflect.TypeFor[[1]string](), shapePair},
		{reflect.TypeFor[reversed](), shapeRemote},
		{reflect.TypeFor[twoPtrs](), shapeRemote},
		{reflect.TypeFor[any](), shapeRemote},
		{reflect.TypeFor[[]int](), shapeRemote},
		{reflect.TypeFor[complex128](), shapeRemote},
	}
	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			if got := shapeOf(tc.typ); got != tc.want {
				t.Fatalf("shapeOf(%v) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}

func TestTableOf_Cached(t *testing.T) {
	a, b := tableOf[string](), tableOf[string]()
	if a != b {
		t.Fatal("tableOf must return one table per type")
	}
	if a.off != ptrSlot || tableOf[int]().off != wordSlot {
		t.Fatal("unexpected inline offsets")
	}
}
