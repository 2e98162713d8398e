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
	"sync"
	"unsafe"

	uref "dirpx.dev/rtx/utils/reflect"
)

const wordSize = unsafe.Sizeof(uintptr(0))

// storage is the two machine words every Value carries. The garbage
// collector sees ptr as a pointer and word as a plain integer, so inline
// values are placed to match: pointers in ptr, scalars in word.
type storage struct {
	ptr  unsafe.Pointer
	word uintptr
}

// Offsets of the storage slots.
const (
	ptrSlot  = unsafe.Offsetof(storage{}.ptr)
	wordSlot = unsafe.Offsetof(storage{}.word)
)

// shape is the storage class of a Go type.
type shape uint8

const (
	shapeRemote  shape = iota // owned heap block in ptr
	shapeZero                 // no bytes
	shapeScalar               // pointer-free, at most one word, in word
	shapePointer              // exactly one pointer, in ptr
	shapePair                 // {pointer, scalar word}, across ptr and word
)

func (s shape) String() string {
	switch s {
	case shapeZero:
		return "zero"
	case shapeScalar:
		return "scalar"
	case shapePointer:
		return "pointer"
	case shapePair:
		return "pair"
	default:
		return "remote"
	}
}

// shapeOf classifies t by layout.
func shapeOf(t reflect.Type) shape {
	switch {
	case t.Size() == 0:
		return shapeZero
	case !uref.HasPointers(t) && t.Size() <= wordSize:
		return shapeScalar
	case t.Size() == wordSize && pointerWord(t):
		return shapePointer
	case t.Size() == 2*wordSize && pairLayout(t):
		return shapePair
	default:
		return shapeRemote
	}
}

// pointerWord reports whether t is a single machine pointer, possibly
// wrapped in one-field structs or one-element arrays.
func pointerWord(t reflect.Type) bool {
	if t.Size() != wordSize {
		return false
	}
	if uref.PointerShaped(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Array:
		return t.Len() == 1 && pointerWord(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Type.Size() == 0 {
				continue
			}
			return f.Offset == 0 && pointerWord(f.Type)
		}
	}
	return false
}

// pairLayout reports whether t is laid out as one pointer word followed by
// one pointer-free word.
func pairLayout(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String:
		return true
	case reflect.Array:
		return t.Len() == 1 && pairLayout(t.Elem())
	case reflect.Struct:
		lead := false
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			switch {
			case f.Type.Size() == 0:
			case f.Offset == 0:
				if f.Type.Size() == 2*wordSize {
					return pairLayout(f.Type)
				}
				if !pointerWord(f.Type) {
					return false
				}
				lead = true
			case f.Offset >= wordSize && !uref.HasPointers(f.Type):
			default:
				return false
			}
		}
		return lead
	}
	return false
}

// table is the per-type dispatch table shared by every Value of one type.
type table struct {
	rtype reflect.Type
	shape shape
	// off is the storage offset of an inline value.
	off  uintptr
	size uintptr
	m    model
}

func (t *table) inline() bool { return t.shape != shapeRemote }

// tables caches one table per reflect.Type.
var tables sync.Map // key: reflect.Type, val: *table

// tableOf returns the table for T, building it on first use. A table built
// through reflection is replaced by the static one; both share the layout.
func tableOf[T any]() *table {
	rt := reflect.TypeFor[T]()
	if t, ok := tables.Load(rt); ok {
		tab := t.(*table)
		if _, dynamic := tab.m.(reflectModel); !dynamic {
			return tab
		}
		static := newTable[T](rt)
		if tables.CompareAndSwap(rt, tab, static) {
			return static
		}
		t, _ = tables.Load(rt)
		return t.(*table)
	}
	t, _ := tables.LoadOrStore(rt, newTable[T](rt))
	return t.(*table)
}

// sameType reports whether a and b are tables of one type.
func sameType(a, b *table) bool {
	return a == b || a != nil && b != nil && a.rtype == b.rtype
}

func newTable[T any](rt reflect.Type) *table {
	t := &table{rtype: rt, shape: shapeOf(rt), size: rt.Size()}
	switch t.shape {
	case shapeScalar:
		t.off = wordSlot
	default:
		t.off = ptrSlot
	}
	if t.inline() {
		t.m = inlineModel[T]{off: t.off, ops: opsFor[T](rt)}
	} else {
		t.m = remoteModel[T]{ops: opsFor[T](rt)}
	}
	return t
}
