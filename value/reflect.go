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

// FromReflect returns a Value holding a copy of rv. It serves callers that
// only know a type at run time; the Value behaves like one built by Of.
// An invalid rv yields an empty Value.
func FromReflect(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Value{}
	}
	tab := tableFor(rv.Type())
	if tab.rtype == emptyType {
		return Value{}
	}
	rm := reflectModel{rt: tab.rtype, off: tab.off, inline: tab.inline()}
	return Value{tab: tab, store: rm.put(rv)}
}

// New returns a Value holding the zero value of t.
func New(t reflect.Type) Value {
	if t == nil {
		return Value{}
	}
	return FromReflect(reflect.Zero(t))
}

// Reflect returns an addressable reflect.Value of the held value, or the
// zero reflect.Value when v is empty. It aliases v's storage.
func (v *Value) Reflect() reflect.Value {
	if v.tab == nil {
		return reflect.Value{}
	}
	return reflect.NewAt(v.tab.rtype, v.at()).Elem()
}

// tableFor returns the table for t, building a reflection-backed one when
// no static table exists yet.
func tableFor(t reflect.Type) *table {
	if tab, ok := tables.Load(t); ok {
		return tab.(*table)
	}
	tab := &table{rtype: t, shape: shapeOf(t), size: t.Size()}
	if tab.shape == shapeScalar {
		tab.off = wordSlot
	} else {
		tab.off = ptrSlot
	}
	tab.m = reflectModel{rt: t, off: tab.off, inline: tab.inline()}
	actual, _ := tables.LoadOrStore(t, tab)
	return actual.(*table)
}

// reflectModel is the model of types known only through reflection.
type reflectModel struct {
	rt     reflect.Type
	off    uintptr
	inline bool
}

// addr returns a reflect.Value aliasing the value in *s.
func (m reflectModel) addr(s *storage) reflect.Value {
	if m.inline {
		return reflect.NewAt(m.rt, unsafe.Add(unsafe.Pointer(s), m.off)).Elem()
	}
	return reflect.NewAt(m.rt, s.ptr).Elem()
}

func (m reflectModel) put(rv reflect.Value) storage {
	if m.inline {
		var s storage
		m.addr(&s).Set(rv)
		return s
	}
	p := reflect.New(m.rt)
	p.Elem().Set(rv)
	allocs.Add(1)
	return storage{ptr: p.UnsafePointer()}
}

func (m reflectModel) clone(s storage) storage {
	src := m.addr(&s)
	if src.Kind() == reflect.Pointer && src.IsNil() {
		return m.put(src)
	}
	if meth := method(src, "Clone"); meth.IsValid() && meth.Type().NumIn() == 0 &&
		meth.Type().NumOut() == 1 && meth.Type().Out(0) == m.rt {
		return m.put(meth.Call(nil)[0])
	}
	return m.put(src)
}

func (m reflectModel) assign(dst, src storage) storage {
	m.addr(&dst).Set(m.addr(&src))
	return dst
}

func (m reflectModel) destroy(s storage) {
	if m.inline || s.ptr == nil {
		return
	}
	m.addr(&s).SetZero()
	frees.Add(1)
}

func (m reflectModel) equals(a, b storage) bool {
	x, y := m.addr(&a), m.addr(&b)
	if meth := method(x, "Equal"); meth.IsValid() && meth.Type().NumIn() == 1 &&
		meth.Type().In(0) == m.rt && meth.Type().NumOut() == 1 && meth.Type().Out(0).Kind() == reflect.Bool {
		return meth.Call([]reflect.Value{y})[0].Bool()
	}
	if m.rt.Comparable() {
		if eq, ok := safeEqual(x, y); ok {
			return eq
		}
	}
	return reflect.DeepEqual(x.Interface(), y.Interface())
}

// method finds a method of the addressable rv with a value or pointer receiver.
func method(rv reflect.Value, name string) reflect.Value {
	if m := rv.MethodByName(name); m.IsValid() {
		return m
	}
	return rv.Addr().MethodByName(name)
}

// safeEqual is x == y, reporting false ok when it panics.
func safeEqual(x, y reflect.Value) (eq, ok bool) {
	defer func() {
		if recover() != nil {
			eq, ok = false, false
		}
	}()
	return x.Equal(y), true
}

func (m reflectModel) load(s storage, src unsafe.Pointer) storage {
	m.addr(&s).Set(reflect.NewAt(m.rt, src).Elem())
	return s
}

func (m reflectModel) store(s storage, dst unsafe.Pointer) {
	reflect.NewAt(m.rt, dst).Elem().Set(m.addr(&s))
}

func (m reflectModel) iface(s storage) any {
	return m.addr(&s).Interface()
}
