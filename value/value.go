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
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"dirpx.dev/rtx/token"
)

var (
	// ErrEmpty is returned when an operation needs a value but the Value is empty.
	ErrEmpty = errors.New("rtx(value): empty value")
	// ErrTypeMismatch is returned when two Values hold different types.
	ErrTypeMismatch = errors.New("rtx(value): type mismatch")
	// ErrNilPointer is returned when Load or Store receive a nil address.
	ErrNilPointer = errors.New("rtx(value): nil pointer")
)

var emptyType = reflect.TypeFor[token.Empty]()

// Value holds exactly one value of exactly one type, or nothing.
//
// Small values live inside the Value itself; the rest live in one heap block
// the Value owns. Either way a Value has value semantics: Clone copies,
// Assign moves, Destroy releases. The zero Value is empty.
//
// A Value must not be copied with Go assignment once it holds a remote
// value; use Clone or Assign. Values are not safe for concurrent mutation.
type Value struct {
	tab   *table
	store storage
}

// Empty returns an empty Value.
func Empty() Value { return Value{} }

// Of returns a Value holding x.
// Of[token.Empty] returns an empty Value.
func Of[T any](x T) Value {
	tab := tableOf[T]()
	if tab.rtype == emptyType {
		return Value{}
	}
	v := Value{tab: tab}
	if tab.inline() {
		*(*T)(unsafe.Add(unsafe.Pointer(&v.store), tab.off)) = x
	} else {
		v.store.ptr = unsafe.Pointer(newRemote(x))
	}
	return v
}

// Get returns the T held by v. It reports false, with T's zero value, when
// v holds another type. An empty Value holds a token.Empty.
func Get[T any](v *Value) (T, bool) {
	var zero T
	rt := reflect.TypeFor[T]()
	if v.tab == nil {
		return zero, rt == emptyType
	}
	if v.tab.rtype != rt {
		return zero, false
	}
	return *(*T)(v.at()), true
}

// Cast returns the T held by v without reporting mismatches. The caller
// must already know v holds a T; otherwise Cast returns T's zero value.
func Cast[T any](v *Value) T {
	if v.tab == nil || v.tab.rtype != reflect.TypeFor[T]() {
		var zero T
		return zero
	}
	return *(*T)(v.at())
}

// Ref returns a pointer to the T held by v, or nil when v holds another
// type. The pointer is valid until v is destroyed, assigned or set.
func Ref[T any](v *Value) *T {
	if v.tab == nil || v.tab.rtype != reflect.TypeFor[T]() {
		return nil
	}
	return (*T)(v.at())
}

// Set stores x in v, in place when v already holds a T.
func Set[T any](v *Value, x T) {
	if v.tab != nil && v.tab.rtype == reflect.TypeFor[T]() {
		*(*T)(v.at()) = x
		return
	}
	v.Destroy()
	*v = Of(x)
}

// at returns the address of the held value. v must not be empty.
func (v *Value) at() unsafe.Pointer {
	if v.tab.inline() {
		return unsafe.Add(unsafe.Pointer(&v.store), v.tab.off)
	}
	return v.store.ptr
}

// IsEmpty reports whether v holds nothing.
func (v *Value) IsEmpty() bool { return v.tab == nil }

// Type returns the token of the held type in the default universe, or the
// token of token.Empty.
func (v *Value) Type() token.Token {
	if v.tab == nil {
		return token.OfType(emptyType)
	}
	return token.OfType(v.tab.rtype)
}

// GoType returns the held Go type, or nil when v is empty.
func (v *Value) GoType() reflect.Type {
	if v.tab == nil {
		return nil
	}
	return v.tab.rtype
}

// IsInline reports whether the held value lives inside v.
// An empty Value owns no storage and is reported inline.
func (v *Value) IsInline() bool { return v.tab == nil || v.tab.inline() }

// Size returns the byte size of the held type.
func (v *Value) Size() uintptr {
	if v.tab == nil {
		return 0
	}
	return v.tab.size
}

// Pointer returns the address of the held value, or nil when v is empty.
// For inline values the address points into v.
func (v *Value) Pointer() unsafe.Pointer {
	if v.tab == nil {
		return nil
	}
	return v.at()
}

// Clone returns an independent copy of v.
func (v *Value) Clone() Value {
	if v.tab == nil {
		return Value{}
	}
	return Value{tab: v.tab, store: v.tab.m.clone(v.store)}
}

// Assign destroys the value held by v, then moves src's value into v.
// src is left empty. Assigning a Value to itself is a no-op.
func (v *Value) Assign(src *Value) {
	if v == src {
		return
	}
	v.Destroy()
	*v = *src
	*src = Value{}
}

// Update copies src's value over v's in place. Both must hold the same type.
func (v *Value) Update(src *Value) error {
	if !sameType(v.tab, src.tab) {
		return fmt.Errorf("%w: %s <- %s", ErrTypeMismatch, v.typeString(), src.typeString())
	}
	if v.tab == nil || v == src {
		return nil
	}
	v.store = v.tab.m.assign(v.store, src.store)
	return nil
}

// Destroy releases the held value and leaves v empty.
func (v *Value) Destroy() {
	if v.tab != nil {
		v.tab.m.destroy(v.store)
	}
	*v = Value{}
}

// Equal reports whether v and o hold equal values of the same type.
// Two empty Values are equal.
func (v *Value) Equal(o *Value) bool {
	if !sameType(v.tab, o.tab) {
		return false
	}
	if v.tab == nil {
		return true
	}
	return v.tab.m.equals(v.store, o.store)
}

// Load copies a value of v's type from src into v.
func (v *Value) Load(src unsafe.Pointer) error {
	if v.tab == nil {
		return ErrEmpty
	}
	if src == nil {
		return ErrNilPointer
	}
	v.store = v.tab.m.load(v.store, src)
	return nil
}

// Store copies v's value to dst, which must address a value of v's type.
func (v *Value) Store(dst unsafe.Pointer) error {
	if v.tab == nil {
		return ErrEmpty
	}
	if dst == nil {
		return ErrNilPointer
	}
	v.tab.m.store(v.store, dst)
	return nil
}

// Interface returns the held value as an interface, or nil when v is empty.
func (v *Value) Interface() any {
	if v.tab == nil {
		return nil
	}
	return v.tab.m.iface(v.store)
}

// String formats the held value with fmt, or "<empty>".
func (v *Value) String() string {
	if v.tab == nil {
		return "<empty>"
	}
	return fmt.Sprint(v.tab.m.iface(v.store))
}

func (v *Value) typeString() string {
	if v.tab == nil {
		return "empty"
	}
	return v.tab.rtype.String()
}
