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

package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"dirpx.dev/rtx/call"
	"dirpx.dev/rtx/token"
)

// Bind attaches a Go struct type and method implementations to a declared
// class. Declared fields are resolved to Go fields by case-insensitive name
// and must have matching types and, when declared, offsets. Descriptors must
// match declared methods by name, arity and types.
// Classes used as field types must be bound first.
func (c *Catalog) Bind(b ClassBinding) error {
	if b.Type == nil || b.Type.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s: Go type %v is not a struct", ErrBindMismatch, b.Name, b.Type)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.clsByName[b.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, b.Name)
	}
	cls := &c.classes[id]
	if cls.goType != nil && cls.goType != b.Type {
		return fmt.Errorf("%w: %s is already bound to %v", ErrBindMismatch, b.Name, cls.goType)
	}

	// Resolve every field visible from this class, own ones strictly.
	layout := make(map[FieldID]fieldSlot)
	chain := append([]ClassID{id}, c.supers(id)...)
	for depth, cid := range chain {
		for _, fid := range c.classes[cid].Fields {
			f := c.fields[fid]
			off, ft, err := fieldOffset(b.Type, f.Name)
			if err != nil {
				if depth == 0 {
					return fmt.Errorf("%s.%s: %w", b.Name, f.Name, err)
				}
				continue
			}
			if depth == 0 {
				if err := c.checkField(b.Name, f, off, ft); err != nil {
					return err
				}
			}
			layout[fid] = fieldSlot{off: off, typ: ft}
		}
	}

	descs := make(map[MethodID]*call.Descriptor, len(b.Methods))
	for _, d := range b.Methods {
		if d == nil {
			continue
		}
		mid, ok := c.ownMethod(id, d.Name())
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownMethod, b.Name, d.Name())
		}
		if err := c.checkMethod(b, c.methods[mid], d); err != nil {
			return err
		}
		descs[mid] = d
	}

	// Bind the class token last; it is the only step with outside effects.
	if _, err := c.uni.Bind(b.Name, b.Type); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBindMismatch, b.Name, err)
	}

	cls.goType = b.Type
	cls.newFn = b.New
	cls.layout = layout
	for _, fid := range cls.Fields {
		if f := &c.fields[fid]; !f.HasOffset {
			f.Offset, f.HasOffset = layout[fid].off, true
		}
	}
	for mid, d := range descs {
		c.methods[mid].Descriptor = d
	}

	c.log.Debug("rtx(catalog): bound", "class", b.Name, "type", b.Type.String(), "methods", len(descs))
	return nil
}

// checkField verifies a resolved own field against its declaration.
func (c *Catalog) checkField(class string, f Field, off uintptr, ft reflect.Type) error {
	if f.HasOffset && f.Offset != off {
		return fmt.Errorf("%w: %s.%s: declared offset %d, Go offset %d", ErrBindMismatch, class, f.Name, f.Offset, off)
	}
	if got := c.uni.Of(ft); !sameToken(got, f.Type) {
		return fmt.Errorf("%w: %s.%s: declared %s, Go type %s", ErrBindMismatch, class, f.Name, f.Type, got)
	}
	return nil
}

// checkMethod verifies a descriptor against its declaration.
func (c *Catalog) checkMethod(b ClassBinding, m Method, d *call.Descriptor) error {
	if d.Receiver() != reflect.PointerTo(b.Type) {
		return fmt.Errorf("%w: %s.%s: receiver %v, want *%v", ErrBindMismatch, b.Name, m.Name, d.Receiver(), b.Type)
	}
	if d.Arity() != len(m.ArgTypes) {
		return fmt.Errorf("%w: %s.%s: %d arguments, declared %d", ErrBindMismatch, b.Name, m.Name, d.Arity(), len(m.ArgTypes))
	}
	for i, want := range m.ArgTypes {
		if !sameToken(d.Type(i+1), want) {
			return fmt.Errorf("%w: %s.%s: argument %d is %s, declared %s", ErrBindMismatch, b.Name, m.Name, i, d.Type(i+1), want)
		}
	}
	switch {
	case m.Result.IsZero() && d.HasResult():
		return fmt.Errorf("%w: %s.%s: declared without result", ErrBindMismatch, b.Name, m.Name)
	case !m.Result.IsZero() && !d.HasResult():
		return fmt.Errorf("%w: %s.%s: declared result %s", ErrBindMismatch, b.Name, m.Name, m.Result)
	case !m.Result.IsZero() && !sameToken(d.Type(0), m.Result):
		return fmt.Errorf("%w: %s.%s: result is %s, declared %s", ErrBindMismatch, b.Name, m.Name, d.Type(0), m.Result)
	}
	return nil
}

// ownMethod finds a method declared on id itself. Callers hold mu.
func (c *Catalog) ownMethod(id ClassID, name string) (MethodID, bool) {
	for _, mid := range c.classes[id].Methods {
		if c.methods[mid].Name == name {
			return mid, true
		}
	}
	return 0, false
}

// sameToken compares tokens that may come from different universes.
func sameToken(a, b token.Token) bool {
	return a.Equal(b) || a.String() == b.String()
}

// fieldOffset finds the field of t named name, ignoring case, and returns
// its offset from the start of t. Promoted fields of embedded structs are
// found; fields behind embedded pointers are not.
func fieldOffset(t reflect.Type, name string) (uintptr, reflect.Type, error) {
	sf, ok := t.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	if !ok {
		return 0, nil, fmt.Errorf("%w: no Go field %q in %v", ErrUnknownField, name, t)
	}
	var off uintptr
	cur := t
	for _, i := range sf.Index {
		if cur.Kind() != reflect.Struct {
			return 0, nil, fmt.Errorf("%w: field %q of %v is behind a pointer", ErrUnknownField, name, t)
		}
		f := cur.Field(i)
		off += f.Offset
		cur = f.Type
	}
	return off, sf.Type, nil
}
