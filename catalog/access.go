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
	"unsafe"

	"dirpx.dev/rtx/call"
	"dirpx.dev/rtx/value"
)

// NewInstance creates an instance of the bound class q: a pointer to its Go
// struct type.
func (c *Catalog) NewInstance(q string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cls, err := c.bound(q)
	if err != nil {
		return nil, err
	}
	if cls.newFn != nil {
		return cls.newFn(), nil
	}
	return reflect.New(cls.goType).Interface(), nil
}

// GetField returns a copy of field name of instance, an instance of class q.
func (c *Catalog) GetField(instance any, q, name string) (value.Value, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	base, f, off, err := c.fieldAt(instance, q, name)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromReflect(reflect.NewAt(f, unsafe.Add(base, off)).Elem()), nil
}

// SetField stores v into field name of instance, an instance of class q.
func (c *Catalog) SetField(instance any, q, name string, v *value.Value) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	base, f, off, err := c.fieldAt(instance, q, name)
	if err != nil {
		return err
	}
	if v.GoType() != f {
		return fmt.Errorf("%w: %s.%s is %v, got %v", ErrArgType, q, name, f, v.GoType())
	}
	return v.Store(unsafe.Add(base, off))
}

// fieldAt resolves the address parts of a field access. Callers hold mu.
func (c *Catalog) fieldAt(instance any, q, name string) (unsafe.Pointer, reflect.Type, uintptr, error) {
	cls, err := c.bound(q)
	if err != nil {
		return nil, nil, 0, err
	}
	base, err := instancePointer(instance, cls.goType)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", q, err)
	}
	fid, ok := c.findField(cls.ID, name)
	if !ok {
		return nil, nil, 0, fmt.Errorf("%w: %s.%s", ErrUnknownField, q, name)
	}
	slot, ok := cls.layout[fid]
	if !ok {
		return nil, nil, 0, fmt.Errorf("%w: %s.%s has no Go field", ErrUnbound, q, name)
	}
	return base, slot.typ, slot.off, nil
}

// Invoke calls method name of class q, or of its nearest super class, on
// instance. Arguments are encoded onto a fresh call stack following the
// descriptor layout. The result is empty for methods without one.
func (c *Catalog) Invoke(instance any, q, name string, args ...value.Value) (value.Value, error) {
	c.mu.RLock()
	cls, err := c.bound(q)
	if err != nil {
		c.mu.RUnlock()
		return value.Value{}, err
	}
	mid, ok := c.findMethod(cls.ID, name)
	if !ok {
		c.mu.RUnlock()
		return value.Value{}, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, q, name)
	}
	m := c.methods[mid]
	goType := cls.goType
	c.mu.RUnlock()

	d := m.Descriptor
	if d == nil {
		return value.Value{}, fmt.Errorf("%w: %s.%s", ErrUnbound, q, name)
	}
	if _, err := instancePointer(instance, goType); err != nil {
		return value.Value{}, fmt.Errorf("%s: %w", q, err)
	}
	target, err := receiver(instance, d.Receiver())
	if err != nil {
		return value.Value{}, fmt.Errorf("%s.%s: %w", q, name, err)
	}
	if len(args) != d.Arity() {
		return value.Value{}, fmt.Errorf("%w: %s.%s: got %d, want %d", ErrArgCount, q, name, len(args), d.Arity())
	}

	s, offsets := d.NewStack()
	for i := range args {
		want := d.Type(i + 1).Type()
		if args[i].GoType() != want {
			return value.Value{}, fmt.Errorf("%w: %s.%s: argument %d is %v, want %v", ErrArgType, q, name, i, args[i].GoType(), want)
		}
		if err := call.PutValue(s, offsets[i+1], &args[i]); err != nil {
			return value.Value{}, err
		}
	}
	if err := d.Execute(target, s, offsets); err != nil {
		return value.Value{}, err
	}
	if !d.HasResult() {
		return value.Value{}, nil
	}
	return d.Result(s, offsets)
}

// bound returns the class q, which must have a Go binding. Callers hold mu.
func (c *Catalog) bound(q string) (*Class, error) {
	id, ok := c.clsByName[q]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, q)
	}
	cls := &c.classes[id]
	if cls.goType == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, q)
	}
	return cls, nil
}

// instancePointer checks that instance is a non-nil *t and returns it.
func instancePointer(instance any, t reflect.Type) (unsafe.Pointer, error) {
	rv := reflect.ValueOf(instance)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(t) {
		return nil, fmt.Errorf("%w: got %T, want *%v", ErrTargetType, instance, t)
	}
	if rv.IsNil() {
		return nil, fmt.Errorf("%w: nil *%v", ErrTargetType, t)
	}
	return rv.UnsafePointer(), nil
}

// receiver adapts instance to the receiver type want of an inherited
// method: a pointer to the embedded super class struct.
func receiver(instance any, want reflect.Type) (any, error) {
	rv := reflect.ValueOf(instance)
	for rv.Type() != want {
		elem := rv.Elem()
		if elem.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: %v does not embed %v", ErrTargetType, rv.Type(), want.Elem())
		}
		next := reflect.Value{}
		for i := 0; i < elem.NumField(); i++ {
			sf := elem.Type().Field(i)
			if sf.Anonymous && sf.IsExported() && sf.Type.Kind() == reflect.Struct && hasEmbedded(sf.Type, want.Elem()) {
				next = elem.Field(i).Addr()
				break
			}
		}
		if !next.IsValid() {
			return nil, fmt.Errorf("%w: %v does not embed %v", ErrTargetType, rv.Type(), want.Elem())
		}
		rv = next
	}
	return rv.Interface(), nil
}

// hasEmbedded reports whether t is target or embeds it through a chain of
// embedded struct fields.
func hasEmbedded(t, target reflect.Type) bool {
	if t == target {
		return true
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && hasEmbedded(sf.Type, target) {
			return true
		}
	}
	return false
}
