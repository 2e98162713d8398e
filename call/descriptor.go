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

package call

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"unsafe"

	"dirpx.dev/rtx/config"
	"dirpx.dev/rtx/token"
	"dirpx.dev/rtx/value"
)

// Slot describes one argument slot. Slot 0 holds the result.
type Slot struct {
	// Size is the byte size of the slot; 0 for an absent result.
	Size uintptr
	// Align is the required offset alignment.
	Align uintptr
	// Type is the token of the slot type.
	Type token.Token
}

// Descriptor is the immutable description of one bound operation: its
// slots and a thunk specialized to the exact receiver and argument types.
// Descriptors are safe for concurrent use.
type Descriptor struct {
	name      string
	signature string
	recv      reflect.Type
	slots     []Slot
	strict    bool

	exec   func(target any, s *Stack, offsets []uintptr) error
	result func(s *Stack, off uintptr) value.Value
}

// Name returns the operation name.
func (d *Descriptor) Name() string { return d.name }

// Signature returns the rendered signature, e.g. "Add(int,int) int".
func (d *Descriptor) Signature() string { return d.signature }

// Receiver returns the Go type Execute expects as target (a pointer type).
func (d *Descriptor) Receiver() reflect.Type { return d.recv }

// Slots returns the number of slots, arity plus one.
func (d *Descriptor) Slots() int { return len(d.slots) }

// Arity returns the number of arguments.
func (d *Descriptor) Arity() int { return len(d.slots) - 1 }

// Slot returns slot i.
func (d *Descriptor) Slot(i int) Slot { return d.slots[i] }

// Size returns the size of slot i.
func (d *Descriptor) Size(i int) uintptr { return d.slots[i].Size }

// Type returns the token of slot i.
func (d *Descriptor) Type(i int) token.Token { return d.slots[i].Type }

// Strict reports whether Execute validates the write journal.
func (d *Descriptor) Strict() bool { return d.strict }

// HasResult reports whether slot 0 is materialized.
func (d *Descriptor) HasResult() bool { return d.result != nil }

// Layout returns packed, aligned offsets for every slot and the total stack
// size they need. Slot 0 comes first.
func (d *Descriptor) Layout() (offsets []uintptr, size uintptr) {
	offsets = make([]uintptr, len(d.slots))
	for i, sl := range d.slots {
		if sl.Align > 1 {
			size = (size + sl.Align - 1) &^ (sl.Align - 1)
		}
		offsets[i] = size
		size += sl.Size
	}
	return offsets, size
}

// NewStack returns a Stack sized for d's Layout.
func (d *Descriptor) NewStack() (*Stack, []uintptr) {
	offsets, size := d.Layout()
	return NewStack(size), offsets
}

// Execute invokes the bound operation on target with the arguments found in
// s at offsets, one offset per slot. A result, if any, is written to slot 0.
func (d *Descriptor) Execute(target any, s *Stack, offsets []uintptr) error {
	if target == nil {
		return ErrNilTarget
	}
	if s == nil {
		return ErrNilStack
	}
	if len(offsets) != len(d.slots) {
		return fmt.Errorf("%w: %s: got %d, want %d", ErrOffsetCount, d.name, len(offsets), len(d.slots))
	}
	for i, sl := range d.slots {
		if err := s.check(offsets[i], sl.Size, sl.Align); err != nil {
			return fmt.Errorf("%s: slot %d: %w", d.name, i, err)
		}
		if i == 0 || !d.strict {
			continue
		}
		w, ok := s.written(offsets[i])
		if !ok {
			if sl.Size == 0 {
				continue
			}
			return fmt.Errorf("%w: %s: slot %d at offset %d", ErrSlotNotWritten, d.name, i, offsets[i])
		}
		if w.size != sl.Size || !sameType(w.tok, sl.Type) {
			return fmt.Errorf("%w: %s: slot %d wants %s (%d bytes), stack has %s (%d bytes)",
				ErrLayoutMismatch, d.name, i, sl.Type, sl.Size, w.tok, w.size)
		}
	}
	return d.exec(target, s, offsets)
}

// Result returns the value in slot 0 after Execute.
func (d *Descriptor) Result(s *Stack, offsets []uintptr) (value.Value, error) {
	if d.result == nil {
		return value.Value{}, ErrNoResult
	}
	if s == nil {
		return value.Value{}, ErrNilStack
	}
	if len(offsets) == 0 {
		return value.Value{}, ErrOffsetCount
	}
	sl := d.slots[0]
	if err := s.check(offsets[0], sl.Size, sl.Align); err != nil {
		return value.Value{}, err
	}
	return d.result(s, offsets[0]), nil
}

// Execute is d.Execute.
func Execute(d *Descriptor, s *Stack, target any, offsets []uintptr) error {
	return d.Execute(target, s, offsets)
}

// sameType compares Go-backed tokens by Go type, so that tokens minted by
// different universes for one Go type match; declared tokens use Equal.
func sameType(a, b token.Token) bool {
	if ta, tb := a.Type(), b.Type(); ta != nil && tb != nil {
		return ta == tb
	}
	return a.Equal(b)
}

// Option configures a Descriptor at bind time.
type Option func(*options)

type options struct {
	strict    bool
	universe  *token.Universe
	signature string
}

// WithStrictLayout toggles journal validation in Execute.
func WithStrictLayout(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithUniverse mints slot tokens in u instead of the default universe.
func WithUniverse(u *token.Universe) Option {
	return func(o *options) { o.universe = u }
}

// WithSignature overrides the rendered signature.
func WithSignature(sig string) Option {
	return func(o *options) { o.signature = sig }
}

// slotOf describes a slot of Go type t.
func slotOf(u *token.Universe, t reflect.Type) Slot {
	return Slot{Size: t.Size(), Align: uintptr(t.Align()), Type: u.Of(t)}
}

// build assembles a Descriptor for receiver T. res is nil for operations
// without a result.
func build[T any](name string, opts []Option, res reflect.Type, args []reflect.Type,
	run func(t *T, s *Stack, offsets []uintptr) error) *Descriptor {
	o := options{strict: config.DefaultStrictLayout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	u := o.universe
	if u == nil {
		u = token.Default()
	}

	d := &Descriptor{
		name:   name,
		recv:   reflect.TypeFor[*T](),
		slots:  make([]Slot, 0, len(args)+1),
		strict: o.strict,
	}
	if res != nil {
		d.slots = append(d.slots, slotOf(u, res))
	} else {
		d.slots = append(d.slots, Slot{Align: 1, Type: u.Of(reflect.TypeFor[token.Empty]())})
	}
	for _, a := range args {
		d.slots = append(d.slots, slotOf(u, a))
	}

	d.signature = o.signature
	if d.signature == "" {
		parts := make([]string, len(args))
		for i := range args {
			parts[i] = d.slots[i+1].Type.String()
		}
		d.signature = name + "(" + strings.Join(parts, ",") + ")"
		if res != nil {
			d.signature += " " + d.slots[0].Type.String()
		}
	}

	d.exec = func(target any, s *Stack, offsets []uintptr) error {
		t, ok := target.(*T)
		if !ok {
			return fmt.Errorf("%w: %s: got %T, want %v", ErrTargetType, name, target, d.recv)
		}
		if t == nil {
			return ErrNilTarget
		}
		return run(t, s, offsets)
	}

	slog.Debug("rtx(call): bound", "name", name, "signature", d.signature, "slots", len(d.slots), "strict", d.strict)
	return d
}

// arg reads the argument of type A at off. Bounds and alignment are
// checked by Execute.
func arg[A any](s *Stack, off uintptr) A {
	var zero A
	if unsafe.Sizeof(zero) == 0 {
		return zero
	}
	return *(*A)(s.At(off))
}

// ret writes a result of type R at off and journals it.
func ret[R any](s *Stack, off uintptr, r R) error {
	if err := Put(s, off, r); err != nil {
		return fmt.Errorf("result: %w", err)
	}
	return nil
}

// resultOf reads the result of type R at off.
func resultOf[R any](s *Stack, off uintptr) value.Value {
	return value.Of(arg[R](s, off))
}
