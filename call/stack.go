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
	"reflect"
	"unsafe"

	"dirpx.dev/rtx/token"
	uref "dirpx.dev/rtx/utils/reflect"
	"dirpx.dev/rtx/value"
)

const maxAlign = unsafe.Alignof(uint64(0))

// Stack is the argument buffer of one invocation: raw bytes addressed by
// offset, plus a journal of typed writes used for layout validation.
//
// Values containing Go pointers are kept reachable by the Stack until the
// next Allocate, since the garbage collector does not scan the raw bytes.
// A Stack is not safe for concurrent use.
type Stack struct {
	words  []uint64
	buf    []byte
	keep   []any
	writes []write
}

// write is one journal entry.
type write struct {
	off, size uintptr
	tok       token.Token
}

// NewStack returns a zeroed Stack of size bytes.
func NewStack(size uintptr) *Stack {
	s := &Stack{}
	s.Allocate(size)
	return s
}

// Allocate resets s to size zeroed bytes, reusing the buffer when it is
// large enough. The journal and keep-alive list are cleared.
func (s *Stack) Allocate(size uintptr) {
	n := int((size + 7) / 8)
	if cap(s.words) >= n {
		s.words = s.words[:n]
		clear(s.words)
	} else {
		s.words = make([]uint64, n)
	}
	if n == 0 {
		s.buf = nil
	} else {
		s.buf = unsafe.Slice((*byte)(unsafe.Pointer(&s.words[0])), n*8)[:size]
	}
	clear(s.keep)
	s.keep = s.keep[:0]
	s.writes = s.writes[:0]
}

// Len returns the usable size of s in bytes.
func (s *Stack) Len() uintptr { return uintptr(len(s.buf)) }

// At returns the address of the byte at off, or nil when off is outside s.
func (s *Stack) At(off uintptr) unsafe.Pointer {
	if off >= uintptr(len(s.buf)) {
		return nil
	}
	return unsafe.Pointer(&s.buf[off])
}

// Mark records that size bytes of type tok were written at off through At.
// Earlier entries overlapping the range are dropped.
func (s *Stack) Mark(off, size uintptr, tok token.Token) {
	kept := s.writes[:0]
	for _, w := range s.writes {
		if w.off < off+size && off < w.off+w.size || w.off == off {
			continue
		}
		kept = append(kept, w)
	}
	s.writes = append(kept, write{off: off, size: size, tok: tok})
}

// Write copies size bytes from src to off and journals them as tok.
// keep, when non-nil, is retained until the next Allocate; it must hold
// every Go pointer contained in the copied bytes.
func (s *Stack) Write(off uintptr, tok token.Token, src unsafe.Pointer, size, align uintptr, keep any) error {
	if err := s.check(off, size, align); err != nil {
		return err
	}
	if size > 0 {
		copy(s.buf[off:off+size], unsafe.Slice((*byte)(src), size))
	}
	if keep != nil {
		s.keep = append(s.keep, keep)
	}
	s.Mark(off, size, tok)
	return nil
}

// check verifies that [off, off+size) lies in s and off honors align.
func (s *Stack) check(off, size, align uintptr) error {
	if off+size < off || off+size > uintptr(len(s.buf)) {
		return fmt.Errorf("%w: [%d,%d) in %d bytes", ErrOutOfBounds, off, off+size, len(s.buf))
	}
	if align > maxAlign {
		align = maxAlign
	}
	if align > 1 && off%align != 0 {
		return fmt.Errorf("%w: offset %d, alignment %d", ErrMisaligned, off, align)
	}
	return nil
}

// written returns the journal entry starting at off.
func (s *Stack) written(off uintptr) (write, bool) {
	for i := len(s.writes) - 1; i >= 0; i-- {
		if s.writes[i].off == off {
			return s.writes[i], true
		}
	}
	return write{}, false
}

// Put writes x at off.
func Put[T any](s *Stack, off uintptr, x T) error {
	rt := reflect.TypeFor[T]()
	var keep any
	if uref.HasPointers(rt) {
		keep = x
	}
	return s.Write(off, token.OfType(rt), unsafe.Pointer(&x), rt.Size(), uintptr(rt.Align()), keep)
}

// Load reads a T at off.
func Load[T any](s *Stack, off uintptr) (T, error) {
	var zero T
	rt := reflect.TypeFor[T]()
	if err := s.check(off, rt.Size(), uintptr(rt.Align())); err != nil {
		return zero, err
	}
	if rt.Size() == 0 {
		return zero, nil
	}
	return *(*T)(unsafe.Pointer(&s.buf[off])), nil
}

// PutValue writes the value held by v at off.
func PutValue(s *Stack, off uintptr, v *value.Value) error {
	if v.IsEmpty() {
		return fmt.Errorf("%w: cannot write at offset %d", value.ErrEmpty, off)
	}
	rt := v.GoType()
	var keep any
	if uref.HasPointers(rt) {
		keep = v.Interface()
	}
	return s.Write(off, v.Type(), v.Pointer(), v.Size(), uintptr(rt.Align()), keep)
}
