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
	"sync/atomic"
	"unsafe"
)

// model is the per-type behavior of a table. Storage travels by value so
// that calls through the interface do not force Values onto the heap.
type model interface {
	// clone returns a copy of the value held in s.
	clone(s storage) storage
	// assign copies src's value over dst's and returns the updated dst.
	assign(dst, src storage) storage
	// destroy releases whatever s owns.
	destroy(s storage)
	// equals compares the values held in a and b.
	equals(a, b storage) bool
	// load copies a value from src into s and returns the updated s.
	load(s storage, src unsafe.Pointer) storage
	// store copies the value held in s to dst.
	store(s storage, dst unsafe.Pointer)
	// iface boxes the value held in s.
	iface(s storage) any
}

// inlineModel keeps a T inside the storage words at off.
type inlineModel[T any] struct {
	off uintptr
	ops ops[T]
}

func (m inlineModel[T]) get(s storage) T {
	return *(*T)(unsafe.Add(unsafe.Pointer(&s), m.off))
}

func (m inlineModel[T]) put(x T) (s storage) {
	*(*T)(unsafe.Add(unsafe.Pointer(&s), m.off)) = x
	return s
}

func (m inlineModel[T]) clone(s storage) storage {
	return m.put(m.ops.clone(m.get(s)))
}

func (m inlineModel[T]) assign(_, src storage) storage {
	return m.put(m.get(src))
}

func (inlineModel[T]) destroy(storage) {}

func (m inlineModel[T]) equals(a, b storage) bool {
	return m.ops.equal(m.get(a), m.get(b))
}

func (m inlineModel[T]) load(_ storage, src unsafe.Pointer) storage {
	return m.put(*(*T)(src))
}

func (m inlineModel[T]) store(s storage, dst unsafe.Pointer) {
	*(*T)(dst) = m.get(s)
}

func (m inlineModel[T]) iface(s storage) any {
	return m.get(s)
}

// remoteModel keeps a T in a heap block owned by the Value.
type remoteModel[T any] struct {
	ops ops[T]
}

func (remoteModel[T]) at(s storage) *T {
	return (*T)(s.ptr)
}

func (m remoteModel[T]) clone(s storage) storage {
	return storage{ptr: unsafe.Pointer(newRemote(m.ops.clone(*m.at(s))))}
}

func (m remoteModel[T]) assign(dst, src storage) storage {
	*m.at(dst) = *m.at(src)
	return dst
}

func (m remoteModel[T]) destroy(s storage) {
	if s.ptr == nil {
		return
	}
	var zero T
	*m.at(s) = zero
	frees.Add(1)
}

func (m remoteModel[T]) equals(a, b storage) bool {
	return m.ops.equal(*m.at(a), *m.at(b))
}

func (m remoteModel[T]) load(s storage, src unsafe.Pointer) storage {
	*m.at(s) = *(*T)(src)
	return s
}

func (m remoteModel[T]) store(s storage, dst unsafe.Pointer) {
	*(*T)(dst) = *m.at(s)
}

func (m remoteModel[T]) iface(s storage) any {
	return *m.at(s)
}

// newRemote allocates the heap block of a remote value.
func newRemote[T any](x T) *T {
	p := new(T)
	*p = x
	allocs.Add(1)
	return p
}

var allocs, frees atomic.Uint64

// Stats counts remote storage blocks over the life of the process.
type Stats struct {
	// Allocs is the number of blocks allocated by construction or cloning.
	Allocs uint64
	// Frees is the number of blocks released by Destroy, Assign or Set.
	Frees uint64
}

// Live returns the number of blocks not yet released.
func (s Stats) Live() int64 { return int64(s.Allocs) - int64(s.Frees) }

// Sub returns the difference s - o, for measuring a span of work.
func (s Stats) Sub(o Stats) Stats {
	return Stats{Allocs: s.Allocs - o.Allocs, Frees: s.Frees - o.Frees}
}

// RemoteStats returns a snapshot of the remote storage counters.
func RemoteStats() Stats {
	return Stats{Allocs: allocs.Load(), Frees: frees.Load()}
}
