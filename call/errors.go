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

import "errors"

var (
	// ErrOffsetCount is returned when the number of offsets differs from the
	// descriptor's slot count.
	ErrOffsetCount = errors.New("rtx(call): offset count does not match slot count")
	// ErrOutOfBounds is returned when a slot does not fit in the stack.
	ErrOutOfBounds = errors.New("rtx(call): slot out of stack bounds")
	// ErrMisaligned is returned when a slot offset violates its type's alignment.
	ErrMisaligned = errors.New("rtx(call): misaligned slot offset")
	// ErrSlotNotWritten is returned in strict mode when an argument slot was
	// never written.
	ErrSlotNotWritten = errors.New("rtx(call): argument slot not written")
	// ErrLayoutMismatch is returned in strict mode when an argument slot was
	// written with another size or type.
	ErrLayoutMismatch = errors.New("rtx(call): argument layout mismatch")
	// ErrTargetType is returned when the target is not a pointer to the
	// descriptor's receiver type.
	ErrTargetType = errors.New("rtx(call): wrong target type")
	// ErrNilTarget is returned for a nil target.
	ErrNilTarget = errors.New("rtx(call): nil target")
	// ErrNilStack is returned for a nil stack.
	ErrNilStack = errors.New("rtx(call): nil stack")
	// ErrNilFunc is returned when binding a nil function.
	ErrNilFunc = errors.New("rtx(call): nil function")
	// ErrNoResult is returned by Result for descriptors without a result.
	ErrNoResult = errors.New("rtx(call): descriptor has no result")
)
