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

package token

import (
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"

	"dirpx.dev/rtx/apis"
)

// Token identifies one static type within a process. Tokens are small
// handles to immutable descriptors and are safe to copy and compare.
// The zero Token identifies no type.
type Token struct {
	d *descriptor
}

// descriptor is the shared, immutable part of a Token. Only the Go binding
// may be installed after publication, once, when a declared name is later
// claimed by a Go type.
type descriptor struct {
	name   string
	params []Token
	// key is an unambiguous encoding of name and params; structurally equal
	// descriptors have equal keys.
	key string
	uni *Universe
	gt  atomic.Pointer[goType]
}

// goType binds a descriptor to a Go type.
type goType struct {
	t    reflect.Type
	size uintptr
}

// Empty is the type of an empty value container.
type Empty struct{}

// TypeName implements apis.Namer.
func (Empty) TypeName() string { return "empty" }

// comparison holds the process-wide apis.Comparison.
var comparison atomic.Uint32

// SetComparison selects how Token.Equal compares tokens for the whole process.
func SetComparison(c apis.Comparison) {
	comparison.Store(uint32(c))
}

// Comparison returns the process-wide comparison mode.
func Comparison() apis.Comparison {
	return apis.Comparison(comparison.Load())
}

// Equal reports whether t and o identify the same type.
//
// Under apis.CompareIdentity only the descriptor address is compared.
// Under apis.CompareStructural names and parameters are compared recursively,
// so tokens minted by different universes for the same type are equal.
func (t Token) Equal(o Token) bool {
	if t.d == o.d {
		return true
	}
	if t.d == nil || o.d == nil {
		return false
	}
	if Comparison() != apis.CompareStructural {
		return false
	}
	return t.d.key == o.d.key
}

// IsZero reports whether t is the zero Token.
func (t Token) IsZero() bool { return t.d == nil }

// Name returns the display name without parameters ("map" for map<string,int>).
func (t Token) Name() string {
	if t.d == nil {
		return ""
	}
	return t.d.name
}

// Params returns a copy of the ordered parameter tokens.
func (t Token) Params() []Token {
	if t.d == nil || len(t.d.params) == 0 {
		return nil
	}
	out := make([]Token, len(t.d.params))
	copy(out, t.d.params)
	return out
}

// Type returns the Go type bound to t, or nil for declared-only tokens.
func (t Token) Type() reflect.Type {
	if t.d == nil {
		return nil
	}
	if g := t.d.gt.Load(); g != nil {
		return g.t
	}
	return nil
}

// Size returns the byte size of the bound Go type, or 0.
func (t Token) Size() uintptr {
	if t.d == nil {
		return 0
	}
	if g := t.d.gt.Load(); g != nil {
		return g.size
	}
	return 0
}

// Universe returns the Universe that minted t.
func (t Token) Universe() *Universe {
	if t.d == nil {
		return nil
	}
	return t.d.uni
}

// String renders t with its parameters, e.g. "map<string,int>".
func (t Token) String() string {
	if t.d == nil {
		return "<nil>"
	}
	var b strings.Builder
	t.render(&b)
	return b.String()
}

func (t Token) render(b *strings.Builder) {
	b.WriteString(t.d.name)
	if len(t.d.params) == 0 {
		return
	}
	b.WriteByte('<')
	for i, p := range t.d.params {
		if i > 0 {
			b.WriteByte(',')
		}
		if p.d == nil {
			b.WriteString("<nil>")
			continue
		}
		p.render(b)
	}
	b.WriteByte('>')
}

// keyOf encodes name and params with length prefixes so that distinct
// structures never share a key, whatever characters names contain.
func keyOf(name string, params []Token) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(name)))
	b.WriteByte(':')
	b.WriteString(name)
	if len(params) > 0 {
		b.WriteByte('(')
		for _, p := range params {
			k := ""
			if p.d != nil {
				k = p.d.key
			}
			b.WriteString(strconv.Itoa(len(k)))
			b.WriteByte(':')
			b.WriteString(k)
		}
		b.WriteByte(')')
	}
	return b.String()
}
