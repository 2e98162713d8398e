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

// Package rtx provides runtime type tokens, type-erased values and generic
// invocation of bound operations for code that does not know its types at
// compile time.
//
// The work is split across packages:
//
//   - token: a Token identifies a type at run time. Tokens are minted by a
//     token.Universe, which names Go types through a resolver chain and
//     deduplicates them so that one type has one token. Tokens may also be
//     declared by name ("map<string,slice<int>>") before any Go type backs
//     them.
//
//   - value: a Value holds any value together with a dispatch table for
//     its type. Small scalar and pointer-shaped values live inline; other
//     values are stored in a separate allocation owned by the Value.
//
//   - call: a Descriptor describes one bound operation: its slots (result
//     first, then arguments), their sizes and tokens, and a thunk that
//     decodes arguments from a Stack and invokes a typed Go function.
//
//   - manifest and catalog: a declarative package description is loaded
//     into a Catalog of namespaces, classes, fields, methods and enums,
//     and Go implementations are bound to it.
//
// # Design
//
// This package holds the process default snapshot: the Config, the
// Registry of explicit type names, the Resolver naming chain, the Builder
// that constructs both, and the Universe that mints tokens with them.
// Readers load the snapshot atomically and never lock:
//
//	tok := rtx.TokenOf[MyRequest]()
//	tok = rtx.TokenFor(reflect.TypeOf(v))
//
// Writers take a short build mutex, assemble a new snapshot and publish it.
// Publishing installs the snapshot's Universe as token.Default and applies
// Config.Compare as the process-wide token comparison mode.
//
// The resolver tries, in order:
//
//  1. apis.Namer: a type whose zero value has TypeName() names itself.
//  2. the Registry: names registered with RegisterType.
//  3. reflection: "pkgpath.Type", or "base.Type" with Config.ShortNames.
//
// Unnamed composites (pointers, slices, arrays, maps, channels) are not
// named by the chain; the Universe decomposes them into a constructor and
// parameter tokens, so []*T becomes "slice<ptr<T>>".
//
// # Reconfiguration
//
// SetConfig, SetBuilder, SetRegistry and SetResolver publish a new snapshot
// with a new Universe. Tokens minted earlier stay valid, but under identity
// comparison they differ from tokens of the new Universe. Reconfigure at
// start-up, or select apis.CompareStructural.
//
// # Pinning
//
// SetRegistry and SetResolver pin the component they install: later
// rebuilds keep it until UnpinRegistry or UnpinResolver. SetAll is the hard
// reset used by tests; components passed to it explicitly are pinned,
// the others are rebuilt.
//
// # Scope
//
// Everything is in-memory and synchronous. Tokens, tables and descriptors
// are immutable once built and safe for concurrent use. Values and stacks
// are not synchronized.
package rtx
