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

package apis

import (
	"fmt"
	"strings"
)

// Config carries read-only knobs that influence token naming, token
// comparison and argument layout validation.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Compare selects how tokens are compared process-wide.
	Compare Comparison

	// StrictLayout makes call execution verify that every argument slot was
	// written with the size and token the descriptor expects.
	// When false only bounds and alignment are verified.
	StrictLayout bool

	// ShortNames derives token names as "base.Type" (last import path
	// element) instead of the full import path. Shorter, but two packages
	// with the same base name produce colliding names.
	ShortNames bool

	// MaxDepth limits how many levels of unnamed composite types
	// (ptr/slice/array/map/chan) are decomposed into parameter tokens.
	// Deeper types become opaque tokens named by their Go spelling.
	MaxDepth int
}

// Comparison selects a token equality strategy.
type Comparison uint8

const (
	// CompareIdentity compares token descriptor addresses. It is only sound
	// when every type has exactly one descriptor, which a single Universe
	// guarantees.
	CompareIdentity Comparison = iota
	// CompareStructural compares token names and, recursively, parameters.
	// Required when tokens of the same type may be minted by independent
	// universes (for example, separately loaded packages).
	CompareStructural
)

// String returns the textual form accepted by UnmarshalText.
func (c Comparison) String() string {
	switch c {
	case CompareIdentity:
		return "identity"
	case CompareStructural:
		return "structural"
	default:
		return fmt.Sprintf("comparison(%d)", uint8(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Comparison) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so a Comparison can be
// read from environment variables and manifests.
func (c *Comparison) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "identity", "id", "":
		*c = CompareIdentity
	case "structural", "struct", "full":
		*c = CompareStructural
	default:
		return fmt.Errorf("rtx(apis): unknown comparison %q", string(text))
	}
	return nil
}
