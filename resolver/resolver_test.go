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

package resolver_test

import (
	"reflect"
	"testing"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/resolver"
)

// fixed is a strategy that handles exactly one type.
type fixed struct {
	t    reflect.Type
	name string
}

func (f fixed) TryResolveType(t reflect.Type, _ apis.Config) (string, bool) {
	if t == f.t {
		return f.name, true
	}
	return "", false
}

func TestChain_FirstHandlerWins(t *testing.T) {
	it := reflect.TypeFor[int]()
	st := reflect.TypeFor[string]()

	r := resolver.New(nil, fixed{it, "first"}, fixed{it, "second"}, fixed{st, "str"})

	if got := r.ResolveType(it, apis.Config{}); got != "first" {
		t.Fatalf("got %q, want first", got)
	}
	if got := r.ResolveType(st, apis.Config{}); got != "str" {
		t.Fatalf("got %q, want str", got)
	}
	if got := r.ResolveType(reflect.TypeFor[bool](), apis.Config{}); got != "" {
		t.Fatalf("unhandled type: got %q, want empty", got)
	}
}

func TestChain_Empty(t *testing.T) {
	if got := resolver.New().ResolveType(reflect.TypeFor[int](), apis.Config{}); got != "" {
		t.Fatalf("empty chain: got %q", got)
	}
}
