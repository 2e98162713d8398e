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

package registry_test

import (
	"errors"
	"reflect"
	"testing"

	"dirpx.dev/rtx/registry"
)

type T1 struct{}
type T2 struct{}

func TestRegister_IdempotentAndLookup(t *testing.T) {
	reg := registry.New()

	err := reg.Register(reflect.TypeOf(T1{}), "domain.T1")
	if err != nil {
		t.Fatalf("Register(T1{}): unexpected error: %v", err)
	}
	// idempotent re-register with same name
	if err := reg.Register(reflect.TypeOf(T1{}), "domain.T1"); err != nil {
		t.Fatalf("Register(T1{}) idempotent: unexpected error: %v", err)
	}

	if name, ok := reg.Lookup(reflect.TypeOf(T1{})); !ok || name != "domain.T1" {
		t.Fatalf("Lookup(T1{}): got (%q,%v), want (domain.T1,true)", name, ok)
	}
	// lookups are exact: composites of T1 are not covered by the entry
	if name, ok := reg.Lookup(reflect.TypeOf(&T1{})); ok {
		t.Fatalf("Lookup(&T1{}): got (%q,%v), want ('',false)", name, ok)
	}

	if reg.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", reg.Count())
	}
}

func TestRegister_Conflict(t *testing.T) {
	reg := registry.New()

	if err := reg.Register(reflect.TypeOf(T1{}), "domain.T1"); err != nil {
		t.Fatalf("Register: unexpected error: %v", err)
	}
	err := reg.Register(reflect.TypeOf(T1{}), "other.Name")
	if !errors.Is(err, registry.ErrConflictingRegistration) {
		t.Fatalf("expected ErrConflictingRegistration, got: %v", err)
	}
}

func TestRegister_Errors(t *testing.T) {
	reg := registry.New()

	if err := reg.Register(nil, "x"); err != registry.ErrNilType {
		t.Fatalf("nil type: want ErrNilType, got %v", err)
	}
	if err := reg.Register(reflect.TypeOf(T1{}), ""); err != registry.ErrEmptyName {
		t.Fatalf("empty name: want ErrEmptyName, got %v", err)
	}
	for _, bad := range []string{"a<b", "a,b", "x>"} {
		if err := reg.Register(reflect.TypeOf(T1{}), bad); err != registry.ErrInvalidName {
			t.Fatalf("name %q: want ErrInvalidName, got %v", bad, err)
		}
	}
}

func TestEntriesAndReset(t *testing.T) {
	reg := registry.New()

	_ = reg.Register(reflect.TypeOf(T1{}), "domain.T1")
	_ = reg.Register(reflect.TypeOf(T2{}), "domain.T2")

	entries := reg.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries len = %d, want 2", len(entries))
	}
	if reg.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reg.Count())
	}

	reg.Reset()

	if reg.Count() != 0 {
		t.Fatalf("after Reset, Count() = %d, want 0", reg.Count())
	}
	if name, ok := reg.Lookup(reflect.TypeOf(T1{})); ok || name != "" {
		t.Fatalf("Lookup after Reset: got (%q,%v), want ('',false)", name, ok)
	}
}

func TestLookupNilAndUnknown(t *testing.T) {
	reg := registry.New()

	if name, ok := reg.Lookup(nil); ok || name != "" {
		t.Fatalf("Lookup(nil): got (%q,%v), want ('',false)", name, ok)
	}
	if name, ok := reg.Lookup(reflect.TypeOf(T1{})); ok || name != "" {
		t.Fatalf("Lookup(unknown): got (%q,%v), want ('',false)", name, ok)
	}
}
