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

package strategy

import (
	"reflect"

	"dirpx.dev/rtx/apis"
)

// namerType is the reflect.Type of apis.Namer.
var namerType = reflect.TypeFor[apis.Namer]()

// NewNamerStrategy creates an apis.Strategy that lets types implementing
// apis.Namer name themselves.
func NewNamerStrategy() apis.Strategy {
	return &namerStrategy{}
}

// namerStrategy is the first step of the chain: if t (or *t) implements
// apis.Namer, TypeName() on its zero value wins.
type namerStrategy struct{}

// Ensure namerStrategy implements apis.Strategy.
var _ apis.Strategy = (*namerStrategy)(nil)

// TryResolveType asks the zero value of t for its name.
// Interface types are never handled: their zero value is nil. Pointer types
// are never handled either: *T inherits TypeName from T and must still be
// named ptr<T>.
func (*namerStrategy) TryResolveType(t reflect.Type, _ apis.Config) (string, bool) {
	if t == nil || t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return "", false
	}
	var n apis.Namer
	switch {
	case t.Implements(namerType):
		n, _ = reflect.Zero(t).Interface().(apis.Namer)
	case reflect.PointerTo(t).Implements(namerType):
		n, _ = reflect.New(t).Interface().(apis.Namer)
	}
	if n == nil {
		return "", false
	}
	// A nil pointer receiver may panic; such types are left to other strategies.
	name, ok := safeTypeName(n)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// safeTypeName calls n.TypeName and reports false if it panicked.
func safeTypeName(n apis.Namer) (name string, ok bool) {
	defer func() {
		if recover() != nil {
			name, ok = "", false
		}
	}()
	return n.TypeName(), true
}
