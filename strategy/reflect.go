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
	"path"
	"reflect"
	"sync"

	"dirpx.dev/rtx/apis"
)

// NewReflectStrategy creates an apis.Strategy that derives token names from
// the Go type itself.
func NewReflectStrategy() apis.Strategy {
	return reflectStrategy{}
}

// reflectStrategy is the universal fallback for named types and opaque
// unnamed types:
//   - builtin types keep their Go name ("int", "string");
//   - named types become "import/path.Type" ("base.Type" with ShortNames),
//     generic instantiations keep their type arguments;
//   - anonymous struct/func/interface types use their Go spelling.
//
// Unnamed ptr/slice/array/map/chan types are not handled: the caller
// decomposes them into a constructor and parameter tokens.
type reflectStrategy struct{}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectStrategy)(nil)

// cacheKey ensures memoization respects all config knobs that affect naming.
type cacheKey struct {
	t     reflect.Type
	short bool
}

// typeNameCache caches resolved type names by (type, config knobs).
var typeNameCache sync.Map // key: cacheKey, val: string

// TryResolveType computes the token name for t.
func (reflectStrategy) TryResolveType(t reflect.Type, cfg apis.Config) (string, bool) {
	if t == nil {
		return "", false
	}
	if t.Name() == "" {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
			return "", false
		}
	}
	return byType(t, cfg), true
}

// byType resolves the token name for t with memoization.
func byType(t reflect.Type, cfg apis.Config) string {
	key := cacheKey{t: t, short: cfg.ShortNames}
	if v, ok := typeNameCache.Load(key); ok {
		return v.(string)
	}

	var name string
	switch {
	case t.Name() == "":
		name = t.String()
	case t.PkgPath() == "":
		name = t.Name()
	case cfg.ShortNames:
		name = path.Base(t.PkgPath()) + "." + t.Name()
	default:
		name = t.PkgPath() + "." + t.Name()
	}

	typeNameCache.Store(key, name)
	return name
}
