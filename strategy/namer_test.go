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

package strategy_test

import (
	"reflect"
	"testing"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/strategy"
)

type namedType struct{}

func (namedType) TypeName() string { return "custom.Name" }

type ptrNamed struct{ n int }

func (p *ptrNamed) TypeName() string { return "ptr.Named" }

type panicNamed struct{ p *int }

func (v panicNamed) TypeName() string { return string(rune(*v.p)) }

type blankNamed struct{}

func (blankNamed) TypeName() string { return "" }

func TestNamerStrategy_TryResolveType(t *testing.T) {
	s := strategy.NewNamerStrategy()
	conf := apis.Config{}

	cases := []struct {
		name   string
		typ    reflect.Type
		want   string
		wantOK bool
	}{
		{"value receiver", reflect.TypeFor[namedType](), "custom.Name", true},
		{"pointer receiver", reflect.TypeFor[ptrNamed](), "ptr.Named", true},
		{"pointer to namer", reflect.TypeFor[*namedType](), "", false},
		{"pointer to pointer receiver", reflect.TypeFor[*ptrNamed](), "", false},
		{"not a namer", reflect.TypeFor[struct{}](), "", false},
		{"panicking namer", reflect.TypeFor[panicNamed](), "", false},
		{"blank name", reflect.TypeFor[blankNamed](), "", false},
		{"interface", reflect.TypeFor[apis.Namer](), "", false},
		{"nil", nil, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := s.TryResolveType(tc.typ, conf)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("TryResolveType: got (%q,%v), want (%q,%v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

var _ apis.Namer = namedType{}
var _ apis.Namer = (*ptrNamed)(nil)
