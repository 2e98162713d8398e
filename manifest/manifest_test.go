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

package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtx/manifest"
)

func TestLoad(t *testing.T) {
	p, err := manifest.Load(filepath.Join("testdata", "geo.yaml"))
	require.NoError(t, err)

	zero := uintptr(0)
	want := &manifest.Package{
		Package: "geo",
		Version: "1.0",
		Imports: []string{"base"},
		Classes: []manifest.Class{
			{
				Name:        "Shape",
				Super:       "base.Object",
				Annotations: []string{"reflect"},
				Fields:      []manifest.Field{{Name: "id", Type: "int", Offset: &zero}},
				Methods:     []manifest.Method{{Name: "Area", Returns: "float64"}},
			},
			{
				Name:  "shapes.Circle",
				Super: "Shape",
				Fields: []manifest.Field{
					{Name: "radius", Type: "float64"},
					{Name: "tags", Type: "slice<string>"},
				},
				Methods: []manifest.Method{
					{Name: "Scale", Args: []manifest.Arg{{Name: "factor", Type: "float64", Dir: manifest.In}}},
					{Name: "Bounds", Args: []manifest.Arg{{Name: "out", Type: "ptr<geo.Rect>", Dir: manifest.Out}}},
				},
			},
		},
		Enums: []manifest.Enum{{Name: "Color", Values: []string{"Red", "Green", "Blue"}}},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "geo.shapes.Circle", p.Qualified(p.Classes[1].Name))
	assert.Equal(t, "Bounds(ptr<geo.Rect>)", p.Classes[1].Methods[1].Signature())
	assert.Equal(t, "Area() float64", p.Classes[0].Methods[0].Signature())
}

func TestLoad_Missing(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		invalid bool
		msg     string
	}{
		{"empty", "", true, "empty document"},
		{"unknown key", "package: a\nbogus: 1\n", false, "bogus"},
		{"no package", "classes: [{name: A}]\n", true, "package name"},
		{"duplicate class", "package: a\nclasses: [{name: A}, {name: A}]\n", true, "declared twice"},
		{"unknown super", "package: a\nclasses: [{name: A, super: B}]\n", true, "unknown super"},
		{"self super", "package: a\nclasses: [{name: A, super: A}]\n", true, "itself"},
		{"bad type", "package: a\nclasses: [{name: A, fields: [{name: f, type: 'map<int'}]}]\n", true, "invalid type"},
		{"bad dir", "package: a\nclasses: [{name: A, methods: [{name: m, args: [{name: x, type: int, dir: up}]}]}]\n", true, "direction"},
		{"too many args", "package: a\nclasses: [{name: A, methods: [{name: m, args: [" +
			strings.TrimSuffix(strings.Repeat("{name: x, type: int},", 7), ",") + "]}]}]\n", true, "at most 6"},
		{"dup field", "package: a\nclasses: [{name: A, fields: [{name: f, type: int}, {name: f, type: int}]}]\n", true, "field"},
		{"empty enum", "package: a\nenums: [{name: E, values: []}]\n", true, "no values"},
		{"bad name", "package: a\nclasses: [{name: 'a..b'}]\n", true, "invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manifest.Decode(strings.NewReader(tc.doc))
			require.Error(t, err)
			if tc.invalid {
				assert.ErrorIs(t, err, manifest.ErrInvalid)
			}
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	p := &manifest.Package{
		Package: "a",
		Classes: []manifest.Class{{Name: "A", Super: "Z"}},
		Enums:   []manifest.Enum{{Name: "E"}},
	}
	err := p.Validate()
	require.ErrorIs(t, err, manifest.ErrInvalid)
	assert.Contains(t, err.Error(), "unknown super")
	assert.Contains(t, err.Error(), "no values")
}

func TestParse_ValidTypes(t *testing.T) {
	for _, typ := range []string{"int", "map<string, int>", "map<string,slice<ptr<a.B>>>", "array[4]<int>"} {
		_, err := manifest.Parse([]byte("package: a\nclasses: [{name: A, fields: [{name: f, type: '" + typ + "'}]}]\n"))
		assert.NoError(t, err, typ)
	}
	for _, typ := range []string{"<int>", "a<b>c", "a<b><c>", "a<,b>", "a<b,>"} {
		_, err := manifest.Parse([]byte("package: a\nclasses: [{name: A, fields: [{name: f, type: '" + typ + "'}]}]\n"))
		assert.ErrorIs(t, err, manifest.ErrInvalid, typ)
	}
}
