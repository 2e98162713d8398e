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

package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
package: base
classes:
  - name: Object
    annotations: [root]
    fields: [{name: id, type: int64, offset: 0}]
`

const geoYAML = `
package: geo
imports: [base]
classes:
  - name: shapes.Circle
    super: base.Object
    fields: [{name: radius, type: float64}]
    methods:
      - name: Scale
        args: [{name: f, type: float64}]
        returns: "ptr<geo.shapes.Circle>"
enums:
  - {name: Color, values: [Red, Green]}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_Dump(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", baseYAML)
	geo := writeFile(t, dir, "geo.yaml", geoYAML)

	var out, logs bytes.Buffer
	require.NoError(t, run(&out, &logs, []string{"-log-level", "info", base, geo}))

	want := `namespace base
  class Object [root]
    field id int64 @0
namespace geo
  enum Color {Red, Green}
namespace geo.shapes
  class Circle : base.Object
    field radius float64
    method Scale(float64) ptr<geo.shapes.Circle>
`
	assert.Equal(t, want, out.String())
	assert.Contains(t, logs.String(), `"msg":"manifest loaded"`, "logs default to JSON off a terminal")
}

func TestRun_Tokens(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", baseYAML)
	geo := writeFile(t, dir, "geo.yaml", geoYAML)

	var out, logs bytes.Buffer
	require.NoError(t, run(&out, &logs, []string{"-tokens", "-log-format", "text", base, geo}))
	assert.Contains(t, out.String(), "tokens\n")
	assert.Contains(t, out.String(), "  ptr<geo.shapes.Circle>\n")
	assert.Contains(t, out.String(), "  base.Object\n")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	geo := writeFile(t, dir, "geo.yaml", geoYAML)
	bad := writeFile(t, dir, "bad.yaml", "package: x\nclasses: [{name: A, super: Nope}]\n")

	cases := []struct {
		name string
		args []string
		code int
	}{
		{"no manifest", nil, 2},
		{"unknown flag", []string{"-nope"}, 2},
		{"bad level", []string{"-log-level", "loud", geo}, 2},
		{"bad format", []string{"-log-format", "xml", geo}, 2},
		{"missing file", []string{filepath.Join(dir, "missing.yaml")}, 0},
		{"invalid manifest", []string{bad}, 0},
		{"unknown import", []string{geo}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out, logs bytes.Buffer
			err := run(&out, &logs, tc.args)
			require.Error(t, err)
			var exitErr *exitError
			if tc.code == 0 {
				assert.False(t, errors.As(err, &exitErr), "plain errors exit with 1")
				return
			}
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tc.code, exitErr.code)
		})
	}
}

func TestRun_Help(t *testing.T) {
	var out, logs bytes.Buffer
	err := run(&out, &logs, []string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, logs.String(), "-log-format")
}

func TestRun_EnvConfig(t *testing.T) {
	t.Setenv("RTX_COMPARE", "bogus")
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", baseYAML)

	var out, logs bytes.Buffer
	assert.Error(t, run(&out, &logs, []string{base}))
}
