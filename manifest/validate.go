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

package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks p for semantic errors and reports all of them.
func (p *Package) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !validName(p.Package) {
		add("package name %q is invalid", p.Package)
	}

	declared := make(map[string]bool, len(p.Classes)+len(p.Enums))
	for i, c := range p.Classes {
		if !validName(c.Name) {
			add("classes[%d]: name %q is invalid", i, c.Name)
			continue
		}
		if declared[c.Name] {
			add("classes[%d]: %s declared twice", i, c.Name)
		}
		declared[c.Name] = true
	}
	for i, e := range p.Enums {
		if !validName(e.Name) {
			add("enums[%d]: name %q is invalid", i, e.Name)
			continue
		}
		if declared[e.Name] {
			add("enums[%d]: %s declared twice", i, e.Name)
		}
		declared[e.Name] = true
	}

	for _, c := range p.Classes {
		if c.Super != "" {
			switch {
			case c.Super == c.Name:
				add("class %s: super class is itself", c.Name)
			case !declared[c.Super] && !p.imported(c.Super):
				add("class %s: unknown super class %q", c.Name, c.Super)
			}
		}
		seen := make(map[string]bool, len(c.Fields))
		for _, f := range c.Fields {
			if f.Name == "" || seen[f.Name] {
				add("class %s: field %q is empty or duplicated", c.Name, f.Name)
			}
			seen[f.Name] = true
			if !validType(f.Type) {
				add("class %s: field %s: invalid type %q", c.Name, f.Name, f.Type)
			}
		}
		seen = make(map[string]bool, len(c.Methods))
		for _, m := range c.Methods {
			if m.Name == "" || seen[m.Name] {
				add("class %s: method %q is empty or duplicated", c.Name, m.Name)
			}
			seen[m.Name] = true
			if len(m.Args) > MaxArgs {
				add("class %s: method %s: %d arguments, at most %d supported", c.Name, m.Name, len(m.Args), MaxArgs)
			}
			for _, a := range m.Args {
				if !validType(a.Type) {
					add("class %s: method %s: arg %s: invalid type %q", c.Name, m.Name, a.Name, a.Type)
				}
				switch a.Dir {
				case In, Out, InOut:
				default:
					add("class %s: method %s: arg %s: invalid direction %q", c.Name, m.Name, a.Name, a.Dir)
				}
			}
			if m.Returns != "" && !validType(m.Returns) {
				add("class %s: method %s: invalid result type %q", c.Name, m.Name, m.Returns)
			}
		}
	}

	for _, e := range p.Enums {
		if len(e.Values) == 0 {
			add("enum %s: no values", e.Name)
		}
		seen := make(map[string]bool, len(e.Values))
		for _, v := range e.Values {
			if v == "" || seen[v] {
				add("enum %s: value %q is empty or duplicated", e.Name, v)
			}
			seen[v] = true
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// MaxArgs is the largest method arity a call descriptor supports.
const MaxArgs = 6

// imported reports whether name is qualified by one of p's imports.
func (p *Package) imported(name string) bool {
	for _, imp := range p.Imports {
		if strings.HasPrefix(name, imp+".") {
			return true
		}
	}
	return false
}

// validName accepts dot-separated, non-empty segments without token syntax.
func validName(name string) bool {
	if name == "" || strings.ContainsAny(name, "<>, \t") {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// validType checks the shape of a token string: names, balanced angle
// brackets, and non-empty parameters.
func validType(s string) bool {
	depth := 0
	name, closed := false, false
	for _, r := range s {
		switch r {
		case '<':
			if !name || closed {
				return false
			}
			depth++
			name = false
		case '>', ',':
			if !name || depth == 0 {
				return false
			}
			if r == '>' {
				depth--
				closed = true
			} else {
				name, closed = false, false
			}
		case ' ':
		default:
			if closed {
				return false
			}
			name = true
		}
	}
	return depth == 0 && name
}
