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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid wraps every validation problem of a manifest.
	ErrInvalid = errors.New("rtx(manifest): invalid manifest")
)

// Package is the declarative description of one package of reflected
// types, as produced by an annotation scanner.
type Package struct {
	// Package is the root namespace, e.g. "example".
	Package string `yaml:"package"`

	// Version is informational.
	Version string `yaml:"version,omitempty"`

	// Imports lists packages whose classes may be used as super classes.
	Imports []string `yaml:"imports,omitempty"`

	// Classes are the reflected classes. Names are qualified relative to
	// Package with '.' separating nested namespaces ("geo.Point").
	Classes []Class `yaml:"classes,omitempty"`

	// Enums are the reflected enumerations.
	Enums []Enum `yaml:"enums,omitempty"`
}

// Class describes one reflected class.
type Class struct {
	// Name is the qualified class name.
	Name string `yaml:"name"`

	// Super is the qualified name of the super class, if any. Names of
	// imported packages are written "<import>.<name>".
	Super string `yaml:"super,omitempty"`

	// Annotations are free-form markers attached by the scanner.
	Annotations []string `yaml:"annotations,omitempty"`

	// Fields are the reflected data members in declaration order.
	Fields []Field `yaml:"fields,omitempty"`

	// Methods are the reflected operations.
	Methods []Method `yaml:"methods,omitempty"`
}

// Field describes one data member.
type Field struct {
	// Name is the member name.
	Name string `yaml:"name"`

	// Type is a token string such as "int" or "slice<string>".
	Type string `yaml:"type"`

	// Offset is the byte offset within the class, when the scanner knows it.
	// Bound Go types are checked against it.
	Offset *uintptr `yaml:"offset,omitempty"`
}

// Direction is the data flow of a method argument.
type Direction string

// Argument directions.
const (
	In    Direction = "in"
	Out   Direction = "out"
	InOut Direction = "inout"
)

// Arg describes one method argument.
type Arg struct {
	Name string    `yaml:"name"`
	Type string    `yaml:"type"`
	Dir  Direction `yaml:"dir,omitempty"`
}

// Method describes one operation.
type Method struct {
	// Name is the operation name.
	Name string `yaml:"name"`

	// Args are the ordered arguments.
	Args []Arg `yaml:"args,omitempty"`

	// Returns is the token string of the result, empty for none.
	Returns string `yaml:"returns,omitempty"`
}

// Signature renders m like a call descriptor signature: "Add(int,int) int".
func (m Method) Signature() string {
	types := make([]string, len(m.Args))
	for i, a := range m.Args {
		types[i] = a.Type
	}
	sig := m.Name + "(" + strings.Join(types, ",") + ")"
	if m.Returns != "" {
		sig += " " + m.Returns
	}
	return sig
}

// Enum describes one enumeration.
type Enum struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// Decode reads and validates a manifest. Unknown keys are rejected.
func Decode(r io.Reader) (*Package, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Package
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("rtx(manifest): decode: %w", err)
	}
	p.setDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Parse is Decode over bytes.
func Parse(data []byte) (*Package, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads and validates the manifest at path.
func Load(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rtx(manifest): reading %s: %w", path, err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// setDefaults fills optional fields.
func (p *Package) setDefaults() {
	for i := range p.Classes {
		for j := range p.Classes[i].Methods {
			args := p.Classes[i].Methods[j].Args
			for k := range args {
				if args[k].Dir == "" {
					args[k].Dir = In
				}
			}
		}
	}
}

// Qualified returns name prefixed with the package namespace.
func (p *Package) Qualified(name string) string {
	return p.Package + "." + name
}
