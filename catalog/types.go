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

package catalog

import (
	"reflect"

	"dirpx.dev/rtx/call"
	"dirpx.dev/rtx/manifest"
	"dirpx.dev/rtx/token"
)

// Typed indices into the catalog arenas. Negative values mean "none".
type (
	NamespaceID int32
	ClassID     int32
	FieldID     int32
	MethodID    int32
	EnumID      int32
)

// None values.
const (
	NoNamespace NamespaceID = -1
	NoClass     ClassID     = -1
)

// Namespace is one level of qualified names. The root namespace of a
// package is named after the package.
type Namespace struct {
	ID       NamespaceID
	Name     string
	Parent   NamespaceID
	Children []NamespaceID
	Classes  []ClassID
	Enums    []EnumID
}

// Class is a declared class, optionally bound to a Go type.
type Class struct {
	ID            ClassID
	Name          string
	QualifiedName string
	Package       string
	Namespace     NamespaceID
	Super         ClassID
	Annotations   []string
	// Token identifies the class in the catalog universe.
	Token token.Token
	// Fields and Methods are the class's own members in declaration order.
	Fields  []FieldID
	Methods []MethodID

	goType reflect.Type
	newFn  func() any
	layout map[FieldID]fieldSlot
}

// fieldSlot locates a field within a bound class's Go type.
type fieldSlot struct {
	off uintptr
	typ reflect.Type
}

// GoType returns the bound Go struct type, or nil.
func (c Class) GoType() reflect.Type { return c.goType }

// Bound reports whether a Go type is bound to c.
func (c Class) Bound() bool { return c.goType != nil }

// Field is a declared data member.
type Field struct {
	ID    FieldID
	Class ClassID
	Name  string
	Type  token.Token
	// Offset is the byte offset within the declaring class; valid when
	// HasOffset is true.
	Offset    uintptr
	HasOffset bool
}

// Method is a declared operation.
type Method struct {
	ID        MethodID
	Class     ClassID
	Name      string
	Signature string
	Args      []manifest.Arg
	ArgTypes  []token.Token
	Result    token.Token
	// Descriptor is nil until a Go implementation is bound.
	Descriptor *call.Descriptor
}

// Enum is a declared enumeration.
type Enum struct {
	ID            EnumID
	Name          string
	QualifiedName string
	Namespace     NamespaceID
	Values        []string
}

// Index returns the position of value in e, or -1.
func (e Enum) Index(value string) int {
	for i, v := range e.Values {
		if v == value {
			return i
		}
	}
	return -1
}

// ClassBinding binds a declared class to a Go struct type.
type ClassBinding struct {
	// Name is the qualified class name.
	Name string
	// Type is the Go struct type. Instances are handled as pointers to it.
	Type reflect.Type
	// New creates an instance, a pointer to Type. Defaults to reflect.New.
	New func() any
	// Methods implement declared methods, matched by descriptor name.
	Methods []*call.Descriptor
}

// BindClass is a ClassBinding for T.
func BindClass[T any](name string, methods ...*call.Descriptor) ClassBinding {
	return ClassBinding{
		Name:    name,
		Type:    reflect.TypeFor[T](),
		New:     func() any { return new(T) },
		Methods: methods,
	}
}

// Package is what a plugin provides: a manifest and the bindings of its
// classes, in dependency order.
type Package struct {
	Manifest *manifest.Package
	Classes  []ClassBinding
}

// Provider is a plugin entry point. It receives the universe the catalog
// mints tokens in and returns the package synchronously.
type Provider func(u *token.Universe) (*Package, error)
