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
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dirpx.dev/rtx/manifest"
	"dirpx.dev/rtx/token"
)

var (
	// ErrNilPackage is returned for nil manifests, packages or providers.
	ErrNilPackage = errors.New("rtx(catalog): nil package")
	// ErrDuplicate is returned when a qualified name is declared twice.
	ErrDuplicate = errors.New("rtx(catalog): duplicate declaration")
	// ErrUnknownClass is returned for names that are not declared classes.
	ErrUnknownClass = errors.New("rtx(catalog): unknown class")
	// ErrUnknownField is returned for names that are not fields of a class.
	ErrUnknownField = errors.New("rtx(catalog): unknown field")
	// ErrUnknownMethod is returned for names that are not methods of a class.
	ErrUnknownMethod = errors.New("rtx(catalog): unknown method")
	// ErrCycle is returned when super classes form a cycle.
	ErrCycle = errors.New("rtx(catalog): super class cycle")
	// ErrUnbound is returned when a class or method has no Go binding.
	ErrUnbound = errors.New("rtx(catalog): not bound")
	// ErrBindMismatch is returned when a Go binding disagrees with the declaration.
	ErrBindMismatch = errors.New("rtx(catalog): binding does not match declaration")
	// ErrTargetType is returned when an instance is not of the class's Go type.
	ErrTargetType = errors.New("rtx(catalog): wrong instance type")
	// ErrArgCount is returned when Invoke gets the wrong number of arguments.
	ErrArgCount = errors.New("rtx(catalog): wrong argument count")
	// ErrArgType is returned when a value does not have the declared type.
	ErrArgType = errors.New("rtx(catalog): wrong argument type")
)

// Catalog is the registry of declared namespaces, classes and enums.
//
// Entities live in arenas owned by the Catalog and refer to each other by
// typed indices. A Catalog is safe for concurrent use.
type Catalog struct {
	id  uuid.UUID
	log *slog.Logger
	uni *token.Universe

	mu         sync.RWMutex
	namespaces []Namespace
	classes    []Class
	fields     []Field
	methods    []Method
	enums      []Enum
	nsByName   map[string]NamespaceID
	clsByName  map[string]ClassID
	enumByName map[string]EnumID
	packages   []string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithUniverse mints class and member tokens in u.
func WithUniverse(u *token.Universe) Option {
	return func(c *Catalog) {
		if u != nil {
			c.uni = u
		}
	}
}

// WithLogger sets the logger for registration events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty Catalog. Tokens are minted in the default universe
// unless WithUniverse is given.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		id:         uuid.New(),
		log:        slog.Default(),
		nsByName:   make(map[string]NamespaceID),
		clsByName:  make(map[string]ClassID),
		enumByName: make(map[string]EnumID),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.uni == nil {
		c.uni = token.Default()
	}
	c.log = c.log.With("catalog", c.id.String())
	c.log.Debug("rtx(catalog): created", "universe", c.uni.ID().String())
	return c
}

// ID returns the random identifier of c.
func (c *Catalog) ID() uuid.UUID { return c.id }

// Universe returns the universe c mints tokens in.
func (c *Catalog) Universe() *token.Universe { return c.uni }

// Packages returns the names of declared packages in declaration order.
func (c *Catalog) Packages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.packages...)
}

// Declare adds every namespace, class and enum of p. Super classes must be
// declared in p or in an earlier package. Declare is all-or-nothing.
func (c *Catalog) Declare(p *manifest.Package) error {
	if p == nil {
		return ErrNilPackage
	}
	if err := p.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check names and supers before touching the arenas.
	local := make(map[string]bool, len(p.Classes))
	for _, mc := range p.Classes {
		q := p.Qualified(mc.Name)
		if c.declared(q) {
			return fmt.Errorf("%w: %s", ErrDuplicate, q)
		}
		local[q] = true
	}
	for _, me := range p.Enums {
		if q := p.Qualified(me.Name); c.declared(q) {
			return fmt.Errorf("%w: %s", ErrDuplicate, q)
		}
	}
	for _, mc := range p.Classes {
		if mc.Super == "" {
			continue
		}
		if _, ok := c.clsByName[mc.Super]; !ok && !local[p.Qualified(mc.Super)] {
			return fmt.Errorf("%w: %s: super class %s", ErrUnknownClass, p.Qualified(mc.Name), mc.Super)
		}
	}
	if err := superCycle(p); err != nil {
		return err
	}

	// Types are parsed up front so a syntax error leaves c unchanged.
	types := make(map[string]token.Token)
	parse := func(s string) error {
		if _, ok := types[s]; ok || s == "" {
			return nil
		}
		tok, err := c.uni.Named(s)
		if err != nil {
			return err
		}
		types[s] = tok
		return nil
	}
	for _, mc := range p.Classes {
		for _, f := range mc.Fields {
			if err := parse(f.Type); err != nil {
				return err
			}
		}
		for _, m := range mc.Methods {
			for _, a := range m.Args {
				if err := parse(a.Type); err != nil {
					return err
				}
			}
			if err := parse(m.Returns); err != nil {
				return err
			}
		}
	}

	for _, mc := range p.Classes {
		c.addClass(p, mc, types)
	}
	for _, mc := range p.Classes {
		if mc.Super == "" {
			continue
		}
		id := c.clsByName[p.Qualified(mc.Name)]
		if sup, ok := c.clsByName[p.Qualified(mc.Super)]; ok {
			c.classes[id].Super = sup
		} else {
			c.classes[id].Super = c.clsByName[mc.Super]
		}
	}
	for _, me := range p.Enums {
		q := p.Qualified(me.Name)
		ns := c.namespace(parentOf(q))
		id := EnumID(len(c.enums))
		c.enums = append(c.enums, Enum{
			ID:            id,
			Name:          lastOf(q),
			QualifiedName: q,
			Namespace:     ns,
			Values:        append([]string(nil), me.Values...),
		})
		c.enumByName[q] = id
		c.namespaces[ns].Enums = append(c.namespaces[ns].Enums, id)
	}
	c.packages = append(c.packages, p.Package)

	c.log.Debug("rtx(catalog): declared", "package", p.Package, "classes", len(p.Classes), "enums", len(p.Enums))
	return nil
}

// declared reports whether q names a class or enum. Callers hold mu.
func (c *Catalog) declared(q string) bool {
	_, cls := c.clsByName[q]
	_, enm := c.enumByName[q]
	return cls || enm
}

// addClass appends the class mc of p and its members. Callers hold mu.
func (c *Catalog) addClass(p *manifest.Package, mc manifest.Class, types map[string]token.Token) {
	q := p.Qualified(mc.Name)
	ns := c.namespace(parentOf(q))
	id := ClassID(len(c.classes))
	cls := Class{
		ID:            id,
		Name:          lastOf(q),
		QualifiedName: q,
		Package:       p.Package,
		Namespace:     ns,
		Super:         NoClass,
		Annotations:   append([]string(nil), mc.Annotations...),
		Token:         c.uni.Define(q),
	}
	for _, mf := range mc.Fields {
		fid := FieldID(len(c.fields))
		f := Field{ID: fid, Class: id, Name: mf.Name, Type: types[mf.Type]}
		if mf.Offset != nil {
			f.Offset, f.HasOffset = *mf.Offset, true
		}
		c.fields = append(c.fields, f)
		cls.Fields = append(cls.Fields, fid)
	}
	for _, mm := range mc.Methods {
		mid := MethodID(len(c.methods))
		m := Method{
			ID:        mid,
			Class:     id,
			Name:      mm.Name,
			Signature: mm.Signature(),
			Args:      append([]manifest.Arg(nil), mm.Args...),
			Result:    types[mm.Returns],
		}
		for _, a := range mm.Args {
			m.ArgTypes = append(m.ArgTypes, types[a.Type])
		}
		c.methods = append(c.methods, m)
		cls.Methods = append(cls.Methods, mid)
	}
	c.classes = append(c.classes, cls)
	c.clsByName[q] = id
	c.namespaces[ns].Classes = append(c.namespaces[ns].Classes, id)
}

// namespace returns the namespace named name, creating it and its parents.
// Callers hold mu.
func (c *Catalog) namespace(name string) NamespaceID {
	if id, ok := c.nsByName[name]; ok {
		return id
	}
	parent := NoNamespace
	if p := parentOf(name); p != "" {
		parent = c.namespace(p)
	}
	id := NamespaceID(len(c.namespaces))
	c.namespaces = append(c.namespaces, Namespace{ID: id, Name: name, Parent: parent})
	c.nsByName[name] = id
	if parent != NoNamespace {
		c.namespaces[parent].Children = append(c.namespaces[parent].Children, id)
	}
	return id
}

// superCycle detects cycles among the supers declared in p.
func superCycle(p *manifest.Package) error {
	super := make(map[string]string, len(p.Classes))
	for _, mc := range p.Classes {
		if mc.Super != "" {
			super[p.Qualified(mc.Name)] = p.Qualified(mc.Super)
		}
	}
	for start := range super {
		seen := map[string]bool{start: true}
		for cur := super[start]; cur != ""; cur = super[cur] {
			if seen[cur] {
				return fmt.Errorf("%w: %s", ErrCycle, start)
			}
			seen[cur] = true
		}
	}
	return nil
}

func parentOf(q string) string {
	if i := strings.LastIndexByte(q, '.'); i >= 0 {
		return q[:i]
	}
	return ""
}

func lastOf(q string) string {
	return q[strings.LastIndexByte(q, '.')+1:]
}

// Install runs provider, declares its manifest and binds its classes.
func (c *Catalog) Install(provider Provider) error {
	if provider == nil {
		return ErrNilPackage
	}
	pkg, err := provider(c.uni)
	if err != nil {
		return fmt.Errorf("rtx(catalog): provider: %w", err)
	}
	if pkg == nil || pkg.Manifest == nil {
		return ErrNilPackage
	}
	if err := c.Declare(pkg.Manifest); err != nil {
		return err
	}
	for _, b := range pkg.Classes {
		if err := c.Bind(b); err != nil {
			return err
		}
	}
	c.log.Debug("rtx(catalog): installed", "package", pkg.Manifest.Package, "bindings", len(pkg.Classes))
	return nil
}

// Lookup returns the class with qualified name q.
func (c *Catalog) Lookup(q string) (ClassID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.clsByName[q]
	return id, ok
}

// LookupEnum returns the enum with qualified name q.
func (c *Catalog) LookupEnum(q string) (EnumID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.enumByName[q]
	return id, ok
}

// Class returns the class with the given id.
func (c *Catalog) Class(id ClassID) (Class, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.classes) {
		return Class{}, false
	}
	return c.classes[id], true
}

// Field returns the field with the given id.
func (c *Catalog) Field(id FieldID) (Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.fields) {
		return Field{}, false
	}
	return c.fields[id], true
}

// Method returns the method with the given id.
func (c *Catalog) Method(id MethodID) (Method, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.methods) {
		return Method{}, false
	}
	return c.methods[id], true
}

// Enum returns the enum with the given id.
func (c *Catalog) Enum(id EnumID) (Enum, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.enums) {
		return Enum{}, false
	}
	return c.enums[id], true
}

// Namespace returns the namespace named name.
func (c *Catalog) Namespace(name string) (Namespace, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.nsByName[name]
	if !ok {
		return Namespace{}, false
	}
	return c.namespaces[id], true
}

// Namespaces returns every namespace sorted by name.
func (c *Catalog) Namespaces() []Namespace {
	c.mu.RLock()
	out := append([]Namespace(nil), c.namespaces...)
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Supers returns the chain of super classes of id, nearest first.
func (c *Catalog) Supers(id ClassID) []ClassID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.classes) {
		return nil
	}
	return c.supers(id)
}

func (c *Catalog) supers(id ClassID) []ClassID {
	var out []ClassID
	for cur := c.classes[id].Super; cur != NoClass; cur = c.classes[cur].Super {
		out = append(out, cur)
	}
	return out
}

// Fields returns all fields of id, inherited fields first.
func (c *Catalog) Fields(id ClassID) []Field {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.classes) {
		return nil
	}
	// supers is nearest first; walk it backwards so the root comes first.
	chain := append([]ClassID{id}, c.supers(id)...)
	var out []Field
	for i := len(chain) - 1; i >= 0; i-- {
		for _, fid := range c.classes[chain[i]].Fields {
			out = append(out, c.fields[fid])
		}
	}
	return out
}

// Methods returns the own methods of id.
func (c *Catalog) Methods(id ClassID) []Method {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.classes) {
		return nil
	}
	out := make([]Method, 0, len(c.classes[id].Methods))
	for _, mid := range c.classes[id].Methods {
		out = append(out, c.methods[mid])
	}
	return out
}

// FindField returns the field name of id or of its nearest super class.
func (c *Catalog) FindField(id ClassID, name string) (Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fid, ok := c.findField(id, name)
	if !ok {
		return Field{}, false
	}
	return c.fields[fid], true
}

func (c *Catalog) findField(id ClassID, name string) (FieldID, bool) {
	if id < 0 || int(id) >= len(c.classes) {
		return 0, false
	}
	for _, cid := range append([]ClassID{id}, c.supers(id)...) {
		for _, fid := range c.classes[cid].Fields {
			if c.fields[fid].Name == name {
				return fid, true
			}
		}
	}
	return 0, false
}

// FindMethod returns the method name of id or of its nearest super class.
func (c *Catalog) FindMethod(id ClassID, name string) (Method, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mid, ok := c.findMethod(id, name)
	if !ok {
		return Method{}, false
	}
	return c.methods[mid], true
}

func (c *Catalog) findMethod(id ClassID, name string) (MethodID, bool) {
	if id < 0 || int(id) >= len(c.classes) {
		return 0, false
	}
	for _, cid := range append([]ClassID{id}, c.supers(id)...) {
		for _, mid := range c.classes[cid].Methods {
			if c.methods[mid].Name == name {
				return mid, true
			}
		}
	}
	return 0, false
}
