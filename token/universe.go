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

package token

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/builder"
	"dirpx.dev/rtx/config"
	uref "dirpx.dev/rtx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is bound.
	ErrNilType = errors.New("rtx(token): nil reflect.Type provided")
	// ErrEmptyName is returned when a token name is empty.
	ErrEmptyName = errors.New("rtx(token): empty name provided")
	// ErrConflictingBinding is returned when a Go type is already bound to a
	// token of a different name, or a name is already bound to a different
	// Go type.
	ErrConflictingBinding = errors.New("rtx(token): conflicting binding")
	// ErrSyntax is returned by Named for malformed token strings.
	ErrSyntax = errors.New("rtx(token): invalid token syntax")
)

// Universe owns the token descriptors of one compilation unit.
//
// A Universe mints at most one descriptor per Go type and per structure
// (name plus parameters), so identity comparison is sound for tokens of the
// same Universe. Universes are safe for concurrent use.
type Universe struct {
	id  uuid.UUID
	cfg apis.Config
	res apis.Resolver

	// byType maps reflect.Type to *descriptor.
	byType sync.Map

	// mu guards byKey and serializes minting.
	mu    sync.Mutex
	byKey map[string]*descriptor
}

// NewUniverse creates an empty Universe that names Go types with res.
// A nil res selects the default Namer -> Registry -> Reflect chain over an
// empty registry.
func NewUniverse(cfg apis.Config, res apis.Resolver) *Universe {
	if res == nil {
		b := builder.New()
		res = b.BuildResolver(cfg, b.BuildRegistry(cfg, nil), nil)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = config.DefaultMaxDepth
	}
	u := &Universe{
		id:    uuid.New(),
		cfg:   cfg,
		res:   res,
		byKey: make(map[string]*descriptor),
	}
	slog.Debug("rtx(token): universe created", "universe", u.id, "short_names", cfg.ShortNames, "max_depth", cfg.MaxDepth)
	return u
}

// ID returns the random identifier of u, used in diagnostics.
func (u *Universe) ID() uuid.UUID { return u.id }

// Config returns the configuration u names types with.
func (u *Universe) Config() apis.Config { return u.cfg }

// For returns the token of T in u.
func For[T any](u *Universe) Token {
	return u.Of(reflect.TypeFor[T]())
}

// Of returns the token of t, minting it on first use.
// A nil t yields the zero Token.
func (u *Universe) Of(t reflect.Type) Token {
	if t == nil {
		return Token{}
	}
	if d, ok := u.byType.Load(t); ok {
		return Token{d.(*descriptor)}
	}
	return Token{u.mint(t, 0)}
}

// Minted returns the token of t if u has already minted one.
func (u *Universe) Minted(t reflect.Type) (Token, bool) {
	if t == nil {
		return Token{}, false
	}
	if d, ok := u.byType.Load(t); ok {
		return Token{d.(*descriptor)}, true
	}
	return Token{}, false
}

// Define returns the token with the given name and parameters, creating a
// declared-only token if none exists. Declared tokens have no Go type until
// a Go type with the same structure is minted or bound.
// An empty name yields the zero Token.
func (u *Universe) Define(name string, params ...Token) Token {
	if name == "" {
		return Token{}
	}
	key := keyOf(name, params)

	u.mu.Lock()
	defer u.mu.Unlock()

	if d, ok := u.byKey[key]; ok {
		return Token{d}
	}
	d := u.newDescriptor(name, params, key)
	u.byKey[key] = d
	slog.Debug("rtx(token): declared", "universe", u.id, "token", Token{d}.String())
	return Token{d}
}

// Bind mints the token of t under an explicit name.
// It is idempotent. It fails when t is already minted under a different
// name, or when name is already bound to another Go type.
func (u *Universe) Bind(name string, t reflect.Type) (Token, error) {
	if t == nil {
		return Token{}, ErrNilType
	}
	if name == "" {
		return Token{}, ErrEmptyName
	}
	key := keyOf(name, nil)

	u.mu.Lock()
	defer u.mu.Unlock()

	if v, ok := u.byType.Load(t); ok {
		d := v.(*descriptor)
		if d.key != key {
			return Token{}, fmt.Errorf("%w: %v is already %q", ErrConflictingBinding, t, Token{d}.String())
		}
		return Token{d}, nil
	}
	d, ok := u.byKey[key]
	switch {
	case !ok:
		d = u.newDescriptor(name, nil, key)
		u.byKey[key] = d
	case d.gt.Load() != nil:
		return Token{}, fmt.Errorf("%w: %q is already bound to %v", ErrConflictingBinding, name, d.gt.Load().t)
	}
	d.gt.Store(&goType{t: t, size: t.Size()})
	u.byType.Store(t, d)
	slog.Debug("rtx(token): bound", "universe", u.id, "token", name, "type", t.String())
	return Token{d}, nil
}

// Tokens returns a snapshot of every structurally distinct token of u,
// sorted by rendered form.
func (u *Universe) Tokens() []Token {
	u.mu.Lock()
	out := make([]Token, 0, len(u.byKey))
	for _, d := range u.byKey {
		out = append(out, Token{d})
	}
	u.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Count returns the number of structurally distinct tokens of u.
func (u *Universe) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.byKey)
}

// mint names t and creates or adopts its descriptor.
func (u *Universe) mint(t reflect.Type, depth int) *descriptor {
	name := u.res.ResolveType(t, u.cfg)

	var params []Token
	if name == "" {
		ctor, ps, err := uref.Decompose(t)
		if err != nil || depth >= u.cfg.MaxDepth {
			name = t.String()
		} else {
			name = ctor
			params = make([]Token, len(ps))
			for i, p := range ps {
				params[i] = u.ofDepth(p, depth+1)
			}
		}
	}
	key := keyOf(name, params)

	u.mu.Lock()
	defer u.mu.Unlock()

	// Another goroutine may have minted t meanwhile.
	if v, ok := u.byType.Load(t); ok {
		return v.(*descriptor)
	}

	d, ok := u.byKey[key]
	switch {
	case !ok:
		d = u.newDescriptor(name, params, key)
		u.byKey[key] = d
	case d.gt.Load() != nil:
		// Two Go types share a name (for example function-local types or
		// ShortNames collisions). Later types get an ordinal suffix
		// ("pkg.local#2") so they stay distinct under both comparisons.
		existing := d.gt.Load().t
		base := name
		for n := 2; ; n++ {
			name = base + "#" + strconv.Itoa(n)
			key = keyOf(name, params)
			if _, taken := u.byKey[key]; !taken {
				break
			}
		}
		slog.Debug("rtx(token): name collision", "universe", u.id, "token", name,
			"type", t.String(), "existing", existing.String())
		d = u.newDescriptor(name, params, key)
		u.byKey[key] = d
	}
	d.gt.Store(&goType{t: t, size: t.Size()})
	u.byType.Store(t, d)
	return d
}

// ofDepth is Of for parameter types at a given decomposition depth.
func (u *Universe) ofDepth(t reflect.Type, depth int) Token {
	if d, ok := u.byType.Load(t); ok {
		return Token{d.(*descriptor)}
	}
	return Token{u.mint(t, depth)}
}

func (u *Universe) newDescriptor(name string, params []Token, key string) *descriptor {
	var ps []Token
	if len(params) > 0 {
		ps = make([]Token, len(params))
		copy(ps, params)
	}
	return &descriptor{name: name, params: ps, key: key, uni: u}
}

// defaultUniverse backs Of and OfType.
var defaultUniverse atomic.Pointer[Universe]

// Default returns the process default Universe, creating it on first use.
func Default() *Universe {
	if u := defaultUniverse.Load(); u != nil {
		return u
	}
	u := NewUniverse(config.DefaultConfig(), nil)
	if defaultUniverse.CompareAndSwap(nil, u) {
		return u
	}
	return defaultUniverse.Load()
}

// SetDefault replaces the process default Universe. Tokens minted by the
// previous default stay valid but are distinct under identity comparison.
// A nil u makes the next Default call create a fresh Universe.
func SetDefault(u *Universe) {
	defaultUniverse.Store(u)
}

// Of returns the token of T in the default Universe.
func Of[T any]() Token {
	return Default().Of(reflect.TypeFor[T]())
}

// OfType returns the token of t in the default Universe.
func OfType(t reflect.Type) Token {
	return Default().Of(t)
}
