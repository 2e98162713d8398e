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

package rtx

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/builder"
	"dirpx.dev/rtx/config"
	"dirpx.dev/rtx/token"
)

// init publishes the default snapshot.
func init() {
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.reg = b.BuildRegistry(s.cfg, nil)
	s.res = b.BuildResolver(s.cfg, s.reg, nil)
	s.bld = b
	publish(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("rtx: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("rtx: builder returned nil resolver")
	// ErrConflict is returned by RegisterType when the type or the name is
	// already taken.
	ErrConflict = errors.New("rtx: conflicting registration")
)

// TokenOf returns the token of T in the current default Universe.
func TokenOf[T any]() token.Token {
	return token.For[T](st.Load().uni)
}

// TokenFor returns the token of t in the current default Universe.
func TokenFor(t reflect.Type) token.Token {
	return st.Load().uni.Of(t)
}

// Universe returns the default Universe of the current snapshot.
func Universe() *token.Universe {
	return st.Load().uni
}

// RegisterType names t explicitly in the global registry and binds the name
// in the current Universe.
//
// Token names are immutable, so registering a type that was already minted
// under another name fails, as does reusing a name of another type.
func RegisterType(t reflect.Type, name string) (token.Token, error) {
	if t == nil {
		return token.Token{}, token.ErrNilType
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	s := st.Load()
	if tok, ok := s.uni.Minted(t); ok && tok.String() != name {
		return token.Token{}, fmt.Errorf("%w: %v is already %q", ErrConflict, t, tok.String())
	}
	for _, e := range s.reg.Entries() {
		if e.Name == name && e.Type != t {
			return token.Token{}, fmt.Errorf("%w: %q is already %v", ErrConflict, name, e.Type)
		}
	}
	if err := s.reg.Register(t, name); err != nil {
		return token.Token{}, err
	}
	return s.uni.Bind(name, t)
}

// SetAll explicitly sets all global components.
//
// Nil arguments leave the corresponding component unchanged; registry and
// resolver that are not given are rebuilt by the builder. Components given
// explicitly are pinned.
func SetAll(cfg *apis.Config, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	nreg, npreg := reg, reg != nil
	if nreg == nil {
		nreg = nbld.BuildRegistry(ncfg, old.reg)
	}
	nres, npres := res, res != nil
	if nres == nil {
		nres = nbld.BuildResolver(ncfg, nreg, old.res)
	}

	publish(&state{cfg: ncfg, reg: nreg, res: nres, bld: nbld, preg: npreg, pres: npres})
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg and rebuilds the registry
// and resolver unless they are pinned. The comparison mode of cfg applies to
// every token of the process.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	b := old.bld

	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(cfg, old.reg)
	}
	nres := old.res
	if !old.pres {
		nres = b.BuildResolver(cfg, nreg, old.res)
	}

	publish(&state{cfg: cfg, reg: nreg, res: nres, bld: b, preg: old.preg, pres: old.pres})
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry sets the global registry to reg and pins it.
// The resolver is rebuilt over reg unless it is pinned.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	nres := old.res
	if !old.pres {
		nres = old.bld.BuildResolver(old.cfg, reg, old.res)
	}

	publish(&state{cfg: old.cfg, reg: reg, res: nres, bld: old.bld, preg: true, pres: old.pres})
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver sets the global resolver to res and pins it.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	publish(&state{cfg: old.cfg, reg: old.reg, res: res, bld: old.bld, preg: old.preg, pres: true})
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder to b and rebuilds the components that
// are not pinned.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(old.cfg, old.reg)
	}
	nres := old.res
	if !old.pres {
		nres = b.BuildResolver(old.cfg, nreg, old.res)
	}

	publish(&state{cfg: old.cfg, reg: nreg, res: nres, bld: b, preg: old.preg, pres: old.pres})
}

// IsRegistryPinned reports whether the global registry survives rebuilds.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry keeps the global registry across rebuilds.
func PinRegistry() { setPins(func(s *state) { s.preg = true }) }

// UnpinRegistry lets the builder replace the global registry again.
func UnpinRegistry() { setPins(func(s *state) { s.preg = false }) }

// IsResolverPinned reports whether the global resolver survives rebuilds.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver keeps the global resolver across rebuilds.
func PinResolver() { setPins(func(s *state) { s.pres = true }) }

// UnpinResolver lets the builder replace the global resolver again.
func UnpinResolver() { setPins(func(s *state) { s.pres = false }) }

// setPins republishes the current snapshot with changed pin flags. The
// Universe is kept: pins do not change naming.
func setPins(fn func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	fn(&next)
	st.Store(&next)
}

// publish completes s with a fresh Universe and makes it current.
// Callers hold buildMu, except init.
func publish(s *state) {
	if s.reg == nil {
		panic(ErrNilRegistry)
	}
	if s.res == nil {
		panic(ErrNilResolver)
	}
	s.uni = token.NewUniverse(s.cfg, s.res)
	st.Store(s)
	token.SetDefault(s.uni)
	token.SetComparison(s.cfg.Compare)
}

// buildMu serializes writers so a partially built snapshot is never published.
var buildMu sync.Mutex

// st is the current snapshot.
var st atomic.Pointer[state]

// state is an immutable snapshot. Writers build a new one and swap it in.
type state struct {
	cfg apis.Config
	reg apis.Registry
	res apis.Resolver
	bld apis.Builder
	// uni names types with res under cfg. A new snapshot gets a new
	// Universe; tokens of the previous one stay valid but distinct.
	uni *token.Universe
	// preg and pres mark components that builders must not replace.
	preg bool
	pres bool
}
