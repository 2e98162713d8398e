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

package call

import "reflect"

// typesOf collects argument types in slot order.
func typesOf(ts ...reflect.Type) []reflect.Type { return ts }

// Bind0 binds fn, an operation on *T with receiver only.
func Bind0[T any](name string, fn func(*T), opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return build(name, opts, nil, nil, func(t *T, s *Stack, o []uintptr) error {
		fn(t)
		return nil
	}), nil
}

// Bind1 binds fn, an operation on *T with one argument.
func Bind1[T, A1 any](name string, fn func(*T, A1), opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return build(name, opts, nil, typesOf(reflect.TypeFor[A1]()), func(t *T, s *Stack, o []uintptr) error {
		fn(t, arg[A1](s, o[1]))
		return nil
	}), nil
}

// Bind2 binds fn, an operation on *T with 2 arguments.
func Bind2[T, A1, A2 any](name string, fn func(*T, A1, A2), opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return build(name, opts, nil, typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2]()), func(t *T, s *Stack, o []uintptr) error {
		fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]))
		return nil
	}), nil
}

// Bind3 binds fn, an operation on *T with 3 arguments.
func Bind3[T, A1, A2, A3 any](name string, fn func(*T, A1, A2, A3), opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return build(name, opts, nil, typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3]()), func(t *T, s *Stack, o []uintptr) error {
		fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3]))
		return nil
	}), nil
}

// Bind4 binds fn, an operation on *T with 4 arguments.
func Bind4[T, A1, A2, A3, A4 any](name string, fn func(*T, A1, A2, A3, A4), opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return build(name, opts, nil, typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3](), reflect.TypeFor[A4]()), func(t *T, s *Stack, o []uintptr) error {
		fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3]), arg[A4](s, o[4]))
		return nil
	}), nil
}

// Bind5 binds fn, an operation on *T with 5 arguments.
func Bind5[T, A1, A2, A3, A4, A5 any](name string, fn func(*T, A1, A2, A3, A4, A5), opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return build(name, opts, nil, typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3](), reflect.TypeFor[A4](), reflect.TypeFor[A5]()), func(t *T, s *Stack, o []uintptr) error {
		fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3]), arg[A4](s, o[4]), arg[A5](s, o[5]))
		return nil
	}), nil
}

// Bind6 binds fn, an operation on *T with 6 arguments.
func Bind6[T, A1, A2, A3, A4, A5, A6 any](name string, fn func(*T, A1, A2, A3, A4, A5, A6), opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return build(name, opts, nil, typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3](), reflect.TypeFor[A4](), reflect.TypeFor[A5](), reflect.TypeFor[A6]()), func(t *T, s *Stack, o []uintptr) error {
		fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3]), arg[A4](s, o[4]), arg[A5](s, o[5]), arg[A6](s, o[6]))
		return nil
	}), nil
}

// BindResult0 is Bind0 for operations returning R, which Execute writes to slot 0.
func BindResult0[T, R any](name string, fn func(*T) R, opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	d := build(name, opts, reflect.TypeFor[R](), nil, func(t *T, s *Stack, o []uintptr) error {
		return ret(s, o[0], fn(t))
	})
	d.result = resultOf[R]
	return d, nil
}

// BindResult1 is Bind1 for operations returning R, which Execute writes to slot 0.
func BindResult1[T, A1, R any](name string, fn func(*T, A1) R, opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	d := build(name, opts, reflect.TypeFor[R](), typesOf(reflect.TypeFor[A1]()), func(t *T, s *Stack, o []uintptr) error {
		return ret(s, o[0], fn(t, arg[A1](s, o[1])))
	})
	d.result = resultOf[R]
	return d, nil
}

// BindResult2 is Bind2 for operations returning R, which Execute writes to slot 0.
func BindResult2[T, A1, A2, R any](name string, fn func(*T, A1, A2) R, opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	d := build(name, opts, reflect.TypeFor[R](), typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2]()), func(t *T, s *Stack, o []uintptr) error {
		return ret(s, o[0], fn(t, arg[A1](s, o[1]), arg[A2](s, o[2])))
	})
	d.result = resultOf[R]
	return d, nil
}

// BindResult3 is Bind3 for operations returning R, which Execute writes to slot 0.
func BindResult3[T, A1, A2, A3, R any](name string, fn func(*T, A1, A2, A3) R, opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	d := build(name, opts, reflect.TypeFor[R](), typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3]()), func(t *T, s *Stack, o []uintptr) error {
		return ret(s, o[0], fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3])))
	})
	d.result = resultOf[R]
	return d, nil
}

// BindResult4 is Bind4 for operations returning R, which Execute writes to slot 0.
func BindResult4[T, A1, A2, A3, A4, R any](name string, fn func(*T, A1, A2, A3, A4) R, opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	d := build(name, opts, reflect.TypeFor[R](), typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3](), reflect.TypeFor[A4]()), func(t *T, s *Stack, o []uintptr) error {
		return ret(s, o[0], fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3]), arg[A4](s, o[4])))
	})
	d.result = resultOf[R]
	return d, nil
}

// BindResult5 is Bind5 for operations returning R, which Execute writes to slot 0.
func BindResult5[T, A1, A2, A3, A4, A5, R any](name string, fn func(*T, A1, A2, A3, A4, A5) R, opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	d := build(name, opts, reflect.TypeFor[R](), typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3](), reflect.TypeFor[A4](), reflect.TypeFor[A5]()), func(t *T, s *Stack, o []uintptr) error {
		return ret(s, o[0], fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3]), arg[A4](s, o[4]), arg[A5](s, o[5])))
	})
	d.result = resultOf[R]
	return d, nil
}

// BindResult6 is Bind6 for operations returning R, which Execute writes to slot 0.
func BindResult6[T, A1, A2, A3, A4, A5, A6, R any](name string, fn func(*T, A1, A2, A3, A4, A5, A6) R, opts ...Option) (*Descriptor, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	d := build(name, opts, reflect.TypeFor[R](), typesOf(reflect.TypeFor[A1](), reflect.TypeFor[A2](), reflect.TypeFor[A3](), reflect.TypeFor[A4](), reflect.TypeFor[A5](), reflect.TypeFor[A6]()), func(t *T, s *Stack, o []uintptr) error {
		return ret(s, o[0], fn(t, arg[A1](s, o[1]), arg[A2](s, o[2]), arg[A3](s, o[3]), arg[A4](s, o[4]), arg[A5](s, o[5]), arg[A6](s, o[6])))
	})
	d.result = resultOf[R]
	return d, nil
}
