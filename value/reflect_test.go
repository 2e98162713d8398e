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

package value_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtx/value"
)

type runtimeOnly struct {
	Name  string
	Items []int
}

func (r runtimeOnly) Clone() runtimeOnly {
	return runtimeOnly{Name: r.Name, Items: append([]int(nil), r.Items...)}
}

type runtimeInline struct{ N uint16 }

type runtimeNode struct{ N int }

func (r *runtimeNode) Clone() *runtimeNode {
	cp := *r
	return &cp
}

func TestFromReflect(t *testing.T) {
	before := value.RemoteStats()

	v := value.FromReflect(reflect.ValueOf(runtimeOnly{Name: "a", Items: []int{1}}))
	assert.False(t, v.IsInline())
	got, ok := value.Get[runtimeOnly](&v)
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)

	c := v.Clone()
	value.Ref[runtimeOnly](&c).Items[0] = 9
	assert.Equal(t, 1, value.Cast[runtimeOnly](&v).Items[0], "Clone method is honored")
	assert.True(t, v.Equal(&v))
	assert.False(t, v.Equal(&c))

	static := value.Of(runtimeOnly{Name: "a", Items: []int{1}})
	assert.True(t, v.Equal(&static), "runtime and static Values of one type compare")

	v.Destroy()
	c.Destroy()
	static.Destroy()
	assert.Equal(t, value.Stats{Allocs: 3, Frees: 3}, value.RemoteStats().Sub(before))
}

func TestFromReflect_Inline(t *testing.T) {
	v := value.FromReflect(reflect.ValueOf(runtimeInline{N: 3}))
	assert.True(t, v.IsInline())
	assert.Equal(t, runtimeInline{N: 3}, v.Interface())

	rv := v.Reflect()
	rv.Field(0).SetUint(4)
	assert.Equal(t, uint16(4), value.Cast[runtimeInline](&v).N)
}

func TestNew(t *testing.T) {
	v := value.New(reflect.TypeFor[map[string]int]())
	assert.True(t, v.IsInline())
	assert.Nil(t, value.Cast[map[string]int](&v))

	untyped := value.New(nil)
	assert.True(t, untyped.IsEmpty())
	invalid := value.FromReflect(reflect.Value{})
	assert.True(t, invalid.IsEmpty())
	e := value.Empty()
	assert.False(t, e.Reflect().IsValid())
}

func TestFromReflect_NilPointerClone(t *testing.T) {
	v := value.FromReflect(reflect.ValueOf((*runtimeNode)(nil)))
	var c value.Value
	require.NotPanics(t, func() { c = v.Clone() })
	assert.Nil(t, c.Interface())

	v = value.FromReflect(reflect.ValueOf(&runtimeNode{N: 2}))
	c = v.Clone()
	orig, cloned := v.Interface().(*runtimeNode), c.Interface().(*runtimeNode)
	assert.NotSame(t, orig, cloned)
	assert.Equal(t, 2, cloned.N)
}
