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

package call_test

import (
	"fmt"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtx/call"
	"dirpx.dev/rtx/token"
	"dirpx.dev/rtx/value"
)

func TestStack_Allocate(t *testing.T) {
	s := call.NewStack(10)
	assert.Equal(t, uintptr(10), s.Len())
	assert.NotNil(t, s.At(9))
	assert.Nil(t, s.At(10))
	assert.Zero(t, uintptr(s.At(0))%8, "buffer must be word aligned")

	require.NoError(t, call.Put(s, 0, int64(-1)))
	s.Allocate(4)
	assert.Equal(t, uintptr(4), s.Len())
	n, err := call.Load[int32](s, 0)
	require.NoError(t, err)
	assert.Zero(t, n, "Allocate zeroes the buffer")

	s.Allocate(0)
	assert.Nil(t, s.At(0))
}

func TestStack_PutLoad(t *testing.T) {
	s := call.NewStack(32)
	require.NoError(t, call.Put(s, 8, "hello"))
	require.NoError(t, call.Put(s, 24, uint16(7)))

	str, err := call.Load[string](s, 8)
	require.NoError(t, err)
	assert.Equal(t, "hello", str)
	u, err := call.Load[uint16](s, 24)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), u)

	_, err = call.Load[int64](s, 28)
	assert.ErrorIs(t, err, call.ErrOutOfBounds)
	_, err = call.Load[int64](s, 4)
	assert.ErrorIs(t, err, call.ErrMisaligned)
	assert.ErrorIs(t, call.Put(s, 30, int32(1)), call.ErrOutOfBounds)
	assert.ErrorIs(t, call.Put(s, 2, int32(1)), call.ErrMisaligned)
}

func TestStack_KeepsPointersAlive(t *testing.T) {
	s := call.NewStack(8)
	func() {
		p := &struct{ v [64]byte }{}
		p.v[0] = 42
		require.NoError(t, call.Put(s, 0, p))
	}()
	runtime.GC()
	runtime.GC()

	p, err := call.Load[*struct{ v [64]byte }](s, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(42), p.v[0])
}

type blob struct {
	data []int
	tag  string
}

// Arguments that live only on the stack survive a collection before Execute.
func TestStack_KeepAliveAcrossExecute(t *testing.T) {
	var sum int
	var tag string
	d, err := call.Bind2("Consume", func(c *counter, b *blob, s string) {
		for _, n := range b.data {
			sum += n
		}
		tag = b.tag + s
	})
	require.NoError(t, err)

	s, offs := d.NewStack()
	func() {
		b := &blob{data: make([]int, 1024), tag: fmt.Sprint("blob-", 7)}
		for i := range b.data {
			b.data[i] = i
		}
		require.NoError(t, call.Put(s, offs[1], b))

		v := value.Of(fmt.Sprint("-", len(b.data)))
		require.NoError(t, call.PutValue(s, offs[2], &v))
		v.Destroy()
	}()
	for range 3 {
		runtime.GC()
	}

	require.NoError(t, d.Execute(&counter{}, s, offs))
	assert.Equal(t, 1023*1024/2, sum)
	assert.Equal(t, "blob-7-1024", tag)
}

func TestPutValue(t *testing.T) {
	s := call.NewStack(24)
	v := value.Of([]string{"a", "b"})
	defer v.Destroy()
	require.NoError(t, call.PutValue(s, 0, &v))
	got, err := call.Load[[]string](s, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	e := value.Empty()
	assert.ErrorIs(t, call.PutValue(s, 0, &e), value.ErrEmpty)
}

func TestStack_Write(t *testing.T) {
	s := call.NewStack(8)
	x := uint32(0xdeadbeef)
	require.NoError(t, s.Write(4, token.Of[uint32](), unsafe.Pointer(&x), 4, 4, nil))
	got, err := call.Load[uint32](s, 4)
	require.NoError(t, err)
	assert.Equal(t, x, got)
}
