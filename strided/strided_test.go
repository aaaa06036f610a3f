package strided

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func TestStrideOverTriples(t *testing.T) {
	flat := []int64{1, 2, 10, 3, 4, 11, 5, 6, 12}
	sources := New(flat, 3, 3)
	targets := New(flat[1:], 3, 3)
	ids := New(flat[2:], 3, 3)
	require.Equal(t, []int64{1, 3, 5}, sources.Slice())
	require.Equal(t, []int64{2, 4, 6}, targets.Slice())
	require.Equal(t, []int64{10, 11, 12}, ids.Slice())
	require.True(t, ids.Fits(3))
	require.False(t, ids.Fits(4))
	require.Equal(t, []int64{4, 6}, targets.Sub(1, 2).Slice())
}

func TestBroadcast(t *testing.T) {
	b := Broadcast(int64(7), 5)
	require.True(t, b.Broadcasts())
	require.True(t, b.Fits(1000))
	for i := range b.Len() {
		require.Equal(t, int64(7), b.At(i))
	}
	require.Equal(t, 3, Count(b, Dense([]int64{1, 2, 3})))
	require.Equal(t, 5, Count(b))
	require.Equal(t, 2, b.Sub(3, 2).Len())
}

func TestEqualRange(t *testing.T) {
	s := Of(int64(1), 2, 2, 2, 5, 9)
	lo, hi := EqualRange(s, 2)
	require.Equal(t, 1, lo)
	require.Equal(t, 4, hi)
	lo, hi = EqualRange(s, 3)
	require.Equal(t, lo, hi)
	lo, hi = EqualRange(s, 10)
	require.Equal(t, 6, lo)
	require.Equal(t, 6, hi)
	require.Equal(t, 4, s.Search(func(v int64) bool { return v >= 3 }))
}

func TestTape(t *testing.T) {
	tp := TapeOf("a/b", "", "a/c/d")
	require.Equal(t, 3, tp.Len())
	require.True(t, tp.Fits(3))
	require.Equal(t, "a/b", string(tp.At(0)))
	require.Empty(t, tp.At(1))
	require.Equal(t, "a/c/d", string(tp.At(2)))
	bad := Tape{Data: tp.Data, Offsets: Of(uint32(0)), Lengths: Of(uint32(100))}
	require.False(t, bad.Fits(1))
	bt := BroadcastTape("x", 4)
	require.True(t, bt.Broadcasts())
	require.Equal(t, 4, bt.Len())
	require.Equal(t, "x", string(bt.At(3)))
}

func TestOctets(t *testing.T) {
	n := 37
	o := NewOctets(n)
	require.Len(t, o, 5)
	want := make([]bool, n)
	for i := range n {
		want[i] = frand.Intn(2) == 1
		o.Set(i, want[i])
	}
	for i := range n {
		require.Equal(t, want[i], o.Get(i))
	}
	o.Set(0, true)
	o.Set(0, false)
	require.False(t, o.Get(0))
}
