package integer_test

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"lukechampine.com/frand"

	"strata.lol/ratel/keys/integer"
)

func TestT(t *testing.T) {
	for range 50 {
		v := integer.New(int64(frand.Uint64n(math.MaxUint64)))
		buf := new(bytes.Buffer)
		v.Write(buf)
		buf2 := bytes.NewBuffer(buf.Bytes())
		v2 := &integer.T{}
		el := v2.Read(buf2).(*integer.T)
		if el.Val != v.Val {
			t.Fatalf("expected %x got %x", v.Val, el.Val)
		}
	}
}

func TestOrder(t *testing.T) {
	vals := []int64{integer.Min, -1 << 40, -2, -1, 0, 1, 2, 1 << 40, integer.Max}
	for range 100 {
		vals = append(vals, int64(frand.Uint64n(math.MaxUint64)))
	}
	enc := make([][]byte, len(vals))
	for i, v := range vals {
		enc[i] = make([]byte, integer.Len)
		integer.Put(enc[i], v)
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	sort.Slice(enc, func(i, j int) bool { return bytes.Compare(enc[i], enc[j]) < 0 })
	for i := range vals {
		if got := integer.Get(enc[i]); got != vals[i] {
			t.Fatalf("position %d: byte order gave %d, numeric order %d", i, got, vals[i])
		}
	}
}
