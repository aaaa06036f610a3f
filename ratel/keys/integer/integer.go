// Package integer is a signed 64 bit key field that sorts in numeric order: big
// endian with the sign bit flipped, so negative values come before positive.
package integer

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/exp/constraints"

	"strata.lol/chk"
	"strata.lol/ratel/keys"
)

const Len = 8

const signBit = 1 << 63

// T is a 64-bit signed integer value.
type T struct {
	Val int64
}

var _ keys.Element = &T{}

func New[V constraints.Integer](val ...V) (m *T) {
	if len(val) == 0 {
		m = new(T)
		return
	}
	m = &T{int64(val[0])}
	return
}

func NewFrom(b []byte) (s *T) {
	buf := bytes.NewBuffer(b)
	s = &T{}
	s.Read(buf)
	return
}

// Put encodes v into the first Len bytes of b.
func Put(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)^signBit) }

// Get decodes the value in the first Len bytes of b.
func Get(b []byte) int64 { return int64(binary.BigEndian.Uint64(b) ^ signBit) }

func (s *T) Write(buf io.Writer) {
	v := make([]byte, Len)
	Put(v, s.Val)
	buf.Write(v)
}

func (s *T) Read(buf io.Reader) (el keys.Element) {
	v := make([]byte, Len)
	if n, err := buf.Read(v); chk.E(err) || n != Len {
		return nil
	}
	s.Val = Get(v)
	return s
}

func (s *T) Len() int { return Len }

// Min and Max are the smallest and largest encodable values.
const (
	Min = math.MinInt64
	Max = math.MaxInt64
)
