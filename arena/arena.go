// Package arena is a caller owned scratch allocator for the outputs of batch reads.
//
// Every variable length result of a query is carved out of one of the arena's pools and
// stays valid until the caller calls Reset. No operation resets an arena on its own, so a
// caller can issue several queries and keep all their results alive at once.
package arena

import (
	"github.com/pkg/errors"

	"strata.lol/strided"
)

// ErrAllocation is returned when a carve would take the arena past its limit. The caller
// may Reset or raise the limit and retry.
var ErrAllocation = errors.New("arena allocation limit exceeded")

const minChunk = 64

// T holds separate growable pools for keys, lengths and offsets, presence octets and
// payload bytes. It is not safe for concurrent use.
type T struct {
	limit int
	used  int
	keys  []int64
	lens  []uint32
	octs  []byte
	data  []byte
}

// New creates an arena that refuses to hand out more than limit bytes in total between
// resets. A limit of zero is unbounded.
func New(limit int) *T { return &T{limit: limit} }

// Limit is the current allocation limit in bytes.
func (a *T) Limit() int { return a.limit }

// SetLimit changes the allocation limit, zero removes it.
func (a *T) SetLimit(limit int) { a.limit = limit }

// Used is the number of bytes carved since the last Reset.
func (a *T) Used() int { return a.used }

// Reset reclaims everything carved so far. Slices obtained before Reset must not be used
// afterwards, their memory is handed out again.
func (a *T) Reset() {
	a.used = 0
	a.keys = a.keys[:0]
	a.lens = a.lens[:0]
	a.octs = a.octs[:0]
	a.data = a.data[:0]
}

func (a *T) reserve(size int) (err error) {
	if a.limit > 0 && a.used+size > a.limit {
		err = errors.Wrapf(ErrAllocation, "need %d bytes, %d of %d in use",
			size, a.used, a.limit)
		return
	}
	a.used += size
	return
}

// carve takes n zeroed elements from pool, starting a fresh chunk when the current one
// is full so that earlier carvings are never moved.
func carve[V any](pool *[]V, n int) (out []V) {
	p := *pool
	if cap(p)-len(p) < n {
		c := max(2*cap(p), n, minChunk)
		p = make([]V, 0, c)
	}
	out = p[len(p) : len(p)+n : len(p)+n]
	clear(out)
	*pool = p[:len(p)+n]
	return
}

// Keys carves n int64 values.
func (a *T) Keys(n int) (out []int64, err error) {
	if err = a.reserve(8 * n); err != nil {
		return
	}
	return carve(&a.keys, n), nil
}

// Uint32s carves n uint32 values, used for lengths, offsets and degrees.
func (a *T) Uint32s(n int) (out []uint32, err error) {
	if err = a.reserve(4 * n); err != nil {
		return
	}
	return carve(&a.lens, n), nil
}

// Octets carves a cleared presence bitmap able to hold n bits.
func (a *T) Octets(n int) (out strided.Octets, err error) {
	size := (n + 7) / 8
	if err = a.reserve(size); err != nil {
		return
	}
	return carve(&a.octs, size), nil
}

// Bytes carves n payload bytes.
func (a *T) Bytes(n int) (out []byte, err error) {
	if err = a.reserve(n); err != nil {
		return
	}
	return carve(&a.data, n), nil
}

// Copy carves room for src and copies it in.
func (a *T) Copy(src []byte) (out []byte, err error) {
	if out, err = a.Bytes(len(src)); err != nil {
		return
	}
	copy(out, src)
	return
}
