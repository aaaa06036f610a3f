// Package index is a single byte key element. It is the table prefix of every
// engine key and the role byte that ends an adjacency key.
package index

import (
	"io"

	"strata.lol/ratel/keys"
)

const Len = 1

type T struct {
	Val []byte
}

var _ keys.Element = &T{}

// New makes an element of the first code given, 0 if there is none.
func New[V byte | P | int](code ...V) (p *T) {
	if len(code) == 0 {
		return Empty()
	}
	return &T{Val: []byte{byte(code[0])}}
}

func Empty() (p *T) { return &T{Val: []byte{0}} }

// Byte returns the value of the element.
func (p *T) Byte() byte { return p.Val[0] }

func (p *T) Write(buf io.Writer) { buf.Write(p.Val[:Len]) }

// Read fills the element from buf, returning nil if buf is exhausted.
func (p *T) Read(buf io.Reader) (el keys.Element) {
	p.Val = make([]byte, Len)
	if _, err := io.ReadFull(buf, p.Val); err != nil {
		return nil
	}
	return p
}

func (p *T) Len() int { return Len }
