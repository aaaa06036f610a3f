// Package arb is an arbitrary length byte string key field, used for the user
// keys stored after a collection prefix.
package arb

import (
	"io"

	"strata.lol/ratel/keys"
)

// T is an arbitrary length byte string. In any construction there can only be
// one with arbitrary length. Custom lengths can be created with NewWithLen, both
// for Read and Write operations.
type T struct {
	Val by
}

var _ keys.Element = &T{}

// New creates a new arb.T. This must have the expected length for the provided
// byte slice as this is what the Read method will aim to copy. In general this
// will be the final or only arbitrary length field in a key.
func New[V by | st](s V) (p *T) { return &T{Val: by(s)} }

func NewWithLen(l no) (p *T) { return &T{Val: make(by, l)} }

func (p *T) Write(buf io.Writer) {
	if len(p.Val) == 0 {
		return
	}
	buf.Write(p.Val)
}

func (p *T) Read(buf io.Reader) (el keys.Element) {
	if len(p.Val) < 1 {
		return p
	}
	if n, err := io.ReadFull(buf, p.Val); chk.E(err) || n != len(p.Val) {
		return nil
	}
	return p
}

func (p *T) Len() no {
	if p == nil {
		panic("uninitialized pointer to arb.T")
	}
	return len(p.Val)
}

// ReadWithArbElem is a variant of Read that recognises an arbitrary length
// element by its zero length and imputes its actual length by the byte buffer
// size and the lengths of the fixed length fields.
//
// For reasons of space efficiency, it is not practical to use TLVs for badger
// database key fields, so this will panic if there is more than one arbitrary
// length element.
func ReadWithArbElem(b by, elems ...keys.Element) (ok bo) {
	var arbEl no
	var arbSet bo
	l := len(b)
	for i, el := range elems {
		elLen := el.Len()
		l -= elLen
		if elLen == 0 {
			if arbSet {
				panic("cannot have more than one arbitrary length field in a key")
			}
			arbEl = i
			arbSet = true
		}
	}
	if l < 0 {
		return
	}
	if arbSet {
		elems[arbEl] = NewWithLen(l)
	}
	return keys.Read(b, elems...)
}
