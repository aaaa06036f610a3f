// Package keys is a composable framework for constructing badger keys from
// fields of fixed and variable length.
package keys

import (
	"bytes"
	"io"
)

// Element is a fixed length field of a key. An arb.T is the one exception, its
// length is imputed from what remains after the fixed length fields.
type Element interface {
	// Write the binary form of the field into the given writer.
	Write(buf io.Writer)
	// Read the field from the given reader, returning nil if it could not be
	// read.
	Read(buf io.Reader) (el Element)
	// Len returns the length of the binary form of the field.
	Len() (l no)
}

// Write the elements in sequence into a new key.
func Write(elems ...Element) (key by) {
	var l no
	for _, el := range elems {
		l += el.Len()
	}
	buf := bytes.NewBuffer(make(by, 0, l))
	for _, el := range elems {
		el.Write(buf)
	}
	return buf.Bytes()
}

// Read the fields of a key into the elements in sequence. It returns false if
// the key was too short.
func Read(key by, elems ...Element) (ok bo) {
	buf := bytes.NewBuffer(key)
	for _, el := range elems {
		if el.Read(buf) == nil {
			return
		}
	}
	return true
}

// MakeKey allocates a key buffer for the elements and is the same as Write.
func MakeKey(elems ...Element) (key by) { return Write(elems...) }
