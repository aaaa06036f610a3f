// Package serial is a 64 bit big endian counter value, used for the ids that
// badger sequences hand out for named collections.
package serial

import (
	"encoding/binary"
	"io"

	"strata.lol/chk"
	"strata.lol/ratel/keys"
)

const Len = 8

// T is a serial number, sorting in numeric order as bytes.
type T struct {
	Val []byte
}

var _ keys.Element = &T{}

func New(ser []byte) (p *T) {
	switch {
	case len(ser) == 0:
		p = &T{make([]byte, Len)}
	case len(ser) >= Len:
		p = &T{ser[:Len]}
	default:
		p = &T{make([]byte, Len)}
		copy(p.Val[Len-len(ser):], ser)
	}
	return
}

// Make a serial from an integer value.
func Make(s uint64) (ser *T) {
	ser = New(nil)
	binary.BigEndian.PutUint64(ser.Val, s)
	return
}

// FromKey reads the serial that follows the one byte prefix of a key.
func FromKey(k []byte) (p *T) {
	if len(k) < 1+Len {
		return New(nil)
	}
	return New(k[1 : 1+Len])
}

func (p *T) Write(buf io.Writer) {
	if len(p.Val) != Len {
		buf.Write(make([]byte, Len))
		return
	}
	buf.Write(p.Val)
}

func (p *T) Read(buf io.Reader) (el keys.Element) {
	p.Val = make([]byte, Len)
	if n, err := buf.Read(p.Val); chk.E(err) || n != Len {
		return nil
	}
	return p
}

func (p *T) Len() int { return Len }

// Uint64 returns the numeric value of the serial.
func (p *T) Uint64() (u uint64) { return binary.BigEndian.Uint64(p.Val) }
