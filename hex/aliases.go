// Package hex is a set of aliases and helpers for hexadecimal encoding, with the appending
// variants using the SIMD accelerated xhex codec.
package hex

import (
	"encoding/hex"

	"github.com/templexxx/xhex"

	"strata.lol/chk"
)

type B = []byte

var Enc = hex.EncodeToString
var EncBytes = hex.Encode
var Dec = hex.DecodeString
var DecBytes = hex.Decode

var DecLen = hex.DecodedLen

type InvalidByteError = hex.InvalidByteError

// EncAppend appends the hex encoding of src to dst.
func EncAppend(dst, src B) (b B) {
	l := len(dst)
	dst = append(dst, make(B, len(src)*2)...)
	xhex.Encode(dst[l:], src)
	return dst
}

// DecAppend appends the bytes decoded from the hex string src to dst.
func DecAppend(dst, src B) (b B, err error) {
	l := len(dst)
	b = dst
	b = append(b, make(B, len(src)/2)...)
	if err = xhex.Decode(b[l:], src); chk.E(err) {
		return
	}
	return
}
