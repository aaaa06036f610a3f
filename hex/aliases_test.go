package hex

import (
	"bytes"
	"testing"

	"lukechampine.com/frand"
)

func TestEncDecAppend(t *testing.T) {
	for range 100 {
		src := frand.Bytes(frand.Intn(64) + 1)
		enc := EncAppend(B("key:"), src)
		if !bytes.HasPrefix(enc, B("key:")) {
			t.Fatalf("prefix lost: %s", enc)
		}
		if string(enc[4:]) != Enc(src) {
			t.Fatalf("expected %s got %s", Enc(src), enc[4:])
		}
		dec, err := DecAppend(nil, enc[4:])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(dec, src) {
			t.Fatalf("expected %x got %x", src, dec)
		}
	}
}
