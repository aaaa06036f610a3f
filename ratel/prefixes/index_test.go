package prefixes

import (
	"bytes"
	"testing"

	"lukechampine.com/frand"

	"strata.lol/ratel/keys/arb"
	"strata.lol/ratel/keys/index"
	"strata.lol/ratel/keys/serial"
)

func TestT(t *testing.T) {
	v := Version.Key()
	buf2 := bytes.NewBuffer(v)
	v2 := index.New(0)
	el := v2.Read(buf2).(*index.T)
	if el.Byte() != v[0] {
		t.Fatalf("expected %d got %d", v[0], el.Byte())
	}
}

func TestDataKey(t *testing.T) {
	for range 100 {
		id := frand.Uint64n(1 << 40)
		uk := frand.Bytes(frand.Intn(32))
		k := DataKey(id, uk)
		if !bytes.HasPrefix(k, CollectionPrefix(id)) {
			t.Fatalf("key %x lacks collection prefix", k)
		}
		if !bytes.Equal(UserKey(k), uk) {
			t.Fatalf("expected user key %x got %x", uk, UserKey(k))
		}
		p, ser, a := index.Empty(), serial.New(nil), arb.New("")
		if !arb.ReadWithArbElem(k, p, ser, a) {
			t.Fatalf("could not decode %x", k)
		}
		if ser.Uint64() != id || p.Val[0] != Data.B() {
			t.Fatalf("decoded prefix %d id %d from %x", p.Val[0], ser.Uint64(), k)
		}
	}
	if CatalogName(CatalogKey("graph")) != "graph" {
		t.Fatal("catalog name did not round trip")
	}
}
