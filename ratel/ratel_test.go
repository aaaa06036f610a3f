package ratel

import (
	"os"
	"path/filepath"
	"testing"

	"lukechampine.com/frand"

	"strata.lol/context"
	"strata.lol/hex"
	"strata.lol/lol"
	"strata.lol/store"
	"strata.lol/store/storetest"
)

func open(t *testing.T) store.I {
	r := New(BackendParams{Ctx: context.Bg(), LogLevel: lol.Warn, InMemory: true})
	if err := r.Init(""); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { chk.E(r.Close()) })
	return r
}

func TestConformance(t *testing.T) { storetest.Run(t, open) }

func TestReopen(t *testing.T) {
	path := filepath.Join(os.TempDir(), hex.Enc(frand.Bytes(8)))
	defer os.RemoveAll(path)
	c := context.Bg()
	r := New(BackendParams{Compression: "zstd", LogLevel: lol.Warn})
	if err := r.Init(path); err != nil {
		t.Fatal(err)
	}
	col, err := r.Collection(c, "persist")
	if err != nil {
		t.Fatal(err)
	}
	val := frand.Bytes(64)
	if err = r.Put(c, col, []byte("key"), val); err != nil {
		t.Fatal(err)
	}
	if err = r.Close(); err != nil {
		t.Fatal(err)
	}
	r = New(BackendParams{Compression: "zstd", LogLevel: lol.Warn})
	if err = r.Init(path); err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var col2 store.Collection
	if col2, err = r.Collection(c, "persist"); err != nil {
		t.Fatal(err)
	}
	if col2 != col {
		t.Fatalf("collection id changed from %d to %d", col, col2)
	}
	got, found, err := r.Get(c, col, []byte("key"), store.Default)
	if err != nil || !found || !equals(got, val) {
		t.Fatalf("expected %x got %x found %v err %v", val, got, found, err)
	}
}

func TestUnknownCompression(t *testing.T) {
	r := New(BackendParams{Compression: "lz4", InMemory: true})
	if err := r.Init(""); err == nil {
		t.Fatal("expected an error for an unknown compression type")
	}
}
