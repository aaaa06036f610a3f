// Package storetest is a conformance suite for store.I engines.
package storetest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"strata.lol/arena"
	"strata.lol/context"
	"strata.lol/store"
	"strata.lol/strided"
)

// Opener creates a fresh empty engine, closed by the test cleanup.
type Opener func(t *testing.T) store.I

// Run the whole suite against engines made by open.
func Run(t *testing.T, open Opener) {
	t.Run("ReadWrite", func(t *testing.T) { testReadWrite(t, open(t)) })
	t.Run("Scan", func(t *testing.T) { testScan(t, open(t)) })
	t.Run("ReadYourWrites", func(t *testing.T) { testReadYourWrites(t, open(t)) })
	t.Run("Conflict", func(t *testing.T) { testConflict(t, open(t)) })
	t.Run("Transparent", func(t *testing.T) { testTransparent(t, open(t)) })
	t.Run("Collections", func(t *testing.T) { testCollections(t, open(t)) })
	t.Run("Drop", func(t *testing.T) { testDrop(t, open(t)) })
	t.Run("Snapshot", func(t *testing.T) { testSnapshot(t, open(t)) })
}

func testReadWrite(t *testing.T, db store.I) {
	c := context.Bg()
	key, val := []byte("key"), frand.Bytes(100)
	require.NoError(t, db.Put(c, store.Main, key, val))
	got, found, err := db.Get(c, store.Main, key, store.Default)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, val, got)
	require.NoError(t, db.Put(c, store.Main, []byte("empty"), nil))
	got, found, err = db.Get(c, store.Main, []byte("empty"), store.Default)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, got)
	require.NoError(t, db.Delete(c, store.Main, key))
	found, err = db.Has(c, store.Main, key, store.Default)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, db.Delete(c, store.Main, []byte("never written")))
}

func testScan(t *testing.T, db store.I) {
	c := context.Bg()
	col, err := db.Collection(c, "scan")
	require.NoError(t, err)
	var want []string
	for i := range 50 {
		k := fmt.Sprintf("k%03d", i)
		want = append(want, k)
		require.NoError(t, db.Put(c, col, []byte(k), []byte{byte(i)}))
	}
	// a neighbouring collection must not leak into the scan
	other, err := db.Collection(c, "scan2")
	require.NoError(t, err)
	require.NoError(t, db.Put(c, other, []byte("k000"), nil))
	var got []string
	require.NoError(t, db.Scan(c, col, nil, store.Default, func(k, v []byte) (bool, error) {
		got = append(got, string(k))
		return true, nil
	}))
	require.Equal(t, want, got)
	got = got[:0]
	require.NoError(t, db.Scan(c, col, []byte("k045"), store.Default,
		func(k, v []byte) (bool, error) {
			got = append(got, string(k))
			return len(got) < 3, nil
		}))
	require.Equal(t, []string{"k045", "k046", "k047"}, got)
}

func testReadYourWrites(t *testing.T, db store.I) {
	c := context.Bg()
	txn, err := db.Begin(c)
	require.NoError(t, err)
	defer txn.Discard()
	require.NoError(t, txn.Put(c, store.Main, []byte("a"), []byte("1")))
	v, found, err := txn.Get(c, store.Main, []byte("a"), store.Default)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), v)
	// lengths of pending writes are those of the values written
	require.NoError(t, txn.Put(c, store.Main, []byte("long"), []byte("12345")))
	v, found, err = txn.Get(c, store.Main, []byte("long"), store.ReadLengths)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, v, 5)
	vals, err := store.ReadBatch(c, txn, store.Main, strided.TapeOf("long", "a", "none"),
		store.ReadLengths, arena.New(0))
	require.NoError(t, err)
	require.Equal(t, []uint32{5, 1, store.LengthMissing}, vals.Lengths)
	_, found, err = db.Get(c, store.Main, []byte("a"), store.Default)
	require.NoError(t, err)
	require.False(t, found, "uncommitted write visible outside the transaction")
	require.NoError(t, txn.Delete(c, store.Main, []byte("a")))
	found, err = txn.Has(c, store.Main, []byte("a"), store.Default)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, txn.Put(c, store.Main, []byte("b"), []byte("2")))
	require.NoError(t, txn.Commit(c))
	v, found, err = db.Get(c, store.Main, []byte("b"), store.Default)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), v)
}

func testConflict(t *testing.T, db store.I) {
	c := context.Bg()
	require.NoError(t, db.Put(c, store.Main, []byte("x"), []byte("0")))
	t1, err := db.Begin(c)
	require.NoError(t, err)
	defer t1.Discard()
	t2, err := db.Begin(c)
	require.NoError(t, err)
	defer t2.Discard()
	for _, txn := range []store.Txn{t1, t2} {
		_, _, err = txn.Get(c, store.Main, []byte("x"), store.Default)
		require.NoError(t, err)
		require.NoError(t, txn.Put(c, store.Main, []byte("x"), frand.Bytes(8)))
	}
	require.NoError(t, t1.Commit(c))
	err = t2.Commit(c)
	require.True(t, errors.Is(err, store.ErrConflict), "got %v", err)
	// transactions on disjoint keys both commit
	t3, err := db.Begin(c)
	require.NoError(t, err)
	defer t3.Discard()
	t4, err := db.Begin(c)
	require.NoError(t, err)
	defer t4.Discard()
	for i, txn := range []store.Txn{t3, t4} {
		k := []byte{'y', byte(i)}
		_, _, err = txn.Get(c, store.Main, k, store.Default)
		require.NoError(t, err)
		require.NoError(t, txn.Put(c, store.Main, k, nil))
	}
	require.NoError(t, t3.Commit(c))
	require.NoError(t, t4.Commit(c))
}

func testTransparent(t *testing.T, db store.I) {
	c := context.Bg()
	require.NoError(t, db.Put(c, store.Main, []byte("t"), []byte("0")))
	t1, err := db.Begin(c)
	require.NoError(t, err)
	defer t1.Discard()
	require.NoError(t, t1.Put(c, store.Main, []byte("own"), []byte("mine")))
	v, found, err := t1.Get(c, store.Main, []byte("own"), store.Transparent)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("mine"), v)
	_, found, err = t1.Get(c, store.Main, []byte("t"), store.Transparent)
	require.NoError(t, err)
	require.True(t, found)
	var keys [][]byte
	require.NoError(t, t1.Scan(c, store.Main, nil, store.Transparent,
		func(k, v []byte) (bool, error) {
			keys = append(keys, bytes.Clone(k))
			return true, nil
		}))
	require.Equal(t, [][]byte{[]byte("own"), []byte("t")}, keys)
	// a concurrent change to a key read transparently does not conflict
	require.NoError(t, db.Put(c, store.Main, []byte("t"), []byte("1")))
	require.NoError(t, t1.Commit(c))
}

func testCollections(t *testing.T, db store.I) {
	c := context.Bg()
	a, err := db.Collection(c, "b-graph")
	require.NoError(t, err)
	b, err := db.Collection(c, "a-paths")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.NotEqual(t, store.Main, a)
	again, err := db.Collection(c, "b-graph")
	require.NoError(t, err)
	require.Equal(t, a, again)
	main, err := db.Collection(c, "")
	require.NoError(t, err)
	require.Equal(t, store.Main, main)
	list, err := db.Collections(c)
	require.NoError(t, err)
	require.Equal(t, []store.Named{
		{Name: "a-paths", Collection: b},
		{Name: "b-graph", Collection: a},
	}, list)
	require.NoError(t, db.Put(c, a, []byte("k"), []byte("in a")))
	_, found, err := db.Get(c, b, []byte("k"), store.Default)
	require.NoError(t, err)
	require.False(t, found)
}

func testDrop(t *testing.T, db store.I) {
	c := context.Bg()
	col, err := db.Collection(c, "drop")
	require.NoError(t, err)
	put := func() {
		for i := range 10 {
			require.NoError(t, db.Put(c, col, []byte{byte(i)}, []byte("value")))
		}
	}
	count := func() (n int, empty int) {
		require.NoError(t, db.Scan(c, col, nil, store.Default, func(k, v []byte) (bool, error) {
			n++
			if len(v) == 0 {
				empty++
			}
			return true, nil
		}))
		return
	}
	put()
	require.NoError(t, db.Drop(c, col, store.DropVals))
	n, empty := count()
	require.Equal(t, 10, n)
	require.Equal(t, 10, empty)
	require.NoError(t, db.Drop(c, col, store.DropKeysVals))
	n, _ = count()
	require.Zero(t, n)
	put()
	require.NoError(t, db.Drop(c, col, store.DropKeysValsHandle))
	n, _ = count()
	require.Zero(t, n)
	list, err := db.Collections(c)
	require.NoError(t, err)
	require.Empty(t, list)
	err = db.Drop(c, store.Main, store.DropKeysValsHandle)
	require.True(t, errors.Is(err, store.ErrArgs))
	require.NoError(t, db.Drop(c, store.Main, store.DropKeysVals))
}

func testSnapshot(t *testing.T, db store.I) {
	c := context.Bg()
	require.NoError(t, db.Put(c, store.Main, []byte("s"), []byte("before")))
	snap, err := db.Snapshot(c)
	require.NoError(t, err)
	defer snap.Discard()
	require.NoError(t, db.Put(c, store.Main, []byte("s"), []byte("after")))
	v, found, err := snap.Get(c, store.Main, []byte("s"), store.Default)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("before"), v)
	require.NoError(t, db.View(c, func(r store.Reader) error {
		v, _, err := r.Get(c, store.Main, []byte("s"), store.Default)
		require.Equal(t, []byte("after"), v)
		return err
	}))
}
