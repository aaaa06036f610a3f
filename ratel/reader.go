package ratel

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"strata.lol/ratel/prefixes"
	"strata.lol/store"
)

// reader serves the store.Reader methods from one badger transaction. Reads
// through an update transaction enter its conflict set.
type reader struct {
	tx *badger.Txn
}

func (r reader) Get(c cx, col store.Collection, key by,
	opts store.Options) (val by, found bo, err er) {

	var item *badger.Item
	if item, err = r.tx.Get(prefixes.DataKey(uint64(col), key)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			err = nil
		}
		return
	}
	found = true
	// ValueSize is 0 for values pending in an update transaction, so lengths
	// are taken from the value itself.
	if val, err = item.ValueCopy(nil); chk.E(err) {
		return
	}
	if val == nil {
		val = by{}
	}
	return
}

func (r reader) Has(c cx, col store.Collection, key by,
	opts store.Options) (found bo, err er) {

	if _, err = r.tx.Get(prefixes.DataKey(uint64(col), key)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			err = nil
		}
		return
	}
	found = true
	return
}

func (r reader) Scan(c cx, col store.Collection, start by, opts store.Options,
	fn func(key, val by) (more bo, err er)) (err er) {

	prefix := prefixes.CollectionPrefix(uint64(col))
	it := r.tx.NewIterator(badger.IteratorOptions{
		PrefetchValues: !opts.Has(store.ReadLengths),
		PrefetchSize:   100,
		Prefix:         prefix,
	})
	defer it.Close()
	var val by
	for it.Seek(prefixes.DataKey(uint64(col), start)); it.ValidForPrefix(prefix); it.Next() {
		if err = c.Err(); err != nil {
			return
		}
		item := it.Item()
		if opts.Has(store.ReadLengths) {
			val = val[:0]
		} else if val, err = item.ValueCopy(val[:0]); chk.E(err) {
			return
		}
		var more bo
		if more, err = fn(prefixes.UserKey(item.Key()), val); err != nil || !more {
			return
		}
	}
	return
}

// snapshot is a read-only badger transaction.
type snapshot struct {
	reader
}

func (s snapshot) Discard() { s.tx.Discard() }

// Snapshot opens a read-only view of the store at the current time.
func (r *T) Snapshot(c cx) (snap store.Snapshot, err er) {
	if r.DB.IsClosed() {
		err = store.ErrClosed
		return
	}
	return snapshot{reader{r.DB.NewTransaction(false)}}, nil
}

// View runs fn against a read-only snapshot.
func (r *T) View(c cx, fn func(rd store.Reader) (err er)) (err er) {
	var snap store.Snapshot
	if snap, err = r.Snapshot(c); err != nil {
		return
	}
	defer snap.Discard()
	return fn(snap)
}

// Get reads one key from a fresh snapshot.
func (r *T) Get(c cx, col store.Collection, key by,
	opts store.Options) (val by, found bo, err er) {

	err = r.View(c, func(rd store.Reader) (err er) {
		val, found, err = rd.Get(c, col, key, opts)
		return
	})
	return
}

// Has checks one key in a fresh snapshot.
func (r *T) Has(c cx, col store.Collection, key by,
	opts store.Options) (found bo, err er) {

	err = r.View(c, func(rd store.Reader) (err er) {
		found, err = rd.Has(c, col, key, opts)
		return
	})
	return
}

// Scan iterates a collection in a fresh snapshot.
func (r *T) Scan(c cx, col store.Collection, start by, opts store.Options,
	fn func(key, val by) (more bo, err er)) (err er) {

	return r.View(c, func(rd store.Reader) (err er) {
		return rd.Scan(c, col, start, opts, fn)
	})
}

// Put writes one key in its own short transaction.
func (r *T) Put(c cx, col store.Collection, key, val by) (err er) {
	return r.Update(c, func(t store.Txn) er { return t.Put(c, col, key, val) })
}

// Delete removes one key in its own short transaction.
func (r *T) Delete(c cx, col store.Collection, key by) (err er) {
	return r.Update(c, func(t store.Txn) er { return t.Delete(c, col, key) })
}
