package gravel

import (
	"github.com/cockroachdb/pebble"

	"strata.lol/ratel/prefixes"
	"strata.lol/store"
)

// seen is the fingerprint of a value observed by a transaction.
type seen struct {
	found bo
	sum   uint64
}

// reader serves the store.Reader methods from a pebble source. When track is
// set every key read that the transaction has not written itself is passed to
// it, so it can be validated at commit.
type reader struct {
	g     *T
	src   source
	track func(key, val by, found bo)
}

func (r reader) Get(c cx, col store.Collection, key by,
	opts store.Options) (val by, found bo, err er) {

	k := prefixes.DataKey(uint64(col), key)
	if val, found, err = r.g.get(r.src, k); err != nil {
		return
	}
	if r.track != nil && !opts.Has(store.Transparent) {
		r.track(k, val, found)
	}
	return
}

func (r reader) Has(c cx, col store.Collection, key by,
	opts store.Options) (found bo, err er) {

	_, found, err = r.Get(c, col, key, opts)
	return
}

func (r reader) Scan(c cx, col store.Collection, start by, opts store.Options,
	fn func(key, val by) (more bo, err er)) (err er) {

	var it *pebble.Iterator
	if it, err = r.src.NewIter(&pebble.IterOptions{
		LowerBound: prefixes.DataKey(uint64(col), start),
		UpperBound: upperBound(prefixes.CollectionPrefix(uint64(col))),
	}); chk.E(err) {
		return
	}
	defer func() { chk.E(it.Close()) }()
	for valid := it.First(); valid; valid = it.Next() {
		if err = c.Err(); err != nil {
			return
		}
		if r.track != nil && !opts.Has(store.Transparent) {
			r.track(it.Key(), it.Value(), true)
		}
		var more bo
		if more, err = fn(prefixes.UserKey(it.Key()), it.Value()); err != nil || !more {
			return
		}
	}
	return it.Error()
}

// snapshot is a read-only pebble snapshot.
type snapshot struct {
	reader
	snap *pebble.Snapshot
}

func (s snapshot) Discard() { chk.E(s.snap.Close()) }

// Snapshot opens a read-only view of the store at the current time.
func (g *T) Snapshot(c cx) (snap store.Snapshot, err er) {
	if g.closed.Load() {
		err = store.ErrClosed
		return
	}
	s := g.DB.NewSnapshot()
	return snapshot{reader: reader{g: g, src: s}, snap: s}, nil
}

// View runs fn against a read-only snapshot.
func (g *T) View(c cx, fn func(rd store.Reader) (err er)) (err er) {
	var snap store.Snapshot
	if snap, err = g.Snapshot(c); err != nil {
		return
	}
	defer snap.Discard()
	return fn(snap)
}

// Get reads one key of the committed state.
func (g *T) Get(c cx, col store.Collection, key by,
	opts store.Options) (val by, found bo, err er) {

	return reader{g: g, src: g.DB}.Get(c, col, key, opts)
}

// Has checks one key of the committed state.
func (g *T) Has(c cx, col store.Collection, key by,
	opts store.Options) (found bo, err er) {

	return reader{g: g, src: g.DB}.Has(c, col, key, opts)
}

// Scan iterates a collection in a fresh snapshot.
func (g *T) Scan(c cx, col store.Collection, start by, opts store.Options,
	fn func(key, val by) (more bo, err er)) (err er) {

	return g.View(c, func(rd store.Reader) (err er) {
		return rd.Scan(c, col, start, opts, fn)
	})
}

// Put writes one key in its own short transaction.
func (g *T) Put(c cx, col store.Collection, key, val by) (err er) {
	g.commit.Lock()
	defer g.commit.Unlock()
	if g.closed.Load() {
		return store.ErrClosed
	}
	return g.DB.Set(prefixes.DataKey(uint64(col), key), val, pebble.NoSync)
}

// Delete removes one key in its own short transaction.
func (g *T) Delete(c cx, col store.Collection, key by) (err er) {
	g.commit.Lock()
	defer g.commit.Unlock()
	if g.closed.Load() {
		return store.ErrClosed
	}
	return g.DB.Delete(prefixes.DataKey(uint64(col), key), pebble.NoSync)
}
