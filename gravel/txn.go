package gravel

import (
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"strata.lol/ratel/prefixes"
	"strata.lol/store"
)

// txn is an indexed batch with a read set. Reads go through the batch so they
// see its writes, and keys the transaction has not written are fingerprinted
// on first sight.
type txn struct {
	reader
	b      *pebble.Batch
	reads  map[st]seen
	writes map[st]struct{}
	done   bo
}

var _ store.Txn = (*txn)(nil)

// Begin opens a read-write transaction.
func (g *T) Begin(c cx) (t store.Txn, err er) {
	if g.closed.Load() {
		err = store.ErrClosed
		return
	}
	tx := &txn{
		b:      g.DB.NewIndexedBatch(),
		reads:  make(map[st]seen),
		writes: make(map[st]struct{}),
	}
	tx.reader = reader{g: g, src: tx.b, track: tx.track}
	return tx, nil
}

// Update runs fn in a new transaction and commits it if fn succeeds.
func (g *T) Update(c cx, fn func(t store.Txn) (err er)) (err er) {
	var t store.Txn
	if t, err = g.Begin(c); err != nil {
		return
	}
	defer t.Discard()
	if err = fn(t); err != nil {
		return
	}
	return t.Commit(c)
}

func (t *txn) track(key, val by, found bo) {
	k := st(key)
	if _, own := t.writes[k]; own {
		return
	}
	if _, ok := t.reads[k]; ok {
		return
	}
	s := seen{found: found}
	if found {
		s.sum = xxhash.Sum64(val)
	}
	t.reads[k] = s
}

func (t *txn) Put(c cx, col store.Collection, key, val by) (err er) {
	k := prefixes.DataKey(uint64(col), key)
	if err = t.b.Set(k, val, nil); chk.E(err) {
		return
	}
	t.writes[st(k)] = struct{}{}
	return
}

func (t *txn) Delete(c cx, col store.Collection, key by) (err er) {
	k := prefixes.DataKey(uint64(col), key)
	if err = t.b.Delete(k, nil); chk.E(err) {
		return
	}
	t.writes[st(k)] = struct{}{}
	return
}

// Commit validates the read set against the committed state and applies the
// batch, both under the engine commit lock.
func (t *txn) Commit(c cx) (err er) {
	if t.done {
		return errorf.E("transaction already finished")
	}
	t.done = true
	defer func() { chk.E(t.b.Close()) }()
	g := t.g
	g.commit.Lock()
	defer g.commit.Unlock()
	if g.closed.Load() {
		return store.ErrClosed
	}
	for k, s := range t.reads {
		var val by
		var found bo
		if val, found, err = g.get(g.DB, by(k)); chk.E(err) {
			return
		}
		if found != s.found || (found && xxhash.Sum64(val) != s.sum) {
			err = errors.Wrapf(store.ErrConflict, "key %x changed", by(k))
			log.D.Ln(err)
			return
		}
	}
	if t.b.Empty() {
		return
	}
	return t.b.Commit(pebble.NoSync)
}

func (t *txn) Discard() {
	if t.done {
		return
	}
	t.done = true
	chk.E(t.b.Close())
}
