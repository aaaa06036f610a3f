package ratel

import (
	"bytes"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"strata.lol/ratel/prefixes"
	"strata.lol/store"
)

// pending is a write made in a transaction, kept so that transparent reads can
// see it without going through the tracked badger transaction.
type pending struct {
	val     by
	deleted bo
}

// txn is a badger update transaction. Transparent reads are served from the
// write overlay and otherwise from a separate read-only transaction, so they
// never enter the conflict set of the update.
type txn struct {
	reader
	r       *T
	ro      *badger.Txn
	overlay map[st]pending
}

var _ store.Txn = (*txn)(nil)

// Begin opens a read-write transaction.
func (r *T) Begin(c cx) (t store.Txn, err er) {
	if r.DB.IsClosed() {
		err = store.ErrClosed
		return
	}
	return &txn{
		reader:  reader{r.DB.NewTransaction(true)},
		r:       r,
		overlay: make(map[st]pending),
	}, nil
}

// Update runs fn in a new transaction and commits it if fn succeeds.
func (r *T) Update(c cx, fn func(t store.Txn) (err er)) (err er) {
	var t store.Txn
	if t, err = r.Begin(c); err != nil {
		return
	}
	defer t.Discard()
	if err = fn(t); err != nil {
		return
	}
	return t.Commit(c)
}

func (t *txn) readOnly() *badger.Txn {
	if t.ro == nil {
		t.ro = t.r.DB.NewTransaction(false)
	}
	return t.ro
}

func (t *txn) Get(c cx, col store.Collection, key by,
	opts store.Options) (val by, found bo, err er) {

	if !opts.Has(store.Transparent) {
		return t.reader.Get(c, col, key, opts)
	}
	if p, ok := t.overlay[st(prefixes.DataKey(uint64(col), key))]; ok {
		if p.deleted {
			return
		}
		return append(by{}, p.val...), true, nil
	}
	return reader{t.readOnly()}.Get(c, col, key, opts)
}

func (t *txn) Has(c cx, col store.Collection, key by,
	opts store.Options) (found bo, err er) {

	if !opts.Has(store.Transparent) {
		return t.reader.Has(c, col, key, opts)
	}
	if p, ok := t.overlay[st(prefixes.DataKey(uint64(col), key))]; ok {
		return !p.deleted, nil
	}
	return reader{t.readOnly()}.Has(c, col, key, opts)
}

// Scan iterates the collection. A transparent scan merges the write overlay
// over the committed state in key order.
func (t *txn) Scan(c cx, col store.Collection, start by, opts store.Options,
	fn func(key, val by) (more bo, err er)) (err er) {

	if !opts.Has(store.Transparent) {
		return t.reader.Scan(c, col, start, opts, fn)
	}
	first := prefixes.DataKey(uint64(col), start)
	prefix := prefixes.CollectionPrefix(uint64(col))
	var keys []st
	for k := range t.overlay {
		if k >= st(first) && bytes.HasPrefix(by(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	// emit passes on overlay entries up to and including limit, nil for all.
	var more = true
	emit := func(limit by) (err er) {
		for more && len(keys) > 0 && (limit == nil || keys[0] <= st(limit)) {
			k := keys[0]
			keys = keys[1:]
			if p := t.overlay[k]; !p.deleted {
				if more, err = fn(prefixes.UserKey(by(k)), p.val); err != nil {
					return
				}
			}
		}
		return
	}
	err = reader{t.readOnly()}.Scan(c, col, start, opts, func(key, val by) (bo, er) {
		full := prefixes.DataKey(uint64(col), key)
		if err := emit(full); err != nil || !more {
			return false, err
		}
		if _, ok := t.overlay[st(full)]; ok {
			return true, nil
		}
		var err er
		more, err = fn(key, val)
		return more, err
	})
	if err != nil || !more {
		return
	}
	return emit(nil)
}

func (t *txn) Put(c cx, col store.Collection, key, val by) (err er) {
	k := prefixes.DataKey(uint64(col), key)
	v := append(by{}, val...)
	if err = t.tx.Set(k, v); chk.E(err) {
		return
	}
	t.overlay[st(k)] = pending{val: v}
	return
}

func (t *txn) Delete(c cx, col store.Collection, key by) (err er) {
	k := prefixes.DataKey(uint64(col), key)
	if err = t.tx.Delete(k); chk.E(err) {
		return
	}
	t.overlay[st(k)] = pending{deleted: true}
	return
}

// Commit applies the transaction, mapping badger conflicts to
// store.ErrConflict.
func (t *txn) Commit(c cx) (err er) {
	if t.ro != nil {
		t.ro.Discard()
		t.ro = nil
	}
	if err = t.tx.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			err = errors.Wrap(store.ErrConflict, err.Error())
			log.D.Ln(err)
			return
		}
		chk.E(err)
	}
	return
}

func (t *txn) Discard() {
	if t.ro != nil {
		t.ro.Discard()
		t.ro = nil
	}
	t.tx.Discard()
}
