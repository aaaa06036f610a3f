package gravel

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"strata.lol/ratel/keys/serial"
	"strata.lol/ratel/prefixes"
	"strata.lol/store"
)

// Collection returns the handle of the named collection, creating it if it
// does not exist yet. Ids come from the Counter key.
func (g *T) Collection(c cx, name st) (col store.Collection, err er) {
	if name == "" {
		return store.Main, nil
	}
	g.catalog.Lock()
	defer g.catalog.Unlock()
	var v by
	var found bo
	if v, found, err = g.get(g.DB, prefixes.CatalogKey(name)); chk.E(err) || found {
		col = store.Collection(serial.New(v).Uint64())
		return
	}
	var last uint64
	if v, found, err = g.get(g.DB, prefixes.Counter.Key()); chk.E(err) {
		return
	}
	if found {
		last = serial.New(v).Uint64()
	}
	id := serial.Make(last + 1)
	b := g.DB.NewBatch()
	defer func() { chk.E(b.Close()) }()
	if err = b.Set(prefixes.Counter.Key(), id.Val, nil); chk.E(err) {
		return
	}
	if err = b.Set(prefixes.CatalogKey(name), id.Val, nil); chk.E(err) {
		return
	}
	g.commit.Lock()
	defer g.commit.Unlock()
	if err = b.Commit(pebble.Sync); chk.E(err) {
		return
	}
	log.D.F("creating collection '%s' with id %d", name, last+1)
	return store.Collection(last + 1), nil
}

// Collections lists the named collections in name order.
func (g *T) Collections(c cx) (list []store.Named, err er) {
	prefix := by{prefixes.Catalog.B()}
	var it *pebble.Iterator
	if it, err = g.DB.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	}); chk.E(err) {
		return
	}
	defer func() { chk.E(it.Close()) }()
	for valid := it.First(); valid; valid = it.Next() {
		list = append(list, store.Named{
			Name:       prefixes.CatalogName(it.Key()),
			Collection: store.Collection(serial.New(append(by{}, it.Value()...)).Uint64()),
		})
	}
	return list, it.Error()
}

// Drop clears or removes a collection. The main collection can only be
// cleared.
func (g *T) Drop(c cx, col store.Collection, mode store.DropMode) (err er) {
	prefix := prefixes.CollectionPrefix(uint64(col))
	switch mode {
	case store.DropKeysValsHandle:
		if col == store.Main {
			return errors.Wrap(store.ErrArgs, "the main collection can not be removed")
		}
		var list []store.Named
		if list, err = g.Collections(c); chk.E(err) {
			return
		}
		b := g.DB.NewBatch()
		defer func() { chk.E(b.Close()) }()
		if err = b.DeleteRange(prefix, upperBound(prefix), nil); chk.E(err) {
			return
		}
		for _, n := range list {
			if n.Collection == col {
				log.I.F("removing collection '%s'", n.Name)
				if err = b.Delete(prefixes.CatalogKey(n.Name), nil); chk.E(err) {
					return
				}
			}
		}
		g.commit.Lock()
		defer g.commit.Unlock()
		return b.Commit(pebble.Sync)
	case store.DropKeysVals:
		log.I.F("clearing collection %d", col)
		g.commit.Lock()
		defer g.commit.Unlock()
		return g.DB.DeleteRange(prefix, upperBound(prefix), pebble.Sync)
	case store.DropVals:
		g.commit.Lock()
		defer g.commit.Unlock()
		var it *pebble.Iterator
		if it, err = g.DB.NewIter(&pebble.IterOptions{
			LowerBound: prefix,
			UpperBound: upperBound(prefix),
		}); chk.E(err) {
			return
		}
		b := g.DB.NewBatch()
		defer func() { chk.E(b.Close()) }()
		for valid := it.First(); valid; valid = it.Next() {
			if err = b.Set(it.Key(), nil, nil); chk.E(err) {
				chk.E(it.Close())
				return
			}
		}
		if err = it.Close(); chk.E(err) {
			return
		}
		log.I.F("emptying %d values of collection %d", b.Count(), col)
		return b.Commit(pebble.Sync)
	default:
		return errors.Wrapf(store.ErrArgs, "unknown drop mode %d", mode)
	}
}
