package ratel

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	pkgerrors "github.com/pkg/errors"

	"strata.lol/ratel/keys/serial"
	"strata.lol/ratel/prefixes"
	"strata.lol/store"
)

func (r *T) lookup(txn *badger.Txn, name st) (col store.Collection, found bo, err er) {
	var item *badger.Item
	if item, err = txn.Get(prefixes.CatalogKey(name)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			err = nil
		}
		return
	}
	var v by
	if v, err = item.ValueCopy(nil); chk.E(err) {
		return
	}
	return store.Collection(serial.New(v).Uint64()), true, nil
}

// Collection returns the handle of the named collection, creating it if it
// does not exist yet.
func (r *T) Collection(c cx, name st) (col store.Collection, err er) {
	if name == "" {
		return store.Main, nil
	}
	var found bo
	if err = r.DB.View(func(txn *badger.Txn) (err er) {
		col, found, err = r.lookup(txn, name)
		return
	}); chk.E(err) || found {
		return
	}
	r.catalog.Lock()
	defer r.catalog.Unlock()
	err = r.DB.Update(func(txn *badger.Txn) (err er) {
		if col, found, err = r.lookup(txn, name); err != nil || found {
			return
		}
		var id uint64
		// the first value of a fresh sequence is 0, which is the main collection
		for id == 0 {
			if id, err = r.Serial(); err != nil {
				return
			}
		}
		col = store.Collection(id)
		log.D.F("creating collection '%s' with id %d", name, id)
		return txn.Set(prefixes.CatalogKey(name), serial.Make(id).Val)
	})
	return
}

// Collections lists the named collections in name order.
func (r *T) Collections(c cx) (list []store.Named, err er) {
	err = r.DB.View(func(txn *badger.Txn) (err er) {
		prefix := by{prefixes.Catalog.B()}
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			Prefix:         prefix,
		})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var v by
			if v, err = item.ValueCopy(nil); chk.E(err) {
				return
			}
			list = append(list, store.Named{
				Name:       prefixes.CatalogName(item.Key()),
				Collection: store.Collection(serial.New(v).Uint64()),
			})
		}
		return
	})
	return
}

// Drop clears or removes a collection. The main collection can only be
// cleared.
func (r *T) Drop(c cx, col store.Collection, mode store.DropMode) (err er) {
	prefix := prefixes.CollectionPrefix(uint64(col))
	switch mode {
	case store.DropKeysValsHandle:
		if col == store.Main {
			return pkgerrors.Wrap(store.ErrArgs, "the main collection can not be removed")
		}
		if err = r.DB.DropPrefix(prefix); chk.E(err) {
			return
		}
		var list []store.Named
		if list, err = r.Collections(c); chk.E(err) {
			return
		}
		for _, n := range list {
			if n.Collection == col {
				log.I.F("removing collection '%s'", n.Name)
				return r.DB.Update(func(txn *badger.Txn) er {
					return txn.Delete(prefixes.CatalogKey(n.Name))
				})
			}
		}
	case store.DropKeysVals:
		log.I.F("clearing collection %d", col)
		return r.DB.DropPrefix(prefix)
	case store.DropVals:
		// keys come out of the iterator in order, ready for the write batch
		var items [][]byte
		if err = r.DB.View(func(txn *badger.Txn) (err er) {
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				items = append(items, it.Item().KeyCopy(nil))
			}
			return
		}); chk.E(err) {
			return
		}
		log.I.F("emptying %d values of collection %d", len(items), col)
		wb := r.DB.NewWriteBatch()
		defer wb.Cancel()
		for _, k := range items {
			if err = wb.Set(k, by{}); chk.E(err) {
				return
			}
		}
		return wb.Flush()
	default:
		return pkgerrors.Wrapf(store.ErrArgs, "unknown drop mode %d", mode)
	}
	return
}
