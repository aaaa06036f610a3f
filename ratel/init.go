package ratel

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"strata.lol/ratel/prefixes"
	"strata.lol/units"
)

// Init opens the database at path, or in memory if InMemory is set, and runs
// the migrations.
func (r *T) Init(path st) (err er) {
	var opts badger.Options
	if r.InMemory {
		log.I.Ln("opening in-memory ratel store")
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		r.dataDir = path
		log.I.Ln("opening ratel store at", r.Path())
		opts = badger.DefaultOptions(r.dataDir)
		opts.CompactL0OnClose = true
		opts.LmaxCompaction = true
	}
	opts.BlockCacheSize = int64(r.BlockCacheSize)
	opts.BlockSize = units.Mb
	switch r.Compression {
	case "", "none":
		opts.Compression = options.None
	case "snappy":
		opts.Compression = options.Snappy
	case "zstd":
		opts.Compression = options.ZSTD
	default:
		return errorf.E("unknown compression type '%s'", r.Compression)
	}
	if opts.Compression != options.None && opts.BlockCacheSize == 0 {
		opts.BlockCacheSize = 16 * units.Mb
	}
	r.Logger = NewLogger(r.InitLogLevel, r.dataDir)
	opts.Logger = r.Logger
	if r.DB, err = badger.Open(opts); chk.E(err) {
		return err
	}
	log.T.Ln("getting collection sequence", r.dataDir)
	if r.seq, err = r.DB.GetSequence(by("collections"), 16); chk.E(err) {
		return err
	}
	log.T.Ln("running migrations", r.dataDir)
	if err = r.runMigrations(); chk.E(err) {
		return log.E.Err("error running migrations: %w; %s", err, r.dataDir)
	}
	return nil
}

const Version = 1

func (r *T) runMigrations() (err er) {
	return r.DB.Update(func(txn *badger.Txn) (err er) {
		var version uint16
		var item *badger.Item
		item, err = txn.Get(prefixes.Version.Key())
		if errors.Is(err, badger.ErrKeyNotFound) {
			version = 0
		} else if chk.E(err) {
			return err
		} else {
			chk.E(item.Value(func(val by) (err er) {
				version = binary.BigEndian.Uint16(val)
				return
			}))
		}
		// do the migrations in increasing steps (there is no rollback)
		if version < Version {
			// if there is any data in the store we will stop and notify the user,
			// otherwise we just set the version and proceed
			prefix := by{prefixes.Data.B()}
			it := txn.NewIterator(badger.IteratorOptions{
				PrefetchValues: false,
				Prefix:         prefix,
			})
			defer it.Close()
			hasAnyEntries := false
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				hasAnyEntries = true
				break
			}
			if hasAnyEntries {
				return fmt.Errorf("your database is at version %d, but in order to "+
					"migrate up to version %d you must dump the data with stratactl, "+
					"delete the database files and load it again", version, Version)
			}
			chk.E(r.bumpVersion(txn, Version))
		}
		return nil
	})
}

func (r *T) bumpVersion(txn *badger.Txn, version uint16) er {
	buf := make(by, 2)
	binary.BigEndian.PutUint16(buf, version)
	return txn.Set(prefixes.Version.Key(), buf)
}
