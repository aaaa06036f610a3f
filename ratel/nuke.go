package ratel

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"strata.lol/ratel/prefixes"
)

// Nuke deletes every collection and all the data in the database.
func (r *T) Nuke() (err er) {
	log.W.F("nuking database at %s", r.dataDir)
	if err = r.DB.DropPrefix(prefixes.FilterPrefixes...); chk.E(err) {
		return
	}
	if r.InMemory {
		return
	}
	if err = r.DB.RunValueLogGC(0.8); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		chk.E(err)
		return
	}
	return nil
}
