// Package gravel is a pebble based blob store with the same collections and
// key layout as ratel.
//
// Pebble has no transactions of its own. A transaction here is an indexed
// batch, which gives read-your-writes, plus a read set holding an xxhash
// fingerprint of every value the transaction observed. Commit re-reads the
// read set under the engine commit lock and refuses with store.ErrConflict if
// anything changed, otherwise it applies the batch.
package gravel

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"strata.lol/context"
	"strata.lol/lol"
	"strata.lol/ratel/prefixes"
	"strata.lol/store"
)

// T is a pebble blob store database.
type T struct {
	Ctx          context.T
	dataDir      string
	InMemory     bool
	CacheSize    int
	InitLogLevel int
	Logger       *logger
	// DB is the pebble db
	DB *pebble.DB
	// commit serializes read set validation with the application of writes.
	commit sync.Mutex
	// catalog serializes the creation of collections.
	catalog sync.Mutex
	closed  atomic.Bool
}

var _ store.I = (*T)(nil)

// Params is the configuration of a new gravel.T.
type Params struct {
	Ctx                 context.T
	CacheSize, LogLevel int
	InMemory            bool
}

// New configures a new gravel.T, Init must be called to open it.
func New(p Params) *T {
	if p.Ctx == nil {
		p.Ctx = context.Bg()
	}
	return &T{
		Ctx:          p.Ctx,
		CacheSize:    p.CacheSize,
		InitLogLevel: p.LogLevel,
		InMemory:     p.InMemory,
	}
}

// Init opens the database at path, or in memory if InMemory is set.
func (g *T) Init(path st) (err er) {
	g.Logger = NewLogger(g.InitLogLevel, path)
	opts := &pebble.Options{Logger: g.Logger}
	if g.CacheSize > 0 {
		cache := pebble.NewCache(int64(g.CacheSize))
		defer cache.Unref()
		opts.Cache = cache
	}
	if g.InMemory {
		log.I.Ln("opening in-memory gravel store")
		opts.FS = vfs.NewMem()
		path = ""
	} else {
		g.dataDir = path
		log.I.Ln("opening gravel store at", path)
	}
	if g.DB, err = pebble.Open(path, opts); chk.E(err) {
		return
	}
	return g.runMigrations()
}

const Version = 1

func (g *T) runMigrations() (err er) {
	var v by
	var found bo
	if v, found, err = g.get(g.DB, prefixes.Version.Key()); chk.E(err) {
		return
	}
	if found && len(v) == 2 && uint16(v[0])<<8|uint16(v[1]) >= Version {
		return
	}
	return g.DB.Set(prefixes.Version.Key(), by{0, Version}, pebble.Sync)
}

// SetLogLevel changes the level of the pebble logger.
func (g *T) SetLogLevel(level string) {
	log.I.F("setting db log level %s", level)
	g.Logger.SetLogLevel(lol.GetLogLevel(level))
}

// Path returns the path where the database files are stored.
func (g *T) Path() string { return g.dataDir }

// source is what pebble databases, indexed batches and snapshots have in
// common.
type source interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

// get copies the value under a raw key out of src.
func (g *T) get(src source, key by) (val by, found bo, err er) {
	var v by
	var closer io.Closer
	if v, closer, err = src.Get(key); err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			err = nil
		}
		return
	}
	val = append(by{}, v...)
	found = true
	chk.E(closer.Close())
	return
}

// Sync makes everything written so far durable.
func (g *T) Sync() (err er) {
	if g.InMemory {
		return
	}
	return g.DB.LogData(nil, pebble.Sync)
}

// Close the database.
func (g *T) Close() (err er) {
	g.commit.Lock()
	defer g.commit.Unlock()
	if !g.closed.CompareAndSwap(false, true) {
		return
	}
	log.I.F("closing database %s", g.dataDir)
	if err = g.DB.Close(); chk.E(err) {
		return
	}
	log.I.F("database closed")
	return
}

// Nuke deletes every collection and all the data in the database.
func (g *T) Nuke() (err er) {
	log.W.F("nuking database at %s", g.dataDir)
	g.commit.Lock()
	defer g.commit.Unlock()
	return g.DB.DeleteRange(by{prefixes.Data.B()}, by{prefixes.Counter.B() + 1},
		pebble.Sync)
}

// upperBound is the smallest key greater than every key with the prefix.
func upperBound(prefix by) (b by) {
	b = append(by{}, prefix...)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i]++; b[i] != 0 {
			return b[:i+1]
		}
	}
	return nil
}
