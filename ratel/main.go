// Package ratel is a badger DB based blob store with named collections and
// optimistic transactions, the default engine under the graph and path
// indexes.
package ratel

import (
	"sync"

	"github.com/dgraph-io/badger/v4"

	"strata.lol/context"
	"strata.lol/lol"
	"strata.lol/store"
)

// T is a badger blob store database.
type T struct {
	Ctx            context.T
	WG             *sync.WaitGroup
	dataDir        string
	InMemory       bool
	BlockCacheSize int
	// Compression is one of none, snappy or zstd.
	Compression  string
	InitLogLevel int
	Logger       *logger
	// DB is the badger db
	DB *badger.DB
	// seq is the monotonic collision free source of collection ids.
	seq *badger.Sequence
	// catalog serializes the creation of collections.
	catalog sync.Mutex
	// Flatten should be set to true to trigger a flatten at close, after a
	// large load.
	Flatten bool
}

func (r *T) SetLogLevel(level string) {
	log.I.F("setting db log level %s", level)
	r.Logger.SetLogLevel(lol.GetLogLevel(level))
}

var _ store.I = (*T)(nil)

// BackendParams is the configurations used in creating a new ratel.T.
type BackendParams struct {
	Ctx                      context.T
	WG                       *sync.WaitGroup
	BlockCacheSize, LogLevel int
	Compression              string
	InMemory                 bool
}

// New configures a new ratel.T blob store, Init must be called to open it.
func New(p BackendParams) *T {
	if p.Ctx == nil {
		p.Ctx = context.Bg()
	}
	if p.WG == nil {
		p.WG = &sync.WaitGroup{}
	}
	return &T{
		Ctx:            p.Ctx,
		WG:             p.WG,
		BlockCacheSize: p.BlockCacheSize,
		Compression:    p.Compression,
		InitLogLevel:   p.LogLevel,
		InMemory:       p.InMemory,
	}
}

// Path returns the path where the database files are stored.
func (r *T) Path() string { return r.dataDir }

// Serial returns the next monotonic conflict free unique serial on the database.
func (r *T) Serial() (ser uint64, err error) {
	if ser, err = r.seq.Next(); chk.E(err) {
	}
	return
}
