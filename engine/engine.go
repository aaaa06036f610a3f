// Package engine opens one of the blob store engines by name.
package engine

import (
	"sync"

	"strata.lol/gravel"
	"strata.lol/lol"
	"strata.lol/ratel"
	"strata.lol/store"
	"strata.lol/units"
)

// Names of the engines.
const (
	Ratel  = "ratel"
	Gravel = "gravel"
)

// Params selects and tunes an engine.
type Params struct {
	Engine      string
	DataDir     string
	InMemory    bool
	CacheMb     int
	Compression string
	LogLevel    string
}

// Open creates and initialises the engine. The context and wait group are
// handed to the engines that run background work.
func Open(c cx, wg *sync.WaitGroup, p Params) (db store.I, err er) {
	level := lol.GetLogLevel(p.LogLevel)
	switch p.Engine {
	case Ratel, "":
		r := ratel.New(ratel.BackendParams{
			Ctx:            c,
			WG:             wg,
			BlockCacheSize: p.CacheMb * units.Mb,
			LogLevel:       level,
			Compression:    p.Compression,
			InMemory:       p.InMemory,
		})
		if err = r.Init(p.DataDir); chk.E(err) {
			return
		}
		db = r
	case Gravel:
		g := gravel.New(gravel.Params{
			Ctx:       c,
			CacheSize: p.CacheMb * units.Mb,
			LogLevel:  level,
			InMemory:  p.InMemory,
		})
		if err = g.Init(p.DataDir); chk.E(err) {
			return
		}
		db = g
	default:
		err = errorf.E("unknown engine '%s', must be %s or %s", p.Engine, Ratel, Gravel)
	}
	return
}
