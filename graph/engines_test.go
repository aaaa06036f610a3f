package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"strata.lol/gravel"
	"strata.lol/lol"
	"strata.lol/ratel"
	"strata.lol/store"
)

type engine struct {
	name string
	open func(t *testing.T) store.I
}

var engines = []engine{
	{"ratel", func(t *testing.T) store.I {
		r := ratel.New(ratel.BackendParams{LogLevel: lol.Warn, InMemory: true})
		require.NoError(t, r.Init(""))
		t.Cleanup(func() { chk.E(r.Close()) })
		return r
	}},
	{"gravel", func(t *testing.T) store.I {
		g := gravel.New(gravel.Params{LogLevel: lol.Warn, InMemory: true})
		require.NoError(t, g.Init(""))
		t.Cleanup(func() { chk.E(g.Close()) })
		return g
	}},
}

func eachEngine(t *testing.T, fn func(t *testing.T, db store.I)) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) { fn(t, e.open(t)) })
	}
}
