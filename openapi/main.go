// Package openapi is the HTTP API of the strata server, the graph and path
// indexes of a store exposed as huma operations.
package openapi

import (
	"crypto/ecdsa"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
	"strata.lol/servemux"
	"strata.lol/store"
)

// Operations holds what the handlers need. Every request gets a fresh arena
// of ArenaLimit bytes.
type Operations struct {
	DB         store.I
	ArenaLimit no
	// Retries is the number of attempts of an atomic write that conflicts.
	Retries no
	// AdminKey verifies the tokens of the admin operations, which are refused
	// when it is nil.
	AdminKey *ecdsa.PublicKey
	// Shutdown stops the server.
	Shutdown context.F
	path     string
}

// New creates the huma API on the router and registers the methods of the
// operations under path.
func New(x *Operations, name, version, description, path string,
	sm *servemux.S) (api huma.API) {

	x.path = path
	api = NewHuma(sm, name, version, description)
	huma.AutoRegister(api, x)
	return
}
