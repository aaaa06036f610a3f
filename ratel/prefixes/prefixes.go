// Package prefixes defines the tables of the store and the layout of their keys.
package prefixes

import (
	"strata.lol/ratel/keys/arb"
	"strata.lol/ratel/keys/index"
	"strata.lol/ratel/keys/serial"
)

const (
	// Version is the key that stores the version number, the value is a 16-bit
	// integer (2 bytes)
	//
	//   [ 255 ][ 2 byte/16 bit version code ]
	Version index.P = 255
)

const (
	// Data holds the user entries of every collection. The main collection has
	// id 0, named collections get an id from the collection sequence.
	//
	//   [ 0 ][ 8 bytes collection id ][ user key ] : value: [ user value ]
	Data index.P = iota

	// Catalog maps the name of a collection to its id.
	//
	//   [ 1 ][ collection name ] : value: [ 8 bytes collection id ]
	Catalog

	// Counter stores the last collection id handed out, for engines that have
	// no sequence of their own.
	//
	//   [ 2 ] : value: [ 8 bytes collection id ]
	Counter
)

// FilterPrefixes is the list of tables holding user data, used when nuking the
// store.
var FilterPrefixes = [][]byte{
	{Data.B()},
	{Catalog.B()},
	{Counter.B()},
}

// KeySizes are the byte size of keys of each type of key prefix, not counting
// variable length user keys and names. int(P) or call the P.I() method
// corresponds to the index 1:1.
var KeySizes = []int{
	// Data
	1 + serial.Len,
	// Catalog
	1,
	// Counter
	1,
}

// CollectionPrefix is the start of every key of the collection with the given id.
func CollectionPrefix(id uint64) []byte { return Data.Key(serial.Make(id)) }

// DataKey is the store key of user key k in collection id.
func DataKey(id uint64, k []byte) (key []byte) {
	key = make([]byte, 0, KeySizes[Data]+len(k))
	key = append(key, Data.B())
	key = append(key, serial.Make(id).Val...)
	return append(key, k...)
}

// UserKey strips the table prefix and collection id from a Data key.
func UserKey(key []byte) []byte { return key[KeySizes[Data]:] }

// CatalogKey is the key of a collection name in the catalog.
func CatalogKey(name string) []byte { return Catalog.Key(arb.New(name)) }

// CatalogName extracts the collection name from a Catalog key.
func CatalogName(key []byte) string { return string(key[KeySizes[Catalog]:]) }
