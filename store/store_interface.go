// Package store is the contract of the transactional blob store that the graph
// and path indexes are layered on.
//
// Keys and values are opaque byte strings kept in key order inside named
// collections. Writes inside a transaction become visible to its own reads at
// once and to everyone else at commit, and a commit that would break the
// isolation of a concurrent transaction fails with ErrConflict.
package store

import (
	"io"
)

// I is the interface of a blob store engine.
type I interface {
	Reader
	Writer
	Pather
	// Closer must be called after you're done using the store, to free up
	// resources and so on.
	io.Closer
	Transactor
	Cataloguer
	Syncer
	Nukener
}

// Reader is the read half of a store, a transaction or a snapshot.
type Reader interface {
	// Get returns a copy of the value under key. An absent key is not an error,
	// found is false.
	Get(c cx, col Collection, key by, opts Options) (val by, found bo, err er)
	// Has reports whether key is present without fetching its value.
	Has(c cx, col Collection, key by, opts Options) (found bo, err er)
	// Scan calls fn for each entry of the collection in ascending key order,
	// starting at start (inclusive, nil is the first key), until fn returns
	// false or an error. The slices passed to fn are only valid during the call.
	Scan(c cx, col Collection, start by, opts Options,
		fn func(key, val by) (more bo, err er)) (err er)
}

// Writer is the write half of a store or a transaction. Used directly on an
// engine each call is committed in its own short transaction.
type Writer interface {
	// Put sets key to val, an empty val is stored as a present empty value.
	Put(c cx, col Collection, key, val by) (err er)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(c cx, col Collection, key by) (err er)
}

// Txn is an optimistic read-write transaction.
type Txn interface {
	Reader
	Writer
	// Commit applies the writes atomically, or fails with ErrConflict if a key
	// read by the transaction was changed by another commit in the meantime.
	// The transaction can not be used afterwards.
	Commit(c cx) (err er)
	// Discard drops the transaction. It is safe to call after Commit.
	Discard()
}

// Snapshot is a read-only point in time view of the store.
type Snapshot interface {
	Reader
	Discard()
}

type Transactor interface {
	// Begin opens a read-write transaction.
	Begin(c cx) (txn Txn, err er)
	// Update runs fn in a new transaction and commits it if fn succeeds.
	Update(c cx, fn func(txn Txn) (err er)) (err er)
	// View runs fn against a read-only snapshot.
	View(c cx, fn func(r Reader) (err er)) (err er)
	// Snapshot opens a read-only view that must be discarded by the caller.
	Snapshot(c cx) (snap Snapshot, err er)
}

type Cataloguer interface {
	// Collection returns the handle of the named collection, creating it if it
	// does not exist. The empty name is the Main collection.
	Collection(c cx, name st) (col Collection, err er)
	// Collections lists the named collections in name order.
	Collections(c cx) (list []Named, err er)
	// Drop clears or removes a collection according to mode.
	Drop(c cx, col Collection, mode DropMode) (err er)
}

type Pather interface {
	// Path returns the directory of the database, empty for an in-memory
	// store.
	Path() (s st)
}

type Syncer interface {
	// Sync signals the store to flush its buffers.
	Sync() (err er)
}

type Nukener interface {
	// Nuke deletes every collection and everything in the database.
	Nuke() (err er)
}
