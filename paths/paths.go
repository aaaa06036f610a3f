// Package paths stores values under byte string paths and finds paths by
// regular expression.
//
// A path is the literal key of its value, so a batch read is one point lookup
// per path and a match is a range scan from the literal prefix of the
// expression. Paths are usually made of components joined by a separator,
// which only Glob interprets.
package paths

import (
	"github.com/pkg/errors"

	"strata.lol/arena"
	"strata.lol/store"
	"strata.lol/strided"
)

// ErrPattern is reported for a pattern that does not compile.
var ErrPattern = errors.New("invalid pattern")

// T is a path session over one collection, optionally inside a transaction.
// It is not safe for concurrent use.
type T struct {
	db  store.I
	col store.Collection
	txn store.Txn
	a   *arena.T
}

// New creates a session. With a nil txn each path written is committed on its
// own.
func New(db store.I, col store.Collection, txn store.Txn, a *arena.T) *T {
	if a == nil {
		a = arena.New(0)
	}
	return &T{db: db, col: col, txn: txn, a: a}
}

// Arena is the arena results are carved from.
func (p *T) Arena() *arena.T { return p.a }

func (p *T) reader() store.Reader {
	if p.txn != nil {
		return p.txn
	}
	return p.db
}

func (p *T) writer() store.Writer {
	if p.txn != nil {
		return p.txn
	}
	return p.db
}

// Write stores each value under its path, or deletes the path where the
// presence bit is cleared. A nil presences writes every value. An empty value
// is stored as a present empty value. The separator does not affect the keys.
// The empty path is rejected with store.ErrArgs before anything is written, as
// an empty cursor already means the start of the keyspace to Match.
func (p *T) Write(c cx, paths, values strided.Tape, presences strided.Octets, sep byte,
	opts store.Options) (err er) {

	if n := strided.Count(paths, values); paths.Fits(n) {
		for i := range n {
			if len(paths.At(i)) == 0 {
				return errors.Wrapf(store.ErrArgs, "path %d is empty", i)
			}
		}
	}
	if err = store.WriteBatch(c, p.writer(), p.col, paths, values, presences); err != nil {
		return
	}
	if p.txn == nil && opts.Has(store.WriteFlush) {
		err = p.db.Sync()
	}
	return
}

// Read fetches the value of each path in input order. Absent paths have
// LengthMissing and a cleared presence bit.
func (p *T) Read(c cx, paths strided.Tape, sep byte, opts store.Options) (vals store.Values,
	err er) {

	return store.ReadBatch(c, p.reader(), p.col, paths, opts, p.a)
}
