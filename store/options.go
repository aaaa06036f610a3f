package store

import (
	"github.com/pkg/errors"
)

// Options is a bit set of flags modifying store and index operations.
type Options uint32

const (
	Default Options = 0
	// WriteFlush asks the engine to sync its log before a write returns.
	WriteFlush Options = 1 << iota
	// Transparent reads see the transaction's own writes but are not tracked
	// for conflict detection.
	Transparent
	// DontDiscardMemory is accepted for compatibility. Arenas are never reset
	// by an operation so it has no effect.
	DontDiscardMemory
	// ReadLengths skips the export of values or edges, only lengths and
	// degrees are returned.
	ReadLengths
)

// Has reports whether every bit of o2 is set in o.
func (o Options) Has(o2 Options) bo { return o&o2 == o2 && o2 != 0 }

// Collection is the handle of a collection of an engine.
type Collection uint64

// Main is the collection that always exists and can only be cleared.
const Main Collection = 0

// Named is an entry of the collection catalog.
type Named struct {
	Name       st
	Collection Collection
}

// DropMode selects what Drop removes.
type DropMode byte

const (
	// DropKeysValsHandle removes all entries and the collection itself.
	DropKeysValsHandle DropMode = iota
	// DropKeysVals removes all entries but keeps the collection.
	DropKeysVals
	// DropVals keeps the keys and empties every value.
	DropVals
)

var dropModes = map[st]DropMode{
	"keys-vals-handle": DropKeysValsHandle,
	"keys-vals":        DropKeysVals,
	"vals":             DropVals,
}

// ParseDropMode reads the name of a drop mode, the empty string is
// DropKeysValsHandle.
func ParseDropMode(s st) (m DropMode, err er) {
	if s == "" {
		return
	}
	var ok bo
	if m, ok = dropModes[s]; !ok {
		err = errors.Wrapf(ErrArgs, "unknown drop mode '%s'", s)
	}
	return
}

func (m DropMode) String() st {
	for k, v := range dropModes {
		if v == m {
			return k
		}
	}
	return "unknown"
}

var (
	// ErrConflict is returned by Commit when another transaction changed a key
	// this one depends on. The caller may retry the whole transaction.
	ErrConflict = errors.New("transaction conflict")
	// ErrArgs is returned for malformed arguments: batch columns too short for
	// the task count, tapes pointing outside their data, or forbidden drops.
	ErrArgs = errors.New("invalid arguments")
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("store is closed")
)
