package store

import (
	"github.com/pkg/errors"

	"strata.lol/arena"
	"strata.lol/strided"
)

// LengthMissing is the length reported for an absent key.
const LengthMissing = ^uint32(0)

// Values is the columnar result of a batched read, all of it carved from the
// caller's arena. Offsets index into Data, absent entries have LengthMissing
// and take no room in Data.
type Values struct {
	Presences strided.Octets
	Offsets   []uint32
	Lengths   []uint32
	Data      by
}

// At returns the value of task i, nil if absent.
func (v Values) At(i no) (val by, found bo) {
	if !v.Presences.Get(i) {
		return
	}
	if v.Data == nil {
		return nil, true
	}
	return v.Data[v.Offsets[i] : v.Offsets[i]+v.Lengths[i]], true
}

// ReadBatch reads each key of the tape from col. With ReadLengths only the
// presences and lengths are filled in.
func ReadBatch(c cx, r Reader, col Collection, keys strided.Tape, opts Options,
	a *arena.T) (out Values, err er) {

	n := keys.Len()
	if !keys.Fits(n) {
		err = errors.Wrap(ErrArgs, "keys tape does not fit its task count")
		return
	}
	if out.Presences, err = a.Octets(n); err != nil {
		return
	}
	if out.Lengths, err = a.Uint32s(n); err != nil {
		return
	}
	vals := make([]by, n)
	var total no
	for i := range n {
		var found bo
		if opts.Has(ReadLengths) {
			var val by
			if val, found, err = r.Get(c, col, keys.At(i), opts); chk.E(err) {
				return
			}
			out.Lengths[i] = uint32(len(val))
		} else {
			if vals[i], found, err = r.Get(c, col, keys.At(i), opts); chk.E(err) {
				return
			}
			out.Lengths[i] = uint32(len(vals[i]))
			total += len(vals[i])
		}
		out.Presences.Set(i, found)
		if !found {
			out.Lengths[i] = LengthMissing
		}
	}
	if opts.Has(ReadLengths) {
		return
	}
	if out.Offsets, err = a.Uint32s(n); err != nil {
		return
	}
	if out.Data, err = a.Bytes(total); err != nil {
		return
	}
	var off no
	for i, v := range vals {
		out.Offsets[i] = uint32(off)
		off += copy(out.Data[off:], v)
	}
	return
}

// WriteBatch puts each key of the tape with the matching value, or deletes it
// where presences has the bit cleared. A nil presences means every value is
// present. The first failing task stops the batch.
func WriteBatch(c cx, w Writer, col Collection, keys, vals strided.Tape,
	presences strided.Octets) (err er) {

	n := strided.Count(keys, vals)
	if !keys.Fits(n) || !vals.Fits(n) {
		err = errors.Wrap(ErrArgs, "tapes do not fit the task count")
		return
	}
	if presences != nil && len(presences)*8 < n {
		err = errors.Wrap(ErrArgs, "presences shorter than the task count")
		return
	}
	for i := range n {
		if presences != nil && !presences.Get(i) {
			if err = w.Delete(c, col, keys.At(i)); chk.E(err) {
				return
			}
			continue
		}
		if err = w.Put(c, col, keys.At(i), vals.At(i)); chk.E(err) {
			return
		}
	}
	return
}

// Retry runs fn in a transaction, retrying up to attempts times while the
// commit fails with ErrConflict.
func Retry(c cx, db Transactor, attempts no, fn func(txn Txn) (err er)) (err er) {
	for i := range max(attempts, 1) {
		if err = db.Update(c, fn); !errors.Is(err, ErrConflict) {
			return
		}
		log.D.F("transaction conflict, attempt %d of %d", i+1, attempts)
		if cerr := c.Err(); cerr != nil {
			return cerr
		}
	}
	return
}
