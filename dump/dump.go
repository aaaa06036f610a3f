// Package dump writes the entries of a collection as text lines of hex key and
// hex value, and reads them back.
package dump

import (
	"bufio"
	"bytes"
	"io"

	"strata.lol/hex"
	"strata.lol/store"
	"strata.lol/units"
)

// Export writes every entry of a collection as a line of hex key and hex
// value separated by a space, in key order.
func Export(c cx, r store.Reader, col store.Collection, w io.Writer) (err er) {
	line := make(by, 0, 256)
	return r.Scan(c, col, nil, store.Default, func(key, val by) (more bo, err er) {
		line = hex.EncAppend(line[:0], key)
		line = append(line, ' ')
		line = hex.EncAppend(line, val)
		line = append(line, '\n')
		if _, err = w.Write(line); err != nil {
			return
		}
		return true, nil
	})
}

// Batch is the number of entries committed together by Import.
const Batch = 1024

// Import reads lines written by Export and puts them into the collection, a
// batch of entries per transaction. It returns the number of entries stored.
func Import(c cx, db store.Transactor, col store.Collection, rd io.Reader) (n no, err er) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make(by, 0, units.Mib), 64*units.Mib)
	var keys, vals []by
	flush := func() (err er) {
		if len(keys) == 0 {
			return
		}
		if err = db.Update(c, func(txn store.Txn) (err er) {
			for i := range keys {
				if err = txn.Put(c, col, keys[i], vals[i]); err != nil {
					return
				}
			}
			return
		}); err != nil {
			return
		}
		n += len(keys)
		keys, vals = keys[:0], vals[:0]
		return
	}
	for scanner.Scan() {
		line := bytes.TrimSuffix(scanner.Bytes(), []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		k, v, found := bytes.Cut(line, []byte{' '})
		if !found {
			err = errorf.E("import line %d has no value", n+len(keys)+1)
			return
		}
		var key, val by
		if key, err = hex.DecAppend(nil, k); err != nil {
			return
		}
		if val, err = hex.DecAppend(nil, v); err != nil {
			return
		}
		keys, vals = append(keys, key), append(vals, val)
		if len(keys) >= Batch {
			if err = flush(); chk.E(err) {
				return
			}
		}
	}
	if err = scanner.Err(); chk.E(err) {
		return
	}
	err = flush()
	return
}
