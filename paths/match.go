package paths

import (
	"bytes"
	"regexp"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"

	"strata.lol/store"
	"strata.lol/strided"
)

// Unlimited is the limit of a task given no limit column.
const Unlimited = ^uint32(0)

// cacheSize bounds the compiled pattern cache, it is emptied when full.
const cacheSize = 4096

type compiled struct {
	re     *regexp.Regexp
	prefix by
	err    er
}

var cache = xsync.NewMapOf[st, *compiled]()

// compile returns the anchored expression of a pattern and the literal prefix
// every path it matches starts with. Failures are cached as well.
func compile(pattern st) (cp *compiled) {
	if cp, _ = cache.Load(pattern); cp != nil {
		return
	}
	if cache.Size() >= cacheSize {
		cache.Clear()
	}
	cp, _ = cache.LoadOrCompute(pattern, func() *compiled {
		// the bare pattern must compile on its own so that the anchoring group
		// can not be closed from inside it, and it yields the literal prefix
		un, err := regexp.Compile(pattern)
		if err != nil {
			return &compiled{err: errors.Wrapf(ErrPattern, "%q: %v", pattern, err)}
		}
		prefix, _ := un.LiteralPrefix()
		var re *regexp.Regexp
		if re, err = regexp.Compile(`^(?:` + pattern + `)$`); err != nil {
			return &compiled{err: errors.Wrapf(ErrPattern, "%q: %v", pattern, err)}
		}
		return &compiled{re: re, prefix: by(prefix)}
	})
	return
}

// Matches is the result of Match, carved from the session arena except for
// Errors.
type Matches struct {
	// Counts holds the number of paths found by each task.
	Counts []uint32
	// Firsts holds the index in Offsets of the first path of each task.
	Firsts []uint32
	// Offsets and Lengths locate each path in Data.
	Offsets []uint32
	Lengths []uint32
	Data    by
	// Errors holds the compile error of each task, nil where it ran.
	Errors []er
}

// Of returns the paths found by task i.
func (m Matches) Of(i no) strided.Tape {
	f, n := no(m.Firsts[i]), no(m.Counts[i])
	return strided.Tape{
		Data:    m.Data,
		Offsets: strided.Dense(m.Offsets[f : f+n]),
		Lengths: strided.Dense(m.Lengths[f : f+n]),
	}
}

// Last is the last path found by task i, the cursor of its next page, nil if
// it found nothing.
func (m Matches) Last(i no) by {
	if m.Counts[i] == 0 {
		return nil
	}
	j := m.Firsts[i] + m.Counts[i] - 1
	return m.Data[m.Offsets[j] : m.Offsets[j]+m.Lengths[j]]
}

// Match finds for each pattern the stored paths it matches in full, in key
// order, starting strictly after the task's previous path (empty or a zero
// tape starts at the first key) and stopping after the task's limit. A zero
// limits column means Unlimited. A pattern that fails to compile sets the
// task's error and finds nothing, the other tasks are unaffected.
func (p *T) Match(c cx, patterns, previous strided.Tape, limits strided.T[uint32], sep byte,
	opts store.Options) (m Matches, err er) {

	cursors := previous.Len() > 0
	bounded := limits.Len() > 0
	cols := []strided.Column{patterns}
	if cursors {
		cols = append(cols, previous)
	}
	if bounded {
		cols = append(cols, limits)
	}
	n := strided.Count(cols...)
	if !patterns.Fits(n) || (cursors && !previous.Fits(n)) || (bounded && !limits.Fits(n)) {
		err = errors.Wrapf(store.ErrArgs, "columns do not fit %d patterns", n)
		return
	}
	found := make([][]by, n)
	m.Errors = make([]er, n)
	var paths, size no
	for i := range n {
		if err = c.Err(); err != nil {
			return
		}
		limit := Unlimited
		if bounded {
			limit = limits.At(i)
		}
		var after by
		if cursors {
			after = previous.At(i)
		}
		cp := compile(st(patterns.At(i)))
		if cp.err != nil {
			m.Errors[i] = cp.err
			continue
		}
		if found[i], err = p.scan(c, cp, after, limit, opts); chk.E(err) {
			return
		}
		paths += len(found[i])
		for _, f := range found[i] {
			size += len(f)
		}
	}
	if m.Counts, err = p.a.Uint32s(n); err != nil {
		return
	}
	if m.Firsts, err = p.a.Uint32s(n); err != nil {
		return
	}
	if m.Offsets, err = p.a.Uint32s(paths); err != nil {
		return
	}
	if m.Lengths, err = p.a.Uint32s(paths); err != nil {
		return
	}
	if m.Data, err = p.a.Bytes(size); err != nil {
		return
	}
	var j, off no
	for i := range n {
		m.Counts[i] = uint32(len(found[i]))
		m.Firsts[i] = uint32(j)
		for _, f := range found[i] {
			m.Offsets[j] = uint32(off)
			m.Lengths[j] = uint32(len(f))
			off += copy(m.Data[off:], f)
			j++
		}
	}
	return
}

// scan walks the keys from the later of the literal prefix and the cursor,
// collecting copies of those the expression matches.
func (p *T) scan(c cx, cp *compiled, after by, limit uint32,
	opts store.Options) (found []by, err er) {

	if limit == 0 {
		return
	}
	start := cp.prefix
	if len(after) > 0 {
		// the smallest key greater than the cursor
		next := append(append(make(by, 0, len(after)+1), after...), 0)
		if bytes.Compare(next, start) > 0 {
			start = next
		}
	}
	err = p.reader().Scan(c, p.col, start, opts, func(key, val by) (more bo, err er) {
		if !bytes.HasPrefix(key, cp.prefix) {
			return
		}
		if err = c.Err(); err != nil {
			return
		}
		if cp.re.Match(key) {
			found = append(found, bytes.Clone(key))
			if uint32(len(found)) >= limit {
				return
			}
		}
		return true, nil
	})
	return
}
