package paths

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"strata.lol/arena"
	"strata.lol/context"
	"strata.lol/store"
	"strata.lol/strided"
)

func randomPaths(n int) (paths []st) {
	seen := make(map[st]bool)
	for len(paths) < n {
		p := fmt.Sprintf("%c/%d/%c", 'a'+frand.Intn(3), frand.Intn(20), 'x'+frand.Intn(3))
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return
}

// TestPagination pages through every pattern with a range of limits and
// checks the pages add up to the unlimited result.
func TestPagination(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		p := New(db, store.Main, nil, nil)
		all := randomPaths(60)
		require.NoError(t, p.Write(c, strided.TapeOf(all...), strided.BroadcastTape("v", len(all)),
			nil, '/', store.Default))
		for _, pattern := range []st{`.*`, `a/.*`, `b/1[0-9]*/y`, Glob("+/+/z", '/'),
			Glob("c/#", '/')} {
			re := regexp.MustCompile(`^(?:` + pattern + `)$`)
			var want []st
			for _, s := range all {
				if re.MatchString(s) {
					want = append(want, s)
				}
			}
			sort.Strings(want)
			for limit := uint32(1); limit <= 7; limit++ {
				var got []st
				var cursor []byte
				for {
					p.Arena().Reset()
					previous := strided.TapeOf(cursor)
					m, err := p.Match(c, strided.TapeOf(pattern), previous, strided.Of(limit), '/',
						store.Default)
					require.NoError(t, err)
					require.NoError(t, m.Errors[0])
					page := m.Of(0)
					require.LessOrEqual(t, page.Len(), int(limit))
					for i := range page.Len() {
						got = append(got, st(page.At(i)))
					}
					if m.Counts[0] < limit {
						break
					}
					cursor = append([]byte(nil), m.Last(0)...)
				}
				require.Equal(t, want, got, "pattern %s limit %d", pattern, limit)
			}
		}
	})
}

func TestWriteRead(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		col, err := db.Collection(c, "kv")
		require.NoError(t, err)
		p := New(db, col, nil, arena.New(0))
		require.NoError(t, p.Write(c, strided.TapeOf("x/1", "x/2", "x/3"),
			strided.TapeOf("one", "", "three"), nil, '/', store.WriteFlush))
		vals, err := p.Read(c, strided.TapeOf("x/1", "x/2", "x/4"), '/', store.Default)
		require.NoError(t, err)
		v, ok := vals.At(0)
		require.True(t, ok)
		require.Equal(t, "one", st(v))
		v, ok = vals.At(1)
		require.True(t, ok)
		require.Empty(t, v)
		_, ok = vals.At(2)
		require.False(t, ok)
		require.Equal(t, store.LengthMissing, vals.Lengths[2])

		lengths, err := p.Read(c, strided.TapeOf("x/3", "x/9"), '/', store.ReadLengths)
		require.NoError(t, err)
		require.Equal(t, []uint32{5, store.LengthMissing}, lengths.Lengths)
		require.Nil(t, lengths.Data)

		// other collections do not see the paths
		vals, err = New(db, store.Main, nil, nil).Read(c, strided.TapeOf("x/1"), '/',
			store.Default)
		require.NoError(t, err)
		require.False(t, vals.Presences.Get(0))

		presences := strided.NewOctets(2)
		presences.Set(1, true)
		require.NoError(t, p.Write(c, strided.TapeOf("x/1", "x/3"),
			strided.TapeOf("", "THREE"), presences, '/', store.Default))
		vals, err = p.Read(c, strided.TapeOf("x/1", "x/3"), '/', store.Default)
		require.NoError(t, err)
		_, ok = vals.At(0)
		require.False(t, ok)
		v, _ = vals.At(1)
		require.Equal(t, "THREE", st(v))
	})
}

func TestTransacted(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		txn, err := db.Begin(c)
		require.NoError(t, err)
		defer txn.Discard()
		p := New(db, store.Main, txn, nil)
		require.NoError(t, p.Write(c, strided.TapeOf("t/a", "t/b"), strided.BroadcastTape("v", 2),
			nil, '/', store.Default))
		for _, opts := range []store.Options{store.Default, store.Transparent} {
			m, err := p.Match(c, strided.TapeOf(`t/.*`), strided.Tape{}, strided.T[uint32]{}, '/',
				opts)
			require.NoError(t, err)
			require.Equal(t, uint32(2), m.Counts[0])
		}
		outside := New(db, store.Main, nil, nil)
		m, err := outside.Match(c, strided.TapeOf(`t/.*`), strided.Tape{}, strided.T[uint32]{},
			'/', store.Default)
		require.NoError(t, err)
		require.Zero(t, m.Counts[0])
		require.NoError(t, txn.Commit(c))
		m, err = outside.Match(c, strided.TapeOf(`t/.*`), strided.Tape{}, strided.T[uint32]{},
			'/', store.Default)
		require.NoError(t, err)
		require.Equal(t, uint32(2), m.Counts[0])
	})
}

func TestArgsAndLimits(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		p := New(db, store.Main, nil, arena.New(48))
		err := p.Write(c, strided.TapeOf("a", "b"), strided.TapeOf("1"), nil, '/', store.Default)
		require.True(t, errors.Is(err, store.ErrArgs))
		_, err = p.Match(c, strided.TapeOf(".*", "a"), strided.TapeOf("x"), strided.T[uint32]{},
			'/', store.Default)
		require.True(t, errors.Is(err, store.ErrArgs))

		all := randomPaths(20)
		require.NoError(t, p.Write(c, strided.TapeOf(all...), strided.BroadcastTape("", len(all)),
			nil, '/', store.Default))
		_, err = p.Match(c, strided.TapeOf(".*"), strided.Tape{}, strided.T[uint32]{}, '/',
			store.Default)
		require.True(t, errors.Is(err, arena.ErrAllocation))

		cancelled, cancel := context.Cancel(c)
		cancel()
		_, err = p.Match(cancelled, strided.TapeOf(".*"), strided.Tape{}, strided.T[uint32]{},
			'/', store.Default)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestGlob(t *testing.T) {
	for _, tc := range []struct {
		glob     st
		sep      byte
		match    []st
		mismatch []st
	}{
		{"a/+/c", '/', []st{"a/b/c", "a//c"}, []st{"a/b/d/c", "a/c"}},
		{"a/#", '/', []st{"a", "a/", "a/b", "a/b/c"}, []st{"ab", "b/a"}},
		{"#", '/', []st{"", "x", "x/y/z"}, nil},
		{"a/b*d", '/', []st{"a/bd", "a/bcd"}, []st{"a/b/d", "a/bc"}},
		{"a.b/+", '/', []st{"a.b/c"}, []st{"aXb/c"}},
		{"#/a", '/', []st{"#/a"}, []st{"x/a"}},
		{"v1.+.x", '.', []st{"v1.2.x"}, []st{"v1.2.3.x"}},
	} {
		re := regexp.MustCompile(`^(?:` + Glob(tc.glob, tc.sep) + `)$`)
		for _, s := range tc.match {
			require.True(t, re.MatchString(s), "%s should match %q", tc.glob, s)
		}
		for _, s := range tc.mismatch {
			require.False(t, re.MatchString(s), "%s should not match %q", tc.glob, s)
		}
	}
}

func TestCompileCache(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				cp := compile(fmt.Sprintf("cache/%d/.*", (i+j)%10))
				assert.NoError(t, cp.err)
				assert.Equal(t, fmt.Sprintf("cache/%d/", (i+j)%10), st(cp.prefix))
			}
		}()
	}
	wg.Wait()
	require.Same(t, compile("cache/1/.*"), compile("cache/1/.*"))
	cp := compile("[")
	require.True(t, errors.Is(cp.err, ErrPattern))
	cp = compile("(?i)abc")
	require.NoError(t, cp.err)
	require.Empty(t, cp.prefix)
}
