package graph

import (
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"strata.lol/arena"
	"strata.lol/context"
	"strata.lol/store"
	"strata.lol/strided"
)

// TestRandomWorkload checks the indexes against a model after random upserts
// and removals: every degree equals the number of distinct live pairs, and
// every edge is found from both ends.
func TestRandomWorkload(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		col, err := db.Collection(c, "random")
		require.NoError(t, err)
		g := New(db, col, nil, arena.New(0))
		model := make(map[Edge]bool)
		const vertices = 12
		for range 20 {
			var add, del []Edge
			for range 1 + frand.Intn(16) {
				e := Edge{
					Source: int64(frand.Intn(vertices)) - 3,
					Target: int64(frand.Intn(vertices)) - 3,
					ID:     int64(frand.Intn(3)),
				}
				if frand.Intn(3) == 0 {
					del = append(del, e)
				} else {
					add = append(add, e)
				}
			}
			require.NoError(t, g.UpsertEdges(c, EdgesOf(add...), store.Default))
			for _, e := range add {
				model[e] = true
			}
			require.NoError(t, g.RemoveEdges(c, EdgesOf(del...), store.Default))
			for _, e := range del {
				delete(model, e)
			}
		}
		vs := make([]int64, vertices)
		for i := range vs {
			vs[i] = int64(i) - 3
		}
		for _, r := range []Role{Source, Target} {
			found, err := g.FindEdges(c, strided.Dense(vs), strided.Broadcast(r, len(vs)),
				store.Default)
			require.NoError(t, err)
			for i, v := range vs {
				var want []Edge
				for e := range model {
					if (r == Source && e.Source == v) || (r == Target && e.Target == v) {
						want = append(want, e)
					}
				}
				sort.Slice(want, func(a, b int) bool {
					na, nb := want[a].Target, want[b].Target
					if r == Target {
						na, nb = want[a].Source, want[b].Source
					}
					return na < nb || (na == nb && want[a].ID < want[b].ID)
				})
				if found.Degrees[i] == DegreeMissing {
					require.Empty(t, want, "vertex %d", v)
					continue
				}
				require.Equal(t, uint32(len(want)), found.Degrees[i], "vertex %d role %s", v, r)
				got := found.Of(i)
				for j := range want {
					require.Equal(t, want[j], got.At(j))
				}
			}
		}
		for e := range model {
			ids, err := g.EdgesBetween(c, e.Source, e.Target, store.Default)
			require.NoError(t, err)
			require.Contains(t, ids, e.ID)
		}
		g.Arena().Reset()
	})
}

// TestConflict runs two transactions over the same vertex, at most one of
// them commits. Transactions on disjoint vertices both commit.
func TestConflict(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		col, err := db.Collection(c, "conflict")
		require.NoError(t, err)
		begin := func() (store.Txn, *T) {
			txn, err := db.Begin(c)
			require.NoError(t, err)
			return txn, New(db, col, txn, nil)
		}
		t1, g1 := begin()
		defer t1.Discard()
		t2, g2 := begin()
		defer t2.Discard()
		require.NoError(t, g1.UpsertEdges(c, EdgesOf(Edge{1, 2, 0}), store.Default))
		require.NoError(t, g2.UpsertEdges(c, EdgesOf(Edge{1, 3, 0}), store.Default))
		require.NoError(t, t1.Commit(c))
		err = t2.Commit(c)
		require.True(t, errors.Is(err, store.ErrConflict), "expected a conflict, got %v", err)

		t3, g3 := begin()
		defer t3.Discard()
		t4, g4 := begin()
		defer t4.Discard()
		require.NoError(t, g3.UpsertEdges(c, EdgesOf(Edge{10, 11, 0}), store.Default))
		require.NoError(t, g4.UpsertEdges(c, EdgesOf(Edge{20, 21, 0}), store.Default))
		require.NoError(t, t3.Commit(c))
		require.NoError(t, t4.Commit(c))

		// a retried transaction applies once the conflict is gone
		require.NoError(t, store.Retry(c, db, 3, func(txn store.Txn) error {
			return New(db, col, txn, nil).UpsertEdges(c, EdgesOf(Edge{1, 4, 0}), store.Default)
		}))
		ids, err := New(db, col, nil, nil).EdgesBetween(c, 1, 4, store.Default)
		require.NoError(t, err)
		require.Equal(t, []int64{0}, ids)
	})
}

func TestTransactedReadsSeeOwnWrites(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		txn, err := db.Begin(c)
		require.NoError(t, err)
		defer txn.Discard()
		g := New(db, store.Main, txn, nil)
		require.NoError(t, g.UpsertEdges(c, Pairs(strided.Of[int64](1, 1), strided.Of[int64](2, 3)),
			store.Default))
		for _, opts := range []store.Options{store.Default, store.Transparent} {
			degrees, err := g.Degrees(c, strided.Of[int64](1), strided.Of(Source), opts)
			require.NoError(t, err)
			require.Equal(t, []uint32{2}, degrees)
		}
		outside, err := New(db, store.Main, nil, nil).Contains(c, strided.Of[int64](1),
			store.Default)
		require.NoError(t, err)
		require.False(t, outside.Get(0))
		require.NoError(t, txn.Commit(c))
		outside, err = New(db, store.Main, nil, nil).Contains(c, strided.Of[int64](1),
			store.Default)
		require.NoError(t, err)
		require.True(t, outside.Get(0))
	})
}

func TestDegreesOnly(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		g := New(db, store.Main, nil, nil)
		require.NoError(t, g.UpsertEdges(c, EdgesOf(Edge{1, 2, 0}, Edge{1, 3, 0}), store.Default))
		found, err := g.FindEdges(c, strided.Of[int64](1, 2, 5), strided.Broadcast(Any, 3),
			store.ReadLengths)
		require.NoError(t, err)
		require.Nil(t, found.Edges)
		require.Equal(t, []uint32{2, 1, DegreeMissing}, found.Degrees)
	})
}

func TestCorruption(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		require.NoError(t, db.Put(c, store.Main, vertexKey(1, Source), make([]byte, 17)))
		g := New(db, store.Main, nil, nil)
		_, err := g.FindEdges(c, strided.Of[int64](1), strided.Of(Source), store.Default)
		require.True(t, errors.Is(err, ErrCorruption))
		_, err = g.Degrees(c, strided.Of[int64](1), strided.Of(Any), store.Default)
		require.True(t, errors.Is(err, ErrCorruption))
		err = g.UpsertEdges(c, EdgesOf(Edge{1, 2, 0}), store.Default)
		require.True(t, errors.Is(err, ErrCorruption))
	})
}

func TestArgsAndLimits(t *testing.T) {
	eachEngine(t, func(t *testing.T, db store.I) {
		c := context.Bg()
		g := New(db, store.Main, nil, arena.New(64))
		short := Edges{
			Sources: strided.Of[int64](1, 2, 3),
			Targets: strided.Of[int64](1, 2),
			IDs:     strided.Broadcast(int64(0), 3),
		}
		err := g.UpsertEdges(c, short, store.Default)
		require.True(t, errors.Is(err, store.ErrArgs))
		flat := make([]int64, 0, 30)
		for i := range int64(10) {
			flat = append(flat, 1, i, 0)
		}
		require.NoError(t, g.UpsertEdges(c, Triples(flat), store.Default))
		_, err = g.FindEdges(c, strided.Of[int64](1), strided.Of(Source), store.Default)
		require.True(t, errors.Is(err, arena.ErrAllocation))
		g.Arena().Reset()
		g.Arena().SetLimit(0)
		found, err := g.FindEdges(c, strided.Of[int64](1), strided.Of(Source), store.Default)
		require.NoError(t, err)
		require.Equal(t, uint32(10), found.Degrees[0])
	})
}

func TestCodec(t *testing.T) {
	var ns []Neighborship
	for range 100 {
		n := Neighborship{Neighbor: int64(frand.Uint64n(1 << 62)), Edge: int64(frand.Intn(4))}
		var added bool
		ns, added = insert(ns, n)
		require.True(t, added)
		_, added = insert(ns, n)
		require.False(t, added)
	}
	require.True(t, sort.SliceIsSorted(ns, func(i, j int) bool { return ns[i].Less(ns[j]) }))
	dec, err := decode(encode(ns))
	require.NoError(t, err)
	require.Equal(t, ns, dec)
	_, err = decode(make([]byte, 15))
	require.True(t, errors.Is(err, ErrCorruption))
	ns, removed := remove(ns, ns[50])
	require.True(t, removed)
	require.Len(t, ns, 99)
}
