// Package graph stores a directed multigraph in a store collection.
//
// Each vertex has up to two adjacency records, one listing the targets of the
// edges it is the source of and one listing the sources of the edges it is the
// target of. Every edge is written to both, so a vertex can be walked forward
// and backward with one read. Records are sorted arrays of fixed size
// neighborships, searched with binary search and decoded into a working set
// when a batch mutates them.
package graph

import (
	"github.com/pkg/errors"

	"strata.lol/arena"
	"strata.lol/store"
	"strata.lol/strided"
)

// T is a graph session over one collection, optionally inside a transaction.
// Results are carved from the session's arena. A session is not safe for
// concurrent use, give each worker its own.
type T struct {
	db  store.I
	col store.Collection
	txn store.Txn
	a   *arena.T
}

// New creates a session. With a nil txn every edge written is committed on its
// own and reads see the latest committed state.
func New(db store.I, col store.Collection, txn store.Txn, a *arena.T) *T {
	if a == nil {
		a = arena.New(0)
	}
	return &T{db: db, col: col, txn: txn, a: a}
}

// Arena is the arena results are carved from.
func (g *T) Arena() *arena.T { return g.a }

func (g *T) reader() store.Reader {
	if g.txn != nil {
		return g.txn
	}
	return g.db
}

// Edges is a batch of edges as three parallel columns.
type Edges struct {
	Sources, Targets, IDs strided.T[int64]
}

// EdgesOf lays the edges out as one flat buffer of triples and returns
// columns striding over it.
func EdgesOf(edges ...Edge) Edges {
	flat := make([]int64, 0, 3*len(edges))
	for _, e := range edges {
		flat = append(flat, e.Source, e.Target, e.ID)
	}
	return Triples(flat)
}

// Triples views a flat buffer of (source, target, id) triples as Edges.
func Triples(flat []int64) Edges {
	n := len(flat) / 3
	if n == 0 {
		return Edges{}
	}
	return Edges{
		Sources: strided.New(flat, 3, n),
		Targets: strided.New(flat[1:], 3, n),
		IDs:     strided.New(flat[2:], 3, n),
	}
}

// Pairs makes a batch of edges with the default id.
func Pairs(sources, targets strided.T[int64]) Edges {
	n := strided.Count(sources, targets)
	return Edges{
		Sources: sources,
		Targets: targets,
		IDs:     strided.Broadcast(int64(DefaultEdgeID), n),
	}
}

// Len is the number of edges in the batch.
func (e Edges) Len() no { return strided.Count(e.Sources, e.Targets, e.IDs) }

// At returns edge i.
func (e Edges) At(i no) Edge {
	return Edge{Source: e.Sources.At(i), Target: e.Targets.At(i), ID: e.IDs.At(i)}
}

func (e Edges) check() (n no, err er) {
	n = e.Len()
	if !e.Sources.Fits(n) || !e.Targets.Fits(n) || !e.IDs.Fits(n) {
		err = errors.Wrapf(store.ErrArgs, "edge columns do not fit %d edges", n)
	}
	return
}

// apply runs fn over the batch. Inside a transaction all of the batch goes
// through one working set written back at the end, otherwise each task is
// committed in its own engine transaction.
func (g *T) apply(c cx, n no, opts store.Options,
	fn func(c cx, w *workset, i no) (err er)) (err er) {

	if g.txn != nil {
		w := newWorkset(g.txn, g.col)
		for i := range n {
			if err = c.Err(); err != nil {
				return
			}
			if err = fn(c, w, i); err != nil {
				return
			}
		}
		return w.flush(c, g.txn)
	}
	for i := range n {
		if err = c.Err(); err != nil {
			return
		}
		if err = g.db.Update(c, func(txn store.Txn) (err er) {
			w := newWorkset(txn, g.col)
			if err = fn(c, w, i); err != nil {
				return
			}
			return w.flush(c, txn)
		}); err != nil {
			return
		}
	}
	if opts.Has(store.WriteFlush) {
		err = g.db.Sync()
	}
	return
}

// UpsertEdges adds the edges, each to the Source record of its source and the
// Target record of its target. Edges that already exist are left alone.
func (g *T) UpsertEdges(c cx, edges Edges, opts store.Options) (err er) {
	var n no
	if n, err = edges.check(); chk.E(err) {
		return
	}
	log.T.F("upserting %d edges", n)
	return g.apply(c, n, opts, func(c cx, w *workset, i no) (err er) {
		e := edges.At(i)
		var src, tgt *record
		if src, err = w.load(c, e.Source, Source); err != nil {
			return
		}
		src.insert(Neighborship{Neighbor: e.Target, Edge: e.ID})
		if tgt, err = w.load(c, e.Target, Target); err != nil {
			return
		}
		tgt.insert(Neighborship{Neighbor: e.Source, Edge: e.ID})
		return
	})
}

// RemoveEdges deletes the edges from both of their records. Edges that do not
// exist are skipped, and a vertex keeps its records when they empty.
func (g *T) RemoveEdges(c cx, edges Edges, opts store.Options) (err er) {
	var n no
	if n, err = edges.check(); chk.E(err) {
		return
	}
	log.T.F("removing %d edges", n)
	return g.apply(c, n, opts, func(c cx, w *workset, i no) (err er) {
		e := edges.At(i)
		var src, tgt *record
		if src, err = w.load(c, e.Source, Source); err != nil {
			return
		}
		src.remove(Neighborship{Neighbor: e.Target, Edge: e.ID})
		if tgt, err = w.load(c, e.Target, Target); err != nil {
			return
		}
		tgt.remove(Neighborship{Neighbor: e.Source, Edge: e.ID})
		return
	})
}

// UpsertVertices makes the vertices present, creating empty records for
// those that have none.
func (g *T) UpsertVertices(c cx, vertices strided.T[int64], opts store.Options) (err er) {
	n := vertices.Len()
	if !vertices.Fits(n) {
		return errors.Wrapf(store.ErrArgs, "vertex column does not fit %d vertices", n)
	}
	return g.apply(c, n, opts, func(c cx, w *workset, i no) (err er) {
		for _, r := range []Role{Source, Target} {
			var rec *record
			if rec, err = w.load(c, vertices.At(i), r); err != nil {
				return
			}
			rec.create()
		}
		return
	})
}

// RemoveVertices deletes the records of the given roles of each vertex, and
// the matching neighborships from the records of its neighbors, so that no
// edge is left half stored. Any removes the vertex entirely.
func (g *T) RemoveVertices(c cx, vertices strided.T[int64], roles strided.T[Role],
	opts store.Options) (err er) {

	n := strided.Count(vertices, roles)
	if !vertices.Fits(n) || !roles.Fits(n) {
		return errors.Wrapf(store.ErrArgs, "columns do not fit %d vertices", n)
	}
	for i := range n {
		if _, err = roles.At(i).sides(); chk.E(err) {
			return
		}
	}
	return g.apply(c, n, opts, func(c cx, w *workset, i no) (err er) {
		v := vertices.At(i)
		sides, _ := roles.At(i).sides()
		for _, r := range sides {
			var rec *record
			if rec, err = w.load(c, v, r); err != nil {
				return
			}
			for _, nb := range append([]Neighborship(nil), rec.ns...) {
				var inv *record
				if inv, err = w.load(c, nb.Neighbor, Invert(r)); err != nil {
					return
				}
				inv.remove(Neighborship{Neighbor: v, Edge: nb.Edge})
			}
			rec.drop()
		}
		return
	})
}
