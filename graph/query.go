package graph

import (
	"github.com/pkg/errors"

	"strata.lol/store"
	"strata.lol/strided"
)

// Found is the result of FindEdges, carved from the session arena.
type Found struct {
	// Degrees holds the degree of each vertex, DegreeMissing for absent ones.
	Degrees []uint32
	// Offsets holds the index in Edges of the first triple of each vertex.
	Offsets []uint32
	// Edges holds (source, target, id) triples, nil with store.ReadLengths.
	Edges []int64
}

// Of returns the edges of task i as strided columns.
func (f Found) Of(i no) Edges {
	d := f.Degrees[i]
	if d == DegreeMissing || f.Edges == nil {
		return Edges{}
	}
	o := 3 * no(f.Offsets[i])
	return Triples(f.Edges[o : o+3*no(d)])
}

func (g *T) queryArgs(vertices strided.T[int64], roles strided.T[Role]) (n no, err er) {
	n = strided.Count(vertices, roles)
	if !vertices.Fits(n) || !roles.Fits(n) {
		err = errors.Wrapf(store.ErrArgs, "columns do not fit %d vertices", n)
		return
	}
	for i := range n {
		if _, err = roles.At(i).sides(); chk.E(err) {
			return
		}
	}
	return
}

// present reports whether v has a record of any role.
func (g *T) present(c cx, v int64, opts store.Options) (found bo, err er) {
	for _, r := range []Role{Source, Target} {
		if found, err = g.reader().Has(c, g.col, vertexKey(v, r), opts); err != nil || found {
			return
		}
	}
	return
}

// sideDegree is the degree of one role record of v, ok is false if the
// record is not stored.
func (g *T) sideDegree(c cx, v int64, r Role, opts store.Options) (d uint32, ok bo, err er) {
	var val by
	if val, ok, err = g.reader().Get(c, g.col, vertexKey(v, r),
		opts|store.ReadLengths); err != nil || !ok {
		return
	}
	d, err = degree(len(val))
	return
}

// Degrees returns the number of edges of each vertex in the given role. A
// vertex that is stored but lacks the record of a role has degree 0 in it.
func (g *T) Degrees(c cx, vertices strided.T[int64], roles strided.T[Role],
	opts store.Options) (degrees []uint32, err er) {

	var n no
	if n, err = g.queryArgs(vertices, roles); err != nil {
		return
	}
	if degrees, err = g.a.Uint32s(n); err != nil {
		return
	}
	for i := range n {
		if err = c.Err(); err != nil {
			return
		}
		v := vertices.At(i)
		sides, _ := roles.At(i).sides()
		var total uint32
		var seen bo
		for _, r := range sides {
			var d uint32
			var ok bo
			if d, ok, err = g.sideDegree(c, v, r, opts); chk.E(err) {
				return
			}
			total += d
			seen = seen || ok
		}
		if !seen && len(sides) == 1 {
			if seen, err = g.present(c, v, opts); chk.E(err) {
				return
			}
		}
		degrees[i] = total
		if !seen {
			degrees[i] = DegreeMissing
		}
	}
	return
}

// FindEdges returns the degree and the edges of each vertex in the given
// role. Source edges come out as (vertex, neighbor, id), Target edges as
// (neighbor, vertex, id), Any gives the Source edges followed by the Target
// edges, each in neighborship order.
func (g *T) FindEdges(c cx, vertices strided.T[int64], roles strided.T[Role],
	opts store.Options) (found Found, err er) {

	if opts.Has(store.ReadLengths) {
		found.Degrees, err = g.Degrees(c, vertices, roles, opts)
		return
	}
	var n no
	if n, err = g.queryArgs(vertices, roles); err != nil {
		return
	}
	type side struct {
		r  Role
		ns []Neighborship
	}
	lists := make([][]side, n)
	missing := make([]bo, n)
	var total no
	for i := range n {
		if err = c.Err(); err != nil {
			return
		}
		v := vertices.At(i)
		sides, _ := roles.At(i).sides()
		var seen bo
		for _, r := range sides {
			var val by
			var ok bo
			if val, ok, err = g.reader().Get(c, g.col, vertexKey(v, r), opts); chk.E(err) {
				return
			}
			if !ok {
				continue
			}
			seen = true
			var ns []Neighborship
			if ns, err = decode(val); chk.E(err) {
				return
			}
			lists[i] = append(lists[i], side{r, ns})
			total += len(ns)
		}
		if !seen && len(sides) == 1 {
			if seen, err = g.present(c, v, opts); chk.E(err) {
				return
			}
		}
		missing[i] = !seen
	}
	if found.Degrees, err = g.a.Uint32s(n); err != nil {
		return
	}
	if found.Offsets, err = g.a.Uint32s(n); err != nil {
		return
	}
	if found.Edges, err = g.a.Keys(3 * total); err != nil {
		return
	}
	var o no
	for i := range n {
		found.Offsets[i] = uint32(o)
		if missing[i] {
			found.Degrees[i] = DegreeMissing
			continue
		}
		v := vertices.At(i)
		start := o
		for _, s := range lists[i] {
			for _, nb := range s.ns {
				e := found.Edges[3*o : 3*o+3]
				if s.r == Source {
					e[0], e[1] = v, nb.Neighbor
				} else {
					e[0], e[1] = nb.Neighbor, v
				}
				e[2] = nb.Edge
				o++
			}
		}
		found.Degrees[i] = uint32(o - start)
	}
	return
}

// Edges returns the edges of one vertex as (source, target, id) triples,
// empty if the vertex is not stored.
func (g *T) Edges(c cx, v int64, r Role, opts store.Options) (edges Edges, err er) {
	var found Found
	if found, err = g.FindEdges(c, strided.Of(v), strided.Of(r), opts); err != nil {
		return
	}
	return found.Of(0), nil
}

// Contains reports for each vertex whether it is stored.
func (g *T) Contains(c cx, vertices strided.T[int64],
	opts store.Options) (presences strided.Octets, err er) {

	n := vertices.Len()
	if !vertices.Fits(n) {
		err = errors.Wrapf(store.ErrArgs, "vertex column does not fit %d vertices", n)
		return
	}
	if presences, err = g.a.Octets(n); err != nil {
		return
	}
	for i := range n {
		if err = c.Err(); err != nil {
			return
		}
		var ok bo
		if ok, err = g.present(c, vertices.At(i), opts); chk.E(err) {
			return
		}
		presences.Set(i, ok)
	}
	return
}

// EdgesBetween returns the ids of the edges from source to target, found by
// binary search of the neighbor column of the source's record.
func (g *T) EdgesBetween(c cx, source, target int64,
	opts store.Options) (ids []int64, err er) {

	var val by
	var ok bo
	if val, ok, err = g.reader().Get(c, g.col, vertexKey(source, Source), opts); chk.E(err) {
		return
	}
	if !ok {
		return g.a.Keys(0)
	}
	var flat []int64
	if flat, err = decodeFlat(val); chk.E(err) {
		return
	}
	d := len(flat) / 2
	if d == 0 {
		return g.a.Keys(0)
	}
	lo, hi := strided.EqualRange(strided.New(flat, 2, d), target)
	if ids, err = g.a.Keys(hi - lo); err != nil {
		return
	}
	edgeIDs := strided.New(flat[1:], 2, d).Sub(lo, hi-lo)
	for i := range ids {
		ids[i] = edgeIDs.At(i)
	}
	return
}
