package graph

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"

	"strata.lol/arena"
	"strata.lol/context"
	"strata.lol/store"
	"strata.lol/strided"
)

func parseInts(t *testing.T, s st) (v []int64) {
	for _, f := range strings.Fields(s) {
		i, err := strconv.ParseInt(f, 10, 64)
		require.NoError(t, err)
		v = append(v, i)
	}
	return
}

func parseEdges(t *testing.T, input st) Edges {
	var edges []Edge
	for _, line := range strings.Split(strings.TrimSpace(input), "\n") {
		v := parseInts(t, line)
		e := Edge{Source: v[0], Target: v[1], ID: DefaultEdgeID}
		if len(v) > 2 {
			e.ID = v[2]
		}
		edges = append(edges, e)
	}
	return EdgesOf(edges...)
}

func fmtID(id int64) st {
	if id == DefaultEdgeID {
		return "default"
	}
	return strconv.FormatInt(id, 10)
}

func fmtEdges(e Edges) st {
	var parts []st
	for i := range e.Len() {
		ed := e.At(i)
		parts = append(parts, fmt.Sprintf("(%d %d %s)", ed.Source, ed.Target, fmtID(ed.ID)))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func scanRole(t *testing.T, d *datadriven.TestData) Role {
	var s st
	d.ScanArgs(t, "role", &s)
	r, err := ParseRole(s)
	require.NoError(t, err)
	return r
}

func TestDataDriven(t *testing.T) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			var db store.I
			var col store.Collection
			datadriven.RunTest(t, "testdata/graph", func(t *testing.T, d *datadriven.TestData) st {
				c := context.Bg()
				if d.Cmd == "reset" {
					db = e.open(t)
					var err er
					col, err = db.Collection(c, "graph")
					require.NoError(t, err)
					return ""
				}
				var out strings.Builder
				// mutate runs a write in its own transaction when the txn argument is given
				mutate := func(fn func(g *T) er) er {
					if !d.HasArg("txn") {
						return fn(New(db, col, nil, nil))
					}
					return db.Update(c, func(txn store.Txn) er {
						return fn(New(db, col, txn, nil))
					})
				}
				g := New(db, col, nil, arena.New(0))
				var err er
				switch d.Cmd {
				case "upsert":
					err = mutate(func(g *T) er {
						return g.UpsertEdges(c, parseEdges(t, d.Input), store.Default)
					})
				case "remove":
					err = mutate(func(g *T) er {
						return g.RemoveEdges(c, parseEdges(t, d.Input), store.Default)
					})
				case "upsert-vertices":
					err = mutate(func(g *T) er {
						return g.UpsertVertices(c, strided.Dense(parseInts(t, d.Input)),
							store.Default)
					})
				case "remove-vertices":
					role := scanRole(t, d)
					vs := parseInts(t, d.Input)
					err = mutate(func(g *T) er {
						return g.RemoveVertices(c, strided.Dense(vs),
							strided.Broadcast(role, len(vs)), store.Default)
					})
				case "find":
					vs := parseInts(t, d.Input)
					var found Found
					if found, err = g.FindEdges(c, strided.Dense(vs),
						strided.Broadcast(scanRole(t, d), len(vs)), store.Default); err != nil {
						break
					}
					for i, v := range vs {
						if found.Degrees[i] == DegreeMissing {
							fmt.Fprintf(&out, "%d: missing\n", v)
							continue
						}
						fmt.Fprintf(&out, "%d: %d %s\n", v, found.Degrees[i], fmtEdges(found.Of(i)))
					}
					return out.String()
				case "degrees":
					vs := parseInts(t, d.Input)
					var degrees []uint32
					if degrees, err = g.Degrees(c, strided.Dense(vs),
						strided.Broadcast(scanRole(t, d), len(vs)), store.Default); err != nil {
						break
					}
					for i, v := range vs {
						if degrees[i] == DegreeMissing {
							fmt.Fprintf(&out, "%d: missing\n", v)
							continue
						}
						fmt.Fprintf(&out, "%d: %d\n", v, degrees[i])
					}
					return out.String()
				case "contains":
					vs := parseInts(t, d.Input)
					var presences strided.Octets
					if presences, err = g.Contains(c, strided.Dense(vs), store.Default); err != nil {
						break
					}
					for i, v := range vs {
						fmt.Fprintf(&out, "%d: %v\n", v, presences.Get(i))
					}
					return out.String()
				case "between":
					var source, target int
					d.ScanArgs(t, "source", &source)
					d.ScanArgs(t, "target", &target)
					var ids []int64
					if ids, err = g.EdgesBetween(c, int64(source), int64(target),
						store.Default); err != nil {
						break
					}
					return fmt.Sprintln(ids)
				default:
					return fmt.Sprintf("unknown command %q\n", d.Cmd)
				}
				if err != nil {
					return fmt.Sprintf("error: %v\n", err)
				}
				return "ok\n"
			})
		})
	}
}
