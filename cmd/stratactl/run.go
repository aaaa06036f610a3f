package main

import (
	"crypto/ecdsa"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"strata.lol/appdata"
	"strata.lol/context"
	"strata.lol/dump"
	"strata.lol/engine"
	"strata.lol/graph"
	"strata.lol/httpauth"
	"strata.lol/lol"
	"strata.lol/paths"
	"strata.lol/store"
	"strata.lol/strided"
)

// Run executes the subcommand selected in a, printing results to out. Load
// reads from in when no file is named.
func Run(c cx, a *Args, out io.Writer, in io.Reader) (err er) {
	lol.SetLogLevel(a.LogLevel)
	switch {
	case a.Keygen != nil:
		return keygen(a, out)
	case a.Token != nil:
		return token(a, out)
	}
	if a.DataDir == "" {
		a.DataDir = filepath.Join(appdata.Dir("strata"), "db")
	}
	c, cancel := context.Cancel(c)
	var wg sync.WaitGroup
	var db store.I
	if db, err = engine.Open(c, &wg, engine.Params{
		Engine:   a.Engine,
		DataDir:  a.DataDir,
		LogLevel: a.LogLevel,
	}); err != nil {
		cancel()
		return
	}
	defer func() {
		cancel()
		wg.Wait()
		if e := db.Close(); err == nil {
			err = e
		}
	}()
	if a.Nuke != nil {
		if !a.Nuke.Yes {
			return errorf.E("refusing to nuke without --yes-i-am-sure")
		}
		return db.Nuke()
	}
	if a.Collections != nil {
		return collections(c, db, a, out)
	}
	var col store.Collection
	if a.Collection != "main" {
		if col, err = db.Collection(c, a.Collection); err != nil {
			return
		}
	}
	switch {
	case a.Edge != nil:
		return edge(c, db, col, a.Edge, a.Retries)
	case a.Degree != nil:
		return degree(c, db, col, a, out)
	case a.Edges != nil:
		return edges(c, db, col, a, out)
	case a.Between != nil:
		return between(c, db, col, a, out)
	case a.Put != nil:
		return paths.New(db, col, nil, nil).Write(c, strided.TapeOf(a.Put.Path),
			strided.TapeOf(a.Put.Value), nil, '/', store.WriteFlush)
	case a.Del != nil:
		ps := a.Del.Paths
		return paths.New(db, col, nil, nil).Write(c, strided.TapeOf(ps...),
			strided.BroadcastTape("", len(ps)), strided.NewOctets(len(ps)), '/',
			store.WriteFlush)
	case a.Get != nil:
		return get(c, db, col, a, out)
	case a.Match != nil:
		return match(c, db, col, a, out)
	case a.Dump != nil:
		return db.View(c, func(r store.Reader) er { return dump.Export(c, r, col, out) })
	case a.Load != nil:
		return load(c, db, col, a, out, in)
	case a.Drop != nil:
		var mode store.DropMode
		if mode, err = store.ParseDropMode(a.Drop.Mode); err != nil {
			return
		}
		return db.Drop(c, col, mode)
	}
	return errorf.E("no subcommand given")
}

// emit prints v as YAML when asked to, otherwise calls text.
func emit(a *Args, out io.Writer, v any, text func()) (err er) {
	if !a.YAML {
		text()
		return
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err = enc.Encode(v); err != nil {
		return
	}
	return enc.Close()
}

// parseEdge reads source:target or source:target:id.
func parseEdge(s st) (e graph.Edge, err er) {
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		err = errors.Wrapf(store.ErrArgs, "edge '%s' is not source:target[:id]", s)
		return
	}
	var n [3]int64
	n[2] = graph.DefaultEdgeID
	for i, f := range fields {
		if n[i], err = strconv.ParseInt(f, 10, 64); err != nil {
			err = errors.Wrapf(store.ErrArgs, "edge '%s': %v", s, err)
			return
		}
	}
	e = graph.Edge{Source: n[0], Target: n[1], ID: n[2]}
	return
}

func edge(c cx, db store.I, col store.Collection, cmd *EdgeCmd, retries no) (err er) {
	ea := cmd.Add
	if ea == nil {
		ea = cmd.Rm
	}
	if ea == nil {
		return errorf.E("edge needs add or rm")
	}
	list := make([]graph.Edge, len(ea.Edges))
	for i, s := range ea.Edges {
		if list[i], err = parseEdge(s); err != nil {
			return
		}
	}
	edges := graph.EdgesOf(list...)
	fn := func(g *graph.T) er {
		if cmd.Add != nil {
			return g.UpsertEdges(c, edges, store.WriteFlush)
		}
		return g.RemoveEdges(c, edges, store.WriteFlush)
	}
	if ea.Txn {
		return store.Retry(c, db, retries, func(txn store.Txn) er {
			return fn(graph.New(db, col, txn, nil))
		})
	}
	return fn(graph.New(db, col, nil, nil))
}

type degreeResult struct {
	Vertex int64  `yaml:"vertex"`
	Degree *int64 `yaml:"degree"`
}

func degree(c cx, db store.I, col store.Collection, a *Args, out io.Writer) (err er) {
	var role graph.Role
	if role, err = graph.ParseRole(a.Degree.Role); err != nil {
		return
	}
	vs := a.Degree.Vertices
	var degrees []uint32
	if degrees, err = graph.New(db, col, nil, nil).Degrees(c, strided.Dense(vs),
		strided.Broadcast(role, len(vs)), store.Default); err != nil {
		return
	}
	res := make([]degreeResult, len(vs))
	for i, v := range vs {
		res[i].Vertex = v
		if degrees[i] != graph.DegreeMissing {
			d := int64(degrees[i])
			res[i].Degree = &d
		}
	}
	return emit(a, out, res, func() {
		for _, r := range res {
			if r.Degree == nil {
				fmt.Fprintf(out, "%d: missing\n", r.Vertex)
			} else {
				fmt.Fprintf(out, "%d: %d\n", r.Vertex, *r.Degree)
			}
		}
	})
}

type edgeResult struct {
	Source int64  `yaml:"source"`
	Target int64  `yaml:"target"`
	ID     *int64 `yaml:"id,omitempty"`
}

func (e edgeResult) String() st {
	if e.ID == nil {
		return fmt.Sprintf("%d:%d", e.Source, e.Target)
	}
	return fmt.Sprintf("%d:%d:%d", e.Source, e.Target, *e.ID)
}

type edgesResult struct {
	Vertex int64        `yaml:"vertex"`
	Found  bool         `yaml:"found"`
	Edges  []edgeResult `yaml:"edges,omitempty"`
}

func edges(c cx, db store.I, col store.Collection, a *Args, out io.Writer) (err er) {
	var role graph.Role
	if role, err = graph.ParseRole(a.Edges.Role); err != nil {
		return
	}
	vs := a.Edges.Vertices
	var found graph.Found
	if found, err = graph.New(db, col, nil, nil).FindEdges(c, strided.Dense(vs),
		strided.Broadcast(role, len(vs)), store.Default); err != nil {
		return
	}
	res := make([]edgesResult, len(vs))
	for i, v := range vs {
		res[i].Vertex = v
		if res[i].Found = found.Degrees[i] != graph.DegreeMissing; !res[i].Found {
			continue
		}
		es := found.Of(i)
		for j := range es.Len() {
			e := es.At(j)
			r := edgeResult{Source: e.Source, Target: e.Target}
			if e.ID != graph.DefaultEdgeID {
				id := e.ID
				r.ID = &id
			}
			res[i].Edges = append(res[i].Edges, r)
		}
	}
	return emit(a, out, res, func() {
		for _, r := range res {
			if !r.Found {
				fmt.Fprintf(out, "%d: missing\n", r.Vertex)
				continue
			}
			list := make([]st, len(r.Edges))
			for i, e := range r.Edges {
				list[i] = e.String()
			}
			fmt.Fprintf(out, "%d: [%s]\n", r.Vertex, strings.Join(list, " "))
		}
	})
}

func between(c cx, db store.I, col store.Collection, a *Args, out io.Writer) (err er) {
	var ids []int64
	if ids, err = graph.New(db, col, nil, nil).EdgesBetween(c, a.Between.Source,
		a.Between.Target, store.Default); err != nil {
		return
	}
	ids = append([]int64{}, ids...)
	return emit(a, out, ids, func() {
		for _, id := range ids {
			if id == graph.DefaultEdgeID {
				fmt.Fprintln(out, "default")
			} else {
				fmt.Fprintln(out, id)
			}
		}
	})
}

type valueResult struct {
	Path  st   `yaml:"path"`
	Found bool `yaml:"found"`
	Value st   `yaml:"value,omitempty"`
}

func get(c cx, db store.I, col store.Collection, a *Args, out io.Writer) (err er) {
	ps := a.Get.Paths
	var vals store.Values
	if vals, err = paths.New(db, col, nil, nil).Read(c, strided.TapeOf(ps...), '/',
		store.Default); err != nil {
		return
	}
	res := make([]valueResult, len(ps))
	for i, p := range ps {
		var v by
		v, res[i].Found = vals.At(i)
		res[i].Path, res[i].Value = p, st(v)
	}
	return emit(a, out, res, func() {
		for _, r := range res {
			if r.Found {
				fmt.Fprintf(out, "%s: %q\n", r.Path, r.Value)
			} else {
				fmt.Fprintf(out, "%s: missing\n", r.Path)
			}
		}
	})
}

type matchResult struct {
	Pattern st   `yaml:"pattern"`
	Paths   []st `yaml:"paths"`
	Error   st   `yaml:"error,omitempty"`
}

func match(c cx, db store.I, col store.Collection, a *Args, out io.Writer) (err er) {
	m := a.Match
	if len(m.Sep) != 1 {
		return errors.Wrapf(store.ErrArgs, "separator '%s' is not one byte", m.Sep)
	}
	sep := m.Sep[0]
	patterns := make([]st, len(m.Patterns))
	for i, p := range m.Patterns {
		if patterns[i] = p; m.Glob {
			patterns[i] = paths.Glob(p, sep)
		}
	}
	var previous strided.Tape
	if m.After != "" {
		previous = strided.BroadcastTape(m.After, len(patterns))
	}
	var limits strided.T[uint32]
	if m.Limit > 0 {
		limits = strided.Broadcast(m.Limit, len(patterns))
	}
	var found paths.Matches
	if found, err = paths.New(db, col, nil, nil).Match(c, strided.TapeOf(patterns...),
		previous, limits, sep, store.Default); err != nil {
		return
	}
	res := make([]matchResult, len(patterns))
	for i, p := range m.Patterns {
		res[i].Pattern = p
		if e := found.Errors[i]; e != nil {
			// the compiler's message is for the YAML output, text is one line
			res[i].Error = e.Error()
			if errors.Is(e, paths.ErrPattern) && !a.YAML {
				res[i].Error = paths.ErrPattern.Error()
			}
			continue
		}
		list := found.Of(i)
		res[i].Paths = make([]st, list.Len())
		for j := range res[i].Paths {
			res[i].Paths[j] = st(list.At(j))
		}
	}
	return emit(a, out, res, func() {
		for _, r := range res {
			if r.Error != "" {
				fmt.Fprintf(out, "%s: %s\n", r.Pattern, r.Error)
			} else {
				fmt.Fprintf(out, "%s: [%s]\n", r.Pattern, strings.Join(r.Paths, " "))
			}
		}
	})
}

type collectionResult struct {
	Name st     `yaml:"name"`
	ID   uint64 `yaml:"id"`
}

func collections(c cx, db store.I, a *Args, out io.Writer) (err er) {
	var list []store.Named
	if list, err = db.Collections(c); err != nil {
		return
	}
	res := make([]collectionResult, len(list))
	for i, n := range list {
		res[i] = collectionResult{Name: n.Name, ID: uint64(n.Collection)}
	}
	return emit(a, out, res, func() {
		for _, r := range res {
			fmt.Fprintf(out, "%s %d\n", r.Name, r.ID)
		}
	})
}

func load(c cx, db store.I, col store.Collection, a *Args, out io.Writer,
	in io.Reader) (err er) {

	if a.Load.File != "" {
		var f *os.File
		if f, err = os.Open(a.Load.File); err != nil {
			return
		}
		defer f.Close()
		in = f
	}
	var n no
	if n, err = dump.Import(c, db, col, in); err != nil {
		return
	}
	if err = db.Sync(); err != nil {
		return
	}
	return emit(a, out, map[st]no{"loaded": n}, func() {
		fmt.Fprintf(out, "loaded %d entries\n", n)
	})
}

func keygen(a *Args, out io.Writer) (err er) {
	var sec, pub by
	if sec, pub, _, _, _, _, err = httpauth.GenerateJWTKeys(); err != nil {
		return
	}
	res := map[st]st{"ADMIN_KEY": st(pub), "ADMIN_SECRET": st(sec)}
	return emit(a, out, res, func() {
		fmt.Fprintf(out, "ADMIN_KEY=%s\nADMIN_SECRET=%s\n", pub, sec)
	})
}

func token(a *Args, out io.Writer) (err er) {
	var sec *ecdsa.PrivateKey
	if sec, err = httpauth.ParseSecret(a.Token.Secret); err != nil {
		return
	}
	var tok by
	if tok, err = httpauth.GenerateJWTClaims("admin", a.Token.Expiry); err != nil {
		return
	}
	var entry st
	if entry, err = httpauth.SignJWTtoken(tok, sec); err != nil {
		return
	}
	return emit(a, out, map[st]st{"token": entry}, func() {
		fmt.Fprintf(out, "%s %s\n", httpauth.JWTPrefix, entry)
	})
}
