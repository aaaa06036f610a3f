package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
	"strata.lol/graph"
	"strata.lol/store"
	"strata.lol/strided"
)

// Edge is an edge in a request or response. A missing id is the default id.
type Edge struct {
	Source int64  `json:"source" doc:"source vertex"`
	Target int64  `json:"target" doc:"target vertex"`
	ID     *int64 `json:"id,omitempty" doc:"edge id, omit for the default edge"`
}

func toEdges(in []Edge) graph.Edges {
	out := make([]graph.Edge, len(in))
	for i, e := range in {
		out[i] = graph.Edge{Source: e.Source, Target: e.Target, ID: graph.DefaultEdgeID}
		if e.ID != nil {
			out[i].ID = *e.ID
		}
	}
	return graph.EdgesOf(out...)
}

func fromEdges(in graph.Edges) (out []Edge) {
	out = make([]Edge, in.Len())
	for i := range out {
		e := in.At(i)
		out[i] = Edge{Source: e.Source, Target: e.Target}
		if e.ID != graph.DefaultEdgeID {
			id := e.ID
			out[i].ID = &id
		}
	}
	return
}

// EdgesInput is a batch of edges to upsert or remove.
type EdgesInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Body       struct {
		Edges  []Edge `json:"edges" doc:"the edges"`
		Atomic bool   `json:"atomic,omitempty" doc:"apply all edges in one transaction, retried on conflict"`
		Flush  bool   `json:"flush,omitempty" doc:"flush the engine before returning"`
	}
}

// EdgesOutput is nothing, a 204 status is the normal response.
type EdgesOutput struct{}

// VerticesInput is a batch of vertices to upsert or remove.
type VerticesInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Body       struct {
		Vertices []int64 `json:"vertices" doc:"the vertices"`
		Role     string  `json:"role,omitempty" enum:"source,target,any" default:"any" doc:"the records to remove"`
	}
}

// mutation runs fn on a session, in one retried transaction when atomic.
func (x *Operations) mutation(c cx, name st, atomic, flush bo,
	fn func(g *graph.T) er) (err error) {

	var col store.Collection
	if col, err = x.collection(c, name); err != nil {
		return
	}
	if atomic {
		err = store.Retry(c, x.DB, x.Retries, func(txn store.Txn) er {
			return fn(graph.New(x.DB, col, txn, x.arena()))
		})
		if err == nil && flush {
			err = x.DB.Sync()
		}
		return apiError(err)
	}
	return apiError(fn(graph.New(x.DB, col, nil, x.arena())))
}

// roleOf parses a role, an empty one is Any.
func roleOf(s st) (r graph.Role, err er) {
	if s == "" {
		return graph.Any, nil
	}
	return graph.ParseRole(s)
}

func flushOpt(flush bo) store.Options {
	if flush {
		return store.WriteFlush
	}
	return store.Default
}

// RegisterUpsertEdges is the implementation of the UpsertEdges operation.
func (x *Operations) RegisterUpsertEdges(api huma.API) {
	name := "UpsertEdges"
	description := "Insert edges into the graph, inserting an existing edge changes nothing"
	scopes := []string{"write"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/graph/{collection}/edges",
		Method:        http.MethodPost,
		Tags:          []string{"graph"},
		Description:   GenerateDescription(description, scopes),
		DefaultStatus: 204,
	}, func(ctx context.T, input *EdgesInput) (output *EdgesOutput, err error) {
		edges := toEdges(input.Body.Edges)
		err = x.mutation(ctx, input.Collection, input.Body.Atomic, input.Body.Flush,
			func(g *graph.T) er { return g.UpsertEdges(ctx, edges, flushOpt(input.Body.Flush)) })
		return
	})
}

// RegisterRemoveEdges is the implementation of the RemoveEdges operation.
func (x *Operations) RegisterRemoveEdges(api huma.API) {
	name := "RemoveEdges"
	description := "Remove edges from the graph, the vertices stay"
	scopes := []string{"write"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/graph/{collection}/edges/remove",
		Method:        http.MethodPost,
		Tags:          []string{"graph"},
		Description:   GenerateDescription(description, scopes),
		DefaultStatus: 204,
	}, func(ctx context.T, input *EdgesInput) (output *EdgesOutput, err error) {
		edges := toEdges(input.Body.Edges)
		err = x.mutation(ctx, input.Collection, input.Body.Atomic, input.Body.Flush,
			func(g *graph.T) er { return g.RemoveEdges(ctx, edges, flushOpt(input.Body.Flush)) })
		return
	})
}

// RegisterUpsertVertices is the implementation of the UpsertVertices operation.
func (x *Operations) RegisterUpsertVertices(api huma.API) {
	name := "UpsertVertices"
	description := "Insert vertices without edges"
	scopes := []string{"write"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/graph/{collection}/vertices",
		Method:        http.MethodPost,
		Tags:          []string{"graph"},
		Description:   GenerateDescription(description, scopes),
		DefaultStatus: 204,
	}, func(ctx context.T, input *VerticesInput) (output *EdgesOutput, err error) {
		err = x.mutation(ctx, input.Collection, false, false, func(g *graph.T) er {
			return g.UpsertVertices(ctx, strided.Dense(input.Body.Vertices), store.Default)
		})
		return
	})
}

// RegisterRemoveVertices is the implementation of the RemoveVertices operation.
func (x *Operations) RegisterRemoveVertices(api huma.API) {
	name := "RemoveVertices"
	description := "Remove vertices with their edges, from both ends of each edge"
	scopes := []string{"write"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/graph/{collection}/vertices/remove",
		Method:        http.MethodPost,
		Tags:          []string{"graph"},
		Description:   GenerateDescription(description, scopes),
		DefaultStatus: 204,
	}, func(ctx context.T, input *VerticesInput) (output *EdgesOutput, err error) {
		var role graph.Role
		if role, err = roleOf(input.Body.Role); err != nil {
			err = huma.Error400BadRequest(err.Error())
			return
		}
		vs := input.Body.Vertices
		err = x.mutation(ctx, input.Collection, false, false, func(g *graph.T) er {
			return g.RemoveVertices(ctx, strided.Dense(vs), strided.Broadcast(role, len(vs)),
				store.Default)
		})
		return
	})
}

// FindInput is the parameters of the FindEdges operation.
type FindInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Body       struct {
		Vertices    []int64 `json:"vertices" doc:"the vertices to look up"`
		Role        string  `json:"role,omitempty" enum:"source,target,any" default:"any" doc:"the role of the vertices in the edges"`
		DegreesOnly bool    `json:"degrees_only,omitempty" doc:"only count the edges"`
	}
}

// Found is the edges of one vertex. A vertex that is not stored has no
// degree.
type Found struct {
	Vertex int64   `json:"vertex"`
	Degree *uint32 `json:"degree,omitempty"`
	Edges  []Edge  `json:"edges,omitempty"`
}

// FindOutput is the result of the FindEdges operation.
type FindOutput struct {
	Body struct {
		Results []Found `json:"results"`
	}
}

// RegisterFindEdges is the implementation of the FindEdges operation.
func (x *Operations) RegisterFindEdges(api huma.API) {
	name := "FindEdges"
	description := "Find the degree and edges of vertices"
	scopes := []string{"read"}
	huma.Register(api, huma.Operation{
		OperationID: name,
		Summary:     name,
		Path:        x.path + "/graph/{collection}/find",
		Method:      http.MethodPost,
		Tags:        []string{"graph"},
		Description: GenerateDescription(description, scopes),
	}, func(ctx context.T, input *FindInput) (output *FindOutput, err error) {
		var role graph.Role
		if role, err = roleOf(input.Body.Role); err != nil {
			err = huma.Error400BadRequest(err.Error())
			return
		}
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		opts := store.Default
		if input.Body.DegreesOnly {
			opts = store.ReadLengths
		}
		vs := input.Body.Vertices
		var found graph.Found
		if found, err = graph.New(x.DB, col, nil, x.arena()).FindEdges(ctx,
			strided.Dense(vs), strided.Broadcast(role, len(vs)), opts); err != nil {
			err = apiError(err)
			return
		}
		output = new(FindOutput)
		output.Body.Results = make([]Found, len(vs))
		for i, v := range vs {
			output.Body.Results[i].Vertex = v
			if d := found.Degrees[i]; d != graph.DegreeMissing {
				output.Body.Results[i].Degree = &d
				output.Body.Results[i].Edges = fromEdges(found.Of(i))
			}
		}
		return
	})
}

// BetweenInput is the parameters of the EdgesBetween operation.
type BetweenInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Source     int64  `path:"source" doc:"source vertex"`
	Target     int64  `path:"target" doc:"target vertex"`
}

// BetweenOutput is the ids of the edges found.
type BetweenOutput struct {
	Body struct {
		IDs []int64 `json:"ids"`
	}
}

// RegisterEdgesBetween is the implementation of the EdgesBetween operation.
func (x *Operations) RegisterEdgesBetween(api huma.API) {
	name := "EdgesBetween"
	description := "List the ids of the edges from a source to a target"
	scopes := []string{"read"}
	huma.Register(api, huma.Operation{
		OperationID: name,
		Summary:     name,
		Path:        x.path + "/graph/{collection}/between/{source}/{target}",
		Method:      http.MethodGet,
		Tags:        []string{"graph"},
		Description: GenerateDescription(description, scopes),
	}, func(ctx context.T, input *BetweenInput) (output *BetweenOutput, err error) {
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		var ids []int64
		if ids, err = graph.New(x.DB, col, nil, x.arena()).EdgesBetween(ctx, input.Source,
			input.Target, store.Default); err != nil {
			err = apiError(err)
			return
		}
		output = new(BetweenOutput)
		output.Body.IDs = append(make([]int64, 0, len(ids)), ids...)
		return
	})
}

// ContainsInput is the parameters of the Contains operation.
type ContainsInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Body       struct {
		Vertices []int64 `json:"vertices" doc:"the vertices to look up"`
	}
}

// ContainsOutput has the presence of each vertex.
type ContainsOutput struct {
	Body struct {
		Present []bool `json:"present"`
	}
}

// RegisterContains is the implementation of the Contains operation.
func (x *Operations) RegisterContains(api huma.API) {
	name := "Contains"
	description := "Report which vertices are stored"
	scopes := []string{"read"}
	huma.Register(api, huma.Operation{
		OperationID: name,
		Summary:     name,
		Path:        x.path + "/graph/{collection}/contains",
		Method:      http.MethodPost,
		Tags:        []string{"graph"},
		Description: GenerateDescription(description, scopes),
	}, func(ctx context.T, input *ContainsInput) (output *ContainsOutput, err error) {
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		vs := input.Body.Vertices
		var presences strided.Octets
		if presences, err = graph.New(x.DB, col, nil, x.arena()).Contains(ctx,
			strided.Dense(vs), store.Default); err != nil {
			err = apiError(err)
			return
		}
		output = new(ContainsOutput)
		output.Body.Present = make([]bool, len(vs))
		for i := range vs {
			output.Body.Present[i] = presences.Get(i)
		}
		return
	})
}
