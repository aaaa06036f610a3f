package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
	"strata.lol/paths"
	"strata.lol/store"
	"strata.lol/strided"
)

func separator(s st) byte {
	if s == "" {
		return '/'
	}
	return s[0]
}

// PathEntry is one path to write.
type PathEntry struct {
	Path   string `json:"path"`
	Value  []byte `json:"value,omitempty" doc:"base64 encoded value"`
	Delete bool   `json:"delete,omitempty" doc:"delete the path instead of writing it"`
}

// WritePathsInput is the parameters of the WritePaths operation.
type WritePathsInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Body       struct {
		Entries []PathEntry `json:"entries"`
		Atomic  bool        `json:"atomic,omitempty" doc:"apply all entries in one transaction"`
		Flush   bool        `json:"flush,omitempty" doc:"flush the engine before returning"`
	}
}

// RegisterWritePaths is the implementation of the WritePaths operation.
func (x *Operations) RegisterWritePaths(api huma.API) {
	name := "WritePaths"
	description := "Write or delete values under paths"
	scopes := []string{"write"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/paths/{collection}/write",
		Method:        http.MethodPost,
		Tags:          []string{"paths"},
		Description:   GenerateDescription(description, scopes),
		DefaultStatus: 204,
	}, func(ctx context.T, input *WritePathsInput) (output *EdgesOutput, err error) {
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		entries := input.Body.Entries
		ps := make([]st, len(entries))
		vs := make([][]byte, len(entries))
		presences := strided.NewOctets(len(entries))
		for i, e := range entries {
			ps[i], vs[i] = e.Path, e.Value
			presences.Set(i, !e.Delete)
		}
		pt, vt := strided.TapeOf(ps...), strided.TapeOf(vs...)
		opts := flushOpt(input.Body.Flush)
		if input.Body.Atomic {
			err = store.Retry(ctx, x.DB, x.Retries, func(txn store.Txn) er {
				return paths.New(x.DB, col, txn, nil).Write(ctx, pt, vt, presences, '/', opts)
			})
			if err == nil && input.Body.Flush {
				err = x.DB.Sync()
			}
		} else {
			err = paths.New(x.DB, col, nil, nil).Write(ctx, pt, vt, presences, '/', opts)
		}
		err = apiError(err)
		return
	})
}

// ReadPathsInput is the parameters of the ReadPaths operation.
type ReadPathsInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Body       struct {
		Paths       []string `json:"paths"`
		LengthsOnly bool     `json:"lengths_only,omitempty" doc:"return the lengths but not the values"`
	}
}

// PathValue is a path read, absent paths are not found.
type PathValue struct {
	Path   string `json:"path"`
	Found  bool   `json:"found"`
	Length uint32 `json:"length"`
	Value  []byte `json:"value,omitempty"`
}

// ReadPathsOutput is the result of the ReadPaths operation.
type ReadPathsOutput struct {
	Body struct {
		Results []PathValue `json:"results"`
	}
}

// RegisterReadPaths is the implementation of the ReadPaths operation.
func (x *Operations) RegisterReadPaths(api huma.API) {
	name := "ReadPaths"
	description := "Read the values under paths"
	scopes := []string{"read"}
	huma.Register(api, huma.Operation{
		OperationID: name,
		Summary:     name,
		Path:        x.path + "/paths/{collection}/read",
		Method:      http.MethodPost,
		Tags:        []string{"paths"},
		Description: GenerateDescription(description, scopes),
	}, func(ctx context.T, input *ReadPathsInput) (output *ReadPathsOutput, err error) {
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		opts := store.Default
		if input.Body.LengthsOnly {
			opts = store.ReadLengths
		}
		ps := input.Body.Paths
		var vals store.Values
		if vals, err = paths.New(x.DB, col, nil, x.arena()).Read(ctx, strided.TapeOf(ps...),
			'/', opts); err != nil {
			err = apiError(err)
			return
		}
		output = new(ReadPathsOutput)
		output.Body.Results = make([]PathValue, len(ps))
		for i, p := range ps {
			res := &output.Body.Results[i]
			res.Path = p
			var v by
			if v, res.Found = vals.At(i); !res.Found {
				continue
			}
			res.Length = vals.Lengths[i]
			if v != nil {
				res.Value = append(make(by, 0, len(v)), v...)
			}
		}
		return
	})
}

// MatchPathsInput is the parameters of the MatchPaths operation.
type MatchPathsInput struct {
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Body       struct {
		Patterns  []string `json:"patterns" doc:"regular expressions matched against whole paths"`
		Glob      bool     `json:"glob,omitempty" doc:"the patterns are globs, + is one component, # the rest, * any run inside a component"`
		Separator string   `json:"separator,omitempty" default:"/" maxLength:"1" doc:"path component separator for globs"`
		Previous  []string `json:"previous,omitempty" doc:"per pattern, the last path of the previous page"`
		Limit     uint32   `json:"limit,omitempty" doc:"maximum paths per pattern, 0 is no limit"`
	}
}

// MatchResult is the paths matched by one pattern. Next is the cursor of the
// following page, empty when the matches are exhausted.
type MatchResult struct {
	Pattern string   `json:"pattern"`
	Paths   []string `json:"paths"`
	Next    string   `json:"next,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// MatchPathsOutput is the result of the MatchPaths operation.
type MatchPathsOutput struct {
	Body struct {
		Results []MatchResult `json:"results"`
	}
}

// RegisterMatchPaths is the implementation of the MatchPaths operation.
func (x *Operations) RegisterMatchPaths(api huma.API) {
	name := "MatchPaths"
	description := "Find the paths that match patterns, in path order, a page at a time"
	scopes := []string{"read"}
	huma.Register(api, huma.Operation{
		OperationID: name,
		Summary:     name,
		Path:        x.path + "/paths/{collection}/match",
		Method:      http.MethodPost,
		Tags:        []string{"paths"},
		Description: GenerateDescription(description, scopes),
	}, func(ctx context.T, input *MatchPathsInput) (output *MatchPathsOutput, err error) {
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		b := input.Body
		sep := separator(b.Separator)
		patterns := make([]st, len(b.Patterns))
		for i, p := range b.Patterns {
			patterns[i] = p
			if b.Glob {
				patterns[i] = paths.Glob(p, sep)
			}
		}
		var previous strided.Tape
		if len(b.Previous) > 0 {
			if len(b.Previous) != len(patterns) {
				err = huma.Error400BadRequest("previous must have one path per pattern")
				return
			}
			previous = strided.TapeOf(b.Previous...)
		}
		var limits strided.T[uint32]
		if b.Limit > 0 {
			limits = strided.Broadcast(b.Limit, len(patterns))
		}
		var m paths.Matches
		if m, err = paths.New(x.DB, col, nil, x.arena()).Match(ctx, strided.TapeOf(patterns...),
			previous, limits, sep, store.Default); err != nil {
			err = apiError(err)
			return
		}
		output = new(MatchPathsOutput)
		output.Body.Results = make([]MatchResult, len(patterns))
		for i, p := range b.Patterns {
			res := &output.Body.Results[i]
			res.Pattern = p
			if m.Errors[i] != nil {
				res.Error = m.Errors[i].Error()
				continue
			}
			found := m.Of(i)
			res.Paths = make([]st, found.Len())
			for j := range res.Paths {
				res.Paths[j] = st(found.At(j))
			}
			if b.Limit > 0 && m.Counts[i] == b.Limit {
				res.Next = st(m.Last(i))
			}
		}
		return
	})
}
