package openapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"strata.lol/context"
	"strata.lol/httpauth"
	"strata.lol/lol"
	"strata.lol/ratel"
	"strata.lol/servemux"
)

type server struct {
	t   *testing.T
	sm  *servemux.S
	x   *Operations
	tok st
}

func newServer(t *testing.T) (s *server) {
	db := ratel.New(ratel.BackendParams{LogLevel: lol.Warn, InMemory: true})
	require.NoError(t, db.Init(""))
	t.Cleanup(func() { chk.E(db.Close()) })
	_, x509pub, _, _, sec, _, err := httpauth.GenerateJWTKeys()
	require.NoError(t, err)
	pub, err := httpauth.ParsePublic(st(x509pub))
	require.NoError(t, err)
	s = &server{t: t, sm: servemux.New(),
		x: &Operations{DB: db, ArenaLimit: 1 << 20, Retries: 3, AdminKey: pub}}
	New(s.x, "strata", "test", "strata test server", "", s.sm)
	tok, err := httpauth.GenerateJWTClaims("admin", "1m")
	require.NoError(t, err)
	entry, err := httpauth.SignJWTtoken(tok, sec)
	require.NoError(t, err)
	s.tok = httpauth.JWTPrefix + " " + entry
	return
}

// do sends a request, body is encoded as JSON unless it is an io.Reader.
func (s *server) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rd = b
	default:
		enc, err := json.Marshal(b)
		require.NoError(s.t, err)
		rd = bytes.NewReader(enc)
	}
	r := httptest.NewRequest(method, path, rd)
	if rd != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.sm.ServeHTTP(w, r)
	return w
}

func decode[V any](t *testing.T, w *httptest.ResponseRecorder) (v V) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return
}

type findResult struct {
	Results []Found `json:"results"`
}

func TestGraph(t *testing.T) {
	s := newServer(t)
	id := int64(1)
	w := s.do(http.MethodPost, "/graph/g/edges", map[string]any{
		"edges": []Edge{{Source: 1, Target: 2}, {Source: 1, Target: 3, ID: &id},
			{Source: 2, Target: 3, ID: &id}},
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/graph/g/edges", map[string]any{
		"edges":  []Edge{{Source: 3, Target: 1, ID: &id}},
		"atomic": true,
		"flush":  true,
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/graph/g/find", map[string]any{
		"vertices": []int64{1, 9}, "role": "source"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	found := decode[findResult](t, w)
	require.Len(t, found.Results, 2)
	require.Equal(t, uint32(2), *found.Results[0].Degree)
	require.Equal(t, []Edge{{Source: 1, Target: 2}, {Source: 1, Target: 3, ID: &id}},
		found.Results[0].Edges)
	require.Nil(t, found.Results[1].Degree)

	w = s.do(http.MethodPost, "/graph/g/find", map[string]any{
		"vertices": []int64{3}, "degrees_only": true})
	found = decode[findResult](t, w)
	require.Equal(t, uint32(3), *found.Results[0].Degree)
	require.Empty(t, found.Results[0].Edges)

	w = s.do(http.MethodPost, "/graph/g/find", map[string]any{
		"vertices": []int64{3}, "role": "unknown"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/graph/g/between/1/3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, []int64{1}, decode[struct {
		IDs []int64 `json:"ids"`
	}](t, w).IDs)

	w = s.do(http.MethodPost, "/graph/g/edges/remove", map[string]any{
		"edges": []Edge{{Source: 1, Target: 3, ID: &id}}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/graph/g/between/1/3", nil)
	require.Empty(t, decode[struct {
		IDs []int64 `json:"ids"`
	}](t, w).IDs)

	w = s.do(http.MethodPost, "/graph/g/vertices/remove", map[string]any{
		"vertices": []int64{2}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/graph/g/vertices", map[string]any{"vertices": []int64{7}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/graph/g/contains", map[string]any{
		"vertices": []int64{1, 2, 7, 8}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, []bool{true, false, true, false}, decode[struct {
		Present []bool `json:"present"`
	}](t, w).Present)

	// the main collection is separate from the named ones
	w = s.do(http.MethodPost, "/graph/main/contains", map[string]any{"vertices": []int64{1}})
	require.Equal(t, []bool{false}, decode[struct {
		Present []bool `json:"present"`
	}](t, w).Present)
}

type matchResults struct {
	Results []MatchResult `json:"results"`
}

func TestPaths(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodPost, "/paths/p/write", map[string]any{
		"entries": []PathEntry{
			{Path: "a/1", Value: []byte("one")},
			{Path: "a/2", Value: []byte("two")},
			{Path: "a/3"},
			{Path: "b/1", Value: []byte("x")},
		},
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/paths/p/write", map[string]any{
		"entries": []PathEntry{{Path: "b/1", Delete: true}}, "atomic": true})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/paths/p/read", map[string]any{
		"paths": []string{"a/1", "a/3", "b/1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	read := decode[struct {
		Results []PathValue `json:"results"`
	}](t, w).Results
	require.Equal(t, PathValue{Path: "a/1", Found: true, Length: 3, Value: []byte("one")}, read[0])
	require.True(t, read[1].Found)
	require.Empty(t, read[1].Value)
	require.False(t, read[2].Found)

	var pages []string
	var next string
	for {
		body := map[string]any{"patterns": []string{"a/+"}, "glob": true, "limit": 2}
		if next != "" {
			body["previous"] = []string{next}
		}
		w = s.do(http.MethodPost, "/paths/p/match", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decode[matchResults](t, w).Results[0]
		pages = append(pages, res.Paths...)
		if next = res.Next; next == "" {
			break
		}
	}
	require.Equal(t, []string{"a/1", "a/2", "a/3"}, pages)

	w = s.do(http.MethodPost, "/paths/p/match", map[string]any{
		"patterns": []string{"(", "a/[12]"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[matchResults](t, w).Results
	require.NotEmpty(t, res[0].Error)
	require.Equal(t, []string{"a/1", "a/2"}, res[1].Paths)

	w = s.do(http.MethodPost, "/paths/p/match", map[string]any{
		"patterns": []string{"a/.*"}, "previous": []string{"a/1", "a/2"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin(t *testing.T) {
	s := newServer(t)
	c := context.Bg()
	_, err := s.x.DB.Collection(c, "keep")
	require.NoError(t, err)
	w := s.do(http.MethodPost, "/graph/g/edges", map[string]any{
		"edges": []Edge{{Source: 1, Target: 2}, {Source: 2, Target: 3}}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/collections", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cols := decode[struct {
		Collections []Collection `json:"collections"`
	}](t, w).Collections
	require.Len(t, cols, 2)

	w = s.do(http.MethodGet, "/export/g", nil, "Authorization", "Bearer nonsense")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/export/g", nil, "Authorization", s.tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	export := w.Body.String()
	require.NotEmpty(t, export)

	w = s.do(http.MethodPost, "/import/copy", bytes.NewBufferString(export),
		"Authorization", s.tok)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/graph/copy/find", map[string]any{"vertices": []int64{2}})
	found := decode[findResult](t, w)
	require.Equal(t, uint32(2), *found.Results[0].Degree)

	w = s.do(http.MethodDelete, "/collections/copy?mode=vals", nil, "Authorization", s.tok)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodDelete, "/collections/g", nil, "Authorization", s.tok)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/collections", nil)
	cols = decode[struct {
		Collections []Collection `json:"collections"`
	}](t, w).Collections
	require.Len(t, cols, 2)
	for _, col := range cols {
		require.NotEqual(t, "g", col.Name)
	}

	w = s.do(http.MethodGet, "/nuke", nil, "Authorization", s.tok)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodGet, "/nuke", nil, "Authorization", s.tok, "X-Confirm", "Yes I Am Sure")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/collections", nil)
	require.Empty(t, decode[struct {
		Collections []Collection `json:"collections"`
	}](t, w).Collections)

	s.x.AdminKey = nil
	w = s.do(http.MethodGet, "/nuke", nil, "Authorization", s.tok, "X-Confirm", "Yes I Am Sure")
	require.Equal(t, http.StatusForbidden, w.Code)
}
