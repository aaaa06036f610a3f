package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
	"strata.lol/dump"
	"strata.lol/servemux"
	"strata.lol/store"
)

// ExportInput is the parameters for the HTTP API Export method.
type ExportInput struct {
	Auth       string `header:"Authorization" doc:"Bearer admin token" required:"true"`
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
}

// RegisterExport implements the Export HTTP API method.
func (x *Operations) RegisterExport(api huma.API) {
	name := "Export"
	description := "Export the entries of a collection as lines of hex encoded key and value"
	scopes := []string{"admin", "read"}
	huma.Register(api, huma.Operation{
		OperationID: name,
		Summary:     name,
		Path:        x.path + "/export/{collection}",
		Method:      http.MethodGet,
		Tags:        []string{"admin"},
		Description: GenerateDescription(description, scopes),
		Security:    []map[string][]string{{"auth": scopes}},
	}, func(ctx context.T, input *ExportInput) (resp *huma.StreamResponse, err error) {
		if err = x.admin(ctx); err != nil {
			return
		}
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		r := ctx.Value("http-request").(*http.Request)
		log.I.F("%s export of collection %s", servemux.Remote(r), input.Collection)
		resp = &huma.StreamResponse{
			Body: func(hc huma.Context) {
				hc.SetHeader("Content-Type", "text/plain")
				chk.E(x.DB.View(hc.Context(), func(rd store.Reader) er {
					return dump.Export(hc.Context(), rd, col, hc.BodyWriter())
				}))
				if f, ok := hc.BodyWriter().(http.Flusher); ok {
					f.Flush()
				}
			},
		}
		return
	})
}
