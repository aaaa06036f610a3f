package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
	"strata.lol/dump"
	"strata.lol/servemux"
	"strata.lol/store"
)

// ImportInput is the parameters of an import operation, authentication and the stream of
// exported lines.
type ImportInput struct {
	Auth       string `header:"Authorization" doc:"Bearer admin token" required:"true"`
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
}

// RegisterImport is the implementation of the Import operation.
func (x *Operations) RegisterImport(api huma.API) {
	name := "Import"
	description := "Import entries from the lines of an export"
	scopes := []string{"admin", "write"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/import/{collection}",
		Method:        http.MethodPost,
		Tags:          []string{"admin"},
		Description:   GenerateDescription(description, scopes),
		Security:      []map[string][]string{{"auth": scopes}},
		DefaultStatus: 204,
	}, func(ctx context.T, input *ImportInput) (output *EdgesOutput, err error) {
		if err = x.admin(ctx); err != nil {
			return
		}
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		r := ctx.Value("http-request").(*http.Request)
		var n no
		if n, err = dump.Import(ctx, x.DB, col, r.Body); err != nil {
			err = huma.Error400BadRequest(err.Error())
			return
		}
		log.I.F("%s imported %d entries into collection %s", servemux.Remote(r), n,
			input.Collection)
		return
	})
}
