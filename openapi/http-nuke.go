package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
	"strata.lol/servemux"
)

// NukeInput is the parameters for the HTTP API method nuke. Note that it has a confirmation
// header that must be provided to prevent accidental invocation of this method.
type NukeInput struct {
	Auth    string `header:"Authorization" doc:"Bearer admin token" required:"true"`
	Confirm string `header:"X-Confirm" doc:"must put 'Yes I Am Sure' in this field as confirmation"`
}

// RegisterNuke is the implementation of the Nuke HTTP API method.
func (x *Operations) RegisterNuke(api huma.API) {
	name := "Nuke"
	description := "Delete every collection and everything in the database"
	scopes := []string{"admin"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/nuke",
		Method:        http.MethodGet,
		Tags:          []string{"admin"},
		Description:   GenerateDescription(description, scopes),
		Security:      []map[string][]string{{"auth": scopes}},
		DefaultStatus: 204,
	}, func(ctx context.T, input *NukeInput) (output *EdgesOutput, err error) {
		if err = x.admin(ctx); err != nil {
			return
		}
		if input.Confirm != "Yes I Am Sure" {
			err = huma.Error403Forbidden("Confirm missing or incorrect")
			return
		}
		r := ctx.Value("http-request").(*http.Request)
		log.I.F("database nuke request from %s", servemux.Remote(r))
		if err = x.DB.Nuke(); chk.E(err) {
			err = apiError(err)
		}
		return
	})
}
