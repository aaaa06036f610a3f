package openapi

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
)

// ShutdownInput is the parameters of the Shutdown operation.
type ShutdownInput struct {
	Auth string `header:"Authorization" doc:"Bearer admin token" required:"true"`
}

// RegisterShutdown is the implementation of the Shutdown operation.
func (x *Operations) RegisterShutdown(api huma.API) {
	name := "Shutdown"
	description := "Shut the server down"
	scopes := []string{"admin"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/shutdown",
		Method:        http.MethodGet,
		Tags:          []string{"admin"},
		Description:   GenerateDescription(description, scopes),
		Security:      []map[string][]string{{"auth": scopes}},
		DefaultStatus: 204,
	}, func(ctx context.T, input *ShutdownInput) (output *EdgesOutput, err error) {
		if err = x.admin(ctx); err != nil {
			return
		}
		if x.Shutdown == nil {
			err = huma.Error501NotImplemented("shutdown is not available")
			return
		}
		go func() {
			time.Sleep(time.Second)
			x.Shutdown()
		}()
		return
	})
}
