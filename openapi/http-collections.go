package openapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"strata.lol/context"
	"strata.lol/store"
)

// Collection is a named collection and its id.
type Collection struct {
	Name string `json:"name"`
	ID   uint64 `json:"id"`
}

// CollectionsInput has no parameters.
type CollectionsInput struct{}

// CollectionsOutput lists the named collections.
type CollectionsOutput struct {
	Body struct {
		Collections []Collection `json:"collections"`
	}
}

// RegisterCollections is the implementation of the Collections operation.
func (x *Operations) RegisterCollections(api huma.API) {
	name := "Collections"
	description := "List the named collections, the main collection is not listed"
	scopes := []string{"read"}
	huma.Register(api, huma.Operation{
		OperationID: name,
		Summary:     name,
		Path:        x.path + "/collections",
		Method:      http.MethodGet,
		Tags:        []string{"collections"},
		Description: GenerateDescription(description, scopes),
	}, func(ctx context.T, input *CollectionsInput) (output *CollectionsOutput, err error) {
		var named []store.Named
		if named, err = x.DB.Collections(ctx); err != nil {
			err = apiError(err)
			return
		}
		output = new(CollectionsOutput)
		output.Body.Collections = make([]Collection, len(named))
		for i, n := range named {
			output.Body.Collections[i] = Collection{Name: n.Name, ID: uint64(n.Collection)}
		}
		return
	})
}

// DropInput is the parameters of the Drop operation.
type DropInput struct {
	Auth       string `header:"Authorization" doc:"Bearer admin token" required:"true"`
	Collection string `path:"collection" doc:"collection name, main for the main collection"`
	Mode       string `query:"mode" default:"keys-vals-handle" enum:"keys-vals-handle,keys-vals,vals" doc:"remove the collection, only its contents, or only its values"`
}

// RegisterDrop is the implementation of the Drop operation.
func (x *Operations) RegisterDrop(api huma.API) {
	name := "Drop"
	description := "Drop a collection or clear its contents, the main collection can only be cleared"
	scopes := []string{"admin"}
	huma.Register(api, huma.Operation{
		OperationID:   name,
		Summary:       name,
		Path:          x.path + "/collections/{collection}",
		Method:        http.MethodDelete,
		Tags:          []string{"collections"},
		Description:   GenerateDescription(description, scopes),
		Security:      []map[string][]string{{"auth": scopes}},
		DefaultStatus: 204,
	}, func(ctx context.T, input *DropInput) (output *EdgesOutput, err error) {
		if err = x.admin(ctx); err != nil {
			return
		}
		var mode store.DropMode
		if mode, err = store.ParseDropMode(input.Mode); err != nil {
			err = huma.Error400BadRequest(err.Error())
			return
		}
		var col store.Collection
		if col, err = x.collection(ctx, input.Collection); err != nil {
			return
		}
		log.I.F("dropping collection %s mode %s", input.Collection, mode)
		err = apiError(x.DB.Drop(ctx, col, mode))
		return
	})
}
