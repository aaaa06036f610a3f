package openapi

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pkg/errors"

	"strata.lol/arena"
	"strata.lol/context"
	"strata.lol/graph"
	"strata.lol/httpauth"
	"strata.lol/paths"
	"strata.lol/servemux"
	"strata.lol/store"
)

// MainCollection is the name under which the main collection is addressed.
const MainCollection = "main"

// GenerateDescription appends the scopes of an operation to its description.
func GenerateDescription(text string, scopes []string) string {
	if len(scopes) == 0 {
		return text
	}
	result := make([]string, 0, len(scopes))
	for _, value := range scopes {
		result = append(result, "`"+value+"`")
	}
	return text + "<br/><br/>**Scopes**<br/>" + strings.Join(result, ", ")
}

// collection resolves a collection name, creating the collection if needed.
func (x *Operations) collection(c cx, name st) (col store.Collection, err error) {
	if name == MainCollection {
		return store.Main, nil
	}
	if col, err = x.DB.Collection(c, name); err != nil {
		err = apiError(err)
	}
	return
}

func (x *Operations) arena() *arena.T { return arena.New(x.ArenaLimit) }

// admin checks the bearer token of the request for the admin scope.
func (x *Operations) admin(c cx) (err error) {
	if x.AdminKey == nil {
		return huma.Error403Forbidden("admin operations are disabled, no admin key is configured")
	}
	r := c.Value("http-request").(*http.Request)
	var valid bo
	if valid, err = httpauth.CheckAuth(r, "admin", x.AdminKey); err != nil || !valid {
		log.W.F("refused admin request from %s: %v", servemux.Remote(r), err)
		return huma.Error401Unauthorized("admin authorization required")
	}
	return
}

// apiError maps the errors of the indexes to HTTP statuses.
func apiError(err er) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrArgs), errors.Is(err, graph.ErrUnknownRole),
		errors.Is(err, paths.ErrPattern):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, store.ErrConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, arena.ErrAllocation):
		return huma.NewError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, store.ErrClosed):
		return huma.Error503ServiceUnavailable(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
