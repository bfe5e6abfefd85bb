// Package errresponse renders API errors.
package errresponse

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/blog/internal/validate"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string            `json:"status"`           // user-level status message
	ErrorText  string            `json:"error,omitempty"`  // application-level error message
	Fields     map[string]string `json:"fields,omitempty"` // per-field validation messages
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if e.HTTPStatusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Token")
	}
	render.Status(r, e.HTTPStatusCode)

	return nil
}

// ErrInvalidRequest is a 400. Field errors from the validate package are
// reported per field.
func ErrInvalidRequest(err error) render.Renderer {
	resp := &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
	}

	var fields validate.Errors
	if errors.As(err, &fields) {
		resp.Fields = fields
	} else {
		resp.ErrorText = err.Error()
	}

	return resp
}

// ErrBadRequest is a 400 carrying a single message.
func ErrBadRequest(msg string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      msg,
	}
}

func ErrUnauthorized(msg string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized.",
		ErrorText:      msg,
	}
}

func ErrForbidden(msg string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Forbidden.",
		ErrorText:      msg,
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

// ErrInternal hides err from the client; callers log it.
func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
	}
}

// ErrNotFound is the shared 404.
var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

// ErrInvalidPage is returned for a page number outside the result set.
var ErrInvalidPage = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found.", ErrorText: "Invalid page."}
