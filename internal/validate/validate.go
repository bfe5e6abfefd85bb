// Package validate checks request payloads and reports problems per field.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired = "This field is required."
	MsgBlank    = "This field may not be blank."
)

// Errors maps a JSON field name to a message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}

	return strings.Join(parts, "; ")
}

// Require records a missing-field error unless the field is present or
// already has an error.
func (e Errors) Require(field string, present bool) {
	if present {
		return
	}
	if _, ok := e[field]; !ok {
		e[field] = MsgRequired
	}
}

// Err returns e as an error, or nil when e is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
	_ = val.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return val
}

// Struct runs the `validate` tags of s. The result is never nil.
func Struct(s interface{}) Errors {
	errs := Errors{}

	err := v.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = message(fe)
		}
	}

	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "notblank":
		return MsgBlank
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// Bind decodes the request body into dst and runs its Bind method. An empty
// body decodes as an empty payload, so missing fields are reported per field.
func Bind(r *http.Request, dst render.Binder) error {
	err := render.Bind(r, dst)
	if errors.Is(err, io.EOF) {
		err = dst.Bind(r)
	}

	return Decode(err)
}

// Decode turns a JSON decoding error into field errors where it can.
func Decode(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Errors{typeErr.Field: fmt.Sprintf("Incorrect type. Expected %s, received %s.", typeErr.Type, typeErr.Value)}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Errors{"detail": fmt.Sprintf("JSON parse error - %v", syntaxErr)}
	}

	return err
}
