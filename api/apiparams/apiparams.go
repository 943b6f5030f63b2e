/*
Package apiparams binds path and query parameters onto a struct,
and validates it, at the start of echo route handlers.

	type searchParams struct {
		MinAge *int     `query:"min_age"`
		Skills []string `query:"skills"`
		Limit  int      `query:"limit" default:"20" validate:"max=100"`
	}
	func search(c echo.Context) error {
		p := searchParams{}
		if err := apiparams.Bind(c, &p); err != nil {
			return err
		}
		...
	}

Fields are set, in order, from the "default" struct tag,
query parameters, and path parameters. A field is only set from
the source named by its tag, so `path:"id"` ignores ?id=5.
Repeated query parameters append to slice fields.
Pointer fields stay nil unless a value is given,
so handlers can tell "not given" from a zero value.

A value that cannot be parsed into its field's type is a 400 api.Error
with code invalid_param. A struct that fails its `validate` tags
is a 422 api.Error with code invalid_params.
Both list the offending parameters under Errors as []ParamError.
*/
package apiparams

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithictech/go-profiles/api"
	"github.com/lithictech/go-profiles/validator"
)

// ParamSource is the struct tag naming where a field is bound from.
type ParamSource string

const (
	ParamSourcePath  = ParamSource("path")
	ParamSourceQuery = ParamSource("query")
)

var allParamSources = []ParamSource{ParamSourcePath, ParamSourceQuery}

// ParamError describes one bad parameter.
type ParamError struct {
	Param   string `json:"loc"`
	Message string `json:"msg"`
}

// Bind fills the struct pointed to by paramsStructPtr from c's request,
// and validates it.
func Bind(c echo.Context, paramsStructPtr interface{}) error {
	r := newReflector(paramsStructPtr)
	if err := r.setFromDefaults(); err != nil {
		panic("Invalid default value, change the struct def: " + err.Error())
	}
	var bad []ParamError
	for k, values := range c.QueryParams() {
		for _, v := range values {
			if pe := r.set(k, v, ParamSourceQuery); pe != nil {
				bad = append(bad, *pe)
			}
		}
	}
	for i, name := range c.ParamNames() {
		if pe := r.set(name, c.ParamValues()[i], ParamSourcePath); pe != nil {
			bad = append(bad, *pe)
		}
	}
	if len(bad) > 0 {
		sortParamErrors(bad)
		return api.NewBadRequest("invalid_param", "invalid parameters: "+joinParamErrors(bad)).WithErrors(bad)
	}
	return validate(r)
}

func validate(r reflector) error {
	err := validator.Validate(r.Pointer())
	if err == nil {
		return nil
	}
	errMap, ok := err.(validator.ErrorMap)
	if !ok {
		return api.NewError(http.StatusUnprocessableEntity, "invalid_params").WithMessage(err.Error())
	}
	bad := make([]ParamError, 0, len(errMap))
	for fieldName, errs := range errMap {
		for _, e := range errs {
			bad = append(bad, ParamError{Param: r.ParamNameFor(fieldName), Message: e.Error()})
		}
	}
	sortParamErrors(bad)
	return api.NewError(http.StatusUnprocessableEntity, "invalid_params").
		WithMessage("invalid parameters: " + joinParamErrors(bad)).
		WithErrors(bad)
}

func sortParamErrors(errs []ParamError) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Param < errs[j].Param })
}

func joinParamErrors(errs []ParamError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Param+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}
