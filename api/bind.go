package api

import (
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
)

// BindObject decodes the request body as a json object.
// An empty body is an empty object. Any other body that is not
// a json object is a 400 with the invalid_body code.
func BindObject(c echo.Context) (map[string]interface{}, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, NewBadRequest("invalid_body", "could not read request body")
	}
	obj := map[string]interface{}{}
	if len(body) == 0 {
		return obj, nil
	}
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, NewBadRequest("invalid_body", "request body must be a json object")
	}
	return obj, nil
}
