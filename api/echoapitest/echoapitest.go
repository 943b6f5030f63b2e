// Package echoapitest serves requests through an echo app in tests.
package echoapitest

import (
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/lithictech/go-profiles/apitest"
)

func Serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

// ServeJson serves req and decodes the response body as json.
func ServeJson(e *echo.Echo, req *http.Request) (*httptest.ResponseRecorder, interface{}) {
	rr := Serve(e, req)
	return rr, apitest.MustUnmarshal(rr.Body.String())
}
