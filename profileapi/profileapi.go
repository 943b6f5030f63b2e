// Package profileapi exposes a profilestore.Store over HTTP.
package profileapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lithictech/go-profiles/api"
	"github.com/lithictech/go-profiles/api/apiparams"
	"github.com/lithictech/go-profiles/profile"
	"github.com/lithictech/go-profiles/profilestore"
	"github.com/lithictech/go-profiles/stringutil"
	"github.com/pkg/errors"
)

const Prefix = "/v1/profiles"

type Config struct {
	Store *profilestore.Store
	// CacheControl is the Cache-Control value for successful reads.
	// Defaults to "no-store", since profiles can change at any time.
	CacheControl string
	// Middleware runs before every profile endpoint,
	// like a preflight check that the store is seeded.
	Middleware []echo.MiddlewareFunc
}

// Register adds the profile endpoints to e.
func Register(e *echo.Echo, cfg Config) {
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}
	h := &handlers{store: cfg.Store}
	reads := api.WithCacheControl(true, cfg.CacheControl)
	g := e.Group(Prefix, cfg.Middleware...)
	g.POST("", h.create)
	g.GET("", h.search, reads)
	g.GET("/statistics", h.statistics, reads)
	g.GET("/by_username/:username", h.getByUsername, reads)
	g.GET("/:id", h.get, reads)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// StatusHandler reports version and how many profiles are stored,
// for use as api.Config.StatusHandler.
func StatusHandler(store *profilestore.Store, version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version":  version,
			"profiles": store.Len(),
		})
	}
}

type handlers struct {
	store *profilestore.Store
}

func (h *handlers) create(c echo.Context) error {
	raw, err := api.BindObject(c)
	if err != nil {
		return err
	}
	p, err := h.store.Create(raw)
	if err != nil {
		return storeError(err)
	}
	api.Logger(c).WithField("user_id", p.UserID).Info("profile_created")
	return c.JSON(http.StatusCreated, p)
}

func (h *handlers) get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, ok := h.store.Get(id)
	if !ok {
		return notFound("no profile with user_id " + strconv.Itoa(id))
	}
	api.SetCacheControl(c)
	return c.JSON(http.StatusOK, p)
}

func (h *handlers) getByUsername(c echo.Context) error {
	params := usernameParams{}
	if err := apiparams.Bind(c, &params); err != nil {
		return err
	}
	p, ok := h.store.GetByUsername(params.Username)
	if !ok {
		return notFound("no profile with username " + strconv.Quote(params.Username))
	}
	api.SetCacheControl(c)
	return c.JSON(http.StatusOK, p)
}

func (h *handlers) update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	partial, err := api.BindObject(c)
	if err != nil {
		return err
	}
	p, err := h.store.Update(id, partial)
	if err != nil {
		return storeError(err)
	}
	api.Logger(c).WithField("user_id", id).Info("profile_updated")
	return c.JSON(http.StatusOK, p)
}

func (h *handlers) delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	deleted := h.store.Delete(id)
	if deleted {
		api.Logger(c).WithField("user_id", id).Info("profile_deleted")
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": deleted})
}

// searchParams are the query parameters for search.
// Skills may be repeated (skills=a&skills=b) or comma-separated (skills=a,b).
type searchParams struct {
	MinAge   *int     `query:"min_age"`
	MaxAge   *int     `query:"max_age"`
	Skills   []string `query:"skills"`
	City     *string  `query:"city"`
	IsActive *bool    `query:"is_active"`
	Gender   *string  `query:"gender" validate:"cenum=male|female|other|prefer_not_to_say|opt"`
}

func (p searchParams) criteria() profilestore.Criteria {
	c := profilestore.Criteria{
		MinAge:   p.MinAge,
		MaxAge:   p.MaxAge,
		Skills:   stringutil.SplitList(p.Skills),
		City:     p.City,
		IsActive: p.IsActive,
	}
	if p.Gender != nil {
		g := profile.Gender(*p.Gender)
		c.Gender = &g
	}
	return c
}

func (h *handlers) search(c echo.Context) error {
	params := searchParams{}
	if err := apiparams.Bind(c, &params); err != nil {
		return err
	}
	api.SetCacheControl(c)
	return c.JSON(http.StatusOK, map[string]interface{}{"items": h.store.Search(params.criteria())})
}

func (h *handlers) statistics(c echo.Context) error {
	api.SetCacheControl(c)
	return c.JSON(http.StatusOK, h.store.Statistics())
}

type idParams struct {
	ID int `path:"id"`
}

type usernameParams struct {
	Username string `path:"username"`
}

func idParam(c echo.Context) (int, error) {
	params := idParams{}
	if err := apiparams.Bind(c, &params); err != nil {
		return 0, err
	}
	return params.ID, nil
}

func notFound(msg string) error {
	return api.NewError(http.StatusNotFound, "not_found").WithMessage(msg)
}

// storeError converts errors from the store into api errors.
func storeError(err error) error {
	if ve := profile.AsValidationError(err); ve != nil {
		return api.NewError(http.StatusUnprocessableEntity, "validation_failed").
			WithMessage(ve.Error()).
			WithErrors(ve.Errors)
	}
	switch errors.Cause(err) {
	case profilestore.ErrDuplicateIdentifier:
		return api.NewError(http.StatusConflict, "duplicate_identifier").WithMessage(err.Error())
	case profilestore.ErrDuplicateKey:
		return api.NewError(http.StatusConflict, "duplicate_username").WithMessage(err.Error())
	case profilestore.ErrNotFound:
		return notFound(err.Error())
	}
	return api.NewInternalError(err)
}
