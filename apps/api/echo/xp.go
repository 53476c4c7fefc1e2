package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/xp"
)

type (
	IncreaseRequest struct {
		Amount *int `json:"amount"`
	}

	SetRequest struct {
		XP *int `json:"xp"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}
)

type xpApi struct {
	svc *xp.Service
}

func registerXPAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *xp.Service) {
	api := xpApi{svc: svc}

	cg := g.Group("/courses/:course", jwt, courseMiddleware())

	// manager endpoints
	cg.GET("/xp", api.ranking, managerMiddleware())
	cg.DELETE("/xp", api.reset, managerMiddleware())
	cg.POST("/xp/recalculate", api.recalculate, managerMiddleware())
	cg.DELETE("/groups/:group/xp", api.resetGroup, managerMiddleware())

	// user endpoints
	ug := cg.Group("/xp/:user", selfOrManagerMiddleware())
	ug.GET("", api.retrieve)
	ug.PUT("", api.set, managerMiddleware())
	ug.POST("/increase", api.increase, managerMiddleware())
}

func (api *xpApi) store(ctx echo.Context) (*xp.CourseStore, error) {
	store, err := api.svc.Store(ctx.Request().Context(), contextCourse(ctx))
	return store, errors.Wrap(err, "getting course store")
}

// Handlers

func (api *xpApi) ranking(ctx echo.Context) error {
	query := new(xp.RankingQuery)
	if err := ctx.Bind(query); err != nil {
		return ctx.JSON(http.StatusOK, []xp.State{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	query.Orderings = ordering.Orderings

	store, err := api.store(ctx)
	if err != nil {
		return err
	}
	states, err := store.Ranking(ctx.Request().Context(), *query)
	if err != nil {
		return errors.Wrap(err, "querying ranking")
	}
	if states == nil {
		states = []xp.State{}
	}
	return ctx.JSON(http.StatusOK, states)
}

func (api *xpApi) retrieve(ctx echo.Context) error {
	store, err := api.store(ctx)
	if err != nil {
		return err
	}
	st, err := store.GetState(ctx.Request().Context(), contextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "getting state")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *xpApi) increase(ctx echo.Context) error {
	var data IncreaseRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(errHttpBadRequest, err.Error())
	}
	if data.Amount == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount is a required field"})
	}

	store, err := api.store(ctx)
	if err != nil {
		return err
	}
	st, err := store.Increase(ctx.Request().Context(), contextUser(ctx), *data.Amount)
	if err != nil {
		return errors.Wrap(err, "increasing xp")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *xpApi) set(ctx echo.Context) error {
	var data SetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(errHttpBadRequest, err.Error())
	}
	if data.XP == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "xp", Error: "xp is a required field"})
	}

	store, err := api.store(ctx)
	if err != nil {
		return err
	}
	st, err := store.Set(ctx.Request().Context(), contextUser(ctx), *data.XP)
	if err != nil {
		return errors.Wrap(err, "setting xp")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *xpApi) recalculate(ctx echo.Context) error {
	store, err := api.store(ctx)
	if err != nil {
		return err
	}
	n, err := store.RecalculateLevels(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *xpApi) reset(ctx echo.Context) error {
	store, err := api.store(ctx)
	if err != nil {
		return err
	}
	n, err := store.Reset(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *xpApi) resetGroup(ctx echo.Context) error {
	groupID, err := positiveParam(ctx, "group")
	if err != nil {
		return err
	}
	store, err := api.store(ctx)
	if err != nil {
		return err
	}
	n, err := store.ResetByGroup(ctx.Request().Context(), groupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}
