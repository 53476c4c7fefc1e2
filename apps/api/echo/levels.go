package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/levelup/core/levels"
)

type levelsApi struct {
	svc *levels.Service
}

func registerLevelsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *levels.Service) {
	api := levelsApi{svc: svc}

	g.GET("/levels/preview", api.preview, jwt)

	dg := g.Group("/defaults/levels", jwt, adminMiddleware())
	dg.GET("", api.retrieveDefaults)
	dg.PUT("", api.updateDefaults)

	cg := g.Group("/courses/:course/levels", jwt, courseMiddleware())
	cg.GET("", api.retrieve)
	cg.PUT("", api.update, managerMiddleware())
	cg.DELETE("", api.reset, managerMiddleware())
}

// Handlers

func (api *levelsApi) preview(ctx echo.Context) error {
	var data levels.Preview
	if err := ctx.Bind(&data); err != nil {
		return errHttpBadRequest
	}

	lvls, err := api.svc.Preview(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lvls)
}

func (api *levelsApi) retrieveDefaults(ctx echo.Context) error {
	info, err := api.svc.GetDefaults(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting default levels")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *levelsApi) updateDefaults(ctx echo.Context) error {
	var data levels.Update
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(errHttpBadRequest, err.Error())
	}

	info, err := api.svc.SetDefaults(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "setting default levels")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *levelsApi) retrieve(ctx echo.Context) error {
	info, err := api.svc.Get(ctx.Request().Context(), contextCourse(ctx))
	if err != nil {
		return errors.Wrap(err, "getting course levels")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *levelsApi) update(ctx echo.Context) error {
	var data levels.Update
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(errHttpBadRequest, err.Error())
	}

	info, err := api.svc.Set(ctx.Request().Context(), contextCourse(ctx), data)
	if err != nil {
		return errors.Wrap(err, "setting course levels")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *levelsApi) reset(ctx echo.Context) error {
	info, err := api.svc.ResetToDefaults(ctx.Request().Context(), contextCourse(ctx))
	if err != nil {
		return errors.Wrap(err, "resetting course levels")
	}
	return ctx.JSON(http.StatusOK, info)
}
