package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	contextCourseKey = "course"
	contextUserKey   = "user"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// courseMiddleware stores the `:course` path param in the context.
func courseMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := positiveParam(ctx, "course")
			if err != nil {
				return err
			}
			ctx.Set(contextCourseKey, id)
			return next(ctx)
		}
	}
}

// managerMiddleware only lets through the managers of the context course.
func managerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Manages(contextCourse(ctx)) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// selfOrManagerMiddleware stores the `:user` path param in the context,
// and only lets through that user or the managers of the context course.
func selfOrManagerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			userID, err := positiveParam(ctx, "user")
			if err != nil {
				return err
			}
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.UserID != userID && !claims.Manages(contextCourse(ctx)) {
				return errHttpForbidden
			}
			ctx.Set(contextUserKey, userID)
			return next(ctx)
		}
	}
}

func positiveParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func contextCourse(ctx echo.Context) int {
	id, _ := ctx.Get(contextCourseKey).(int)
	return id
}

func contextUser(ctx echo.Context) int {
	id, _ := ctx.Get(contextUserKey).(int)
	return id
}
