package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/staff"
)

// adminMiddleware only lets active admins through; when roles are provided, the admin needs one of them.
// Roles & status come from the stored member, not from the token claims.
func adminMiddleware(svc staff.ServiceInterface, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			m, err := getContextMember(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context member")
			}
			if !m.IsActive {
				return errAccountDeactivated
			}
			if m.IsAdmin() && hasAnyRole(m, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func hasAnyRole(m staff.Member, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		for _, r := range m.Roles {
			if r == role {
				return true
			}
		}
	}
	return false
}

// idParamMiddleware lowers the ":id" path param. Ids that are not UUIDs get notFound.
func idParamMiddleware(notFound error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := core.CleanID(ctx.Param("id"))
			if _, err := uuid.Parse(id); err != nil {
				return notFound
			}

			values := ctx.ParamValues()
			for i, name := range ctx.ParamNames() {
				if name == "id" && i < len(values) {
					values[i] = id
				}
			}
			ctx.SetParamValues(values...)
			return next(ctx)
		}
	}
}
