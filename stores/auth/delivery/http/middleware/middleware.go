package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
)

type AuthMiddleware struct {
	auth   domain.AuthUsecase
	access access.UseCase
}

func New(auth domain.AuthUsecase, access access.UseCase) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		access: access,
	}
}

// Auth requires a bearer token and sets "address" to its account
func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

// IsAdmin lets owner and admin through
func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Get("ctx").(ctx.Ctx)
			address := c.Get("address").(domain.Address)

			if role, err := m.access.Role(ctx, address); err != nil {
				return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
			} else if !role.AtLeast(access.RoleAdmin) {
				return delivery.MakeJsonResp(c, http.StatusForbidden, "require admin privilege")
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	cont := c.Get("ctx").(ctx.Ctx)
	if ads, err := m.auth.ParseToken(cont, key); err != nil {
		cont.WithField("err", err).Info("auth.ParseToken failed")
		return false, err
	} else {
		address := domain.Address(ads)
		c.Set("address", address)
		c.Set("ctx", ctx.WithCaller(cont, ads))
		return true, nil
	}
}
