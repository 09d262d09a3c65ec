package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	access access.UseCase
}

func New(e *echo.Echo, access access.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{access}

	g := e.Group("/admin")

	g.GET("/config", h.getConfig)

	g.GET("/role", h.getRole, authMiddleware.Auth())

	g.POST("/pause", h.pause, authMiddleware.Auth(), authMiddleware.IsAdmin())

	g.POST("/unpause", h.unpause, authMiddleware.Auth(), authMiddleware.IsAdmin())

	// owner only, enforced by the use case
	g.PUT("/tradeFee", h.updateTradeFee, authMiddleware.Auth())

	g.PUT("/admin", h.setAdmin, authMiddleware.Auth())

	g.PUT("/owner", h.transferOwnership, authMiddleware.Auth())
}

func (h *handler) getConfig(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	cfg, err := h.access.Config(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, cfg)
}

func (h *handler) getRole(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)
	role, err := h.access.Role(ctx, caller)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]string{"role": role.String()})
}

func (h *handler) pause(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)
	if err := h.access.Pause(ctx, caller); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) unpause(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)
	if err := h.access.Unpause(ctx, caller); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) updateTradeFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		TradeFeeBps *uint32 `json:"tradeFeeBps" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.access.UpdateTradeFee(ctx, caller, *p.TradeFeeBps); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

type addressParams struct {
	Address domain.Address `json:"address" validate:"required,address"`
}

func bindAddress(c echo.Context) (domain.Address, error) {
	p := &addressParams{}
	if err := c.Bind(p); err != nil {
		return "", domain.ErrBadParamInput
	}
	if err := c.Validate(p); err != nil {
		return "", domain.ErrInvalidAddress
	}
	return p.Address, nil
}

func (h *handler) setAdmin(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	admin, err := bindAddress(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.access.SetAdmin(ctx, caller, admin); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) transferOwnership(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	owner, err := bindAddress(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.access.TransferOwnership(ctx, caller, owner); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
