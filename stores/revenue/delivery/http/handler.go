package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/revenue"
	"github.com/x-xyz/marketengine/middleware"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	revenue revenue.UseCase
}

type entryView struct {
	Payee domain.Address `json:"payee"`
	Owed  string         `json:"owed"`
}

func New(e *echo.Echo, revenue revenue.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{revenue}

	g := e.Group("/revenue")

	g.GET("", h.findAll)

	g.POST("/withdraw", h.withdraw, authMiddleware.Auth())

	g.GET("/:payee", h.owed, middleware.IsValidAddress("payee"))
}

func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	entries, err := h.revenue.FindAll(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := make([]entryView, 0, len(entries))
	for _, e := range entries {
		res = append(res, entryView{Payee: e.Payee, Owed: domain.AmountString(e.Owed)})
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) owed(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	payee := domain.Address(c.Param("payee")).ToLower()
	owed, err := h.revenue.Owed(ctx, payee)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, entryView{Payee: payee, Owed: domain.AmountString(owed)})
}

func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	amount, err := h.revenue.Withdraw(ctx, caller)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, entryView{Payee: caller, Owed: domain.AmountString(amount)})
}
