package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/offer"
	"github.com/x-xyz/marketengine/middleware"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	offer offer.UseCase
}

type offerView struct {
	Buyer      domain.Address `json:"buyer"`
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	Price      string         `json:"price"`
	CreatedAt  int64          `json:"createdAt"`
}

func toView(o offer.Offer) offerView {
	return offerView{
		Buyer:      o.Buyer,
		Collection: o.Collection,
		TokenId:    o.TokenId,
		Price:      domain.AmountString(o.Price),
		CreatedAt:  o.CreatedAt,
	}
}

func toViews(os []offer.Offer) []offerView {
	res := make([]offerView, 0, len(os))
	for _, o := range os {
		res = append(res, toView(o))
	}
	return res
}

func New(e *echo.Echo, offer offer.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{offer}

	g := e.Group("/offers")

	g.GET("/buyer/:buyer", h.findByBuyer, middleware.IsValidAddress("buyer"))

	g.GET("/:collection/:tokenId", h.findByItem)

	g.GET("/:collection/:tokenId/buyer/:buyer", h.get)

	g.POST("/:collection/:tokenId", h.create, authMiddleware.Auth())

	g.PUT("/:collection/:tokenId", h.update, authMiddleware.Auth())

	g.DELETE("/:collection/:tokenId", h.cancel, authMiddleware.Auth())

	g.POST("/:collection/:tokenId/accept", h.accept, authMiddleware.Auth())
}

func itemKey(c echo.Context) domain.ItemKey {
	return domain.NewItemKey(domain.Address(c.Param("collection")), domain.TokenId(c.Param("tokenId")))
}

func bindPrice(c echo.Context) (*big.Int, error) {
	type params struct {
		Price string `json:"price" validate:"required,amount"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return nil, domain.ErrBadParamInput
	}
	if err := c.Validate(p); err != nil {
		return nil, domain.ErrBadParamInput
	}
	price, err := delivery.ParseAmount(p.Price)
	if err != nil {
		return nil, err
	}
	return price, nil
}

func (h *handler) findByBuyer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.offer.FindByBuyer(ctx, domain.Address(c.Param("buyer")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) findByItem(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.offer.FindByItem(ctx, itemKey(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.offer.Get(ctx, offer.NewId(itemKey(c), domain.Address(c.Param("buyer"))))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toView(*res))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	price, err := bindPrice(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.offer.CreateOffer(ctx, caller, itemKey(c), price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, toView(*res))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	price, err := bindPrice(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.offer.UpdateOffer(ctx, caller, itemKey(c), price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toView(*res))
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.offer.CancelOffer(ctx, caller, itemKey(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) accept(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Offerer domain.Address `json:"offerer" validate:"required,address"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.offer.AcceptOffer(ctx, caller, itemKey(c), p.Offerer); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
