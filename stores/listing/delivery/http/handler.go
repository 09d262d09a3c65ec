package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/middleware"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	listing listing.UseCase
}

// listingView renders amounts as decimal strings in minimal units
type listingView struct {
	Seller     domain.Address `json:"seller"`
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	Price      string         `json:"price"`
	ListedAt   int64          `json:"listedAt"`
}

func toView(l listing.Listing) listingView {
	return listingView{
		Seller:     l.Seller,
		Collection: l.Collection,
		TokenId:    l.TokenId,
		Price:      domain.AmountString(l.Price),
		ListedAt:   l.ListedAt,
	}
}

func toViews(ls []listing.Listing) []listingView {
	res := make([]listingView, 0, len(ls))
	for _, l := range ls {
		res = append(res, toView(l))
	}
	return res
}

func New(e *echo.Echo, listing listing.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{listing}

	g := e.Group("/listings")

	g.GET("/recent", h.recent)

	g.GET("/collection/:collection", h.findByCollection, middleware.IsValidAddress("collection"))

	g.GET("/collection/:collection/recent", h.recentByCollection, middleware.IsValidAddress("collection"))

	g.POST("", h.list, authMiddleware.Auth())

	g.GET("/:collection/:tokenId", h.get)

	g.PUT("/:collection/:tokenId", h.update, authMiddleware.Auth())

	g.DELETE("/:collection/:tokenId", h.cancel, authMiddleware.Auth())

	g.POST("/:collection/:tokenId/buy", h.buy, authMiddleware.Auth())
}

func itemKey(c echo.Context) domain.ItemKey {
	return domain.NewItemKey(domain.Address(c.Param("collection")), domain.TokenId(c.Param("tokenId")))
}

type priceParams struct {
	Price string `json:"price" validate:"required,amount"`
}

func bindPrice(c echo.Context, p *priceParams) error {
	if err := c.Bind(p); err != nil {
		return domain.ErrBadParamInput
	}
	if err := c.Validate(p); err != nil {
		return domain.ErrBadParamInput
	}
	return nil
}

func (h *handler) recent(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.listing.Recent(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) findByCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.listing.FindByCollection(ctx, domain.Address(c.Param("collection")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) recentByCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.listing.RecentByCollection(ctx, domain.Address(c.Param("collection")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.listing.Get(ctx, itemKey(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toView(*res))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Collection domain.Address `json:"collection" validate:"required,address"`
		TokenId    domain.TokenId `json:"tokenId" validate:"required,amount"`
		Price      string         `json:"price" validate:"required,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Info("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	price, err := delivery.ParseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.listing.List(ctx, caller, domain.NewItemKey(p.Collection, p.TokenId), price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, toView(*res))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	p := &priceParams{}
	if err := bindPrice(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := delivery.ParseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.listing.UpdateListing(ctx, caller, itemKey(c), price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toView(*res))
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.listing.CancelListing(ctx, caller, itemKey(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

// buy fails with a price mismatch unless price is the listed price
func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	p := &priceParams{}
	if err := bindPrice(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := delivery.ParseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.listing.Buy(ctx, caller, itemKey(c), price); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
