package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/auction"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	auction auction.UseCase
}

type auctionView struct {
	Id            string         `json:"id"`
	Creator       domain.Address `json:"creator"`
	Collection    domain.Address `json:"collection"`
	TokenId       domain.TokenId `json:"tokenId"`
	StartingBid   string         `json:"startingBid"`
	HighestBid    string         `json:"highestBid"`
	HighestBidder domain.Address `json:"highestBidder,omitempty"`
	StartTime     int64          `json:"startTime"`
	EndTime       int64          `json:"endTime"`
	State         auction.State  `json:"state"`
	BidsCount     int            `json:"bidsCount"`
	ItemClaimed   bool           `json:"itemClaimed"`
}

type bidView struct {
	AuctionId    string         `json:"auctionId"`
	Bidder       domain.Address `json:"bidder"`
	Amount       string         `json:"amount"`
	Withdrawable bool           `json:"withdrawable"`
	Cancelled    bool           `json:"cancelled"`
	UpdatedAt    int64          `json:"updatedAt"`
}

func toView(a auction.Auction) auctionView {
	return auctionView{
		Id:            a.Id,
		Creator:       a.Creator,
		Collection:    a.Collection,
		TokenId:       a.TokenId,
		StartingBid:   domain.AmountString(a.StartingBid),
		HighestBid:    domain.AmountString(a.HighestBid),
		HighestBidder: a.HighestBidder,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		State:         a.State,
		BidsCount:     a.BidsCount,
		ItemClaimed:   a.ItemClaimed,
	}
}

func toViews(as []auction.Auction) []auctionView {
	res := make([]auctionView, 0, len(as))
	for _, a := range as {
		res = append(res, toView(a))
	}
	return res
}

func toBidView(b auction.Bid) bidView {
	return bidView{
		AuctionId:    b.AuctionId,
		Bidder:       b.Bidder,
		Amount:       domain.AmountString(b.Amount),
		Withdrawable: b.Withdrawable,
		Cancelled:    b.Cancelled,
		UpdatedAt:    b.UpdatedAt,
	}
}

func New(e *echo.Echo, auction auction.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{auction}

	g := e.Group("/auctions")

	g.GET("", h.findAll)

	g.GET("/active", h.findActive)

	g.GET("/recent", h.recent)

	g.POST("", h.create, authMiddleware.Auth())

	g.GET("/:id", h.get)

	g.GET("/:id/bids", h.findBids)

	g.GET("/:id/bids/:bidder", h.getBid)

	g.POST("/:id/bids", h.createBid, authMiddleware.Auth())

	g.PUT("/:id/bids", h.updateBid, authMiddleware.Auth())

	g.DELETE("/:id/bids", h.cancelBid, authMiddleware.Auth())

	g.POST("/:id/bids/claim", h.claimBidValue, authMiddleware.Auth())

	g.POST("/:id/accept", h.acceptBid, authMiddleware.Auth())

	g.POST("/:id/cancel", h.cancel, authMiddleware.Auth())

	g.POST("/:id/claim", h.claimTokenId, authMiddleware.Auth())
}

func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.auction.FindAll(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) findActive(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.auction.FindActive(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) recent(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.auction.Recent(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toViews(res))
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.auction.Get(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toView(*res))
}

func (h *handler) findBids(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	bids, err := h.auction.FindBids(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := make([]bidView, 0, len(bids))
	for _, b := range bids {
		res = append(res, toBidView(b))
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.auction.GetBid(ctx, c.Param("id"), domain.Address(c.Param("bidder")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toBidView(*res))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Collection  domain.Address `json:"collection" validate:"required,address"`
		TokenId     domain.TokenId `json:"tokenId" validate:"required,amount"`
		StartingBid string         `json:"startingBid" validate:"required,amount"`
		// Duration in seconds
		Duration int64 `json:"duration"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Info("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	startingBid, err := delivery.ParseAmount(p.StartingBid)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.auction.CreateAuction(ctx, caller, auction.CreatePayload{
		Item:        domain.NewItemKey(p.Collection, p.TokenId),
		StartingBid: startingBid,
		Duration:    p.Duration,
	})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, toView(*res))
}

func bindAmount(c echo.Context) (*big.Int, error) {
	type params struct {
		Amount string `json:"amount" validate:"required,amount"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return nil, domain.ErrBadParamInput
	}
	if err := c.Validate(p); err != nil {
		return nil, domain.ErrBadParamInput
	}
	return delivery.ParseAmount(p.Amount)
}

func (h *handler) createBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	amount, err := bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.auction.CreateBid(ctx, caller, c.Param("id"), amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, "ok")
}

func (h *handler) updateBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	amount, err := bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.auction.UpdateBid(ctx, caller, c.Param("id"), amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) cancelBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.CancelBid(ctx, caller, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) claimBidValue(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	amount, err := h.auction.ClaimBidValue(ctx, caller, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]string{"amount": amount.String()})
}

func (h *handler) acceptBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.AcceptBid(ctx, caller, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.CancelAuction(ctx, caller, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) claimTokenId(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.ClaimTokenId(ctx, caller, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
