package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/base/validator"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/event"
)

const maxLimit = 1000

type handler struct {
	event event.UseCase
}

func New(e *echo.Echo, event event.UseCase) {
	h := &handler{event}

	g := e.Group("/events")

	g.GET("", h.findAll)
}

func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	opts := []event.FindAllOptions{}
	if kind := c.QueryParam("kind"); kind != "" {
		opts = append(opts, event.WithKind(event.Kind(kind)))
	}
	if collection := c.QueryParam("collection"); collection != "" {
		if !validator.IsValidAddress(collection) {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
		}
		opts = append(opts, event.WithCollection(domain.Address(collection)))
	}
	if afterSeq := c.QueryParam("afterSeq"); afterSeq != "" {
		seq, err := strconv.ParseUint(afterSeq, 10, 64)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidNumberFormat)
		}
		opts = append(opts, event.WithAfterSeq(seq))
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n > maxLimit {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
		}
		opts = append(opts, event.WithLimit(n))
	}

	res, err := h.event.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
