package delivery

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/x-xyz/marketengine/domain"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

var errStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		domain.ErrNotFound,
		domain.ErrListingNotFound,
		domain.ErrOfferNotFound,
		domain.ErrAuctionNotFound,
		domain.ErrBidNotFound,
	}},
	{http.StatusUnauthorized, []error{
		domain.ErrInvalidSignature,
		domain.ErrNonceNotFound,
	}},
	{http.StatusForbidden, []error{
		domain.ErrUnauthorized,
		domain.ErrNotOwner,
		domain.ErrNotSeller,
		domain.ErrNotCreator,
		domain.ErrNotHighestBidder,
		domain.ErrHighestBidder,
		domain.ErrCreatorBid,
		domain.ErrOwnerOffer,
		domain.ErrSelfPurchase,
	}},
	{http.StatusLocked, []error{
		domain.ErrPaused,
	}},
	{http.StatusBadGateway, []error{
		domain.ErrCustodyFailed,
	}},
	{http.StatusServiceUnavailable, []error{
		domain.ErrEngineBusy,
	}},
	{http.StatusBadRequest, []error{
		domain.ErrBadParamInput,
		domain.ErrInvalidNumberFormat,
		domain.ErrInvalidAddress,
		domain.ErrInvalidPrice,
		domain.ErrInvalidFeeRate,
		domain.ErrInvalidDuration,
		domain.ErrBidTooLow,
		domain.ErrCollectionNotSupported,
		domain.ErrNotApproved,
		domain.ErrInsufficientBalance,
		domain.ErrInsufficientAllowance,
		domain.ErrPriceMismatch,
		domain.ErrOfferEqualsPrice,
		domain.ErrOfferUnchanged,
	}},
	{http.StatusConflict, []error{
		domain.ErrReentrant,
		domain.ErrNotPaused,
		domain.ErrCollectionExists,
		domain.ErrCollectionVerified,
		domain.ErrCollectionNotVerified,
		domain.ErrListingExists,
		domain.ErrOfferExists,
		domain.ErrAuctionExists,
		domain.ErrAuctionNotActive,
		domain.ErrAuctionExpired,
		domain.ErrAuctionNotSold,
		domain.ErrItemListed,
		domain.ErrItemInAuction,
		domain.ErrBidExists,
		domain.ErrBidCancelled,
		domain.ErrNoBids,
		domain.ErrNothingToClaim,
		domain.ErrItemAlreadyClaimed,
		domain.ErrNothingToWithdraw,
	}},
}

// ErrorStatus maps a domain error to its HTTP status, fallback otherwise
func ErrorStatus(err error, fallback int) int {
	for _, s := range errStatus {
		for _, e := range s.errs {
			if errors.Is(err, e) {
				return s.status
			}
		}
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = ErrorStatus(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// ParseAmount accepts non-negative integers in minimal units, including
// exponent forms such as 1e18
func ParseAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return nil, domain.ErrInvalidNumberFormat
	}
	return d.BigInt(), nil
}
