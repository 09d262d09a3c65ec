package domain

import "errors"

var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput       = errors.New("Given Param is not valid")
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidAddress      = errors.New("Invalid address")
	ErrInvalidSignature    = errors.New("Invalid signature")
	ErrNonceNotFound       = errors.New("nonce not found or expired")

	// engine
	ErrReentrant     = errors.New("reentrant call")
	ErrEngineBusy    = errors.New("engine is busy")
	ErrPaused        = errors.New("engine is paused")
	ErrNotPaused     = errors.New("engine is not paused")
	ErrUnauthorized  = errors.New("caller is not authorized")
	ErrCustodyFailed = errors.New("custody transfer failed")

	// pricing and funds
	ErrInvalidPrice          = errors.New("price must be > 0")
	ErrPriceMismatch         = errors.New("price does not match listing")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidFeeRate        = errors.New("fee rate out of bounds")

	// collections
	ErrCollectionNotSupported = errors.New("collection is not supported")
	ErrCollectionExists       = errors.New("collection already exists")
	ErrCollectionVerified     = errors.New("collection is verified")
	ErrCollectionNotVerified  = errors.New("collection is not verified")

	// items
	ErrNotOwner    = errors.New("caller is not the item owner")
	ErrNotApproved = errors.New("item is not approved for transfer")
	ErrNotSeller   = errors.New("caller is not the seller")

	// listings
	ErrListingExists   = errors.New("listing already exists")
	ErrListingNotFound = errors.New("listing not found")
	ErrSelfPurchase    = errors.New("seller cannot buy own item")

	// offers
	ErrOfferExists      = errors.New("offer already exists")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferEqualsPrice = errors.New("offer price equals listing price")
	ErrOfferUnchanged   = errors.New("offer price unchanged")
	ErrOwnerOffer       = errors.New("owner cannot offer on own item")

	// auctions
	ErrAuctionExists      = errors.New("auction already active")
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrAuctionNotActive   = errors.New("auction not active")
	ErrAuctionExpired     = errors.New("auction expired")
	ErrAuctionNotSold     = errors.New("auction not sold")
	ErrNotCreator         = errors.New("caller is not the auction creator")
	ErrInvalidDuration    = errors.New("duration must be > 0")
	ErrItemListed         = errors.New("item has an active listing")
	ErrItemInAuction      = errors.New("item has an active auction")
	ErrCreatorBid         = errors.New("creator cannot bid")
	ErrBidExists          = errors.New("bid already exists")
	ErrBidNotFound        = errors.New("bid not found")
	ErrBidTooLow          = errors.New("bid must exceed starting and highest bid")
	ErrHighestBidder      = errors.New("highest bidder cannot do this")
	ErrBidCancelled       = errors.New("bid already cancelled")
	ErrNoBids             = errors.New("auction has no bids")
	ErrNothingToClaim     = errors.New("no value to claim")
	ErrNotHighestBidder   = errors.New("caller is not the highest bidder")
	ErrItemAlreadyClaimed = errors.New("item already claimed")

	// revenue
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
)
