package usecase

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/auction"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/custody"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/domain/listing"
)

type AuctionUseCaseCfg struct {
	Executor    engine.Executor
	Settler     engine.Settler
	AuctionRepo auction.Repo
	ListingRepo listing.Repo
	Directory   collection.Directory
	Gateway     custody.Gateway
}

type impl struct {
	executor  engine.Executor
	settler   engine.Settler
	auctions  auction.Repo
	listings  listing.Repo
	directory collection.Directory
	gateway   custody.Gateway
}

func NewAuction(cfg *AuctionUseCaseCfg) auction.UseCase {
	return &impl{
		executor:  cfg.Executor,
		settler:   cfg.Settler,
		auctions:  cfg.AuctionRepo,
		listings:  cfg.ListingRepo,
		directory: cfg.Directory,
		gateway:   cfg.Gateway,
	}
}

// CreateAuction takes the item into engine custody right away, so the
// sale path never depends on a later approval.
func (im *impl) CreateAuction(c ctx.Ctx, caller domain.Address, p auction.CreatePayload) (*auction.Auction, error) {
	item := domain.NewItemKey(p.Item.Collection, p.Item.TokenId)
	var res *auction.Auction
	err := im.executor.Exec(c, "createAuction", func(c ctx.Ctx, tx *journal.Tx) error {
		startingBid := domain.CopyAmount(p.StartingBid)
		if startingBid.Sign() < 0 {
			return domain.ErrInvalidPrice
		}
		if p.Duration <= 0 {
			return domain.ErrInvalidDuration
		}
		if !im.directory.IsSupported(item.Collection) {
			return domain.ErrCollectionNotSupported
		}
		if im.listings.Exists(item) {
			return domain.ErrItemListed
		}
		if _, ok := im.auctions.ActiveByItem(item); ok {
			return domain.ErrAuctionExists
		}
		if err := custody.RequireOwner(c, im.gateway, item, caller); err != nil {
			return err
		}
		if err := custody.RequireApproval(c, im.gateway, item, im.executor.Account()); err != nil {
			return err
		}

		now := im.executor.Now()
		id, err := auction.DeriveId(item.Collection, item.TokenId, now, im.auctions.NextNonce(tx))
		if err != nil {
			return err
		}
		if existing, ok := im.auctions.FindOne(id); ok && existing.State == auction.StateActive {
			return domain.ErrAuctionExists
		}

		a := auction.Auction{
			Id:          id,
			Creator:     caller.ToLower(),
			Collection:  item.Collection,
			TokenId:     item.TokenId,
			StartingBid: startingBid,
			HighestBid:  big.NewInt(0),
			StartTime:   now,
			EndTime:     now + p.Duration,
			State:       auction.StateActive,
		}
		im.auctions.Insert(tx, a)

		if err := im.gateway.Transfer(c, item.Collection, item.TokenId, a.Creator, im.executor.Account()); err != nil {
			return custody.Failed("transfer", err)
		}
		im.emit(tx, event.KindAuctionStarted, &a, a.Creator, a.StartingBid)
		res = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// biddable loads an auction that still accepts bids at the logical now
func (im *impl) biddable(id string) (*auction.Auction, error) {
	a, ok := im.auctions.FindOne(id)
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	if a.State != auction.StateActive {
		return nil, domain.ErrAuctionNotActive
	}
	if a.IsExpired(im.executor.Now()) {
		return nil, domain.ErrAuctionExpired
	}
	return a, nil
}

// displace makes the current highest bid withdrawable, unless it belongs
// to the incoming bidder
func (im *impl) displace(tx *journal.Tx, a *auction.Auction, bidder domain.Address) {
	if !a.HasBids() || a.HighestBidder.Equals(bidder) {
		return
	}
	prev, ok := im.auctions.FindBid(a.Id, a.HighestBidder)
	if !ok {
		return
	}
	prev.Withdrawable = true
	prev.UpdatedAt = im.executor.Now()
	im.auctions.PutBid(tx, *prev)
}

func (im *impl) CreateBid(c ctx.Ctx, bidder domain.Address, auctionId string, amount *big.Int) error {
	return im.executor.Exec(c, "createBid", func(c ctx.Ctx, tx *journal.Tx) error {
		a, err := im.biddable(auctionId)
		if err != nil {
			return err
		}
		if a.Creator.Equals(bidder) {
			return domain.ErrCreatorBid
		}
		if _, ok := im.auctions.FindBid(a.Id, bidder); ok {
			return domain.ErrBidExists
		}
		if amount == nil || amount.Cmp(a.MinimumBid()) <= 0 {
			return domain.ErrBidTooLow
		}
		if err := custody.RequireFunds(c, im.gateway, bidder, im.executor.Account(), amount); err != nil {
			return err
		}

		im.displace(tx, a, bidder)
		im.auctions.PutBid(tx, auction.Bid{
			AuctionId: a.Id,
			Bidder:    bidder.ToLower(),
			Amount:    domain.CopyAmount(amount),
			UpdatedAt: im.executor.Now(),
		})
		a.HighestBid = domain.CopyAmount(amount)
		a.HighestBidder = bidder.ToLower()
		a.BidsCount++
		im.auctions.Update(tx, *a)

		if err := custody.PullEscrow(c, im.gateway, tx, bidder, im.executor.Account(), amount); err != nil {
			return err
		}
		im.emit(tx, event.KindBidCreated, a, bidder, amount)
		return nil
	})
}

// UpdateBid raises an existing bid and pulls only the difference. A
// cancelled bid becomes active again.
func (im *impl) UpdateBid(c ctx.Ctx, bidder domain.Address, auctionId string, amount *big.Int) error {
	return im.executor.Exec(c, "updateBid", func(c ctx.Ctx, tx *journal.Tx) error {
		a, err := im.biddable(auctionId)
		if err != nil {
			return err
		}
		b, ok := im.auctions.FindBid(a.Id, bidder)
		if !ok {
			return domain.ErrBidNotFound
		}
		if amount == nil || amount.Cmp(a.MinimumBid()) <= 0 || amount.Cmp(b.Amount) <= 0 {
			return domain.ErrBidTooLow
		}
		delta := new(big.Int).Sub(amount, b.Amount)
		if err := custody.RequireFunds(c, im.gateway, bidder, im.executor.Account(), delta); err != nil {
			return err
		}

		im.displace(tx, a, bidder)
		if b.Cancelled {
			a.BidsCount++
		}
		b.Amount = domain.CopyAmount(amount)
		b.Withdrawable = false
		b.Cancelled = false
		b.UpdatedAt = im.executor.Now()
		im.auctions.PutBid(tx, *b)
		a.HighestBid = domain.CopyAmount(amount)
		a.HighestBidder = b.Bidder
		im.auctions.Update(tx, *a)

		if err := custody.PullEscrow(c, im.gateway, tx, bidder, im.executor.Account(), delta); err != nil {
			return err
		}
		im.emit(tx, event.KindBidUpdated, a, bidder, amount)
		return nil
	})
}

// CancelBid withdraws a displaced bid from the auction. Funds stay in
// escrow until ClaimBidValue.
func (im *impl) CancelBid(c ctx.Ctx, bidder domain.Address, auctionId string) error {
	return im.executor.Exec(c, "cancelBid", func(c ctx.Ctx, tx *journal.Tx) error {
		a, ok := im.auctions.FindOne(auctionId)
		if !ok {
			return domain.ErrAuctionNotFound
		}
		b, ok := im.auctions.FindBid(a.Id, bidder)
		if !ok {
			return domain.ErrBidNotFound
		}
		if a.HighestBidder.Equals(bidder) {
			return domain.ErrHighestBidder
		}
		if b.Cancelled {
			return domain.ErrBidCancelled
		}

		b.Withdrawable = true
		b.Cancelled = true
		b.UpdatedAt = im.executor.Now()
		im.auctions.PutBid(tx, *b)
		// a finished auction keeps the bid count it ended with
		if a.State == auction.StateActive {
			a.BidsCount--
			im.auctions.Update(tx, *a)
		}
		im.emit(tx, event.KindBidCancelled, a, bidder, nil)
		return nil
	}, engine.AllowWhilePaused())
}

// ClaimBidValue returns an escrowed bid once. Displaced bids are claimable
// at any time; after the auction ends every bid but a sold auction's
// winning bid is.
func (im *impl) ClaimBidValue(c ctx.Ctx, bidder domain.Address, auctionId string) (*big.Int, error) {
	var res *big.Int
	err := im.executor.Exec(c, "claimBidValue", func(c ctx.Ctx, tx *journal.Tx) error {
		a, ok := im.auctions.FindOne(auctionId)
		if !ok {
			return domain.ErrAuctionNotFound
		}
		b, ok := im.auctions.FindBid(a.Id, bidder)
		if !ok {
			return domain.ErrBidNotFound
		}
		isHighest := a.HighestBidder.Equals(bidder)
		if isHighest && a.State != auction.StateInactive {
			return domain.ErrHighestBidder
		}
		if !b.Withdrawable && !a.State.IsTerminal() {
			return domain.ErrNothingToClaim
		}
		if !domain.IsPositive(b.Amount) {
			return domain.ErrNothingToClaim
		}

		amount := domain.CopyAmount(b.Amount)
		b.Amount = big.NewInt(0)
		b.Withdrawable = true
		b.UpdatedAt = im.executor.Now()
		im.auctions.PutBid(tx, *b)

		if err := im.gateway.Push(c, bidder, amount); err != nil {
			return custody.Failed("push", err)
		}
		im.emit(tx, event.KindBidValueClaimed, a, bidder, amount)
		res = amount
		return nil
	}, engine.AllowWhilePaused())
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AcceptBid sells to the highest bidder. It is allowed after the end time;
// the winner collects the item with ClaimTokenId.
func (im *impl) AcceptBid(c ctx.Ctx, caller domain.Address, auctionId string) error {
	return im.executor.Exec(c, "acceptBid", func(c ctx.Ctx, tx *journal.Tx) error {
		a, ok := im.auctions.FindOne(auctionId)
		if !ok {
			return domain.ErrAuctionNotFound
		}
		if !a.Creator.Equals(caller) {
			return domain.ErrNotCreator
		}
		if a.State != auction.StateActive {
			return domain.ErrAuctionNotActive
		}
		if !a.HasBids() {
			return domain.ErrNoBids
		}
		quote, err := im.settler.Quote(engine.Sale{Item: a.Key(), Seller: a.Creator, Price: a.HighestBid})
		if err != nil {
			return err
		}

		a.State = auction.StateSold
		im.auctions.Update(tx, *a)
		im.auctions.Deactivate(tx, a.Id)
		im.settler.Settle(c, tx, quote)

		e := event.Event{
			Kind:         event.KindBidAccepted,
			Collection:   a.Collection,
			TokenId:      a.TokenId,
			AuctionId:    a.Id,
			Account:      a.HighestBidder,
			Counterparty: a.Creator,
			Value:        a.HighestBid.String(),
		}
		im.executor.Emit(tx, e)
		return nil
	})
}

// CancelAuction returns the item to the creator. Pending bids become
// claimable; they are not refunded here.
func (im *impl) CancelAuction(c ctx.Ctx, caller domain.Address, auctionId string) error {
	return im.executor.Exec(c, "cancelAuction", func(c ctx.Ctx, tx *journal.Tx) error {
		a, ok := im.auctions.FindOne(auctionId)
		if !ok {
			return domain.ErrAuctionNotFound
		}
		if !a.Creator.Equals(caller) {
			return domain.ErrNotCreator
		}
		if a.State != auction.StateActive {
			return domain.ErrAuctionNotActive
		}

		a.State = auction.StateInactive
		im.auctions.Update(tx, *a)
		im.auctions.Deactivate(tx, a.Id)

		if err := im.gateway.Transfer(c, a.Collection, a.TokenId, im.executor.Account(), a.Creator); err != nil {
			return custody.Failed("transfer", err)
		}
		im.emit(tx, event.KindAuctionCancelled, a, a.Creator, nil)
		return nil
	}, engine.AllowWhilePaused())
}

func (im *impl) ClaimTokenId(c ctx.Ctx, caller domain.Address, auctionId string) error {
	return im.executor.Exec(c, "claimTokenId", func(c ctx.Ctx, tx *journal.Tx) error {
		a, ok := im.auctions.FindOne(auctionId)
		if !ok {
			return domain.ErrAuctionNotFound
		}
		if a.State != auction.StateSold {
			return domain.ErrAuctionNotSold
		}
		if !a.HighestBidder.Equals(caller) {
			return domain.ErrNotHighestBidder
		}
		if a.ItemClaimed {
			return domain.ErrItemAlreadyClaimed
		}

		a.ItemClaimed = true
		im.auctions.Update(tx, *a)

		if err := im.gateway.Transfer(c, a.Collection, a.TokenId, im.executor.Account(), a.HighestBidder); err != nil {
			return custody.Failed("transfer", err)
		}
		im.emit(tx, event.KindAuctionClaimed, a, a.HighestBidder, nil)
		return nil
	}, engine.AllowWhilePaused())
}

func (im *impl) Get(c ctx.Ctx, auctionId string) (*auction.Auction, error) {
	var res *auction.Auction
	err := im.executor.View(c, func() error {
		a, ok := im.auctions.FindOne(auctionId)
		if !ok {
			return domain.ErrAuctionNotFound
		}
		res = a
		return nil
	})
	return res, err
}

func (im *impl) GetBid(c ctx.Ctx, auctionId string, bidder domain.Address) (*auction.Bid, error) {
	var res *auction.Bid
	err := im.executor.View(c, func() error {
		b, ok := im.auctions.FindBid(auctionId, bidder)
		if !ok {
			return domain.ErrBidNotFound
		}
		res = b
		return nil
	})
	return res, err
}

func (im *impl) FindBids(c ctx.Ctx, auctionId string) ([]auction.Bid, error) {
	var res []auction.Bid
	err := im.executor.View(c, func() error {
		if _, ok := im.auctions.FindOne(auctionId); !ok {
			return domain.ErrAuctionNotFound
		}
		res = im.auctions.FindBids(auctionId)
		return nil
	})
	return res, err
}

func (im *impl) FindAll(c ctx.Ctx) ([]auction.Auction, error) {
	var res []auction.Auction
	err := im.executor.View(c, func() error {
		res = im.auctions.FindAll()
		return nil
	})
	return res, err
}

func (im *impl) FindActive(c ctx.Ctx) ([]auction.Auction, error) {
	var res []auction.Auction
	err := im.executor.View(c, func() error {
		res = im.auctions.FindActive()
		return nil
	})
	return res, err
}

func (im *impl) Recent(c ctx.Ctx) ([]auction.Auction, error) {
	var res []auction.Auction
	err := im.executor.View(c, func() error {
		res = im.auctions.Recent()
		return nil
	})
	return res, err
}

func (im *impl) emit(tx *journal.Tx, kind event.Kind, a *auction.Auction, account domain.Address, value *big.Int) {
	e := event.Event{
		Kind:       kind,
		Collection: a.Collection,
		TokenId:    a.TokenId,
		AuctionId:  a.Id,
		Account:    account.ToLower(),
	}
	if value != nil {
		e.Value = value.String()
	}
	im.executor.Emit(tx, e)
}
