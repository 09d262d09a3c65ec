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
	"github.com/x-xyz/marketengine/domain/offer"
)

type ListingUseCaseCfg struct {
	Executor    engine.Executor
	Settler     engine.Settler
	ListingRepo listing.Repo
	OfferRepo   offer.Repo
	AuctionRepo auction.Repo
	Directory   collection.Directory
	Gateway     custody.Gateway
}

type impl struct {
	executor  engine.Executor
	settler   engine.Settler
	listings  listing.Repo
	offers    offer.Repo
	auctions  auction.Repo
	directory collection.Directory
	gateway   custody.Gateway
}

func NewListing(cfg *ListingUseCaseCfg) listing.UseCase {
	return &impl{
		executor:  cfg.Executor,
		settler:   cfg.Settler,
		listings:  cfg.ListingRepo,
		offers:    cfg.OfferRepo,
		auctions:  cfg.AuctionRepo,
		directory: cfg.Directory,
		gateway:   cfg.Gateway,
	}
}

func (im *impl) List(c ctx.Ctx, seller domain.Address, key domain.ItemKey, price *big.Int) (*listing.Listing, error) {
	key = domain.NewItemKey(key.Collection, key.TokenId)
	var res *listing.Listing
	err := im.executor.Exec(c, "list", func(c ctx.Ctx, tx *journal.Tx) error {
		if !domain.IsPositive(price) {
			return domain.ErrInvalidPrice
		}
		if !im.directory.IsSupported(key.Collection) {
			return domain.ErrCollectionNotSupported
		}
		if im.listings.Exists(key) {
			return domain.ErrListingExists
		}
		if _, ok := im.auctions.ActiveByItem(key); ok {
			return domain.ErrItemInAuction
		}
		if err := custody.RequireOwner(c, im.gateway, key, seller); err != nil {
			return err
		}
		if err := custody.RequireApproval(c, im.gateway, key, im.executor.Account()); err != nil {
			return err
		}

		l := listing.Listing{
			Seller:     seller.ToLower(),
			Price:      domain.CopyAmount(price),
			Collection: key.Collection,
			TokenId:    key.TokenId,
			ListedAt:   im.executor.Now(),
		}
		im.listings.Insert(tx, l)
		im.executor.Emit(tx, event.Event{
			Kind:       event.KindItemListed,
			Collection: key.Collection,
			TokenId:    key.TokenId,
			Account:    l.Seller,
			Value:      l.Price.String(),
		})
		res = &l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) UpdateListing(c ctx.Ctx, caller domain.Address, key domain.ItemKey, price *big.Int) (*listing.Listing, error) {
	var res *listing.Listing
	err := im.executor.Exec(c, "updateListing", func(c ctx.Ctx, tx *journal.Tx) error {
		l, ok := im.listings.FindOne(key)
		if !ok {
			return domain.ErrListingNotFound
		}
		if !domain.IsPositive(price) {
			return domain.ErrInvalidPrice
		}
		if !l.Seller.Equals(caller) {
			return domain.ErrNotSeller
		}
		if err := custody.RequireOwner(c, im.gateway, l.Key(), caller); err != nil {
			return err
		}
		if err := custody.RequireApproval(c, im.gateway, l.Key(), im.executor.Account()); err != nil {
			return err
		}

		im.listings.UpdatePrice(tx, l.Key(), price)
		l.Price = domain.CopyAmount(price)
		im.executor.Emit(tx, event.Event{
			Kind:       event.KindItemUpdated,
			Collection: l.Collection,
			TokenId:    l.TokenId,
			Account:    l.Seller,
			Value:      l.Price.String(),
		})
		res = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) CancelListing(c ctx.Ctx, caller domain.Address, key domain.ItemKey) error {
	return im.executor.Exec(c, "cancelListing", func(c ctx.Ctx, tx *journal.Tx) error {
		l, ok := im.listings.FindOne(key)
		if !ok {
			return domain.ErrListingNotFound
		}
		if !l.Seller.Equals(caller) {
			return domain.ErrNotSeller
		}
		im.listings.Delete(tx, l.Key())
		im.executor.Emit(tx, event.Event{
			Kind:       event.KindItemDelisted,
			Collection: l.Collection,
			TokenId:    l.TokenId,
			Account:    l.Seller,
		})
		return nil
	}, engine.AllowWhilePaused())
}

// Buy pulls the price into engine custody, delivers the item and then
// settles. A failed delivery refunds the buyer through the journal.
func (im *impl) Buy(c ctx.Ctx, buyer domain.Address, key domain.ItemKey, expectedPrice *big.Int) error {
	return im.executor.Exec(c, "buy", func(c ctx.Ctx, tx *journal.Tx) error {
		l, ok := im.listings.FindOne(key)
		if !ok {
			return domain.ErrListingNotFound
		}
		if expectedPrice == nil || l.Price.Cmp(expectedPrice) != 0 {
			return domain.ErrPriceMismatch
		}
		if l.Seller.Equals(buyer) {
			return domain.ErrSelfPurchase
		}
		item := l.Key()
		if err := custody.RequireOwner(c, im.gateway, item, l.Seller); err != nil {
			return err
		}
		if err := custody.RequireApproval(c, im.gateway, item, im.executor.Account()); err != nil {
			return err
		}
		if err := custody.RequireFunds(c, im.gateway, buyer, im.executor.Account(), l.Price); err != nil {
			return err
		}
		quote, err := im.settler.Quote(engine.Sale{Item: item, Seller: l.Seller, Price: l.Price})
		if err != nil {
			return err
		}

		im.listings.Delete(tx, item)
		selfOffer := offer.NewId(item, buyer)
		if im.offers.Exists(selfOffer) {
			im.offers.Delete(tx, selfOffer)
			im.executor.Emit(tx, event.Event{
				Kind:       event.KindOfferCancelled,
				Collection: item.Collection,
				TokenId:    item.TokenId,
				Account:    selfOffer.Buyer,
			})
		}

		if err := custody.PullEscrow(c, im.gateway, tx, buyer, im.executor.Account(), l.Price); err != nil {
			return err
		}
		if err := im.gateway.Transfer(c, item.Collection, item.TokenId, l.Seller, buyer); err != nil {
			return custody.Failed("transfer", err)
		}
		im.settler.Settle(c, tx, quote)

		im.executor.Emit(tx, event.Event{
			Kind:         event.KindItemSold,
			Collection:   item.Collection,
			TokenId:      item.TokenId,
			Account:      l.Seller,
			Counterparty: buyer.ToLower(),
			Value:        l.Price.String(),
		})
		return nil
	})
}

func (im *impl) Get(c ctx.Ctx, key domain.ItemKey) (*listing.Listing, error) {
	var res *listing.Listing
	err := im.executor.View(c, func() error {
		l, ok := im.listings.FindOne(key)
		if !ok {
			return domain.ErrListingNotFound
		}
		res = l
		return nil
	})
	return res, err
}

func (im *impl) FindByCollection(c ctx.Ctx, collection domain.Address) ([]listing.Listing, error) {
	var res []listing.Listing
	err := im.executor.View(c, func() error {
		res = im.listings.FindByCollection(collection)
		return nil
	})
	return res, err
}

func (im *impl) Recent(c ctx.Ctx) ([]listing.Listing, error) {
	var res []listing.Listing
	err := im.executor.View(c, func() error {
		res = im.listings.Recent()
		return nil
	})
	return res, err
}

func (im *impl) RecentByCollection(c ctx.Ctx, collection domain.Address) ([]listing.Listing, error) {
	var res []listing.Listing
	err := im.executor.View(c, func() error {
		res = im.listings.RecentByCollection(collection)
		return nil
	})
	return res, err
}
