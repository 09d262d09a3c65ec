package usecase

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/custody"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/domain/offer"
)

type OfferUseCaseCfg struct {
	Executor    engine.Executor
	Settler     engine.Settler
	OfferRepo   offer.Repo
	ListingRepo listing.Repo
	Gateway     custody.Gateway
}

type impl struct {
	executor engine.Executor
	settler  engine.Settler
	offers   offer.Repo
	listings listing.Repo
	gateway  custody.Gateway
}

func NewOffer(cfg *OfferUseCaseCfg) offer.UseCase {
	return &impl{
		executor: cfg.Executor,
		settler:  cfg.Settler,
		offers:   cfg.OfferRepo,
		listings: cfg.ListingRepo,
		gateway:  cfg.Gateway,
	}
}

// CreateOffer only checks the allowance; nothing is escrowed until the
// offer is accepted.
func (im *impl) CreateOffer(c ctx.Ctx, buyer domain.Address, item domain.ItemKey, price *big.Int) (*offer.Offer, error) {
	id := offer.NewId(item, buyer)
	var res *offer.Offer
	err := im.executor.Exec(c, "createOffer", func(c ctx.Ctx, tx *journal.Tx) error {
		if !domain.IsPositive(price) {
			return domain.ErrInvalidPrice
		}
		l, ok := im.listings.FindOne(id.Item)
		if !ok {
			return domain.ErrListingNotFound
		}
		if im.offers.Exists(id) {
			return domain.ErrOfferExists
		}
		if l.Price.Cmp(price) == 0 {
			return domain.ErrOfferEqualsPrice
		}
		owner, err := im.gateway.OwnerOf(c, id.Item.Collection, id.Item.TokenId)
		if err != nil {
			return custody.Failed("ownerOf", err)
		}
		if owner.Equals(buyer) {
			return domain.ErrOwnerOffer
		}
		if err := custody.RequireFunds(c, im.gateway, buyer, im.executor.Account(), price); err != nil {
			return err
		}

		o := offer.Offer{
			Buyer:      id.Buyer,
			Price:      domain.CopyAmount(price),
			Collection: id.Item.Collection,
			TokenId:    id.Item.TokenId,
			CreatedAt:  im.executor.Now(),
		}
		im.offers.Insert(tx, o)
		im.emit(tx, event.KindOfferCreated, id, o.Price)
		res = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) UpdateOffer(c ctx.Ctx, buyer domain.Address, item domain.ItemKey, price *big.Int) (*offer.Offer, error) {
	id := offer.NewId(item, buyer)
	var res *offer.Offer
	err := im.executor.Exec(c, "updateOffer", func(c ctx.Ctx, tx *journal.Tx) error {
		o, ok := im.offers.FindOne(id)
		if !ok {
			return domain.ErrOfferNotFound
		}
		if !domain.IsPositive(price) {
			return domain.ErrInvalidPrice
		}
		if o.Price.Cmp(price) == 0 {
			return domain.ErrOfferUnchanged
		}
		if l, ok := im.listings.FindOne(id.Item); ok && l.Price.Cmp(price) == 0 {
			return domain.ErrOfferEqualsPrice
		}
		if err := custody.RequireFunds(c, im.gateway, buyer, im.executor.Account(), price); err != nil {
			return err
		}

		im.offers.UpdatePrice(tx, id, price)
		o.Price = domain.CopyAmount(price)
		im.emit(tx, event.KindOfferUpdated, id, o.Price)
		res = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) CancelOffer(c ctx.Ctx, buyer domain.Address, item domain.ItemKey) error {
	id := offer.NewId(item, buyer)
	return im.executor.Exec(c, "cancelOffer", func(c ctx.Ctx, tx *journal.Tx) error {
		if !im.offers.Exists(id) {
			return domain.ErrOfferNotFound
		}
		im.offers.Delete(tx, id)
		im.emit(tx, event.KindOfferCancelled, id, nil)
		return nil
	}, engine.AllowWhilePaused())
}

// AcceptOffer re-checks the offerer's balance and allowance since either
// may have changed after the offer was made.
func (im *impl) AcceptOffer(c ctx.Ctx, caller domain.Address, item domain.ItemKey, offerer domain.Address) error {
	id := offer.NewId(item, offerer)
	return im.executor.Exec(c, "acceptOffer", func(c ctx.Ctx, tx *journal.Tx) error {
		o, ok := im.offers.FindOne(id)
		if !ok {
			return domain.ErrOfferNotFound
		}
		if err := custody.RequireOwner(c, im.gateway, id.Item, caller); err != nil {
			return err
		}
		if err := custody.RequireApproval(c, im.gateway, id.Item, im.executor.Account()); err != nil {
			return err
		}
		if err := custody.RequireFunds(c, im.gateway, id.Buyer, im.executor.Account(), o.Price); err != nil {
			return err
		}
		seller := caller.ToLower()
		quote, err := im.settler.Quote(engine.Sale{Item: id.Item, Seller: seller, Price: o.Price})
		if err != nil {
			return err
		}

		im.offers.Delete(tx, id)
		if im.listings.Exists(id.Item) {
			im.listings.Delete(tx, id.Item)
		}

		if err := custody.PullEscrow(c, im.gateway, tx, id.Buyer, im.executor.Account(), o.Price); err != nil {
			return err
		}
		if err := im.gateway.Transfer(c, id.Item.Collection, id.Item.TokenId, seller, id.Buyer); err != nil {
			return custody.Failed("transfer", err)
		}
		im.settler.Settle(c, tx, quote)

		im.executor.Emit(tx, event.Event{
			Kind:         event.KindOfferAccepted,
			Collection:   id.Item.Collection,
			TokenId:      id.Item.TokenId,
			Account:      id.Buyer,
			Counterparty: seller,
			Value:        o.Price.String(),
		})
		return nil
	})
}

func (im *impl) Get(c ctx.Ctx, id offer.Id) (*offer.Offer, error) {
	var res *offer.Offer
	err := im.executor.View(c, func() error {
		o, ok := im.offers.FindOne(id)
		if !ok {
			return domain.ErrOfferNotFound
		}
		res = o
		return nil
	})
	return res, err
}

func (im *impl) FindByItem(c ctx.Ctx, item domain.ItemKey) ([]offer.Offer, error) {
	var res []offer.Offer
	err := im.executor.View(c, func() error {
		res = im.offers.FindByItem(item)
		return nil
	})
	return res, err
}

func (im *impl) FindByBuyer(c ctx.Ctx, buyer domain.Address) ([]offer.Offer, error) {
	var res []offer.Offer
	err := im.executor.View(c, func() error {
		res = im.offers.FindByBuyer(buyer)
		return nil
	})
	return res, err
}

func (im *impl) emit(tx *journal.Tx, kind event.Kind, id offer.Id, price *big.Int) {
	e := event.Event{
		Kind:       kind,
		Collection: id.Item.Collection,
		TokenId:    id.Item.TokenId,
		Account:    id.Buyer,
	}
	if price != nil {
		e.Value = price.String()
	}
	im.executor.Emit(tx, e)
}
