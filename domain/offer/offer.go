package offer

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
)

// Offer is an allowance backed purchase proposal. No funds move until it
// is accepted.
type Offer struct {
	Buyer      domain.Address `json:"buyer"`
	Price      *big.Int       `json:"price"`
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	CreatedAt  int64          `json:"createdAt"`
}

func (o *Offer) Id() Id {
	return NewId(domain.NewItemKey(o.Collection, o.TokenId), o.Buyer)
}

func (o Offer) Clone() Offer {
	o.Price = domain.CopyAmount(o.Price)
	return o
}

// Id is the (collection, item, buyer) key of an offer
type Id struct {
	Item  domain.ItemKey
	Buyer domain.Address
}

func NewId(item domain.ItemKey, buyer domain.Address) Id {
	return Id{Item: domain.NewItemKey(item.Collection, item.TokenId), Buyer: buyer.ToLower()}
}

// Repo keeps offers with two existence indexes: buyers per item and items
// per buyer, both in insertion order.
type Repo interface {
	FindOne(id Id) (*Offer, bool)
	Exists(id Id) bool
	FindByItem(item domain.ItemKey) []Offer
	FindByBuyer(buyer domain.Address) []Offer
	Insert(tx *journal.Tx, o Offer)
	UpdatePrice(tx *journal.Tx, id Id, price *big.Int)
	Delete(tx *journal.Tx, id Id)
}

type UseCase interface {
	CreateOffer(c ctx.Ctx, buyer domain.Address, item domain.ItemKey, price *big.Int) (*Offer, error)
	UpdateOffer(c ctx.Ctx, buyer domain.Address, item domain.ItemKey, price *big.Int) (*Offer, error)
	CancelOffer(c ctx.Ctx, buyer domain.Address, item domain.ItemKey) error
	AcceptOffer(c ctx.Ctx, caller domain.Address, item domain.ItemKey, offerer domain.Address) error

	Get(c ctx.Ctx, id Id) (*Offer, error)
	FindByItem(c ctx.Ctx, item domain.ItemKey) ([]Offer, error)
	FindByBuyer(c ctx.Ctx, buyer domain.Address) ([]Offer, error)
}
