package repository

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/orderedset"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/offer"
)

type offerRepo struct {
	records map[offer.Id]offer.Offer
	byItem  map[domain.ItemKey]*orderedset.Set[domain.Address]
	byBuyer map[domain.Address]*orderedset.Set[domain.ItemKey]
}

func NewOffer() offer.Repo {
	return &offerRepo{
		records: map[offer.Id]offer.Offer{},
		byItem:  map[domain.ItemKey]*orderedset.Set[domain.Address]{},
		byBuyer: map[domain.Address]*orderedset.Set[domain.ItemKey]{},
	}
}

func normalize(id offer.Id) offer.Id {
	return offer.NewId(id.Item, id.Buyer)
}

func (r *offerRepo) FindOne(id offer.Id) (*offer.Offer, bool) {
	id = normalize(id)
	if !r.Exists(id) {
		return nil, false
	}
	o := r.records[id].Clone()
	return &o, true
}

func (r *offerRepo) Exists(id offer.Id) bool {
	id = normalize(id)
	set, ok := r.byItem[id.Item]
	return ok && set.Has(id.Buyer)
}

func (r *offerRepo) FindByItem(item domain.ItemKey) []offer.Offer {
	item = domain.NewItemKey(item.Collection, item.TokenId)
	res := []offer.Offer{}
	set, ok := r.byItem[item]
	if !ok {
		return res
	}
	for _, buyer := range set.Items() {
		res = append(res, r.records[offer.Id{Item: item, Buyer: buyer}].Clone())
	}
	return res
}

func (r *offerRepo) FindByBuyer(buyer domain.Address) []offer.Offer {
	buyer = buyer.ToLower()
	res := []offer.Offer{}
	set, ok := r.byBuyer[buyer]
	if !ok {
		return res
	}
	for _, item := range set.Items() {
		res = append(res, r.records[offer.Id{Item: item, Buyer: buyer}].Clone())
	}
	return res
}

func (r *offerRepo) Insert(tx *journal.Tx, o offer.Offer) {
	o = o.Clone()
	o.Collection = o.Collection.ToLower()
	o.Buyer = o.Buyer.ToLower()
	id := o.Id()

	itemSet, ok := r.byItem[id.Item]
	if !ok {
		itemSet = orderedset.New[domain.Address]()
		r.byItem[id.Item] = itemSet
	}
	buyerSet, ok := r.byBuyer[id.Buyer]
	if !ok {
		buyerSet = orderedset.New[domain.ItemKey]()
		r.byBuyer[id.Buyer] = buyerSet
	}
	itemSet.Add(id.Buyer)
	buyerSet.Add(id.Item)
	r.records[id] = o

	tx.Undo(func() {
		delete(r.records, id)
		itemSet.Remove(id.Buyer)
		buyerSet.Remove(id.Item)
	})
}

func (r *offerRepo) UpdatePrice(tx *journal.Tx, id offer.Id, price *big.Int) {
	id = normalize(id)
	prev, ok := r.records[id]
	if !ok {
		return
	}
	next := prev.Clone()
	next.Price = domain.CopyAmount(price)
	r.records[id] = next
	tx.Undo(func() {
		r.records[id] = prev
	})
}

func (r *offerRepo) Delete(tx *journal.Tx, id offer.Id) {
	id = normalize(id)
	prev, ok := r.records[id]
	if !ok {
		return
	}
	itemSet, buyerSet := r.byItem[id.Item], r.byBuyer[id.Buyer]
	delete(r.records, id)
	itemPos, _ := itemSet.Remove(id.Buyer)
	buyerPos, _ := buyerSet.Remove(id.Item)
	tx.Undo(func() {
		r.records[id] = prev
		itemSet.Restore(id.Buyer, itemPos)
		buyerSet.Restore(id.Item, buyerPos)
	})
}
