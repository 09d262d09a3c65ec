package repository

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/orderedset"
	"github.com/x-xyz/marketengine/base/recency"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/listing"
)

// RecencyCfg holds the window capacities
type RecencyCfg struct {
	Global        int
	PerCollection int
}

type listingRepo struct {
	records map[domain.ItemKey]listing.Listing
	// per collection item existence index
	items map[domain.Address]*orderedset.Set[domain.TokenId]

	recencyCfg   RecencyCfg
	recent       *recency.Window[listing.Listing]
	recentByColl map[domain.Address]*recency.Window[listing.Listing]
}

func NewListing(cfg RecencyCfg) listing.Repo {
	return &listingRepo{
		records:      map[domain.ItemKey]listing.Listing{},
		items:        map[domain.Address]*orderedset.Set[domain.TokenId]{},
		recencyCfg:   cfg,
		recent:       recency.New[listing.Listing](cfg.Global),
		recentByColl: map[domain.Address]*recency.Window[listing.Listing]{},
	}
}

func (r *listingRepo) FindOne(key domain.ItemKey) (*listing.Listing, bool) {
	key = domain.NewItemKey(key.Collection, key.TokenId)
	if !r.Exists(key) {
		return nil, false
	}
	l := r.records[key].Clone()
	return &l, true
}

func (r *listingRepo) Exists(key domain.ItemKey) bool {
	key = domain.NewItemKey(key.Collection, key.TokenId)
	set, ok := r.items[key.Collection]
	return ok && set.Has(key.TokenId)
}

func (r *listingRepo) FindByCollection(collection domain.Address) []listing.Listing {
	res := []listing.Listing{}
	coll := collection.ToLower()
	set, ok := r.items[coll]
	if !ok {
		return res
	}
	for _, id := range set.Items() {
		res = append(res, r.records[domain.NewItemKey(coll, id)].Clone())
	}
	return res
}

func (r *listingRepo) Count() int {
	return len(r.records)
}

func (r *listingRepo) Insert(tx *journal.Tx, l listing.Listing) {
	l = l.Clone()
	l.Collection = l.Collection.ToLower()
	key := l.Key()
	set, ok := r.items[key.Collection]
	if !ok {
		set = orderedset.New[domain.TokenId]()
		r.items[key.Collection] = set
	}
	set.Add(key.TokenId)
	r.records[key] = l

	window, ok := r.recentByColl[key.Collection]
	if !ok {
		window = recency.New[listing.Listing](r.recencyCfg.PerCollection)
		r.recentByColl[key.Collection] = window
	}
	globalSnap, collSnap := r.recent.Clone(), window.Clone()
	r.recent.Push(l)
	window.Push(l)

	tx.Undo(func() {
		delete(r.records, key)
		set.Remove(key.TokenId)
		r.recent.Restore(globalSnap)
		window.Restore(collSnap)
	})
}

func (r *listingRepo) UpdatePrice(tx *journal.Tx, key domain.ItemKey, price *big.Int) {
	key = domain.NewItemKey(key.Collection, key.TokenId)
	prev, ok := r.records[key]
	if !ok {
		return
	}
	next := prev.Clone()
	next.Price = domain.CopyAmount(price)
	r.records[key] = next
	tx.Undo(func() {
		r.records[key] = prev
	})
}

func (r *listingRepo) Delete(tx *journal.Tx, key domain.ItemKey) {
	key = domain.NewItemKey(key.Collection, key.TokenId)
	prev, ok := r.records[key]
	if !ok {
		return
	}
	set := r.items[key.Collection]
	delete(r.records, key)
	pos, _ := set.Remove(key.TokenId)
	tx.Undo(func() {
		r.records[key] = prev
		set.Restore(key.TokenId, pos)
	})
}

func (r *listingRepo) Recent() []listing.Listing {
	return cloneAll(r.recent.Items())
}

func (r *listingRepo) RecentByCollection(collection domain.Address) []listing.Listing {
	window, ok := r.recentByColl[collection.ToLower()]
	if !ok {
		return []listing.Listing{}
	}
	return cloneAll(window.Items())
}

func cloneAll(ls []listing.Listing) []listing.Listing {
	res := make([]listing.Listing, 0, len(ls))
	for _, l := range ls {
		res = append(res, l.Clone())
	}
	return res
}
