package repository

import (
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/orderedset"
	"github.com/x-xyz/marketengine/base/recency"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/auction"
)

type auctionRepo struct {
	records map[string]auction.Auction
	all     []string

	// active is swap-removed; activePos tracks each id's slot
	active    []string
	activePos map[string]int
	byItem    map[domain.ItemKey]string

	bids    map[string]map[domain.Address]auction.Bid
	bidders map[string]*orderedset.Set[domain.Address]

	recent *recency.Window[string]
	nonce  uint64
}

func NewAuction(recentCap int) auction.Repo {
	return &auctionRepo{
		records:   map[string]auction.Auction{},
		activePos: map[string]int{},
		byItem:    map[domain.ItemKey]string{},
		bids:      map[string]map[domain.Address]auction.Bid{},
		bidders:   map[string]*orderedset.Set[domain.Address]{},
		recent:    recency.New[string](recentCap),
	}
}

func (r *auctionRepo) FindOne(id string) (*auction.Auction, bool) {
	a, ok := r.records[id]
	if !ok {
		return nil, false
	}
	a = a.Clone()
	return &a, true
}

func (r *auctionRepo) FindAll() []auction.Auction {
	return r.resolve(r.all)
}

func (r *auctionRepo) FindActive() []auction.Auction {
	return r.resolve(r.active)
}

func (r *auctionRepo) ActiveByItem(item domain.ItemKey) (string, bool) {
	id, ok := r.byItem[domain.NewItemKey(item.Collection, item.TokenId)]
	return id, ok
}

// Recent resolves the window's ids to the current records
func (r *auctionRepo) Recent() []auction.Auction {
	return r.resolve(r.recent.Items())
}

func (r *auctionRepo) NextNonce(tx *journal.Tx) uint64 {
	n := r.nonce
	r.nonce++
	tx.Undo(func() {
		r.nonce = n
	})
	return n
}

func (r *auctionRepo) Insert(tx *journal.Tx, a auction.Auction) {
	a = a.Clone()
	a.Collection = a.Collection.ToLower()
	a.Creator = a.Creator.ToLower()
	key := a.Key()

	snap := r.recent.Clone()
	r.records[a.Id] = a
	r.all = append(r.all, a.Id)
	r.recent.Push(a.Id)
	r.bids[a.Id] = map[domain.Address]auction.Bid{}
	r.bidders[a.Id] = orderedset.New[domain.Address]()
	if a.State == auction.StateActive {
		r.activePos[a.Id] = len(r.active)
		r.active = append(r.active, a.Id)
		r.byItem[key] = a.Id
	}

	tx.Undo(func() {
		if a.State == auction.StateActive {
			r.active = r.active[:len(r.active)-1]
			delete(r.activePos, a.Id)
			delete(r.byItem, key)
		}
		delete(r.bids, a.Id)
		delete(r.bidders, a.Id)
		r.recent.Restore(snap)
		r.all = r.all[:len(r.all)-1]
		delete(r.records, a.Id)
	})
}

func (r *auctionRepo) Update(tx *journal.Tx, a auction.Auction) {
	prev, ok := r.records[a.Id]
	if !ok {
		return
	}
	r.records[a.Id] = a.Clone()
	tx.Undo(func() {
		r.records[a.Id] = prev
	})
}

func (r *auctionRepo) Deactivate(tx *journal.Tx, id string) {
	pos, ok := r.activePos[id]
	if !ok {
		return
	}
	a := r.records[id]
	key := a.Key()
	last := len(r.active) - 1
	moved := r.active[last]
	r.active[pos] = moved
	r.activePos[moved] = pos
	r.active = r.active[:last]
	delete(r.activePos, id)
	ownsItem := r.byItem[key] == id
	if ownsItem {
		delete(r.byItem, key)
	}

	tx.Undo(func() {
		// reverse the swap: moved goes back to the tail, id to pos
		r.active = append(r.active, moved)
		r.activePos[moved] = last
		r.active[pos] = id
		r.activePos[id] = pos
		if ownsItem {
			r.byItem[key] = id
		}
	})
}

func (r *auctionRepo) FindBid(id string, bidder domain.Address) (*auction.Bid, bool) {
	bids, ok := r.bids[id]
	if !ok {
		return nil, false
	}
	b, ok := bids[bidder.ToLower()]
	if !ok {
		return nil, false
	}
	b = b.Clone()
	return &b, true
}

// FindBids lists the bids of an auction in first bid order
func (r *auctionRepo) FindBids(id string) []auction.Bid {
	res := []auction.Bid{}
	set, ok := r.bidders[id]
	if !ok {
		return res
	}
	for _, bidder := range set.Items() {
		res = append(res, r.bids[id][bidder].Clone())
	}
	return res
}

func (r *auctionRepo) PutBid(tx *journal.Tx, b auction.Bid) {
	bids, ok := r.bids[b.AuctionId]
	if !ok {
		return
	}
	b = b.Clone()
	b.Bidder = b.Bidder.ToLower()
	set := r.bidders[b.AuctionId]
	prev, existed := bids[b.Bidder]
	bids[b.Bidder] = b
	inserted := set.Add(b.Bidder)
	tx.Undo(func() {
		if existed {
			bids[b.Bidder] = prev
		} else {
			delete(bids, b.Bidder)
		}
		if inserted {
			set.Remove(b.Bidder)
		}
	})
}

func (r *auctionRepo) resolve(ids []string) []auction.Auction {
	res := make([]auction.Auction, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.records[id]; ok {
			res = append(res, a.Clone())
		}
	}
	return res
}
