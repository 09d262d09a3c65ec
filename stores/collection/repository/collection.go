package repository

import (
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/orderedset"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
)

type collectionRepo struct {
	records map[domain.Address]collection.Collection
	order   *orderedset.Set[domain.Address]
}

func NewCollection() collection.Repo {
	return &collectionRepo{
		records: map[domain.Address]collection.Collection{},
		order:   orderedset.New[domain.Address](),
	}
}

func (r *collectionRepo) FindOne(address domain.Address) (*collection.Collection, bool) {
	c, ok := r.records[address.ToLower()]
	if !ok {
		return nil, false
	}
	return &c, true
}

func (r *collectionRepo) FindAll() []collection.Collection {
	res := []collection.Collection{}
	for _, addr := range r.order.Items() {
		res = append(res, r.records[addr])
	}
	return res
}

func (r *collectionRepo) MaxRoyaltyBps() uint32 {
	max := uint32(0)
	for _, c := range r.records {
		if c.RoyaltyBps > max {
			max = c.RoyaltyBps
		}
	}
	return max
}

func (r *collectionRepo) Upsert(tx *journal.Tx, c collection.Collection) {
	key := c.Address.ToLower()
	c.Address = key
	prev, existed := r.records[key]
	r.records[key] = c
	inserted := r.order.Add(key)
	tx.Undo(func() {
		if existed {
			r.records[key] = prev
		} else {
			delete(r.records, key)
		}
		if inserted {
			r.order.Remove(key)
		}
	})
}

func (r *collectionRepo) Remove(tx *journal.Tx, address domain.Address) {
	key := address.ToLower()
	prev, ok := r.records[key]
	if !ok {
		return
	}
	delete(r.records, key)
	pos, _ := r.order.Remove(key)
	tx.Undo(func() {
		r.records[key] = prev
		r.order.Restore(key, pos)
	})
}
