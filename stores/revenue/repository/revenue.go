package repository

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/orderedset"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/revenue"
)

type revenueRepo struct {
	owed      map[domain.Address]*big.Int
	payees    *orderedset.Set[domain.Address]
	total     *big.Int
	credited  *big.Int
	withdrawn *big.Int
}

func NewRevenue() revenue.Repo {
	return &revenueRepo{
		owed:      map[domain.Address]*big.Int{},
		payees:    orderedset.New[domain.Address](),
		total:     big.NewInt(0),
		credited:  big.NewInt(0),
		withdrawn: big.NewInt(0),
	}
}

func (r *revenueRepo) Owed(payee domain.Address) *big.Int {
	return domain.CopyAmount(r.owed[payee.ToLower()])
}

func (r *revenueRepo) Total() *big.Int {
	return domain.CopyAmount(r.total)
}

func (r *revenueRepo) Credited() *big.Int {
	return domain.CopyAmount(r.credited)
}

func (r *revenueRepo) Withdrawn() *big.Int {
	return domain.CopyAmount(r.withdrawn)
}

func (r *revenueRepo) FindAll() []revenue.Entry {
	res := []revenue.Entry{}
	for _, payee := range r.payees.Items() {
		if amt := r.owed[payee]; domain.IsPositive(amt) {
			res = append(res, revenue.Entry{Payee: payee, Owed: domain.CopyAmount(amt)})
		}
	}
	return res
}

func (r *revenueRepo) Credit(tx *journal.Tx, payee domain.Address, amount *big.Int) {
	if !domain.IsPositive(amount) {
		return
	}
	payee = payee.ToLower()
	prev := domain.CopyAmount(r.owed[payee])
	inserted := r.payees.Add(payee)
	r.owed[payee] = new(big.Int).Add(prev, amount)
	r.total = new(big.Int).Add(r.total, amount)
	r.credited = new(big.Int).Add(r.credited, amount)

	amt := domain.CopyAmount(amount)
	tx.Undo(func() {
		r.owed[payee] = prev
		r.total = new(big.Int).Sub(r.total, amt)
		r.credited = new(big.Int).Sub(r.credited, amt)
		if inserted {
			delete(r.owed, payee)
			r.payees.Remove(payee)
		}
	})
}

func (r *revenueRepo) Clear(tx *journal.Tx, payee domain.Address) *big.Int {
	payee = payee.ToLower()
	prev := domain.CopyAmount(r.owed[payee])
	if !domain.IsPositive(prev) {
		return prev
	}
	r.owed[payee] = big.NewInt(0)
	r.total = new(big.Int).Sub(r.total, prev)
	r.withdrawn = new(big.Int).Add(r.withdrawn, prev)
	tx.Undo(func() {
		r.owed[payee] = domain.CopyAmount(prev)
		r.total = new(big.Int).Add(r.total, prev)
		r.withdrawn = new(big.Int).Sub(r.withdrawn, prev)
	})
	return domain.CopyAmount(prev)
}
