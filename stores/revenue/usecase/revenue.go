package usecase

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/custody"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/domain/revenue"
)

type RevenueUseCaseCfg struct {
	Executor    engine.Executor
	RevenueRepo revenue.Repo
	Payment     custody.PaymentGateway
}

type impl struct {
	executor engine.Executor
	repo     revenue.Repo
	payment  custody.PaymentGateway
}

func NewRevenue(cfg *RevenueUseCaseCfg) revenue.UseCase {
	return &impl{
		executor: cfg.Executor,
		repo:     cfg.RevenueRepo,
		payment:  cfg.Payment,
	}
}

func (im *impl) Credit(tx *journal.Tx, payee domain.Address, amount *big.Int) {
	im.repo.Credit(tx, payee, amount)
}

// Withdraw pays out the caller's entry in full. The entry is cleared before
// the push so a reentrant withdrawal finds nothing owed.
func (im *impl) Withdraw(c ctx.Ctx, caller domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.executor.Exec(c, "withdraw", func(c ctx.Ctx, tx *journal.Tx) error {
		amount := im.repo.Clear(tx, caller)
		if !domain.IsPositive(amount) {
			return domain.ErrNothingToWithdraw
		}
		if err := im.payment.Push(c, caller, amount); err != nil {
			return custody.Failed("push", err)
		}
		im.executor.Emit(tx, event.Event{
			Kind:    event.KindRevenueWithdrawn,
			Account: caller.ToLower(),
			Value:   amount.String(),
		})
		res = amount
		return nil
	}, engine.AllowWhilePaused())
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) Owed(c ctx.Ctx, payee domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.executor.View(c, func() error {
		res = im.repo.Owed(payee)
		return nil
	})
	return res, err
}

func (im *impl) FindAll(c ctx.Ctx) ([]revenue.Entry, error) {
	var res []revenue.Entry
	err := im.executor.View(c, func() error {
		res = im.repo.FindAll()
		return nil
	})
	return res, err
}
