package custody

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
)

// RequireOwner fails with domain.ErrNotOwner unless account owns the item
func RequireOwner(c ctx.Ctx, g AssetGateway, item domain.ItemKey, account domain.Address) error {
	owner, err := g.OwnerOf(c, item.Collection, item.TokenId)
	if err != nil {
		return Failed("ownerOf", err)
	}
	if !owner.Equals(account) {
		return domain.ErrNotOwner
	}
	return nil
}

// RequireApproval fails with domain.ErrNotApproved unless operator may move the item
func RequireApproval(c ctx.Ctx, g AssetGateway, item domain.ItemKey, operator domain.Address) error {
	ok, err := g.IsApprovedForTransfer(c, item.Collection, item.TokenId, operator)
	if err != nil {
		return Failed("isApprovedForTransfer", err)
	}
	if !ok {
		return domain.ErrNotApproved
	}
	return nil
}

// RequireFunds checks that owner holds amount and lets spender pull it
func RequireFunds(c ctx.Ctx, g PaymentGateway, owner, spender domain.Address, amount *big.Int) error {
	balance, err := g.BalanceOf(c, owner)
	if err != nil {
		return Failed("balanceOf", err)
	}
	if balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	allowance, err := g.Allowance(c, owner, spender)
	if err != nil {
		return Failed("allowance", err)
	}
	if allowance.Cmp(amount) < 0 {
		return domain.ErrInsufficientAllowance
	}
	return nil
}

// PullEscrow pulls amount from `from` into the engine account and journals
// the refund that takes it back on rollback.
func PullEscrow(c ctx.Ctx, g PaymentGateway, tx *journal.Tx, from, engine domain.Address, amount *big.Int) error {
	if err := g.Pull(c, from, engine, amount); err != nil {
		return Failed("pull", err)
	}
	refund := domain.CopyAmount(amount)
	tx.Compensate("refund "+from.ToLowerStr(), func(c ctx.Ctx) error {
		return g.Push(c, from, refund)
	})
	return nil
}
