// Package custody describes the external capability that owns assets and
// payment tokens. The engine only orchestrates calls to it.
package custody

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

// AssetGateway queries and moves non-fungible items
type AssetGateway interface {
	OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error)
	// IsApprovedForTransfer reports whether operator may move the item on the owner's behalf
	IsApprovedForTransfer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator domain.Address) (bool, error)
	// Transfer fails if from is not the current owner or the engine is not authorized
	Transfer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, from, to domain.Address) error
}

// PaymentGateway queries and moves the fungible payment token
type PaymentGateway interface {
	BalanceOf(c ctx.Ctx, account domain.Address) (*big.Int, error)
	Allowance(c ctx.Ctx, owner, spender domain.Address) (*big.Int, error)
	// Pull moves amount from `from` to `to` using the allowance granted to the engine
	Pull(c ctx.Ctx, from, to domain.Address, amount *big.Int) error
	// Push moves amount out of the engine's own balance
	Push(c ctx.Ctx, to domain.Address, amount *big.Int) error
}

type Gateway interface {
	AssetGateway
	PaymentGateway
}
