package engine

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/fee"
)

// Sale is a trade whose full price is, or will be, in engine custody
type Sale struct {
	Item   domain.ItemKey
	Seller domain.Address
	Price  *big.Int
}

// Quote is a Sale with its resolved fee split and payees
type Quote struct {
	Sale
	Split         fee.Split
	Marketplace   domain.Address
	RoyaltyPayout domain.Address
}

// Settler distributes sales. Quote runs with the preconditions, Settle
// runs as the last step and never fails: marketplace fee and royalty are
// credited to the revenue ledger and the seller is paid the remainder.
type Settler interface {
	Quote(s Sale) (Quote, error)
	Settle(c ctx.Ctx, tx *journal.Tx, q Quote)
}
