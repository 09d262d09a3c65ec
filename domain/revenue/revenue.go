package revenue

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
)

// Entry is the amount owed to one payee
type Entry struct {
	Payee domain.Address `json:"payee"`
	Owed  *big.Int       `json:"owed"`
}

// Repo is the per payee accumulator. Credited and Withdrawn are lifetime
// totals, so Total() == Credited() - Withdrawn() at all times.
type Repo interface {
	Owed(payee domain.Address) *big.Int
	Total() *big.Int
	Credited() *big.Int
	Withdrawn() *big.Int
	FindAll() []Entry

	Credit(tx *journal.Tx, payee domain.Address, amount *big.Int)
	// Clear zeroes the payee's entry and returns what it held
	Clear(tx *journal.Tx, payee domain.Address) *big.Int
}

// Ledger is the internal credit surface sale paths use
type Ledger interface {
	Credit(tx *journal.Tx, payee domain.Address, amount *big.Int)
}

type UseCase interface {
	Ledger

	Withdraw(c ctx.Ctx, caller domain.Address) (*big.Int, error)
	Owed(c ctx.Ctx, payee domain.Address) (*big.Int, error)
	FindAll(c ctx.Ctx) ([]Entry, error)
}
