package collection

import (
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
)

// Collection is an onboarded external asset collection
type Collection struct {
	Address       domain.Address `json:"address"`
	PayoutAddress domain.Address `json:"payoutAddress"`
	RoyaltyBps    uint32         `json:"royaltyBps"`
	Verified      bool           `json:"verified"`
	AddedAt       int64          `json:"addedAt"`
}

type CreatePayload struct {
	Address       domain.Address `json:"address" validate:"required,address"`
	PayoutAddress domain.Address `json:"payoutAddress" validate:"required,address"`
	RoyaltyBps    uint32         `json:"royaltyBps"`
}

type UpdatePayload struct {
	PayoutAddress domain.Address `json:"payoutAddress" validate:"required,address"`
	RoyaltyBps    uint32         `json:"royaltyBps"`
}

// Repo keeps the onboarded collections in onboarding order
type Repo interface {
	FindOne(address domain.Address) (*Collection, bool)
	FindAll() []Collection
	// MaxRoyaltyBps is the largest royalty among onboarded collections
	MaxRoyaltyBps() uint32
	Upsert(tx *journal.Tx, c Collection)
	Remove(tx *journal.Tx, address domain.Address)
}

// Directory is the read surface other components consult. Callers must
// already hold the executor.
type Directory interface {
	IsSupported(address domain.Address) bool
	RoyaltyInfo(address domain.Address) (payout domain.Address, royaltyBps uint32, err error)
	IsVerified(address domain.Address) bool
}

type UseCase interface {
	Directory

	Get(c ctx.Ctx, address domain.Address) (*Collection, error)
	FindAll(c ctx.Ctx) ([]Collection, error)

	Add(c ctx.Ctx, caller domain.Address, p CreatePayload) (*Collection, error)
	Update(c ctx.Ctx, caller, address domain.Address, p UpdatePayload) (*Collection, error)
	Verify(c ctx.Ctx, caller, address domain.Address) error
	Unverify(c ctx.Ctx, caller, address domain.Address) error
	Remove(c ctx.Ctx, caller, address domain.Address) error
}
