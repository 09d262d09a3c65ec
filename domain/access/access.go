package access

import (
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/fee"
)

// Role is resolved from the caller's address on every guarded call
type Role int

const (
	RoleNone Role = iota
	RoleAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	}
	return "none"
}

// AtLeast reports whether r grants everything min grants
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Config is the mutable administrative state of the engine. Admin also
// receives the marketplace fee in the revenue ledger.
type Config struct {
	Owner  domain.Address `json:"owner"`
	Admin  domain.Address `json:"admin"`
	Paused bool           `json:"paused"`
	Rates  fee.Rates      `json:"rates"`
}

func (c Config) RoleOf(caller domain.Address) Role {
	switch {
	case caller.Equals(c.Owner):
		return RoleOwner
	case caller.Equals(c.Admin):
		return RoleAdmin
	}
	return RoleNone
}

type Repo interface {
	Get() Config
	Set(tx *journal.Tx, cfg Config)
}

type UseCase interface {
	Config(c ctx.Ctx) (Config, error)
	Role(c ctx.Ctx, caller domain.Address) (Role, error)
	Pause(c ctx.Ctx, caller domain.Address) error
	Unpause(c ctx.Ctx, caller domain.Address) error
	UpdateTradeFee(c ctx.Ctx, caller domain.Address, tradeFeeBps uint32) error
	SetAdmin(c ctx.Ctx, caller, admin domain.Address) error
	TransferOwnership(c ctx.Ctx, caller, owner domain.Address) error
}

// Require fails with domain.ErrUnauthorized unless caller holds at least min
func (c Config) Require(caller domain.Address, min Role) error {
	if !c.RoleOf(caller).AtLeast(min) {
		return domain.ErrUnauthorized
	}
	return nil
}
