package usecase

import (
	"strconv"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
)

type AccessUseCaseCfg struct {
	Executor       engine.Executor
	AccessRepo     access.Repo
	CollectionRepo collection.Repo
}

type impl struct {
	executor    engine.Executor
	repo        access.Repo
	collections collection.Repo
}

func NewAccess(cfg *AccessUseCaseCfg) access.UseCase {
	return &impl{
		executor:    cfg.Executor,
		repo:        cfg.AccessRepo,
		collections: cfg.CollectionRepo,
	}
}

func (im *impl) Config(c ctx.Ctx) (access.Config, error) {
	var res access.Config
	err := im.executor.View(c, func() error {
		res = im.repo.Get()
		return nil
	})
	return res, err
}

func (im *impl) Role(c ctx.Ctx, caller domain.Address) (access.Role, error) {
	res := access.RoleNone
	err := im.executor.View(c, func() error {
		res = im.repo.Get().RoleOf(caller)
		return nil
	})
	return res, err
}

func (im *impl) Pause(c ctx.Ctx, caller domain.Address) error {
	return im.update(c, "pause", caller, access.RoleAdmin, func(cfg *access.Config) (event.Event, error) {
		if cfg.Paused {
			return event.Event{}, domain.ErrPaused
		}
		cfg.Paused = true
		return event.Event{Kind: event.KindPaused, Account: caller.ToLower()}, nil
	})
}

func (im *impl) Unpause(c ctx.Ctx, caller domain.Address) error {
	return im.update(c, "unpause", caller, access.RoleAdmin, func(cfg *access.Config) (event.Event, error) {
		if !cfg.Paused {
			return event.Event{}, domain.ErrNotPaused
		}
		cfg.Paused = false
		return event.Event{Kind: event.KindUnpaused, Account: caller.ToLower()}, nil
	})
}

// UpdateTradeFee keeps every onboarded royalty within the max fee bound
func (im *impl) UpdateTradeFee(c ctx.Ctx, caller domain.Address, tradeFeeBps uint32) error {
	return im.update(c, "updateTradeFee", caller, access.RoleOwner, func(cfg *access.Config) (event.Event, error) {
		rates := cfg.Rates
		rates.TradeFeeBps = tradeFeeBps
		if err := rates.Validate(); err != nil {
			return event.Event{}, err
		}
		if err := rates.ValidateRoyalty(im.collections.MaxRoyaltyBps()); err != nil {
			return event.Event{}, err
		}
		cfg.Rates = rates
		return event.Event{
			Kind:  event.KindTradeFeeUpdated,
			Value: strconv.FormatUint(uint64(tradeFeeBps), 10),
		}, nil
	})
}

func (im *impl) SetAdmin(c ctx.Ctx, caller, admin domain.Address) error {
	return im.update(c, "setAdmin", caller, access.RoleOwner, func(cfg *access.Config) (event.Event, error) {
		if admin.IsEmpty() {
			return event.Event{}, domain.ErrInvalidAddress
		}
		cfg.Admin = admin.ToLower()
		return event.Event{Kind: event.KindAdminUpdated, Account: cfg.Admin}, nil
	})
}

func (im *impl) TransferOwnership(c ctx.Ctx, caller, owner domain.Address) error {
	return im.update(c, "transferOwnership", caller, access.RoleOwner, func(cfg *access.Config) (event.Event, error) {
		if owner.IsEmpty() {
			return event.Event{}, domain.ErrInvalidAddress
		}
		prev := cfg.Owner
		cfg.Owner = owner.ToLower()
		return event.Event{Kind: event.KindOwnerUpdated, Account: cfg.Owner, Counterparty: prev}, nil
	})
}

// update runs an admin setter. Admin operations stay available while the
// engine is paused.
func (im *impl) update(c ctx.Ctx, name string, caller domain.Address, min access.Role, fn func(cfg *access.Config) (event.Event, error)) error {
	return im.executor.Exec(c, name, func(c ctx.Ctx, tx *journal.Tx) error {
		cfg := im.repo.Get()
		if err := cfg.Require(caller, min); err != nil {
			return err
		}
		e, err := fn(&cfg)
		if err != nil {
			return err
		}
		im.repo.Set(tx, cfg)
		im.executor.Emit(tx, e)
		return nil
	}, engine.AllowWhilePaused())
}
