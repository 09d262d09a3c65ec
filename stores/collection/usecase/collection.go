package usecase

import (
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
)

type CollectionUseCaseCfg struct {
	Executor       engine.Executor
	CollectionRepo collection.Repo
	AccessRepo     access.Repo
}

type impl struct {
	executor engine.Executor
	repo     collection.Repo
	access   access.Repo
}

func NewCollection(cfg *CollectionUseCaseCfg) collection.UseCase {
	return &impl{
		executor: cfg.Executor,
		repo:     cfg.CollectionRepo,
		access:   cfg.AccessRepo,
	}
}

func (im *impl) IsSupported(address domain.Address) bool {
	_, ok := im.repo.FindOne(address)
	return ok
}

func (im *impl) RoyaltyInfo(address domain.Address) (domain.Address, uint32, error) {
	c, ok := im.repo.FindOne(address)
	if !ok {
		return domain.EmptyAddress, 0, domain.ErrCollectionNotSupported
	}
	return c.PayoutAddress, c.RoyaltyBps, nil
}

func (im *impl) IsVerified(address domain.Address) bool {
	c, ok := im.repo.FindOne(address)
	return ok && c.Verified
}

func (im *impl) Get(c ctx.Ctx, address domain.Address) (*collection.Collection, error) {
	var res *collection.Collection
	err := im.executor.View(c, func() error {
		col, ok := im.repo.FindOne(address)
		if !ok {
			return domain.ErrCollectionNotSupported
		}
		res = col
		return nil
	})
	return res, err
}

func (im *impl) FindAll(c ctx.Ctx) ([]collection.Collection, error) {
	var res []collection.Collection
	err := im.executor.View(c, func() error {
		res = im.repo.FindAll()
		return nil
	})
	return res, err
}

func (im *impl) Add(c ctx.Ctx, caller domain.Address, p collection.CreatePayload) (*collection.Collection, error) {
	var res *collection.Collection
	err := im.executor.Exec(c, "addCollection", func(c ctx.Ctx, tx *journal.Tx) error {
		cfg := im.access.Get()
		if err := cfg.Require(caller, access.RoleAdmin); err != nil {
			return err
		}
		if p.Address.IsEmpty() || p.PayoutAddress.IsEmpty() {
			return domain.ErrInvalidAddress
		}
		if im.IsSupported(p.Address) {
			return domain.ErrCollectionExists
		}
		if err := cfg.Rates.ValidateRoyalty(p.RoyaltyBps); err != nil {
			return err
		}

		col := collection.Collection{
			Address:       p.Address.ToLower(),
			PayoutAddress: p.PayoutAddress.ToLower(),
			RoyaltyBps:    p.RoyaltyBps,
			AddedAt:       im.executor.Now(),
		}
		im.repo.Upsert(tx, col)
		royalty := col.RoyaltyBps
		im.executor.Emit(tx, event.Event{
			Kind:       event.KindCollectionAdded,
			Collection: col.Address,
			Account:    col.PayoutAddress,
			RoyaltyBps: &royalty,
		})
		res = &col
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) Update(c ctx.Ctx, caller, address domain.Address, p collection.UpdatePayload) (*collection.Collection, error) {
	var res *collection.Collection
	err := im.executor.Exec(c, "updateCollection", func(c ctx.Ctx, tx *journal.Tx) error {
		cfg := im.access.Get()
		if err := cfg.Require(caller, access.RoleAdmin); err != nil {
			return err
		}
		col, ok := im.repo.FindOne(address)
		if !ok {
			return domain.ErrCollectionNotSupported
		}
		if p.PayoutAddress.IsEmpty() {
			return domain.ErrInvalidAddress
		}
		if err := cfg.Rates.ValidateRoyalty(p.RoyaltyBps); err != nil {
			return err
		}

		col.PayoutAddress = p.PayoutAddress.ToLower()
		col.RoyaltyBps = p.RoyaltyBps
		im.repo.Upsert(tx, *col)
		royalty := col.RoyaltyBps
		im.executor.Emit(tx, event.Event{
			Kind:       event.KindCollectionUpdated,
			Collection: col.Address,
			Account:    col.PayoutAddress,
			RoyaltyBps: &royalty,
		})
		res = col
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) Verify(c ctx.Ctx, caller, address domain.Address) error {
	return im.setVerified(c, "verifyCollection", caller, address, true)
}

func (im *impl) Unverify(c ctx.Ctx, caller, address domain.Address) error {
	return im.setVerified(c, "unverifyCollection", caller, address, false)
}

func (im *impl) setVerified(c ctx.Ctx, name string, caller, address domain.Address, verified bool) error {
	return im.executor.Exec(c, name, func(c ctx.Ctx, tx *journal.Tx) error {
		if err := im.access.Get().Require(caller, access.RoleAdmin); err != nil {
			return err
		}
		col, ok := im.repo.FindOne(address)
		if !ok {
			return domain.ErrCollectionNotSupported
		}
		if col.Verified == verified {
			if verified {
				return domain.ErrCollectionVerified
			}
			return domain.ErrCollectionNotVerified
		}

		col.Verified = verified
		im.repo.Upsert(tx, *col)
		kind := event.KindCollectionVerified
		if !verified {
			kind = event.KindCollectionUnverified
		}
		im.executor.Emit(tx, event.Event{Kind: kind, Collection: col.Address})
		return nil
	})
}

// Remove offboards an unverified collection. Listings and auctions of the
// collection are left untouched.
func (im *impl) Remove(c ctx.Ctx, caller, address domain.Address) error {
	return im.executor.Exec(c, "removeCollection", func(c ctx.Ctx, tx *journal.Tx) error {
		if err := im.access.Get().Require(caller, access.RoleAdmin); err != nil {
			return err
		}
		col, ok := im.repo.FindOne(address)
		if !ok {
			return domain.ErrCollectionNotSupported
		}
		if col.Verified {
			return domain.ErrCollectionVerified
		}
		im.repo.Remove(tx, col.Address)
		im.executor.Emit(tx, event.Event{Kind: event.KindCollectionRemoved, Collection: col.Address})
		return nil
	})
}
