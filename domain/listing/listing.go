package listing

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
)

// Listing is an active fixed-price sale of one item by its owner
type Listing struct {
	Seller     domain.Address `json:"seller"`
	Price      *big.Int       `json:"price"`
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	ListedAt   int64          `json:"listedAt"`
}

func (l *Listing) Key() domain.ItemKey {
	return domain.NewItemKey(l.Collection, l.TokenId)
}

// Clone returns a deep copy so callers never alias stored amounts
func (l Listing) Clone() Listing {
	l.Price = domain.CopyAmount(l.Price)
	return l
}

// Repo holds the active listings. Existence is membership in the per
// collection item index, never a zero-valued record.
type Repo interface {
	FindOne(key domain.ItemKey) (*Listing, bool)
	Exists(key domain.ItemKey) bool
	FindByCollection(collection domain.Address) []Listing
	Count() int
	Insert(tx *journal.Tx, l Listing)
	UpdatePrice(tx *journal.Tx, key domain.ItemKey, price *big.Int)
	Delete(tx *journal.Tx, key domain.ItemKey)

	// Recent is the global window, oldest first
	Recent() []Listing
	// RecentByCollection is the per collection window, oldest first
	RecentByCollection(collection domain.Address) []Listing
}

type UseCase interface {
	List(c ctx.Ctx, seller domain.Address, key domain.ItemKey, price *big.Int) (*Listing, error)
	UpdateListing(c ctx.Ctx, caller domain.Address, key domain.ItemKey, price *big.Int) (*Listing, error)
	CancelListing(c ctx.Ctx, caller domain.Address, key domain.ItemKey) error
	Buy(c ctx.Ctx, buyer domain.Address, key domain.ItemKey, expectedPrice *big.Int) error

	Get(c ctx.Ctx, key domain.ItemKey) (*Listing, error)
	FindByCollection(c ctx.Ctx, collection domain.Address) ([]Listing, error)
	Recent(c ctx.Ctx) ([]Listing, error)
	RecentByCollection(c ctx.Ctx, collection domain.Address) ([]Listing, error)
}
