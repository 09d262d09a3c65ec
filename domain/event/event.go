package event

import (
	"github.com/google/uuid"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

type Kind string

const (
	KindItemListed   Kind = "ItemListed"
	KindItemUpdated  Kind = "ItemUpdated"
	KindItemSold     Kind = "ItemSold"
	KindItemDelisted Kind = "ItemDelisted"

	KindCollectionAdded      Kind = "CollectionAdded"
	KindCollectionUpdated    Kind = "CollectionUpdated"
	KindCollectionVerified   Kind = "CollectionVerified"
	KindCollectionUnverified Kind = "CollectionUnverified"
	KindCollectionRemoved    Kind = "CollectionRemoved"

	KindOfferCreated   Kind = "OfferCreated"
	KindOfferUpdated   Kind = "OfferUpdated"
	KindOfferCancelled Kind = "OfferCancelled"
	KindOfferAccepted  Kind = "OfferAccepted"

	KindAuctionStarted   Kind = "AuctionStarted"
	KindAuctionCancelled Kind = "AuctionCancelled"
	KindBidCreated       Kind = "BidCreated"
	KindBidUpdated       Kind = "BidUpdated"
	KindBidCancelled     Kind = "BidCancelled"
	KindBidAccepted      Kind = "BidAccepted"
	KindBidValueClaimed  Kind = "BidValueClaimed"
	KindAuctionClaimed   Kind = "AuctionItemClaimed"

	KindRevenueWithdrawn Kind = "RevenueWithdrawn"
	KindTradeFeeUpdated  Kind = "TradeFeeUpdated"
	KindAdminUpdated     Kind = "AdminUpdated"
	KindOwnerUpdated     Kind = "OwnershipTransferred"
	KindPaused           Kind = "Paused"
	KindUnpaused         Kind = "Unpaused"
)

// Event carries the identifying tuple of the change plus the changed
// value. Unused fields stay empty.
type Event struct {
	Id   string `json:"id" bson:"_id"`
	Seq  uint64 `json:"seq" bson:"seq"`
	Kind Kind   `json:"kind" bson:"kind"`
	At   int64  `json:"at" bson:"at"`

	Collection   domain.Address `json:"collection,omitempty" bson:"collection,omitempty"`
	TokenId      domain.TokenId `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	AuctionId    string         `json:"auctionId,omitempty" bson:"auctionId,omitempty"`
	Account      domain.Address `json:"account,omitempty" bson:"account,omitempty"`
	Counterparty domain.Address `json:"counterparty,omitempty" bson:"counterparty,omitempty"`
	Value        string         `json:"value,omitempty" bson:"value,omitempty"`
	RoyaltyBps   *uint32        `json:"royaltyBps,omitempty" bson:"royaltyBps,omitempty"`
}

// Stamp assigns the id, sequence number and time at commit
func (e *Event) Stamp(seq uint64, at int64) {
	e.Id = uuid.NewString()
	e.Seq = seq
	e.At = at
}

// Sink receives committed events. Sinks never influence the engine.
type Sink interface {
	Name() string
	Handle(c ctx.Ctx, events []Event) error
}

// Publisher hands a committed batch to the sinks
type Publisher interface {
	Publish(c ctx.Ctx, events []Event)
}

// Repo archives events
type Repo interface {
	InsertMany(c ctx.Ctx, events []Event) error
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]Event, error)
}

type findAllOptions struct {
	Kind       *Kind
	Collection *domain.Address
	AfterSeq   *uint64
	Limit      *int64
}

type FindAllOptions func(*findAllOptions) error

func GetFindAllOptions(opts ...FindAllOptions) (findAllOptions, error) {
	res := findAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithKind(kind Kind) FindAllOptions {
	return func(options *findAllOptions) error {
		options.Kind = &kind
		return nil
	}
}

func WithCollection(collection domain.Address) FindAllOptions {
	return func(options *findAllOptions) error {
		c := collection.ToLower()
		options.Collection = &c
		return nil
	}
}

func WithAfterSeq(seq uint64) FindAllOptions {
	return func(options *findAllOptions) error {
		options.AfterSeq = &seq
		return nil
	}
}

func WithLimit(limit int64) FindAllOptions {
	return func(options *findAllOptions) error {
		if limit <= 0 {
			return domain.ErrBadParamInput
		}
		options.Limit = &limit
		return nil
	}
}

// UseCase serves the archived event history
type UseCase interface {
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]Event, error)
}
