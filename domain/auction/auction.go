package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
)

type State string

const (
	StateActive   State = "active"
	StateSold     State = "sold"
	StateInactive State = "inactive"
)

// IsTerminal reports whether no further transition is possible
func (s State) IsTerminal() bool {
	return s == StateSold || s == StateInactive
}

// Auction is a timed ascending auction. Records are kept after they end.
type Auction struct {
	Id            string         `json:"id"`
	Creator       domain.Address `json:"creator"`
	Collection    domain.Address `json:"collection"`
	TokenId       domain.TokenId `json:"tokenId"`
	StartingBid   *big.Int       `json:"startingBid"`
	HighestBid    *big.Int       `json:"highestBid"`
	HighestBidder domain.Address `json:"highestBidder"`
	StartTime     int64          `json:"startTime"`
	EndTime       int64          `json:"endTime"`
	State         State          `json:"state"`
	BidsCount     int            `json:"bidsCount"`
	ItemClaimed   bool           `json:"itemClaimed"`
}

func (a *Auction) Key() domain.ItemKey {
	return domain.NewItemKey(a.Collection, a.TokenId)
}

// IsExpired compares against the logical clock; a stored Active state
// says nothing about freshness.
func (a *Auction) IsExpired(now int64) bool {
	return now > a.EndTime
}

// HasBids reports whether a highest bid is recorded
func (a *Auction) HasBids() bool {
	return domain.IsPositive(a.HighestBid)
}

// MinimumBid is the amount a new bid has to exceed
func (a *Auction) MinimumBid() *big.Int {
	if a.HighestBid != nil && a.HighestBid.Cmp(a.StartingBid) > 0 {
		return domain.CopyAmount(a.HighestBid)
	}
	return domain.CopyAmount(a.StartingBid)
}

func (a Auction) Clone() Auction {
	a.StartingBid = domain.CopyAmount(a.StartingBid)
	a.HighestBid = domain.CopyAmount(a.HighestBid)
	return a
}

// Bid is one bidder's escrowed position in one auction
type Bid struct {
	AuctionId    string         `json:"auctionId"`
	Bidder       domain.Address `json:"bidder"`
	Amount       *big.Int       `json:"amount"`
	Withdrawable bool           `json:"withdrawable"`
	Cancelled    bool           `json:"cancelled"`
	UpdatedAt    int64          `json:"updatedAt"`
}

func (b Bid) Clone() Bid {
	b.Amount = domain.CopyAmount(b.Amount)
	return b
}

// DeriveId hashes the item, the creation time and a per engine nonce. The
// nonce keeps ids unique when one item is auctioned twice in a clock tick.
func DeriveId(collection domain.Address, tokenId domain.TokenId, createdAt int64, nonce uint64) (string, error) {
	id, err := domain.ParseAmount(tokenId.String())
	if err != nil {
		return "", err
	}
	hash := crypto.Keccak256Hash(
		common.HexToAddress(collection.ToLowerStr()).Bytes(),
		math.U256Bytes(id),
		math.U256Bytes(big.NewInt(createdAt)),
		math.U256Bytes(new(big.Int).SetUint64(nonce)),
	)
	return hash.Hex(), nil
}

type Repo interface {
	FindOne(id string) (*Auction, bool)
	// FindAll lists every auction ever created, oldest first
	FindAll() []Auction
	// FindActive lists the currently Active auctions, in no particular order
	FindActive() []Auction
	ActiveByItem(item domain.ItemKey) (string, bool)
	Recent() []Auction
	NextNonce(tx *journal.Tx) uint64

	Insert(tx *journal.Tx, a Auction)
	Update(tx *journal.Tx, a Auction)
	// Deactivate drops id from the active and per item indexes
	Deactivate(tx *journal.Tx, id string)

	FindBid(id string, bidder domain.Address) (*Bid, bool)
	FindBids(id string) []Bid
	PutBid(tx *journal.Tx, b Bid)
}

type CreatePayload struct {
	Item        domain.ItemKey
	StartingBid *big.Int
	// Duration in seconds from now
	Duration int64
}

type UseCase interface {
	CreateAuction(c ctx.Ctx, caller domain.Address, p CreatePayload) (*Auction, error)
	CreateBid(c ctx.Ctx, bidder domain.Address, auctionId string, amount *big.Int) error
	UpdateBid(c ctx.Ctx, bidder domain.Address, auctionId string, amount *big.Int) error
	CancelBid(c ctx.Ctx, bidder domain.Address, auctionId string) error
	ClaimBidValue(c ctx.Ctx, bidder domain.Address, auctionId string) (*big.Int, error)
	AcceptBid(c ctx.Ctx, caller domain.Address, auctionId string) error
	CancelAuction(c ctx.Ctx, caller domain.Address, auctionId string) error
	ClaimTokenId(c ctx.Ctx, caller domain.Address, auctionId string) error

	Get(c ctx.Ctx, auctionId string) (*Auction, error)
	GetBid(c ctx.Ctx, auctionId string, bidder domain.Address) (*Bid, error)
	FindBids(c ctx.Ctx, auctionId string) ([]Bid, error)
	FindAll(c ctx.Ctx) ([]Auction, error)
	FindActive(c ctx.Ctx) ([]Auction, error)
	Recent(c ctx.Ctx) ([]Auction, error)
}
