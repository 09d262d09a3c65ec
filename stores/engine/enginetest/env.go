// Package enginetest wires a complete in-memory engine for use case tests.
package enginetest

import (
	"math/big"
	"sync"

	"github.com/x-xyz/marketengine/base/clock"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/auction"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/domain/fee"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/domain/offer"
	"github.com/x-xyz/marketengine/domain/revenue"
	"github.com/x-xyz/marketengine/service/custody/memory"
	accessRepository "github.com/x-xyz/marketengine/stores/access/repository"
	accessUsecase "github.com/x-xyz/marketengine/stores/access/usecase"
	auctionRepository "github.com/x-xyz/marketengine/stores/auction/repository"
	auctionUsecase "github.com/x-xyz/marketengine/stores/auction/usecase"
	collectionRepository "github.com/x-xyz/marketengine/stores/collection/repository"
	collectionUsecase "github.com/x-xyz/marketengine/stores/collection/usecase"
	engineUsecase "github.com/x-xyz/marketengine/stores/engine/usecase"
	listingRepository "github.com/x-xyz/marketengine/stores/listing/repository"
	listingUsecase "github.com/x-xyz/marketengine/stores/listing/usecase"
	offerRepository "github.com/x-xyz/marketengine/stores/offer/repository"
	offerUsecase "github.com/x-xyz/marketengine/stores/offer/usecase"
	revenueRepository "github.com/x-xyz/marketengine/stores/revenue/repository"
	revenueUsecase "github.com/x-xyz/marketengine/stores/revenue/usecase"
)

const (
	Engine = domain.Address("0x00000000000000000000000000000000000e0e0e")
	Owner  = domain.Address("0x0000000000000000000000000000000000000001")
	Admin  = domain.Address("0x0000000000000000000000000000000000000002")

	// Start is the clock reading of a fresh Env
	Start = int64(1_700_000_000)
)

// DefaultRates are 1% trade fee and a 10% total fee bound
var DefaultRates = fee.Rates{TradeFeeBps: 100, MaxFeeBps: 1000}

// Recorder is an event.Publisher that keeps every committed batch
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *Recorder) Publish(_ ctx.Ctx, events []event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]event.Event, len(r.events))
	copy(res, r.events)
	return res
}

// Kinds lists the recorded event kinds in commit order
func (r *Recorder) Kinds() []event.Kind {
	res := []event.Kind{}
	for _, e := range r.Events() {
		res = append(res, e.Kind)
	}
	return res
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type Env struct {
	Clock    *clock.Manual
	Gateway  *memory.Gateway
	Executor engine.Executor
	Events   *Recorder

	AccessRepo     access.Repo
	CollectionRepo collection.Repo
	ListingRepo    listing.Repo
	OfferRepo      offer.Repo
	AuctionRepo    auction.Repo
	RevenueRepo    revenue.Repo

	Access     access.UseCase
	Collection collection.UseCase
	Listing    listing.UseCase
	Offer      offer.UseCase
	Auction    auction.UseCase
	Revenue    revenue.UseCase
}

func New() *Env {
	return NewWithRates(DefaultRates)
}

func NewWithRates(rates fee.Rates) *Env {
	e := &Env{
		Clock:   clock.NewManual(Start),
		Gateway: memory.New(Engine),
		Events:  &Recorder{},

		AccessRepo:     accessRepository.NewAccess(access.Config{Owner: Owner, Admin: Admin, Rates: rates}),
		CollectionRepo: collectionRepository.NewCollection(),
		ListingRepo:    listingRepository.NewListing(listingRepository.RecencyCfg{Global: 5, PerCollection: 3}),
		OfferRepo:      offerRepository.NewOffer(),
		AuctionRepo:    auctionRepository.NewAuction(5),
		RevenueRepo:    revenueRepository.NewRevenue(),
	}
	m := metrics.New("engine", metrics.WithLogClient(), metrics.WithoutPodName())

	e.Executor = engineUsecase.NewExecutor(&engineUsecase.ExecutorCfg{
		AccessRepo: e.AccessRepo,
		Clock:      e.Clock,
		Publisher:  e.Events,
		Metrics:    m,
		Account:    Engine,
	})
	e.Access = accessUsecase.NewAccess(&accessUsecase.AccessUseCaseCfg{
		Executor:       e.Executor,
		AccessRepo:     e.AccessRepo,
		CollectionRepo: e.CollectionRepo,
	})
	e.Collection = collectionUsecase.NewCollection(&collectionUsecase.CollectionUseCaseCfg{
		Executor:       e.Executor,
		CollectionRepo: e.CollectionRepo,
		AccessRepo:     e.AccessRepo,
	})
	e.Revenue = revenueUsecase.NewRevenue(&revenueUsecase.RevenueUseCaseCfg{
		Executor:    e.Executor,
		RevenueRepo: e.RevenueRepo,
		Payment:     e.Gateway,
	})
	settler := engineUsecase.NewSettler(&engineUsecase.SettlerCfg{
		Directory:  e.Collection,
		AccessRepo: e.AccessRepo,
		Ledger:     e.Revenue,
		Payment:    e.Gateway,
		Metrics:    m,
	})
	e.Listing = listingUsecase.NewListing(&listingUsecase.ListingUseCaseCfg{
		Executor:    e.Executor,
		Settler:     settler,
		ListingRepo: e.ListingRepo,
		OfferRepo:   e.OfferRepo,
		AuctionRepo: e.AuctionRepo,
		Directory:   e.Collection,
		Gateway:     e.Gateway,
	})
	e.Offer = offerUsecase.NewOffer(&offerUsecase.OfferUseCaseCfg{
		Executor:    e.Executor,
		Settler:     settler,
		OfferRepo:   e.OfferRepo,
		ListingRepo: e.ListingRepo,
		Gateway:     e.Gateway,
	})
	e.Auction = auctionUsecase.NewAuction(&auctionUsecase.AuctionUseCaseCfg{
		Executor:    e.Executor,
		Settler:     settler,
		AuctionRepo: e.AuctionRepo,
		ListingRepo: e.ListingRepo,
		Directory:   e.Collection,
		Gateway:     e.Gateway,
	})
	return e
}

// Onboard adds a collection as the admin
func (e *Env) Onboard(address, payout domain.Address, royaltyBps uint32) error {
	_, err := e.Collection.Add(ctx.Background(), Admin, collection.CreatePayload{
		Address:       address,
		PayoutAddress: payout,
		RoyaltyBps:    royaltyBps,
	})
	return err
}

// MintApproved gives owner an item the engine may move
func (e *Env) MintApproved(item domain.ItemKey, owner domain.Address) {
	e.Gateway.Mint(item.Collection, item.TokenId, owner)
	e.Gateway.Approve(item.Collection, item.TokenId, Engine)
}

// Fund deposits amount for account and lets the engine pull all of it
func (e *Env) Fund(account domain.Address, amount int64) {
	e.Gateway.Deposit(account, big.NewInt(amount))
	balance := e.Balance(account)
	e.Gateway.ApprovePayment(account, Engine, balance)
}

func (e *Env) Balance(account domain.Address) *big.Int {
	b, _ := e.Gateway.BalanceOf(ctx.Background(), account)
	return b
}

func (e *Env) OwnerOf(item domain.ItemKey) domain.Address {
	owner, _ := e.Gateway.OwnerOf(ctx.Background(), item.Collection, item.TokenId)
	return owner
}

// Owed is the ledger entry of payee as a decimal string
func (e *Env) Owed(payee domain.Address) string {
	return e.RevenueRepo.Owed(payee).String()
}
