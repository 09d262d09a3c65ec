package usecase_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/auction"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/service/custody/memory"
	"github.com/x-xyz/marketengine/stores/engine/enginetest"
	"golang.org/x/xerrors"
)

const (
	coll    = domain.Address("0x00000000000000000000000000000000000000c1")
	payout  = domain.Address("0x00000000000000000000000000000000000000f1")
	creator = domain.Address("0x00000000000000000000000000000000000000a1")
	alice   = domain.Address("0x00000000000000000000000000000000000000b1")
	bob     = domain.Address("0x00000000000000000000000000000000000000b2")
	carol   = domain.Address("0x00000000000000000000000000000000000000b3")
)

type auctionTestSuite struct {
	suite.Suite
	env  *enginetest.Env
	c    ctx.Ctx
	item domain.ItemKey
}

func Test(t *testing.T) {
	suite.Run(t, new(auctionTestSuite))
}

func (s *auctionTestSuite) SetupTest() {
	s.env = enginetest.New()
	s.c = ctx.Background()
	s.item = domain.NewItemKey(coll, "7")
	s.Require().NoError(s.env.Onboard(coll, payout, 250))
	s.env.MintApproved(s.item, creator)
	for _, bidder := range []domain.Address{alice, bob, carol} {
		s.env.Fund(bidder, 5000)
	}
	s.env.Events.Reset()
}

func (s *auctionTestSuite) start(startingBid int64) *auction.Auction {
	a, err := s.env.Auction.CreateAuction(s.c, creator, auction.CreatePayload{
		Item:        s.item,
		StartingBid: big.NewInt(startingBid),
		Duration:    3600,
	})
	s.Require().NoError(err)
	return a
}

func (s *auctionTestSuite) bid(bidder domain.Address, id string, amount int64) {
	s.Require().NoError(s.env.Auction.CreateBid(s.c, bidder, id, big.NewInt(amount)))
}

func (s *auctionTestSuite) auction(id string) *auction.Auction {
	a, err := s.env.Auction.Get(s.c, id)
	s.Require().NoError(err)
	return a
}

func (s *auctionTestSuite) bidOf(id string, bidder domain.Address) *auction.Bid {
	b, err := s.env.Auction.GetBid(s.c, id, bidder)
	s.Require().NoError(err)
	return b
}

func (s *auctionTestSuite) TestAuctionLifecycle() {
	a := s.start(100)
	s.Equal(enginetest.Engine, s.env.OwnerOf(s.item))
	s.Equal(enginetest.Start+3600, a.EndTime)

	s.bid(alice, a.Id, 150)
	s.Equal(alice, s.auction(a.Id).HighestBidder)
	s.bid(bob, a.Id, 200)
	got := s.auction(a.Id)
	s.Equal(bob, got.HighestBidder)
	s.Equal("200", got.HighestBid.String())
	s.True(s.bidOf(a.Id, alice).Withdrawable)

	s.Require().NoError(s.env.Auction.AcceptBid(s.c, creator, a.Id))
	s.Equal(auction.StateSold, s.auction(a.Id).State)
	s.Equal("193", s.env.Balance(creator).String())
	s.Equal("5", s.env.Owed(payout))
	s.Equal("2", s.env.Owed(enginetest.Admin))

	amt, err := s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.Require().NoError(err)
	s.Equal("150", amt.String())
	s.Equal("5000", s.env.Balance(alice).String())

	s.Require().NoError(s.env.Auction.ClaimTokenId(s.c, bob, a.Id))
	s.Equal(bob, s.env.OwnerOf(s.item))
	s.Equal("4800", s.env.Balance(bob).String())

	s.Equal([]event.Kind{
		event.KindAuctionStarted,
		event.KindBidCreated,
		event.KindBidCreated,
		event.KindBidAccepted,
		event.KindBidValueClaimed,
		event.KindAuctionClaimed,
	}, s.env.Events.Kinds())
	// everything escrowed went out except the ledger's fees
	s.Equal("7", s.env.Balance(enginetest.Engine).String())
}

func (s *auctionTestSuite) TestSuccessiveBids() {
	a := s.start(100)
	bidders := []domain.Address{alice, bob, carol}
	for i, bidder := range bidders {
		s.bid(bidder, a.Id, int64(200+i*100))
	}

	got := s.auction(a.Id)
	s.Equal(carol, got.HighestBidder)
	s.Equal(3, got.BidsCount)
	bids, err := s.env.Auction.FindBids(s.c, a.Id)
	s.Require().NoError(err)
	s.Require().Len(bids, 3)
	withdrawable := 0
	for _, b := range bids {
		if b.Withdrawable {
			withdrawable++
			s.NotEqual(carol, b.Bidder)
		}
	}
	s.Equal(2, withdrawable)
}

func (s *auctionTestSuite) TestBidValidation() {
	a := s.start(100)

	s.ErrorIs(s.env.Auction.CreateBid(s.c, creator, a.Id, big.NewInt(500)), domain.ErrCreatorBid)
	s.ErrorIs(s.env.Auction.CreateBid(s.c, alice, a.Id, big.NewInt(100)), domain.ErrBidTooLow)
	s.ErrorIs(s.env.Auction.CreateBid(s.c, alice, "0xmissing", big.NewInt(500)), domain.ErrAuctionNotFound)
	s.bid(alice, a.Id, 150)
	s.ErrorIs(s.env.Auction.CreateBid(s.c, bob, a.Id, big.NewInt(150)), domain.ErrBidTooLow)
	s.ErrorIs(s.env.Auction.CreateBid(s.c, alice, a.Id, big.NewInt(300)), domain.ErrBidExists)
	s.ErrorIs(s.env.Auction.CreateBid(s.c, bob, a.Id, big.NewInt(9000)), domain.ErrInsufficientBalance)

	s.env.Clock.Advance(3601)
	s.ErrorIs(s.env.Auction.CreateBid(s.c, bob, a.Id, big.NewInt(300)), domain.ErrAuctionExpired)
	s.ErrorIs(s.env.Auction.UpdateBid(s.c, alice, a.Id, big.NewInt(300)), domain.ErrAuctionExpired)
	// stored state is still active until someone settles
	s.Equal(auction.StateActive, s.auction(a.Id).State)
	s.NoError(s.env.Auction.AcceptBid(s.c, creator, a.Id))
}

func (s *auctionTestSuite) TestBidAtEndTimeIsAccepted() {
	a := s.start(100)
	s.env.Clock.Advance(3600)
	s.bid(alice, a.Id, 150)
}

func (s *auctionTestSuite) TestUpdateBidPullsDelta() {
	a := s.start(100)
	s.bid(alice, a.Id, 150)
	s.bid(bob, a.Id, 200)

	s.ErrorIs(s.env.Auction.UpdateBid(s.c, carol, a.Id, big.NewInt(300)), domain.ErrBidNotFound)
	s.ErrorIs(s.env.Auction.UpdateBid(s.c, alice, a.Id, big.NewInt(200)), domain.ErrBidTooLow)
	s.Require().NoError(s.env.Auction.UpdateBid(s.c, alice, a.Id, big.NewInt(250)))

	s.Equal("4750", s.env.Balance(alice).String())
	got := s.auction(a.Id)
	s.Equal(alice, got.HighestBidder)
	s.Equal("250", got.HighestBid.String())
	s.False(s.bidOf(a.Id, alice).Withdrawable)
	s.True(s.bidOf(a.Id, bob).Withdrawable)

	// raising your own highest bid displaces nobody
	s.Require().NoError(s.env.Auction.UpdateBid(s.c, alice, a.Id, big.NewInt(260)))
	s.Equal("4740", s.env.Balance(alice).String())
	s.False(s.bidOf(a.Id, alice).Withdrawable)
}

func (s *auctionTestSuite) TestCancelBidAndClaimOnce() {
	a := s.start(100)
	s.bid(alice, a.Id, 150)
	s.bid(bob, a.Id, 200)

	s.ErrorIs(s.env.Auction.CancelBid(s.c, bob, a.Id), domain.ErrHighestBidder)
	s.Require().NoError(s.env.Auction.CancelBid(s.c, alice, a.Id))
	s.ErrorIs(s.env.Auction.CancelBid(s.c, alice, a.Id), domain.ErrBidCancelled)
	s.Equal(1, s.auction(a.Id).BidsCount)

	_, err := s.env.Auction.ClaimBidValue(s.c, bob, a.Id)
	s.ErrorIs(err, domain.ErrHighestBidder)

	amt, err := s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.Require().NoError(err)
	s.Equal("150", amt.String())
	_, err = s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.ErrorIs(err, domain.ErrNothingToClaim)
	s.Equal("5000", s.env.Balance(alice).String())

	// a cancelled bid can come back
	s.Require().NoError(s.env.Auction.UpdateBid(s.c, alice, a.Id, big.NewInt(300)))
	got := s.auction(a.Id)
	s.Equal(2, got.BidsCount)
	s.Equal(alice, got.HighestBidder)
	s.Equal("4700", s.env.Balance(alice).String())
}

func (s *auctionTestSuite) TestCancelBidAfterSaleKeepsCount() {
	a := s.start(100)
	s.bid(alice, a.Id, 150)
	s.bid(bob, a.Id, 200)
	s.Require().NoError(s.env.Auction.AcceptBid(s.c, creator, a.Id))

	s.Require().NoError(s.env.Auction.CancelBid(s.c, alice, a.Id))
	got := s.auction(a.Id)
	s.Equal(auction.StateSold, got.State)
	s.Equal(2, got.BidsCount)
	s.True(s.bidOf(a.Id, alice).Cancelled)

	amt, err := s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.Require().NoError(err)
	s.Equal("150", amt.String())
}

func (s *auctionTestSuite) TestCancelAuction() {
	a := s.start(100)
	s.bid(alice, a.Id, 150)
	s.bid(bob, a.Id, 200)

	s.ErrorIs(s.env.Auction.CancelAuction(s.c, alice, a.Id), domain.ErrNotCreator)
	s.Require().NoError(s.env.Auction.CancelAuction(s.c, creator, a.Id))
	s.ErrorIs(s.env.Auction.CancelAuction(s.c, creator, a.Id), domain.ErrAuctionNotActive)
	s.Equal(auction.StateInactive, s.auction(a.Id).State)
	s.Equal(creator, s.env.OwnerOf(s.item))
	active, err := s.env.Auction.FindActive(s.c)
	s.Require().NoError(err)
	s.Empty(active)

	s.ErrorIs(s.env.Auction.AcceptBid(s.c, creator, a.Id), domain.ErrAuctionNotActive)
	s.ErrorIs(s.env.Auction.ClaimTokenId(s.c, bob, a.Id), domain.ErrAuctionNotSold)

	// with no sale every bidder gets their escrow back, the highest included
	for bidder, want := range map[domain.Address]string{alice: "150", bob: "200"} {
		amt, err := s.env.Auction.ClaimBidValue(s.c, bidder, a.Id)
		s.Require().NoError(err)
		s.Equal(want, amt.String())
		s.Equal("5000", s.env.Balance(bidder).String())
	}
	s.Equal("0", s.env.Balance(enginetest.Engine).String())
}

func (s *auctionTestSuite) TestAcceptBidGuards() {
	a := s.start(100)
	s.ErrorIs(s.env.Auction.AcceptBid(s.c, creator, a.Id), domain.ErrNoBids)
	s.bid(alice, a.Id, 150)
	s.ErrorIs(s.env.Auction.AcceptBid(s.c, alice, a.Id), domain.ErrNotCreator)
	s.Require().NoError(s.env.Auction.AcceptBid(s.c, creator, a.Id))
	s.ErrorIs(s.env.Auction.AcceptBid(s.c, creator, a.Id), domain.ErrAuctionNotActive)

	_, err := s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.ErrorIs(err, domain.ErrHighestBidder)
	s.ErrorIs(s.env.Auction.ClaimTokenId(s.c, bob, a.Id), domain.ErrNotHighestBidder)
	s.Require().NoError(s.env.Auction.ClaimTokenId(s.c, alice, a.Id))
	s.ErrorIs(s.env.Auction.ClaimTokenId(s.c, alice, a.Id), domain.ErrItemAlreadyClaimed)
}

func (s *auctionTestSuite) TestCreateAuctionValidation() {
	_, err := s.env.Auction.CreateAuction(s.c, creator, auction.CreatePayload{Item: s.item, StartingBid: big.NewInt(1)})
	s.ErrorIs(err, domain.ErrInvalidDuration)
	_, err = s.env.Auction.CreateAuction(s.c, alice, auction.CreatePayload{Item: s.item, Duration: 10})
	s.ErrorIs(err, domain.ErrNotOwner)

	_, err = s.env.Listing.List(s.c, creator, s.item, big.NewInt(10))
	s.Require().NoError(err)
	_, err = s.env.Auction.CreateAuction(s.c, creator, auction.CreatePayload{Item: s.item, Duration: 10})
	s.ErrorIs(err, domain.ErrItemListed)
	s.Require().NoError(s.env.Listing.CancelListing(s.c, creator, s.item))

	a := s.start(0)
	_, err = s.env.Auction.CreateAuction(s.c, creator, auction.CreatePayload{Item: s.item, Duration: 10})
	s.ErrorIs(err, domain.ErrAuctionExists)
	_, err = s.env.Listing.List(s.c, creator, s.item, big.NewInt(10))
	s.ErrorIs(err, domain.ErrItemInAuction)

	// a zero starting bid still needs a positive bid
	s.ErrorIs(s.env.Auction.CreateBid(s.c, alice, a.Id, big.NewInt(0)), domain.ErrBidTooLow)
	s.bid(alice, a.Id, 1)
}

func (s *auctionTestSuite) TestIdsAreUniqueWithinATick() {
	first := s.start(100)
	s.Require().NoError(s.env.Auction.CancelAuction(s.c, creator, first.Id))
	s.env.Gateway.Approve(coll, "7", enginetest.Engine)
	second := s.start(100)

	s.NotEqual(first.Id, second.Id)
	all, err := s.env.Auction.FindAll(s.c)
	s.Require().NoError(err)
	s.Len(all, 2)
	recent, err := s.env.Auction.Recent(s.c)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(auction.StateInactive, recent[0].State)
}

func (s *auctionTestSuite) TestFailedTransferRollsBack() {
	s.env.Gateway.SetHook(func(_ ctx.Ctx, call memory.Call) error {
		if call.Method == memory.MethodTransfer {
			return xerrors.New("frozen")
		}
		return nil
	})
	_, err := s.env.Auction.CreateAuction(s.c, creator, auction.CreatePayload{Item: s.item, StartingBid: big.NewInt(1), Duration: 10})
	s.ErrorIs(err, domain.ErrCustodyFailed)

	all, err := s.env.Auction.FindAll(s.c)
	s.Require().NoError(err)
	s.Empty(all)
	_, ok := s.env.AuctionRepo.ActiveByItem(s.item)
	s.False(ok)
	s.Equal(creator, s.env.OwnerOf(s.item))
}

func (s *auctionTestSuite) TestFailedClaimKeepsValue() {
	a := s.start(100)
	s.bid(alice, a.Id, 150)
	s.bid(bob, a.Id, 200)
	s.env.Gateway.SetHook(func(_ ctx.Ctx, call memory.Call) error {
		if call.Method == memory.MethodPush {
			return xerrors.New("blocked")
		}
		return nil
	})

	_, err := s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.ErrorIs(err, domain.ErrCustodyFailed)
	s.Equal("150", s.bidOf(a.Id, alice).Amount.String())

	s.env.Gateway.SetHook(nil)
	amt, err := s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.Require().NoError(err)
	s.Equal("150", amt.String())
}

func (s *auctionTestSuite) TestExitsWhilePaused() {
	a := s.start(100)
	s.bid(alice, a.Id, 150)
	s.bid(bob, a.Id, 200)
	s.Require().NoError(s.env.Access.Pause(s.c, enginetest.Admin))

	s.ErrorIs(s.env.Auction.CreateBid(s.c, carol, a.Id, big.NewInt(300)), domain.ErrPaused)
	s.ErrorIs(s.env.Auction.AcceptBid(s.c, creator, a.Id), domain.ErrPaused)
	_, err := s.env.Auction.ClaimBidValue(s.c, alice, a.Id)
	s.NoError(err)
	s.NoError(s.env.Auction.CancelAuction(s.c, creator, a.Id))
}
