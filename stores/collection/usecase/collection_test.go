package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/stores/engine/enginetest"
)

const (
	coll   = domain.Address("0x00000000000000000000000000000000000000C1")
	payout = domain.Address("0x00000000000000000000000000000000000000f1")
)

type collectionTestSuite struct {
	suite.Suite
	env *enginetest.Env
	c   ctx.Ctx
}

func Test(t *testing.T) {
	suite.Run(t, new(collectionTestSuite))
}

func (s *collectionTestSuite) SetupTest() {
	s.env = enginetest.New()
	s.c = ctx.Background()
}

func (s *collectionTestSuite) TestAdd() {
	testcases := []struct {
		name   string
		caller domain.Address
		p      collection.CreatePayload
		err    error
	}{
		{
			name:   "stranger",
			caller: payout,
			p:      collection.CreatePayload{Address: coll, PayoutAddress: payout},
			err:    domain.ErrUnauthorized,
		},
		{
			name:   "royalty above bound",
			caller: enginetest.Admin,
			p:      collection.CreatePayload{Address: coll, PayoutAddress: payout, RoyaltyBps: 901},
			err:    domain.ErrInvalidFeeRate,
		},
		{
			name:   "missing payout",
			caller: enginetest.Owner,
			p:      collection.CreatePayload{Address: coll},
			err:    domain.ErrInvalidAddress,
		},
		{
			name:   "ok",
			caller: enginetest.Owner,
			p:      collection.CreatePayload{Address: coll, PayoutAddress: payout, RoyaltyBps: 900},
		},
		{
			name:   "duplicate",
			caller: enginetest.Admin,
			p:      collection.CreatePayload{Address: coll.ToLower(), PayoutAddress: payout},
			err:    domain.ErrCollectionExists,
		},
	}
	for _, tc := range testcases {
		_, err := s.env.Collection.Add(s.c, tc.caller, tc.p)
		if tc.err != nil {
			s.ErrorIs(err, tc.err, tc.name)
		} else {
			s.NoError(err, tc.name)
		}
	}

	s.True(s.env.Collection.IsSupported(coll))
	addr, bps, err := s.env.Collection.RoyaltyInfo(coll.ToLower())
	s.Require().NoError(err)
	s.Equal(payout, addr)
	s.Equal(uint32(900), bps)
	s.Equal([]event.Kind{event.KindCollectionAdded}, s.env.Events.Kinds())
	s.Equal(uint32(900), *s.env.Events.Events()[0].RoyaltyBps)
}

func (s *collectionTestSuite) TestVerifyAndRemove() {
	s.Require().NoError(s.env.Onboard(coll, payout, 100))

	s.ErrorIs(s.env.Collection.Unverify(s.c, enginetest.Admin, coll), domain.ErrCollectionNotVerified)
	s.Require().NoError(s.env.Collection.Verify(s.c, enginetest.Admin, coll))
	s.True(s.env.Collection.IsVerified(coll))
	s.ErrorIs(s.env.Collection.Verify(s.c, enginetest.Admin, coll), domain.ErrCollectionVerified)
	s.ErrorIs(s.env.Collection.Remove(s.c, enginetest.Admin, coll), domain.ErrCollectionVerified)

	s.Require().NoError(s.env.Collection.Unverify(s.c, enginetest.Admin, coll))
	s.Require().NoError(s.env.Collection.Remove(s.c, enginetest.Admin, coll))
	s.False(s.env.Collection.IsSupported(coll))
	_, err := s.env.Collection.Get(s.c, coll)
	s.ErrorIs(err, domain.ErrCollectionNotSupported)
	_, _, err = s.env.Collection.RoyaltyInfo(coll)
	s.ErrorIs(err, domain.ErrCollectionNotSupported)
}

func (s *collectionTestSuite) TestUpdate() {
	_, err := s.env.Collection.Update(s.c, enginetest.Admin, coll, collection.UpdatePayload{PayoutAddress: payout})
	s.ErrorIs(err, domain.ErrCollectionNotSupported)

	s.Require().NoError(s.env.Onboard(coll, payout, 100))
	next := domain.Address("0x00000000000000000000000000000000000000f2")
	col, err := s.env.Collection.Update(s.c, enginetest.Admin, coll, collection.UpdatePayload{PayoutAddress: next, RoyaltyBps: 300})
	s.Require().NoError(err)
	s.Equal(next, col.PayoutAddress)

	all, err := s.env.Collection.FindAll(s.c)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(uint32(300), all[0].RoyaltyBps)
}
