package usecase_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/service/custody/memory"
	"github.com/x-xyz/marketengine/stores/engine/enginetest"
	"golang.org/x/xerrors"
)

const payee = domain.Address("0x00000000000000000000000000000000000000f1")

type revenueTestSuite struct {
	suite.Suite
	env *enginetest.Env
	c   ctx.Ctx
}

func Test(t *testing.T) {
	suite.Run(t, new(revenueTestSuite))
}

func (s *revenueTestSuite) SetupTest() {
	s.env = enginetest.New()
	s.c = ctx.Background()
	s.env.Gateway.Deposit(enginetest.Engine, big.NewInt(100))
	s.env.RevenueRepo.Credit(nil, payee, big.NewInt(60))
}

func (s *revenueTestSuite) TestWithdraw() {
	amt, err := s.env.Revenue.Withdraw(s.c, payee)
	s.Require().NoError(err)
	s.Equal("60", amt.String())
	s.Equal("60", s.env.Balance(payee).String())

	owed, err := s.env.Revenue.Owed(s.c, payee)
	s.Require().NoError(err)
	s.Equal("0", owed.String())

	_, err = s.env.Revenue.Withdraw(s.c, payee)
	s.ErrorIs(err, domain.ErrNothingToWithdraw)
	s.Equal("60", s.env.RevenueRepo.Withdrawn().String())
	s.Equal("0", s.env.RevenueRepo.Total().String())
}

func (s *revenueTestSuite) TestFailedPushRestoresEntry() {
	s.env.Gateway.SetHook(func(_ ctx.Ctx, call memory.Call) error {
		return xerrors.New("blocked")
	})
	_, err := s.env.Revenue.Withdraw(s.c, payee)
	s.ErrorIs(err, domain.ErrCustodyFailed)
	s.Equal("60", s.env.Owed(payee))
	s.Equal("60", s.env.RevenueRepo.Total().String())
}

func (s *revenueTestSuite) TestReentrantWithdrawFindsNothing() {
	var reentrant error
	s.env.Gateway.SetHook(func(c ctx.Ctx, call memory.Call) error {
		_, reentrant = s.env.Revenue.Withdraw(c, payee)
		return nil
	})
	amt, err := s.env.Revenue.Withdraw(s.c, payee)
	s.Require().NoError(err)
	s.Equal("60", amt.String())
	s.ErrorIs(reentrant, domain.ErrReentrant)
	s.Equal("40", s.env.Balance(enginetest.Engine).String())
}

func (s *revenueTestSuite) TestWithdrawWhilePaused() {
	s.Require().NoError(s.env.Access.Pause(s.c, enginetest.Owner))
	_, err := s.env.Revenue.Withdraw(s.c, payee)
	s.NoError(err)
}

func (s *revenueTestSuite) TestFindAll() {
	s.env.RevenueRepo.Credit(nil, enginetest.Admin, big.NewInt(5))
	entries, err := s.env.Revenue.FindAll(s.c)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(payee, entries[0].Payee)
}
