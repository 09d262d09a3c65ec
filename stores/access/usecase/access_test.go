package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/stores/engine/enginetest"
)

const stranger = domain.Address("0x00000000000000000000000000000000000000ee")

type accessTestSuite struct {
	suite.Suite
	env *enginetest.Env
	c   ctx.Ctx
}

func Test(t *testing.T) {
	suite.Run(t, new(accessTestSuite))
}

func (s *accessTestSuite) SetupTest() {
	s.env = enginetest.New()
	s.c = ctx.Background()
}

func (s *accessTestSuite) TestRoles() {
	for addr, want := range map[domain.Address]access.Role{
		enginetest.Owner: access.RoleOwner,
		enginetest.Admin: access.RoleAdmin,
		stranger:         access.RoleNone,
	} {
		role, err := s.env.Access.Role(s.c, addr)
		s.Require().NoError(err)
		s.Equal(want, role, addr)
	}
}

func (s *accessTestSuite) TestPause() {
	s.ErrorIs(s.env.Access.Pause(s.c, stranger), domain.ErrUnauthorized)
	s.ErrorIs(s.env.Access.Unpause(s.c, enginetest.Admin), domain.ErrNotPaused)
	s.Require().NoError(s.env.Access.Pause(s.c, enginetest.Admin))
	s.ErrorIs(s.env.Access.Pause(s.c, enginetest.Owner), domain.ErrPaused)

	cfg, err := s.env.Access.Config(s.c)
	s.Require().NoError(err)
	s.True(cfg.Paused)

	s.Require().NoError(s.env.Access.Unpause(s.c, enginetest.Owner))
	s.Equal([]event.Kind{event.KindPaused, event.KindUnpaused}, s.env.Events.Kinds())
}

func (s *accessTestSuite) TestUpdateTradeFee() {
	s.Require().NoError(s.env.Onboard("0x00000000000000000000000000000000000000c1", "0x00000000000000000000000000000000000000f1", 800))

	s.ErrorIs(s.env.Access.UpdateTradeFee(s.c, enginetest.Admin, 150), domain.ErrUnauthorized)
	// 800 royalty + 300 trade exceeds the 1000 bound
	s.ErrorIs(s.env.Access.UpdateTradeFee(s.c, enginetest.Owner, 300), domain.ErrInvalidFeeRate)
	s.Require().NoError(s.env.Access.UpdateTradeFee(s.c, enginetest.Owner, 200))

	cfg, err := s.env.Access.Config(s.c)
	s.Require().NoError(err)
	s.Equal(uint32(200), cfg.Rates.TradeFeeBps)
}

func (s *accessTestSuite) TestTransferRoles() {
	next := domain.Address("0x00000000000000000000000000000000000000aa")
	s.ErrorIs(s.env.Access.SetAdmin(s.c, enginetest.Admin, next), domain.ErrUnauthorized)
	s.Require().NoError(s.env.Access.SetAdmin(s.c, enginetest.Owner, next))
	role, err := s.env.Access.Role(s.c, enginetest.Admin)
	s.Require().NoError(err)
	s.Equal(access.RoleNone, role)

	s.ErrorIs(s.env.Access.TransferOwnership(s.c, enginetest.Owner, ""), domain.ErrInvalidAddress)
	s.Require().NoError(s.env.Access.TransferOwnership(s.c, enginetest.Owner, stranger))
	role, err = s.env.Access.Role(s.c, stranger)
	s.Require().NoError(err)
	s.Equal(access.RoleOwner, role)
	s.ErrorIs(s.env.Access.SetAdmin(s.c, enginetest.Owner, next), domain.ErrUnauthorized)
}
