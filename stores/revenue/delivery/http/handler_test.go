package http_test

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/stores/engine/enginetest"
	revenueHttp "github.com/x-xyz/marketengine/stores/revenue/delivery/http"
)

const (
	coll   = domain.Address("0x00000000000000000000000000000000000000c1")
	payout = domain.Address("0x00000000000000000000000000000000000000f1")
	seller = domain.Address("0x00000000000000000000000000000000000000a1")
	buyer  = domain.Address("0x00000000000000000000000000000000000000b1")
)

type entry struct {
	Payee string `json:"payee"`
	Owed  string `json:"owed"`
}

type handlerSuite struct {
	suite.Suite
	env    *enginetest.Env
	server *enginetest.Server
}

func Test(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) SetupTest() {
	s.env = enginetest.New()
	s.server = s.env.NewServer()
	revenueHttp.New(s.server.Echo, s.env.Revenue, s.server.Auth)

	item := domain.NewItemKey(coll, "7")
	s.Require().NoError(s.env.Onboard(coll, payout, 250))
	s.env.MintApproved(item, seller)
	s.env.Fund(buyer, 5000)
	c := ctx.Background()
	_, err := s.env.Listing.List(c, seller, item, big.NewInt(1000))
	s.Require().NoError(err)
	s.Require().NoError(s.env.Listing.Buy(c, buyer, item, big.NewInt(1000)))
}

func (s *handlerSuite) owed(payee domain.Address) string {
	rec := s.server.Do(http.MethodGet, "/revenue/"+string(payee), nil, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	res := entry{}
	_, err := enginetest.Decode(rec, &res)
	s.Require().NoError(err)
	return res.Owed
}

func (s *handlerSuite) TestOwedAndWithdraw() {
	s.Equal("25", s.owed(payout))
	s.Equal("10", s.owed(enginetest.Admin))
	s.Equal("0", s.owed(seller))

	rec := s.server.Do(http.MethodGet, "/revenue", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	all := []entry{}
	_, err := enginetest.Decode(rec, &all)
	s.Require().NoError(err)
	s.Len(all, 2)

	rec = s.server.Do(http.MethodPost, "/revenue/withdraw", nil, payout)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	withdrawn := entry{}
	_, err = enginetest.Decode(rec, &withdrawn)
	s.Require().NoError(err)
	s.Equal("25", withdrawn.Owed)
	s.Equal("25", s.env.Balance(payout).String())
	s.Equal("0", s.owed(payout))

	rec = s.server.Do(http.MethodPost, "/revenue/withdraw", nil, payout)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *handlerSuite) TestRejectsBadRequests() {
	rec := s.server.Do(http.MethodGet, "/revenue/payout", nil, "")
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.server.Do(http.MethodPost, "/revenue/withdraw", nil, "")
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)
}
