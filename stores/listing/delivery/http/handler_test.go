package http_test

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/stores/engine/enginetest"
	listingHttp "github.com/x-xyz/marketengine/stores/listing/delivery/http"
)

const (
	coll   = domain.Address("0x00000000000000000000000000000000000000c1")
	payout = domain.Address("0x00000000000000000000000000000000000000f1")
	seller = domain.Address("0x00000000000000000000000000000000000000a1")
	buyer  = domain.Address("0x00000000000000000000000000000000000000b1")
)

type listing struct {
	Seller  string `json:"seller"`
	TokenId string `json:"tokenId"`
	Price   string `json:"price"`
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
	listingHttp.New(s.server.Echo, s.env.Listing, s.server.Auth)

	s.Require().NoError(s.env.Onboard(coll, payout, 250))
	s.env.MintApproved(domain.NewItemKey(coll, "7"), seller)
	s.env.Fund(buyer, 5000)
}

func (s *handlerSuite) TestListAndBuy() {
	rec := s.server.Do(http.MethodPost, "/listings", map[string]string{
		"collection": string(coll),
		"tokenId":    "7",
		"price":      "1000",
	}, seller)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	created := listing{}
	status, err := enginetest.Decode(rec, &created)
	s.Require().NoError(err)
	s.Equal(delivery.JsonResponseStatusSuccess, status)
	s.Equal("1000", created.Price)
	s.Equal(string(seller), created.Seller)

	rec = s.server.Do(http.MethodGet, "/listings/recent", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	recent := []listing{}
	_, err = enginetest.Decode(rec, &recent)
	s.Require().NoError(err)
	s.Len(recent, 1)

	rec = s.server.Do(http.MethodPost, "/listings/"+string(coll)+"/7/buy", map[string]string{"price": "900"}, buyer)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.server.Do(http.MethodPost, "/listings/"+string(coll)+"/7/buy", map[string]string{"price": "1000"}, buyer)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("965", s.env.Balance(seller).String())
	s.Equal(buyer, s.env.OwnerOf(domain.NewItemKey(coll, "7")))

	rec = s.server.Do(http.MethodGet, "/listings/"+string(coll)+"/7", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *handlerSuite) TestUpdateAndCancel() {
	_, err := s.env.Listing.List(ctx.Background(), seller, domain.NewItemKey(coll, "7"), big.NewInt(1000))
	s.Require().NoError(err)

	rec := s.server.Do(http.MethodPut, "/listings/"+string(coll)+"/7", map[string]string{"price": "1200"}, buyer)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.server.Do(http.MethodPut, "/listings/"+string(coll)+"/7", map[string]string{"price": "1200"}, seller)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	updated := listing{}
	_, err = enginetest.Decode(rec, &updated)
	s.Require().NoError(err)
	s.Equal("1200", updated.Price)

	rec = s.server.Do(http.MethodDelete, "/listings/"+string(coll)+"/7", nil, seller)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.False(s.env.ListingRepo.Exists(domain.NewItemKey(coll, "7")))
}

func (s *handlerSuite) TestRejectsBadRequests() {
	rec := s.server.Do(http.MethodPost, "/listings", map[string]string{
		"collection": string(coll),
		"tokenId":    "7",
		"price":      "1000",
	}, "")
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)

	rec = s.server.Do(http.MethodPost, "/listings", map[string]string{
		"collection": "bayc",
		"tokenId":    "7",
		"price":      "1000",
	}, seller)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.server.Do(http.MethodPost, "/listings", map[string]string{
		"collection": string(coll),
		"tokenId":    "7",
		"price":      "1.5",
	}, seller)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.server.Do(http.MethodGet, "/listings/collection/bayc", nil, "")
	s.Equal(http.StatusBadRequest, rec.Code)
}
