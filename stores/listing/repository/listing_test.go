package repository

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/listing"
)

type listingRepoTestSuite struct {
	suite.Suite
	repo listing.Repo
}

func TestListingRepo(t *testing.T) {
	suite.Run(t, new(listingRepoTestSuite))
}

func (s *listingRepoTestSuite) SetupTest() {
	s.repo = NewListing(RecencyCfg{Global: 5, PerCollection: 3})
}

func (s *listingRepoTestSuite) insert(coll string, id string, price int64) {
	s.repo.Insert(nil, listing.Listing{
		Seller:     "0xseller",
		Price:      big.NewInt(price),
		Collection: domain.Address(coll),
		TokenId:    domain.TokenId(id),
	})
}

func (s *listingRepoTestSuite) TestInsertAndDelete() {
	s.insert("0xAA", "1", 100)
	key := domain.NewItemKey("0xaa", "1")
	s.True(s.repo.Exists(key))
	l, ok := s.repo.FindOne(domain.NewItemKey("0xAA", "1"))
	s.Require().True(ok)
	s.Equal("100", l.Price.String())

	s.repo.Delete(nil, key)
	s.False(s.repo.Exists(key))
	_, ok = s.repo.FindOne(key)
	s.False(ok)
	s.Equal(0, s.repo.Count())
}

func (s *listingRepoTestSuite) TestFindByCollectionKeepsInsertionOrder() {
	s.insert("0xaa", "3", 1)
	s.insert("0xaa", "1", 1)
	s.insert("0xbb", "2", 1)
	s.insert("0xaa", "2", 1)

	ids := []domain.TokenId{}
	for _, l := range s.repo.FindByCollection("0xaa") {
		ids = append(ids, l.TokenId)
	}
	s.Equal([]domain.TokenId{"3", "1", "2"}, ids)
	s.Empty(s.repo.FindByCollection("0xcc"))
}

func (s *listingRepoTestSuite) TestRecencyWindows() {
	for _, id := range []string{"1", "2", "3", "4"} {
		s.insert("0xaa", id, 1)
	}
	s.insert("0xbb", "9", 1)
	s.insert("0xbb", "10", 1)

	global := []domain.TokenId{}
	for _, l := range s.repo.Recent() {
		global = append(global, l.TokenId)
	}
	s.Equal([]domain.TokenId{"2", "3", "4", "9", "10"}, global)

	coll := []domain.TokenId{}
	for _, l := range s.repo.RecentByCollection("0xAA") {
		coll = append(coll, l.TokenId)
	}
	s.Equal([]domain.TokenId{"2", "3", "4"}, coll)
}

func (s *listingRepoTestSuite) TestUndo() {
	s.insert("0xaa", "1", 100)

	tx := journal.New()
	key := domain.NewItemKey("0xaa", "1")
	s.repo.UpdatePrice(tx, key, big.NewInt(200))
	s.repo.Insert(tx, listing.Listing{Seller: "0xs", Price: big.NewInt(5), Collection: "0xaa", TokenId: "2"})
	s.repo.Delete(tx, key)
	s.Require().NoError(tx.Rollback(ctx.Background()))

	l, ok := s.repo.FindOne(key)
	s.Require().True(ok)
	s.Equal("100", l.Price.String())
	s.False(s.repo.Exists(domain.NewItemKey("0xaa", "2")))
	s.Len(s.repo.Recent(), 1)
	s.Equal(1, s.repo.Count())
}

func (s *listingRepoTestSuite) TestReturnedRecordsAreCopies() {
	s.insert("0xaa", "1", 100)
	l, _ := s.repo.FindOne(domain.NewItemKey("0xaa", "1"))
	l.Price.SetInt64(1)
	again, _ := s.repo.FindOne(domain.NewItemKey("0xaa", "1"))
	s.Equal("100", again.Price.String())
}
