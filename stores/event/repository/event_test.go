package repository

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/event"
	"go.mongodb.org/mongo-driver/bson"
)

type eventRepoSuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(eventRepoSuite))
}

func (s *eventRepoSuite) TestMakeFindQuery() {
	testcases := []struct {
		name      string
		opts      []event.FindAllOptions
		wantQuery bson.M
		wantLimit int
		wantErr   error
	}{
		{
			name:      "no options",
			wantQuery: bson.M{},
			wantLimit: defaultLimit,
		},
		{
			name: "all options",
			opts: []event.FindAllOptions{
				event.WithKind(event.KindItemSold),
				event.WithCollection("0xABC"),
				event.WithAfterSeq(7),
				event.WithLimit(20),
			},
			wantQuery: bson.M{
				"kind":       event.KindItemSold,
				"collection": domain.Address("0xabc"),
				"seq":        bson.M{"$gt": uint64(7)},
			},
			wantLimit: 20,
		},
		{
			name:    "bad limit",
			opts:    []event.FindAllOptions{event.WithLimit(0)},
			wantErr: domain.ErrBadParamInput,
		},
	}

	for _, tc := range testcases {
		qry, limit, err := makeFindQuery(tc.opts...)
		if tc.wantErr != nil {
			s.ErrorIs(err, tc.wantErr, tc.name)
			continue
		}
		s.NoError(err, tc.name)
		s.Equal(tc.wantQuery, qry, tc.name)
		s.Equal(tc.wantLimit, limit, tc.name)
	}
}
