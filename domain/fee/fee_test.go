package fee

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x-xyz/marketengine/domain"
)

func TestComputeExample(t *testing.T) {
	req := require.New(t)
	s, err := Compute(big.NewInt(1000), 250, 100)
	req.NoError(err)
	req.Equal("965", s.Seller.String())
	req.Equal("10", s.Marketplace.String())
	req.Equal("25", s.Royalty.String())
}

func TestComputeRoundsFeesDown(t *testing.T) {
	req := require.New(t)
	s, err := Compute(big.NewInt(199), 250, 100)
	req.NoError(err)
	req.Equal("1", s.Marketplace.String())
	req.Equal("4", s.Royalty.String())
	req.Equal("194", s.Seller.String())
}

func TestComputeSumsToPrice(t *testing.T) {
	req := require.New(t)
	r := rand.New(rand.NewSource(7))
	rates := Rates{TradeFeeBps: 0, MaxFeeBps: 1000}
	for i := 0; i < 2000; i++ {
		rates.TradeFeeBps = uint32(r.Intn(int(rates.MaxFeeBps) + 1))
		royalty := uint32(r.Intn(int(rates.MaxRoyaltyBps()) + 1))
		req.NoError(rates.ValidateRoyalty(royalty))

		price := new(big.Int).Rand(r, new(big.Int).Lsh(big.NewInt(1), 128))
		price.Add(price, big.NewInt(1))
		s, err := Compute(price, royalty, rates.TradeFeeBps)
		req.NoError(err)
		req.Zero(s.Total().Cmp(price))
		req.True(s.Seller.Sign() >= 0)
	}
}

func TestComputeRejects(t *testing.T) {
	req := require.New(t)
	_, err := Compute(big.NewInt(0), 0, 0)
	req.ErrorIs(err, domain.ErrInvalidPrice)
	_, err = Compute(nil, 0, 0)
	req.ErrorIs(err, domain.ErrInvalidPrice)
	_, err = Compute(big.NewInt(1), 9000, 1001)
	req.ErrorIs(err, domain.ErrInvalidFeeRate)
}

func TestRates(t *testing.T) {
	req := require.New(t)
	r := Rates{TradeFeeBps: 100, MaxFeeBps: 1000}
	req.NoError(r.Validate())
	req.Equal(uint32(900), r.MaxRoyaltyBps())
	req.NoError(r.ValidateRoyalty(900))
	req.ErrorIs(r.ValidateRoyalty(901), domain.ErrInvalidFeeRate)

	req.ErrorIs(Rates{TradeFeeBps: 10, MaxFeeBps: 5}.Validate(), domain.ErrInvalidFeeRate)
	req.ErrorIs(Rates{MaxFeeBps: 10001}.Validate(), domain.ErrInvalidFeeRate)
	req.Equal(uint32(0), Rates{TradeFeeBps: 10, MaxFeeBps: 5}.MaxRoyaltyBps())
}
