package fee

import (
	"math/big"

	"github.com/x-xyz/marketengine/domain"
)

var bpsDenominator = big.NewInt(domain.BpsDenominator)

// Rates are the marketplace wide fee parameters in basis points.
// MaxFeeBps bounds trade fee plus any collection royalty.
type Rates struct {
	TradeFeeBps uint32 `json:"tradeFeeBps" mapstructure:"tradeFeeBps"`
	MaxFeeBps   uint32 `json:"maxFeeBps" mapstructure:"maxFeeBps"`
}

func (r Rates) Validate() error {
	if r.MaxFeeBps > domain.BpsDenominator || r.TradeFeeBps > r.MaxFeeBps {
		return domain.ErrInvalidFeeRate
	}
	return nil
}

// MaxRoyaltyBps is the largest royalty a collection may carry
func (r Rates) MaxRoyaltyBps() uint32 {
	if r.TradeFeeBps > r.MaxFeeBps {
		return 0
	}
	return r.MaxFeeBps - r.TradeFeeBps
}

func (r Rates) ValidateRoyalty(royaltyBps uint32) error {
	if royaltyBps > r.MaxRoyaltyBps() {
		return domain.ErrInvalidFeeRate
	}
	return nil
}

// Split is the distribution of one sale price
type Split struct {
	Seller      *big.Int `json:"seller"`
	Marketplace *big.Int `json:"marketplace"`
	Royalty     *big.Int `json:"royalty"`
}

// Total is Seller + Marketplace + Royalty, always equal to the split price
func (s Split) Total() *big.Int {
	t := new(big.Int).Add(s.Seller, s.Marketplace)
	return t.Add(t, s.Royalty)
}

// Compute splits price into seller proceeds, marketplace fee and royalty.
// Both fees round down, the seller receives the remainder.
func Compute(price *big.Int, royaltyBps, tradeFeeBps uint32) (Split, error) {
	if !domain.IsPositive(price) {
		return Split{}, domain.ErrInvalidPrice
	}
	if uint64(royaltyBps)+uint64(tradeFeeBps) > domain.BpsDenominator {
		return Split{}, domain.ErrInvalidFeeRate
	}
	marketplace := portion(price, tradeFeeBps)
	royalty := portion(price, royaltyBps)
	seller := new(big.Int).Sub(price, marketplace)
	seller.Sub(seller, royalty)
	return Split{
		Seller:      seller,
		Marketplace: marketplace,
		Royalty:     royalty,
	}, nil
}

func portion(price *big.Int, bps uint32) *big.Int {
	v := new(big.Int).Mul(price, new(big.Int).SetUint64(uint64(bps)))
	return v.Quo(v, bpsDenominator)
}
