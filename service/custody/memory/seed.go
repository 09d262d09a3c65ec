package memory

import (
	"math/big"

	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/domain"
)

// SeedItem is minted to Owner and approved to the operator
type SeedItem struct {
	Collection domain.Address `mapstructure:"collection"`
	TokenId    domain.TokenId `mapstructure:"tokenId"`
	Owner      domain.Address `mapstructure:"owner"`
}

// SeedBalance is deposited to Account, all of it pullable by the operator
type SeedBalance struct {
	Account domain.Address `mapstructure:"account"`
	Amount  string         `mapstructure:"amount"`
}

// Seed is read from the `custody` config section
type Seed struct {
	Items    []SeedItem    `mapstructure:"items"`
	Balances []SeedBalance `mapstructure:"balances"`
}

// Apply loads s into g. Balances are validated before anything is written.
func (s Seed) Apply(g *Gateway) error {
	amounts := make([]*big.Int, len(s.Balances))
	for i, b := range s.Balances {
		amount, ok := new(big.Int).SetString(b.Amount, 10)
		if !ok || amount.Sign() < 0 {
			return xerrors.Errorf("seed balance of %s: %w", b.Account, domain.ErrInvalidNumberFormat)
		}
		amounts[i] = amount
	}

	for _, item := range s.Items {
		g.Mint(item.Collection, item.TokenId, item.Owner)
		g.Approve(item.Collection, item.TokenId, g.operator)
	}
	for i, b := range s.Balances {
		g.Deposit(b.Account, amounts[i])
		g.mu.Lock()
		balance := domain.CopyAmount(g.balance(b.Account.ToLower()))
		g.mu.Unlock()
		g.ApprovePayment(b.Account, g.operator, balance)
	}
	return nil
}
