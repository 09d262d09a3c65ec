package usecase

import (
	"math/big"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/custody"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/fee"
	"github.com/x-xyz/marketengine/domain/revenue"
)

type SettlerCfg struct {
	Directory  collection.Directory
	AccessRepo access.Repo
	Ledger     revenue.Ledger
	Payment    custody.PaymentGateway
	Metrics    metrics.Service
}

type settler struct {
	directory collection.Directory
	access    access.Repo
	ledger    revenue.Ledger
	payment   custody.PaymentGateway
	metrics   metrics.Service
}

func NewSettler(cfg *SettlerCfg) engine.Settler {
	m := cfg.Metrics
	if m == nil {
		m = metrics.New("engine")
	}
	return &settler{
		directory: cfg.Directory,
		access:    cfg.AccessRepo,
		ledger:    cfg.Ledger,
		payment:   cfg.Payment,
		metrics:   m,
	}
}

func (s *settler) Quote(sale engine.Sale) (engine.Quote, error) {
	payout, royaltyBps, err := s.directory.RoyaltyInfo(sale.Item.Collection)
	if err != nil {
		return engine.Quote{}, err
	}
	cfg := s.access.Get()
	split, err := fee.Compute(sale.Price, royaltyBps, cfg.Rates.TradeFeeBps)
	if err != nil {
		return engine.Quote{}, err
	}
	return engine.Quote{
		Sale:          sale,
		Split:         split,
		Marketplace:   cfg.Admin,
		RoyaltyPayout: payout,
	}, nil
}

// Settle does not roll back a failed seller payout; the proceeds are
// credited to the seller's ledger entry instead.
func (s *settler) Settle(c ctx.Ctx, tx *journal.Tx, q engine.Quote) {
	s.ledger.Credit(tx, q.Marketplace, q.Split.Marketplace)
	s.ledger.Credit(tx, q.RoyaltyPayout, q.Split.Royalty)

	if q.Split.Seller.Sign() > 0 {
		if err := s.payment.Push(c, q.Seller, q.Split.Seller); err != nil {
			c.WithFields(log.Fields{
				"seller": q.Seller,
				"amount": q.Split.Seller.String(),
				"err":    err,
			}).Warn("seller payout failed, crediting ledger")
			s.ledger.Credit(tx, q.Seller, q.Split.Seller)
		}
	}

	tags := []string{"collection", q.Item.Collection.ToLowerStr()}
	s.metrics.BumpSum("trade.volume", toFloat(q.Price), tags...)
	s.metrics.BumpSum("fee.marketplace", toFloat(q.Split.Marketplace), tags...)
	s.metrics.BumpSum("fee.royalty", toFloat(q.Split.Royalty), tags...)
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
