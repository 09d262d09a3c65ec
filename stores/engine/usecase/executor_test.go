package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/marketengine/base/clock"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
	accessRepository "github.com/x-xyz/marketengine/stores/access/repository"
	"golang.org/x/xerrors"
)

type batchPublisher struct {
	mu      sync.Mutex
	batches [][]event.Event
}

func (p *batchPublisher) Publish(_ ctx.Ctx, events []event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, events)
}

type executorTestSuite struct {
	suite.Suite
	clock      *clock.Manual
	accessRepo access.Repo
	publisher  *batchPublisher
	x          engine.Executor
}

func TestExecutor(t *testing.T) {
	suite.Run(t, new(executorTestSuite))
}

func (s *executorTestSuite) SetupTest() {
	s.clock = clock.NewManual(100)
	s.accessRepo = accessRepository.NewAccess(access.Config{Owner: "0x1"})
	s.publisher = &batchPublisher{}
	s.x = NewExecutor(&ExecutorCfg{
		AccessRepo: s.accessRepo,
		Clock:      s.clock,
		Publisher:  s.publisher,
		Metrics:    metrics.New("engine", metrics.WithLogClient()),
		Account:    "0xENGINE",
	})
}

func (s *executorTestSuite) TestCommitPublishesStampedEvents() {
	err := s.x.Exec(ctx.Background(), "op", func(c ctx.Ctx, tx *journal.Tx) error {
		s.Equal(int64(100), s.x.Now())
		s.Equal("op", ctx.Operation(c))
		s.x.Emit(tx, event.Event{Kind: event.KindItemListed})
		s.x.Emit(tx, event.Event{Kind: event.KindItemSold})
		return nil
	})
	s.Require().NoError(err)
	s.Require().Len(s.publisher.batches, 1)
	batch := s.publisher.batches[0]
	s.Equal(uint64(1), batch[0].Seq)
	s.Equal(uint64(2), batch[1].Seq)
	s.Equal(int64(100), batch[1].At)
	s.NotEqual(batch[0].Id, batch[1].Id)
	s.Equal(domain.Address("0xengine"), s.x.Account())
}

func (s *executorTestSuite) TestFailureRollsBack() {
	state := 0
	opErr := xerrors.New("precondition")
	err := s.x.Exec(ctx.Background(), "op", func(c ctx.Ctx, tx *journal.Tx) error {
		state = 1
		tx.Undo(func() { state = 0 })
		s.x.Emit(tx, event.Event{Kind: event.KindItemListed})
		return opErr
	})
	s.ErrorIs(err, opErr)
	s.Equal(0, state)
	s.Empty(s.publisher.batches)
}

func (s *executorTestSuite) TestFailedCompensationIsReported() {
	opErr := xerrors.New("boom")
	err := s.x.Exec(ctx.Background(), "op", func(c ctx.Ctx, tx *journal.Tx) error {
		tx.Compensate("refund", func(ctx.Ctx) error { return xerrors.New("gone") })
		return opErr
	})
	s.ErrorIs(err, opErr)
	s.Contains(err.Error(), "refund")
}

func (s *executorTestSuite) TestReentrancy() {
	var inner, view error
	err := s.x.Exec(ctx.Background(), "outer", func(c ctx.Ctx, tx *journal.Tx) error {
		inner = s.x.Exec(c, "inner", func(ctx.Ctx, *journal.Tx) error { return nil })
		view = s.x.View(c, func() error { return nil })
		return nil
	})
	s.Require().NoError(err)
	s.ErrorIs(inner, domain.ErrReentrant)
	s.ErrorIs(view, domain.ErrReentrant)

	// the lock is released after a failed operation too
	_ = s.x.Exec(ctx.Background(), "fail", func(ctx.Ctx, *journal.Tx) error { return domain.ErrBadParamInput })
	s.NoError(s.x.View(ctx.Background(), func() error { return nil }))
}

func (s *executorTestSuite) TestPause() {
	cfg := s.accessRepo.Get()
	cfg.Paused = true
	s.accessRepo.Set(nil, cfg)

	ran := false
	op := func(ctx.Ctx, *journal.Tx) error {
		ran = true
		return nil
	}
	s.ErrorIs(s.x.Exec(ctx.Background(), "trade", op), domain.ErrPaused)
	s.False(ran)
	s.NoError(s.x.Exec(ctx.Background(), "exit", op, engine.AllowWhilePaused()))
	s.True(ran)
}

func (s *executorTestSuite) TestClockIsReadPerOperation() {
	s.clock.Advance(50)
	s.Require().NoError(s.x.View(ctx.Background(), func() error {
		s.Equal(int64(150), s.x.Now())
		return nil
	}))
}

func (s *executorTestSuite) TestPanicRollsBack() {
	state := 0
	refunded := false
	err := s.x.Exec(ctx.Background(), "op", func(c ctx.Ctx, tx *journal.Tx) error {
		state = 1
		tx.Undo(func() { state = 0 })
		tx.Compensate("refund", func(ctx.Ctx) error {
			refunded = true
			return nil
		})
		s.x.Emit(tx, event.Event{Kind: event.KindItemSold})
		panic("receiver exploded")
	})
	s.ErrorIs(err, domain.ErrCustodyFailed)
	s.Contains(err.Error(), "receiver exploded")
	s.Equal(0, state)
	s.True(refunded)
	s.Empty(s.publisher.batches)

	s.NoError(s.x.Exec(ctx.Background(), "next", func(ctx.Ctx, *journal.Tx) error { return nil }))
}

func (s *executorTestSuite) TestFreshContextReentryTimesOut() {
	x := NewExecutor(&ExecutorCfg{
		AccessRepo:  s.accessRepo,
		Clock:       s.clock,
		Metrics:     metrics.New("engine", metrics.WithLogClient()),
		SlotTimeout: 20 * time.Millisecond,
	})
	var inner error
	err := x.Exec(ctx.Background(), "outer", func(ctx.Ctx, *journal.Tx) error {
		inner = x.Exec(ctx.Background(), "inner", func(ctx.Ctx, *journal.Tx) error { return nil })
		return nil
	})
	s.Require().NoError(err)
	s.ErrorIs(inner, domain.ErrEngineBusy)
}

func (s *executorTestSuite) TestCancelledContextStopsWaiting() {
	c, cancel := context.WithCancel(context.Background())
	waiter := ctx.Ctx{Context: c, Logger: ctx.Background().Logger}
	var waitErr error
	err := s.x.Exec(ctx.Background(), "outer", func(ctx.Ctx, *journal.Tx) error {
		cancel()
		waitErr = s.x.View(waiter, func() error { return nil })
		return nil
	})
	s.Require().NoError(err)
	s.ErrorIs(waitErr, context.Canceled)
}

func (s *executorTestSuite) TestConcurrentCommitsPublishInOrder() {
	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.x.Exec(ctx.Background(), "op", func(c ctx.Ctx, tx *journal.Tx) error {
				s.x.Emit(tx, event.Event{Kind: event.KindItemListed})
				return nil
			}))
		}()
	}
	wg.Wait()

	s.Require().Len(s.publisher.batches, n)
	for i, batch := range s.publisher.batches {
		s.Equal(uint64(i+1), batch[0].Seq)
	}
}
