package usecase

import (
	"runtime/debug"
	"time"

	"github.com/x-xyz/marketengine/base/clock"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/engine"
	"github.com/x-xyz/marketengine/domain/event"
	"golang.org/x/xerrors"
)

const defaultSlotTimeout = 10 * time.Second

type ExecutorCfg struct {
	AccessRepo access.Repo
	Clock      clock.Clock
	// Publisher may be nil, committed events are then dropped
	Publisher event.Publisher
	Metrics   metrics.Service
	// Account is the engine's custody account
	Account domain.Address
	// SlotTimeout bounds the wait for the running operation to finish
	SlotTimeout time.Duration
}

type executor struct {
	// slot admits one operation at a time
	slot        chan struct{}
	slotTimeout time.Duration

	accessRepo access.Repo
	clock      clock.Clock
	publisher  event.Publisher
	metrics    metrics.Service
	account    domain.Address

	now   int64
	seq   uint64
	batch []event.Event
}

func NewExecutor(cfg *ExecutorCfg) engine.Executor {
	m := cfg.Metrics
	if m == nil {
		m = metrics.New("engine")
	}
	timeout := cfg.SlotTimeout
	if timeout <= 0 {
		timeout = defaultSlotTimeout
	}
	return &executor{
		slot:        make(chan struct{}, 1),
		slotTimeout: timeout,
		accessRepo:  cfg.AccessRepo,
		clock:       cfg.Clock,
		publisher:   cfg.Publisher,
		metrics:     m,
		account:     cfg.Account.ToLower(),
	}
}

func (x *executor) Exec(c ctx.Ctx, name string, op engine.Op, opts ...engine.ExecOption) error {
	if running := ctx.Operation(c); running != "" {
		c.WithFields(log.Fields{
			"op":      name,
			"running": running,
		}).Warn("reentrant call rejected")
		x.metrics.BumpSum("op."+name+".err", 1, "reason", "reentrant")
		return domain.ErrReentrant
	}

	o := engine.GetExecOptions(opts...)
	if err := x.acquire(c, name); err != nil {
		return err
	}
	defer x.release()
	defer x.metrics.BumpTime("op." + name + ".time").End()

	if !o.AllowWhilePaused() && x.accessRepo.Get().Paused {
		x.metrics.BumpSum("op."+name+".err", 1, "reason", "paused")
		return domain.ErrPaused
	}

	x.now = x.clock.Now()
	x.batch = nil
	opCtx := ctx.WithOperation(c, name)
	tx := journal.New()

	if err := run(opCtx, tx, op); err != nil {
		x.metrics.BumpSum("op."+name+".err", 1)
		if rbErr := tx.Rollback(opCtx); rbErr != nil {
			opCtx.WithFields(log.Fields{
				"err":      err,
				"rollback": rbErr,
			}).Error("rollback incomplete")
			return xerrors.Errorf("%v: %w", rbErr, err)
		}
		if xerrors.Is(err, domain.ErrCustodyFailed) {
			opCtx.WithField("err", err).Error("operation rolled back")
		} else {
			opCtx.WithField("err", err).Info("operation rejected")
		}
		return err
	}
	tx.Commit()

	events := x.batch
	x.batch = nil
	for i := range events {
		x.seq++
		events[i].Stamp(x.seq, x.now)
	}
	// published before the slot is released so sinks see commit order
	if len(events) > 0 && x.publisher != nil {
		x.publisher.Publish(c, events)
	}
	return nil
}

// run turns a panicking collaborator into a failed step so the journal
// still rolls back.
func run(c ctx.Ctx, tx *journal.Tx, op engine.Op) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.WithFields(log.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("operation panicked")
			err = xerrors.Errorf("panic: %v: %w", r, domain.ErrCustodyFailed)
		}
	}()
	return op(c, tx)
}

// acquire waits for the slot. A callback that reenters with a context
// lacking the operation marker times out here instead of hanging.
func (x *executor) acquire(c ctx.Ctx, name string) error {
	timer := time.NewTimer(x.slotTimeout)
	defer timer.Stop()
	select {
	case x.slot <- struct{}{}:
		return nil
	case <-c.Done():
		return c.Err()
	case <-timer.C:
		c.WithFields(log.Fields{
			"op":      name,
			"timeout": x.slotTimeout,
		}).Warn("execution slot timed out")
		x.metrics.BumpSum("op."+name+".err", 1, "reason", "busy")
		return domain.ErrEngineBusy
	}
}

func (x *executor) release() {
	<-x.slot
}

func (x *executor) View(c ctx.Ctx, fn func() error) error {
	if ctx.Operation(c) != "" {
		return domain.ErrReentrant
	}
	if err := x.acquire(c, "view"); err != nil {
		return err
	}
	defer x.release()
	x.now = x.clock.Now()
	return fn()
}

func (x *executor) Emit(tx *journal.Tx, e event.Event) {
	tx.OnCommit(func() {
		x.batch = append(x.batch, e)
	})
}

func (x *executor) Now() int64 {
	return x.now
}

func (x *executor) Account() domain.Address {
	return x.account
}
