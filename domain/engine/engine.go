// Package engine describes the serialized executor every trading
// operation runs through.
package engine

import (
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/event"
)

// Op is the body of one operation. Preconditions are verified first, then
// state is mutated through the journal, then custody is called.
type Op func(c ctx.Ctx, tx *journal.Tx) error

type execOptions struct {
	allowWhilePaused bool
}

type ExecOption func(*execOptions)

// AllowWhilePaused lets exit paths (cancel, claim, withdraw) run while the
// engine is paused.
func AllowWhilePaused() ExecOption {
	return func(o *execOptions) {
		o.allowWhilePaused = true
	}
}

func GetExecOptions(opts ...ExecOption) execOptions {
	res := execOptions{}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}

func (o execOptions) AllowWhilePaused() bool {
	return o.allowWhilePaused
}

type Executor interface {
	// Exec runs op exclusively and atomically. A call made from inside a
	// running operation fails with domain.ErrReentrant.
	Exec(c ctx.Ctx, name string, op Op, opts ...ExecOption) error
	// View runs fn exclusively without a journal.
	View(c ctx.Ctx, fn func() error) error
	// Emit queues e for publication once tx commits.
	Emit(tx *journal.Tx, e event.Event)
	// Now is the logical time of the running operation.
	Now() int64
	// Account is the engine's own custody account.
	Account() domain.Address
}
