// Package journal records how to take back the effects of a multi step
// operation so it either completes or leaves nothing behind.
package journal

import (
	"strings"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"golang.org/x/xerrors"
)

type step struct {
	name       string
	undo       func()
	compensate func(ctx.Ctx) error
}

// Tx is a single operation's journal. A nil *Tx is valid and records
// nothing, which repositories use for seeding outside of an operation.
type Tx struct {
	steps   []step
	commits []func()
	closed  bool
}

func New() *Tx {
	return &Tx{}
}

// Undo registers an in-memory revert. Reverts run newest first.
func (tx *Tx) Undo(fn func()) {
	if tx == nil || tx.closed {
		return
	}
	tx.steps = append(tx.steps, step{undo: fn})
}

// Compensate registers the reversal of an external effect that already
// happened, e.g. refunding a pulled payment.
func (tx *Tx) Compensate(name string, fn func(ctx.Ctx) error) {
	if tx == nil || tx.closed {
		return
	}
	tx.steps = append(tx.steps, step{name: name, compensate: fn})
}

// OnCommit defers fn until the operation commits. Dropped on rollback.
func (tx *Tx) OnCommit(fn func()) {
	if tx == nil || tx.closed {
		return
	}
	tx.commits = append(tx.commits, fn)
}

// Len is the number of recorded steps
func (tx *Tx) Len() int {
	if tx == nil {
		return 0
	}
	return len(tx.steps)
}

// Commit runs the commit hooks in registration order and closes tx.
func (tx *Tx) Commit() {
	if tx == nil || tx.closed {
		return
	}
	tx.closed = true
	commits := tx.commits
	tx.steps, tx.commits = nil, nil
	for _, fn := range commits {
		fn()
	}
}

// Rollback takes back every step newest first and closes tx. Every step
// is attempted; failed compensations are reported together.
func (tx *Tx) Rollback(c ctx.Ctx) error {
	if tx == nil || tx.closed {
		return nil
	}
	tx.closed = true
	var failed []string
	for i := len(tx.steps) - 1; i >= 0; i-- {
		s := tx.steps[i]
		if s.undo != nil {
			s.undo()
			continue
		}
		if err := compensate(c, s); err != nil {
			c.WithFields(log.Fields{
				"step": s.name,
				"err":  err,
			}).Error("compensation failed")
			failed = append(failed, s.name+": "+err.Error())
		}
	}
	tx.steps, tx.commits = nil, nil
	if len(failed) > 0 {
		return xerrors.Errorf("%s: %w", strings.Join(failed, "; "), ErrCompensation)
	}
	return nil
}

func compensate(c ctx.Ctx, s step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = xerrors.Errorf("panic: %v", r)
		}
	}()
	return s.compensate(c)
}

// ErrCompensation means an external effect could not be reversed
var ErrCompensation = xerrors.New("compensation failed")
