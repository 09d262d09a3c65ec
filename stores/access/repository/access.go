package repository

import (
	"github.com/x-xyz/marketengine/base/journal"
	"github.com/x-xyz/marketengine/domain/access"
)

type accessRepo struct {
	cfg access.Config
}

func NewAccess(initial access.Config) access.Repo {
	initial.Owner = initial.Owner.ToLower()
	initial.Admin = initial.Admin.ToLower()
	return &accessRepo{cfg: initial}
}

func (r *accessRepo) Get() access.Config {
	return r.cfg
}

func (r *accessRepo) Set(tx *journal.Tx, cfg access.Config) {
	prev := r.cfg
	r.cfg = cfg
	tx.Undo(func() {
		r.cfg = prev
	})
}
