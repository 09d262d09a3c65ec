package usecase

import (
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain/event"
	"golang.org/x/xerrors"
)

type impl struct {
	repo event.Repo
}

func NewEvent(repo event.Repo) event.UseCase {
	return &impl{repo: repo}
}

func (im *impl) FindAll(c ctx.Ctx, opts ...event.FindAllOptions) ([]event.Event, error) {
	res, err := im.repo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("repo.FindAll failed")
		return nil, err
	}
	return res, nil
}

type archive struct {
	repo event.Repo
}

// NewArchiveSink stores every committed batch in repo
func NewArchiveSink(repo event.Repo) event.Sink {
	return &archive{repo: repo}
}

func (a *archive) Name() string {
	return "archive"
}

func (a *archive) Handle(c ctx.Ctx, events []event.Event) error {
	if err := a.repo.InsertMany(c, events); err != nil {
		return xerrors.Errorf("archive events: %w", err)
	}
	return nil
}
