package repository

import (
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/service/query"
	"go.mongodb.org/mongo-driver/bson"
)

const defaultLimit = 100

type eventRepo struct {
	q query.Mongo
}

// NewEvent archives events in mongo. Redelivered batches are skipped by
// the unique seq index.
func NewEvent(q query.Mongo) event.Repo {
	return &eventRepo{q: q}
}

// EnsureIndexes creates the indexes FindAll relies on
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	if err := q.EnsureIndex(c, domain.TableEngineEvents, true, "seq"); err != nil {
		return err
	}
	return q.EnsureIndex(c, domain.TableEngineEvents, false, "collection", "seq")
}

func makeFindQuery(optFns ...event.FindAllOptions) (bson.M, int, error) {
	opts, err := event.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, 0, err
	}

	qry := bson.M{}
	if opts.Kind != nil {
		qry["kind"] = *opts.Kind
	}
	if opts.Collection != nil {
		qry["collection"] = *opts.Collection
	}
	if opts.AfterSeq != nil {
		qry["seq"] = bson.M{"$gt": *opts.AfterSeq}
	}

	limit := defaultLimit
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}
	return qry, limit, nil
}

func (r *eventRepo) InsertMany(c ctx.Ctx, events []event.Event) error {
	docs := make([]interface{}, 0, len(events))
	for _, e := range events {
		docs = append(docs, e)
	}
	if err := r.q.InsertMany(c, domain.TableEngineEvents, docs); err != nil {
		if err == query.ErrDuplicateKey {
			c.WithField("count", len(events)).Warn("events already archived")
			return nil
		}
		return err
	}
	return nil
}

func (r *eventRepo) FindAll(c ctx.Ctx, opts ...event.FindAllOptions) ([]event.Event, error) {
	qry, limit, err := makeFindQuery(opts...)
	if err != nil {
		c.WithField("err", err).Error("makeFindQuery failed")
		return nil, err
	}

	res := []event.Event{}
	if err := r.q.Search(c, domain.TableEngineEvents, 0, limit, "seq", qry, &res); err != nil {
		c.WithFields(log.Fields{"query": qry, "err": err}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
