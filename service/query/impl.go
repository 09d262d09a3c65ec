package query

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain"
)

const (
	queryMaxTime  = 20 * time.Second
	slowThreshold = 500 * time.Millisecond
)

var (
	timeNow = time.Now
)

type impl struct {
	client  *mongoclient.Client
	metrics metrics.Service
}

// New initializes an impl
func New(client *mongoclient.Client) Mongo {
	return &impl{
		client:  client,
		metrics: metrics.New("mongo"),
	}
}

func (im *impl) InsertMany(c ctx.Ctx, table domain.Table, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	defer im.metrics.BumpTime("time", "func", "insertMany", "table", string(table)).End()
	defer slowLog(c, string(table), "insertMany", nil, nil)()

	opts := options.InsertMany().SetOrdered(false)
	if _, err := im.client.Collection(string(table)).InsertMany(c, docs, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		c.WithFields(log.Fields{"table": table, "count": len(docs), "err": err}).Error("InsertMany failed")
		return err
	}
	return nil
}

func (im *impl) Search(c ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error {
	defer im.metrics.BumpTime("time", "func", "search", "table", string(table)).End()
	defer slowLog(c, string(table), "search", query, sort)()

	findOpts := options.Find().SetMaxTime(queryMaxTime)
	findOpts.SetLimit(int64(limit)).SetSkip(int64(offset))
	if sortOpt := getSortOption(sort); len(sortOpt) > 0 {
		findOpts.SetSort(sortOpt)
	}

	cursor, err := im.client.Collection(string(table)).Find(c, query, findOpts)
	if err != nil {
		c.WithFields(log.Fields{"table": table, "query": query, "err": err}).Error("Search: Find failed")
		return err
	}
	defer cursor.Close(c)

	if err := cursor.All(c, results); err != nil {
		c.WithFields(log.Fields{"table": table, "err": err}).Error("Search: cursor.All failed")
		return err
	}
	return nil
}

func (im *impl) EnsureIndex(c ctx.Ctx, table domain.Table, unique bool, keys ...string) error {
	idx := bson.D{}
	for _, k := range keys {
		idx = append(idx, bson.E{Key: k, Value: 1})
	}
	model := mongo.IndexModel{Keys: idx, Options: options.Index().SetUnique(unique)}
	if _, err := im.client.Collection(string(table)).Indexes().CreateOne(c, model); err != nil {
		c.WithFields(log.Fields{"table": table, "keys": keys, "err": err}).Error("CreateOne index failed")
		return err
	}
	return nil
}

func getSortOption(sortStrings ...string) bson.D {
	res := bson.D{}
	for _, sort := range sortStrings {
		if sort == "" {
			continue
		}
		if sort[0] == '-' {
			res = append(res, bson.E{Key: sort[1:], Value: -1})
		} else {
			res = append(res, bson.E{Key: sort, Value: 1})
		}
	}
	return res
}

func slowLog(c ctx.Ctx, table, action string, query interface{}, sort interface{}) func() {
	start := timeNow()
	return func() {
		elapsed := time.Since(start)
		if elapsed < slowThreshold {
			return
		}
		c.WithFields(log.Fields{
			"table":      table,
			"action":     action,
			"startTime":  start.Unix(),
			"durationMs": elapsed.Milliseconds(),
			"query":      query,
			"sort":       sort,
		}).Warn("mongo slowlog")
	}
}
