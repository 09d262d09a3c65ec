package repository

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	hcdomain "github.com/x-xyz/marketengine/domain/healthcheck"
)

const pingTimeout = 2 * time.Second

type mongoPinger struct {
	client *mongoclient.Client
}

func NewMongo(client *mongoclient.Client) hcdomain.Pinger {
	return &mongoPinger{client: client}
}

func (p *mongoPinger) Name() string {
	return "mongo"
}

func (p *mongoPinger) Ping(context ctx.Ctx) error {
	c, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := p.client.Ping(c, readpref.Primary()); err != nil {
		context.WithField("err", err).Error("ping mongo error")
		return err
	}
	return nil
}

type redisPinger struct {
	pool *redis.Pool
}

func NewRedis(pool *redis.Pool) hcdomain.Pinger {
	return &redisPinger{pool: pool}
}

func (p *redisPinger) Name() string {
	return "redis"
}

func (p *redisPinger) Ping(context ctx.Ctx) error {
	conn := p.pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		context.WithField("err", err).Error("ping redis error")
		return err
	}
	return nil
}
