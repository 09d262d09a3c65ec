package eventbus

import (
	"encoding/json"

	"github.com/gomodule/redigo/redis"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain/event"
)

// DefaultChannel is where observers SUBSCRIBE for engine events
const DefaultChannel = "marketengine.events"

type redisBus struct {
	pool    *redis.Pool
	channel string
	met     metrics.Service
}

// NewRedis publishes every event as one JSON message on channel
func NewRedis(pool *redis.Pool, channel string, met metrics.Service) event.Sink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &redisBus{
		pool:    pool,
		channel: channel,
		met:     met,
	}
}

func (r *redisBus) Name() string {
	return "redis"
}

func (r *redisBus) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "channel", r.channel).End()
	conn := r.pool.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "channel", r.channel)
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Handle pipelines one PUBLISH per event and reports the first failure
func (r *redisBus) Handle(c ctx.Ctx, events []event.Event) error {
	conn, err := r.getConn()
	if err != nil {
		return xerrors.Errorf("redis conn: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			r.met.BumpSum("conn.Close.err", 1, "channel", r.channel)
		}
	}()

	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return xerrors.Errorf("marshal event %d: %w", e.Seq, err)
		}
		if err := conn.Send("PUBLISH", r.channel, payload); err != nil {
			return xerrors.Errorf("send: %w", err)
		}
	}
	if err := conn.Flush(); err != nil {
		return xerrors.Errorf("flush: %w", err)
	}

	var first error
	for range events {
		if _, err := conn.Receive(); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return xerrors.Errorf("publish: %w", first)
	}
	r.met.BumpSum("published", float64(len(events)), "channel", r.channel)
	return nil
}
