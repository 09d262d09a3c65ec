package usecase

import (
	"time"

	"github.com/viney-shih/goroutines"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain/event"
)

const (
	defaultQueueLength     = 1024
	defaultScheduleTimeout = 3 * time.Second
)

type DispatcherCfg struct {
	Sinks []event.Sink

	// QueueLength bounds the pending batches per sink
	QueueLength     int
	ScheduleTimeout time.Duration
	Metrics         metrics.Service
}

type worker struct {
	sink event.Sink
	pool *goroutines.Pool
}

// Dispatcher hands committed batches to every sink. Each sink owns a
// single worker so it sees batches in commit order.
type Dispatcher struct {
	workers []worker
	timeout time.Duration
	metrics metrics.Service
}

func NewDispatcher(cfg DispatcherCfg) *Dispatcher {
	if cfg.QueueLength <= 0 {
		cfg.QueueLength = defaultQueueLength
	}
	if cfg.ScheduleTimeout <= 0 {
		cfg.ScheduleTimeout = defaultScheduleTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New("event")
	}
	d := &Dispatcher{
		timeout: cfg.ScheduleTimeout,
		metrics: cfg.Metrics,
	}
	for _, s := range cfg.Sinks {
		d.workers = append(d.workers, worker{
			sink: s,
			pool: goroutines.NewPool(1, goroutines.WithTaskQueueLength(cfg.QueueLength), goroutines.WithPreAllocWorkers(1)),
		})
	}
	return d
}

func (d *Dispatcher) Publish(c ctx.Ctx, events []event.Event) {
	if len(events) == 0 {
		return
	}
	batch := make([]event.Event, len(events))
	copy(batch, events)

	// sinks outlive the request that committed the batch
	bg := ctx.Ctx{Context: ctx.Background().Context, Logger: c.Logger}

	for _, w := range d.workers {
		w := w
		err := w.pool.ScheduleWithTimeout(d.timeout, func() {
			timer := d.metrics.BumpTime("sink.handle.time", "sink", w.sink.Name())
			defer timer.End()
			if err := w.sink.Handle(bg, batch); err != nil {
				d.metrics.BumpSum("sink.handle.err", 1, "sink", w.sink.Name())
				bg.WithFields(log.Fields{
					"sink": w.sink.Name(),
					"seq":  batch[0].Seq,
					"err":  err,
				}).Warn("sink.Handle failed")
			}
		})
		if err != nil {
			d.metrics.BumpSum("sink.dropped", float64(len(batch)), "sink", w.sink.Name())
			c.WithFields(log.Fields{
				"sink": w.sink.Name(),
				"err":  err,
			}).Error("failed to ScheduleWithTimeout")
		}
	}
}

// Close stops the sink workers
func (d *Dispatcher) Close() {
	for _, w := range d.workers {
		w.pool.Release()
	}
}
