package ctx

import (
	"context"
	"time"

	log "github.com/x-xyz/marketengine/base/log"
)

type Ctx struct {
	context.Context
	log.Logger
}

type ctxKey string

const (
	callerKey ctxKey = "caller"
	opKey     ctxKey = "op"
)

func Background() Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  log.Log(),
	}
}

func Todo() Ctx {
	return Ctx{
		Context: context.TODO(),
		Logger:  log.Log(),
	}
}

func WithValue(parent Ctx, key string, val interface{}) Ctx {
	return Ctx{
		Context: context.WithValue(parent, key, val),
		Logger:  parent.Logger.WithField(key, val),
	}
}

func WithValues(parent Ctx, kvs map[string]interface{}) Ctx {
	c := parent
	for k, v := range kvs {
		c = WithValue(c, k, v)
	}
	return c
}

// WithCaller records the authenticated account issuing the request
func WithCaller(parent Ctx, caller string) Ctx {
	return Ctx{
		Context: context.WithValue(parent, callerKey, caller),
		Logger:  parent.Logger.WithField("caller", caller),
	}
}

// Caller returns the account set by WithCaller, empty if none
func Caller(c Ctx) string {
	if v, ok := c.Value(callerKey).(string); ok {
		return v
	}
	return ""
}

// WithOperation marks c as running inside the named engine operation.
func WithOperation(parent Ctx, op string) Ctx {
	return Ctx{
		Context: context.WithValue(parent, opKey, op),
		Logger:  parent.Logger.WithField("op", op),
	}
}

// Operation returns the engine operation c runs inside, empty if none.
func Operation(c Ctx) string {
	if v, ok := c.Value(opKey).(string); ok {
		return v
	}
	return ""
}

func WithCancel(parent Ctx) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}

func WithTimeout(parent Ctx, timeout time.Duration) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}
