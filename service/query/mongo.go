package query

/*
	Package `query` wraps https://github.com/mongodb/mongo-go-driver with
	the few calls the engine archive needs. Errors from the driver are
	logged here and returned as is, except duplicate keys.
*/

import (
	"fmt"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

var (
	// ErrDuplicateKey is an error when violating unique index
	ErrDuplicateKey = fmt.Errorf("duplicate key")
)

// Mongo provides interface for querying mongo db
type Mongo interface {
	// InsertMany inserts every doc it can. ErrDuplicateKey is returned when
	// any doc violates a unique index.
	InsertMany(c ctx.Ctx, table domain.Table, docs []interface{}) error

	// Search finds documents matching query. sort is a field name, prefixed
	// with `-` for descending order. limit 0 means no limit.
	Search(c ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error

	// EnsureIndex creates an ascending index over keys
	EnsureIndex(c ctx.Ctx, table domain.Table, unique bool, keys ...string) error
}
