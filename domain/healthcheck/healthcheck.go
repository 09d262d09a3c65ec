package healthcheck

import (
	"github.com/x-xyz/marketengine/base/ctx"
)

// Status reports the engine state next to its backing services
type Status struct {
	Healthy bool              `json:"healthy"`
	Paused  bool              `json:"paused"`
	Deps    map[string]string `json:"deps"`
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) (Status, error)
}

// Pinger is one backing service probed by Check
type Pinger interface {
	Name() string
	Ping(context ctx.Ctx) error
}
