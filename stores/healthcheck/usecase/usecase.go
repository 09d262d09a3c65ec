package usecase

import (
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain/access"
	hcdomain "github.com/x-xyz/marketengine/domain/healthcheck"
)

type impl struct {
	access  access.UseCase
	pingers []hcdomain.Pinger
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(access access.UseCase, pingers ...hcdomain.Pinger) hcdomain.HealthCheckUsecase {
	return &impl{
		access:  access,
		pingers: pingers,
	}
}

// Check is healthy when every dependency answers. A paused engine is
// still healthy.
func (im *impl) Check(context ctx.Ctx) (hcdomain.Status, error) {
	cfg, err := im.access.Config(context)
	if err != nil {
		return hcdomain.Status{}, err
	}
	res := hcdomain.Status{
		Healthy: true,
		Paused:  cfg.Paused,
		Deps:    map[string]string{},
	}
	for _, p := range im.pingers {
		if err := p.Ping(context); err != nil {
			res.Healthy = false
			res.Deps[p.Name()] = err.Error()
			continue
		}
		res.Deps[p.Name()] = "ok"
	}
	return res, nil
}
