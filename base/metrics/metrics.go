/*
Package metrics wraps datadog-go to record engine metrics
Following are naming convention of metric:
- Operation process time: op.<name>.time
- Rejected operation: op.<name>.err
- Trade value: trade.*
*/
package metrics

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/x-xyz/marketengine/base/env"
	"github.com/x-xyz/marketengine/base/log"
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// Option is functional parameter for metrics option
type Option func(*opt)

type opt struct {
	withPodName bool
	client      statsCli
}

// WithoutPodName drops the pod tag from every metric sent by the Service
func WithoutPodName() Option {
	return func(o *opt) {
		o.withPodName = false
	}
}

// WithLogClient sends metrics to the debug log instead of a datadog agent
func WithLogClient() Option {
	return func(o *opt) {
		o.client = &LogClient{}
	}
}

// New creates a metric client with package name as prefix. Without a
// configured datadog_host the metrics are written to the debug log.
func New(pkgName string, options ...Option) Service {
	o := opt{
		withPodName: true,
	}
	if viper.GetString("datadog_host") == "" {
		o.client = &LogClient{}
	}
	for _, option := range options {
		option(&o)
	}

	ddTags := []string{
		"host:", // remove unused host tag
		"env:" + viper.GetString("env_name"),
		"app:" + viper.GetString("app_name"),
	}
	if o.withPodName {
		ddTags = append(ddTags, "pod:"+env.PodName())
	}

	return &Metrics{
		pkgName: pkgName,
		datadog: DDMetrics{
			ddTags: ddTags,
			client: o.client,
		},
	}
}

// Metrics prefixes every key with the package name before sending it out
type Metrics struct {
	pkgName string
	datadog DDMetrics
}

func (mt *Metrics) recoverBump(key string, tags []string) {
	if err := recover(); err != nil {
		log.Log().WithFields(log.Fields{
			"key":  mt.pkgName + "." + key,
			"tags": strings.Join(tags, "#"),
			"err":  err,
		}).Error("metrics bump panic")
	}
}

// BumpAvg bumps the average for the given key.
func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	mt.datadog.BumpAvg(mt.pkgName+`.`+key, val, 1, tags...)
}

// BumpSum bumps the sum for the given key.
func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	mt.datadog.BumpSum(mt.pkgName+`.`+key, val, 1, tags...)
}

// BumpHistogram bumps the histogram for the given key.
func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	mt.datadog.BumpHistogram(mt.pkgName+`.`+key, val, 1, tags...)
}

// BumpTime starts a timer; call End on the result to record it.
//
//	defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	defer mt.recoverBump(key, tags)
	return mt.datadog.BumpTime(mt.pkgName+`.`+key, 1, tags...)
}
