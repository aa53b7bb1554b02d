package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Module provides a dedicated registry and the service collectors
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewRegistry,
			func(reg *prometheus.Registry) *Metrics { return NewMetrics(reg) },
		),
	)
}

// NewRegistry returns a registry preloaded with the go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
