package config

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	loadErrors *prometheus.CounterVec
	loads      *prometheus.CounterVec
	writebacks *prometheus.CounterVec
	lastLoad   *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		loadErrors: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flexlogin_config_load_errors_total",
			Help: "Failed configuration stages by file and stage (create, load, save).",
		}, []string{"file", "stage"})),
		loads: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flexlogin_config_loads_total",
			Help: "Configuration files successfully bound to their settings record.",
		}, []string{"file"})),
		writebacks: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flexlogin_config_writebacks_total",
			Help: "Configuration files rewritten with defaults or migrated values.",
		}, []string{"file"})),
		lastLoad: register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "flexlogin_config_last_load_timestamp_seconds",
			Help: "Unix time of the last successful bind per file.",
		}, []string{"file"})),
	}
}

// register adds c to reg, or returns the collector a previous loader already
// registered under the same descriptor. Any other registration error is a
// programming error and panics like MustRegister.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}
