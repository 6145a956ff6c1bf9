package settings

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nexus-dash/nexus/internal/dashboard"
)

const (
	opLoad    = "load"
	opSave    = "save"
	opReset   = "reset"
	opRestore = "restore"

	resultOK       = "ok"
	resultRejected = "rejected"
	resultError    = "error"
)

var operations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "nexus_settings_operations_total",
		Help: "Number of settings operations, differentiated by operation and result.",
	},
	[]string{"operation", "result"},
)

func observe(op string, err error) {
	result := resultOK

	switch {
	case err == nil:
	case errors.Is(err, dashboard.ErrNotObject):
		result = resultRejected
	default:
		result = resultError
	}

	operations.WithLabelValues(op, result).Inc()
}
