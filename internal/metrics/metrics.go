package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all events-api metrics
const namespace = "events"

// Registry is the Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo exposes the running environment and store driver as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application information (always set to 1, details in labels)",
	},
	[]string{"environment", "store"},
)

// EventsCreatedTotal counts events successfully created
var EventsCreatedTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of events created",
	},
)

// SignupsTotal counts signup attempts by outcome
var SignupsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts",
	},
	[]string{"result"}, // result: success|not_found|duplicate|error
)

// Signup outcomes used as SignupsTotal label values
const (
	SignupSuccess   = "success"
	SignupNotFound  = "not_found"
	SignupDuplicate = "duplicate"
	SignupError     = "error"
)

var runtimeRegistered bool

// Init registers runtime collectors and sets application info. Calling it
// more than once only refreshes AppInfo.
func Init(environment, store string) {
	if !runtimeRegistered {
		// Register default Go metrics (memory, goroutines, GC, etc.)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		runtimeRegistered = true
	}

	AppInfo.Reset()
	AppInfo.WithLabelValues(environment, store).Set(1)
}
