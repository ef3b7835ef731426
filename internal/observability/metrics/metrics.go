package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DefectMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_mutations_total",
			Help: "Total number of defect mutations by operation and outcome.",
		},
		[]string{"op", "result"},
	)

	MutationRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_mutation_retries_total",
			Help: "Total number of retried defect transactions.",
		},
		[]string{"op", "reason"},
	)

	AuditRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_total",
			Help: "Total number of audit records written or dropped.",
		},
		[]string{"result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)
)

// MustRegister registers every collector on the default registry with a constant service label.
func MustRegister(serviceName string) {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, prometheus.DefaultRegisterer)
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		DefectMutationsTotal,
		MutationRetriesTotal,
		AuditRecordsTotal,
		AuthLoginsTotal,
	)
}
