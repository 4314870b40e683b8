package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for conversion tracking.
type Metrics struct {
	ConversionsRecordedTotal  prometheus.CounterVec
	ConversionAmountTotal     prometheus.CounterVec
	ConversionCommissionTotal prometheus.CounterVec
	ConversionsDeletedTotal   prometheus.Counter

	SyncTotal    prometheus.CounterVec
	SyncDuration prometheus.Histogram

	ImportRowsTotal prometheus.CounterVec

	HTTPRequestDuration prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		ConversionsRecordedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_recorded_total",
				Help: "Conversions recorded, by client and referral type",
			},
			[]string{"client_id", "type"},
		),

		ConversionAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversion_amount_total",
				Help: "Total wagered amount across recorded conversions",
			},
			[]string{"client_id"},
		),

		ConversionCommissionTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversion_commission_total",
				Help: "Total commission owed across recorded conversions",
			},
			[]string{"client_id"},
		),

		ConversionsDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "conversions_deleted_total",
				Help: "Conversions deleted via the API",
			},
		),

		SyncTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheet_sync_total",
				Help: "Spreadsheet sync attempts by outcome",
			},
			[]string{"outcome"},
		),

		SyncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sheet_sync_duration_seconds",
				Help:    "Time to export one conversion to the spreadsheet",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),

		ImportRowsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_rows_total",
				Help: "Imported spreadsheet rows by outcome",
			},
			[]string{"outcome"},
		),

		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route and status",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"route", "status"},
		),
	}
}

func (m *Metrics) RecordConversion(clientID, referralType string, amount, commission float64) {
	m.ConversionsRecordedTotal.WithLabelValues(clientID, referralType).Inc()
	m.ConversionAmountTotal.WithLabelValues(clientID).Add(amount)
	m.ConversionCommissionTotal.WithLabelValues(clientID).Add(commission)
}

func (m *Metrics) RecordDeletion() {
	m.ConversionsDeletedTotal.Inc()
}

func (m *Metrics) RecordSync(outcome string, durationSeconds float64) {
	m.SyncTotal.WithLabelValues(outcome).Inc()
	m.SyncDuration.Observe(durationSeconds)
}

func (m *Metrics) RecordImportRow(outcome string) {
	m.ImportRowsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordHTTPRequest(route, status string, durationSeconds float64) {
	m.HTTPRequestDuration.WithLabelValues(route, status).Observe(durationSeconds)
}
