package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_imports_total",
			Help: "Import previews by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	importRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_rows_total",
			Help: "Data rows seen by import previews",
		},
		[]string{"kind", "status"},
	)

	importConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_conflicts_total",
			Help: "Conflicts detected by import previews",
		},
		[]string{"kind"},
	)

	importDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_import_duration_seconds",
			Help:    "Import preview duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	importsProceededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_imports_proceeded_total",
			Help: "Imports that passed the proceed gate",
		},
		[]string{"kind"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_exports_total",
			Help: "CSV exports by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// recordImport updates the preview metrics for a finished import.
func recordImport(kind ImportKind, res *ImportResult, err error, started time.Time) {
	k := string(kind)
	importDuration.WithLabelValues(k).Observe(time.Since(started).Seconds())

	if err != nil {
		importsTotal.WithLabelValues(k, "failed").Inc()
		return
	}

	outcome := "clean"
	switch {
	case res.HasErrors():
		outcome = "errors"
	case len(res.Conflicts) > 0:
		outcome = "conflicts"
	}
	importsTotal.WithLabelValues(k, outcome).Inc()
	importRowsTotal.WithLabelValues(k, "processed").Add(float64(res.ProcessedRows))
	importRowsTotal.WithLabelValues(k, "skipped").Add(float64(res.SkippedRows))
	importConflictsTotal.WithLabelValues(k).Add(float64(len(res.Conflicts)))
}

func recordExport(kind ImportKind, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	exportsTotal.WithLabelValues(string(kind), outcome).Inc()
}
