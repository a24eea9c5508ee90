package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "outgoing_messages_unpublished",
			Help: "Messages still awaiting publication",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM outgoing_message WHERE published = FALSE")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "bundles_in_flight",
			Help: "Peeked bundles awaiting dequeue",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM peeked_bundle WHERE dequeued_at IS NULL")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
