package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ListingsCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auction_listings_collected_total",
			Help: "Listings decoded from the results page",
		},
	)

	DetailFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_detail_fetches_total",
			Help: "Detail page fetches by result (ok, error)",
		},
		[]string{"result"},
	)

	SnapshotLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_snapshot_lookups_total",
			Help: "Snapshot loads by checkpoint name and outcome (hit, miss, error)",
		},
		[]string{"name", "outcome"},
	)

	ListingsExported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auction_listings_exported_total",
			Help: "Rows written to the export file",
		},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{ListingsCollected, DetailFetches, SnapshotLookups, ListingsExported} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Start registers the collectors with the default registry and serves
// /metrics on addr in the background.
func Start(addr string) error {
	if err := Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(addr, mux)
	return nil
}
