package mesh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// alignAttemptsTotal counts scanner-pair alignment attempts by outcome
	alignAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beaconmesh_align_attempts_total",
		Help: "Scanner pair alignment attempts by outcome",
	}, []string{"outcome"})

	// alignPasses tracks how many passes a full alignment run needed
	alignPasses = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "beaconmesh_align_passes",
		Help:    "Driver passes needed per alignment run",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	// alignDuration tracks wall time of a full alignment run
	alignDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "beaconmesh_align_duration_seconds",
		Help:    "Alignment run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"result"})

	// scannersResolved reports the resolved scanner count of the last run
	scannersResolved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beaconmesh_scanners_resolved",
		Help: "Scanners resolved by the most recent alignment run",
	})

	// beaconsAssembled reports the distinct beacon count of the last run
	beaconsAssembled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beaconmesh_beacons_assembled",
		Help: "Distinct beacons assembled by the most recent alignment run",
	})
)
