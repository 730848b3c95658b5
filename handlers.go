package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kwv/beaconmesh/mesh"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(stateTracker *mesh.StateTracker, config *mesh.Config) http.Handler {
	if config == nil {
		config = mesh.DefaultConfig()
	}
	plane := config.GetPlane()

	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			HasResult bool      `json:"hasResult"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			HasResult: stateTracker.HasResult(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("[HTTP] Error encoding health status: %v", err)
		}
	})

	mux.HandleFunc("/report.json", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := requireSnapshot(w, stateTracker)
		if !ok {
			return
		}
		writeJSON(w, "application/json", snap.Report)
	})

	mux.HandleFunc("/scanners/{id}", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := requireSnapshot(w, stateTracker)
		if !ok {
			return
		}
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			http.Error(w, "Invalid scanner id", http.StatusBadRequest)
			return
		}
		pose, found := snap.Report.GetPose(id)
		if !found {
			http.Error(w, fmt.Sprintf("Scanner %d not in report", id), http.StatusNotFound)
			return
		}
		writeJSON(w, "application/json", pose)
	})

	mux.HandleFunc("/beacons.geojson", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := requireSnapshot(w, stateTracker)
		if !ok {
			return
		}
		writeJSON(w, "application/geo+json", mesh.BuildGeoJSON(snap.Beacons, snap.Scanners, planeParam(r, plane)))
	})

	mux.HandleFunc("/map.svg", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := requireSnapshot(w, stateTracker)
		if !ok {
			return
		}
		renderer := mesh.NewVectorRenderer(snap, planeParam(r, plane), config.Output.GridSpacing)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToSVG(w); err != nil {
			log.Printf("[HTTP] Error rendering map SVG: %v", err)
		}
	})

	mux.HandleFunc("/map.png", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := requireSnapshot(w, stateTracker)
		if !ok {
			return
		}
		renderer := mesh.NewRasterRenderer(snap, planeParam(r, plane))
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.WritePNG(w); err != nil {
			log.Printf("[HTTP] Error encoding map PNG: %v", err)
		}
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// requireSnapshot writes 503 and returns false until an alignment finished
func requireSnapshot(w http.ResponseWriter, st *mesh.StateTracker) (*mesh.Snapshot, bool) {
	snap := st.Snapshot()
	if snap == nil {
		http.Error(w, "No alignment available", http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

// planeParam honours ?plane=xz style overrides, ignoring unknown values
func planeParam(r *http.Request, fallback string) string {
	switch p := r.URL.Query().Get("plane"); p {
	case mesh.PlaneXY, mesh.PlaneXZ, mesh.PlaneYZ:
		return p
	default:
		return fallback
	}
}

func writeJSON(w http.ResponseWriter, contentType string, v interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Error encoding %s: %v", contentType, err)
	}
}
