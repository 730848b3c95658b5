package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kwv/beaconmesh/mesh"
)

const (
	defaultConfigPath = "config.yaml"

	// DefaultGeoJSONPath is used when neither the config nor the CLI names one
	DefaultGeoJSONPath = "beacons.geojson"
)

// App encapsulates the application state and dependencies
type App struct {
	Config       *mesh.Config
	StateTracker *mesh.StateTracker
	Publisher    *mesh.Publisher
	Out          io.Writer

	// CLI Flags (effectively dependencies)
	ConfigFile   string
	InputFile    string
	ReportFile   string
	OutputFile   string
	GeoJSONFile  string
	RenderFormat string
	VectorFormat string
	Plane        string
	GridSpacing  float64
	Workers      int
	MinOverlap   int
	HttpPort     int
	MqttMode     bool
	HttpMode     bool
	FromReport   bool
	SaveConfig   string
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		StateTracker: mesh.NewStateTracker(),
		Out:          os.Stdout,
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.InputFile = opts.InputFile
	a.ReportFile = opts.ReportFile
	a.OutputFile = opts.OutputFile
	a.GeoJSONFile = opts.GeoJSONFile
	a.RenderFormat = opts.RenderFormat
	a.VectorFormat = opts.VectorFormat
	a.Plane = opts.Plane
	a.GridSpacing = opts.GridSpacing
	a.Workers = opts.Workers
	a.MinOverlap = opts.MinOverlap
	a.HttpPort = opts.HttpPort
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
	a.FromReport = opts.FromReport
	a.SaveConfig = opts.SaveConfigFile
}

// loadConfig reads the config file and layers CLI overrides on top. A
// missing file is only tolerated at the default path.
func (a *App) loadConfig() (*mesh.Config, error) {
	config := mesh.DefaultConfig()
	if a.ConfigFile != "" {
		_, statErr := os.Stat(a.ConfigFile)
		if statErr == nil || a.ConfigFile != defaultConfigPath {
			loaded, err := mesh.LoadConfig(a.ConfigFile)
			if err != nil {
				return nil, err
			}
			config = loaded
			log.Printf("Loaded config from %s", a.ConfigFile)
		}
	}

	if a.InputFile != "" {
		config.Input = a.InputFile
	}
	if a.ReportFile != "" {
		config.Output.Report = a.ReportFile
	}
	if a.GeoJSONFile != "" {
		config.Output.GeoJSON = a.GeoJSONFile
	}
	if a.Plane != "" {
		config.Output.Plane = a.Plane
	}
	if a.GridSpacing > 0 {
		config.Output.GridSpacing = a.GridSpacing
	}
	if a.Workers > 0 {
		config.Alignment.Workers = a.Workers
	}
	if a.MinOverlap > 0 {
		config.Alignment.MinCorrespondences = a.MinOverlap
	}
	if a.HttpPort > 0 {
		config.HTTP.Port = a.HttpPort
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if a.FromReport {
		if config.Output.Report == "" {
			return nil, fmt.Errorf("--from-report needs a report path: set --report or output.report in %s", a.ConfigFile)
		}
	} else if config.Input == "" {
		return nil, fmt.Errorf("no scanner input: set --input or input in %s", a.ConfigFile)
	}

	if a.SaveConfig != "" {
		if err := mesh.SaveConfig(a.SaveConfig, config); err != nil {
			return nil, err
		}
		log.Printf("Saved effective config to %s", a.SaveConfig)
	}

	a.Config = config
	return config, nil
}

// prepare fills the state tracker, either by aligning the input or, with
// --from-report, by restoring a previously saved report.
func (a *App) prepare(ctx context.Context) (*mesh.Report, error) {
	if !a.FromReport {
		return a.align(ctx)
	}

	config, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	rep, err := mesh.LoadReport(config.Output.Report)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, fmt.Errorf("no saved report at %s", config.Output.Report)
	}
	a.StateTracker.Restore(rep)
	log.Printf("[REPORT] Restored report %s from %s (%d scanners)", rep.RunID, config.Output.Report, len(rep.Scanners))
	return rep, nil
}

// align loads the scanners, runs the alignment and records the result
func (a *App) align(ctx context.Context) (*mesh.Report, error) {
	config, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	scanners, err := mesh.ParseScannerFile(config.Input)
	if err != nil {
		return nil, err
	}
	log.Printf("[ALIGN] Loaded %d scanners from %s", len(scanners), config.Input)

	result, err := mesh.AlignScanners(ctx, scanners, config.AlignConfig())
	if err != nil {
		return nil, err
	}

	rep := mesh.BuildReport(result)
	a.StateTracker.Update(result, rep)

	if config.Output.Report != "" {
		if err := mesh.SaveReport(config.Output.Report, rep); err != nil {
			return nil, err
		}
		log.Printf("[REPORT] Saved alignment report to %s", config.Output.Report)
	}

	return rep, nil
}

// printAnswers writes the beacon count and the largest scanner distance
func (a *App) printAnswers(rep *mesh.Report) {
	fmt.Fprintf(a.Out, "The probe released %d beacons\n", rep.BeaconCount)
	fmt.Fprintf(a.Out, "The maximum distance between two scanners is %d\n", rep.MaxDistance)
}

// RunAlign aligns the input and prints the results
func (a *App) RunAlign() error {
	rep, err := a.prepare(context.Background())
	if err != nil {
		return err
	}
	a.printAnswers(rep)
	return nil
}

// RunRender aligns the input and renders a top-down map to OutputFile
func (a *App) RunRender() error {
	format := strings.ToLower(a.RenderFormat)
	switch format {
	case "", "raster", "vector":
	default:
		return fmt.Errorf("unknown render format %q (want raster or vector)", a.RenderFormat)
	}

	rep, err := a.prepare(context.Background())
	if err != nil {
		return err
	}
	a.printAnswers(rep)

	snap := a.StateTracker.Snapshot()
	plane := a.Config.GetPlane()

	f, err := os.Create(a.OutputFile)
	if err != nil {
		return fmt.Errorf("creating %s: %w", a.OutputFile, err)
	}
	defer func() { _ = f.Close() }()

	if format == "vector" {
		vr := mesh.NewVectorRenderer(snap, plane, a.Config.Output.GridSpacing)
		if strings.ToLower(a.VectorFormat) == "png" {
			err = vr.RenderToPNG(f)
		} else {
			err = vr.RenderToSVG(f)
		}
	} else {
		err = mesh.NewRasterRenderer(snap, plane).WritePNG(f)
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", a.OutputFile, err)
	}

	fmt.Fprintf(a.Out, "Saved map to %s\n", a.OutputFile)
	return nil
}

// RunExport aligns the input and writes a GeoJSON FeatureCollection
func (a *App) RunExport() error {
	rep, err := a.prepare(context.Background())
	if err != nil {
		return err
	}
	a.printAnswers(rep)

	path := a.Config.Output.GeoJSON
	if path == "" {
		path = DefaultGeoJSONPath
	}
	snap := a.StateTracker.Snapshot()
	fc := mesh.BuildGeoJSON(snap.Beacons, snap.Scanners, a.Config.GetPlane())
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(a.Out, "Saved GeoJSON to %s (%d features)\n", path, len(fc.Features))
	return nil
}

// RunService aligns once, then publishes over MQTT and/or serves HTTP until
// interrupted.
func (a *App) RunService() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(a.Out, "Starting beaconmesh service...")

	rep, err := a.prepare(ctx)
	if err != nil {
		return err
	}
	a.printAnswers(rep)

	if a.MqttMode {
		client, err := mesh.ConnectMQTT(ctx, a.Config.MQTT)
		if err != nil {
			return fmt.Errorf("initializing MQTT: %w", err)
		}
		if client == nil {
			return fmt.Errorf("MQTT broker not configured (config mqtt.broker or MQTT_BROKER)")
		}
		defer client.Disconnect(250)

		prefix := mesh.ResolveMQTTConfig(a.Config.MQTT).PublishPrefix
		a.Publisher = mesh.NewPublisher(client, prefix)
		if err := a.Publisher.PublishReport(rep); err != nil {
			log.Printf("[MQTT] Error publishing report: %v", err)
		}
		fmt.Fprintf(a.Out, "\nMQTT: publishing to %s/summary and %s/scanners/{id}\n", prefix, prefix)
	}

	var srv *http.Server
	if a.HttpMode {
		port := a.Config.HTTP.Port
		if port == 0 {
			port = mesh.DefaultHTTPPort
		}
		srv = &http.Server{
			Addr:              fmt.Sprintf("0.0.0.0:%d", port),
			Handler:           newHTTPServer(a.StateTracker, a.Config),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("[HTTP] Starting server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[HTTP] Server error: %v", err)
				stop()
			}
		}()

		fmt.Fprintf(a.Out, "\nHTTP endpoints (port %d):\n", port)
		fmt.Fprintln(a.Out, "  GET /health           - Health check")
		fmt.Fprintln(a.Out, "  GET /report.json      - Alignment report")
		fmt.Fprintln(a.Out, "  GET /scanners/{id}    - One scanner's pose")
		fmt.Fprintln(a.Out, "  GET /beacons.geojson  - Beacons and scanners as GeoJSON")
		fmt.Fprintln(a.Out, "  GET /map.svg          - Vector map")
		fmt.Fprintln(a.Out, "  GET /map.png          - Raster map")
		fmt.Fprintln(a.Out, "  GET /metrics          - Prometheus metrics")
	}

	fmt.Fprintln(a.Out, "\nPress Ctrl+C to stop")
	<-ctx.Done()

	fmt.Fprintln(a.Out, "\nShutting down service...")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[HTTP] Shutdown error: %v", err)
		}
	}
	fmt.Fprintln(a.Out, "Service stopped")
	return nil
}
