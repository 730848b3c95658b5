package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions holds every CLI option handed to the application
type AppOptions struct {
	ConfigFile     string
	SaveConfigFile string
	InputFile      string
	ReportFile     string
	OutputFile     string
	GeoJSONFile    string
	RenderFormat   string
	VectorFormat   string
	Plane          string
	GridSpacing    float64
	Workers        int
	MinOverlap     int
	HttpPort       int
	RenderOnly     bool
	ExportGeoJSON  bool
	MqttMode       bool
	HttpMode       bool
	FromReport     bool
}

// AppRunner is the set of modes run dispatches to
type AppRunner interface {
	ApplyOptions(opts AppOptions)
	RunAlign() error
	RunRender() error
	RunExport() error
	RunService() error
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("beaconmesh: %v", err)
	}
}

// run parses args and dispatches to the selected mode
func run(args []string, out io.Writer, app AppRunner) error {
	fs := flag.NewFlagSet("beaconmesh", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts AppOptions
	fs.StringVar(&opts.ConfigFile, "config", defaultConfigPath, "Path to configuration file (optional)")
	fs.StringVar(&opts.InputFile, "input", "", "Scanner report file (overrides config input)")
	fs.StringVar(&opts.ReportFile, "report", "", "Write the JSON alignment report to this path")
	fs.BoolVar(&opts.RenderOnly, "render", false, "Align, render a top-down map and exit")
	fs.StringVar(&opts.OutputFile, "output", "beacon-map.png", "Output file for --render mode")
	fs.StringVar(&opts.RenderFormat, "format", "raster", "Render format: raster or vector")
	fs.StringVar(&opts.VectorFormat, "vector-format", "svg", "Vector output format: svg or png")
	fs.StringVar(&opts.Plane, "plane", "", "Projection plane for maps and GeoJSON: xy, xz or yz")
	fs.Float64Var(&opts.GridSpacing, "grid-spacing", 0, "Grid line spacing for vector renders (0 = config default)")
	fs.BoolVar(&opts.ExportGeoJSON, "export-geojson", false, "Align, export beacons and scanners as GeoJSON and exit")
	fs.StringVar(&opts.GeoJSONFile, "geojson", "", "GeoJSON output path (default from config or beacons.geojson)")
	fs.IntVar(&opts.Workers, "workers", 0, "Parallel alignment attempts per pass (0 = config or GOMAXPROCS)")
	fs.IntVar(&opts.MinOverlap, "min-overlap", 0, "Shared beacons required to align two scanners (0 = config or 12; minimum 3)")
	fs.BoolVar(&opts.MqttMode, "mqtt", false, "Publish the alignment over MQTT and keep running")
	fs.BoolVar(&opts.HttpMode, "http", false, "Serve the alignment over HTTP and keep running")
	fs.IntVar(&opts.HttpPort, "http-port", 0, "HTTP server port (0 = config or 8080)")
	fs.BoolVar(&opts.FromReport, "from-report", false, "Use the saved alignment report (--report or output.report) instead of aligning")
	fs.StringVar(&opts.SaveConfigFile, "save-config", "", "Write the effective configuration (file plus flags) to this path")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "beaconmesh version: %s\n", Version)
	app.ApplyOptions(opts)

	switch {
	case opts.RenderOnly:
		return app.RunRender()
	case opts.ExportGeoJSON:
		return app.RunExport()
	case opts.MqttMode || opts.HttpMode:
		return app.RunService()
	default:
		return app.RunAlign()
	}
}
