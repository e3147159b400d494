package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/maptools/keplerout/internal/config"
	"github.com/maptools/keplerout/internal/kepler"
	"github.com/maptools/keplerout/internal/logger"
	"github.com/maptools/keplerout/internal/render"
	"github.com/maptools/keplerout/internal/table"
	"github.com/maptools/keplerout/internal/vector"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

const defaultTitle = "Generated by keplerout"

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input             string  `short:"i" long:"input"               env:"INPUT"        description:"Vector layer source: .shp, .geojson/.json file or HTTP(S) URL" required:"true"`
	Output            string  `short:"o" long:"output"              env:"OUTPUT"       description:"Output HTML file path" required:"true"`
	Columns           string  `short:"c" long:"columns"             description:"Comma separated attribute columns to export (default: all)"`
	ColorColumn       string  `long:"color-column"                  description:"Column to be used for color"`
	StrokeColorColumn string  `long:"stroke-color-column"           description:"Column to be used for stroke color"`
	HeightColumn      string  `long:"height-column"                 description:"Column to be used for height"`
	Title             string  `short:"t" long:"title"               description:"Title of the resulting map"`
	Label             string  `short:"l" long:"label"               description:"Label of the data layer (defaults to title or layer name)"`
	Zoom              float64 `short:"z" long:"zoom"                description:"Zoom level of the web map (center is determined from the data bounds)"`
	Style             string  `short:"s" long:"style"               description:"JSON or YAML layer style file"`
	Attribution       string  `long:"attribution"                   description:"Attribution line shown on the map"`
	MapStyle          string  `long:"map-style"                     description:"Base map style" choice:"dark" choice:"light" choice:"muted" choice:"muted_night"`
	MapboxToken       string  `long:"mapbox-token" env:"MAPBOX_TOKEN" description:"Mapbox access token for the base map"`
	ConfigFile        string  `long:"config"       env:"CONFIG_FILE"  description:"Path to YAML defaults file"`
	NoMinify          bool    `long:"no-minify"                     description:"Skip HTML minification"`
	PrintConfig       bool    `long:"print-config"                  description:"Print the generated configuration JSON to stdout"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	applyDefaults(&opts)

	client := &http.Client{Timeout: 30 * time.Second}

	layer, err := vector.Open(client, opts.Input)
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to open vector layer")
	}

	tbl, err := table.Convert(layer, splitColumns(opts.Columns))
	if err != nil {
		log.Fatal().Err(err).Str("layer", layer.Name).Msg("Failed to convert layer to table")
	}

	cfg, err := kepler.Build(tbl, layer.Bounds(), kepler.Options{
		Title:             opts.Title,
		Label:             opts.Label,
		Zoom:              opts.Zoom,
		StyleType:         opts.MapStyle,
		ColorColumn:       opts.ColorColumn,
		StrokeColorColumn: opts.StrokeColorColumn,
		HeightColumn:      opts.HeightColumn,
		StyleFile:         opts.Style,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build kepler.gl configuration")
	}

	if opts.PrintConfig {
		pretty, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to marshal configuration")
		}
		fmt.Println(string(pretty))
	}

	label := opts.Label
	if label == "" {
		label = opts.Title
	}
	if label == "" {
		label = layer.Name
	}

	page, err := render.Render(cfg, kepler.NewFeatureCollection(tbl), render.Options{
		Title:       opts.Title,
		DataID:      kepler.DataID(layer.Name),
		Label:       label,
		Attribution: opts.Attribution,
		MapboxToken: opts.MapboxToken,
		Minify:      !opts.NoMinify,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render HTML")
	}

	if err := render.WriteFile(opts.Output, page); err != nil {
		log.Fatal().Err(err).Str("output", opts.Output).Msg("Failed to write HTML")
	}

	log.Info().
		Str("layer", layer.Name).
		Int("features", len(tbl.Rows)).
		Str("output", opts.Output).
		Msg("Visualization created")
}

// applyDefaults merges the optional defaults file under the flags and fills
// the remaining built-in defaults.
func applyDefaults(opts *Options) {
	if opts.ConfigFile != "" {
		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load defaults file")
		}

		if opts.Title == "" {
			opts.Title = cfg.Title
		}
		if opts.Label == "" {
			opts.Label = cfg.Label
		}
		if opts.MapStyle == "" {
			opts.MapStyle = cfg.MapStyle
		}
		if opts.Style == "" {
			opts.Style = cfg.StyleFile
		}
		if opts.Attribution == "" {
			opts.Attribution = cfg.Attribution
		}
		if opts.MapboxToken == "" {
			opts.MapboxToken = cfg.MapboxToken
		}
		if opts.Zoom == 0 {
			opts.Zoom = cfg.Zoom
		}
		if cfg.NoMinify {
			opts.NoMinify = true
		}
	}

	if opts.Title == "" {
		opts.Title = defaultTitle
	}
	if opts.Zoom == 0 {
		opts.Zoom = 5
	}
}

// splitColumns parses the comma separated column list.
func splitColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			columns = append(columns, p)
		}
	}
	return columns
}
