package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/maptools/keplerout/internal/kepler"
	"github.com/maptools/keplerout/internal/table"
	"github.com/maptools/keplerout/internal/vector"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input   string `short:"i" long:"in"      description:"Vector layer source: .shp, .geojson/.json file or HTTP(S) URL" required:"true"`
	Output  string `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
	Format  string `short:"f" long:"format"  description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Columns string `short:"c" long:"columns" description:"Comma separated attribute columns to export (default: all)"`
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

	client := &http.Client{Timeout: 30 * time.Second}

	layer, err := vector.Open(client, opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening layer: %v\n", err)
		os.Exit(1)
	}

	var columns []string
	for _, c := range strings.Split(opts.Columns, ",") {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}

	tbl, err := table.Convert(layer, columns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting layer: %v\n", err)
		os.Exit(1)
	}

	fc := kepler.NewFeatureCollection(tbl)

	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = marshalYAML(fc)
	} else {
		outputData, err = json.MarshalIndent(fc, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d features to %s (format: %s)\n", len(fc.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

// marshalYAML renders the feature collection as YAML. The raw JSON geometry
// blobs are decoded first so they serialize as structured values.
func marshalYAML(fc kepler.FeatureCollection) ([]byte, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}

	return yaml.Marshal(generic)
}
