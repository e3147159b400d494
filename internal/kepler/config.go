// Package kepler builds kepler.gl map configurations and datasets from
// feature-row tables.
package kepler

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom"

	"github.com/maptools/keplerout/internal/table"
)

// defaultLayerID is the fixed id of the single data layer.
const defaultLayerID = "m1vnv5v"

// Config is the top level kepler.gl configuration document.
type Config struct {
	Version string     `json:"version"`
	Config  ConfigBody `json:"config"`
}

type ConfigBody struct {
	VisState VisState  `json:"visState"`
	MapState *MapState `json:"mapState"`
	MapStyle MapStyle  `json:"mapStyle"`
}

type VisState struct {
	Filters           []any             `json:"filters"`
	Layers            []Layer           `json:"layers"`
	InteractionConfig InteractionConfig `json:"interactionConfig"`
	LayerBlending     string            `json:"layerBlending"`
	SplitMaps         []any             `json:"splitMaps"`
	AnimationConfig   AnimationConfig   `json:"animationConfig"`
}

type InteractionConfig struct {
	Tooltip    Tooltip `json:"tooltip"`
	Brush      Brush   `json:"brush"`
	Geocoder   Toggle  `json:"geocoder"`
	Coordinate Toggle  `json:"coordinate"`
}

type Tooltip struct {
	FieldsToShow map[string][]string `json:"fieldsToShow"`
	Enabled      bool                `json:"enabled"`
}

type Brush struct {
	Size    float64 `json:"size"`
	Enabled bool    `json:"enabled"`
}

type Toggle struct {
	Enabled bool `json:"enabled"`
}

type AnimationConfig struct {
	CurrentTime any     `json:"currentTime"`
	Speed       float64 `json:"speed"`
}

// Layer is a single kepler.gl geojson layer definition.
type Layer struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Config         LayerConfig    `json:"config"`
	VisualChannels VisualChannels `json:"visualChannels"`
}

type LayerConfig struct {
	DataID    string            `json:"dataId"`
	Label     string            `json:"label"`
	Color     [3]int            `json:"color"`
	Columns   map[string]string `json:"columns"`
	IsVisible bool              `json:"isVisible"`
	VisConfig map[string]any    `json:"visConfig"`
	Hidden    bool              `json:"hidden"`
	TextLabel []TextLabel       `json:"textLabel"`
}

type TextLabel struct {
	Field     any    `json:"field"`
	Color     [3]int `json:"color"`
	Size      int    `json:"size"`
	Offset    [2]int `json:"offset"`
	Anchor    string `json:"anchor"`
	Alignment string `json:"alignment"`
}

// VisualChannels binds attribute columns to visual properties of the layer.
type VisualChannels struct {
	ColorField       *ChannelField `json:"colorField"`
	ColorScale       string        `json:"colorScale"`
	SizeField        *ChannelField `json:"sizeField"`
	SizeScale        string        `json:"sizeScale"`
	StrokeColorField *ChannelField `json:"strokeColorField"`
	StrokeColorScale string        `json:"strokeColorScale"`
	HeightField      *ChannelField `json:"heightField"`
	HeightScale      string        `json:"heightScale"`
	RadiusField      *ChannelField `json:"radiusField"`
	RadiusScale      string        `json:"radiusScale"`
}

type ChannelField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type MapState struct {
	Bearing    float64 `json:"bearing"`
	DragRotate bool    `json:"dragRotate"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Pitch      float64 `json:"pitch"`
	Zoom       float64 `json:"zoom"`
	IsSplit    bool    `json:"isSplit"`
}

type MapStyle struct {
	StyleType           string          `json:"styleType"`
	TopLayerGroups      map[string]bool `json:"topLayerGroups"`
	VisibleLayerGroups  map[string]bool `json:"visibleLayerGroups"`
	ThreeDBuildingColor [3]float64      `json:"threeDBuildingColor"`
	MapStyles           map[string]any  `json:"mapStyles"`
}

// Options controls how the configuration is assembled.
type Options struct {
	Title             string
	Label             string
	Zoom              float64
	StyleType         string
	ColorColumn       string
	StrokeColorColumn string
	HeightColumn      string
	StyleFile         string
}

// DataID derives the kepler dataset id from a layer name. The GRASS-style
// name@mapset separator is not valid in a dataset id.
func DataID(layerName string) string {
	return strings.ReplaceAll(layerName, "@", "__at__")
}

// NewConfig returns the base configuration with no layers and no map state.
func NewConfig(styleType string) *Config {
	if styleType == "" {
		styleType = "dark"
	}

	return &Config{
		Version: "v1",
		Config: ConfigBody{
			VisState: VisState{
				Filters: []any{},
				Layers:  []Layer{},
				InteractionConfig: InteractionConfig{
					Tooltip: Tooltip{
						FieldsToShow: map[string][]string{},
						Enabled:      true,
					},
					Brush:      Brush{Size: 0.5, Enabled: false},
					Geocoder:   Toggle{Enabled: false},
					Coordinate: Toggle{Enabled: false},
				},
				LayerBlending:   "normal",
				SplitMaps:       []any{},
				AnimationConfig: AnimationConfig{CurrentTime: nil, Speed: 1},
			},
			MapState: nil,
			MapStyle: MapStyle{
				StyleType:      styleType,
				TopLayerGroups: map[string]bool{},
				VisibleLayerGroups: map[string]bool{
					"label":       false,
					"road":        true,
					"border":      false,
					"building":    true,
					"water":       true,
					"land":        true,
					"3d building": false,
				},
				ThreeDBuildingColor: [3]float64{
					9.665468314072013,
					17.18305478057247,
					31.1442867897876,
				},
				MapStyles: map[string]any{},
			},
		},
	}
}

// Build assembles the full configuration for one table: a single geojson
// layer with visual channels, tooltip columns and a map state centered on
// the data bounds.
func Build(t *table.Table, bounds *geom.Bounds, opts Options) (*Config, error) {
	cfg := NewConfig(opts.StyleType)
	dataID := DataID(t.Layer)

	label := opts.Label
	if label == "" {
		label = opts.Title
	}
	if label == "" {
		label = t.Layer
	}

	channels, err := buildVisualChannels(t, opts)
	if err != nil {
		return nil, err
	}

	visConfig := map[string]any{}
	if opts.StyleFile != "" {
		style, err := LoadStyle(opts.StyleFile)
		if err != nil {
			return nil, err
		}
		// Single layer, all style keys land in its visConfig.
		for k, v := range style {
			visConfig[k] = v
		}
	}

	layer := Layer{
		ID:   defaultLayerID,
		Type: "geojson",
		Config: LayerConfig{
			DataID:    dataID,
			Label:     label,
			Color:     [3]int{136, 87, 44},
			Columns:   map[string]string{"geojson": table.GeometryColumn},
			IsVisible: true,
			VisConfig: visConfig,
			Hidden:    false,
			TextLabel: []TextLabel{{
				Field:     nil,
				Color:     [3]int{255, 255, 255},
				Size:      18,
				Offset:    [2]int{0, 0},
				Anchor:    "start",
				Alignment: "center",
			}},
		},
		VisualChannels: channels,
	}

	cfg.Config.VisState.Layers = append(cfg.Config.VisState.Layers, layer)
	cfg.Config.VisState.InteractionConfig.Tooltip.FieldsToShow[dataID] = t.ColumnNames()
	cfg.Config.MapState = mapStateFromBounds(bounds, opts.Zoom)

	log.Debug().
		Str("data_id", dataID).
		Str("label", label).
		Float64("zoom", opts.Zoom).
		Msg("Kepler configuration assembled")

	return cfg, nil
}

// buildVisualChannels wires the optional color, stroke color and height
// columns. Field types come from the table schema.
func buildVisualChannels(t *table.Table, opts Options) (VisualChannels, error) {
	channels := VisualChannels{
		ColorScale:       "quantize",
		SizeScale:        "linear",
		StrokeColorScale: "quantize",
		HeightScale:      "linear",
		RadiusScale:      "linear",
	}

	bind := func(column string) (*ChannelField, error) {
		if column == "" {
			return nil, nil
		}
		for _, f := range t.Fields {
			if f.Name == column {
				return &ChannelField{Name: f.Name, Type: string(f.Type)}, nil
			}
		}
		return nil, eris.Wrapf(table.ErrColumnNotFound, "%q (visual channel)", column)
	}

	var err error
	if channels.ColorField, err = bind(opts.ColorColumn); err != nil {
		return channels, err
	}
	if channels.StrokeColorField, err = bind(opts.StrokeColorColumn); err != nil {
		return channels, err
	}
	if channels.HeightField, err = bind(opts.HeightColumn); err != nil {
		return channels, err
	}

	return channels, nil
}

// mapStateFromBounds centers the map on the data bounding box.
func mapStateFromBounds(bounds *geom.Bounds, zoom float64) *MapState {
	state := &MapState{
		Bearing:    0,
		DragRotate: false,
		Pitch:      0,
		Zoom:       zoom,
		IsSplit:    false,
	}

	if bounds != nil && !bounds.IsEmpty() {
		state.Longitude = (bounds.Min(0) + bounds.Max(0)) / 2
		state.Latitude = (bounds.Min(1) + bounds.Max(1)) / 2
	}

	return state
}
