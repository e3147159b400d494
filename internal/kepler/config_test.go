package kepler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/maptools/keplerout/internal/table"
	"github.com/maptools/keplerout/internal/vector"
)

func testTable() *table.Table {
	return &table.Table{
		Layer: "places@world",
		Fields: []vector.Field{
			{Name: "name", Type: vector.TypeString},
			{Name: "value", Type: vector.TypeInteger},
			{Name: "height", Type: vector.TypeReal},
		},
		Rows: []table.Row{},
	}
}

func testBounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(14.0, 49.0, 18.0, 51.0)
}

func TestDataID(t *testing.T) {
	assert.Equal(t, "places__at__world", DataID("places@world"))
	assert.Equal(t, "places", DataID("places"))
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig("")

	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, "dark", cfg.Config.MapStyle.StyleType)
	assert.Equal(t, "normal", cfg.Config.VisState.LayerBlending)
	assert.True(t, cfg.Config.VisState.InteractionConfig.Tooltip.Enabled)
	assert.False(t, cfg.Config.VisState.InteractionConfig.Geocoder.Enabled)
	assert.Empty(t, cfg.Config.VisState.Layers)
	assert.Nil(t, cfg.Config.MapState)
}

func TestBuild_SingleLayer(t *testing.T) {
	cfg, err := Build(testTable(), testBounds(), Options{Title: "Demo", Zoom: 5})
	require.NoError(t, err)

	require.Len(t, cfg.Config.VisState.Layers, 1)
	layer := cfg.Config.VisState.Layers[0]

	assert.Equal(t, "geojson", layer.Type)
	assert.Equal(t, "places__at__world", layer.Config.DataID)
	assert.Equal(t, "Demo", layer.Config.Label)
	assert.Equal(t, map[string]string{"geojson": table.GeometryColumn}, layer.Config.Columns)
	assert.True(t, layer.Config.IsVisible)
}

func TestBuild_LabelFallsBackToLayerName(t *testing.T) {
	cfg, err := Build(testTable(), testBounds(), Options{Zoom: 5})
	require.NoError(t, err)

	assert.Equal(t, "places@world", cfg.Config.VisState.Layers[0].Config.Label)
}

func TestBuild_VisualChannels(t *testing.T) {
	cfg, err := Build(testTable(), testBounds(), Options{
		Zoom:              5,
		ColorColumn:       "value",
		StrokeColorColumn: "name",
		HeightColumn:      "height",
	})
	require.NoError(t, err)

	channels := cfg.Config.VisState.Layers[0].VisualChannels

	require.NotNil(t, channels.ColorField)
	assert.Equal(t, ChannelField{Name: "value", Type: "integer"}, *channels.ColorField)
	assert.Equal(t, "quantize", channels.ColorScale)

	require.NotNil(t, channels.StrokeColorField)
	assert.Equal(t, ChannelField{Name: "name", Type: "string"}, *channels.StrokeColorField)

	require.NotNil(t, channels.HeightField)
	assert.Equal(t, ChannelField{Name: "height", Type: "real"}, *channels.HeightField)
	assert.Equal(t, "linear", channels.HeightScale)

	assert.Nil(t, channels.SizeField)
	assert.Nil(t, channels.RadiusField)
}

func TestBuild_UnknownChannelColumn(t *testing.T) {
	_, err := Build(testTable(), testBounds(), Options{Zoom: 5, ColorColumn: "missing"})

	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestBuild_TooltipColumns(t *testing.T) {
	cfg, err := Build(testTable(), testBounds(), Options{Zoom: 5})
	require.NoError(t, err)

	fields := cfg.Config.VisState.InteractionConfig.Tooltip.FieldsToShow
	assert.Equal(t, []string{"name", "value", "height"}, fields["places__at__world"])
}

func TestBuild_MapStateCenteredOnBounds(t *testing.T) {
	cfg, err := Build(testTable(), testBounds(), Options{Zoom: 7})
	require.NoError(t, err)

	state := cfg.Config.MapState
	require.NotNil(t, state)
	assert.InDelta(t, 16.0, state.Longitude, 1e-9)
	assert.InDelta(t, 50.0, state.Latitude, 1e-9)
	assert.Equal(t, 7.0, state.Zoom)
	assert.False(t, state.DragRotate)
}

func TestBuild_NilBounds(t *testing.T) {
	cfg, err := Build(testTable(), nil, Options{Zoom: 5})
	require.NoError(t, err)

	state := cfg.Config.MapState
	require.NotNil(t, state)
	assert.Zero(t, state.Longitude)
	assert.Zero(t, state.Latitude)
}
