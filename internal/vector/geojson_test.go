package vector

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [14.42, 50.09]},
      "properties": {"name": "Prague", "value": 10}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [16.61, 49.19]},
      "properties": {"name": "Brno", "value": 20}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [18.28, 49.83]},
      "properties": {"name": "Ostrava", "value": 30}
    }
  ]
}`

func writeTempGeoJSON(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpenGeoJSON(t *testing.T) {
	path := writeTempGeoJSON(t, "places.geojson", placesGeoJSON)

	layer, err := OpenGeoJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "places", layer.Name)
	assert.Len(t, layer.Features, 3)

	require.Len(t, layer.Fields, 2)
	assert.Equal(t, Field{Name: "name", Type: TypeString}, layer.Fields[0])
	assert.Equal(t, Field{Name: "value", Type: TypeInteger}, layer.Fields[1])

	assert.Equal(t, "Prague", layer.Features[0].Attributes["name"])
	require.NotNil(t, layer.Features[0].Geometry)
}

func TestOpenGeoJSON_EmptyCollection(t *testing.T) {
	path := writeTempGeoJSON(t, "empty.geojson", `{"type":"FeatureCollection","features":[]}`)

	layer, err := OpenGeoJSON(path)
	require.NoError(t, err)

	assert.Empty(t, layer.Features)
	assert.Empty(t, layer.Fields)
	assert.Nil(t, layer.Bounds())
}

func TestOpenGeoJSON_Invalid(t *testing.T) {
	path := writeTempGeoJSON(t, "broken.geojson", `{"type":`)

	_, err := OpenGeoJSON(path)
	require.Error(t, err)
}

func TestInferSchema_Widening(t *testing.T) {
	path := writeTempGeoJSON(t, "mixed.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"value": 1, "flag": true}},
	    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 1]}, "properties": {"value": 1.5, "flag": "yes"}}
	  ]
	}`)

	layer, err := OpenGeoJSON(path)
	require.NoError(t, err)

	flag, ok := layer.Field("flag")
	require.True(t, ok)
	assert.Equal(t, TypeString, flag.Type)

	value, ok := layer.Field("value")
	require.True(t, ok)
	assert.Equal(t, TypeReal, value.Type)
}

func TestOpen_Dispatch(t *testing.T) {
	path := writeTempGeoJSON(t, "places.json", placesGeoJSON)

	layer, err := Open(nil, path)
	require.NoError(t, err)
	assert.Len(t, layer.Features, 3)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(nil, filepath.Join(t.TempDir(), "nope.geojson"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestOpen_UnknownFormat(t *testing.T) {
	path := writeTempGeoJSON(t, "layer.gpkg", "not really")

	_, err := Open(nil, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFetchGeoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(placesGeoJSON))
	}))
	defer srv.Close()

	layer, err := Open(srv.Client(), srv.URL+"/places.geojson")
	require.NoError(t, err)

	assert.Equal(t, "places", layer.Name)
	assert.Len(t, layer.Features, 3)
}

func TestFetchGeoJSON_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := FetchGeoJSON(srv.Client(), srv.URL+"/missing.geojson")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestLayerBounds(t *testing.T) {
	path := writeTempGeoJSON(t, "places.geojson", placesGeoJSON)

	layer, err := OpenGeoJSON(path)
	require.NoError(t, err)

	b := layer.Bounds()
	require.NotNil(t, b)
	assert.InDelta(t, 14.42, b.Min(0), 1e-9)
	assert.InDelta(t, 18.28, b.Max(0), 1e-9)
	assert.InDelta(t, 49.19, b.Min(1), 1e-9)
	assert.InDelta(t, 50.09, b.Max(1), 1e-9)
}
