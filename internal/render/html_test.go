package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maptools/keplerout/internal/kepler"
	"github.com/maptools/keplerout/internal/table"
	"github.com/maptools/keplerout/internal/vector"
)

func testInputs(t *testing.T) (*kepler.Config, kepler.FeatureCollection) {
	t.Helper()

	tbl := &table.Table{
		Layer:  "places",
		Fields: []vector.Field{{Name: "name", Type: vector.TypeString}},
		Rows: []table.Row{
			{"name": "Prague", table.GeometryColumn: json.RawMessage(`{"type":"Point","coordinates":[14.42,50.09]}`)},
		},
	}

	cfg, err := kepler.Build(tbl, nil, kepler.Options{Title: "Demo map", Zoom: 5})
	require.NoError(t, err)

	return cfg, kepler.NewFeatureCollection(tbl)
}

func TestRender_EmbedsTitleConfigAndData(t *testing.T) {
	cfg, fc := testInputs(t)

	page, err := Render(cfg, fc, Options{
		Title:  "Demo map",
		DataID: "places",
		Label:  "Demo map",
	})
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<title>Demo map &ndash; Kepler.gl</title>")
	assert.Contains(t, html, `"version":"v1"`)
	assert.Contains(t, html, `"Prague"`)
	assert.Contains(t, html, "addDataToMap")
}

func TestRender_Attribution(t *testing.T) {
	cfg, fc := testInputs(t)
	opts := Options{Title: "Demo map", DataID: "places", Label: "Demo map"}

	page, err := Render(cfg, fc, opts)
	require.NoError(t, err)
	assert.NotContains(t, string(page), `id="attribution"`)

	opts.Attribution = "© Example Data 2026"
	page, err = Render(cfg, fc, opts)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, `id="attribution"`)
	assert.Contains(t, html, "© Example Data 2026")
}

func TestRender_Minify(t *testing.T) {
	cfg, fc := testInputs(t)
	opts := Options{Title: "Demo map", DataID: "places", Label: "Demo map"}

	raw, err := Render(cfg, fc, opts)
	require.NoError(t, err)

	opts.Minify = true
	minified, err := Render(cfg, fc, opts)
	require.NoError(t, err)

	assert.Less(t, len(minified), len(raw))
	assert.Contains(t, string(minified), "Demo map")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.html")

	require.NoError(t, WriteFile(path, []byte("<html></html>")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestWriteFile_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "map.html")

	err := WriteFile(path, []byte("<html></html>"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "map.html"))
}
