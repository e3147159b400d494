// Package vector reads vector layers (geometry plus attribute table) from
// shapefile and GeoJSON sources, local or remote.
package vector

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom"
)

// FieldType is the generic attribute column type, named after the field
// types kepler.gl understands.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeReal    FieldType = "real"
	TypeBoolean FieldType = "boolean"
)

// Field describes one attribute column of a layer schema.
type Field struct {
	Name string
	Type FieldType
}

// Feature is one record of a layer: geometry plus attribute values keyed by
// column name. Geometry may be nil when the source record carries none.
type Feature struct {
	Geometry   geom.T
	Attributes map[string]any
}

// Layer is an in-memory vector layer with a uniform attribute schema.
// Features keep the iteration order of the source.
type Layer struct {
	Name     string
	Fields   []Field
	Features []Feature
}

var (
	// ErrLayerNotFound indicates the source does not exist or is inaccessible.
	ErrLayerNotFound = eris.New("vector: layer not found")
	// ErrUnknownFormat indicates the source extension is not recognized.
	ErrUnknownFormat = eris.New("vector: unknown source format")
)

// Field returns the schema field with the given name.
func (l *Layer) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnNames returns the full schema column list in order.
func (l *Layer) ColumnNames() []string {
	names := make([]string, 0, len(l.Fields))
	for _, f := range l.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Bounds returns the XY bounding box over all feature geometries, or nil when
// the layer has no geometry at all.
func (l *Layer) Bounds() *geom.Bounds {
	var b *geom.Bounds
	for _, f := range l.Features {
		if f.Geometry == nil {
			continue
		}
		if b == nil {
			b = geom.NewBounds(geom.XY)
		}
		b = b.Extend(f.Geometry)
	}
	return b
}

// Open loads a vector layer from a local file or an HTTP(S) URL.
// Remote sources must be GeoJSON; local sources are dispatched on extension
// (.shp, .geojson, .json).
func Open(client *http.Client, source string) (*Layer, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return FetchGeoJSON(client, source)
	}

	if _, err := os.Stat(source); err != nil {
		return nil, eris.Wrapf(ErrLayerNotFound, "%s: %v", source, err)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".shp":
		return OpenShapefile(source)
	case ".geojson", ".json":
		return OpenGeoJSON(source)
	}

	return nil, eris.Wrapf(ErrUnknownFormat, "%s", source)
}

// layerName derives the layer name from the source path or URL.
func layerName(source string) string {
	base := filepath.Base(strings.TrimRight(source, "/"))
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func logLoaded(l *Layer, source string) {
	log.Debug().
		Str("layer", l.Name).
		Str("source", source).
		Int("features", len(l.Features)).
		Int("columns", len(l.Fields)).
		Msg("Layer loaded")
}
