// Package table converts a vector layer into an ordered row/column structure
// with a GeoJSON-encoded geometry column, the shape kepler.gl datasets expect.
package table

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/maptools/keplerout/internal/vector"
)

// GeometryColumn is the reserved column holding the encoded feature geometry.
const GeometryColumn = "_geojson"

// ErrColumnNotFound indicates a requested column is absent from the layer schema.
var ErrColumnNotFound = eris.New("table: column not found in attribute schema")

// Row maps column names to values. Every row of a table carries the same key
// set: the selected attribute columns plus GeometryColumn.
type Row map[string]any

// Table is the ordered feature-row sequence produced from one layer.
// Row order matches feature iteration order of the source layer.
type Table struct {
	Layer  string
	Fields []vector.Field
	Rows   []Row
}

// Convert builds a Table from a layer. The optional columns argument selects
// an attribute subset in the given order; when empty the full schema is used.
// A requested column missing from the schema fails before any row is built.
func Convert(layer *vector.Layer, columns []string) (*Table, error) {
	fields, err := selectFields(layer, columns)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Layer:  layer.Name,
		Fields: fields,
		Rows:   make([]Row, 0, len(layer.Features)),
	}

	for _, feature := range layer.Features {
		row := make(Row, len(fields)+1)
		for _, f := range fields {
			row[f.Name] = feature.Attributes[f.Name]
		}

		g, err := encodeGeometry(feature)
		if err != nil {
			return nil, err
		}
		row[GeometryColumn] = g

		t.Rows = append(t.Rows, row)
	}

	log.Debug().
		Str("layer", layer.Name).
		Int("rows", len(t.Rows)).
		Int("columns", len(t.Fields)).
		Msg("Layer converted to table")

	return t, nil
}

// ColumnNames returns the selected attribute column names in table order,
// without the geometry column.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

// selectFields resolves the requested column subset against the layer schema.
func selectFields(layer *vector.Layer, columns []string) ([]vector.Field, error) {
	if len(columns) == 0 {
		fields := make([]vector.Field, len(layer.Fields))
		copy(fields, layer.Fields)
		return fields, nil
	}

	fields := make([]vector.Field, 0, len(columns))
	for _, name := range columns {
		f, ok := layer.Field(name)
		if !ok {
			return nil, eris.Wrapf(ErrColumnNotFound, "%q (layer %s)", name, layer.Name)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// encodeGeometry renders the feature geometry as a raw GeoJSON geometry
// object, or nil when the feature has none.
func encodeGeometry(f vector.Feature) (json.RawMessage, error) {
	if f.Geometry == nil {
		return nil, nil
	}

	data, err := geojson.Marshal(f.Geometry)
	if err != nil {
		return nil, eris.Wrap(err, "table: encode geometry")
	}
	return json.RawMessage(data), nil
}
