package kepler

import (
	"encoding/json"

	"github.com/maptools/keplerout/internal/table"
)

// FeatureCollection is the GeoJSON dataset payload handed to kepler.gl.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON feature of the dataset. Geometry is kept as the
// raw encoded object produced by the table conversion.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// NewFeatureCollection builds the dataset from table rows, preserving row
// order. The geometry column becomes the feature geometry; all remaining
// columns become properties.
func NewFeatureCollection(t *table.Table) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(t.Rows)),
	}

	for _, row := range t.Rows {
		props := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			props[f.Name] = row[f.Name]
		}

		var geometry json.RawMessage
		if g, ok := row[table.GeometryColumn].(json.RawMessage); ok {
			geometry = g
		}

		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   geometry,
			Properties: props,
		})
	}

	return fc
}
