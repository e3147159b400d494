package vector

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// OpenGeoJSON reads a GeoJSON FeatureCollection file into a Layer.
func OpenGeoJSON(path string) (*Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrLayerNotFound, "open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	layer, err := decodeGeoJSON(f, layerName(path))
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}

	logLoaded(layer, path)
	return layer, nil
}

// FetchGeoJSON downloads a GeoJSON FeatureCollection from a URL.
func FetchGeoJSON(client *http.Client, url string) (*Layer, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, eris.Wrapf(ErrLayerNotFound, "fetch %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrLayerNotFound, "fetch %s: status %d", url, resp.StatusCode)
	}

	layer, err := decodeGeoJSON(resp.Body, layerName(url))
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", url)
	}

	logLoaded(layer, url)
	return layer, nil
}

func decodeGeoJSON(r io.Reader, name string) (*Layer, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "vector: decode GeoJSON")
	}

	layer := &Layer{Name: name}

	for _, f := range fc.Features {
		attrs := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			attrs[k] = v
		}
		layer.Features = append(layer.Features, Feature{
			Geometry:   f.Geometry,
			Attributes: attrs,
		})
	}

	layer.Fields = inferSchema(fc.Features)
	return layer, nil
}

// inferSchema builds the column list from feature properties. Column order is
// first-seen order; a numeric column is integer only while every value is
// integral, and any type conflict widens the column to string.
func inferSchema(features []*geojson.Feature) []Field {
	var fields []Field
	index := make(map[string]int)

	for _, f := range features {
		// Stable key order within one feature
		for _, k := range sortedKeys(f.Properties) {
			t := valueType(f.Properties[k])
			if t == "" {
				continue
			}

			i, seen := index[k]
			if !seen {
				index[k] = len(fields)
				fields = append(fields, Field{Name: k, Type: t})
				continue
			}

			fields[i].Type = widen(fields[i].Type, t)
		}
	}

	return fields
}

func valueType(v any) FieldType {
	switch n := v.(type) {
	case nil:
		return ""
	case bool:
		return TypeBoolean
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return TypeInteger
		}
		return TypeReal
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return TypeInteger
		}
		return TypeReal
	case string:
		return TypeString
	default:
		return TypeString
	}
}

func widen(have, seen FieldType) FieldType {
	if have == seen {
		return have
	}
	if (have == TypeInteger && seen == TypeReal) || (have == TypeReal && seen == TypeInteger) {
		return TypeReal
	}
	return TypeString
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
