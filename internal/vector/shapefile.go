package vector

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom"
)

// OpenShapefile reads an ESRI shapefile into a Layer. Attribute column types
// are derived from the DBF field descriptors.
func OpenShapefile(path string) (*Layer, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrLayerNotFound, "open shapefile %s: %v", path, err)
	}
	defer func() { _ = reader.Close() }()

	dbfFields := reader.Fields()
	fields := make([]Field, 0, len(dbfFields))
	for _, f := range dbfFields {
		name := strings.TrimRight(f.String(), "\x00")
		fields = append(fields, Field{Name: name, Type: dbfFieldType(f)})
	}

	layer := &Layer{Name: layerName(path), Fields: fields}

	for reader.Next() {
		_, shape := reader.Shape()

		attrs := make(map[string]any, len(fields))
		for i, f := range fields {
			attrs[f.Name] = parseAttribute(reader.Attribute(i), f.Type)
		}

		layer.Features = append(layer.Features, Feature{
			Geometry:   shapeToGeom(shape),
			Attributes: attrs,
		})
	}

	logLoaded(layer, path)
	return layer, nil
}

// dbfFieldType maps a DBF field descriptor to a generic column type.
func dbfFieldType(f shp.Field) FieldType {
	switch f.Fieldtype {
	case 'N':
		if f.Precision == 0 {
			return TypeInteger
		}
		return TypeReal
	case 'F':
		return TypeReal
	case 'L':
		return TypeBoolean
	default: // 'C', 'D' and anything exotic stay textual
		return TypeString
	}
}

// parseAttribute converts the raw DBF string value to the schema type.
// Empty values become nil; unparsable values are kept as strings.
func parseAttribute(raw string, t FieldType) any {
	val := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if val == "" {
		return nil
	}

	switch t {
	case TypeInteger:
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	case TypeReal:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	case TypeBoolean:
		switch val {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		}
		return nil
	}

	return val
}

// shapeToGeom converts a go-shp shape to a go-geom geometry.
// Returns nil for null or unsupported shapes.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})

	case *shp.PointZ:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})

	case *shp.PointM:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})

	case *shp.MultiPoint:
		return geom.NewMultiPointFlat(geom.XY, flatPoints(s.Points))

	case *shp.PolyLine:
		return partsToMultiLineString(s.Parts, s.Points)

	case *shp.PolyLineZ:
		return partsToMultiLineString(s.Parts, s.Points)

	case *shp.Polygon:
		return partsToPolygon(s.Parts, s.Points)

	case *shp.PolygonZ:
		return partsToPolygon(s.Parts, s.Points)

	default:
		if shape != nil {
			log.Trace().Type("shape", shape).Msg("Unsupported shape type, keeping feature without geometry")
		}
		return nil
	}
}

// partsToMultiLineString builds a MultiLineString from shapefile part offsets.
func partsToMultiLineString(parts []int32, points []shp.Point) geom.T {
	if len(parts) == 0 || len(points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY)
	for i := range parts {
		flat := flatPoints(partSlice(parts, points, i))
		if len(flat) < 4 {
			continue
		}
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
			log.Debug().Err(err).Int("part", i).Msg("Skipping malformed linestring part")
		}
	}

	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// partsToPolygon builds a Polygon whose rings are the shapefile parts.
// Rings are closed when the source left them open.
func partsToPolygon(parts []int32, points []shp.Point) geom.T {
	if len(parts) == 0 || len(points) == 0 {
		return nil
	}

	poly := geom.NewPolygon(geom.XY)
	for i := range parts {
		flat := flatPoints(partSlice(parts, points, i))
		if len(flat) < 6 {
			continue
		}
		if flat[0] != flat[len(flat)-2] || flat[1] != flat[len(flat)-1] {
			flat = append(flat, flat[0], flat[1])
		}
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			log.Debug().Err(err).Int("part", i).Msg("Skipping malformed polygon ring")
		}
	}

	if poly.NumLinearRings() == 0 {
		return nil
	}
	return poly
}

// partSlice returns the points belonging to part i.
func partSlice(parts []int32, points []shp.Point, i int) []shp.Point {
	start := parts[i]
	end := int32(len(points))
	if i+1 < len(parts) {
		end = parts[i+1]
	}
	if start < 0 || start > end || end > int32(len(points)) {
		return nil
	}
	return points[start:end]
}

func flatPoints(points []shp.Point) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}
