package geolbl

// Ring extraction from shapefile geometries.

import (
	shp "github.com/jonas-p/go-shp"
)

// RingKind classifies one extracted coordinate ring.
type RingKind int

// The ring kinds.
const (
	RingPoint RingKind = iota
	RingLine
	RingExterior
	RingHole
)

func (k RingKind) String() string {
	switch k {
	case RingPoint:
		return "point"
	case RingLine:
		return "line"
	case RingExterior:
		return "exterior"
	case RingHole:
		return "hole"
	}
	return "unknown"
}

// Ring is one ordered coordinate ring extracted from a geometry. Vertices
// are in the source reference system and keep the order stored in the
// shapefile. Group ties the exterior and hole rings of one polygon part
// together; point and line rings each get their own group.
type Ring struct {
	Kind     RingKind
	Vertices []Vertex
	Group    int
}

// ExtractRings walks one shapefile geometry and returns its coordinate
// rings.
//
// Points and multi-points produce one point ring per coordinate. Polylines
// produce one line ring per part. Polygons produce one exterior ring per
// part plus one hole ring per interior ring, classified by vertex
// orientation (the shapefile convention stores exterior rings clockwise);
// holes share the group of the preceding exterior, in part order. A nil or
// Null geometry produces no rings.
func ExtractRings(shape shp.Shape) []Ring {
	switch g := shape.(type) {
	case *shp.Point:
		return []Ring{{Kind: RingPoint, Vertices: []Vertex{{X: g.X, Y: g.Y}}}}

	case *shp.MultiPoint:
		rings := make([]Ring, 0, len(g.Points))
		for i, p := range g.Points {
			rings = append(rings, Ring{
				Kind:     RingPoint,
				Vertices: []Vertex{{X: p.X, Y: p.Y}},
				Group:    i,
			})
		}
		return rings

	case *shp.PolyLine:
		rings := make([]Ring, 0, g.NumParts)
		for i, part := range partSlices(g.Parts, g.Points) {
			rings = append(rings, Ring{Kind: RingLine, Vertices: part, Group: i})
		}
		return rings

	case *shp.Polygon:
		group := -1
		var rings []Ring
		for _, part := range partSlices(g.Parts, g.Points) {
			kind := RingExterior
			// Positive shoelace area means counter-clockwise, which the
			// shapefile convention reserves for holes.
			if ringArea(part) > 0 && group >= 0 {
				kind = RingHole
			} else {
				group++
			}
			rings = append(rings, Ring{Kind: kind, Vertices: part, Group: group})
		}
		return rings
	}

	// Null shapes and unsupported geometry kinds carry no rings.
	return nil
}

// partSlices splits the flat point array of a multi-part geometry into its
// parts, converting to vertices.
func partSlices(parts []int32, points []shp.Point) [][]Vertex {
	out := make([][]Vertex, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start >= end {
			continue
		}
		vertices := make([]Vertex, 0, end-start)
		for _, p := range points[start:end] {
			vertices = append(vertices, Vertex{X: p.X, Y: p.Y})
		}
		out = append(out, vertices)
	}
	return out
}

// ringArea is the signed shoelace area of a ring. Negative for clockwise
// rings in a y-up frame.
func ringArea(vertices []Vertex) float64 {
	var sum float64
	for i, v := range vertices {
		next := vertices[(i+1)%len(vertices)]
		sum += v.X*next.Y - next.X*v.Y
	}
	return sum / 2
}
