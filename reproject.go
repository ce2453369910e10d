package geolbl

// Coordinate reprojection between EPSG reference systems and normalization
// into the [0,1] image space of an asset.

import (
	"math"

	"github.com/wroge/wgs84"
)

// EPSG4326 is the geographic WGS 84 frame, the common target for
// reprojection before normalization.
const EPSG4326 = 4326

// Transformer converts a coordinate pair between two reference systems.
type Transformer func(x, y float64) (float64, float64)

// NewTransformer builds a transformer from one EPSG code to another.
//
// Returns an *UnsupportedProjectionError if either code is unknown to the
// projection library.
func NewTransformer(fromEPSG, toEPSG int) (Transformer, error) {
	repo := wgs84.EPSG()
	from := repo.Code(fromEPSG)
	if from == nil {
		return nil, &UnsupportedProjectionError{EPSG: fromEPSG}
	}
	to := repo.Code(toEPSG)
	if to == nil {
		return nil, &UnsupportedProjectionError{EPSG: toEPSG}
	}

	transform := wgs84.Transform(from, to)
	return func(x, y float64) (float64, float64) {
		x2, y2, _ := transform(x, y, 0)
		return x2, y2
	}, nil
}

// ReprojectVertices reprojects all vertices from one EPSG code to another,
// preserving order.
func ReprojectVertices(vertices []Vertex, fromEPSG, toEPSG int) ([]Vertex, error) {
	transform, err := NewTransformer(fromEPSG, toEPSG)
	if err != nil {
		return nil, err
	}

	out := make([]Vertex, len(vertices))
	for i, v := range vertices {
		out[i].X, out[i].Y = transform(v.X, v.Y)
	}
	return out, nil
}

// Extent is a bounding extent in the source (or reprojected) frame. The zero
// value is empty and extended by the first coordinate added to it.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
	set                    bool
}

// Add extends the extent to cover (x, y).
func (e *Extent) Add(x, y float64) {
	if !e.set {
		e.MinX, e.MaxX = x, x
		e.MinY, e.MaxY = y, y
		e.set = true
		return
	}
	e.MinX = math.Min(e.MinX, x)
	e.MaxX = math.Max(e.MaxX, x)
	e.MinY = math.Min(e.MinY, y)
	e.MaxY = math.Max(e.MaxY, y)
}

// AddVertices extends the extent to cover all vertices of all rings.
func (e *Extent) AddVertices(rings []Ring) {
	for _, r := range rings {
		for _, v := range r.Vertices {
			e.Add(v.X, v.Y)
		}
	}
}

// Normalize maps (x, y) into [0,1] image space relative to the extent. The
// projected y axis points up while image y points down, so y is flipped.
// Degenerate extents (zero width or height) map the collapsed axis to 0.
func (e Extent) Normalize(x, y float64) (float64, float64) {
	var nx, ny float64
	if w := e.MaxX - e.MinX; w > 0 {
		nx = (x - e.MinX) / w
	}
	if h := e.MaxY - e.MinY; h > 0 {
		ny = (e.MaxY - y) / h
	}
	return nx, ny
}

// normalizeRings maps every ring vertex into the extent's image space,
// in place.
func normalizeRings(rings []Ring, extent Extent) {
	for _, r := range rings {
		for i, v := range r.Vertices {
			r.Vertices[i].X, r.Vertices[i].Y = extent.Normalize(v.X, v.Y)
		}
	}
}
