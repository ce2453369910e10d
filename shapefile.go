package geolbl

// Shapefile to job-response conversion.

import (
	"fmt"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
)

// ShapefileOptions controls how shapefile coordinates are interpreted.
type ShapefileOptions struct {
	// SourceEPSG is the reference system of all features. Zero means the
	// coordinates are taken as-is (already in the target frame).
	SourceEPSG int

	// EPSGField names a numeric dbf attribute carrying a per-feature EPSG
	// code. When set it overrides SourceEPSG.
	EPSGField string

	// Geographic keeps coordinates in EPSG:4326 instead of normalizing them
	// into [0,1] against the combined feature extent.
	Geographic bool
}

// FromShapefile reads the shapefile at path and converts its features into
// the job-response format for the given job.
//
// Features with a source EPSG code are reprojected to EPSG:4326; unless
// opts.Geographic is set, all coordinates are then normalized into [0,1]
// against the combined extent of the converted features. A failure on any
// feature aborts the whole conversion.
func FromShapefile(path string, job Job, jobName, category string, opts ShapefileOptions) (LabelResponse, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	// Locate the per-feature EPSG attribute if one was named.
	epsgField := -1
	if opts.EPSGField != "" {
		for i, f := range reader.Fields() {
			if strings.EqualFold(f.String(), opts.EPSGField) {
				epsgField = i
				break
			}
		}
		if epsgField < 0 {
			return nil, fmt.Errorf("shapefile %q has no attribute field %q", path, opts.EPSGField)
		}
	}

	transformers := make(map[int]Transformer)
	var features [][]Ring
	var extent Extent

	for row := 0; reader.Next(); row++ {
		_, shape := reader.Shape()
		rings := ExtractRings(shape)

		epsg := opts.SourceEPSG
		if epsgField >= 0 {
			// dbf records are NUL-padded by some writers, including go-shp's.
			attr := strings.Trim(reader.ReadAttribute(row, epsgField), " \x00")
			if epsg, err = strconv.Atoi(attr); err != nil {
				return nil, fmt.Errorf("feature %d: invalid EPSG attribute %q: %v", row, attr, err)
			}
		}

		if epsg != 0 && epsg != EPSG4326 {
			transform, ok := transformers[epsg]
			if !ok {
				if transform, err = NewTransformer(epsg, EPSG4326); err != nil {
					return nil, fmt.Errorf("feature %d: %w", row, err)
				}
				transformers[epsg] = transform
			}
			for _, r := range rings {
				for i, v := range r.Vertices {
					r.Vertices[i].X, r.Vertices[i].Y = transform(v.X, v.Y)
				}
			}
		}

		extent.AddVertices(rings)
		features = append(features, rings)
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}

	annotations := make([]Annotation, 0, len(features))
	for i, rings := range features {
		if !opts.Geographic {
			normalizeRings(rings, extent)
		}
		built, err := BuildAnnotations(rings, job, category, i)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, built...)
	}

	return LabelResponse{jobName: {Annotations: annotations}}, nil
}
