// Package geolbl converts georeferenced geometry (ESRI shapefiles) and binary
// raster masks into the annotation-platform job-response format used for
// label imports.
package geolbl

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/google/uuid"
)

// Vertex is a single coordinate pair. In annotation output it is normalized
// to [0,1] relative to the asset extent, unless the conversion targets a
// geographic frame.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CategoryRef references one category of the job's vocabulary from an
// annotation. Confidence is optional and omitted when zero.
type CategoryRef struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence,omitempty"`
}

// BoundingPolyRing is one ring of a boundingPoly. The first ring of a
// boundingPoly is the exterior, any following rings are holes.
type BoundingPolyRing struct {
	NormalizedVertices []Vertex `json:"normalizedVertices"`
}

// Annotation is a single annotation record in the platform's job-response
// schema. Exactly one of Point, Polyline and BoundingPoly is set, depending
// on Type.
type Annotation struct {
	Categories   []CategoryRef      `json:"categories"`
	MID          string             `json:"mid"`
	Type         string             `json:"type"`
	Point        *Vertex            `json:"point,omitempty"`
	Polyline     []Vertex           `json:"polyline,omitempty"`
	BoundingPoly []BoundingPolyRing `json:"boundingPoly,omitempty"`
}

// JobResponse holds the annotations produced for one job.
type JobResponse struct {
	Annotations []Annotation `json:"annotations"`
}

// LabelResponse maps job names to their responses. It is the unit that is
// serialized into a label-import payload.
type LabelResponse map[string]JobResponse

// AnnotatedAsset pairs one asset file with the label response produced for
// it. FilePath points at the asset image when one is known (required for the
// TFRecord export), otherwise at the geometry input the labels came from.
type AnnotatedAsset struct {
	FilePath string
	Labels   LabelResponse
}

// newMID returns a fresh annotation identifier. One mid is allocated per
// logical annotation; all rings of a multi-part polygon group share it.
func newMID() string {
	return uuid.NewString()
}

// WriteLabels writes the label response as indented JSON to outFile.
func WriteLabels(outFile string, labels LabelResponse) error {
	enc, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(outFile, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", outFile, err)
	}
	return nil
}
