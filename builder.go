package geolbl

// Mapping of extracted rings to annotation records.

// BuildAnnotations maps the rings of one feature to annotation records for
// the given job, categorised under the single category name.
//
// Marker jobs get one record per point ring, polyline jobs one record per
// line ring. The polygon-family tools (rectangle, polygon, semantic) get one
// record per ring group: the exterior ring first in boundingPoly, the
// group's hole rings appended in extraction order. Each record gets a fresh
// mid; the rings of one group share theirs.
//
// Returns a *ToolMismatchError (with Feature set to featureIndex) when a
// ring kind is not expressible by the job's tool.
func BuildAnnotations(rings []Ring, job Job, category string, featureIndex int) ([]Annotation, error) {
	var annotations []Annotation

	// Index of the boundingPoly record per ring group, for hole attachment.
	groupRecord := make(map[int]int)

	for _, r := range rings {
		if !job.Accepts(r.Kind) {
			return nil, &ToolMismatchError{Tool: job.Tool, Ring: r.Kind, Feature: featureIndex}
		}

		switch r.Kind {
		case RingPoint:
			a, err := newAnnotation(job, category)
			if err != nil {
				return nil, err
			}
			point := r.Vertices[0]
			a.Point = &point
			annotations = append(annotations, a)

		case RingLine:
			a, err := newAnnotation(job, category)
			if err != nil {
				return nil, err
			}
			a.Polyline = r.Vertices
			annotations = append(annotations, a)

		case RingExterior:
			a, err := newAnnotation(job, category)
			if err != nil {
				return nil, err
			}
			a.BoundingPoly = []BoundingPolyRing{{NormalizedVertices: r.Vertices}}
			groupRecord[r.Group] = len(annotations)
			annotations = append(annotations, a)

		case RingHole:
			i, ok := groupRecord[r.Group]
			if !ok {
				// Cannot happen with ExtractRings output; guard against
				// hand-built ring lists.
				return nil, &ToolMismatchError{Tool: job.Tool, Ring: r.Kind, Feature: featureIndex}
			}
			annotations[i].BoundingPoly = append(annotations[i].BoundingPoly,
				BoundingPolyRing{NormalizedVertices: r.Vertices})
		}
	}

	return annotations, nil
}

// newAnnotation creates a record of the job's tool type with a fresh mid and
// the validated category reference attached.
func newAnnotation(job Job, category string) (Annotation, error) {
	refs, err := appendCategory(nil, job, category, 0)
	if err != nil {
		return Annotation{}, err
	}
	return Annotation{
		Categories: refs,
		MID:        newMID(),
		Type:       string(job.Tool),
	}, nil
}
