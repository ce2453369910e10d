package geolbl

// Binary raster mask vectorization.

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// MaskToVertices traces the boundary of the foreground region of a binary
// mask and returns it as one polygon contour, with each vertex normalized by
// the mask width and height. Pixels with luma >= 128 count as foreground.
//
// The walk follows the boundary over the pixel-corner lattice with the
// foreground on its left, emitting a vertex at every turn, so collinear
// boundary points collapse into their end corners. A single connected
// foreground region is assumed; an all-zero mask, or a walk that fails to
// close, returns an empty list, which callers must check for before
// building an annotation.
func MaskToVertices(mask image.Image) []Vertex {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	fg := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		gray := color.GrayModel.Convert(mask.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
		return gray.Y >= 128
	}

	// The start corner is the top-left corner of the first foreground pixel
	// in row-major order. Both pixels above it and the pixel to its left are
	// background, so walking downward keeps the foreground on the left.
	sx, sy := -1, -1
	for y := 0; y < h && sx < 0; y++ {
		for x := 0; x < w; x++ {
			if fg(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx < 0 {
		return nil
	}

	cx, cy := sx, sy
	dx, dy := 0, 1
	vertices := []Vertex{{X: float64(sx) / float64(w), Y: float64(sy) / float64(h)}}

	// Guard against non-terminating walks on malformed input.
	closed := false
	for steps := 4 * (w + 1) * (h + 1); steps > 0; steps-- {
		// The two pixels ahead of the corner, left and right of the
		// direction of travel.
		lx, ly := dy, -dx
		rx, ry := -dy, dx
		frontLeft := fg(cx+(dx+lx-1)/2, cy+(dy+ly-1)/2)
		frontRight := fg(cx+(dx+rx-1)/2, cy+(dy+ry-1)/2)

		ndx, ndy := dx, dy
		if !frontLeft {
			ndx, ndy = lx, ly // the foreground ends here, turn left to follow it
		} else if frontRight {
			ndx, ndy = rx, ry // foreground on both sides, turn right
		}

		if ndx != dx || ndy != dy {
			vertices = append(vertices, Vertex{X: float64(cx) / float64(w), Y: float64(cy) / float64(h)})
			dx, dy = ndx, ndy
			continue
		}

		cx += dx
		cy += dy
		if cx == sx && cy == sy {
			closed = true
			break
		}
	}
	if !closed {
		// Better no contour than a truncated one.
		return nil
	}

	return vertices
}

// FromMask loads the single-channel raster at path, vectorizes its
// foreground and returns the job-response for the given job. A mask with no
// foreground produces a response with zero annotations.
func FromMask(path string, job Job, jobName, category string) (LabelResponse, error) {
	if !job.Accepts(RingExterior) {
		return nil, &ToolMismatchError{Tool: job.Tool, Ring: RingExterior, Feature: -1}
	}

	mask, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}

	vertices := MaskToVertices(mask)
	if len(vertices) == 0 {
		return LabelResponse{jobName: JobResponse{Annotations: []Annotation{}}}, nil
	}

	a, err := newAnnotation(job, category)
	if err != nil {
		return nil, err
	}
	a.BoundingPoly = []BoundingPolyRing{{NormalizedVertices: vertices}}

	return LabelResponse{jobName: JobResponse{Annotations: []Annotation{a}}}, nil
}
