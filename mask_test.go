package geolbl

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maskFromRows builds a grayscale mask from rows of '.' (background) and
// '#' (foreground).
func maskFromRows(rows ...string) *image.Gray {
	h := len(rows)
	w := len(rows[0])
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x := 0; x < w; x++ {
			if row[x] == '#' {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

func TestMaskToVertices_HollowRing(t *testing.T) {
	mask := maskFromRows(
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)

	vertices := MaskToVertices(mask)

	assert.Equal(t, []Vertex{
		{X: 0.2, Y: 0.2},
		{X: 0.2, Y: 0.8},
		{X: 0.8, Y: 0.8},
		{X: 0.8, Y: 0.2},
	}, vertices)
}

func TestMaskToVertices_AllZero(t *testing.T) {
	mask := maskFromRows(
		"....",
		"....",
		"....",
	)

	assert.Empty(t, MaskToVertices(mask))
	// Idempotent: a second call yields the same empty result.
	assert.Empty(t, MaskToVertices(mask))
}

func TestMaskToVertices_FullMask(t *testing.T) {
	mask := maskFromRows(
		"####",
		"####",
	)

	vertices := MaskToVertices(mask)

	assert.Equal(t, []Vertex{
		{X: 0, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 1},
		{X: 1, Y: 0},
	}, vertices)
}

func TestMaskToVertices_LShape(t *testing.T) {
	mask := maskFromRows(
		"....",
		".#..",
		".##.",
		"....",
	)

	vertices := MaskToVertices(mask)

	// Six corners, traced from the top-left corner with the foreground on
	// the left of the walk; collinear boundary points are collapsed.
	assert.Equal(t, []Vertex{
		{X: 0.25, Y: 0.25},
		{X: 0.25, Y: 0.75},
		{X: 0.75, Y: 0.75},
		{X: 0.75, Y: 0.5},
		{X: 0.5, Y: 0.5},
		{X: 0.5, Y: 0.25},
	}, vertices)
}

func TestMaskToVertices_Serpentine(t *testing.T) {
	mask := maskFromRows(
		"#####",
		"....#",
		"#####",
		"#....",
		"#####",
	)

	vertices := MaskToVertices(mask)

	// A long winding boundary still closes into one complete contour.
	require.NotEmpty(t, vertices)
	assert.Equal(t, Vertex{X: 0, Y: 0}, vertices[0])
	assert.Zero(t, len(vertices)%2, "a rectilinear contour has an even corner count")
	for _, v := range vertices {
		assert.GreaterOrEqual(t, v.X, 0.0)
		assert.LessOrEqual(t, v.X, 1.0)
		assert.GreaterOrEqual(t, v.Y, 0.0)
		assert.LessOrEqual(t, v.Y, 1.0)
	}
}

func TestFromMask(t *testing.T) {
	dir := t.TempDir()
	maskPath := filepath.Join(dir, "mask.png")
	writePNG(t, maskPath, maskFromRows(
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	))

	job := Job{Tool: ToolSemantic, Categories: map[string]CategoryMeta{"WATER": {}}}
	labels, err := FromMask(maskPath, job, "SEGMENTATION_JOB", "WATER")
	require.NoError(t, err)

	annotations := labels["SEGMENTATION_JOB"].Annotations
	require.Len(t, annotations, 1)
	a := annotations[0]
	assert.Equal(t, "semantic", a.Type)
	assert.NotEmpty(t, a.MID)
	require.Len(t, a.BoundingPoly, 1)
	assert.Len(t, a.BoundingPoly[0].NormalizedVertices, 4)
	require.Len(t, a.Categories, 1)
	assert.Equal(t, "WATER", a.Categories[0].Name)
}

func TestFromMask_NoForeground(t *testing.T) {
	dir := t.TempDir()
	maskPath := filepath.Join(dir, "empty.png")
	writePNG(t, maskPath, maskFromRows("...", "..."))

	job := Job{Tool: ToolSemantic}
	labels, err := FromMask(maskPath, job, "SEGMENTATION_JOB", "WATER")
	require.NoError(t, err)
	assert.Empty(t, labels["SEGMENTATION_JOB"].Annotations)
}

func TestFromMask_ToolMismatch(t *testing.T) {
	job := Job{Tool: ToolMarker}
	_, err := FromMask("unused.png", job, "POINTS_JOB", "POI")

	var mismatch *ToolMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, ToolMarker, mismatch.Tool)
}

// writePNG encodes the image to path.
func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}
