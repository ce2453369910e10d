package geolbl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLabels_JSONShape(t *testing.T) {
	labels := LabelResponse{
		"AREAS_JOB": JobResponse{Annotations: []Annotation{{
			Categories: []CategoryRef{{Name: "HOUSE"}},
			MID:        "mid-1",
			Type:       "semantic",
			BoundingPoly: []BoundingPolyRing{
				{NormalizedVertices: []Vertex{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}},
				{NormalizedVertices: []Vertex{{X: 0.25, Y: 0.25}, {X: 0.5, Y: 0.5}, {X: 0.25, Y: 0.5}}},
			},
		}}},
	}

	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, WriteLabels(path, labels))

	enc, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(enc, &decoded))

	annotations := decoded["AREAS_JOB"]["annotations"]
	require.Len(t, annotations, 1)
	a := annotations[0]

	assert.Equal(t, "semantic", a["type"])
	assert.Equal(t, "mid-1", a["mid"])
	assert.NotContains(t, a, "point", "unused geometry payloads are omitted")
	assert.NotContains(t, a, "polyline")

	boundingPoly, ok := a["boundingPoly"].([]interface{})
	require.True(t, ok)
	require.Len(t, boundingPoly, 2)
	exterior, ok := boundingPoly[0].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, exterior, "normalizedVertices")

	categories, ok := a["categories"].([]interface{})
	require.True(t, ok)
	require.Len(t, categories, 1)
	category, ok := categories[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "HOUSE", category["name"])
	assert.NotContains(t, category, "confidence", "zero confidence is omitted")
}

func TestWriteLabels_MarkerPayload(t *testing.T) {
	labels := LabelResponse{
		"POINTS_JOB": JobResponse{Annotations: []Annotation{{
			Categories: []CategoryRef{{Name: "POI", Confidence: 0.95}},
			MID:        "mid-2",
			Type:       "marker",
			Point:      &Vertex{X: 0.5, Y: 0.5},
		}}},
	}

	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, WriteLabels(path, labels))

	enc, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(enc, &decoded))

	a := decoded["POINTS_JOB"]["annotations"][0]
	point, ok := a["point"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.5, point["x"])
	assert.Equal(t, 0.5, point["y"])

	category := a["categories"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, 0.95, category["confidence"])
}
