package geolbl

import (
	"image"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertShapefiles(t *testing.T) {
	dir := t.TempDir()
	writeShapefile(t, filepath.Join(dir, "a.shp"), shp.POINT, []shp.Shape{
		&shp.Point{X: 1, Y: 1},
		&shp.Point{X: 2, Y: 2},
	})
	writeShapefile(t, filepath.Join(dir, "b.shp"), shp.POINT, []shp.Shape{
		&shp.Point{X: 5, Y: 5},
	})

	paths, err := ShapefilesInDir(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	job := Job{Tool: ToolMarker}
	assets, err := ConvertShapefiles(paths, job, "POINTS_JOB", "POI", ShapefileOptions{}, "")
	require.NoError(t, err)

	require.Len(t, assets, 2, "assets come back in input order")
	assert.Equal(t, paths[0], assets[0].FilePath)
	assert.Len(t, assets[0].Labels["POINTS_JOB"].Annotations, 2)
	assert.Equal(t, paths[1], assets[1].FilePath)
	assert.Len(t, assets[1].Labels["POINTS_JOB"].Annotations, 1)
}

func TestConvertShapefiles_ImagePairing(t *testing.T) {
	shpDir := t.TempDir()
	imageDir := t.TempDir()
	writeShapefile(t, filepath.Join(shpDir, "tile_007.shp"), shp.POINT, []shp.Shape{
		&shp.Point{X: 0, Y: 0},
	})
	imagePath := filepath.Join(imageDir, "tile_007.png")
	writePNG(t, imagePath, image.NewGray(image.Rect(0, 0, 4, 4)))

	job := Job{Tool: ToolMarker}
	assets, err := ConvertShapefiles([]string{filepath.Join(shpDir, "tile_007.shp")},
		job, "POINTS_JOB", "POI", ShapefileOptions{}, imageDir)
	require.NoError(t, err)

	require.Len(t, assets, 1)
	assert.Equal(t, imagePath, assets[0].FilePath,
		"the asset points at the like-named image")
}

func TestConvertShapefiles_ErrorAborts(t *testing.T) {
	dir := t.TempDir()
	writeShapefile(t, filepath.Join(dir, "a.shp"), shp.POINT, []shp.Shape{
		&shp.Point{X: 1, Y: 1},
	})

	job := Job{Tool: ToolMarker}
	_, err := ConvertShapefiles([]string{filepath.Join(dir, "a.shp")},
		job, "POINTS_JOB", "POI", ShapefileOptions{SourceEPSG: 999999}, "")

	var unsupported *UnsupportedProjectionError
	require.ErrorAs(t, err, &unsupported)
}
