package geolbl

// Batch conversion of shapefile directories.

import (
	"log"
	"path/filepath"
	"runtime"
	"sync"
)

// ShapefilesInDir returns the paths of all shapefiles directly in dirPath.
func ShapefilesInDir(dirPath string) ([]string, error) {
	return filesByExtInDir(dirPath, ".shp")
}

// ConvertShapefiles converts every listed shapefile into the job-response
// format on a bounded worker pool.
//
// The returned assets are in input order. When imageDir is non-empty, each
// shapefile is paired with the image in imageDir that shares its base name
// (any extension); assets without a matching image keep the shapefile path.
// The first conversion error aborts the batch.
func ConvertShapefiles(paths []string, job Job, jobName, category string,
		opts ShapefileOptions, imageDir string) ([]AnnotatedAsset, error) {

	// Match shapefiles to their asset images by base name.
	var imageNamesToExt map[string]string
	if imageDir != "" {
		imageFiles, err := filesByExtInDir(imageDir, "")
		if err != nil {
			return nil, err
		}
		imageNamesToExt = mapFileNamesToExtensions(imageFiles)
	}

	log.Printf("Converting %d shapefiles", len(paths))

	numTasks := 2 * runtime.NumCPU()
	if len(paths) < numTasks {
		numTasks = len(paths)
	}
	workQueue := make(chan int, 2*numTasks)
	errors := make(chan error, 1)
	assets := make([]AnnotatedAsset, len(paths))

	trySendError := func(err error) {
		select {
		case errors <- err:
		default:
		}
	}

	var wg sync.WaitGroup
	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		go func() {
			defer wg.Done()
			for idx := range workQueue {
				path := paths[idx]
				labels, err := FromShapefile(path, job, jobName, category, opts)
				if err != nil {
					// Keep draining the queue so the feeder cannot block.
					trySendError(err)
					continue
				}

				filePath := path
				if _, baseNoExt, _, err := splitPath(path); err == nil {
					if ext, found := imageNamesToExt[baseNoExt]; found {
						filePath = filepath.Join(imageDir, baseNoExt+"."+ext)
					}
				}
				assets[idx] = AnnotatedAsset{FilePath: filePath, Labels: labels}
			}
		}()
	}

	for i := range paths {
		workQueue <- i
	}
	close(workQueue)
	wg.Wait()

	close(errors)
	if err := <-errors; err != nil {
		return nil, err
	}

	return assets, nil
}
