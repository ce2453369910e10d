// Converts ESRI shapefiles and binary raster masks into the
// annotation-platform job-response format used for label imports.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sensorable/geolbl"
)

var (
	jobsFilePath string // The YAML file with the job interface descriptors.
	jobName      string // The job to convert into.
	categoryName string // The category to attach to every annotation.

	shpPath  string // The input shapefile or a directory of shapefiles.
	maskPath string // The input raster mask.

	sourceEPSG int    // The EPSG code of the shapefile coordinates.
	epsgField  string // The dbf attribute with a per-feature EPSG code.
	geographic bool   // Emit EPSG:4326 coordinates instead of normalizing.

	outPath      string // The output JSON file, or directory for batch input.
	imageDirPath string // The directory with the asset images.

	tfRecordPath         string // The TFRecord output file.
	tfRecordLabelMapPath string // The TFRecord label map file.
	numShardFiles        int    // The number of shard files to create.

	batchInput bool // Whether -shp names a directory.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  shapefile input:\t-jobs <file> -job <name> -category <name>"+
				" -shp <file|dir> -out <file|dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  mask input:\t\t-jobs <file> -job <name> -category <name>"+
				" -mask <file> -out <file>")
		_, _ = fmt.Fprintln(os.Stderr, "  tfrecord output:\t-images <dir> -tfrecord-out <file>"+
				" -tfrecord-label-map-file <file> [-num-shards]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	flag.StringVar(&jobsFilePath, "jobs", jobsFilePath,
		"The `path` to the YAML job interface file")
	flag.StringVar(&jobName, "job", jobName,
		"The `name` of the job to convert into")
	flag.StringVar(&categoryName, "category", categoryName,
		"The category `name` to attach to every annotation")

	flag.StringVar(&shpPath, "shp", shpPath,
		"The `path` to the input shapefile, or a directory of shapefiles")
	flag.StringVar(&maskPath, "mask", maskPath,
		"The `path` to the input raster mask")

	flag.IntVar(&sourceEPSG, "epsg", 0,
		"The EPSG `code` of the shapefile coordinates (zero uses them as-is)")
	flag.StringVar(&epsgField, "epsg-field", epsgField,
		"The dbf attribute `name` carrying a per-feature EPSG code")
	flag.BoolVar(&geographic, "geographic", false,
		"Emit EPSG:4326 coordinates instead of normalizing to the extent")

	flag.StringVar(&outPath, "out", outPath,
		"The `path` to the output JSON file (or directory when -shp is a directory)")
	flag.StringVar(&imageDirPath, "images", imageDirPath,
		"The `path` to the asset image directory (matched to shapefiles by base name;"+
				" required for TFRecord output)")

	flag.StringVar(&tfRecordPath, "tfrecord-out", tfRecordPath,
		"The `path` to the TFRecord output file")
	flag.StringVar(&tfRecordLabelMapPath, "tfrecord-label-map-file", tfRecordLabelMapPath,
		"The TFRecord label map file `path`")
	flag.IntVar(&numShardFiles, "num-shards", 1,
		"The number of shard files to create (TFRecord only)")

	flag.Parse()

	// Validate input arguments.
	if jobsFilePath == "" || jobName == "" || categoryName == "" {
		printUsageAndExit("Missing -jobs, -job or -category argument")
	}
	if (shpPath == "") == (maskPath == "") {
		printUsageAndExit("Exactly one of -shp and -mask must be given")
	}
	if outPath == "" {
		printUsageAndExit("Missing output path argument")
	}

	if shpPath != "" {
		shpPath = filepath.Clean(shpPath)
		info, err := os.Stat(shpPath)
		if err != nil {
			printUsageAndExit("Cannot access the input path: ", err)
		}
		batchInput = info.IsDir()
	}
	if maskPath != "" && tfRecordPath != "" {
		printUsageAndExit("TFRecord output is only supported for shapefile input")
	}

	// Validate TFRecord arguments.
	if tfRecordPath != "" {
		if tfRecordLabelMapPath == "" {
			printUsageAndExit("Missing -tfrecord-label-map-file argument")
		}
		if imageDirPath == "" {
			printUsageAndExit("TFRecord output requires -images to pair assets with images")
		}
		tfRecordLabelMapPath = filepath.Clean(tfRecordLabelMapPath)
	}

	outPath = filepath.Clean(outPath)
	if outPath == shpPath || outPath == maskPath {
		printUsageAndExit("The input and output paths cannot be identical")
	}
}

func main() {
	jobs, err := geolbl.LoadJobs(jobsFilePath)
	if err != nil {
		log.Fatal("Failed to load the job interfaces: ", err)
	}
	job, ok := jobs[jobName]
	if !ok {
		log.Fatalf("Job %q is not defined in %s", jobName, jobsFilePath)
	}

	// Mask input.
	if maskPath != "" {
		labels, err := geolbl.FromMask(maskPath, job, jobName, categoryName)
		if err != nil {
			log.Fatal("Conversion failed: ", err)
		}
		if err := geolbl.WriteLabels(outPath, labels); err != nil {
			log.Fatal("Failed to write the labels: ", err)
		}
		log.Print("Successfully wrote labels to ", outPath)
		return
	}

	// Shapefile input.
	paths := []string{shpPath}
	if batchInput {
		if paths, err = geolbl.ShapefilesInDir(shpPath); err != nil {
			log.Fatal("Failed to list the input directory: ", err)
		}
		if len(paths) == 0 {
			log.Fatalf("No shapefiles found in %s", shpPath)
		}
	}

	opts := geolbl.ShapefileOptions{
		SourceEPSG: sourceEPSG,
		EPSGField:  epsgField,
		Geographic: geographic,
	}
	assets, err := geolbl.ConvertShapefiles(paths, job, jobName, categoryName, opts, imageDirPath)
	if err != nil {
		log.Fatal("Conversion failed: ", err)
	}

	// Write the label outputs.
	if batchInput {
		for i, asset := range assets {
			_, baseNoExt := filepath.Split(paths[i])
			baseNoExt = baseNoExt[:len(baseNoExt)-len(filepath.Ext(baseNoExt))]
			labelPath := filepath.Join(outPath, baseNoExt+".json")
			if err := geolbl.WriteLabels(labelPath, asset.Labels); err != nil {
				log.Fatal("Failed to write the labels: ", err)
			}
		}
		log.Printf("Successfully wrote labels for %d shapefiles to %s", len(assets), outPath)
	} else {
		if err := geolbl.WriteLabels(outPath, assets[0].Labels); err != nil {
			log.Fatal("Failed to write the labels: ", err)
		}
		log.Print("Successfully wrote labels to ", outPath)
	}

	// Optional TFRecord export.
	if tfRecordPath != "" {
		if err := geolbl.WriteTFRecord(tfRecordPath, tfRecordLabelMapPath, assets, numShardFiles); err != nil {
			log.Fatal("TFRecord export failed: ", err)
		}
		log.Printf("Successfully wrote %d examples to %s", len(assets), tfRecordPath)
	}
}
