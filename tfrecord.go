package geolbl

// TFRecord object detection export for converted annotations.

import (
	"fmt"
	"image"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow

	_ "image/jpeg"
	_ "image/png"
)

// annotationBBox returns the normalized bounding box of an annotation's
// geometry, clamped to [0,1]. ok is false for annotations without geometry.
func annotationBBox(a Annotation) (xmin, ymin, xmax, ymax float32, ok bool) {
	var vertices []Vertex
	switch {
	case a.Point != nil:
		vertices = []Vertex{*a.Point}
	case len(a.Polyline) > 0:
		vertices = a.Polyline
	case len(a.BoundingPoly) > 0:
		vertices = a.BoundingPoly[0].NormalizedVertices
	}
	if len(vertices) == 0 {
		return 0, 0, 0, 0, false
	}

	clamp := func(v float64) float32 {
		return float32(math.Min(1, math.Max(0, v)))
	}

	xmin, ymin = clamp(vertices[0].X), clamp(vertices[0].Y)
	xmax, ymax = xmin, ymin
	for _, v := range vertices[1:] {
		x, y := clamp(v.X), clamp(v.Y)
		if x < xmin {
			xmin = x
		}
		if x > xmax {
			xmax = x
		}
		if y < ymin {
			ymin = y
		}
		if y > ymax {
			ymax = y
		}
	}
	return xmin, ymin, xmax, ymax, true
}

// toTFExample converts one annotated asset to a TensorFlow Example,
// assigning label map IDs for new category names as they appear.
func toTFExample(asset AnnotatedAsset, labelMap map[string]int32, nextID *int32) (*tensorflow.Example, error) {
	img, format, err := decodeImageConfig(asset.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the image metadata: %v", err)
	}
	imgData, err := os.ReadFile(asset.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %v", err)
	}

	f := make(map[string]interface{}, 16)
	f["image/height"] = img.Height
	f["image/width"] = img.Width
	f["image/filename"] = asset.FilePath
	f["image/source_id"] = asset.FilePath
	f["image/encoded"] = imgData
	f["image/format"] = format

	// Flatten the annotations of all jobs in a stable order.
	jobNames := make([]string, 0, len(asset.Labels))
	for name := range asset.Labels {
		jobNames = append(jobNames, name)
	}
	sort.Strings(jobNames)

	var xmins, ymins, xmaxs, ymaxs []float32
	var classes []string
	var classIDs []int64
	for _, name := range jobNames {
		for _, a := range asset.Labels[name].Annotations {
			xmin, ymin, xmax, ymax, ok := annotationBBox(a)
			if !ok || len(a.Categories) == 0 {
				continue
			}
			class := a.Categories[0].Name

			// Assign the ID for the category, selecting a new one if no
			// mapping exists.
			id := labelMap[class]
			if id == 0 {
				id = *nextID
				labelMap[class] = id
				*nextID++
			}

			xmins = append(xmins, xmin)
			ymins = append(ymins, ymin)
			xmaxs = append(xmaxs, xmax)
			ymaxs = append(ymaxs, ymax)
			classes = append(classes, class)
			classIDs = append(classIDs, int64(id))
		}
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return example.New(f), nil
}

// WriteTFRecord converts the annotated assets to TensorFlow Examples and
// writes them to one or more TFRecord files stored under recordFilePath
// (with suffixes added when numShards > 1).
//
// The category to ID mapping is loaded from labelMapPath when it exists,
// extended with new categories, and written back in prototxt form.
func WriteTFRecord(recordFilePath, labelMapPath string, assets []AnnotatedAsset, numShards int) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if numShards <= 0 {
		numShards = 1
	}

	labelMap, maxID, err := loadLabelMap(labelMapPath)
	if err == nil {
		log.Print("Label map loaded successfully")
	} else if os.IsNotExist(err) {
		log.Print("Creating a new label map")
		labelMap = make(map[string]int32)
	} else {
		return fmt.Errorf("failed to read the label map from %q: %v", labelMapPath, err)
	}
	nextID := maxID + 1

	var shardFile *os.File
	shardSize := int(math.Ceil(float64(len(assets)) / float64(numShards)))
	shardIdx := -1

	// Convert and serialise one asset at a time.
	for i, asset := range assets {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			shardIdx++

			if shardFile != nil {
				_ = shardFile.Close()
				shardFile = nil
			}

			shardPath := recordFilePath
			if numShards > 1 {
				shardPath += fmt.Sprintf("-%05d-of-%05d", shardIdx, numShards)
			}
			f, err := os.Create(shardPath)
			if err != nil {
				return fmt.Errorf("failed to create shard at %q: %v", shardPath, err)
			}
			shardFile = f
		}

		tfExample, err := toTFExample(asset, labelMap, &nextID)
		if err != nil {
			log.Printf("Failed to convert %q: %v", asset.FilePath, err)
			continue
		}

		if err := writeTFRecordExample(shardFile, tfExample); err != nil {
			_ = shardFile.Close()
			return fmt.Errorf("failed to write the example for %q: %v", asset.FilePath, err)
		}
	}

	if shardFile != nil {
		shardFile.Close()
	}

	return saveLabelMap(labelMapPath, labelMap)
}

// writeTFRecordExample serialises the example and writes it as a TFRecord
// to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}
	return tfrecord.Write(w, enc)
}

// decodeImageConfig opens the file at path and returns the results of
// image.DecodeConfig.
func decodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close()

	return image.DecodeConfig(file)
}

// saveLabelMap writes the label map to path in prototxt form, ordered by ID.
func saveLabelMap(path string, labelMap map[string]int32) (err error) {
	names := make([]string, 0, len(labelMap))
	for name := range labelMap {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return labelMap[names[i]] < labelMap[names[j]] })

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create the label map file %q: %v", path, err)
	}
	defer closeWithErrCheck(file, &err)

	for _, name := range names {
		if _, err := fmt.Fprintf(file, "item {\n  id: %d\n  name: %q\n}\n", labelMap[name], name); err != nil {
			return fmt.Errorf("failed to write the label map %q: %v", path, err)
		}
	}
	return nil
}

// loadLabelMap loads the prototxt label map from path. It also returns the
// largest ID value encountered in the map.
//
// If an error occurs because the file does not exist, then os.IsNotExist
// will return true for the error.
func loadLabelMap(path string) (map[string]int32, int32, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, 0, err
	}

	labelMap := make(map[string]int32)
	var maxID int32
	var id int32
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "id:"):
			v, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "id:")), 10, 32)
			if err != nil || v <= 0 {
				return nil, 0, fmt.Errorf("invalid id entry %q", line)
			}
			id = int32(v)
		case strings.HasPrefix(line, "name:"):
			name, err := strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "name:")))
			if err != nil || name == "" || id <= 0 {
				return nil, 0, fmt.Errorf("invalid name entry %q", line)
			}
			labelMap[name] = id
			if id > maxID {
				maxID = id
			}
			id = 0
		}
	}

	return labelMap, maxID, nil
}
