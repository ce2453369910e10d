package geolbl

// Job interface descriptors and their validation rules.

import (
	"fmt"
	"io/ioutil"
	"sort"

	"gopkg.in/yaml.v3"
)

// ToolType identifies the annotation tool a job is declared with.
type ToolType string

// The known annotation tools.
const (
	ToolMarker    ToolType = "marker"
	ToolPolyline  ToolType = "polyline"
	ToolRectangle ToolType = "rectangle"
	ToolPolygon   ToolType = "polygon"
	ToolSemantic  ToolType = "semantic"
	ToolPose      ToolType = "pose"
)

// CategoryMeta is the per-category metadata of a job's vocabulary.
type CategoryMeta struct {
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// Job describes one labeling task: the tool it uses, whether a response is
// required, and its category vocabulary. Jobs are immutable caller-supplied
// configuration.
type Job struct {
	Tool       ToolType                `yaml:"tool"`
	Required   bool                    `yaml:"required,omitempty"`
	Categories map[string]CategoryMeta `yaml:"categories,omitempty"`
}

// Jobs maps job names to their descriptors.
type Jobs map[string]Job

// jobsFile is the on-disk layout of a jobs config file.
type jobsFile struct {
	Jobs Jobs `yaml:"jobs"`
}

// toolRings is the static compatibility table from tool type to the ring
// kinds it accepts. Tools absent from the table (pose) accept no geometry.
var toolRings = map[ToolType]map[RingKind]bool{
	ToolMarker:    {RingPoint: true},
	ToolPolyline:  {RingLine: true},
	ToolRectangle: {RingExterior: true, RingHole: true},
	ToolPolygon:   {RingExterior: true, RingHole: true},
	ToolSemantic:  {RingExterior: true, RingHole: true},
	ToolPose:      {},
}

// Accepts reports whether the job's tool can express the given ring kind.
func (j Job) Accepts(kind RingKind) bool {
	return toolRings[j.Tool][kind]
}

// validate checks a job descriptor against the closed tool enum.
func (j Job) validate(name string) error {
	if _, known := toolRings[j.Tool]; !known {
		return fmt.Errorf("job %q: unknown tool %q", name, j.Tool)
	}
	return nil
}

// LoadJobs reads and validates job descriptors from the YAML file at path.
func LoadJobs(path string) (Jobs, error) {
	enc, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file jobsFile
	if err := yaml.Unmarshal(enc, &file); err != nil {
		return nil, fmt.Errorf("failed to parse jobs from %q: %v", path, err)
	}
	if len(file.Jobs) == 0 {
		return nil, fmt.Errorf("no jobs defined in %q", path)
	}

	// Validate in name order so errors are deterministic.
	names := make([]string, 0, len(file.Jobs))
	for name := range file.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := file.Jobs[name].validate(name); err != nil {
			return nil, err
		}
	}

	return file.Jobs, nil
}

// appendCategory appends a category reference to refs after validating it
// against the job: the name must be part of the job's vocabulary (when one
// is declared) and must not already be referenced.
func appendCategory(refs []CategoryRef, job Job, name string, confidence float64) ([]CategoryRef, error) {
	if len(job.Categories) > 0 {
		if _, ok := job.Categories[name]; !ok {
			return nil, fmt.Errorf("category %q is not part of the job's vocabulary", name)
		}
	}
	for _, ref := range refs {
		if ref.Name == name {
			return nil, fmt.Errorf("category %q is already referenced", name)
		}
	}
	return append(refs, CategoryRef{Name: name, Confidence: confidence}), nil
}
