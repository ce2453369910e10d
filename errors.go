package geolbl

import "fmt"

// UnsupportedProjectionError reports an EPSG code that the projection
// library has no definition for.
type UnsupportedProjectionError struct {
	EPSG int
}

func (e *UnsupportedProjectionError) Error() string {
	return fmt.Sprintf("unsupported projection: EPSG:%d is unknown", e.EPSG)
}

// ToolMismatchError reports a geometry that cannot be expressed by the
// declared job tool. Feature is the zero-based index of the offending
// feature, or -1 when the input has no feature indexing (e.g. masks).
type ToolMismatchError struct {
	Tool    ToolType
	Ring    RingKind
	Feature int
}

func (e *ToolMismatchError) Error() string {
	if e.Feature < 0 {
		return fmt.Sprintf("tool mismatch: %s geometry cannot be mapped to a %q job", e.Ring, e.Tool)
	}
	return fmt.Sprintf("tool mismatch: feature %d has %s geometry, which cannot be mapped to a %q job",
		e.Feature, e.Ring, e.Tool)
}
