package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelNotTrained is returned when a model is asked to predict before training finished.
var ErrModelNotTrained = errors.New("risk model has not been trained")

// MissingAttributeError reports a raw record that lacks a required attribute.
type MissingAttributeError struct {
	Domain    Domain
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing attribute %q in %s record", e.Attribute, e.Domain)
}

// SchemaMismatchError reports a feature map whose keys differ from the schema.
type SchemaMismatchError struct {
	Missing    []string
	Unexpected []string
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ","))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ","))
	}
	if len(parts) == 0 {
		return "feature vector does not match schema"
	}
	return "feature vector does not match schema: " + strings.Join(parts, "; ")
}

// UnknownFeatureError reports a field name that is not part of the schema.
type UnknownFeatureError struct {
	Scenario string // empty outside of scenario simulation
	Field    string
}

func (e *UnknownFeatureError) Error() string {
	if e.Scenario != "" {
		return fmt.Sprintf("scenario %q references unknown feature %q", e.Scenario, e.Field)
	}
	return fmt.Sprintf("unknown feature %q", e.Field)
}

// IsInputError reports whether err comes from bad caller input rather than a
// failing dependency. The HTTP and MCP layers use it to pick a status.
func IsInputError(err error) bool {
	var missing *MissingAttributeError
	var mismatch *SchemaMismatchError
	var unknown *UnknownFeatureError
	var region *RegionNotFoundError
	var geom *GeometryError
	return errors.As(err, &missing) ||
		errors.As(err, &mismatch) ||
		errors.As(err, &unknown) ||
		errors.As(err, &region) ||
		errors.As(err, &geom)
}

// RegionNotFoundError reports a region id unknown to a data source or the centroid catalog.
type RegionNotFoundError struct {
	RegionID string
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("region not found: %s", e.RegionID)
}

// GeometryError reports an unusable region request.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return e.Reason
}
