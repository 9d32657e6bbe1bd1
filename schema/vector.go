package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// FeatureVector is an immutable set of schema values. It is a value type: copying
// it copies the values, and every modifier returns a new vector.
type FeatureVector struct {
	values [NumFeatures]float64
	valid  bool
}

// NewFeatureVector builds a vector from a field map. The key set must equal the
// schema exactly and every value must be finite.
func NewFeatureVector(m map[string]float64) (FeatureVector, error) {
	if err := CheckFeatureKeys(m); err != nil {
		return FeatureVector{}, err
	}
	var v FeatureVector
	for name, val := range m {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return FeatureVector{}, fmt.Errorf("feature %s has non-finite value %v", name, val)
		}
		v.values[featureIndex[Feature(name)]] = val
	}
	v.valid = true
	return v, nil
}

// FeatureVectorFromValues builds a vector from values given in schema order.
func FeatureVectorFromValues(values []float64) (FeatureVector, error) {
	if len(values) != NumFeatures {
		return FeatureVector{}, fmt.Errorf("expected %d values, got %d", NumFeatures, len(values))
	}
	var v FeatureVector
	for i, val := range values {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return FeatureVector{}, fmt.Errorf("feature %s has non-finite value %v", featureSpecs[i].Name, val)
		}
		v.values[i] = val
	}
	v.valid = true
	return v, nil
}

// CheckFeatureKeys returns a *SchemaMismatchError when the keys of m differ from the schema.
func CheckFeatureKeys(m map[string]float64) error {
	var missing, unexpected []string
	for _, spec := range featureSpecs {
		if _, ok := m[string(spec.Name)]; !ok {
			missing = append(missing, string(spec.Name))
		}
	}
	for name := range m {
		if !IsFeature(name) {
			unexpected = append(unexpected, name)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	return &SchemaMismatchError{Missing: missing, Unexpected: unexpected}
}

// Valid reports whether the vector was produced by a constructor.
// The zero FeatureVector carries no keys and is not valid.
func (v FeatureVector) Valid() bool {
	return v.valid
}

// Value returns the value of a schema field. Unknown names yield 0.
func (v FeatureVector) Value(name Feature) float64 {
	i, ok := featureIndex[name]
	if !ok {
		return 0
	}
	return v.values[i]
}

// Get returns the value of a field by name.
func (v FeatureVector) Get(name string) (float64, error) {
	i, ok := featureIndex[Feature(name)]
	if !ok {
		return 0, &UnknownFeatureError{Field: name}
	}
	return v.values[i], nil
}

// With returns a copy of v with one field replaced.
func (v FeatureVector) With(name string, value float64) (FeatureVector, error) {
	i, ok := featureIndex[Feature(name)]
	if !ok {
		return FeatureVector{}, &UnknownFeatureError{Field: name}
	}
	out := v
	out.values[i] = value
	return out, nil
}

// Scale returns a copy of v with one field multiplied by factor.
func (v FeatureVector) Scale(name string, factor float64) (FeatureVector, error) {
	i, ok := featureIndex[Feature(name)]
	if !ok {
		return FeatureVector{}, &UnknownFeatureError{Field: name}
	}
	out := v
	out.values[i] *= factor
	return out, nil
}

// Values returns the values in schema order.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v.values[:])
	return out
}

// Map returns the vector as a fresh field map.
func (v FeatureVector) Map() map[string]float64 {
	if !v.valid {
		return map[string]float64{}
	}
	out := make(map[string]float64, NumFeatures)
	for i, spec := range featureSpecs {
		out[string(spec.Name)] = v.values[i]
	}
	return out
}

// Equal reports deep equality of two vectors.
func (v FeatureVector) Equal(other FeatureVector) bool {
	return v == other
}

// MarshalJSON encodes the vector as a field map.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes a field map and enforces the schema.
func (v *FeatureVector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := NewFeatureVector(m)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
