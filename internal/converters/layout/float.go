package layout

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// Float is a float64 that always encodes in its shortest 'g' form, so that
// JSON and YAML output agree on number formatting.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	return []byte(FormatFloat(float64(f))), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler. yaml.v3 already renders float64
// values in their shortest 'g' form.
func (f Float) MarshalYAML() (any, error) {
	return float64(f), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Float) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// FromVector converts an embedding for encoding. Values are widened from
// their shortest float32 form so that 0.1 stays 0.1.
func FromVector(v []float32) []Float {
	if len(v) == 0 {
		return nil
	}
	out := make([]Float, len(v))
	for i, x := range v {
		w, _ := strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
		out[i] = Float(w)
	}
	return out
}

// ToVector converts decoded values back into an embedding.
func ToVector(v []Float) []float32 {
	if len(v) == 0 {
		return nil
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
