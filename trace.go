package countries

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Dataset layers reported by Trace, strongest first.
const (
	LayerOverload = "overload"
	LayerDefault  = "default"
)

// Trace explains where the merged value of a country field came from.
type Trace struct {
	Code   string       `json:"code"`
	Path   string       `json:"path"`
	Value  any          `json:"value,omitempty"`
	Found  bool         `json:"found"`
	Layers []Provenance `json:"layers"`
}

// Provenance is one layer's contribution to a traced path.
type Provenance struct {
	Layer string `json:"layer"`
	Value any    `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// Source returns the strongest layer holding the path, or "" when none does.
func (t Trace) Source() string {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer.Layer
		}
	}
	return ""
}

// Trace reports the overload and default values of path for the country
// stored under code, alongside the merged value callers see.
func (r *Repository) Trace(code, path string) (Trace, error) {
	key, err := normalizeCode(code)
	if err != nil {
		return Trace{}, err
	}
	code = strings.ToUpper(key)
	merged, ok := r.countries.Get(code)
	if !ok {
		return Trace{}, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}

	trace := Trace{Code: code, Path: path}
	trace.Value, trace.Found = lookupPath(recordOf(merged), path)
	for _, layer := range []struct {
		name    string
		entries interface{ Get(string) (any, bool) }
	}{
		{LayerOverload, r.overloads},
		{LayerDefault, r.defaults},
	} {
		provenance := Provenance{Layer: layer.name}
		if record, ok := layer.entries.Get(code); ok {
			provenance.Value, provenance.Found = lookupPath(recordOf(record), path)
		}
		trace.Layers = append(trace.Layers, provenance)
	}
	return trace, nil
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
