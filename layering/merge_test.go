package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestOverwriteFromFixture(t *testing.T) {
	fx := loadMergeFixture(t, "overwrite_merge.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			base := MapFrom(tc.Base)
			override := MapFrom(tc.Override)

			got := base.Overwrite(override).ToMap()
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Errorf("merged dataset mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
		})
	}
}

func TestOverwriteDoesNotMutateReceiver(t *testing.T) {
	base := MapFrom(map[string]any{
		"US": map[string]any{"cca3": "USA", "name": map[string]any{"common": "United States"}},
	})
	before := Clone(base.ToMap())

	override := MapFrom(map[string]any{
		"US": map[string]any{"name": map[string]any{"common": "USA!"}},
	})
	_ = base.Overwrite(override)
	_ = base.Overwrite(override)

	if !reflect.DeepEqual(before, base.ToMap()) {
		t.Fatalf("expected base to remain untouched, got %#v", base.ToMap())
	}
}

func TestOverwriteIsIdempotent(t *testing.T) {
	base := MapFrom(map[string]any{
		"US": map[string]any{"cca3": "USA", "latlng": []any{38.0, -97.0}},
		"FR": map[string]any{"cca3": "FRA"},
	})

	got := base.Overwrite(base)
	if !reflect.DeepEqual(base.ToMap(), got.ToMap()) {
		t.Fatalf("expected self merge to be a no-op, got %#v", got.ToMap())
	}
	if !reflect.DeepEqual(base.Keys(), got.Keys()) {
		t.Fatalf("expected key order %v, got %v", base.Keys(), got.Keys())
	}
}

func TestOverwriteWithEmptyMap(t *testing.T) {
	base := MapFrom(map[string]any{"US": map[string]any{"cca3": "USA"}})

	got := base.Overwrite(NewMap[any]())
	if !reflect.DeepEqual(base.ToMap(), got.ToMap()) {
		t.Fatalf("expected empty override to be a no-op, got %#v", got.ToMap())
	}

	var missing *Map[any]
	if got := base.Overwrite(missing); got.Len() != 1 {
		t.Fatalf("expected nil override to be a no-op, got %d entries", got.Len())
	}
}

func TestOverwriteIsRightBiased(t *testing.T) {
	base := MapFrom(map[string]string{"US": "base", "FR": "base"})
	override := MapFrom(map[string]string{"US": "override"})

	got := base.Overwrite(override)
	if value, _ := got.Get("US"); value != "override" {
		t.Fatalf("expected override value, got %q", value)
	}
	if value, _ := got.Get("FR"); value != "base" {
		t.Fatalf("expected base value for untouched key, got %q", value)
	}
}

func TestOverwriteKeyOrder(t *testing.T) {
	base := NewMap[int]()
	base.Set("B", 1)
	base.Set("A", 2)

	override := NewMap[int]()
	override.Set("C", 3)
	override.Set("A", 4)

	got := base.Overwrite(override).Keys()
	want := []string{"B", "A", "C"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
}

func TestMapKeysCollapsesDuplicates(t *testing.T) {
	m := NewMap[string]()
	m.Set("us", "first")
	m.Set("fr", "france")
	m.Set("US", "second")

	upper := m.MapKeys(func(key string) string {
		if key == "us" {
			return "US"
		}
		return key
	})
	if upper.Len() != 2 {
		t.Fatalf("expected 2 keys after collapse, got %v", upper.Keys())
	}
	if value, _ := upper.Get("US"); value != "second" {
		t.Fatalf("expected later entry to win, got %q", value)
	}
	if upper.Keys()[0] != "US" {
		t.Fatalf("expected collapsed key to keep first position, got %v", upper.Keys())
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	type sample struct {
		Value int
	}
	var zero sample
	if got := MergeLayers[sample](); got != zero {
		t.Fatalf("expected MergeLayers() to return zero value, got %+v", got)
	}
}

func TestMergeLayersStructs(t *testing.T) {
	type currency struct {
		Name   string
		Symbol *string
		Tags   []string
	}
	euro := "€"
	weak := currency{Name: "Euro", Symbol: &euro, Tags: []string{"eu"}}
	strong := currency{Name: "European euro"}

	got := MergeLayers(strong, weak)
	if got.Name != "European euro" {
		t.Fatalf("expected strong name, got %q", got.Name)
	}
	if got.Symbol == nil || *got.Symbol != "€" {
		t.Fatalf("expected weak symbol fallback, got %v", got.Symbol)
	}
	if got.Symbol == weak.Symbol {
		t.Fatalf("expected pointer to be cloned")
	}
	if !reflect.DeepEqual(got.Tags, []string{"eu"}) {
		t.Fatalf("expected weak tags fallback, got %v", got.Tags)
	}
}

type mergeFixture struct {
	Description string             `json:"description"`
	Cases       []mergeFixtureCase `json:"cases"`
}

type mergeFixtureCase struct {
	Name     string         `json:"name"`
	Base     map[string]any `json:"base"`
	Override map[string]any `json:"override"`
	Expect   map[string]any `json:"expect"`
}

func loadMergeFixture(t *testing.T, name string) mergeFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read merge fixture %q: %v", name, err)
	}
	var fx mergeFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal merge fixture %q: %v", name, err)
	}
	return fx
}
