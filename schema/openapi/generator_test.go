package openapi

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	countries "github.com/goliatone/go-countries"
)

func TestNewGeneratorOptions(t *testing.T) {
	custom := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo("Atlas", "2.0.0", WithInfoDescription("country atlas")),
		WithOperation("/atlas/{cca3}", "GET", "atlasCountry",
			WithOperationSummary("Fetch a country"),
			WithPathParameter("cca3"),
		),
		WithContentType("application/vnd.atlas+json"),
		WithResponse("410", "Retired code"),
		WithRootComponent("AtlasCountry"),
	)

	cfg := custom.config
	if got := cfg.openAPIVersion; got != "3.1.0" {
		t.Fatalf("expected openapi version 3.1.0, got %q", got)
	}
	if cfg.info.Title != "Atlas" || cfg.info.Version != "2.0.0" || cfg.info.Description != "country atlas" {
		t.Fatalf("unexpected info %+v", cfg.info)
	}
	if cfg.operation.Path != "/atlas/{cca3}" || cfg.operation.Method != "get" || cfg.operation.OperationID != "atlasCountry" {
		t.Fatalf("unexpected operation %+v", cfg.operation)
	}
	if cfg.operation.Summary != "Fetch a country" || cfg.operation.Parameter != "cca3" {
		t.Fatalf("unexpected operation metadata %+v", cfg.operation)
	}
	if got := cfg.contentType; got != "application/vnd.atlas+json" {
		t.Fatalf("expected custom content type, got %q", got)
	}
	if got := cfg.responses["410"].Description; got != "Retired code" {
		t.Fatalf("expected response description Retired code, got %q", got)
	}
	if !cfg.responses["200"].Schema {
		t.Fatalf("expected default 200 response to remain configured")
	}
	if got := cfg.rootComponent; got != "AtlasCountry" {
		t.Fatalf("expected root component AtlasCountry, got %q", got)
	}
}

func TestGeneratorFromFieldsFixture(t *testing.T) {
	fx := loadFixture(t, "document_fields.json")

	doc, err := NewGenerator().FromFields(fx.Fields)
	if err != nil {
		t.Fatalf("FromFields returned error: %v", err)
	}
	assertJSONEqual(t, fx.Expect.Document, doc)
}

func TestGeneratorFromFieldsRejectsEmptyPath(t *testing.T) {
	if _, err := NewGenerator().FromFields([]countries.FieldDescriptor{{Types: []string{"string"}}}); err == nil {
		t.Fatalf("expected empty path to be rejected")
	}
}

func TestGeneratorFromRepositoryFields(t *testing.T) {
	repo, err := countries.New(countries.WithDataDir("../../testdata/data"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}

	doc, err := NewGenerator(WithRootComponent("")).FromFields(repo.All().Fields())
	if err != nil {
		t.Fatalf("FromFields returned error: %v", err)
	}
	schema := responseSchema(t, doc)
	properties, _ := schema["properties"].(map[string]any)
	name, _ := properties["name"].(map[string]any)
	if _, ok := name["oneOf"]; !ok {
		t.Fatalf("expected name to accept the overloaded string and the default object, got %v", name)
	}
	if _, ok := doc["components"]; ok {
		t.Fatalf("expected inline schema without components")
	}
}

func TestGeneratorFromCountryType(t *testing.T) {
	doc, err := NewGenerator().Generate((*countries.Country)(nil))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	components := doc["components"].(map[string]any)["schemas"].(map[string]any)
	country := components["Country"].(map[string]any)
	properties := country["properties"].(map[string]any)

	if got := properties["cca2"]; !jsonEqual(t, map[string]any{"type": "string"}, got) {
		t.Fatalf("unexpected cca2 schema %v", got)
	}
	if got := properties["area"]; !jsonEqual(t, map[string]any{"type": "number"}, got) {
		t.Fatalf("unexpected area schema %v", got)
	}
	if _, ok := properties["flags"]; ok {
		t.Fatalf("expected hydration-only fields to be skipped")
	}
	name := properties["name"].(map[string]any)["properties"].(map[string]any)
	native := name["native"].(map[string]any)
	if got := native["additionalProperties"]; !jsonEqual(t, map[string]any{"type": "object"}, got) {
		t.Fatalf("expected recursive native names to terminate, got %v", got)
	}
}

func TestGeneratorRejectsUndeclaredParameter(t *testing.T) {
	_, err := NewGenerator(WithOperation("/countries", "", "")).FromFields(nil)
	if err == nil {
		t.Fatalf("expected path without {code} to fail validation")
	}

	doc, err := NewGenerator(WithOperation("/countries", "", "", WithPathParameter(""))).FromFields(nil)
	if err != nil {
		t.Fatalf("expected parameterless path to validate, got %v", err)
	}
	if err := validateDocument(doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestGeneratorConcurrentAccess(t *testing.T) {
	t.Parallel()

	generator := NewGenerator()
	fields := []countries.FieldDescriptor{
		{Path: "name.common", Types: []string{"string"}},
		{Path: "borders", Types: []string{"[]string"}},
	}

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			doc, err := generator.FromFields(fields)
			if err != nil {
				t.Errorf("FromFields returned error: %v", err)
				return
			}
			if doc["paths"] == nil {
				t.Errorf("expected document paths")
			}
		}()
	}
	wg.Wait()
}

type fixture struct {
	Fields []countries.FieldDescriptor `json:"fields"`
	Expect struct {
		Document map[string]any `json:"document"`
	} `json:"expect"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()

	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %q: %v", path, err)
	}

	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("unmarshal fixture %q: %v", path, err)
	}
	return fx
}

func responseSchema(t *testing.T, doc map[string]any) map[string]any {
	t.Helper()

	operation := doc["paths"].(map[string]any)["/countries/{code}"].(map[string]any)["get"].(map[string]any)
	response := operation["responses"].(map[string]any)["200"].(map[string]any)
	content := response["content"].(map[string]any)["application/json"].(map[string]any)
	return content["schema"].(map[string]any)
}

func assertJSONEqual(t *testing.T, want, got map[string]any) {
	t.Helper()

	if !jsonEqual(t, want, got) {
		t.Fatalf("schema mismatch\nwant: %s\ngot:  %s", mustMarshal(t, want), mustMarshal(t, got))
	}
}

func jsonEqual(t *testing.T, want, got any) bool {
	t.Helper()
	return bytes.Equal(mustMarshal(t, want), mustMarshal(t, got))
}

func mustMarshal(t *testing.T, value any) []byte {
	t.Helper()

	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	return raw
}
