package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_countries.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[country](buildOptions(tc)...)

			result, err := decoder.Decode(Context{Code: tc.Code, Dataset: tc.Dataset}, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded record mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"cca3": "USA", "name": "United States"}
	decoder := NewDecoder[country](WithPreHook[country](stringNamePreHook))

	if _, err := decoder.Decode(Context{Code: "US"}, input); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if input["name"] != "United States" {
		t.Fatalf("expected input record untouched, got %#v", input["name"])
	}
}

func TestDecoderNilRecord(t *testing.T) {
	decoder := NewDecoder[country]()
	if _, err := decoder.Decode(Context{Code: "US"}, nil); err == nil {
		t.Fatalf("expected error for nil record")
	}
}

func TestCustomDecoder(t *testing.T) {
	sentinel := errors.New("boom")
	decoder := NewDecoder[country](WithCustomDecoder[country](func(Context, map[string]any) (country, error) {
		return country{}, sentinel
	}))

	_, err := decoder.Decode(Context{Code: "US"}, map[string]any{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected custom decoder error, got %v", err)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[country] {
	options := []DecoderOption[country]{}

	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[country]())
		case "disallow_unknown":
			options = append(options, WithDisallowUnknownFields[country]())
		}
	}
	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "string_name":
			options = append(options, WithPreHook[country](stringNamePreHook))
		}
	}
	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "code_fallback":
			options = append(options, WithPostHook[country](codeFallbackPostHook))
		}
	}
	return options
}

func stringNamePreHook(_ Context, record map[string]any) (map[string]any, error) {
	if name, ok := record["name"].(string); ok {
		record["name"] = map[string]any{"common": name, "official": name}
	}
	return record, nil
}

func codeFallbackPostHook(ctx Context, value *country) error {
	if value.CCA2 == "" {
		value.CCA2 = ctx.Code
	}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	Dataset   string         `json:"dataset"`
	Input     map[string]any `json:"input"`
	Expect    country        `json:"expect"`
	ExpectErr string         `json:"expectErr"`
	PreHooks  []string       `json:"preHooks"`
	PostHooks []string       `json:"postHooks"`
	Options   []string       `json:"options"`
}

type country struct {
	CCA2    string      `json:"cca2"`
	CCA3    string      `json:"cca3"`
	Name    countryName `json:"name"`
	Region  string      `json:"region"`
	Capital []string    `json:"capital"`
}

type countryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
