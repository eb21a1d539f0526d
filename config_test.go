package countries

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "countries.yaml")
	contents := "data_dir: testdata/data\nengine: cel\nprogram_cache_size: 8\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COUNTRIES_HYDRATE_BEFORE", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		DataDir:          "testdata/data",
		Engine:           EngineCEL,
		ProgramCacheSize: 8,
		Hydrate:          HydrateConfig{Before: true},
	}
	if cfg != want {
		t.Fatalf("want %+v, got %+v", want, cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing config file to fail")
	}
}

func TestWithConfigBuildsRepository(t *testing.T) {
	repo, err := New(WithConfig(Config{
		DataDir:          testDataDir,
		Engine:           EngineCEL,
		ProgramCacheSize: 4,
		Hydrate:          HydrateConfig{Before: true},
	}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := evaluatorEngineName(repo.evaluator); got != EngineCEL {
		t.Fatalf("expected cel evaluator, got %q", got)
	}
	value, err := repo.Call("all")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	hydrated, ok := value.(*Collection)
	if !ok {
		t.Fatalf("expected collection, got %T", value)
	}
	if _, ok := hydrated.ToMap()["JP"].(*Country); !ok {
		t.Fatalf("expected hydrated records, got %T", hydrated.ToMap()["JP"])
	}
}
