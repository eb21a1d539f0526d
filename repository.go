package countries

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-countries/internal/loader"
	layering "github.com/goliatone/go-countries/layering"
	"github.com/goliatone/go-countries/pkg/activity"
)

// Dataset locations relative to the data root.
const (
	CountriesDefaultFile  = "countries/default/_all_countries.json"
	CountriesOverloadDir  = "countries/overload"
	CurrenciesDefaultDir  = "currencies/default"
	CurrenciesOverloadDir = "currencies/overload"
	TimezonesCountriesDir = "timezones/countries/default"
	FlagsDir              = "flags"
	GeometryDir           = "geo"
	TopologyDir           = "topo"
)

// New loads the country dataset and its overloads. It fails with
// *DataLoadError when the default dataset is missing or malformed, or when
// an overload file cannot be parsed.
func New(opts ...Option) (*Repository, error) {
	cfg := applyOptions(opts)

	fsys := cfg.fsys
	if fsys == nil {
		fsys = loader.NewDir(cfg.dataDir).FS
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = NewEvaluator(cfg.engine, cfg.programCache, cfg.functions)
		if err != nil {
			return nil, err
		}
	}

	cache := cfg.resultCache
	if cache == nil {
		cache = NewResultCache()
	}

	r := &Repository{
		cfg:       cfg,
		loader:    loader.New(fsys),
		cache:     cache,
		evaluator: evaluator,
		emitter:   activity.NewEmitter(cfg.activityHooks, cfg.activityChannel),
		loadID:    uuid.NewString(),
	}
	r.hydrator = cfg.hydrator
	if r.hydrator == nil {
		r.hydrator = NewCountryHydrator(r)
	}

	if err := r.loadCountries(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) loadCountries() error {
	logger := r.cfg.logOrNoop()

	raw, err := r.loader.LoadJSON(CountriesDefaultFile)
	if err != nil {
		return &DataLoadError{Path: CountriesDefaultFile, Err: err}
	}
	defaults, err := countriesFromJSON(raw)
	if err != nil {
		return &DataLoadError{Path: CountriesDefaultFile, Err: err}
	}

	overloads, err := r.loader.LoadJSONFiles(CountriesOverloadDir)
	if err != nil {
		return &DataLoadError{Path: CountriesOverloadDir, Err: err}
	}
	overloads = overloads.MapKeys(strings.ToUpper)

	r.defaults = defaults
	r.overloads = overloads
	r.countries = defaults.Overwrite(overloads)

	logger.Info("countries dataset loaded",
		"load_id", r.loadID,
		"entries", r.countries.Len(),
		"overloads", overloads.Len(),
	)
	now := time.Now()
	r.emit(activity.BuildDatasetLoadedEvent(activity.DatasetEventInput{
		LoadID:     r.loadID,
		Dataset:    "countries",
		Source:     CountriesDefaultFile,
		Entries:    defaults.Len(),
		OccurredAt: now,
	}))
	if overloads.Len() > 0 {
		r.emit(activity.BuildDatasetOverloadedEvent(activity.DatasetEventInput{
			LoadID:     r.loadID,
			Dataset:    "countries",
			Source:     CountriesOverloadDir,
			Entries:    r.countries.Len(),
			Overloads:  overloads.Len(),
			OccurredAt: now,
		}))
	}
	return nil
}

// countriesFromJSON accepts either an object keyed by code or an array of
// records keyed by their cca2 (or cca3) field. Keys are upper-cased.
func countriesFromJSON(raw any) (*layering.Map[any], error) {
	out := layering.NewMap[any]()
	switch doc := raw.(type) {
	case map[string]any:
		for code, record := range layering.MapFrom(doc).All() {
			out.Set(strings.ToUpper(code), record)
		}
	case []any:
		for i, item := range doc {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entry %d is %T, want object", i, item)
			}
			code := recordCode(record)
			if code == "" {
				return nil, fmt.Errorf("entry %d has no cca2 or cca3 code", i)
			}
			out.Set(code, record)
		}
	default:
		return nil, fmt.Errorf("dataset is %T, want object or array", raw)
	}
	return out, nil
}

// All returns the merged country dataset.
func (r *Repository) All() *Collection {
	c := NewCollection(r.countries, r.evaluator)
	c.evalLog = r.cfg.evaluatorLogOrNoop()
	return c
}

// Country returns the merged record stored under code.
func (r *Repository) Country(code string) (Record, error) {
	key, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	value, ok := r.countries.Get(strings.ToUpper(key))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	record, _ := value.(map[string]any)
	return record, nil
}

// Currencies returns the default currency files merged with the overload
// directory, keyed by upper-cased file name.
func (r *Repository) Currencies() (*layering.Map[any], error) {
	defaults, err := r.loader.LoadJSONFiles(CurrenciesDefaultDir)
	if err != nil {
		return nil, err
	}
	overloads, err := r.loader.LoadJSONFiles(CurrenciesOverloadDir)
	if err != nil {
		return nil, err
	}
	return defaults.MapKeys(strings.ToUpper).Overwrite(overloads.MapKeys(strings.ToUpper)), nil
}

// FindTimezones returns the timezone document for a country code.
func (r *Repository) FindTimezones(code string) (any, error) {
	key, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	return r.loader.LoadJSON(path.Join(TimezonesCountriesDir, key+".json"))
}

// Hydrate passes value through the configured hydrator.
func (r *Repository) Hydrate(value any, elements ...string) (any, error) {
	return r.hydrator.Hydrate(value, elements...)
}

// Hydrator returns the configured hydrator.
func (r *Repository) Hydrator() Hydrator {
	return r.hydrator
}

// LoadID identifies this repository's dataset load in emitted events.
func (r *Repository) LoadID() string {
	return r.loadID
}

// normalizeCode lower-cases code for use in a file name and rejects values
// that could escape the dataset directory.
func normalizeCode(code string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" {
		return "", fmt.Errorf("%w: empty code", ErrInvalidArgument)
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: code %q", ErrInvalidArgument, code)
	}
	return key, nil
}

func (r *Repository) emit(event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if err := r.emitter.Emit(context.Background(), event); err != nil {
		r.cfg.logOrNoop().Error("countries activity hook failed",
			"verb", event.Verb,
			"error", err,
		)
	}
}
