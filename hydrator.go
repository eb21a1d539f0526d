package countries

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-countries/internal/hydrate"
	layering "github.com/goliatone/go-countries/layering"
)

// Hydrator turns raw dataset values into domain values. Elements name the
// optional parts to attach, e.g. "flags" or "timezones".
type Hydrator interface {
	Hydrate(value any, elements ...string) (any, error)
}

// HydratorFunc adapts a function to Hydrator.
type HydratorFunc func(value any, elements ...string) (any, error)

// Hydrate implements Hydrator.
func (f HydratorFunc) Hydrate(value any, elements ...string) (any, error) {
	if f == nil {
		return value, nil
	}
	return f(value, elements...)
}

// Hydration elements understood by the country hydrator.
const (
	ElementFlags      = "flags"
	ElementTimezones  = "timezones"
	ElementCurrencies = "currencies"
)

// CountryName holds the common and official names of a country.
type CountryName struct {
	Common   string                 `json:"common"`
	Official string                 `json:"official"`
	Native   map[string]CountryName `json:"native,omitempty"`
}

// Country is a hydrated country record. Fields absent from the dataset are
// left zero; Record returns every field, typed or not.
type Country struct {
	CCA2         string            `json:"cca2"`
	CCA3         string            `json:"cca3"`
	CCN3         string            `json:"ccn3"`
	CIOC         string            `json:"cioc"`
	Name         CountryName       `json:"name"`
	TLD          []string          `json:"tld"`
	Capital      []string          `json:"capital"`
	AltSpellings []string          `json:"altSpellings"`
	Region       string            `json:"region"`
	Subregion    string            `json:"subregion"`
	Languages    map[string]string `json:"languages"`
	Currencies   any               `json:"currencies"`
	Latlng       []float64         `json:"latlng"`
	Landlocked   bool              `json:"landlocked"`
	Borders      []string          `json:"borders"`
	Area         float64           `json:"area"`

	// Attached by hydration elements.
	Flags          map[string]string `json:"-"`
	Timezones      any               `json:"-"`
	CurrencyDetail any               `json:"-"`

	raw Record
}

// Record returns the source record with hydrated elements added, so a
// hydrated collection can still be queried by field path.
func (c *Country) Record() Record {
	if c == nil {
		return nil
	}
	out := layering.Clone(c.raw)
	if out == nil {
		out = Record{}
	}
	if c.Flags != nil {
		flags := make(map[string]any, len(c.Flags))
		for key, value := range c.Flags {
			flags[key] = value
		}
		out[ElementFlags] = flags
	}
	if c.Timezones != nil {
		out[ElementTimezones] = c.Timezones
	}
	if c.CurrencyDetail != nil {
		out["currency_detail"] = c.CurrencyDetail
	}
	return out
}

// CountryAssets supplies the per-country assets the hydrator attaches.
// *Repository implements it.
type CountryAssets interface {
	MakeAllFlags(record Record) (map[string]string, error)
	FindTimezones(code string) (any, error)
	LoadCurrenciesForCountry(code string) (any, error)
}

// CountryHydrator decodes country records into *Country values. Values that
// do not look like country records pass through unchanged.
type CountryHydrator struct {
	assets  CountryAssets
	decoder *hydrate.Decoder[Country]
}

// NewCountryHydrator returns a hydrator attaching elements from assets. A nil
// assets only supports hydration without elements.
func NewCountryHydrator(assets CountryAssets) *CountryHydrator {
	return &CountryHydrator{
		assets: assets,
		decoder: hydrate.NewDecoder[Country](
			hydrate.WithPreHook[Country](normalizeNamePreHook),
			hydrate.WithPreHook[Country](normalizeListsPreHook),
			hydrate.WithPostHook[Country](codeFallbackPostHook),
		),
	}
}

// Hydrate implements Hydrator.
func (h *CountryHydrator) Hydrate(value any, elements ...string) (any, error) {
	for _, element := range elements {
		switch strings.ToLower(element) {
		case ElementFlags, ElementTimezones, ElementCurrencies:
		default:
			return nil, fmt.Errorf("%w: unknown hydration element %q", ErrInvalidArgument, element)
		}
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Collection:
		entries, err := h.hydrateMap(v.entries, elements)
		if err != nil {
			return nil, err
		}
		return v.derive(entries), nil
	case *layering.Map[any]:
		return h.hydrateMap(v, elements)
	case *Country:
		country := *v
		if err := h.attach(&country, elements); err != nil {
			return nil, err
		}
		return &country, nil
	case map[string]any:
		if !isCountryRecord(v) {
			return v, nil
		}
		return h.hydrateRecord("", v, elements)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			hydrated, err := h.Hydrate(item, elements...)
			if err != nil {
				return nil, err
			}
			out[i] = hydrated
		}
		return out, nil
	default:
		return value, nil
	}
}

func (h *CountryHydrator) hydrateMap(entries *layering.Map[any], elements []string) (*layering.Map[any], error) {
	out := layering.NewMap[any]()
	for code, entry := range entries.All() {
		record, ok := entry.(map[string]any)
		if !ok || !isCountryRecord(record) {
			hydrated, err := h.Hydrate(entry, elements...)
			if err != nil {
				return nil, err
			}
			out.Set(code, hydrated)
			continue
		}
		country, err := h.hydrateRecord(code, record, elements)
		if err != nil {
			return nil, err
		}
		out.Set(code, country)
	}
	return out, nil
}

func (h *CountryHydrator) hydrateRecord(code string, record map[string]any, elements []string) (*Country, error) {
	if code == "" {
		code = recordCode(record)
	}
	country, err := h.decoder.Decode(hydrate.Context{Code: code, Dataset: "countries"}, record)
	if err != nil {
		return nil, err
	}
	country.raw = layering.Clone(record)
	if err := h.attach(&country, elements); err != nil {
		return nil, err
	}
	return &country, nil
}

// attach loads the requested elements. Missing assets leave the element
// unset rather than failing the whole record.
func (h *CountryHydrator) attach(country *Country, elements []string) error {
	if len(elements) == 0 {
		return nil
	}
	if h.assets == nil {
		return fmt.Errorf("%w: hydration elements need country assets", ErrInvalidArgument)
	}
	for _, element := range elements {
		var err error
		switch strings.ToLower(element) {
		case ElementFlags:
			if country.CCA3 != "" {
				country.Flags, err = h.assets.MakeAllFlags(country.Record())
			}
		case ElementTimezones:
			if country.CCA2 != "" {
				country.Timezones, err = h.assets.FindTimezones(country.CCA2)
			}
		case ElementCurrencies:
			if country.CCA2 != "" {
				country.CurrencyDetail, err = h.assets.LoadCurrenciesForCountry(country.CCA2)
			}
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func isCountryRecord(record map[string]any) bool {
	_, cca2 := record["cca2"]
	_, cca3 := record["cca3"]
	return cca2 || cca3
}

func recordCode(record map[string]any) string {
	if code, ok := record["cca2"].(string); ok && code != "" {
		return strings.ToUpper(code)
	}
	if code, ok := record["cca3"].(string); ok {
		return strings.ToUpper(code)
	}
	return ""
}

// recordOf returns the generic record behind value: a plain map or anything
// exposing Record, such as *Country.
func recordOf(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case interface{ Record() Record }:
		return v.Record()
	default:
		return nil
	}
}

func normalizeNamePreHook(_ hydrate.Context, record map[string]any) (map[string]any, error) {
	if name, ok := record["name"].(string); ok {
		record["name"] = map[string]any{"common": name, "official": name}
	}
	return record, nil
}

func normalizeListsPreHook(_ hydrate.Context, record map[string]any) (map[string]any, error) {
	for _, key := range []string{"capital", "tld", "altSpellings", "borders"} {
		if value, ok := record[key].(string); ok {
			if value == "" {
				record[key] = []any{}
				continue
			}
			record[key] = []any{value}
		}
	}
	return record, nil
}

func codeFallbackPostHook(ctx hydrate.Context, country *Country) error {
	if country.CCA2 == "" && len(ctx.Code) == 2 {
		country.CCA2 = ctx.Code
	}
	return nil
}
