package countries

import (
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-countries/pkg/geo"
)

// GetFlagSvg returns the SVG flag of a country by its three letter code.
func (r *Repository) GetFlagSvg(code string) (string, error) {
	return r.loadAsset(FlagsDir, code, ".svg")
}

// GetGeometry returns the raw GeoJSON boundary of a country.
func (r *Repository) GetGeometry(code string) (string, error) {
	return r.loadAsset(GeometryDir, code, ".geo.json")
}

// GetTopology returns the raw TopoJSON boundary of a country.
func (r *Repository) GetTopology(code string) (string, error) {
	return r.loadAsset(TopologyDir, code, ".topo.json")
}

// LoadCurrenciesForCountry returns the default currency document for a
// country code. Overloads are not applied; use Currencies for the merged set.
func (r *Repository) LoadCurrenciesForCountry(code string) (any, error) {
	key, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	return r.loader.LoadJSON(path.Join(CurrenciesDefaultDir, key+".json"))
}

// GeometryBounds parses the country's GeoJSON boundary and returns its
// bounding box.
func (r *Repository) GeometryBounds(code string) (geo.Bounds, error) {
	text, err := r.GetGeometry(code)
	if err != nil {
		return geo.Bounds{}, err
	}
	shape, err := geo.ParseGeoJSON(text)
	if err != nil {
		return geo.Bounds{}, fmt.Errorf("countries: geometry %q: %w", code, err)
	}
	return shape.Bounds(), nil
}

// MakeAllFlags renders the flag markup variants for a country record: CSS
// sprite spans keyed by the lower-cased cca3 code plus the inline SVG.
func (r *Repository) MakeAllFlags(record Record) (map[string]string, error) {
	cca3, _ := record["cca3"].(string)
	if cca3 == "" {
		return nil, fmt.Errorf("%w: record has no cca3 code", ErrInvalidArgument)
	}
	flag := strings.ToLower(cca3)
	svg, err := r.GetFlagSvg(cca3)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"sprite":             fmt.Sprintf(`<span class="flag flag-%s"></span>`, flag),
		"flag-icon":          fmt.Sprintf(`<span class="flag-icon flag-icon-%s"></span>`, flag),
		"flag-icon-squared":  fmt.Sprintf(`<span class="flag-icon flag-icon-%s flag-icon-squared"></span>`, flag),
		"world-flags-sprite": fmt.Sprintf(`<span class="flag %s"></span>`, flag),
		"svg":                svg,
	}, nil
}

func (r *Repository) loadAsset(dir, code, ext string) (string, error) {
	key, err := normalizeCode(code)
	if err != nil {
		return "", err
	}
	return r.loader.LoadFile(path.Join(dir, key+ext))
}
