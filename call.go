package countries

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-countries/pkg/activity"
)

type operation func(r *Repository, args []any) (any, error)

// operations maps lower-cased Call names to repository methods.
var operations = map[string]operation{
	"all": func(r *Repository, args []any) (any, error) {
		if err := wantArgs("all", args, 0); err != nil {
			return nil, err
		}
		return r.All(), nil
	},
	"currencies": func(r *Repository, args []any) (any, error) {
		if err := wantArgs("currencies", args, 0); err != nil {
			return nil, err
		}
		return r.Currencies()
	},
	"findtimezones":            codeOperation("findTimezones", (*Repository).FindTimezones),
	"loadcurrenciesforcountry": codeOperation("loadCurrenciesForCountry", (*Repository).LoadCurrenciesForCountry),
	"getflagsvg":               codeOperation("getFlagSvg", (*Repository).GetFlagSvg),
	"getgeometry":              codeOperation("getGeometry", (*Repository).GetGeometry),
	"gettopology":              codeOperation("getTopology", (*Repository).GetTopology),
	"geometrybounds":           codeOperation("geometryBounds", (*Repository).GeometryBounds),
	"makeallflags": func(r *Repository, args []any) (any, error) {
		if err := wantArgs("makeAllFlags", args, 1); err != nil {
			return nil, err
		}
		record, err := r.recordArg(args[0])
		if err != nil {
			return nil, err
		}
		return r.MakeAllFlags(record)
	},
}

// Call runs the named operation through the result cache. Names match
// repository methods case-insensitively ("getFlagSvg", "findTimezones").
// Names the repository does not define are forwarded to the country
// collection: "whereRegion" filters on the region field, and "where",
// "whereExpr", "pluck", "distinct", "get", "has", "first", "count", "keys",
// "fields" and "findByName" map to the Collection methods.
//
// Results are cached per name, arguments and hydration setting. When
// hydration is enabled results are hydrated before they are stored.
func (r *Repository) Call(name string, args ...any) (any, error) {
	canonical, run, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	key := CacheKey{Operation: canonical, Args: args, Hydrated: r.cfg.hydrateBefore}

	return r.cache.GetOrCompute(key, func() (any, error) {
		result, err := run(args)
		if err != nil {
			return nil, err
		}
		if r.cfg.hydrateBefore {
			result, err = r.hydrator.Hydrate(result)
			if err != nil {
				return nil, err
			}
		}
		r.cfg.logOrNoop().Debug("countries operation computed",
			"operation", canonical,
			"args", len(args),
			"hydrated", r.cfg.hydrateBefore,
		)
		r.emit(activity.BuildOperationComputedEvent(activity.OperationEventInput{
			Operation:  canonical,
			Args:       args,
			Hydrated:   r.cfg.hydrateBefore,
			OccurredAt: time.Now(),
		}))
		return result, nil
	})
}

// Operations lists the names Call dispatches to repository methods.
func Operations() []string {
	return []string{
		"all", "currencies", "findTimezones", "getFlagSvg", "getGeometry",
		"getTopology", "makeAllFlags", "loadCurrenciesForCountry", "geometryBounds",
	}
}

func (r *Repository) resolve(name string) (string, func([]any) (any, error), error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if op, ok := operations[lower]; ok {
		return lower, func(args []any) (any, error) { return op(r, args) }, nil
	}
	if forward, ok := collectionOperations[lower]; ok {
		return "all." + lower, func(args []any) (any, error) { return forward(r.All(), args) }, nil
	}
	if strings.HasPrefix(lower, "where") && len(lower) > len("where") {
		field := lowerFirst(strings.TrimSpace(name)[len("where"):])
		return "all.where." + field, func(args []any) (any, error) {
			if err := wantArgs(name, args, 1); err != nil {
				return nil, err
			}
			return r.All().Where(field, args[0]), nil
		}, nil
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

type collectionOperation func(c *Collection, args []any) (any, error)

var collectionOperations = map[string]collectionOperation{
	"where": func(c *Collection, args []any) (any, error) {
		if err := wantArgs("where", args, 2); err != nil {
			return nil, err
		}
		field, err := stringArg("where", args, 0)
		if err != nil {
			return nil, err
		}
		return c.Where(field, args[1]), nil
	},
	"whereexpr": func(c *Collection, args []any) (any, error) {
		if err := wantArgs("whereExpr", args, 1); err != nil {
			return nil, err
		}
		expression, err := stringArg("whereExpr", args, 0)
		if err != nil {
			return nil, err
		}
		return c.WhereExpr(expression)
	},
	"pluck": pathOperation("pluck", func(c *Collection, path string) any { return c.Pluck(path) }),
	"distinct": pathOperation("distinct", func(c *Collection, path string) any {
		return c.Distinct(path)
	}),
	"get": func(c *Collection, args []any) (any, error) {
		code, err := singleString("get", args)
		if err != nil {
			return nil, err
		}
		record, ok := c.Get(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
		}
		return record, nil
	},
	"has": func(c *Collection, args []any) (any, error) {
		code, err := singleString("has", args)
		if err != nil {
			return nil, err
		}
		return c.Has(code), nil
	},
	"first": func(c *Collection, args []any) (any, error) {
		if err := wantArgs("first", args, 0); err != nil {
			return nil, err
		}
		_, record, _ := c.First()
		return record, nil
	},
	"count": func(c *Collection, args []any) (any, error) {
		if err := wantArgs("count", args, 0); err != nil {
			return nil, err
		}
		return c.Len(), nil
	},
	"keys": func(c *Collection, args []any) (any, error) {
		if err := wantArgs("keys", args, 0); err != nil {
			return nil, err
		}
		return c.Keys(), nil
	},
	"fields": func(c *Collection, args []any) (any, error) {
		if err := wantArgs("fields", args, 0); err != nil {
			return nil, err
		}
		return c.Fields(), nil
	},
	"findbyname": func(c *Collection, args []any) (any, error) {
		if len(args) != 1 && len(args) != 2 {
			return nil, fmt.Errorf("%w: findByName takes 1 or 2 arguments, got %d", ErrInvalidArgument, len(args))
		}
		name, err := stringArg("findByName", args, 0)
		if err != nil {
			return nil, err
		}
		maxDistance := 0
		if len(args) == 2 {
			maxDistance, err = intArg("findByName", args, 1)
			if err != nil {
				return nil, err
			}
		}
		_, record, ok := c.FindByName(name, maxDistance)
		if !ok {
			return nil, fmt.Errorf("%w: no country named %q", ErrUnknownCountry, name)
		}
		return record, nil
	},
}

func codeOperation[T any](name string, fn func(*Repository, string) (T, error)) operation {
	return func(r *Repository, args []any) (any, error) {
		code, err := singleString(name, args)
		if err != nil {
			return nil, err
		}
		return fn(r, code)
	}
}

func pathOperation(name string, fn func(*Collection, string) any) collectionOperation {
	return func(c *Collection, args []any) (any, error) {
		path, err := singleString(name, args)
		if err != nil {
			return nil, err
		}
		return fn(c, path), nil
	}
}

// recordArg accepts a record, anything exposing one, or a country code.
func (r *Repository) recordArg(arg any) (Record, error) {
	if code, ok := arg.(string); ok {
		return r.Country(code)
	}
	if record := recordOf(arg); record != nil {
		return record, nil
	}
	return nil, fmt.Errorf("%w: want a country record or code, got %T", ErrInvalidArgument, arg)
}

func wantArgs(name string, args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrInvalidArgument, name, n, len(args))
	}
	return nil
}

func singleString(name string, args []any) (string, error) {
	if err := wantArgs(name, args, 1); err != nil {
		return "", err
	}
	return stringArg(name, args, 0)
}

func stringArg(name string, args []any, i int) (string, error) {
	value, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s argument %d is %T, want string", ErrInvalidArgument, name, i, args[i])
	}
	return value, nil
}

func intArg(name string, args []any, i int) (int, error) {
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %s argument %d is %v, want integer", ErrInvalidArgument, name, i, args[i])
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
