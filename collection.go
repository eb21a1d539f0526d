package countries

import (
	"encoding/json"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	mapset "github.com/deckarep/golang-set/v2"
	layering "github.com/goliatone/go-countries/layering"
)

// Collection is an ordered, read-only view over country records keyed by
// code. Every query returns a new Collection; the receiver is never changed.
type Collection struct {
	entries   *layering.Map[any]
	evaluator Evaluator
	evalLog   EvaluatorLogger
}

// NewCollection wraps entries. WhereExpr uses evaluator, or expr-lang when
// evaluator is nil.
func NewCollection(entries *layering.Map[any], evaluator Evaluator) *Collection {
	if entries == nil {
		entries = layering.NewMap[any]()
	}
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	return &Collection{
		entries:   entries,
		evaluator: evaluator,
		evalLog:   noopEvaluatorLogger{},
	}
}

func (c *Collection) derive(entries *layering.Map[any]) *Collection {
	return &Collection{
		entries:   entries,
		evaluator: c.evaluator,
		evalLog:   c.evalLog,
	}
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return c.entries.Len()
}

// Keys returns the codes in order.
func (c *Collection) Keys() []string {
	return c.entries.Keys()
}

// Get returns the record stored under code, matched case-insensitively.
func (c *Collection) Get(code string) (any, bool) {
	return c.entries.Get(strings.ToUpper(code))
}

// Has reports whether code is present.
func (c *Collection) Has(code string) bool {
	return c.entries.Has(strings.ToUpper(code))
}

// All iterates over code/record pairs in order.
func (c *Collection) All() iter.Seq2[string, any] {
	return c.entries.All()
}

// ToMap returns the records as a plain map.
func (c *Collection) ToMap() map[string]any {
	return c.entries.ToMap()
}

// Filter keeps the records for which keep returns true.
func (c *Collection) Filter(keep func(code string, record any) bool) *Collection {
	out := layering.NewMap[any]()
	for code, record := range c.entries.All() {
		if keep(code, record) {
			out.Set(code, record)
		}
	}
	return c.derive(out)
}

// Map replaces every record with fn's result.
func (c *Collection) Map(fn func(code string, record any) any) *Collection {
	out := layering.NewMap[any]()
	for code, record := range c.entries.All() {
		out.Set(code, fn(code, record))
	}
	return c.derive(out)
}

// Find returns the first record for which match returns true.
func (c *Collection) Find(match func(code string, record any) bool) (string, any, bool) {
	for code, record := range c.entries.All() {
		if match(code, record) {
			return code, record, true
		}
	}
	return "", nil, false
}

// First returns the first record in order.
func (c *Collection) First() (string, any, bool) {
	return c.Find(func(string, any) bool { return true })
}

// Where keeps the records whose field at path equals value. Strings compare
// case-insensitively, numbers by value, and a list field matches when any
// of its elements does.
func (c *Collection) Where(path string, value any) *Collection {
	return c.Filter(func(_ string, record any) bool {
		field, ok := lookupPath(recordOf(record), path)
		return ok && fieldMatches(field, value)
	})
}

// WhereExpr keeps the records for which expression evaluates to true. The
// expression is compiled once and run per record with its fields in scope.
func (c *Collection) WhereExpr(expression string) (*Collection, error) {
	engine := evaluatorEngineName(c.evaluator)
	rule, err := c.evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(engine, expression, "", err)
	}

	start := time.Now()
	out := layering.NewMap[any]()
	for code, record := range c.entries.All() {
		result, err := rule.Evaluate(RuleContext{Record: record, Code: code})
		if err == nil {
			matched, ok := result.(bool)
			if !ok {
				err = fmt.Errorf("predicate returned %T, want bool", result)
			} else if matched {
				out.Set(code, record)
			}
		}
		if err != nil {
			err = wrapEvaluationError(engine, expression, code, err)
			c.evalLog.LogEvaluation(EvaluatorLogEvent{
				Engine:   engine,
				Expr:     expression,
				Code:     code,
				Duration: time.Since(start),
				Err:      err,
			})
			return nil, err
		}
	}
	c.evalLog.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expression,
		Matched:  out.Len(),
		Duration: time.Since(start),
	})
	return c.derive(out), nil
}

// Pluck returns the value at path for every record that has one.
func (c *Collection) Pluck(path string) []any {
	out := []any{}
	for _, record := range c.entries.All() {
		if value, ok := lookupPath(recordOf(record), path); ok {
			out = append(out, value)
		}
	}
	return out
}

// Distinct returns the sorted set of scalar values found at path. List
// values contribute each element.
func (c *Collection) Distinct(path string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, value := range c.Pluck(path) {
		if list, ok := value.([]any); ok {
			for _, item := range list {
				if item != nil {
					seen.Add(fmt.Sprint(item))
				}
			}
			continue
		}
		if value != nil {
			seen.Add(fmt.Sprint(value))
		}
	}
	out := seen.ToSlice()
	slices.Sort(out)
	return out
}

// FindByName returns the record whose common or official name is closest to
// name, within maxDistance edits. Ties go to the earlier record.
func (c *Collection) FindByName(name string, maxDistance int) (string, any, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return "", nil, false
	}
	bestCode, best, bestDistance := "", any(nil), maxDistance+1
	for code, record := range c.entries.All() {
		for _, candidate := range recordNames(recordOf(record)) {
			distance := levenshtein.ComputeDistance(target, strings.ToLower(candidate))
			if distance < bestDistance {
				bestCode, best, bestDistance = code, record, distance
			}
		}
		if bestDistance == 0 {
			break
		}
	}
	if bestDistance > maxDistance {
		return "", nil, false
	}
	return bestCode, best, true
}

// Fields describes every field path found across the records.
func (c *Collection) Fields() []FieldDescriptor {
	fields := map[string]mapset.Set[string]{}
	for _, record := range c.entries.All() {
		collectFieldTypes(recordOf(record), "", fields)
	}
	return sortedDescriptors(fields)
}

func recordNames(record map[string]any) []string {
	var names []string
	switch name := record["name"].(type) {
	case string:
		names = append(names, name)
	case map[string]any:
		for _, key := range []string{"common", "official"} {
			if value, ok := name[key].(string); ok && value != "" {
				names = append(names, value)
			}
		}
	}
	return names
}

func fieldMatches(field, want any) bool {
	if list, ok := field.([]any); ok {
		if _, wantList := want.([]any); !wantList {
			for _, item := range list {
				if fieldMatches(item, want) {
					return true
				}
			}
			return false
		}
	}
	if a, ok := field.(string); ok {
		if b, ok := want.(string); ok {
			return strings.EqualFold(a, b)
		}
	}
	if a, ok := toFloat(field); ok {
		if b, ok := toFloat(want); ok {
			return a == b
		}
	}
	return reflect.DeepEqual(field, want)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
