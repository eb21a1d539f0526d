// Package openapi describes country records as an OpenAPI 3 document. The
// record schema is built either from the field descriptors of a collection,
// which reflect the merged dataset as loaded, or from a typed value such as
// countries.Country.
package openapi

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	countries "github.com/goliatone/go-countries"
)

// Generator renders OpenAPI documents for country records.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator. With no options the document
// describes GET /countries/{code} returning a Country component.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{config: cfg}
}

// FromFields renders a document whose record schema is derived from fields,
// e.g. the result of Collection.Fields.
func (g *Generator) FromFields(fields []countries.FieldDescriptor) (map[string]any, error) {
	schema, err := SchemaFromFields(fields)
	if err != nil {
		return nil, err
	}
	return newDocumentBuilder(g.config, schema).build()
}

// Generate renders a document whose record schema is derived from value by
// reflection. Struct fields follow their json tags.
func (g *Generator) Generate(value any) (map[string]any, error) {
	schema, err := newReflector().schema(reflect.ValueOf(value))
	if err != nil {
		return nil, err
	}
	return newDocumentBuilder(g.config, schema).build()
}

// SchemaFromFields nests dotted field paths into an object schema. A path
// seen with more than one type, or seen both as a leaf and as a parent, is
// rendered with oneOf.
func SchemaFromFields(fields []countries.FieldDescriptor) (map[string]any, error) {
	root := &fieldNode{}
	for _, field := range fields {
		if field.Path == "" {
			return nil, fmt.Errorf("openapi: field descriptor missing path")
		}
		node := root
		for segment := range strings.SplitSeq(field.Path, ".") {
			node = node.child(segment)
		}
		node.types = append(node.types, field.Types...)
	}
	return root.objectSchema(), nil
}

type fieldNode struct {
	types    []string
	children map[string]*fieldNode
}

func (n *fieldNode) child(name string) *fieldNode {
	if n.children == nil {
		n.children = map[string]*fieldNode{}
	}
	next, ok := n.children[name]
	if !ok {
		next = &fieldNode{}
		n.children[name] = next
	}
	return next
}

func (n *fieldNode) objectSchema() map[string]any {
	properties := make(map[string]any, len(n.children))
	for name, child := range n.children {
		properties[name] = child.schema()
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

func (n *fieldNode) schema() map[string]any {
	variants := make([]map[string]any, 0, len(n.types)+1)
	nullable := false
	for _, kind := range n.types {
		if kind == "null" {
			nullable = true
			continue
		}
		if kind == "object" && len(n.children) > 0 {
			continue
		}
		variants = append(variants, schemaForKind(kind))
	}
	if len(n.children) > 0 {
		variants = append(variants, n.objectSchema())
	}

	var out map[string]any
	switch len(variants) {
	case 0:
		out = map[string]any{}
	case 1:
		out = variants[0]
	default:
		oneOf := make([]any, len(variants))
		for i, variant := range variants {
			oneOf[i] = variant
		}
		out = map[string]any{"oneOf": oneOf}
	}
	if nullable {
		out["nullable"] = true
	}
	return out
}

func schemaForKind(kind string) map[string]any {
	if item, ok := strings.CutPrefix(kind, "[]"); ok {
		items := map[string]any{}
		if item != "any" {
			items = schemaForKind(item)
		}
		return map[string]any{"type": "array", "items": items}
	}
	switch kind {
	case "string":
		return map[string]any{"type": "string"}
	case "number":
		return map[string]any{"type": "number"}
	case "bool":
		return map[string]any{"type": "boolean"}
	case "object":
		return map[string]any{"type": "object"}
	case "array":
		return map[string]any{"type": "array", "items": map[string]any{}}
	default:
		return map[string]any{}
	}
}

// reflector tracks the struct types being expanded so recursive types such
// as CountryName.Native terminate.
type reflector struct {
	active map[reflect.Type]bool
}

func newReflector() *reflector {
	return &reflector{active: map[reflect.Type]bool{}}
}

func (r *reflector) schema(rv reflect.Value) (map[string]any, error) {
	if !rv.IsValid() {
		return map[string]any{"nullable": true}, nil
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv = reflect.New(rv.Type().Elem()).Elem()
			break
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		return r.schema(rv.Elem())
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return map[string]any{"type": "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, nil
	case reflect.String:
		return map[string]any{"type": "string"}, nil
	case reflect.Struct:
		if rv.Type() == reflect.TypeOf(time.Time{}) {
			return map[string]any{
				"type":   "string",
				"format": "date-time",
			}, nil
		}
		if r.active[rv.Type()] {
			return map[string]any{"type": "object"}, nil
		}
		r.active[rv.Type()] = true
		defer delete(r.active, rv.Type())
		return r.structSchema(rv)
	case reflect.Map:
		return r.mapSchema(rv)
	case reflect.Slice, reflect.Array:
		return r.sliceSchema(rv)
	default:
		return nil, fmt.Errorf("openapi: unsupported kind %s", rv.Kind())
	}
}

// mapSchema describes the keys present in rv. An empty map has no fixed
// keys, so its values are described through additionalProperties.
func (r *reflector) mapSchema(rv reflect.Value) (map[string]any, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("openapi: map key type %s unsupported", rv.Type().Key())
	}
	if rv.Len() == 0 {
		values, err := r.schema(reflect.New(rv.Type().Elem()).Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"type":                 "object",
			"additionalProperties": values,
		}, nil
	}

	names := make([]string, 0, rv.Len())
	for _, key := range rv.MapKeys() {
		names = append(names, key.String())
	}
	sort.Strings(names)

	properties := make(map[string]any, len(names))
	for _, name := range names {
		child, err := r.schema(rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key())))
		if err != nil {
			return nil, err
		}
		properties[name] = child
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}, nil
}

func (r *reflector) structSchema(rv reflect.Value) (map[string]any, error) {
	rt := rv.Type()
	properties := map[string]any{}

	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		child, err := r.schema(rv.Field(i))
		if err != nil {
			return nil, err
		}
		properties[name] = child
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
	}, nil
}

func (r *reflector) sliceSchema(rv reflect.Value) (map[string]any, error) {
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return map[string]any{
			"type":   "string",
			"format": "byte",
		}, nil
	}

	var item reflect.Value
	if rv.Len() > 0 {
		item = rv.Index(0)
	} else {
		item = reflect.New(rv.Type().Elem()).Elem()
	}
	itemSchema, err := r.schema(item)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":  "array",
		"items": itemSchema,
	}, nil
}
