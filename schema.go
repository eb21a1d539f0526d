package countries

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// FieldDescriptor describes a dotted field path and the type found there.
// A path seen with several types lists them all, sorted.
type FieldDescriptor struct {
	Path  string   `json:"path"`
	Types []string `json:"types"`
}

// DescribeRecord lists the leaf paths of record in lexical order.
func DescribeRecord(record Record) []FieldDescriptor {
	fields := map[string]mapset.Set[string]{}
	collectFieldTypes(record, "", fields)
	return sortedDescriptors(fields)
}

func collectFieldTypes(value any, prefix string, fields map[string]mapset.Set[string]) {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 && prefix != "" {
			addFieldType(fields, prefix, "object")
			return
		}
		for key, nested := range typed {
			collectFieldTypes(nested, joinPath(prefix, key), fields)
		}
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		addFieldType(fields, prefix, "[]"+elementType)
	default:
		if prefix != "" {
			addFieldType(fields, prefix, typeName(typed))
		}
	}
}

func addFieldType(fields map[string]mapset.Set[string], path, kind string) {
	set, ok := fields[path]
	if !ok {
		set = mapset.NewThreadUnsafeSet[string]()
		fields[path] = set
	}
	set.Add(kind)
}

func sortedDescriptors(fields map[string]mapset.Set[string]) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(fields))
	for path, kinds := range fields {
		types := kinds.ToSlice()
		slices.Sort(types)
		out = append(out, FieldDescriptor{Path: path, Types: types})
	}
	slices.SortFunc(out, func(a, b FieldDescriptor) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, float32, int, int64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

// lookupPath resolves a dotted path such as "name.common" inside record.
func lookupPath(record map[string]any, path string) (any, bool) {
	if record == nil || path == "" {
		return nil, false
	}
	var current any = record
	for segment := range strings.SplitSeq(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
