package openapi

import (
	"fmt"
	"sort"
	"strings"
)

type documentBuilder struct {
	config generatorConfig
	schema map[string]any
}

func newDocumentBuilder(config generatorConfig, schema map[string]any) *documentBuilder {
	return &documentBuilder{config: config, schema: schema}
}

func (b *documentBuilder) build() (map[string]any, error) {
	if b.schema == nil {
		return nil, fmt.Errorf("openapi: record schema cannot be nil")
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   b.buildPaths(),
	}
	if name := b.config.rootComponent; name != "" {
		document["components"] = map[string]any{
			"schemas": map[string]any{name: b.schema},
		}
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (b *documentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *documentBuilder) recordSchema() map[string]any {
	if name := b.config.rootComponent; name != "" {
		return map[string]any{"$ref": "#/components/schemas/" + name}
	}
	return b.schema
}

func (b *documentBuilder) buildPaths() map[string]any {
	method := strings.ToLower(b.config.operation.Method)
	if method == "" {
		method = "get"
	}

	statuses := make([]string, 0, len(b.config.responses))
	for status := range b.config.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	responses := make(map[string]any, len(statuses))
	for _, status := range statuses {
		resp := b.config.responses[status]
		response := map[string]any{
			"description": resp.Description,
		}
		if resp.Schema {
			response["content"] = map[string]any{
				b.config.contentType: map[string]any{
					"schema": b.recordSchema(),
				},
			}
		}
		responses[status] = response
	}

	operation := map[string]any{
		"operationId": b.operationID(),
		"responses":   responses,
	}
	if summary := strings.TrimSpace(b.config.operation.Summary); summary != "" {
		operation["summary"] = summary
	}
	if name := b.config.operation.Parameter; name != "" {
		operation["parameters"] = []any{
			map[string]any{
				"name":     name,
				"in":       "path",
				"required": true,
				"schema":   map[string]any{"type": "string"},
			},
		}
	}

	return map[string]any{
		b.config.operation.Path: map[string]any{
			method: operation,
		},
	}
}

func (b *documentBuilder) operationID() string {
	if b.config.operation.OperationID != "" {
		return b.config.operation.OperationID
	}
	method := strings.ToLower(b.config.operation.Method)
	if method == "" {
		method = "get"
	}
	return fmt.Sprintf("%s:%s", method, b.config.operation.Path)
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		if pathKey == "" {
			return fmt.Errorf("openapi: path cannot be empty")
		}
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			responses, _ := operation["responses"].(map[string]any)
			if len(responses) == 0 {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
			if params, ok := operation["parameters"].([]any); ok {
				for _, param := range params {
					name, _ := param.(map[string]any)["name"].(string)
					if !strings.Contains(pathKey, "{"+name+"}") {
						return fmt.Errorf("openapi: path %q does not declare parameter %q", pathKey, name)
					}
				}
			}
		}
	}
	return nil
}
