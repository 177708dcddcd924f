package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	mapadmin "github.com/goliatone/go-mapadmin"
	"github.com/goliatone/go-mapadmin/components/projections"
	internalmodel "github.com/goliatone/go-mapadmin/internal/model"
	pkgschema "github.com/goliatone/go-mapadmin/pkg/schema"
)

const (
	extensionNamespace = "x-mapadmin"
	adminNamespace     = "x-admin"
)

// Identity keys the builder lifts onto the resource. They configure the
// operation, so finding one on a property is almost certainly a mistake.
var identityKeys = map[string]struct{}{
	"name":        {},
	"title":       {},
	"id-field":    {},
	"label-field": {},
	"edit-path":   {},
}

type violation struct {
	file     string
	location string
	message  string
}

// extContext records where in the document an extension block was found, so
// property-only keys (srid, group, map) can be rejected elsewhere.
type extContext struct {
	isProperty bool
	isGeometry bool
}

type linter struct {
	knownSRIDs map[int]struct{}
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint OpenAPI documents for unsupported x-mapadmin extensions.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{
			"examples/fixtures/landmarks.json",
			"examples/http/schema.json",
		}
	}

	systems, err := projections.DefaultSystems()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load projection directory: %v\n", err)
		os.Exit(1)
	}
	lint := &linter{knownSRIDs: make(map[int]struct{}, len(systems))}
	for _, system := range systems {
		lint.knownSRIDs[system.SRID] = struct{}{}
	}

	ctx := context.Background()
	parser := mapadmin.NewParser(pkgschema.WithPartialDocuments(true))

	var violations []violation
	for _, path := range paths {
		linted, err := lint.file(ctx, parser, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func (l *linter) file(ctx context.Context, parser pkgschema.Parser, path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	doc, err := pkgschema.NewDocument(pkgschema.SourceFromFile(path), raw)
	if err != nil {
		return nil, fmt.Errorf("construct document: %w", err)
	}

	operations, err := parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("parse operations: %w", err)
	}

	var result []violation
	for id, op := range operations {
		base := []string{"operation", id}
		result = append(result, l.extensions(path, base, op.Extensions, extContext{})...)
		result = append(result, l.schema(path, append(base, "requestBody"), op.RequestBody, false)...)

		codes := make([]string, 0, len(op.Responses))
		for code := range op.Responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			result = append(result, l.schema(path, append(base, "responses", code), op.Responses[code], false)...)
		}
	}

	return result, nil
}

func (l *linter) schema(file string, path []string, schema pkgschema.Schema, isProperty bool) []violation {
	ctx := extContext{
		isProperty: isProperty,
		isGeometry: isProperty && internalmodel.IsGeometryFormat(schema.Format),
	}

	var result []violation
	result = append(result, l.extensions(file, path, schema.Extensions, ctx)...)

	if len(schema.Properties) > 0 {
		keys := make([]string, 0, len(schema.Properties))
		for key := range schema.Properties {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := appendPath(path, "properties."+key)
			result = append(result, l.schema(file, next, schema.Properties[key], true)...)
		}
	}

	if schema.Items != nil {
		result = append(result, l.schema(file, appendPath(path, "items"), *schema.Items, isProperty)...)
	}

	return result
}

func (l *linter) extensions(file string, path []string, extensions map[string]any, ctx extContext) []violation {
	if len(extensions) == 0 {
		return nil
	}

	var result []violation
	for _, key := range sortedKeys(extensions) {
		value := extensions[key]
		switch {
		case key == extensionNamespace:
			nested, ok := value.(map[string]any)
			if !ok {
				result = append(result, violation{
					file:     file,
					location: formatLocation(path),
					message:  fmt.Sprintf("%s must be an object, found %T", extensionNamespace, value),
				})
				continue
			}
			for _, nestedKey := range sortedKeys(nested) {
				result = append(result, l.hint(file, appendPath(path, nestedKey), nestedKey, nested[nestedKey], ctx)...)
			}
		case strings.HasPrefix(key, extensionNamespace+"-"):
			trimmed := strings.TrimPrefix(key, extensionNamespace+"-")
			result = append(result, l.hint(file, path, trimmed, value, ctx)...)
		case key == adminNamespace:
			nested, ok := value.(map[string]any)
			if !ok {
				result = append(result, violation{
					file:     file,
					location: formatLocation(path),
					message:  fmt.Sprintf("%s must be an object, found %T", adminNamespace, value),
				})
				continue
			}
			// The shared admin namespace is free-form; only the values are
			// constrained.
			for _, nestedKey := range sortedKeys(nested) {
				if _, ok := internalmodel.CanonicalizeExtensionValue(nested[nestedKey]); !ok {
					result = append(result, violation{
						file:     file,
						location: formatLocation(appendPath(path, nestedKey)),
						message:  fmt.Sprintf("value for %q cannot be canonicalised (got %T)", nestedKey, nested[nestedKey]),
					})
				}
			}
		}
	}

	return result
}

func (l *linter) hint(file string, path []string, key string, value any, ctx extContext) []violation {
	if key == "" {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  "extension key is empty",
		}}
	}

	switch key {
	case "map":
		return l.mapBlock(file, path, value, ctx)
	case "srid":
		return l.srid(file, path, value, ctx)
	case "group":
		if !ctx.isGeometry {
			return []violation{{
				file:     file,
				location: formatLocation(path),
				message:  "group is only supported on geometry-format properties",
			}}
		}
		if _, ok := internalmodel.CanonicalizeExtensionValue(value); !ok {
			return []violation{{
				file:     file,
				location: formatLocation(path),
				message:  fmt.Sprintf("value for %q must be a string, number, or boolean (got %T)", key, value),
			}}
		}
		return nil
	}

	if _, identity := identityKeys[key]; identity {
		if ctx.isProperty {
			return []violation{{
				file:     file,
				location: formatLocation(path),
				message:  fmt.Sprintf("%q configures the resource and belongs on the operation, not a property", key),
			}}
		}
		if _, ok := internalmodel.CanonicalizeExtensionValue(value); !ok {
			return []violation{{
				file:     file,
				location: formatLocation(path),
				message:  fmt.Sprintf("value for %q must be a string, number, or boolean (got %T)", key, value),
			}}
		}
		return nil
	}

	if !internalmodel.IsAllowedUIHintKey(key) {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  fmt.Sprintf("unsupported UI extension key %q (supported: %s)", key, strings.Join(internalmodel.AllowedUIHintKeys(), ", ")),
		}}
	}

	if _, ok := internalmodel.CanonicalizeExtensionValue(value); !ok {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  fmt.Sprintf("value for %q must be a string, number, or boolean (got %T)", key, value),
		}}
	}

	return nil
}

func (l *linter) mapBlock(file string, path []string, value any, ctx extContext) []violation {
	if !ctx.isGeometry {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  "map blocks are only supported on geometry-format properties",
		}}
	}

	block, ok := value.(map[string]any)
	if !ok {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  fmt.Sprintf("map must be an object, found %T", value),
		}}
	}

	var result []violation
	for _, key := range sortedKeys(block) {
		entry := appendPath(path, key)
		if !internalmodel.IsAllowedMapHintKey(key) {
			result = append(result, violation{
				file:     file,
				location: formatLocation(entry),
				message:  fmt.Sprintf("unsupported map key %q (supported: %s)", key, strings.Join(internalmodel.AllowedMapHintKeys(), ", ")),
			})
			continue
		}

		canonical, ok := internalmodel.CanonicalizeExtensionValue(block[key])
		if !ok {
			result = append(result, violation{
				file:     file,
				location: formatLocation(entry),
				message:  fmt.Sprintf("value for %q must be a string, number, or boolean (got %T)", key, block[key]),
			})
			continue
		}

		switch key {
		case "height", "zoom":
			if num, err := strconv.Atoi(canonical); err != nil || num <= 0 {
				result = append(result, violation{
					file:     file,
					location: formatLocation(entry),
					message:  fmt.Sprintf("%s must be a positive integer, found %q", key, canonical),
				})
			}
		case "lat", "lon":
			if _, err := strconv.ParseFloat(canonical, 64); err != nil {
				result = append(result, violation{
					file:     file,
					location: formatLocation(entry),
					message:  fmt.Sprintf("%s must be numeric, found %q", key, canonical),
				})
			}
		}
	}

	return result
}

func (l *linter) srid(file string, path []string, value any, ctx extContext) []violation {
	if !ctx.isGeometry {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  "srid is only supported on geometry-format properties",
		}}
	}

	canonical, ok := internalmodel.CanonicalizeExtensionValue(value)
	if !ok {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  fmt.Sprintf("srid must be a positive integer (got %T)", value),
		}}
	}

	srid, err := strconv.Atoi(strings.TrimSpace(canonical))
	if err != nil || srid <= 0 {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  fmt.Sprintf("srid must be a positive integer, found %q", canonical),
		}}
	}

	if _, known := l.knownSRIDs[srid]; !known {
		return []violation{{
			file:     file,
			location: formatLocation(path),
			message:  fmt.Sprintf("srid %d is not in the bundled projection directory", srid),
		}}
	}

	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	next = append(next, segment)
	return next
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
