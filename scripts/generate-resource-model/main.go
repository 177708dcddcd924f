// Command generate-resource-model regenerates the golden fixtures under
// internal/model/testdata. The OpenAPI documents live inline so the fixtures
// and the documents that produce them cannot drift apart: run it after
// changing the parser or the resource builder and review the diff.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	mapadmin "github.com/goliatone/go-mapadmin"
	"github.com/goliatone/go-mapadmin/pkg/model"
	pkgschema "github.com/goliatone/go-mapadmin/pkg/schema"
)

// districtDocument exercises the full extension surface: operation identity
// metadata, a shared geometry group, a non-default SRID, and scalar
// validations.
const districtDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "District Admin API", "version": "1.0.0"},
  "paths": {
    "/districts": {
      "post": {
        "operationId": "createDistrict",
        "summary": "Create a district",
        "x-mapadmin": {
          "title": "City Districts",
          "label-field": "name",
          "edit-path": "/admin/districts/{id}"
        },
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name", "boundary"],
                "properties": {
                  "active": {"type": "boolean", "default": true},
                  "boundary": {
                    "type": "string",
                    "format": "geometry-polygon",
                    "x-mapadmin": {"group": "territory"}
                  },
                  "name": {"type": "string", "minLength": 3, "maxLength": 64},
                  "office": {
                    "type": "string",
                    "format": "geometry-point",
                    "x-mapadmin": {"group": "territory", "srid": 3857}
                  },
                  "population": {
                    "type": "integer",
                    "description": "Resident head count",
                    "minimum": 0
                  }
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "District created"}
        }
      }
    }
  }
}`

// stationDocument is the bare-minimum counterpart: one geometry field, no
// extensions, a path parameter in the endpoint.
const stationDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Station Admin API", "version": "1.0.0"},
  "paths": {
    "/stations/{id}": {
      "post": {
        "operationId": "createStation",
        "parameters": [
          {
            "name": "id",
            "in": "path",
            "required": true,
            "schema": {"type": "string"}
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["position"],
                "properties": {
                  "code": {"type": "string", "pattern": "^[A-Z]{3}$"},
                  "position": {"type": "string", "format": "geometry-point"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Station created"}
        }
      }
    }
  }
}`

func main() {
	outputDir := flag.String("output", "internal/model/testdata", "directory for the regenerated fixtures")
	flag.Parse()

	ctx := context.Background()
	parser := mapadmin.NewParser()

	districtOps, err := parseOperations(ctx, parser, "districts.json", districtDocument)
	if err != nil {
		fail("parse district document: %v", err)
	}
	stationOps, err := parseOperations(ctx, parser, "stations.json", stationDocument)
	if err != nil {
		fail("parse station document: %v", err)
	}

	districtOp, ok := districtOps["createDistrict"]
	if !ok {
		fail("district document is missing the createDistrict operation")
	}
	resource, err := model.NewBuilder().Build(districtOp)
	if err != nil {
		fail("build district resource: %v", err)
	}

	fixtures := []struct {
		name  string
		value any
	}{
		{"district_operations.golden.json", districtOps},
		{"station_operations.golden.json", stationOps},
		{"create_district_resource.golden.json", resource},
	}
	for _, fixture := range fixtures {
		path := filepath.Join(*outputDir, fixture.name)
		if err := writeFixture(path, fixture.value); err != nil {
			fail("write %s: %v", path, err)
		}
		fmt.Printf("✓ Wrote %s\n", path)
	}
}

func parseOperations(ctx context.Context, parser pkgschema.Parser, name, payload string) (map[string]pkgschema.Operation, error) {
	doc, err := pkgschema.NewDocument(pkgschema.SourceFromFS(name), []byte(payload))
	if err != nil {
		return nil, err
	}
	return parser.Operations(ctx, doc)
}

func writeFixture(path string, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
