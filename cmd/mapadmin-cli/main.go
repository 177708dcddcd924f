// Command mapadmin-cli renders an admin page for one operation of an OpenAPI
// document, or inspects the resource built from it. Output goes to stdout
// unless -output names a file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	json "github.com/goccy/go-json"

	mapadmin "github.com/goliatone/go-mapadmin"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/orchestrator"
	pkgschema "github.com/goliatone/go-mapadmin/pkg/schema"
)

func main() {
	opID := flag.String("operation", "createLandmark", "operation ID to render")
	renderer := flag.String("renderer", "", "renderer name (empty uses the default)")
	output := flag.String("output", "", "output file (stdout if empty)")
	source := flag.String("source", "examples/fixtures/landmarks.json", "OpenAPI document path or URL")
	inspect := flag.Bool("inspect", false, "print the built resource as JSON instead of rendering")
	flag.Parse()

	ctx := context.Background()

	src, err := pkgschema.SourceFromLocation(*source)
	if err != nil {
		log.Fatalf("invalid source: %v", err)
	}

	if *inspect {
		if err := inspectResource(ctx, src, *opID); err != nil {
			log.Fatalf("inspect: %v", err)
		}
		return
	}

	gen := orchestrator.New()

	page, err := gen.Generate(ctx, orchestrator.Request{
		Source:      src,
		OperationID: *opID,
		Renderer:    *renderer,
	})
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, page, 0o644); err != nil {
			log.Fatalf("write output: %v", err)
		}
		fmt.Printf("page written to %s\n", *output)
		return
	}
	fmt.Println(string(page))
}

func inspectResource(ctx context.Context, src pkgschema.Source, operationID string) error {
	loader := mapadmin.NewLoader(pkgschema.WithDefaultSources())
	document, err := loader.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	operations, err := mapadmin.NewParser().Operations(ctx, document)
	if err != nil {
		return fmt.Errorf("parse operations: %w", err)
	}
	operation, ok := operations[operationID]
	if !ok {
		return fmt.Errorf("operation %q not found", operationID)
	}

	resource, err := model.NewBuilder().Build(operation)
	if err != nil {
		return fmt.Errorf("build resource: %w", err)
	}

	return writeInspection(os.Stdout, resource)
}

type fieldSummary struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Format   string            `json:"format,omitempty"`
	Required bool              `json:"required,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	UIHints  map[string]string `json:"uiHints,omitempty"`
}

type resourceSummary struct {
	OperationID string            `json:"operationId"`
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	IDField     string            `json:"idField,omitempty"`
	LabelField  string            `json:"labelField,omitempty"`
	EditPath    string            `json:"editPath,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
	Fields      []fieldSummary    `json:"fields"`
}

func writeInspection(w io.Writer, resource model.Resource) error {
	summary := resourceSummary{
		OperationID: resource.OperationID,
		Name:        resource.Name,
		Title:       resource.Title,
		Endpoint:    resource.Endpoint,
		Method:      resource.Method,
		IDField:     resource.IDField,
		LabelField:  resource.LabelField,
		EditPath:    resource.EditPath,
		Metadata:    resource.Metadata,
		UIHints:     resource.UIHints,
	}
	for _, field := range resource.Fields {
		summary.Fields = append(summary.Fields, fieldSummary{
			Name:     field.Name,
			Type:     string(field.Type),
			Format:   field.Format,
			Required: field.Required,
			Metadata: field.Metadata,
			UIHints:  field.UIHints,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}
