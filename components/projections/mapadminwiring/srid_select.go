package mapadminwiring

import (
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/components/projections"
	"github.com/goliatone/go-mapadmin/pkg/orchestrator"
)

type sridSelectConfig struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	SearchParam string            `json:"searchParam"`
	LimitParam  string            `json:"limitParam"`
	Limit       int               `json:"limit"`
	ResultsPath string            `json:"resultsPath"`
	Mapping     map[string]string `json:"mapping"`
}

// ProjectionsGeometryOverride returns an orchestrator GeometryOverride that
// promotes a field to a geometry widget whose SRID select loads choices from
// the projections component (using the component defaults plus any provided
// overrides).
//
// The generated widget option payload:
// - points at <basePath><RoutePath> (default: <basePath>/api/projections)
// - uses resultsPath "data" with value/label mapping
// - includes the component's search param and default limit
func ProjectionsGeometryOverride(operationID, fieldPath, basePath string, fns ...projections.OptionFn) orchestrator.GeometryOverride {
	opts := projections.NewOptions(fns...)
	url := projections.MountPath(basePath, func(o *projections.Options) {
		if o == nil {
			return
		}
		*o = opts
	})

	payload, err := json.Marshal(map[string]sridSelectConfig{
		"sridSelect": {
			URL:         url,
			Method:      "GET",
			SearchParam: opts.SearchParam,
			LimitParam:  opts.LimitParam,
			Limit:       opts.DefaultLimit,
			ResultsPath: "data",
			Mapping: map[string]string{
				"value": "value",
				"label": "label",
			},
		},
	})
	options := ""
	if err == nil {
		options = string(payload)
	}

	return orchestrator.GeometryOverride{
		OperationID: operationID,
		FieldPath:   fieldPath,
		Config: orchestrator.GeometryConfig{
			Options: options,
		},
	}
}

// SRIDFromOptionValue converts a projections option value back into a numeric
// SRID, returning 0 for unusable input.
func SRIDFromOptionValue(value string) int {
	srid, err := strconv.Atoi(value)
	if err != nil || srid <= 0 {
		return 0
	}
	return srid
}
