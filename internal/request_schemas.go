package internal

import (
	"embed"

	"github.com/santhosh-tekuri/jsonschema/v2"

	"github.com/leadflow/forecaster/internal/api"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	forecastSchema    = mustSchema("forecast.json")
	incrementalSchema = mustSchema("incremental.json")
	scenariosSchema   = mustSchema("scenarios.json")
)

func mustSchema(name string) *jsonschema.Schema {
	doc, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic("missing schema: " + name)
	}
	return api.MustCompileSchema(name, doc)
}
