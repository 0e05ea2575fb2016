package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v2"
)

// schemaBaseURL names request schemas inside the compiler; nothing is fetched from it.
const schemaBaseURL = "http://forecaster.local/schemas/"

// MustCompileSchema compiles a draft-07 JSON schema document registered under name. The
// schemas are static, so a failure is a programming error and panics.
func MustCompileSchema(name string, doc []byte) *jsonschema.Schema {
	url := schemaBaseURL + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
		panic("invalid schema: " + name)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic("uncompilable schema: " + name)
	}
	return schema
}

// BindValidJSON validates the request body against schema and decodes it into i. Schema
// violations are reported as a 400 naming every offending field.
func BindValidJSON(i interface{}, c echo.Context, schema *jsonschema.Schema) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		return decodeJSON(body, i)
	}
	if err := schema.Validate(bytes.NewReader(body)); err != nil {
		var valErr *jsonschema.ValidationError
		if !errors.As(err, &valErr) {
			return errors.Wrap(err, "validating request body")
		}
		return AsValidationError("Invalid input: %s", strings.Join(leafErrors(valErr), "; "))
	}
	return decodeJSON(body, i)
}

// leafErrors flattens a nested validation error into its leaf messages, sorted.
func leafErrors(valErr *jsonschema.ValidationError) []string {
	var msgs []string
	for _, cause := range valErr.Causes {
		msgs = append(msgs, leafErrors(cause)...)
	}
	if len(msgs) > 0 {
		sort.Strings(msgs)
		return msgs
	}
	return []string{fmt.Sprintf("%s: %s", renderPointer(valErr.InstancePtr), valErr.Message)}
}

// renderPointer renders "#/range/step" as "range.step" and the root as "request body".
func renderPointer(ptr string) string {
	path := strings.Trim(strings.TrimPrefix(ptr, "#"), "/")
	if path == "" {
		return "request body"
	}
	return strings.ReplaceAll(path, "/", ".")
}
