package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// MaybeFloat allows JSON users to send a number either as a JSON number or as a numeric
// string, and to distinguish an absent key from null. It should be used as a non-pointer
// value in structs. After unmarshaling, IsPresent is true if the key was present, whether or
// not the value was null; Value is nil for null and absent keys.
type MaybeFloat struct {
	IsPresent bool
	Value     *float64
}

// UnmarshalJSON unmarshals the given data, which should be a number, a numeric string or null.
func (f *MaybeFloat) UnmarshalJSON(data []byte) error {
	// If this method is called at all, the key must be present.
	f.IsPresent = true

	if string(data) == "null" {
		f.Value = nil
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		f.Value = &v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Errorf("could not convert string to float: '%s'", v)
		}
		f.Value = &parsed
	default:
		return errors.Errorf("could not convert %s to float", data)
	}
	return nil
}

// Or returns the value, or def when the value is absent or null.
func (f MaybeFloat) Or(def float64) float64 {
	if f.Value == nil {
		return def
	}
	return *f.Value
}

// BindJSON decodes the request body into i, rejecting malformed bodies with a 400 that
// names the problem.
func BindJSON(i interface{}, c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	return decodeJSON(body, i)
}

// readBody returns the request body, rejecting an empty one.
func readBody(c echo.Context) ([]byte, error) {
	body := c.Request().Body
	if body == nil {
		return nil, AsValidationError("Invalid input: request body must be a JSON object")
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return nil, errors.Wrap(err, "reading request body")
	}
	if len(bytes.TrimSpace(buf.Bytes())) == 0 {
		return nil, AsValidationError("Invalid input: request body must be a JSON object")
	}
	return buf.Bytes(), nil
}

func decodeJSON(body []byte, i interface{}) error {
	if err := json.Unmarshal(body, i); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return AsValidationError("Invalid input: request body must be a JSON object")
			}
			return AsValidationError("Invalid input: %s has the wrong type", typeErr.Field)
		}
		return AsValidationError("Invalid input: %s", err)
	}
	return nil
}
