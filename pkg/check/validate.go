// Package check validates configuration and request structs.
package check

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Validatable is implemented by anything that has fields that should be validated.
type Validatable interface {
	Validate() []error
}

// Failure is one failed check and the key path of the value that failed it.
type Failure struct {
	// Path is dotted like a config key, e.g. "history.retention"; empty for the root value.
	Path string
	Err  error
}

func (f Failure) String() string {
	if f.Path == "" {
		return f.Err.Error()
	}
	return f.Path + ": " + f.Err.Error()
}

// Error lists every failed check of a Validate call, ordered by path.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	lines := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		lines = append(lines, f.String())
	}
	noun := "checks"
	if len(lines) == 1 {
		noun = "check"
	}
	return fmt.Sprintf("%d %s failed:\n\t%s", len(lines), noun, strings.Join(lines, "\n\t"))
}

// Validate walks v and every struct, slice, map and pointer reachable from it, calling
// Validate on each Validatable value. Values are addressed by their JSON keys so a failure
// names the key a user sets in a config file. The result is nil or an *Error.
func Validate(v interface{}) error {
	var failures []Failure
	walk(reflect.ValueOf(v), "", &failures)
	if len(failures) == 0 {
		return nil
	}
	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].Path < failures[j].Path
	})
	return &Error{Failures: failures}
}

func walk(v reflect.Value, path string, failures *[]Failure) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			walk(v.Elem(), path, failures)
		}
		return
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), fmt.Sprintf("%s[%d]", path, i), failures)
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			walk(v.MapIndex(key), join(path, fmt.Sprint(key.Interface())), failures)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)
			name, ok := keyName(field)
			if !ok || !v.Field(i).CanInterface() {
				continue
			}
			walk(v.Field(i), join(path, name), failures)
		}
	}

	if !v.IsValid() {
		return
	}
	// Check through the address of a copy so pointer-receiver Validate methods are found.
	vp := reflect.New(v.Type())
	vp.Elem().Set(v)
	if validatable, ok := vp.Interface().(Validatable); ok {
		for _, err := range validatable.Validate() {
			if err != nil {
				*failures = append(*failures, Failure{Path: path, Err: err})
			}
		}
	}
}

// keyName returns the JSON key of a struct field. Embedded structs without a tag share the
// key of their parent, as encoding/json flattens them.
func keyName(field reflect.StructField) (string, bool) {
	tag := strings.Split(field.Tag.Get("json"), ",")[0]
	switch {
	case tag == "-":
		return "", false
	case tag != "":
		return tag, true
	case field.Anonymous:
		return "", true
	default:
		return field.Name, true
	}
}

func join(path, key string) string {
	switch {
	case key == "":
		return path
	case path == "":
		return key
	default:
		return path + "." + key
	}
}
