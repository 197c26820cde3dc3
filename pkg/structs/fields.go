// Package structs reads and writes struct fields by name.
package structs

import (
	"github.com/oleiade/reflections"
	"github.com/pkg/errors"
)

// GetField returns the value of the provided obj field. obj can whether be a structure or pointer to structure.
func GetField(obj any, name string) (any, error) {
	v, err := reflections.GetField(obj, name)
	if err != nil {
		return nil, errors.Wrapf(err, "field %s", name)
	}
	return v, nil
}

// SetField sets the provided obj field with provided value.
// obj param has to be a pointer to a struct.
// Provided value type should match with the struct field you're trying to set.
func SetField(obj any, name string, value any) error {
	return errors.Wrapf(reflections.SetField(obj, name, value), "field %s", name)
}

// Pick returns the given fields of obj. All the fields are returned when names is empty.
func Pick(obj any, names ...string) (map[string]any, error) {
	if len(names) == 0 {
		var err error
		names, err = reflections.Fields(obj)
		if err != nil {
			return nil, errors.Wrap(err, "could not list fields")
		}
	}

	fields := make(map[string]any, len(names))
	for _, name := range names {
		v, err := GetField(obj, name)
		if err != nil {
			return nil, err
		}
		fields[name] = v
	}
	return fields, nil
}
