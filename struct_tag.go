package di

import (
	"reflect"
	"strings"

	"github.com/sectrean/di-activator/internal/errors"
)

// tagName is the struct tag key used to mark injected and cached fields.
//
// Supported values:
//
//	`di:"resolve"`                 inject the field from the dependencies
//	`di:"resolve,optional"`        leave the field unchanged if the dependency is missing
//	`di:"cache"`                   expose the field value to descendants
//	`di:"resolve,tag=primary"`     use a string tag for the key
//	`di:"resolve,cache"`           inject the field, then expose it to descendants
const tagName = "di"

type fieldSpec struct {
	index    int
	name     string
	typ      reflect.Type
	resolve  bool
	cache    bool
	optional bool
	tag      any
}

func (f fieldSpec) key() Key {
	return Key{Type: f.typ, Tag: f.tag}
}

// typeFields is the result of scanning the fields declared directly on a struct type.
type typeFields struct {
	baseIndex int
	baseType  reflect.Type
	fields    []fieldSpec
}

// scanFields finds the base struct and the tagged fields of t.
//
// The base is the first value-embedded struct field. Its own fields are not scanned here;
// they belong to the base type's activator.
func scanFields(t reflect.Type) (*typeFields, error) {
	tf := &typeFields{baseIndex: -1}
	var errs errors.MultiError

	for i := range t.NumField() {
		f := t.Field(i)
		value, tagged := f.Tag.Lookup(tagName)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && tf.baseIndex < 0 {
			if tagged {
				errs = errs.Append(errorf(ErrInvalidDeclaration, "field %s: embedded base struct cannot be tagged", f.Name))
				continue
			}
			tf.baseIndex = i
			tf.baseType = f.Type
			continue
		}

		if !tagged || value == "-" {
			continue
		}

		spec, err := parseFieldTag(i, f, value)
		if err != nil {
			errs = errs.Append(errors.Wrapf(err, "field %s", f.Name))
			continue
		}
		tf.fields = append(tf.fields, spec)
	}

	if err := errs.Join(); err != nil {
		return nil, err
	}

	return tf, nil
}

func parseFieldTag(index int, f reflect.StructField, value string) (fieldSpec, error) {
	spec := fieldSpec{
		index: index,
		name:  f.Name,
		typ:   f.Type,
	}

	for _, opt := range strings.Split(value, ",") {
		opt = strings.TrimSpace(opt)

		switch {
		case opt == "resolve":
			spec.resolve = true
		case opt == "cache":
			spec.cache = true
		case opt == "optional":
			spec.optional = true
		case strings.HasPrefix(opt, "tag="):
			tag := strings.TrimPrefix(opt, "tag=")
			if tag == "" {
				return spec, errorf(ErrInvalidDeclaration, "empty tag in %q", value)
			}
			spec.tag = tag
		default:
			return spec, errorf(ErrInvalidDeclaration, "unknown option %q in %q", opt, value)
		}
	}

	if !spec.resolve && !spec.cache {
		return spec, errorf(ErrInvalidDeclaration, "%q must contain resolve or cache", value)
	}
	if spec.optional && !spec.resolve {
		return spec, errorf(ErrInvalidDeclaration, "optional requires resolve in %q", value)
	}
	if !f.IsExported() {
		return spec, errorf(ErrInvalidDeclaration, "unexported fields cannot be tagged")
	}

	return spec, nil
}
