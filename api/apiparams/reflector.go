package apiparams

import (
	"fmt"
	"reflect"
	"strconv"
)

type paramField struct {
	Name        string
	Source      ParamSource
	StructField reflect.StructField
}

// reflector holds as much of the reflection code as possible, because reflection is hard.
type reflector struct {
	pointerValue, underlyingValue reflect.Value
	fieldsByParamName             map[string]paramField
	paramNamesByFieldName         map[string]string
}

func newReflector(paramsStructPtr interface{}) reflector {
	pointerValue := reflect.ValueOf(paramsStructPtr)
	r := reflector{
		pointerValue:          pointerValue,
		underlyingValue:       pointerValue.Elem(),
		fieldsByParamName:     make(map[string]paramField),
		paramNamesByFieldName: make(map[string]string),
	}
	r.parseStructTags(r.underlyingValue.Type(), nil)
	return r
}

// Pointer returns the pointer passed to Bind.
func (r reflector) Pointer() interface{} {
	return r.pointerValue.Interface()
}

// ParamNameFor maps a struct field name, as reported by the validator,
// to the parameter name in its struct tag.
func (r reflector) ParamNameFor(fieldName string) string {
	if n, ok := r.paramNamesByFieldName[fieldName]; ok {
		return n
	}
	return fieldName
}

// parseStructTags maps parameter names to the fields that bind them.
// Only top-level fields (and fields of embedded structs) can be parameters,
// since path and query parameters are a flat list.
func (r reflector) parseStructTags(t reflect.Type, index []int) {
	for i := 0; i < t.NumField(); i++ {
		fieldDef := t.Field(i)
		fieldDef.Index = append(append([]int{}, index...), fieldDef.Index...)
		if fieldDef.Anonymous && fieldDef.Type.Kind() == reflect.Struct {
			r.parseStructTags(fieldDef.Type, fieldDef.Index)
			continue
		}
		for _, src := range allParamSources {
			name, ok := fieldDef.Tag.Lookup(string(src))
			if !ok || name == "-" {
				continue
			}
			if name == "" {
				name = fieldDef.Name
			}
			r.fieldsByParamName[name] = paramField{Name: name, Source: src, StructField: fieldDef}
			r.paramNamesByFieldName[fieldDef.Name] = name
			break
		}
	}
}

func (r reflector) setFromDefaults() error {
	for _, pf := range r.fieldsByParamName {
		def := pf.StructField.Tag.Get("default")
		if def == "" {
			continue
		}
		if err := r.setField(pf, def); err != nil {
			return err
		}
	}
	return nil
}

// set binds value to the field for paramName,
// if there is one and it binds from source.
// Unknown parameters are ignored ("?_=123456" is unavoidable).
func (r reflector) set(paramName, value string, source ParamSource) *ParamError {
	pf, ok := r.fieldsByParamName[paramName]
	if !ok || pf.Source != source {
		return nil
	}
	if err := r.setField(pf, value); err != nil {
		return &ParamError{Param: paramName, Message: err.Error()}
	}
	return nil
}

func (r reflector) setField(pf paramField, value string) error {
	field := r.underlyingValue.FieldByIndex(pf.StructField.Index)
	if !field.CanSet() {
		panic(fmt.Sprintf("cannot set field %s, some reflection/pointer programming stuff probably", pf.StructField.Name))
	}
	v, err := parseValue(pf.StructField.Type, field, value)
	if err != nil {
		return err
	}
	field.Set(v)
	return nil
}

// parseValue parses value into a reflect.Value of type t.
// current is the existing field value; slices append to it.
// Only "simple" types are supported, since path and query values are strings:
// ints, floats, strings, bools, slices of those, and pointers to any of them.
// Other types panic, since that is a mistake in the params struct.
func parseValue(t reflect.Type, current reflect.Value, value string) (reflect.Value, error) {
	if t.Kind() == reflect.Ptr {
		var elemCurrent reflect.Value
		if current.IsValid() && !current.IsNil() {
			elemCurrent = current.Elem()
		}
		v, err := parseValue(t.Elem(), elemCurrent, value)
		if err != nil {
			return v, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, t.Bits())
		if err != nil {
			return v, fmt.Errorf("%q is not an integer", value)
		}
		v.SetInt(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, t.Bits())
		if err != nil {
			return v, fmt.Errorf("%q is not a number", value)
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return v, fmt.Errorf("%q is not a boolean", value)
		}
		v.SetBool(b)
	case reflect.String:
		v.SetString(value)
	case reflect.Slice:
		elem, err := parseValue(t.Elem(), reflect.Value{}, value)
		if err != nil {
			return elem, err
		}
		base := current
		if !base.IsValid() || base.IsNil() {
			base = reflect.MakeSlice(t, 0, 1)
		}
		return reflect.Append(base, elem), nil
	default:
		panic(fmt.Sprintf(
			"parameter struct has parsed field with type %v, kind %v; "+
				"support must be added, or the type must change",
			t, t.Kind()))
	}
	return v, nil
}
