// Package convext (convert extensions) are helpers for converting things.
package convext

import (
	"bytes"
	"encoding/json"
	"sort"
)

func Must(e error) {
	if e != nil {
		panic(e)
	}
}

// ToObject converts o to json, and then parses it into an object.
// Useful when you need to get the fields for an object,
// like when overlaying a partial update onto a record.
// This is slow, so use it sparingly- if you need it to be fast,
// create a method on your type.
func ToObject(o interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func MustToObject(o interface{}) map[string]interface{} {
	m, err := ToObject(o)
	Must(err)
	return m
}

// FromObject is the reverse of ToObject: it converts the loosely-typed obj to json,
// and decodes it into the struct pointed to by out.
// Errors are the encoding/json errors, so callers can inspect
// *json.UnmarshalTypeError to find which field had the wrong type.
func FromObject(obj map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	return dec.Decode(out)
}

// Overlay returns a new object with every key of base,
// replaced or extended by every key in top.
// Neither argument is modified.
func Overlay(base, top map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(top))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range top {
		result[k] = v
	}
	return result
}

func MustToJson(o interface{}) string {
	b, err := json.MarshalIndent(o, "", "  ")
	Must(err)
	return string(b)
}

func SortedObjectKeys(o map[string]interface{}) []string {
	result := make([]string, 0, len(o))
	for k := range o {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
