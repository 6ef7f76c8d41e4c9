// Package weather knows the shape of the WeatherBit current-conditions API:
// how to address it and what a well-formed record looks like.
package weather

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrParse marks a response body that is not valid JSON.
	ErrParse = errors.New("weather response is not valid JSON")
	// ErrSchema marks a record that does not match Schema.
	ErrSchema = errors.New("weather record does not match schema")
)

// Kind is the expected shape of a record field.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	// KindArray is checked for array-ness only; elements are not inspected.
	KindArray
	// KindObject requires the field's SubFields to be present; their values
	// are not inspected.
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field is one entry of the schema table.
type Field struct {
	Kind      Kind
	SubFields []string
}

var (
	number = Field{Kind: KindNumber}
	str    = Field{Kind: KindString}
)

// Schema is the allow-list of known record fields. Fields a record carries
// that are not listed here are ignored.
var Schema = map[string]Field{
	"count":          number,
	"app_temp":       number,
	"aqi":            number,
	"city_name":      str,
	"clouds":         number,
	"country_code":   str,
	"datetime":       str,
	"dewpt":          number,
	"dhi":            number,
	"dni":            number,
	"elev_angle":     number,
	"ghi":            number,
	"gust":           number,
	"h_angle":        number,
	"lat":            number,
	"lon":            number,
	"ob_time":        str,
	"pod":            str,
	"precip":         number,
	"pres":           number,
	"rh":             number,
	"slp":            number,
	"snow":           number,
	"solar_rad":      number,
	"sources":        {Kind: KindArray},
	"state_code":     str,
	"station":        str,
	"sunrise":        str,
	"sunset":         str,
	"temp":           number,
	"timezone":       str,
	"ts":             number,
	"uv":             number,
	"vis":            number,
	"weather":        {Kind: KindObject, SubFields: []string{"code", "icon", "description"}},
	"wind_cdir":      str,
	"wind_cdir_full": str,
	"wind_dir":       number,
	"wind_spd":       number,
}

// Violation describes one field of one record that failed the schema.
type Violation struct {
	Index    int
	Field    string
	Expected string
	Actual   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("data[%d].%s: expected %s, got %s", v.Index, v.Field, v.Expected, v.Actual)
}

func (v *Violation) Unwrap() error { return ErrSchema }

// Validate checks every record against Schema and returns all violations
// joined, or nil.
func Validate(records []map[string]any) error {
	var errs []error
	for i, rec := range records {
		errs = append(errs, validateRecord(i, rec)...)
	}
	return errors.Join(errs...)
}

func validateRecord(index int, rec map[string]any) []error {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		field, known := Schema[key]
		if !known {
			continue
		}
		value := rec[key]
		actual := kindOf(value)

		switch field.Kind {
		case KindArray:
			if actual != "array" {
				errs = append(errs, &Violation{Index: index, Field: key, Expected: "array", Actual: actual})
			}
		case KindObject:
			obj, _ := value.(map[string]any)
			for _, sub := range field.SubFields {
				if _, ok := obj[sub]; !ok {
					errs = append(errs, &Violation{
						Index:    index,
						Field:    key,
						Expected: fmt.Sprintf("property %q", sub),
						Actual:   actual,
					})
				}
			}
		default:
			if actual != field.Kind.String() {
				errs = append(errs, &Violation{Index: index, Field: key, Expected: field.Kind.String(), Actual: actual})
			}
		}
	}
	return errs
}

// kindOf names the JSON type of a value decoded into interface{}.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
