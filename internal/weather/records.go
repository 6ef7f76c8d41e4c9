package weather

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseRecords decodes a current-conditions body and returns its data array.
// A body without a data field, or one whose data is null, yields no records.
// A data field that is not an array, or that holds non-object elements, is a
// schema violation.
func ParseRecords(body []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, ok := obj["data"]
	if !ok || raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, &Violation{Index: -1, Field: "data", Expected: "array", Actual: kindOf(raw)}
	}

	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, &Violation{Index: i, Field: "(record)", Expected: "object", Actual: kindOf(item)}
		}
		records = append(records, rec)
	}
	return records, nil
}
