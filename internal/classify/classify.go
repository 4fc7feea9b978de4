package classify

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Shape identifies the envelope a response body arrived in.
type Shape string

const (
	// ShapeList is an object carrying its records under a "list" key.
	ShapeList Shape = "list"
	// ShapeDataArray is an object carrying its records under a "data" key.
	ShapeDataArray Shape = "data-array"
	// ShapeBareArray is a top-level JSON array of records.
	ShapeBareArray Shape = "bare-array"
	// ShapeOpaque is anything else, including binary report bodies.
	ShapeOpaque Shape = "opaque"
)

// Classification describes one response body. For array shapes ItemCount is
// the number of elements and Items holds them; for opaque bodies that failed
// to parse as JSON, ItemCount is the byte length of the raw body.
type Classification struct {
	Shape            Shape
	ItemCount        int
	SampleFieldNames []string
	Items            []json.RawMessage
}

// IsArray reports whether the classification carries record elements.
func (c Classification) IsArray() bool {
	return c.Shape == ShapeList || c.Shape == ShapeDataArray || c.Shape == ShapeBareArray
}

// Classify determines the shape of a raw response body. It never fails;
// anything unrecognized degrades to ShapeOpaque.
func Classify(body []byte) Classification {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return Classification{Shape: ShapeOpaque, ItemCount: len(body)}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		if items, ok := asArray(envelope["list"]); ok {
			return fromItems(ShapeList, items)
		}
		if items, ok := asArray(envelope["data"]); ok {
			return fromItems(ShapeDataArray, items)
		}
		return Classification{Shape: ShapeOpaque}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err == nil {
		return fromItems(ShapeBareArray, items)
	}

	return Classification{Shape: ShapeOpaque}
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	// A JSON null unmarshals into a nil slice without error; only a real
	// array counts.
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func fromItems(shape Shape, items []json.RawMessage) Classification {
	return Classification{
		Shape:            shape,
		ItemCount:        len(items),
		SampleFieldNames: sampleFieldNames(items),
		Items:            items,
	}
}

// sampleFieldNames lists the keys of the first array element, sorted for
// stable output.
func sampleFieldNames(items []json.RawMessage) []string {
	if len(items) == 0 {
		return nil
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return nil
	}
	names := make([]string, 0, len(first))
	for name := range first {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
