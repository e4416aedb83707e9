package api

import (
	"bytes"
	"encoding/json"
)

// collectionEnvelope is the single decoding boundary for the backend's
// inconsistently shaped collection responses: a bare array, {data: []}, or
// the doubly nested {data: {data: []}}. Anything else coerces to empty.
type collectionEnvelope struct {
	items json.RawMessage
}

func (e *collectionEnvelope) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '[' {
		e.items = data
		return nil
	}

	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	inner := bytes.TrimSpace(outer.Data)
	if len(inner) == 0 || string(inner) == "null" {
		return nil
	}
	if inner[0] == '[' {
		e.items = inner
		return nil
	}

	var nested struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(inner, &nested); err != nil {
		return err
	}
	deep := bytes.TrimSpace(nested.Data)
	if len(deep) > 0 && deep[0] == '[' {
		e.items = deep
	}
	return nil
}

// decodeInto unmarshals the carried array into out, leaving out untouched
// when the response carried no recognizable collection.
func (e *collectionEnvelope) decodeInto(out any) error {
	if e.items == nil {
		return nil
	}
	return json.Unmarshal(e.items, out)
}
