package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OptionalUint distinguishes an omitted id field from an explicit null, so that
// a PATCH can clear a nullable reference.
type OptionalUint struct {
	Set   bool
	Value *uint
}

func (ou *OptionalUint) UnmarshalJSON(data []byte) error {
	if ou == nil {
		return fmt.Errorf("optional uint receiver is nil")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("optional uint cannot parse empty input")
	}
	ou.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		ou.Value = nil
		return nil
	}
	var value uint64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return fmt.Errorf("expected a positive integer id: %w", err)
	}
	if value == 0 {
		ou.Value = nil
		return nil
	}
	converted := uint(value)
	ou.Value = &converted
	return nil
}

func (ou OptionalUint) MarshalJSON() ([]byte, error) {
	if ou.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*ou.Value)
}
