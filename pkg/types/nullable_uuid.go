package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// NullableUUID distinguishes an absent JSON field (Valid false) from an
// explicit null (Valid true, Value nil) so PATCH payloads can clear a
// reference.
type NullableUUID struct {
	Valid bool
	Value *uuid.UUID
}

func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	n.Valid = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		n.Valid = false
		return err
	}
	n.Value = &id
	return nil
}

func (n NullableUUID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value.String())
}

// ApplyTo overwrites *dst with a copy of the value when the field was sent.
func (n NullableUUID) ApplyTo(dst **uuid.UUID) {
	if !n.Valid || dst == nil {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	id := *n.Value
	*dst = &id
}
