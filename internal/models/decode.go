package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// UnmarshalJSON accepts any well-formed JSON body:
//   - non-string fields keep their JSON text, so {"title":5} is titled "5"
//   - null fields are empty
//   - a body that is not an object sets no fields
func (r *CreateEventRequest) UnmarshalJSON(data []byte) error {
	type rawCreate struct {
		Title       json.RawMessage `json:"title"`
		Description json.RawMessage `json:"description"`
		Datetime    json.RawMessage `json:"datetime"`
		Location    json.RawMessage `json:"location"`
	}

	var raw rawCreate
	if err := decodeObject(data, &raw); err != nil {
		return fmt.Errorf("unmarshal create event request: %w", err)
	}

	*r = CreateEventRequest{
		Title:       textValue(raw.Title),
		Description: textValue(raw.Description),
		Datetime:    textValue(raw.Datetime),
		Location:    textValue(raw.Location),
	}
	return nil
}

// UnmarshalJSON accepts any well-formed JSON body. Event IDs are strings, so a
// non-string eventId decodes as "" and matches no event.
func (r *SignupRequest) UnmarshalJSON(data []byte) error {
	type rawSignup struct {
		EventID   json.RawMessage `json:"eventId"`
		UserEmail json.RawMessage `json:"userEmail"`
	}

	var raw rawSignup
	if err := decodeObject(data, &raw); err != nil {
		return fmt.Errorf("unmarshal signup request: %w", err)
	}

	*r = SignupRequest{UserEmail: textValue(raw.UserEmail)}
	if isJSONString(raw.EventID) {
		r.EventID = textValue(raw.EventID)
	}
	return nil
}

// decodeObject decodes a JSON object into dst. Syntax errors are returned;
// arrays and scalars leave dst untouched.
func decodeObject(data []byte, dst interface{}) error {
	err := json.Unmarshal(data, dst)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

// textValue renders a raw JSON member as a string: strings are unquoted,
// null and absent members are empty, anything else keeps its compact JSON text.
func textValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
