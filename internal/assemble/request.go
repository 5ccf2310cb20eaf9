package assemble

import (
	"encoding/json"
	"fmt"
	"io"
)

// Request is the JSON envelope accepted by the HTTP and CLI callers.
type Request struct {
	Text             string `json:"text"`
	SourceIdentifier string `json:"source_identifier"`
}

// ContractError reports a malformed call, as opposed to a poor parse.
type ContractError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ContractError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// DecodeRequest reads one JSON request. text is required; both fields must
// be JSON strings when present.
func DecodeRequest(r io.Reader) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		return Request{}, &ContractError{Reason: "body must be a JSON object: " + err.Error(), Err: err}
	}
	if fields == nil {
		return Request{}, &ContractError{Reason: "body must be a JSON object"}
	}

	var req Request
	raw, ok := fields["text"]
	if !ok {
		return Request{}, &ContractError{Field: "text", Reason: "is required"}
	}
	if err := decodeString(raw, &req.Text); err != nil {
		return Request{}, &ContractError{Field: "text", Reason: err.Error()}
	}
	if raw, ok := fields["source_identifier"]; ok {
		if err := decodeString(raw, &req.SourceIdentifier); err != nil {
			return Request{}, &ContractError{Field: "source_identifier", Reason: err.Error()}
		}
	}
	return req, nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if len(raw) == 0 || raw[0] != '"' {
		return fmt.Errorf("must be a string")
	}
	return json.Unmarshal(raw, dst)
}
