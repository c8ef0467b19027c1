package action

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	fieldAction    = "action"
	fieldRequestID = "requestId"
)

// Request is an inbound, untrusted app message.
type Request struct {
	ID     string
	Kind   Kind
	Fields map[string]interface{}
}

// Parse decodes an inbound message. It returns ok=false for anything that is
// not an object with a non-empty action; such messages are ignored by callers.
func Parse(data []byte) (*Request, bool) {
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	return FromFields(fields)
}

// FromFields builds a request from an already decoded message.
func FromFields(fields map[string]interface{}) (*Request, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	kind, _ := fields[fieldAction].(string)
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, false
	}
	ret := &Request{Kind: Kind(kind), Fields: fields}
	switch id := fields[fieldRequestID].(type) {
	case string:
		ret.ID = id
	case float64:
		ret.ID = fmt.Sprintf("%v", id)
	}
	return ret, true
}

// Decode copies request fields into a typed input using its json tags.
func (r *Request) Decode(dest interface{}) error {
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %v input: %w", r.Kind, err)
	}
	return nil
}

// Value returns a raw field value.
func (r *Request) Value(name string) interface{} {
	if r == nil || r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}
