// Package envelope frames every gateway reply into one of two shapes:
//
//	{"ok":true,  "result":<value>, "error":null}
//	{"ok":false, "result":null,    "error":{"error":"..."}}
//
// The ok field is the discriminant; consumers that only look for the error
// key keep working because a failure always carries it and a success never does.
package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/viant/qgate/fault"
)

// ErrorPayload is the app-facing failure body.
type ErrorPayload struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Envelope is the reply sent to the app.
type Envelope struct {
	RequestID string        `json:"requestId,omitempty"`
	OK        bool          `json:"ok"`
	Result    interface{}   `json:"result"`
	Error     *ErrorPayload `json:"error"`
}

// Replier delivers a framed envelope back to the app.
type Replier interface {
	Reply(ctx context.Context, envelope *Envelope) error
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, envelope *Envelope) error

func (f ReplierFunc) Reply(ctx context.Context, envelope *Envelope) error {
	return f(ctx, envelope)
}

// Frame builds an envelope from a pipeline outcome. A non-nil err always
// selects the failure branch regardless of result content.
func Frame(result interface{}, err error) *Envelope {
	if err != nil {
		return Failure(err)
	}
	return Success(result)
}

// Success frames a result.
func Success(result interface{}) *Envelope {
	return &Envelope{OK: true, Result: normalize(result)}
}

// Failure frames an error; unclassified errors are replaced with a generic
// message.
func Failure(err error) *Envelope {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &Envelope{
		OK: false,
		Error: &ErrorPayload{
			Error: fault.Public(err, ""),
			Kind:  string(fault.KindOf(err)),
		},
	}
}

// WithRequestID sets the correlation id echoed to the app.
func (e *Envelope) WithRequestID(id string) *Envelope {
	e.RequestID = id
	return e
}

// Validate checks the two-shape invariant.
func (e *Envelope) Validate() error {
	switch {
	case e.OK && e.Error != nil:
		return fmt.Errorf("envelope: success with error")
	case !e.OK && e.Error == nil:
		return fmt.Errorf("envelope: failure without error")
	case !e.OK && e.Result != nil:
		return fmt.Errorf("envelope: failure with result")
	case e.OK && e.Result == nil:
		return fmt.Errorf("envelope: success without result")
	}
	return nil
}

// Marshal encodes the envelope.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// normalize keeps structured values, embeds textual JSON as JSON and passes
// everything else through as text.
func normalize(result interface{}) interface{} {
	switch actual := result.(type) {
	case nil:
		return true
	case json.RawMessage:
		if json.Valid(actual) {
			return actual
		}
		return string(actual)
	case []byte:
		if json.Valid(actual) {
			return json.RawMessage(actual)
		}
		return string(actual)
	case string:
		return actual
	}
	if _, err := json.Marshal(result); err != nil {
		return fmt.Sprintf("%v", result)
	}
	return result
}
