// Package tx defines the transaction submission contract and how submitter
// responses are turned into results or app-facing errors.
package tx

import (
	"context"

	"github.com/viant/qgate/fault"
)

// Transaction types.
const (
	TypePayment   = 2
	TypeArbitrary = 10
	TypeDeployAT  = 16
	TypeChat      = 18
	TypeJoinGroup = 31
)

// ServerError is reported when a response carries neither data nor a message.
const ServerError = "Server error. Could not perform action."

// Request asks the submitter to build, sign and process a transaction.
type Request struct {
	Type int `json:"type"`
	// Difficulty requests proof-of-work before signing; zero skips it.
	Difficulty int                    `json:"difficulty,omitempty"`
	Params     map[string]interface{} `json:"params"`
}

// Response is the submitter's verdict.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Submitter builds, signs and processes transactions.
type Submitter interface {
	Submit(ctx context.Context, request *Request) (*Response, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, request *Request) (*Response, error)

// Submit calls fn.
func (fn SubmitterFunc) Submit(ctx context.Context, request *Request) (*Response, error) {
	return fn(ctx, request)
}

// Result interprets response: a failure with a message surfaces the message,
// a success without data.error yields data, otherwise data.message or the
// generic server error.
func Result(response *Response) (interface{}, error) {
	if response == nil {
		return nil, fault.Upstream(ServerError, nil)
	}
	if !response.Success && response.Message != "" {
		return nil, fault.Upstream(response.Message, nil)
	}
	data, _ := response.Data.(map[string]interface{})
	if response.Success && !truthy(data["error"]) {
		return response.Data, nil
	}
	if message, ok := data["message"].(string); ok && message != "" {
		return nil, fault.Upstream(message, nil)
	}
	return nil, fault.Upstream(ServerError, nil)
}

// Submit runs request through submitter and interprets the response.
func Submit(ctx context.Context, submitter Submitter, request *Request) (interface{}, error) {
	response, err := submitter.Submit(ctx, request)
	if err != nil {
		return nil, err
	}
	return Result(response)
}

func truthy(v interface{}) bool {
	switch actual := v.(type) {
	case nil:
		return false
	case bool:
		return actual
	case string:
		return actual != ""
	case float64:
		return actual != 0
	case int:
		return actual != 0
	}
	return true
}
