// Package chat sends chat messages on behalf of the host account.
package chat

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"reflect"

	"github.com/mr-tron/base58"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/node"
	"github.com/viant/qgate/service/pow"
	"github.com/viant/qgate/service/tx"
	"github.com/viant/toolbox"
)

const (
	name = "chat"

	referenceSize = 64
	sendFailed    = "ERROR: Could not send message"
	noPublicKey   = "Cannot send an encrypted message to this user since they do not have their publickey on chain."
)

// Node resolves recipient keys.
type Node interface {
	PublicKey(ctx context.Context, address string) (string, error)
}

// Service runs the chat pipeline.
type Service struct {
	gate      *approval.Gate
	node      Node
	submitter tx.Submitter
	random    io.Reader
}

// Input is a direct or group message.
type Input struct {
	Message            string      `json:"message"`
	DestinationAddress string      `json:"destinationAddress"`
	GroupID            interface{} `json:"groupId"`
}

// Output is the processed chat transaction.
type Output struct {
	Data interface{}
}

// Result returns the signature object.
func (o *Output) Result() interface{} {
	return o.Data
}

// New creates a chat service.
func New(gate *approval.Gate, node Node, submitter tx.Submitter) *Service {
	return &Service{gate: gate, node: node, submitter: submitter, random: rand.Reader}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:     action.SendChatMessage,
			Required: []string{"message"},
			Input:    reflect.TypeOf(&Input{}),
			Output:   reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.SendChatMessage:
		return s.send, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) send(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Send(ctx, input, output)
}

// Send asks the operator, then builds and submits the chat transaction with
// proof-of-work. Direct messages are encrypted for the recipient.
func (s *Service) Send(ctx context.Context, input *Input, output *Output) error {
	groupID := toolbox.AsInt(input.GroupID)
	direct := groupID == 0
	if direct && input.DestinationAddress == "" {
		return fault.MissingFields([]string{"destinationAddress"})
	}
	summary := map[string]interface{}{"message": input.Message}
	if direct {
		summary["recipient"] = input.DestinationAddress
	} else {
		summary["groupId"] = groupID
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{Kind: action.SendChatMessage, Summary: summary})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined to send message")
	}

	params := map[string]interface{}{"isText": 1}
	if direct {
		publicKey, err := s.node.PublicKey(ctx, input.DestinationAddress)
		if errors.Is(err, node.ErrNoPublicKey) {
			return fault.NoPublicKey(noPublicKey)
		}
		if err != nil {
			return fault.Upstream(sendFailed, err)
		}
		params["recipient"] = input.DestinationAddress
		params["recipientPublicKey"] = publicKey
		params["isEncrypted"] = 1
	} else {
		params["groupID"] = groupID
		params["isEncrypted"] = 0
	}
	if params["message"], err = Envelope(input.Message); err != nil {
		return fault.Upstream(sendFailed, err)
	}
	reference := make([]byte, referenceSize)
	if _, err = io.ReadFull(s.random, reference); err != nil {
		return fault.Upstream(sendFailed, err)
	}
	params["lastReference"] = base58.Encode(reference)

	result, err := tx.Submit(ctx, s.submitter, &tx.Request{
		Type:       tx.TypeChat,
		Difficulty: pow.ChatDifficulty,
		Params:     params,
	})
	if err != nil {
		return fault.Ensure(err, sendFailed)
	}
	signed, ok := result.(map[string]interface{})
	if !ok || signed["signature"] == nil || signed["signature"] == "" {
		return fault.Upstream(sendFailed, nil)
	}
	output.Data = signed
	return nil
}
