// Package account discloses the host account to the app.
package account

import (
	"context"
	"reflect"

	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/session"
)

const name = "account"

// Service discloses the selected account's address and public key.
type Service struct {
	gate *approval.Gate
	keys keystore.Store
}

// GetInput carries no fields.
type GetInput struct{}

// GetOutput is the disclosed identity.
type GetOutput struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
}

// New creates an account service.
func New(gate *approval.Gate, keys keystore.Store) *Service {
	return &Service{gate: gate, keys: keys}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:   action.GetUserAccount,
			Input:  reflect.TypeOf(&GetInput{}),
			Output: reflect.TypeOf(&GetOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.GetUserAccount:
		return s.get, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) get(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*GetInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*GetOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Get(ctx, input, output)
}

// Get discloses the account once the operator agrees or the standing
// preference allows it.
func (s *Service) Get(ctx context.Context, input *GetInput, output *GetOutput) error {
	account, err := session.Account(ctx, s.keys)
	if err != nil {
		return fault.Upstream("Unable to retrieve account", err)
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind:    action.GetUserAccount,
		Summary: map[string]interface{}{"address": account.Address},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined to share account details")
	}
	output.Address = account.Address
	output.PublicKey = account.PublicKey
	return nil
}
