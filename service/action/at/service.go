// Package at deploys automated transactions on behalf of the host account.
package at

import (
	"context"
	"reflect"

	"github.com/holiman/uint256"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/session"
	"github.com/viant/qgate/service/tx"
	"github.com/viant/qgate/service/wallet"
	"github.com/viant/toolbox"
)

const (
	name = "at"

	feeTxType    = "DEPLOY_AT"
	deployFailed = "Failed to deploy the AT."
)

// Node prices and references the deploy transaction.
type Node interface {
	UnitFee(ctx context.Context, txType string) (uint64, error)
	LastReference(ctx context.Context, address string) (string, error)
}

// Service runs the deploy pipeline.
type Service struct {
	gate      *approval.Gate
	node      Node
	keys      keystore.Store
	submitter tx.Submitter
}

// DeployInput describes the AT.
type DeployInput struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Tags          string      `json:"tags"`
	CreationBytes string      `json:"creationBytes"`
	Amount        interface{} `json:"amount"`
	AssetID       interface{} `json:"assetId"`
	Type          string      `json:"type"`
	Fee           interface{} `json:"fee"`
}

// DeployOutput is the submitter's data.
type DeployOutput struct {
	Data interface{}
}

// Result returns the submitter's data.
func (o *DeployOutput) Result() interface{} {
	return o.Data
}

// New creates an AT service.
func New(gate *approval.Gate, node Node, keys keystore.Store, submitter tx.Submitter) *Service {
	return &Service{gate: gate, node: node, keys: keys, submitter: submitter}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:     action.DeployAT,
			Required: []string{"name", "description", "tags", "creationBytes", "amount", "assetId", "type"},
			Input:    reflect.TypeOf(&DeployInput{}),
			Output:   reflect.TypeOf(&DeployOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.DeployAT:
		return s.deploy, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) deploy(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*DeployInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*DeployOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Deploy(ctx, input, output)
}

// Deploy submits a DEPLOY_AT transaction once the operator agrees. The node
// unit fee applies unless the app supplies one.
func (s *Service) Deploy(ctx context.Context, input *DeployInput, output *DeployOutput) error {
	amount, err := wallet.ParseAmount(input.Amount)
	if err != nil {
		return fault.Wrap(fault.KindInvalidInput, "Invalid Amount!", err)
	}
	account, err := session.Account(ctx, s.keys)
	if err != nil {
		return fault.Upstream(deployFailed, err)
	}
	fee, err := s.fee(ctx, input.Fee)
	if err != nil {
		return err
	}
	reference, err := s.node.LastReference(ctx, account.Address)
	if err != nil {
		return fault.Upstream(deployFailed, err)
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind: action.DeployAT,
		Summary: map[string]interface{}{
			"name":        input.Name,
			"description": input.Description,
			"amount":      wallet.FormatAmount(amount),
			"assetId":     toolbox.AsInt(input.AssetID),
			"fee":         fee,
		},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined to deploy the AT")
	}
	output.Data, err = tx.Submit(ctx, s.submitter, &tx.Request{
		Type: tx.TypeDeployAT,
		Params: map[string]interface{}{
			"fee":            fee,
			"rName":          input.Name,
			"rDescription":   input.Description,
			"rTags":          input.Tags,
			"rAmount":        wallet.FormatAmount(amount),
			"rAssetId":       toolbox.AsInt(input.AssetID),
			"rCreationBytes": input.CreationBytes,
			"atType":         input.Type,
			"lastReference":  reference,
		},
	})
	return fault.Ensure(err, deployFailed)
}

func (s *Service) fee(ctx context.Context, supplied interface{}) (string, error) {
	if supplied != nil && supplied != "" {
		fee, err := wallet.ParseAmount(supplied)
		if err != nil {
			return "", fault.Wrap(fault.KindInvalidInput, "Invalid fee", err)
		}
		return wallet.FormatAmount(fee), nil
	}
	unitFee, err := s.node.UnitFee(ctx, feeTxType)
	if err != nil {
		return "", fault.Upstream("Error when fetching deploy fee", err)
	}
	return wallet.FormatAmount(uint256.NewInt(unitFee)), nil
}
