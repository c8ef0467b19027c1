// Package group joins groups on behalf of the host account.
package group

import (
	"context"
	"errors"
	"reflect"

	"github.com/holiman/uint256"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/node"
	"github.com/viant/qgate/service/session"
	"github.com/viant/qgate/service/tx"
	"github.com/viant/qgate/service/wallet"
	"github.com/viant/toolbox"
)

const (
	name = "group"

	feeTxType  = "JOIN_GROUP"
	joinFailed = "Failed to join the group."
	notFound   = "Group not found"
)

// Node is the part of the node API the join pipeline needs.
type Node interface {
	Group(ctx context.Context, id int) (*node.Group, error)
	UnitFee(ctx context.Context, txType string) (uint64, error)
	LastReference(ctx context.Context, address string) (string, error)
}

// Service runs the join pipeline.
type Service struct {
	gate      *approval.Gate
	node      Node
	keys      keystore.Store
	submitter tx.Submitter
}

// JoinInput names the group.
type JoinInput struct {
	GroupID interface{} `json:"groupId"`
}

// JoinOutput is the submitter's data.
type JoinOutput struct {
	Data interface{}
}

// Result returns the submitter's data.
func (o *JoinOutput) Result() interface{} {
	return o.Data
}

// New creates a group service.
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
			Kind:     action.JoinGroup,
			Required: []string{"groupId"},
			Input:    reflect.TypeOf(&JoinInput{}),
			Output:   reflect.TypeOf(&JoinOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.JoinGroup:
		return s.join, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) join(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*JoinInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*JoinOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Join(ctx, input, output)
}

// Join looks the group up, prices the transaction and submits it once the
// operator agrees.
func (s *Service) Join(ctx context.Context, input *JoinInput, output *JoinOutput) error {
	groupID, err := toolbox.ToInt(input.GroupID)
	if err != nil || groupID <= 0 {
		return fault.NotFound(notFound)
	}
	group, err := s.node.Group(ctx, groupID)
	if err != nil {
		var apiErr *node.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fault.Wrap(fault.KindNotFound, apiErr.Message, err)
		}
		return fault.Wrap(fault.KindNotFound, notFound, err)
	}
	if group == nil || group.ID == 0 {
		return fault.NotFound(notFound)
	}
	account, err := session.Account(ctx, s.keys)
	if err != nil {
		return fault.Upstream(joinFailed, err)
	}
	unitFee, err := s.node.UnitFee(ctx, feeTxType)
	if err != nil {
		return fault.Upstream("Error when fetching join fee", err)
	}
	fee := wallet.FormatAmount(uint256.NewInt(unitFee))
	reference, err := s.node.LastReference(ctx, account.Address)
	if err != nil {
		return fault.Upstream(joinFailed, err)
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind: action.JoinGroup,
		Summary: map[string]interface{}{
			"groupId":   group.ID,
			"groupName": group.Name,
			"fee":       fee,
		},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined to join the group")
	}
	output.Data, err = tx.Submit(ctx, s.submitter, &tx.Request{
		Type: tx.TypeJoinGroup,
		Params: map[string]interface{}{
			"fee":               fee,
			"registrantAddress": account.Address,
			"rGroupName":        group.Name,
			"rGroupId":          group.ID,
			"lastReference":     reference,
		},
	})
	return fault.Ensure(err, joinFailed)
}
