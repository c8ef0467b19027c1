// Package list exposes the host's local lists (for example blocked names) to
// the app.
package list

import (
	"context"
	"reflect"

	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/toolbox"
)

const name = "list"

// Node is the list API of the node.
type Node interface {
	ListItems(ctx context.Context, name string) ([]string, error)
	AddListItems(ctx context.Context, name string, items []string) (bool, error)
	DeleteListItems(ctx context.Context, name string, items []string) (bool, error)
}

// Service runs list pipelines.
type Service struct {
	gate *approval.Gate
	node Node
}

// GetInput names a list.
type GetInput struct {
	ListName string `json:"list_name"`
}

// AddInput names a list and the items to add.
type AddInput struct {
	ListName string        `json:"list_name"`
	Items    []interface{} `json:"items"`
}

// DeleteInput names a list and the item to remove.
type DeleteInput struct {
	ListName string      `json:"list_name"`
	Item     interface{} `json:"item"`
}

// ItemsOutput is the content of a list.
type ItemsOutput struct {
	Items []string
}

// Result returns the bare item array.
func (o *ItemsOutput) Result() interface{} {
	if o.Items == nil {
		return []string{}
	}
	return o.Items
}

// ChangeOutput is the node's answer to a list change.
type ChangeOutput struct {
	Changed bool
}

// Result returns the bare boolean.
func (o *ChangeOutput) Result() interface{} {
	return o.Changed
}

// New creates a list service.
func New(gate *approval.Gate, node Node) *Service {
	return &Service{gate: gate, node: node}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:     action.GetListItems,
			Required: []string{"list_name"},
			Input:    reflect.TypeOf(&GetInput{}),
			Output:   reflect.TypeOf(&ItemsOutput{}),
		},
		{
			Kind:     action.AddListItems,
			Required: []string{"list_name", "items"},
			Input:    reflect.TypeOf(&AddInput{}),
			Output:   reflect.TypeOf(&ChangeOutput{}),
		},
		{
			Kind:     action.DeleteListItem,
			Required: []string{"list_name", "item"},
			Input:    reflect.TypeOf(&DeleteInput{}),
			Output:   reflect.TypeOf(&ChangeOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.GetListItems:
		return s.get, nil
	case action.AddListItems:
		return s.add, nil
	case action.DeleteListItem:
		return s.delete, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) get(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*GetInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ItemsOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Get(ctx, input, output)
}

func (s *Service) add(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*AddInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ChangeOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Add(ctx, input, output)
}

func (s *Service) delete(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*DeleteInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ChangeOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Delete(ctx, input, output)
}

// Get reads a list; the standing list preference skips the prompt.
func (s *Service) Get(ctx context.Context, input *GetInput, output *ItemsOutput) error {
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind:    action.GetListItems,
		Summary: map[string]interface{}{"list_name": input.ListName},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined to share list")
	}
	items, err := s.node.ListItems(ctx, input.ListName)
	if err != nil {
		return fault.Upstream("Error in retrieving list", err)
	}
	output.Items = items
	return nil
}

// Add appends items to a list.
func (s *Service) Add(ctx context.Context, input *AddInput, output *ChangeOutput) error {
	items := asStrings(input.Items)
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind:    action.AddListItems,
		Summary: map[string]interface{}{"list_name": input.ListName, "items": items},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined add to list")
	}
	changed, err := s.node.AddListItems(ctx, input.ListName, items)
	if err != nil {
		return fault.Upstream("Error in adding to list", err)
	}
	output.Changed = changed
	return nil
}

// Delete removes one item from a list.
func (s *Service) Delete(ctx context.Context, input *DeleteInput, output *ChangeOutput) error {
	item := toolbox.AsString(input.Item)
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind:    action.DeleteListItem,
		Summary: map[string]interface{}{"list_name": input.ListName, "item": item},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined delete from list")
	}
	changed, err := s.node.DeleteListItems(ctx, input.ListName, []string{item})
	if err != nil {
		return fault.Upstream("Error in deleting from list", err)
	}
	output.Changed = changed
	return nil
}

func asStrings(values []interface{}) []string {
	ret := make([]string, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		ret = append(ret, toolbox.AsString(value))
	}
	return ret
}
