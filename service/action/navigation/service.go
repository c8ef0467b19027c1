// Package navigation turns app display notifications into host navigation
// events.
package navigation

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
)

const (
	name = "navigation"

	scheme            = "qortal://"
	defaultIdentifier = "default"
)

// Navigator receives resource links.
type Navigator interface {
	Navigate(link string)
}

// Service handles display notifications.
type Service struct {
	navigator Navigator
}

// Input describes the displayed resource.
type Input struct {
	Service    string  `json:"service"`
	Name       string  `json:"name"`
	Identifier string  `json:"identifier"`
	Path       *string `json:"path"`
}

// Output carries the computed link and is never answered.
type Output struct {
	Link string
}

// NoReply marks notifications as one-way.
func (o *Output) NoReply() bool {
	return true
}

// New creates a navigation service.
func New(navigator Navigator) *Service {
	return &Service{navigator: navigator}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:   action.LinkToQDNResource,
			Input:  reflect.TypeOf(&Input{}),
			Output: reflect.TypeOf(&Output{}),
		},
		{
			Kind:   action.QDNResourceDisplayed,
			Input:  reflect.TypeOf(&Input{}),
			Output: reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.LinkToQDNResource, action.QDNResourceDisplayed:
		return s.display, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) display(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Display(ctx, input, output)
}

// Display computes the resource link and announces it.
func (s *Service) Display(ctx context.Context, input *Input, output *Output) error {
	output.Link = Link(input)
	if s.navigator != nil {
		s.navigator.Navigate(output.Link)
	}
	return nil
}

// Link renders qortal://service/name[/identifier][path]. The default
// identifier and a bare "/" path are omitted.
func Link(input *Input) string {
	link := scheme + input.Service + "/" + input.Name
	if input.Identifier != "" && input.Identifier != defaultIdentifier {
		link += "/" + input.Identifier
	}
	if input.Path != nil {
		path := *input.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		if path != "/" {
			link += path
		}
	}
	return link
}

var _ types.Silent = (*Output)(nil)
