package types

import (
	"context"
	"reflect"

	"github.com/viant/qgate/model/action"
)

type Signatures []Signature

func (s Signatures) Lookup(kind action.Kind) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Kind == kind {
			return sig
		}
	}
	return nil
}

// Signature describes one action pipeline: the kind it serves, the fields
// that must be present and non-falsy, the fields that must only be present,
// and its typed input/output.
type Signature struct {
	Kind     action.Kind
	Required []string
	Present  []string
	Input    reflect.Type
	Output   reflect.Type
}

// NewInput allocates a zero input for the signature.
func (s *Signature) NewInput() interface{} {
	return newInstance(s.Input)
}

// NewOutput allocates a zero output for the signature.
func (s *Signature) NewOutput() interface{} {
	return newInstance(s.Output)
}

func newInstance(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// Executable runs a pipeline for a decoded input, populating output.
type Executable func(ctx context.Context, input, output interface{}) error
