package types

import (
	"fmt"

	"github.com/viant/qgate/model/action"
)

func NewMethodNotFoundError(kind action.Kind) error {
	return fmt.Errorf("method %v not found", kind)
}

func NewInvalidInputError(in interface{}) error {
	return fmt.Errorf("invalid input %T", in)
}

func NewInvalidOutputError(in interface{}) error {
	return fmt.Errorf("invalid output %T", in)
}
