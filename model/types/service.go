package types

import "github.com/viant/qgate/model/action"

// Service groups the pipelines of related action kinds.
type Service interface {
	Name() string
	Methods() Signatures
	Method(kind action.Kind) (Executable, error)
}
