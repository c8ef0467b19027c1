// Package file delivers app files to the operator.
package file

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"

	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/storage"
	"github.com/viant/toolbox"
)

const name = "file"

// Service runs the save pipeline.
type Service struct {
	gate    *approval.Gate
	storage *storage.Service
}

// SaveInput is a file handed over by the app. Blob is either an object with
// type and data64 or a bare base64 string.
type SaveInput struct {
	Filename string      `json:"filename"`
	Blob     interface{} `json:"blob"`
	MimeType string      `json:"mimeType"`
}

// SaveOutput reports where the file was written.
type SaveOutput struct {
	URL string
}

// Result returns true; the destination stays on the host.
func (o *SaveOutput) Result() interface{} {
	return true
}

// New creates a file service.
func New(gate *approval.Gate, storage *storage.Service) *Service {
	return &Service{gate: gate, storage: storage}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:     action.SaveFile,
			Required: []string{"filename", "blob"},
			Input:    reflect.TypeOf(&SaveInput{}),
			Output:   reflect.TypeOf(&SaveOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.SaveFile:
		return s.save, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) save(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SaveInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SaveOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Save(ctx, input, output)
}

// Save derives the file type, asks the operator and writes the file.
func (s *Service) Save(ctx context.Context, input *SaveInput, output *SaveOutput) error {
	f, err := input.file()
	if err != nil {
		return err
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind: action.SaveFile,
		Summary: map[string]interface{}{
			"filename": f.Name,
			"mimeType": f.MimeType,
			"size":     len(f.Data),
		},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined request")
	}
	URL, err := s.storage.Save(ctx, f)
	if errors.Is(err, storage.ErrCancelled) {
		return fault.Declined("User declined the download")
	}
	if err != nil {
		return fault.Upstream("Failed to initiate download", err)
	}
	output.URL = URL
	return nil
}

func (i *SaveInput) file() (*storage.File, error) {
	mimeType := i.MimeType
	var data64 string
	switch actual := i.Blob.(type) {
	case map[string]interface{}:
		if blobType, ok := actual["type"].(string); ok && blobType != "" {
			mimeType = blobType
		}
		if value, ok := actual["data64"]; ok && value != nil {
			data64 = toolbox.AsString(value)
		}
	case string:
		data64 = actual
	}
	if mimeType == "" {
		return nil, fault.InvalidInput("A mimeType could not be derived")
	}
	extension := storage.DeriveExtension(mimeType, i.Filename)
	if extension == "" {
		return nil, fault.InvalidInput("A file extension could not be derived")
	}
	data, err := base64.StdEncoding.DecodeString(data64)
	if err != nil {
		return nil, fault.Wrap(fault.KindInvalidInput, "Invalid file data", err)
	}
	return &storage.File{Name: i.Filename, MimeType: mimeType, Extension: extension, Data: data}, nil
}
