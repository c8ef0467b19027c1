// Package cipher encrypts and decrypts app payloads with the host key.
package cipher

import (
	"context"
	"errors"
	"reflect"

	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	codec "github.com/viant/qgate/service/cipher"
	"github.com/viant/qgate/service/keystore"
)

const name = "cipher"

// Service runs the encryption pipelines.
type Service struct {
	codec *codec.Service
	keys  keystore.Store
}

// DecryptInput is a base64 artifact and the counterparty's base58 key.
type DecryptInput struct {
	EncryptedData string `json:"encryptedData"`
	PublicKey     string `json:"publicKey"`
}

// EncryptInput is base64 data and the recipient's base58 key.
type EncryptInput struct {
	Data64             string `json:"data64"`
	RecipientPublicKey string `json:"recipientPublicKey"`
}

// Output holds a base64 payload.
type Output struct {
	Data string
}

// Result returns the bare base64 string.
func (o *Output) Result() interface{} {
	return o.Data
}

// New creates a cipher action service.
func New(codec *codec.Service, keys keystore.Store) *Service {
	return &Service{codec: codec, keys: keys}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:     action.DecryptData,
			Required: []string{"encryptedData", "publicKey"},
			Input:    reflect.TypeOf(&DecryptInput{}),
			Output:   reflect.TypeOf(&Output{}),
		},
		{
			Kind:     action.EncryptData,
			Required: []string{"data64", "recipientPublicKey"},
			Input:    reflect.TypeOf(&EncryptInput{}),
			Output:   reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.DecryptData:
		return s.decrypt, nil
	case action.EncryptData:
		return s.encrypt, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) decrypt(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*DecryptInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Decrypt(ctx, input, output)
}

func (s *Service) encrypt(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*EncryptInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Encrypt(ctx, input, output)
}

// Decrypt opens an artifact sealed for the host account. Every failure past
// key retrieval is reported as the same decryption error.
func (s *Service) Decrypt(ctx context.Context, input *DecryptInput, output *Output) error {
	privateKey, err := s.keys.PrivateKey(ctx)
	if err != nil {
		return fault.Wrap(fault.KindInvalidInput, "Unable to retrieve keys", err)
	}
	if _, err = codec.DecodeKey(input.PublicKey); err != nil {
		return fault.Wrap(fault.KindInvalidInput, "Unable to retrieve keys", err)
	}
	data, err := s.codec.Decrypt(input.EncryptedData, privateKey, input.PublicKey)
	if err != nil {
		return fault.Upstream("Error in decrypting data", err)
	}
	output.Data = data
	return nil
}

// Encrypt seals data for a recipient.
func (s *Service) Encrypt(ctx context.Context, input *EncryptInput, output *Output) error {
	data, err := Seal(ctx, s.codec, s.keys, input.Data64, input.RecipientPublicKey)
	if err != nil {
		return err
	}
	output.Data = data
	return nil
}

// Seal encrypts base64 data64 for recipient with the host key, mapping
// failures to app-facing faults. Publishing pipelines share it.
func Seal(ctx context.Context, svc *codec.Service, keys keystore.Store, data64, recipient string) (string, error) {
	if recipient == "" {
		return "", fault.NoPublicKey("Encrypting data requires the recipient's public key")
	}
	privateKey, err := keys.PrivateKey(ctx)
	if err != nil {
		return "", fault.Wrap(fault.KindInvalidInput, "Unable to retrieve keys", err)
	}
	data, err := svc.Encrypt(data64, privateKey, recipient)
	switch {
	case errors.Is(err, codec.ErrInvalidKey):
		return "", fault.Wrap(fault.KindNoPublicKey, "Invalid recipient public key", err)
	case err != nil:
		return "", fault.Upstream("Error in encrypting data", err)
	}
	return data, nil
}
