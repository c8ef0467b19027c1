// Package publish uploads app data to QDN as arbitrary transactions.
package publish

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	cipheraction "github.com/viant/qgate/service/action/cipher"
	"github.com/viant/qgate/service/approval"
	codec "github.com/viant/qgate/service/cipher"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/pow"
	"github.com/viant/qgate/service/tx"
	"golang.org/x/sync/errgroup"
)

const (
	name = "publish"

	// ChoiceWithFee lets the operator pay a fee instead of computing
	// proof-of-work.
	ChoiceWithFee = "isWithFee"

	feeTxType     = "ARBITRARY"
	maxConcurrent = 4
	uploadFailed  = "Upload failed"
)

// Node supplies the publish fee.
type Node interface {
	UnitFee(ctx context.Context, txType string) (uint64, error)
}

// Service runs publish pipelines.
type Service struct {
	gate      *approval.Gate
	codec     *codec.Service
	keys      keystore.Store
	node      Node
	submitter tx.Submitter
	stager    *pow.Offload
}

// Input is a single resource publish.
type Input struct {
	Resource
	Encrypt            bool   `json:"encrypt"`
	RecipientPublicKey string `json:"recipientPublicKey"`
}

// MultiInput is a batch publish. Resources is left untyped so that a
// non-array value can be reported instead of failing decoding.
type MultiInput struct {
	Resources          interface{} `json:"resources"`
	Encrypt            bool        `json:"encrypt"`
	RecipientPublicKey string      `json:"recipientPublicKey"`
}

// Output is the publish result.
type Output struct {
	Data interface{}
}

// Result returns the submitter's data.
func (o *Output) Result() interface{} {
	return o.Data
}

// MultiOutput holds per-resource results in resource order.
type MultiOutput struct {
	Results []interface{}
}

// Result returns the result array.
func (o *MultiOutput) Result() interface{} {
	return o.Results
}

// New creates a publish service. Staging runs on workers of stager.
func New(gate *approval.Gate, codec *codec.Service, keys keystore.Store, node Node, submitter tx.Submitter, stager *pow.Offload) *Service {
	if stager == nil {
		stager = pow.New(nil)
	}
	return &Service{gate: gate, codec: codec, keys: keys, node: node, submitter: submitter, stager: stager}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:     action.PublishQDNResource,
			Required: []string{"service", "name"},
			Input:    reflect.TypeOf(&Input{}),
			Output:   reflect.TypeOf(&Output{}),
		},
		{
			Kind:     action.PublishMultipleQDNResources,
			Required: []string{"resources"},
			Input:    reflect.TypeOf(&MultiInput{}),
			Output:   reflect.TypeOf(&MultiOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.PublishQDNResource:
		return s.publish, nil
	case action.PublishMultipleQDNResources:
		return s.publishMultiple, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) publish(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Publish(ctx, input, output)
}

func (s *Service) publishMultiple(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*MultiInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*MultiOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.PublishMultiple(ctx, input, output)
}

// Publish validates and encrypts a resource, asks the operator and submits
// it.
func (s *Service) Publish(ctx context.Context, input *Input, output *Output) error {
	job, err := input.Resource.Job(input.Encrypt)
	if err != nil {
		return err
	}
	if input.Encrypt {
		if input.RecipientPublicKey == "" {
			return fault.NoPublicKey("Encrypting data requires the recipient's public key")
		}
		if job.Data64, err = cipheraction.Seal(ctx, s.codec, s.keys, job.Data64, input.RecipientPublicKey); err != nil {
			return err
		}
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind: action.PublishQDNResource,
		Summary: map[string]interface{}{
			"name":       job.Name,
			"identifier": job.Identifier,
			"service":    job.Service,
			"encrypt":    input.Encrypt,
		},
		Choices: []approval.Choice{withFeeChoice()},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined request")
	}
	output.Data, err = s.submit(ctx, job, outcome.Bool(ChoiceWithFee, true))
	return err
}

// PublishMultiple publishes a batch after a single approval. Resources are
// processed concurrently; the batch fails with the first failure in resource
// order.
func (s *Service) PublishMultiple(ctx context.Context, input *MultiInput, output *MultiOutput) error {
	items, ok := input.Resources.([]interface{})
	if !ok {
		return fault.InvalidInput("Invalid data")
	}
	if len(items) == 0 {
		return fault.InvalidInput("No resources to publish")
	}
	if input.Encrypt && input.RecipientPublicKey == "" {
		return fault.NoPublicKey("Encrypting data requires the recipient's public key")
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind: action.PublishMultipleQDNResources,
		Summary: map[string]interface{}{
			"resources": describe(items),
			"encrypt":   input.Encrypt,
		},
		Choices: []approval.Choice{withFeeChoice()},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined("User declined request")
	}
	withFee := outcome.Bool(ChoiceWithFee, true)

	results := make([]interface{}, len(items))
	errs := make([]error, len(items))
	group := errgroup.Group{}
	group.SetLimit(maxConcurrent)
	for i := range items {
		index := i
		group.Go(func() error {
			results[index], errs[index] = s.publishItem(ctx, items[index], input, withFee)
			return errs[index]
		})
	}
	if err = group.Wait(); err != nil {
		for _, itemErr := range errs {
			if itemErr != nil {
				return itemErr
			}
		}
	}
	output.Results = results
	return nil
}

func (s *Service) publishItem(ctx context.Context, item interface{}, input *MultiInput, withFee bool) (interface{}, error) {
	resource, err := decodeResource(item)
	if err != nil {
		return nil, err
	}
	job, err := resource.Job(input.Encrypt)
	if err != nil {
		return nil, err
	}
	if input.Encrypt {
		if job.Data64, err = cipheraction.Seal(ctx, s.codec, s.keys, job.Data64, input.RecipientPublicKey); err != nil {
			return nil, err
		}
	}
	return s.submit(ctx, job, withFee)
}

// submit stages and submits the job on a scoped worker.
func (s *Service) submit(ctx context.Context, job *Job, withFee bool) (interface{}, error) {
	var result interface{}
	err := s.stager.Do(ctx, func(ctx context.Context) error {
		request := &tx.Request{Type: tx.TypeArbitrary}
		fee := "0"
		if withFee {
			unitFee, err := s.node.UnitFee(ctx, feeTxType)
			if err != nil {
				return fault.Upstream(uploadFailed, err)
			}
			fee = strconv.FormatUint(unitFee, 10)
		} else {
			request.Difficulty = pow.ArbitraryDifficulty
		}
		request.Params = job.Params(fee)
		var err error
		result, err = tx.Submit(ctx, s.submitter, request)
		return err
	})
	if err != nil {
		return nil, fault.Ensure(err, uploadFailed)
	}
	return result, nil
}

func withFeeChoice() approval.Choice {
	return approval.Choice{Name: ChoiceWithFee, Label: "Publish instantly with a fee", Default: true}
}

func decodeResource(item interface{}) (*Resource, error) {
	if _, ok := item.(map[string]interface{}); !ok {
		return nil, fault.InvalidInput("Invalid data")
	}
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fault.Wrap(fault.KindInvalidInput, "Invalid data", err)
	}
	ret := &Resource{}
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fault.Wrap(fault.KindInvalidInput, "Invalid data", err)
	}
	return ret, nil
}

// describe lists what the batch publishes without its payloads.
func describe(items []interface{}) []map[string]interface{} {
	ret := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := map[string]interface{}{}
		for _, key := range []string{"service", "name", "identifier", "filename"} {
			if value, ok := fields[key]; ok && value != nil {
				entry[key] = value
			}
		}
		ret = append(ret, entry)
	}
	return ret
}
