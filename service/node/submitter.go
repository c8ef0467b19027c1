package node

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/viant/qgate/internal/clock"
	"github.com/viant/qgate/service/cipher"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/pow"
	"github.com/viant/qgate/service/tx"
	"github.com/viant/toolbox"
)

// Submitter builds transactions on the node, signs them with the host key and
// processes them.
type Submitter struct {
	client   *Client
	keys     keystore.Store
	cipher   *cipher.Service
	offloads map[string]*pow.Offload
}

// NewSubmitter creates a node backed tx.Submitter.
func NewSubmitter(client *Client, keys keystore.Store, cipher *cipher.Service) *Submitter {
	return &Submitter{
		client: client,
		keys:   keys,
		cipher: cipher,
		offloads: map[string]*pow.Offload{
			PathChatCompute:      pow.New(NewSolver(client, PathChatCompute)),
			PathArbitraryCompute: pow.New(NewSolver(client, PathArbitraryCompute)),
		},
	}
}

// Offload returns the proof-of-work offload serving compute path.
func (s *Submitter) Offload(path string) *pow.Offload {
	return s.offloads[path]
}

// Submit implements tx.Submitter. Node rejections are reported as
// unsuccessful responses carrying the node message.
func (s *Submitter) Submit(ctx context.Context, request *tx.Request) (*tx.Response, error) {
	account, err := s.keys.Account(ctx)
	if err != nil {
		return nil, err
	}
	unsigned, computePath, err := s.build(ctx, account, request)
	if err != nil {
		return rejected(err)
	}
	if request.Difficulty > 0 && computePath != "" {
		result, err := s.offloads[computePath].Run(ctx, unsigned, request.Difficulty)
		if err != nil {
			return rejected(err)
		}
		unsigned = result.Data
	}
	signature, err := s.keys.Sign(ctx, unsigned)
	if err != nil {
		return nil, err
	}
	signed := append(append([]byte{}, unsigned...), signature...)
	processed, err := s.client.Process(ctx, signed)
	if err != nil {
		return rejected(err)
	}
	if !processed {
		return &tx.Response{Success: false}, nil
	}
	var data interface{} = true
	if request.Type == tx.TypeChat {
		data = map[string]interface{}{"signature": base58.Encode(signature)}
	}
	return &tx.Response{Success: true, Data: data}, nil
}

func rejected(err error) (*tx.Response, error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &tx.Response{Success: false, Message: apiErr.Error()}, nil
	}
	return nil, err
}

func (s *Submitter) build(ctx context.Context, account *keystore.Account, request *tx.Request) ([]byte, string, error) {
	params := request.Params
	base := map[string]interface{}{
		"timestamp": clock.NowMillis(),
		"reference": param(params, "lastReference"),
		"fee":       param(params, "fee"),
		"txGroupId": 0,
	}
	switch request.Type {
	case tx.TypePayment:
		base["senderPublicKey"] = account.PublicKey
		base["recipient"] = param(params, "recipient")
		base["amount"] = param(params, "amount")
		unsigned, err := s.client.Build(ctx, PathPayment, base)
		return unsigned, "", err
	case tx.TypeJoinGroup:
		base["joinerPublicKey"] = account.PublicKey
		base["groupId"] = toolbox.AsInt(params["rGroupId"])
		unsigned, err := s.client.Build(ctx, PathJoinGroup, base)
		return unsigned, "", err
	case tx.TypeDeployAT:
		base["creatorPublicKey"] = account.PublicKey
		base["name"] = param(params, "rName")
		base["description"] = param(params, "rDescription")
		base["tags"] = param(params, "rTags")
		base["creationBytes"] = param(params, "rCreationBytes")
		base["amount"] = param(params, "rAmount")
		base["assetId"] = toolbox.AsInt(params["rAssetId"])
		base["aTType"] = param(params, "atType")
		unsigned, err := s.client.Build(ctx, PathDeployAT, base)
		return unsigned, "", err
	case tx.TypeChat:
		if err := s.chatData(ctx, account, params, base); err != nil {
			return nil, "", err
		}
		unsigned, err := s.client.Build(ctx, PathChat, base)
		return unsigned, PathChatCompute, err
	case tx.TypeArbitrary:
		publish := &PublishRequest{
			Service:     param(params, "service"),
			Name:        param(params, "name"),
			Identifier:  param(params, "identifier"),
			Data64:      param(params, "data64"),
			Filename:    param(params, "filename"),
			Title:       param(params, "title"),
			Description: param(params, "description"),
			Category:    param(params, "category"),
			Tags:        tags(params["tags"]),
			Fee:         param(params, "fee"),
		}
		unsigned, err := s.client.BuildPublish(ctx, publish)
		return unsigned, PathArbitraryCompute, err
	}
	return nil, "", fmt.Errorf("unsupported transaction type: %d", request.Type)
}

// chatData fills chat specific fields. Direct messages are boxed with the
// recipient's shared secret using the reference as nonce.
func (s *Submitter) chatData(ctx context.Context, account *keystore.Account, params map[string]interface{}, base map[string]interface{}) error {
	base["fee"] = "0"
	base["senderPublicKey"] = account.PublicKey
	base["isText"] = true
	message := []byte(param(params, "message"))
	encrypted := toolbox.AsInt(params["isEncrypted"]) == 1
	base["isEncrypted"] = encrypted
	if groupID := toolbox.AsInt(params["groupID"]); groupID != 0 {
		base["txGroupId"] = groupID
	} else {
		base["recipient"] = param(params, "recipient")
	}
	if encrypted {
		reference, err := base58.Decode(param(params, "lastReference"))
		if err != nil {
			return fmt.Errorf("invalid chat reference: %w", err)
		}
		recipientKey, err := cipher.DecodeKey(param(params, "recipientPublicKey"))
		if err != nil {
			return err
		}
		privateKey, err := s.keys.PrivateKey(ctx)
		if err != nil {
			return err
		}
		if message, err = s.cipher.Box(message, privateKey, recipientKey, reference); err != nil {
			return err
		}
	}
	base["data"] = base58.Encode(message)
	if ref := param(params, "chatReference"); ref != "" {
		base["chatReference"] = ref
	}
	return nil
}

func param(params map[string]interface{}, key string) string {
	value, ok := params[key]
	if !ok || value == nil {
		return ""
	}
	return toolbox.AsString(value)
}

func tags(value interface{}) []string {
	switch actual := value.(type) {
	case []string:
		return actual
	case []interface{}:
		ret := make([]string, 0, len(actual))
		for _, item := range actual {
			if item != nil {
				ret = append(ret, toolbox.AsString(item))
			}
		}
		return ret
	case string:
		if actual == "" {
			return nil
		}
		return strings.Split(actual, ",")
	}
	return nil
}

var _ tx.Submitter = (*Submitter)(nil)
