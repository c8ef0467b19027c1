package dispatcher

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/qgate/extension"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/envelope"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/policy"
	"github.com/viant/qgate/service/action/account"
	"github.com/viant/qgate/service/action/navigation"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/approval/memory"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/session"
)

type echoInput struct {
	EncryptedData string `json:"encryptedData"`
	PublicKey     string `json:"publicKey"`
}

type echoOutput struct {
	Data string `json:"data"`
}

// echo serves DECRYPT_DATA by echoing its input, reports whether its context
// is cancelled on ENCRYPT_DATA and panics on SAVE_FILE.
type echo struct{}

func (echo) Name() string { return "echo" }

func (echo) Methods() types.Signatures {
	return []types.Signature{
		{Kind: action.DecryptData, Required: []string{"encryptedData", "publicKey"}, Input: reflect.TypeOf(&echoInput{}), Output: reflect.TypeOf(&echoOutput{})},
		{Kind: action.EncryptData, Input: reflect.TypeOf(&echoInput{}), Output: reflect.TypeOf(&echoOutput{})},
		{Kind: action.SaveFile, Input: reflect.TypeOf(&echoInput{}), Output: reflect.TypeOf(&echoOutput{})},
	}
}

func (echo) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.DecryptData:
		return func(ctx context.Context, in, out interface{}) error {
			out.(*echoOutput).Data = in.(*echoInput).EncryptedData
			return nil
		}, nil
	case action.EncryptData:
		return func(ctx context.Context, in, out interface{}) error {
			out.(*echoOutput).Data = "live"
			if ctx.Err() != nil {
				out.(*echoOutput).Data = ctx.Err().Error()
			}
			return nil
		}, nil
	case action.SaveFile:
		return func(ctx context.Context, in, out interface{}) error {
			panic("boom")
		}, nil
	}
	return nil, types.NewMethodNotFoundError(kind)
}

type collector struct {
	mu      sync.Mutex
	replies []*envelope.Envelope
}

func (c *collector) Reply(ctx context.Context, e *envelope.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, e)
	return nil
}

func newDispatcher(t *testing.T, p *policy.Policy) (*Service, *session.Service, *keystore.Account) {
	keys, err := keystore.NewStatic(&keystore.Material{Seed: base58.Encode(make([]byte, 32))})
	require.NoError(t, err)
	account0, err := keys.Account(context.Background())
	require.NoError(t, err)
	sessions := session.New(&session.Snapshot{Account: account0, Policy: p})
	actions := extension.NewActions()
	gate := approval.NewGate(memory.New())
	require.NoError(t, actions.Register(account.New(gate, keys)))
	require.NoError(t, actions.Register(navigation.New(sessions)))
	require.NoError(t, actions.Register(echo{}))
	return New(actions, WithSession(sessions)), sessions, account0
}

func TestService_Dispatch(t *testing.T) {
	type testCase struct {
		name        string
		policy      *policy.Policy
		message     string
		expectReply bool
		expectJSON  string
	}
	tests := []testCase{
		{name: "not json", message: `nope`},
		{name: "no action", message: `{"requestId":"1"}`},
		{name: "empty action", message: `{"action":"  "}`},
		{name: "unknown action", message: `{"action":"FORMAT_DISK","requestId":"1"}`},
		{name: "notification", message: `{"action":"QDN_RESOURCE_DISPLAYED","service":"APP","name":"q"}`},
		{
			name:        "missing fields",
			message:     `{"action":"DECRYPT_DATA","requestId":"7","publicKey":""}`,
			expectReply: true,
			expectJSON:  `{"requestId":"7","ok":false,"result":null,"error":{"error":"Missing fields: encryptedData, publicKey","kind":"MissingFields"}}`,
		},
		{
			name:        "success",
			message:     `{"action":"DECRYPT_DATA","requestId":8,"encryptedData":"abc","publicKey":"k"}`,
			expectReply: true,
			expectJSON:  `{"requestId":"8","ok":true,"result":{"data":"abc"},"error":null}`,
		},
		{
			name:        "invalid field type",
			message:     `{"action":"DECRYPT_DATA","encryptedData":5,"publicKey":"k"}`,
			expectReply: true,
			expectJSON:  `{"ok":false,"result":null,"error":{"error":"Invalid request","kind":"InvalidInput"}}`,
		},
		{
			name:        "panic",
			message:     `{"action":"SAVE_FILE","requestId":"p"}`,
			expectReply: true,
			expectJSON:  `{"requestId":"p","ok":false,"result":null,"error":{"error":"Request could not be fulfilled","kind":"UpstreamFailure"}}`,
		},
		{
			name:        "blocked",
			policy:      &policy.Policy{BlockList: []string{"decrypt_data"}},
			message:     `{"action":"DECRYPT_DATA","encryptedData":"abc","publicKey":"k"}`,
			expectReply: true,
			expectJSON:  `{"ok":false,"result":null,"error":{"error":"Action DECRYPT_DATA is not allowed","kind":"Unauthorized"}}`,
		},
		{
			name:        "declined by policy",
			policy:      &policy.Policy{Mode: policy.ModeDeny},
			message:     `{"action":"GET_USER_ACCOUNT"}`,
			expectReply: true,
			expectJSON:  `{"ok":false,"result":null,"error":{"error":"User declined to share account details","kind":"Declined"}}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newDispatcher(t, tc.policy)
			replies := &collector{}
			svc.Dispatch(context.Background(), []byte(tc.message), replies)
			if !tc.expectReply {
				assert.Empty(t, replies.replies)
				return
			}
			require.Len(t, replies.replies, 1)
			reply := replies.replies[0]
			assert.NoError(t, reply.Validate())
			data, err := reply.Marshal()
			require.NoError(t, err)
			assert.JSONEq(t, tc.expectJSON, string(data))
		})
	}
}

func TestService_AutoAuthFromSession(t *testing.T) {
	svc, _, account0 := newDispatcher(t, &policy.Policy{AutoAuth: true})
	replies := &collector{}
	svc.Go(context.Background(), []byte(`{"action":"GET_USER_ACCOUNT","requestId":"a"}`), replies)
	svc.Wait()
	require.Len(t, replies.replies, 1)
	reply := replies.replies[0]
	assert.True(t, reply.OK)
	data, err := json.Marshal(reply.Result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"`+account0.Address+`","publicKey":"`+account0.PublicKey+`"}`, string(data))
}

func TestService_ConcurrentDispatchRepliesOnce(t *testing.T) {
	svc, _, _ := newDispatcher(t, nil)
	replies := &collector{}
	for i := 0; i < 50; i++ {
		svc.Go(context.Background(), []byte(`{"action":"DECRYPT_DATA","encryptedData":"x","publicKey":"k"}`), replies)
	}
	svc.Wait()
	assert.Len(t, replies.replies, 50)
}

func TestService_PipelineOutlivesCaller(t *testing.T) {
	svc, _, _ := newDispatcher(t, nil)
	caller, leave := context.WithCancel(context.Background())
	leave()
	replies := &collector{}
	svc.Dispatch(caller, []byte(`{"action":"ENCRYPT_DATA","requestId":"e"}`), replies)
	require.Len(t, replies.replies, 1)
	data, err := replies.replies[0].Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"requestId":"e","ok":true,"result":{"data":"live"},"error":null}`, string(data))
}
