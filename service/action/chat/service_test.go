package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/approval/memory"
	"github.com/viant/qgate/service/node"
	"github.com/viant/qgate/service/pow"
	"github.com/viant/qgate/service/tx"
)

type fakeNode struct {
	keys map[string]string
	err  error
}

func (f *fakeNode) PublicKey(ctx context.Context, address string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key, ok := f.keys[address]
	if !ok {
		return "", node.ErrNoPublicKey
	}
	return key, nil
}

func TestService_Send(t *testing.T) {
	type testCase struct {
		name         string
		approve      bool
		input        *Input
		nodeErr      error
		response     *tx.Response
		expectErr    string
		expectKind   fault.Kind
		expectParams map[string]interface{}
	}
	signed := &tx.Response{Success: true, Data: map[string]interface{}{"signature": "sig"}}
	tests := []testCase{
		{
			name:     "direct",
			approve:  true,
			input:    &Input{Message: "hi", DestinationAddress: "Qbob"},
			response: signed,
			expectParams: map[string]interface{}{
				"recipient":          "Qbob",
				"recipientPublicKey": "bobKey",
				"isEncrypted":        1,
			},
		},
		{
			name:         "group",
			approve:      true,
			input:        &Input{Message: "hi", GroupID: 7.0},
			response:     signed,
			expectParams: map[string]interface{}{"groupID": 7, "isEncrypted": 0},
		},
		{
			name:       "no destination",
			approve:    true,
			input:      &Input{Message: "hi"},
			expectErr:  "Missing fields: destinationAddress",
			expectKind: fault.KindMissingFields,
		},
		{
			name:       "declined",
			input:      &Input{Message: "hi", DestinationAddress: "Qbob"},
			expectErr:  "User declined to send message",
			expectKind: fault.KindDeclined,
		},
		{
			name:       "recipient without key",
			approve:    true,
			input:      &Input{Message: "hi", DestinationAddress: "Qnobody"},
			expectErr:  noPublicKey,
			expectKind: fault.KindNoPublicKey,
		},
		{
			name:       "key lookup failure",
			approve:    true,
			input:      &Input{Message: "hi", DestinationAddress: "Qbob"},
			nodeErr:    errors.New("timeout"),
			expectErr:  sendFailed,
			expectKind: fault.KindUpstream,
		},
		{
			name:       "node message",
			approve:    true,
			input:      &Input{Message: "hi", DestinationAddress: "Qbob"},
			response:   &tx.Response{Success: false, Message: "invalid reference"},
			expectErr:  "invalid reference",
			expectKind: fault.KindUpstream,
		},
		{
			name:       "no signature",
			approve:    true,
			input:      &Input{Message: "hi", DestinationAddress: "Qbob"},
			response:   &tx.Response{Success: true, Data: true},
			expectErr:  sendFailed,
			expectKind: fault.KindUpstream,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			approvals := memory.New()
			if tc.approve {
				defer approval.AutoApprove(ctx, approvals, time.Millisecond)()
			} else {
				defer approval.AutoReject(ctx, approvals, "", time.Millisecond)()
			}
			var submitted *tx.Request
			submitter := tx.SubmitterFunc(func(ctx context.Context, request *tx.Request) (*tx.Response, error) {
				submitted = request
				return tc.response, nil
			})
			svc := New(approval.NewGate(approvals), &fakeNode{keys: map[string]string{"Qbob": "bobKey"}, err: tc.nodeErr}, submitter)

			output := &Output{}
			err := svc.Send(ctx, tc.input, output)
			if tc.expectErr != "" {
				assert.EqualError(t, err, tc.expectErr)
				assert.Equal(t, tc.expectKind, fault.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, map[string]interface{}{"signature": "sig"}, output.Result())
			require.NotNil(t, submitted)
			assert.Equal(t, tx.TypeChat, submitted.Type)
			assert.Equal(t, pow.ChatDifficulty, submitted.Difficulty)
			for k, v := range tc.expectParams {
				assert.Equal(t, v, submitted.Params[k], k)
			}
			reference, err := base58.Decode(submitted.Params["lastReference"].(string))
			require.NoError(t, err)
			assert.Len(t, reference, referenceSize)
		})
	}
}

func TestEnvelope(t *testing.T) {
	text, err := Envelope("hello")
	require.NoError(t, err)
	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.EqualValues(t, 3, decoded["version"])
	assert.Equal(t, "", decoded["repliedTo"])
	assert.Equal(t, []interface{}{""}, decoded["images"])
	doc := decoded["messageText"].(map[string]interface{})
	assert.Equal(t, "doc", doc["type"])
	paragraph := doc["content"].([]interface{})[0].(map[string]interface{})
	leaf := paragraph["content"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "hello", leaf["text"])
}
