package node

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/qgate/service/cipher"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/tx"
)

func testKeys(t *testing.T, fill byte) (*keystore.Service, ed25519.PublicKey) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = fill
	}
	keys, err := keystore.NewStatic(&keystore.Material{Seed: base58.Encode(seed)})
	require.NoError(t, err)
	return keys, ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
}

func TestSubmitter_Submit(t *testing.T) {
	type testCase struct {
		name          string
		request       *tx.Request
		buildPath     string
		processReply  string
		expectSuccess bool
		expectMessage string
		expectCompute bool
		expectBody    map[string]interface{}
	}

	_, recipientKey := testKeys(t, 9)
	reference := base58.Encode(make([]byte, 64))
	tests := []testCase{
		{
			name:          "join group",
			request:       &tx.Request{Type: tx.TypeJoinGroup, Params: map[string]interface{}{"fee": "0.01", "rGroupId": 7, "lastReference": "ref"}},
			buildPath:     PathJoinGroup,
			processReply:  "true",
			expectSuccess: true,
			expectBody:    map[string]interface{}{"groupId": float64(7), "fee": "0.01", "reference": "ref"},
		},
		{
			name:          "payment rejected by node",
			request:       &tx.Request{Type: tx.TypePayment, Params: map[string]interface{}{"recipient": "Qb", "amount": "1", "fee": "0.001"}},
			buildPath:     PathPayment,
			processReply:  `{"error":1,"message":"insufficient balance"}`,
			expectMessage: "insufficient balance",
			expectBody:    map[string]interface{}{"recipient": "Qb", "amount": "1"},
		},
		{
			name: "direct chat with proof-of-work",
			request: &tx.Request{Type: tx.TypeChat, Difficulty: 8, Params: map[string]interface{}{
				"recipient": "Qb", "recipientPublicKey": base58.Encode(recipientKey), "message": "{}",
				"lastReference": reference, "isEncrypted": 1,
			}},
			buildPath:     PathChat,
			processReply:  "true",
			expectSuccess: true,
			expectCompute: true,
			expectBody:    map[string]interface{}{"recipient": "Qb", "isEncrypted": true, "fee": "0"},
		},
		{
			name: "group chat",
			request: &tx.Request{Type: tx.TypeChat, Params: map[string]interface{}{
				"groupID": 4, "message": "{}", "lastReference": reference, "isEncrypted": 0,
			}},
			buildPath:     PathChat,
			processReply:  "true",
			expectSuccess: true,
			expectBody:    map[string]interface{}{"txGroupId": float64(4), "isEncrypted": false, "data": base58.Encode([]byte("{}"))},
		},
		{
			name:          "deploy at",
			request:       &tx.Request{Type: tx.TypeDeployAT, Params: map[string]interface{}{"rName": "at", "rAssetId": 0, "atType": "game", "fee": "0.1"}},
			buildPath:     PathDeployAT,
			processReply:  "false",
			expectSuccess: false,
			expectBody:    map[string]interface{}{"name": "at", "aTType": "game"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			keys, _ := testKeys(t, 1)
			unsigned := []byte{10, 20, 30}
			var body map[string]interface{}
			computed := false
			var processed []byte
			client := newTestNode(t, map[string]http.HandlerFunc{
				tc.buildPath: func(w http.ResponseWriter, r *http.Request) {
					_ = json.NewDecoder(r.Body).Decode(&body)
					_, _ = io.WriteString(w, base58.Encode(unsigned))
				},
				PathChatCompute: func(w http.ResponseWriter, r *http.Request) {
					computed = true
					data, _ := io.ReadAll(r.Body)
					raw, _ := base58.Decode(string(data))
					_, _ = io.WriteString(w, base58.Encode(append(raw, 99)))
				},
				PathProcess: func(w http.ResponseWriter, r *http.Request) {
					data, _ := io.ReadAll(r.Body)
					processed, _ = base58.Decode(string(data))
					_, _ = io.WriteString(w, tc.processReply)
				},
			})
			svc, err := cipher.New(0)
			require.NoError(t, err)
			submitter := NewSubmitter(client, keys, svc)

			response, err := submitter.Submit(context.Background(), tc.request)
			require.NoError(t, err)
			assert.Equal(t, tc.expectSuccess, response.Success)
			assert.Equal(t, tc.expectMessage, response.Message)
			assert.Equal(t, tc.expectCompute, computed)
			for k, v := range tc.expectBody {
				assert.Equal(t, v, body[k], k)
			}

			account, _ := keys.Account(context.Background())
			publicKey, _ := base58.Decode(account.PublicKey)
			signedLen := len(unsigned)
			if tc.expectCompute {
				signedLen++
			}
			require.Len(t, processed, signedLen+ed25519.SignatureSize)
			assert.True(t, ed25519.Verify(publicKey, processed[:signedLen], processed[signedLen:]))
			if tc.request.Type == tx.TypeChat && tc.expectSuccess {
				data := response.Data.(map[string]interface{})
				assert.Equal(t, base58.Encode(processed[signedLen:]), data["signature"])
			}
			assert.Equal(t, 0, submitter.Offload(PathChatCompute).Active())
		})
	}
}

func TestSubmitter_BuildRejected(t *testing.T) {
	keys, _ := testKeys(t, 1)
	client := newTestNode(t, map[string]http.HandlerFunc{
		PathJoinGroup: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":16,"message":"invalid reference"}`)
		},
	})
	svc, _ := cipher.New(0)
	response, err := NewSubmitter(client, keys, svc).Submit(context.Background(), &tx.Request{Type: tx.TypeJoinGroup})
	require.NoError(t, err)
	assert.False(t, response.Success)
	assert.Equal(t, "invalid reference", response.Message)

	_, err = NewSubmitter(client, keys, svc).Submit(context.Background(), &tx.Request{Type: 99})
	assert.Error(t, err)
}
