package wallet

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/qgate/extension"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/service/dispatcher"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/approval/memory"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/tx"
	funds "github.com/viant/qgate/service/wallet"
)

type fakeNode struct {
	balance       string
	walletBalance string
	sendReply     string
	names         map[string]string
	sent          map[string]interface{}
}

func (f *fakeNode) Balance(ctx context.Context, address string) (string, error) {
	return f.balance, nil
}

func (f *fakeNode) UnitFee(ctx context.Context, txType string) (uint64, error) {
	return 1000000, nil
}

func (f *fakeNode) WalletBalance(ctx context.Context, coin, key string) (string, error) {
	return f.walletBalance, nil
}

func (f *fakeNode) SendCoin(ctx context.Context, coin string, request map[string]interface{}) (string, error) {
	f.sent = request
	return f.sendReply, nil
}

func (f *fakeNode) NameOwner(ctx context.Context, name string) (string, error) {
	return f.names[name], nil
}

func (f *fakeNode) LastReference(ctx context.Context, address string) (string, error) {
	return "ref", nil
}

type fixture struct {
	service   *Service
	node      *fakeNode
	submitted []*tx.Request
	bob       string
}

func newFixture(t *testing.T, approve bool) *fixture {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	approvals := memory.New()
	if approve {
		t.Cleanup(approval.AutoApprove(ctx, approvals, time.Millisecond))
	} else {
		t.Cleanup(approval.AutoReject(ctx, approvals, "", time.Millisecond))
	}
	keys, err := keystore.NewStatic(&keystore.Material{
		Seed:    base58.Encode(make([]byte, 32)),
		Wallets: map[string]*keystore.Wallet{"BTC": {MasterPrivateKey: "xprv", MasterPublicKey: "xpub"}},
	})
	require.NoError(t, err)
	bobSeed := make([]byte, 32)
	bobSeed[0] = 7
	bobKeys, err := keystore.NewStatic(&keystore.Material{Seed: base58.Encode(bobSeed)})
	require.NoError(t, err)
	bob, _ := bobKeys.Account(context.Background())

	f := &fixture{bob: bob.Address}
	f.node = &fakeNode{balance: "10.5", walletBalance: "100000000", sendReply: strings.Repeat("a", 64), names: map[string]string{"bob": bob.Address}}
	submitter := tx.SubmitterFunc(func(ctx context.Context, request *tx.Request) (*tx.Response, error) {
		f.submitted = append(f.submitted, request)
		return &tx.Response{Success: true, Data: true}, nil
	})
	f.service = New(approval.NewGate(approvals), funds.New(f.node, keys), f.node, keys, submitter)
	return f
}

func TestService_Balance(t *testing.T) {
	type testCase struct {
		name       string
		approve    bool
		coin       string
		expect     string
		expectErr  string
		expectKind fault.Kind
	}
	tests := []testCase{
		{name: "native", approve: true, coin: "QORT", expect: "10.50000000"},
		{name: "declined", coin: "QORT", expectErr: declined, expectKind: fault.KindDeclined},
		{name: "foreign", approve: true, coin: "BTC", expectErr: "Balance of BTC is not supported", expectKind: fault.KindUnsupported},
		{name: "unknown", approve: true, coin: "XMR", expectErr: "Coin XMR is not supported", expectKind: fault.KindUnsupported},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.approve)
			output := &BalanceOutput{}
			err := f.service.Balance(context.Background(), &BalanceInput{Coin: tc.coin}, output)
			if tc.expectErr != "" {
				assert.EqualError(t, err, tc.expectErr)
				assert.Equal(t, tc.expectKind, fault.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, string(output.Result().(json.RawMessage)))
		})
	}
}

func TestService_Send(t *testing.T) {
	type testCase struct {
		name            string
		approve         bool
		input           func(f *fixture) *SendInput
		expectErr       string
		expectKind      fault.Kind
		expectRecipient bool
		expectTxID      bool
	}
	tests := []testCase{
		{
			name:            "native to address",
			approve:         true,
			input:           func(f *fixture) *SendInput { return &SendInput{Coin: "QORT", DestinationAddress: f.bob, Amount: 1.0} },
			expectRecipient: true,
		},
		{
			name:            "native to name",
			approve:         true,
			input:           func(f *fixture) *SendInput { return &SendInput{Coin: "QORT", DestinationAddress: "bob", Amount: "1"} },
			expectRecipient: true,
		},
		{
			name:       "invalid receiver",
			approve:    true,
			input:      func(f *fixture) *SendInput { return &SendInput{Coin: "QORT", DestinationAddress: "nobody", Amount: 1.0} },
			expectErr:  "Invalid receiver",
			expectKind: fault.KindInvalidInput,
		},
		{
			name:       "empty receiver",
			approve:    true,
			input:      func(f *fixture) *SendInput { return &SendInput{Coin: "QORT", DestinationAddress: "  ", Amount: 1.0} },
			expectErr:  "Receiver cannot be empty!",
			expectKind: fault.KindInvalidInput,
		},
		{
			name:       "insufficient",
			approve:    true,
			input:      func(f *fixture) *SendInput { return &SendInput{Coin: "QORT", DestinationAddress: f.bob, Amount: 10.5} },
			expectErr:  "Insufficient Funds!",
			expectKind: fault.KindInsufficientFunds,
		},
		{
			name:       "declined",
			input:      func(f *fixture) *SendInput { return &SendInput{Coin: "QORT", DestinationAddress: f.bob, Amount: 1.0} },
			expectErr:  declined,
			expectKind: fault.KindDeclined,
		},
		{
			name:       "foreign",
			approve:    true,
			input:      func(f *fixture) *SendInput { return &SendInput{Coin: "BTC", DestinationAddress: "bc1q", Amount: 0.5} },
			expectTxID: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.approve)
			output := &SendOutput{}
			err := f.service.Send(context.Background(), tc.input(f), output)
			if tc.expectErr != "" {
				assert.EqualError(t, err, tc.expectErr)
				assert.Equal(t, tc.expectKind, fault.KindOf(err))
				assert.Empty(t, f.submitted)
				assert.Nil(t, f.node.sent)
				return
			}
			require.NoError(t, err)
			if tc.expectTxID {
				assert.Equal(t, strings.Repeat("a", 64), output.Result())
				assert.Equal(t, "0.50000000", f.node.sent["bitcoinAmount"])
				return
			}
			assert.Equal(t, true, output.Result())
			require.Len(t, f.submitted, 1)
			assert.Equal(t, tx.TypePayment, f.submitted[0].Type)
			assert.Equal(t, f.bob, f.submitted[0].Params["recipient"])
			assert.Equal(t, "0.01000000", f.submitted[0].Params["fee"])
			assert.Equal(t, "ref", f.submitted[0].Params["lastReference"])
		})
	}
}

func TestService_SendDispatched(t *testing.T) {
	type testCase struct {
		name       string
		fields     map[string]interface{}
		expectErr  string
		expectKind fault.Kind
	}
	tests := []testCase{
		{
			name:       "empty receiver",
			fields:     map[string]interface{}{"coin": "QORT", "destinationAddress": "", "amount": float64(5)},
			expectErr:  "Receiver cannot be empty!",
			expectKind: fault.KindInvalidInput,
		},
		{
			name:       "zero amount",
			fields:     map[string]interface{}{"coin": "QORT", "destinationAddress": "bob", "amount": float64(0)},
			expectErr:  "Invalid Amount!",
			expectKind: fault.KindInvalidInput,
		},
		{
			name:       "negative amount",
			fields:     map[string]interface{}{"coin": "QORT", "destinationAddress": "bob", "amount": float64(-1)},
			expectErr:  "Invalid Amount!",
			expectKind: fault.KindInvalidInput,
		},
		{
			name:       "absent receiver",
			fields:     map[string]interface{}{"coin": "QORT", "amount": float64(5)},
			expectErr:  "Missing fields: destinationAddress",
			expectKind: fault.KindMissingFields,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, false)
			actions := extension.NewActions()
			require.NoError(t, actions.Register(f.service))
			fields := map[string]interface{}{"action": string(action.SendCoin)}
			for k, v := range tc.fields {
				fields[k] = v
			}
			request, ok := action.FromFields(fields)
			require.True(t, ok)

			reply, ok := dispatcher.New(actions).Handle(context.Background(), request)
			require.True(t, ok)
			assert.False(t, reply.OK)
			require.NotNil(t, reply.Error)
			assert.Equal(t, tc.expectErr, reply.Error.Error)
			assert.Equal(t, string(tc.expectKind), reply.Error.Kind)
			assert.Empty(t, f.submitted)
		})
	}
}
