package group

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/approval/memory"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/node"
	"github.com/viant/qgate/service/tx"
)

type fakeNode struct {
	groups map[int]*node.Group
	err    error
}

func (f *fakeNode) Group(ctx context.Context, id int) (*node.Group, error) {
	if f.err != nil {
		return nil, f.err
	}
	group, ok := f.groups[id]
	if !ok {
		return nil, &node.APIError{Status: 404, Code: 0, Message: ""}
	}
	return group, nil
}

func (f *fakeNode) UnitFee(ctx context.Context, txType string) (uint64, error) {
	return 1000000, nil
}

func (f *fakeNode) LastReference(ctx context.Context, address string) (string, error) {
	return "ref", nil
}

func TestService_Join(t *testing.T) {
	keys, err := keystore.NewStatic(&keystore.Material{Seed: base58.Encode(make([]byte, 32))})
	require.NoError(t, err)
	account, _ := keys.Account(context.Background())

	type testCase struct {
		name       string
		approve    bool
		groupID    interface{}
		nodeErr    error
		expectErr  string
		expectKind fault.Kind
	}
	tests := []testCase{
		{name: "joined", approve: true, groupID: 4.0},
		{name: "string id", approve: true, groupID: "4"},
		{name: "unknown group", approve: true, groupID: 9.0, expectErr: notFound, expectKind: fault.KindNotFound},
		{name: "node message", approve: true, groupID: 4.0, nodeErr: &node.APIError{Status: 400, Code: 90, Message: "group does not exist"}, expectErr: "group does not exist", expectKind: fault.KindNotFound},
		{name: "node down", approve: true, groupID: 4.0, nodeErr: errors.New("dial tcp"), expectErr: notFound, expectKind: fault.KindNotFound},
		{name: "declined", groupID: 4.0, expectErr: "User declined to join the group", expectKind: fault.KindDeclined},
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
				return &tx.Response{Success: true, Data: true}, nil
			})
			fake := &fakeNode{groups: map[int]*node.Group{4: {ID: 4, Name: "devs"}}, err: tc.nodeErr}
			svc := New(approval.NewGate(approvals), fake, keys, submitter)

			output := &JoinOutput{}
			err := svc.Join(ctx, &JoinInput{GroupID: tc.groupID}, output)
			if tc.expectErr != "" {
				assert.EqualError(t, err, tc.expectErr)
				assert.Equal(t, tc.expectKind, fault.KindOf(err))
				assert.Nil(t, submitted)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, true, output.Result())
			require.NotNil(t, submitted)
			assert.Equal(t, tx.TypeJoinGroup, submitted.Type)
			assert.Equal(t, map[string]interface{}{
				"fee":               "0.01000000",
				"registrantAddress": account.Address,
				"rGroupName":        "devs",
				"rGroupId":          4,
				"lastReference":     "ref",
			}, submitted.Params)
		})
	}
}
