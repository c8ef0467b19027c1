// Package wallet reports balances and sends coins from the host wallets.
package wallet

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/session"
	"github.com/viant/qgate/service/tx"
	funds "github.com/viant/qgate/service/wallet"
)

const (
	name = "wallet"

	notFulfilled = "Request could not be fulfilled"
	declined     = "User declined request"
)

// Node resolves payment recipients and references.
type Node interface {
	NameOwner(ctx context.Context, name string) (string, error)
	LastReference(ctx context.Context, address string) (string, error)
}

// Service runs the wallet pipelines.
type Service struct {
	gate      *approval.Gate
	funds     *funds.Service
	node      Node
	keys      keystore.Store
	submitter tx.Submitter
}

// BalanceInput names a coin.
type BalanceInput struct {
	Coin string `json:"coin"`
}

// BalanceOutput is a decimal balance.
type BalanceOutput struct {
	Balance string
}

// Result returns the balance as a JSON number.
func (o *BalanceOutput) Result() interface{} {
	return json.RawMessage(o.Balance)
}

// SendInput is a payment request.
type SendInput struct {
	Coin               string      `json:"coin"`
	DestinationAddress string      `json:"destinationAddress"`
	Amount             interface{} `json:"amount"`
}

// SendOutput is the payment result: submitter data for the native coin, the
// transaction id for foreign coins.
type SendOutput struct {
	Data interface{}
}

// Result returns the payment result.
func (o *SendOutput) Result() interface{} {
	return o.Data
}

// New creates a wallet action service.
func New(gate *approval.Gate, funds *funds.Service, node Node, keys keystore.Store, submitter tx.Submitter) *Service {
	return &Service{gate: gate, funds: funds, node: node, keys: keys, submitter: submitter}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Kind:     action.GetWalletBalance,
			Required: []string{"coin"},
			Input:    reflect.TypeOf(&BalanceInput{}),
			Output:   reflect.TypeOf(&BalanceOutput{}),
		},
		{
			Kind:     action.SendCoin,
			Required: []string{"coin"},
			Present:  []string{"destinationAddress", "amount"},
			Input:    reflect.TypeOf(&SendInput{}),
			Output:   reflect.TypeOf(&SendOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(kind action.Kind) (types.Executable, error) {
	switch kind {
	case action.GetWalletBalance:
		return s.balance, nil
	case action.SendCoin:
		return s.send, nil
	default:
		return nil, types.NewMethodNotFoundError(kind)
	}
}

func (s *Service) balance(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*BalanceInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*BalanceOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Balance(ctx, input, output)
}

func (s *Service) send(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SendInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SendOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Send(ctx, input, output)
}

// Balance shares the native balance once the operator agrees.
func (s *Service) Balance(ctx context.Context, input *BalanceInput, output *BalanceOutput) error {
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind:    action.GetWalletBalance,
		Summary: map[string]interface{}{"coin": input.Coin},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined(declined)
	}
	coin, err := s.funds.Coin(input.Coin)
	if err != nil {
		return err
	}
	if !coin.Native {
		return fault.Unsupported("Balance of " + coin.Symbol + " is not supported")
	}
	balance, err := s.funds.Balance(ctx, coin)
	if err != nil {
		return err
	}
	output.Balance = funds.FormatAmount(balance)
	return nil
}

// Send validates the payment, asks the operator and submits it.
func (s *Service) Send(ctx context.Context, input *SendInput, output *SendOutput) error {
	intent, err := s.funds.Prepare(ctx, input.Coin, input.DestinationAddress, input.Amount)
	if err != nil {
		return err
	}
	var reference string
	if intent.Coin.Native {
		if intent.Recipient, err = s.resolve(ctx, intent.Recipient); err != nil {
			return err
		}
		account, err := session.Account(ctx, s.keys)
		if err != nil {
			return fault.Upstream(notFulfilled, err)
		}
		if reference, err = s.node.LastReference(ctx, account.Address); err != nil {
			return fault.Upstream(notFulfilled, err)
		}
	}
	outcome, err := s.gate.Ask(ctx, &approval.Prompt{
		Kind: action.SendCoin,
		Summary: map[string]interface{}{
			"coin":      intent.Coin.Symbol,
			"recipient": intent.Recipient,
			"amount":    funds.FormatAmount(intent.Amount),
			"fee":       funds.FormatAmount(intent.Fee),
			"balance":   funds.FormatAmount(intent.Balance),
		},
	})
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return fault.Declined(declined)
	}
	if !intent.Coin.Native {
		txID, err := s.funds.SendForeign(ctx, intent)
		if err != nil {
			return fault.Upstream(notFulfilled, err)
		}
		output.Data = txID
		return nil
	}
	result, err := tx.Submit(ctx, s.submitter, &tx.Request{
		Type: tx.TypePayment,
		Params: map[string]interface{}{
			"recipient":     intent.Recipient,
			"amount":        funds.FormatAmount(intent.Amount),
			"fee":           funds.FormatAmount(intent.Fee),
			"lastReference": reference,
		},
	})
	if err != nil {
		return fault.Upstream(notFulfilled, err)
	}
	output.Data = result
	return nil
}

// resolve accepts an address or a registered name.
func (s *Service) resolve(ctx context.Context, recipient string) (string, error) {
	if keystore.IsValidAddress(recipient) {
		return recipient, nil
	}
	owner, err := s.node.NameOwner(ctx, recipient)
	if err != nil || owner == "" {
		return "", fault.InvalidInput("Invalid receiver")
	}
	return owner, nil
}
