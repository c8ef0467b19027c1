package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/service/keystore"
)

// Node is the subset of the node client used for wallets.
type Node interface {
	Balance(ctx context.Context, address string) (string, error)
	UnitFee(ctx context.Context, txType string) (uint64, error)
	WalletBalance(ctx context.Context, coin, key string) (string, error)
	SendCoin(ctx context.Context, coin string, request map[string]interface{}) (string, error)
}

// Intent is a validated payment awaiting approval. All amounts are atomic.
type Intent struct {
	Coin      *Coin
	Recipient string
	Amount    *uint256.Int
	Fee       *uint256.Int
	Balance   *uint256.Int
}

// Service resolves balances and fees and submits foreign payments.
type Service struct {
	node Node
	keys keystore.Store
}

// New creates a wallet service.
func New(node Node, keys keystore.Store) *Service {
	return &Service{node: node, keys: keys}
}

// Coin returns the coin for symbol or an Unsupported fault.
func (s *Service) Coin(symbol string) (*Coin, error) {
	coin, ok := Lookup(symbol)
	if !ok {
		return nil, fault.Unsupported(fmt.Sprintf("Coin %s is not supported", strings.ToUpper(symbol)))
	}
	return coin, nil
}

// Balance fetches the atomic balance of coin. A non-numeric answer is
// reported as a fetch failure.
func (s *Service) Balance(ctx context.Context, coin *Coin) (*uint256.Int, error) {
	failed := fault.Upstream(fmt.Sprintf("Failed to Fetch %s Balance. Try again!", coin.Symbol), nil)
	if coin.Native {
		account, err := s.keys.Account(ctx)
		if err != nil {
			return nil, err
		}
		text, err := s.node.Balance(ctx, account.Address)
		if err != nil {
			failed.Cause = err
			return nil, failed
		}
		balance, err := ParseAmount(text)
		if err != nil {
			return nil, failed
		}
		return balance, nil
	}
	key, err := s.walletKey(ctx, coin)
	if err != nil {
		failed.Cause = err
		return nil, failed
	}
	text, err := s.node.WalletBalance(ctx, coin.Symbol, key)
	if err != nil {
		failed.Cause = err
		return nil, failed
	}
	balance, err := ParseAtomic(text)
	if err != nil {
		return nil, failed
	}
	return balance, nil
}

// Fee returns the atomic fee reserved for a payment of coin.
func (s *Service) Fee(ctx context.Context, coin *Coin) (*uint256.Int, error) {
	if !coin.Native {
		return uint256.NewInt(coin.FixedFee), nil
	}
	fee, err := s.node.UnitFee(ctx, "PAYMENT")
	if err != nil {
		return nil, fault.Upstream("Request could not be fulfilled", err)
	}
	return uint256.NewInt(fee), nil
}

// Prepare validates a payment in order: positive amount, non-empty
// recipient, balance fetch, funds. It never contacts the approval gate.
func (s *Service) Prepare(ctx context.Context, symbol, recipient string, amount interface{}) (*Intent, error) {
	coin, err := s.Coin(symbol)
	if err != nil {
		return nil, err
	}
	atomic, err := ParseAmount(amount)
	if err != nil || atomic.IsZero() {
		return nil, fault.InvalidInput("Invalid Amount!")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, fault.InvalidInput("Receiver cannot be empty!")
	}
	balance, err := s.Balance(ctx, coin)
	if err != nil {
		return nil, err
	}
	fee, err := s.Fee(ctx, coin)
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int).Add(atomic, fee)
	if total.Gt(balance) {
		return nil, fault.InsufficientFunds()
	}
	return &Intent{Coin: coin, Recipient: recipient, Amount: atomic, Fee: fee, Balance: balance}, nil
}

// SendForeign submits a foreign payment and returns the transaction id.
func (s *Service) SendForeign(ctx context.Context, intent *Intent) (string, error) {
	coin := intent.Coin
	if coin.Native {
		return "", fmt.Errorf("%s is not a foreign coin", coin.Symbol)
	}
	wallet, err := s.keys.Wallet(ctx, coin.Symbol)
	if err != nil {
		return "", err
	}
	request := map[string]interface{}{
		"receivingAddress": intent.Recipient,
		coin.AmountKey:     FormatAmount(intent.Amount),
	}
	if coin.UsesSeed {
		request["entropy58"] = wallet.Seed58
		request["memo"] = ""
	} else {
		request["xprv58"] = wallet.MasterPrivateKey
		request["feePerByte"] = FormatAmount(uint256.NewInt(coin.FeePerByte))
	}
	txID, err := s.node.SendCoin(ctx, coin.Symbol, request)
	if err != nil {
		return "", fmt.Errorf("failed to send %s: %w", coin.Symbol, err)
	}
	if len(txID) != 64 {
		return "", errors.New("Error: could not send coin")
	}
	return txID, nil
}

func (s *Service) walletKey(ctx context.Context, coin *Coin) (string, error) {
	wallet, err := s.keys.Wallet(ctx, coin.Symbol)
	if err != nil {
		return "", err
	}
	if coin.UsesSeed {
		return wallet.Seed58, nil
	}
	return wallet.MasterPublicKey, nil
}
