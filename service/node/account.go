package node

import (
	"context"
	"errors"
	"net/url"
	"strconv"
)

// ErrNoPublicKey is returned when an address has never published its key.
var ErrNoPublicKey = errors.New("address has no public key")

// LastReference returns the account's last transaction reference.
func (c *Client) LastReference(ctx context.Context, address string) (string, error) {
	return c.getText(ctx, "/addresses/lastreference/"+url.PathEscape(address), nil, false)
}

// Balance returns the decimal QORT balance as reported by the node.
func (c *Client) Balance(ctx context.Context, address string) (string, error) {
	return c.getText(ctx, "/addresses/balance/"+url.PathEscape(address), nil, false)
}

// PublicKey returns the base58 public key of address.
func (c *Client) PublicKey(ctx context.Context, address string) (string, error) {
	key, err := c.getText(ctx, "/addresses/publickey/"+url.PathEscape(address), nil, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == CodeNoPublicKey {
			return "", ErrNoPublicKey
		}
		return "", err
	}
	if key == "" || key == "false" {
		return "", ErrNoPublicKey
	}
	return key, nil
}

// UnitFee returns the atomic fee for txType, e.g. PAYMENT or JOIN_GROUP.
func (c *Client) UnitFee(ctx context.Context, txType string) (uint64, error) {
	text, err := c.getText(ctx, "/transactions/unitfee", url.Values{"txType": {txType}}, false)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(text, 10, 64)
}
