package node

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// WalletBalance returns the atomic balance of a foreign wallet identified by
// its derived master public key (or seed for privacy coins).
func (c *Client) WalletBalance(ctx context.Context, coin, key string) (string, error) {
	return c.sendText(ctx, "/crosschain/"+url.PathEscape(strings.ToLower(coin))+"/walletbalance", nil, true, key)
}

// SendCoin submits a foreign send and returns the node's answer: the
// transaction id on success.
func (c *Client) SendCoin(ctx context.Context, coin string, request map[string]interface{}) (string, error) {
	data, err := c.sendJSON(ctx, http.MethodPost, "/crosschain/"+url.PathEscape(strings.ToLower(coin))+"/send", true, request)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(data)), `"`), nil
}
