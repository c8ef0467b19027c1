package node

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Name is a registered name.
type Name struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// NameOwner returns the address owning name or "" when unregistered.
func (c *Client) NameOwner(ctx context.Context, name string) (string, error) {
	ret := &Name{}
	if err := c.getJSON(ctx, "/names/"+url.PathEscape(name), nil, false, ret); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Code != 0) {
			return "", nil
		}
		return "", err
	}
	return ret.Owner, nil
}

// Names returns the names registered to address.
func (c *Client) Names(ctx context.Context, address string) ([]*Name, error) {
	var ret []*Name
	if err := c.getJSON(ctx, "/names/address/"+url.PathEscape(address), nil, false, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}
