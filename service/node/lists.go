package node

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type listItems struct {
	Items []string `json:"items"`
}

// ListItems returns the items of a local list.
func (c *Client) ListItems(ctx context.Context, name string) ([]string, error) {
	var ret []string
	if err := c.getJSON(ctx, "/lists/"+url.PathEscape(name), nil, true, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// AddListItems appends items to a local list.
func (c *Client) AddListItems(ctx context.Context, name string, items []string) (bool, error) {
	return c.modifyList(ctx, http.MethodPost, name, items)
}

// DeleteListItems removes items from a local list.
func (c *Client) DeleteListItems(ctx context.Context, name string, items []string) (bool, error) {
	return c.modifyList(ctx, http.MethodDelete, name, items)
}

func (c *Client) modifyList(ctx context.Context, method, name string, items []string) (bool, error) {
	data, err := c.sendJSON(ctx, method, "/lists/"+url.PathEscape(name), true, &listItems{Items: items})
	if err != nil {
		return false, err
	}
	switch strings.TrimSpace(string(data)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("unexpected list response: %s", data)
}
