package node

import (
	"context"
	"strconv"
)

// Group is a node group record.
type Group struct {
	ID          int    `json:"groupId"`
	Name        string `json:"groupName"`
	Owner       string `json:"owner,omitempty"`
	Description string `json:"description,omitempty"`
	IsOpen      bool   `json:"isOpen"`
}

// Group returns the group with id.
func (c *Client) Group(ctx context.Context, id int) (*Group, error) {
	ret := &Group{}
	if err := c.getJSON(ctx, "/groups/"+strconv.Itoa(id), nil, false, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
