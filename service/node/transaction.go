package node

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mr-tron/base58"
)

// Build paths per transaction kind.
const (
	PathPayment   = "/payments/pay"
	PathJoinGroup = "/groups/join"
	PathDeployAT  = "/at"
	PathChat      = "/chat"

	PathChatCompute      = "/chat/compute"
	PathArbitraryCompute = "/arbitrary/compute"
	PathProcess          = "/transactions/process"
)

// Build posts transaction data to path and returns the unsigned bytes.
func (c *Client) Build(ctx context.Context, path string, data interface{}) ([]byte, error) {
	raw, err := c.sendJSON(ctx, http.MethodPost, path, false, data)
	if err != nil {
		return nil, err
	}
	return decodeBytes(string(raw))
}

// Compute asks the node to embed a proof-of-work nonce into unsigned bytes.
func (c *Client) Compute(ctx context.Context, path string, unsigned []byte) ([]byte, error) {
	text, err := c.sendText(ctx, path, nil, true, base58.Encode(unsigned))
	if err != nil {
		return nil, err
	}
	return decodeBytes(text)
}

// Process broadcasts signed bytes. The node answers true, false or an error.
func (c *Client) Process(ctx context.Context, signed []byte) (bool, error) {
	text, err := c.sendText(ctx, PathProcess, nil, false, base58.Encode(signed))
	if err != nil {
		return false, err
	}
	return text == "true", nil
}

// PublishRequest describes an arbitrary data publish.
type PublishRequest struct {
	Service     string
	Name        string
	Identifier  string
	Data64      string
	Filename    string
	Title       string
	Description string
	Category    string
	Tags        []string
	Fee         string
}

// BuildPublish uploads data and returns the unsigned arbitrary transaction.
func (c *Client) BuildPublish(ctx context.Context, request *PublishRequest) ([]byte, error) {
	path := "/arbitrary/" + url.PathEscape(request.Service) + "/" + url.PathEscape(request.Name)
	if request.Identifier != "" && request.Identifier != "default" {
		path += "/" + url.PathEscape(request.Identifier)
	}
	path += "/base64"
	query := url.Values{}
	set := func(key, value string) {
		if value != "" {
			query.Set(key, value)
		}
	}
	set("title", request.Title)
	set("description", request.Description)
	set("category", request.Category)
	set("filename", request.Filename)
	set("fee", request.Fee)
	for _, tag := range request.Tags {
		if tag != "" {
			query.Add("tags", tag)
		}
	}
	text, err := c.sendText(ctx, path, query, true, request.Data64)
	if err != nil {
		return nil, err
	}
	return decodeBytes(text)
}

func decodeBytes(text string) ([]byte, error) {
	text = strings.Trim(strings.TrimSpace(text), `"`)
	if text == "" {
		return nil, fmt.Errorf("node returned empty transaction")
	}
	ret, err := base58.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("node returned invalid transaction bytes: %w", err)
	}
	return ret, nil
}
