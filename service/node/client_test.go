package node

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return New(Config{URL: server.URL, APIKey: "key"})
}

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}
}

func TestClient_Lookups(t *testing.T) {
	ctx := context.Background()
	client := newTestNode(t, map[string]http.HandlerFunc{
		"/addresses/lastreference/Qa": text("ref58"),
		"/addresses/balance/Qa":       text("12.5"),
		"/addresses/publickey/Qa":     text("pub58"),
		"/addresses/publickey/Qb": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":102,"message":"no public key"}`)
		},
		"/transactions/unitfee": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "JOIN_GROUP", r.URL.Query().Get("txType"))
			_, _ = io.WriteString(w, "100000")
		},
		"/names/alice":      text(`{"name":"alice","owner":"Qa"}`),
		"/names/address/Qa": text(`[{"name":"alice","owner":"Qa"}]`),
		"/groups/7":         text(`{"groupId":7,"groupName":"devs","isOpen":true}`),
		"/groups/8": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":91,"message":"group unknown"}`)
		},
	})

	ref, err := client.LastReference(ctx, "Qa")
	require.NoError(t, err)
	assert.Equal(t, "ref58", ref)

	balance, err := client.Balance(ctx, "Qa")
	require.NoError(t, err)
	assert.Equal(t, "12.5", balance)

	key, err := client.PublicKey(ctx, "Qa")
	require.NoError(t, err)
	assert.Equal(t, "pub58", key)
	_, err = client.PublicKey(ctx, "Qb")
	assert.ErrorIs(t, err, ErrNoPublicKey)

	fee, err := client.UnitFee(ctx, "JOIN_GROUP")
	require.NoError(t, err)
	assert.Equal(t, uint64(100000), fee)

	owner, err := client.NameOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Qa", owner)
	owner, err = client.NameOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "", owner)

	names, err := client.Names(ctx, "Qa")
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "alice", names[0].Name)

	group, err := client.Group(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "devs", group.Name)
	_, err = client.Group(ctx, 8)
	assert.EqualError(t, err, "group unknown")
}

func TestClient_Lists(t *testing.T) {
	ctx := context.Background()
	var lastMethod string
	var lastBody listItems
	client := newTestNode(t, map[string]http.HandlerFunc{
		"/lists/blocked": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "key", r.URL.Query().Get("apiKey"))
			lastMethod = r.Method
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `["a","b"]`)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&lastBody)
			_, _ = io.WriteString(w, "true")
		},
	})

	items, err := client.ListItems(ctx, "blocked")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)

	ok, err := client.AddListItems(ctx, "blocked", []string{"c"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, http.MethodPost, lastMethod)
	assert.Equal(t, []string{"c"}, lastBody.Items)

	ok, err = client.DeleteListItems(ctx, "blocked", []string{"a"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, http.MethodDelete, lastMethod)
}

func TestClient_BuildPublish(t *testing.T) {
	unsigned := []byte{1, 2, 3}
	client := newTestNode(t, map[string]http.HandlerFunc{
		"/arbitrary/WEBSITE/alice/base64": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "aGVsbG8=", string(body))
			assert.Equal(t, []string{"a", "b"}, r.URL.Query()["tags"])
			assert.Equal(t, "My site", r.URL.Query().Get("title"))
			_, _ = io.WriteString(w, base58.Encode(unsigned))
		},
	})
	actual, err := client.BuildPublish(context.Background(), &PublishRequest{
		Service:    "WEBSITE",
		Name:       "alice",
		Identifier: "default",
		Data64:     "aGVsbG8=",
		Title:      "My site",
		Tags:       []string{"a", "", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, unsigned, actual)
}

func TestClient_Crosschain(t *testing.T) {
	client := newTestNode(t, map[string]http.HandlerFunc{
		"/crosschain/btc/walletbalance": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "xpub", string(body))
			_, _ = io.WriteString(w, "150000")
		},
		"/crosschain/btc/send": func(w http.ResponseWriter, r *http.Request) {
			request := map[string]interface{}{}
			_ = json.NewDecoder(r.Body).Decode(&request)
			assert.Equal(t, "xprv", request["xprv58"])
			_, _ = io.WriteString(w, "f3a1c0ffee")
		},
	})
	balance, err := client.WalletBalance(context.Background(), "BTC", "xpub")
	require.NoError(t, err)
	assert.Equal(t, "150000", balance)

	txID, err := client.SendCoin(context.Background(), "BTC", map[string]interface{}{"xprv58": "xprv"})
	require.NoError(t, err)
	assert.Equal(t, "f3a1c0ffee", txID)
}
