// Package brayns talks to a Brayns renderer over its JSON-RPC 2.0 websocket.
package brayns

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/pkg/errors"
)

// readLimit covers the large payloads Brayns pushes (scene, model metadata).
const readLimit = 64 << 20

// Requester sends one JSON-RPC request and decodes its result.
type Requester interface {
	Request(ctx context.Context, method string, params, result any) error
}

// Error is a JSON-RPC error object returned by Brayns.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("brayns error %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Method  string          `json:"method,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Client is a websocket connection to one Brayns instance.
// Requests are sent one at a time.
type Client struct {
	url    string
	conn   *websocket.Conn
	nextID atomic.Int64
}

// URL turns a Brayns host ("r1i4n21:5000", "http://host:5000") into its
// websocket endpoint.
func URL(host string) string {
	host = strings.TrimSpace(host)
	switch {
	case strings.HasPrefix(host, "ws://"), strings.HasPrefix(host, "wss://"):
	case strings.HasPrefix(host, "http://"):
		host = "ws://" + strings.TrimPrefix(host, "http://")
	case strings.HasPrefix(host, "https://"):
		host = "wss://" + strings.TrimPrefix(host, "https://")
	default:
		host = "ws://" + host
	}
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	return host
}

// Dial opens a websocket to the Brayns instance at host.
func Dial(ctx context.Context, host string) (*Client, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.New("brayns host is empty")
	}

	url := URL(host)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to brayns at %s", url)
	}
	conn.SetReadLimit(readLimit)

	return &Client{url: url, conn: conn}, nil
}

// URL returns the websocket endpoint the client is connected to.
func (c *Client) URL() string {
	return c.url
}

// Request sends method with params and decodes the matching result into
// result, which may be nil. Notifications and replies to other ids received
// meanwhile are skipped.
func (c *Client) Request(ctx context.Context, method string, params, result any) error {
	id := c.nextID.Add(1)

	if err := wsjson.Write(ctx, c.conn, request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}); err != nil {
		return errors.Wrapf(err, "failed to send %s", method)
	}

	for {
		var resp response
		if err := wsjson.Read(ctx, c.conn, &resp); err != nil {
			return errors.Wrapf(err, "failed to read reply to %s", method)
		}
		if resp.ID == nil || *resp.ID != id {
			continue
		}
		if resp.Error != nil {
			return errors.Wrapf(resp.Error, "%s failed", method)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return errors.Wrapf(err, "failed to decode reply to %s", method)
		}
		return nil
	}
}

// Close closes the websocket with a normal closure.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
