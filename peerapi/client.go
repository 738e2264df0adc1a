package peerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/counterparty"
)

// Client is the outbound half of PeerApi, implementing
// counterparty.PeerClient over HTTP+JSON against a single remote peer. One
// Client is constructed per counterparty, bound to that counterparty's
// resolved base URL, the way the teacher binds one rpcclient.Client per
// lnd peer connection.
type Client struct {
	from    chantypes.Address
	baseURL string
	http    *http.Client
}

var _ counterparty.PeerClient = (*Client)(nil)

// NewClient returns a Client that sends requests from "from" to baseURL.
func NewClient(from chantypes.Address, baseURL string) *Client {
	return &Client{from: from, baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

func (c *Client) do(ctx context.Context, path string, reqBody, respBody any) error {
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("peerapi: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("peerapi: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("peerapi: request to %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode/100 != 2 {
		var errResp errorResponse
		if err := json.NewDecoder(httpResp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("peerapi: peer returned status %d and an undecodable error body", httpResp.StatusCode)
		}
		return fromErrorResponse(errResp)
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("peerapi: decoding response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) ProposeChannel(ctx context.Context, tx *chantypes.NewChannelTx) (*chantypes.NewChannelTx, error) {
	var resp proposeChannelResponse
	if err := c.do(ctx, "/guac/v1/propose_channel", proposeChannelRequest{From: c.from, Tx: tx}, &resp); err != nil {
		return nil, err
	}
	return resp.Tx, nil
}

func (c *Client) ProposeReDraw(ctx context.Context, tx *chantypes.ReDrawTx) (*chantypes.ReDrawTx, error) {
	var resp proposeReDrawResponse
	if err := c.do(ctx, "/guac/v1/propose_re_draw", proposeReDrawRequest{From: c.from, Tx: tx}, &resp); err != nil {
		return nil, err
	}
	return resp.Tx, nil
}

func (c *Client) NotifyChannelOpened(ctx context.Context, id chantypes.ChannelID) error {
	return c.do(ctx, "/guac/v1/notify_channel_opened", notifyChannelOpenedRequest{From: c.from, ID: id}, nil)
}

func (c *Client) NotifyReDraw(ctx context.Context, id chantypes.ChannelID, sequenceNumber chantypes.U256) error {
	return c.do(ctx, "/guac/v1/notify_re_draw", notifyReDrawRequest{From: c.from, ID: id, SequenceNumber: sequenceNumber}, nil)
}

func (c *Client) ReceivePayment(ctx context.Context, update *chantypes.UpdateTx) error {
	return c.do(ctx, "/guac/v1/receive_payment", receivePaymentRequest{From: c.from, Update: update}, nil)
}
