// Package telnyx is a minimal client for the pieces of the Telnyx v2 API
// this service uses: sending SMS, answering voice webhooks with TeXML, and
// parsing inbound message webhooks.
package telnyx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telnyx.com"

// Client talks to the Telnyx v2 REST API.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// New creates a client. The default HTTP client carries a 10s timeout so
// a stalled provider call cannot hold the dispatch lock forever.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendMessageRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type apiError struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// SendMessage sends one SMS. Non-2xx responses return an error carrying
// the API's error detail when present.
func (c *Client) SendMessage(ctx context.Context, from, to, text string) error {
	body, err := json.Marshal(sendMessageRequest{From: from, To: to, Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("telnyx send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ae apiError
	if json.Unmarshal(raw, &ae) == nil && len(ae.Errors) > 0 {
		return fmt.Errorf("telnyx send: %s: %s (%s)",
			resp.Status, ae.Errors[0].Title, ae.Errors[0].Detail)
	}
	return fmt.Errorf("telnyx send: %s", resp.Status)
}
