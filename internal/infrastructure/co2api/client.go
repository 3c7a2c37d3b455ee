package co2api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

var ErrUnsuccessful = errors.New("counter service reported failure")

// Client talks to the shared CO2 counter service rooted at BaseURL
// (for example https://shop.example/api/co2).
type Client struct {
	baseURL    string
	httpClient *http.Client
	adminToken string
}

type ClientOption func(*Client)

// WithAdminToken sets the bearer token sent with reset requests
func WithAdminToken(token string) ClientOption {
	return func(c *Client) { c.adminToken = token }
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func NewClient(baseURL string, httpClient *http.Client, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Total(ctx context.Context) (float64, error) {
	var data TotalData
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &data, ""); err != nil {
		return 0, err
	}
	return data.TotalCO2Saved, nil
}

func (c *Client) Add(ctx context.Context, amount float64, orderID string) (float64, error) {
	var data AddData
	req := NewAddRequest(amount, orderID)
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/add", req, &data, ""); err != nil {
		return 0, err
	}
	return data.NewTotal, nil
}

func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/reset", nil, nil, c.adminToken)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any, token string) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("%w: %s", ErrUnsuccessful, env.Error)
		}
		return ErrUnsuccessful
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: missing data", ErrUnsuccessful)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
