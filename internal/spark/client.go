// Package spark is a small client for the Webex (formerly Cisco Spark)
// REST API covering the rooms, webhooks, messages and people resources.
package spark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const DefaultBaseURL = "https://webexapis.com/v1"

var ErrNotFound = errors.New("not found")

// APIError is returned for any non-2xx answer from the platform.
type APIError struct {
	StatusCode int
	Body       string
	TrackingId string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spark api error: status=%d tracking_id=%s body=%s", e.StatusCode, e.TrackingId, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == fasthttp.StatusNotFound
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	token   string

	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		token:          token,
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a client acting as a different identity. The returned
// client shares the underlying connection pool.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var resp listResponse[Room]
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/rooms?max=1000", nil, &resp); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return resp.Items, nil
}

func (c *Client) CreateRoom(ctx context.Context, title string) (Room, error) {
	var room Room
	in := map[string]string{"title": title}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/rooms", in, &room); err != nil {
		return Room{}, fmt.Errorf("create room %q: %w", title, err)
	}
	return room, nil
}

func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, fasthttp.MethodDelete, "/rooms/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	return nil
}

func (c *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	var resp listResponse[Webhook]
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/webhooks?max=1000", nil, &resp); err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	return resp.Items, nil
}

func (c *Client) CreateWebhook(ctx context.Context, params CreateWebhookParams) (Webhook, error) {
	var wh Webhook
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/webhooks", params, &wh); err != nil {
		return Webhook{}, fmt.Errorf("create webhook %q: %w", params.Name, err)
	}
	return wh, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, fasthttp.MethodDelete, "/webhooks/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete webhook %s: %w", id, err)
	}
	return nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (Message, error) {
	var msg Message
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/messages/"+url.PathEscape(id), nil, &msg); err != nil {
		return Message{}, fmt.Errorf("get message %s: %w", id, err)
	}
	return msg, nil
}

func (c *Client) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	var msg Message
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/messages", params, &msg); err != nil {
		return Message{}, fmt.Errorf("create message in %s: %w", params.RoomId, err)
	}
	return msg, nil
}

func (c *Client) GetPerson(ctx context.Context, id string) (Person, error) {
	var p Person
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/people/"+url.PathEscape(id), nil, &p); err != nil {
		return Person{}, fmt.Errorf("get person %s: %w", id, err)
	}
	return p, nil
}

// Me resolves the person the client's token belongs to.
func (c *Client) Me(ctx context.Context) (Person, error) {
	return c.GetPerson(ctx, "me")
}

// ExchangeCode trades an OAuth authorization code for an access/refresh token pair.
func (c *Client) ExchangeCode(ctx context.Context, params ExchangeCodeParams) (Authorization, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", params.ClientId)
	form.Set("client_secret", params.ClientSecret)
	form.Set("code", params.Code)
	form.Set("redirect_uri", params.RedirectURI)

	var auth Authorization
	err := c.do(ctx, fasthttp.MethodPost, "/access_token", "application/x-www-form-urlencoded", []byte(form.Encode()), &auth, false)
	if err != nil {
		return Authorization{}, fmt.Errorf("exchange code: %w", err)
	}
	return auth, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}
	return c.do(ctx, method, path, "application/json", payload, out, true)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any, authorize bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	trackingId := uuid.NewString()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType(contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("TrackingID", trackingId)
	if authorize && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.SetBody(body)
	}

	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return &APIError{
			StatusCode: status,
			Body:       truncate(string(resp.Body()), 512),
			TrackingId: trackingId,
		}
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
