// Package client talks to the ordering API on behalf of the guest and waiter
// command line tools.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/tableorder/models"
)

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	// Data is set on a state conflict and holds the order as it stands.
	Data json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// HasCode reports whether err is an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	BaseURL string
	Tenant  string
	// Session is the bearer token sent on authenticated calls.
	Session string
	HTTP    *http.Client
}

func New(baseURL, tenant string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Tenant:  tenant,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type ScannedTable struct {
	TableID uint   `json:"table_id"`
	Label   string `json:"label"`
}

type MenuItem struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type OrderLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type WaiterIdentity struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Feed is one answer of the waiter's order feed.
type Feed struct {
	Orders    []models.Order `json:"orders"`
	FetchedAt time.Time      `json:"fetched_at"`
}

func (c *Client) Scan(ctx context.Context, token string) (ScannedTable, error) {
	var out ScannedTable
	err := c.do(ctx, http.MethodGet, "/scan?token="+url.QueryEscape(token), nil, &out)
	return out, err
}

func (c *Client) Menu(ctx context.Context) ([]MenuItem, error) {
	var out []MenuItem
	err := c.do(ctx, http.MethodGet, "/menu", nil, &out)
	return out, err
}

func (c *Client) SubmitOrder(ctx context.Context, token string, lines []OrderLine) (models.Order, error) {
	var out models.Order
	body := map[string]interface{}{"token": token, "items": lines}
	err := c.do(ctx, http.MethodPost, "/orders", body, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, ref string) (models.Order, error) {
	var out models.Order
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(ref), nil, &out)
	return out, err
}

// WaiterLogin exchanges a PIN for a session, which is kept on the client.
func (c *Client) WaiterLogin(ctx context.Context, pin string) (WaiterIdentity, error) {
	var out struct {
		Token  string         `json:"token"`
		Waiter WaiterIdentity `json:"waiter"`
	}
	if err := c.do(ctx, http.MethodPost, "/waiter/login", map[string]string{"pin": pin}, &out); err != nil {
		return WaiterIdentity{}, err
	}
	c.Session = out.Token
	return out.Waiter, nil
}

func (c *Client) WaiterOrders(ctx context.Context) (Feed, error) {
	var out Feed
	err := c.do(ctx, http.MethodGet, "/waiter/orders", nil, &out)
	return out, err
}

// WaiterTables lists the tenant's tables, or only the caller's when mine is
// set.
func (c *Client) WaiterTables(ctx context.Context, mine bool) ([]models.Table, error) {
	path := "/waiter/tables"
	if mine {
		path += "?mine=true"
	}
	var out []models.Table
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Claim(ctx context.Context, tableID uint) (models.Table, error) {
	var out models.Table
	err := c.do(ctx, http.MethodPost, "/waiter/tables/"+idString(tableID)+"/claim", nil, &out)
	return out, err
}

func (c *Client) Release(ctx context.Context, tableID uint) (models.Table, error) {
	var out models.Table
	err := c.do(ctx, http.MethodDelete, "/waiter/tables/"+idString(tableID)+"/claim", nil, &out)
	return out, err
}

// Advance moves an order forward. On a state conflict the returned order is
// the server's current one and the error carries STATE_CONFLICT.
func (c *Client) Advance(ctx context.Context, orderID uint, status models.OrderStatus) (models.Order, error) {
	var out models.Order
	err := c.do(ctx, http.MethodPatch, "/waiter/orders/"+idString(orderID), map[string]models.OrderStatus{"status": status}, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Data) > 0 {
		_ = json.Unmarshal(apiErr.Data, &out)
	}
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	endpoint := c.BaseURL + "/t/" + url.PathEscape(c.Tenant) + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Session != "" {
		req.Header.Set("Authorization", "Bearer "+c.Session)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "unreadable response: " + err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message, Data: env.Data}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
