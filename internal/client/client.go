// Package client is a Go client for the canteen API that keeps the signed-in
// session and the shopping cart, the way the web front end does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"canteen/internal/access"
	"canteen/internal/cart"
	"canteen/internal/domain"
	authdto "canteen/internal/microservices/auth/domain/dto"
	orderdto "canteen/internal/microservices/order/domain/dto"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Cart    cart.Storage // nil keeps carts in memory
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	carts      *cart.Book

	mu      sync.RWMutex
	session access.Session
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		carts:      cart.NewBook(cfg.Cart),
	}
}

// APIError is a non-2xx answer. It unwraps to the matching domain error.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d: %s", e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	}
	return nil
}

func (c *Client) Session() access.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodPost, "/auth/register",
		authdto.RegisterRequest{Username: username, Email: email, Password: password}, &u)
	return u, err
}

// Login signs in and keeps the session for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (access.Session, error) {
	var resp authdto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login",
		authdto.LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return access.Session{}, err
	}
	s := access.Session{UserID: resp.ID, Username: resp.Username, Role: resp.Role, Token: resp.Token}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return s, nil
}

func (c *Client) Logout() {
	c.mu.Lock()
	c.session = access.Session{}
	c.mu.Unlock()
}

func (c *Client) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := c.do(ctx, http.MethodGet, "/menu", nil, &items)
	return items, err
}

// AddToCart adds one unit of item to the current user's cart.
func (c *Client) AddToCart(item domain.MenuItem) ([]cart.Line, error) {
	return c.carts.Add(c.Session().UserID, item)
}

func (c *Client) Cart() ([]cart.Line, error) {
	return c.carts.Lines(c.Session().UserID)
}

// Checkout places the cart as one order and empties the cart once the order is accepted.
func (c *Client) Checkout(ctx context.Context, paymentMethod, paymentReference, station string) (orderdto.PlacementResult, error) {
	s := c.Session()
	if !s.SignedIn() {
		return orderdto.PlacementResult{}, fmt.Errorf("%w: sign in to check out", domain.ErrUnauthorized)
	}
	lines, err := c.carts.Lines(s.UserID)
	if err != nil {
		return orderdto.PlacementResult{}, err
	}
	if len(lines) == 0 {
		return orderdto.PlacementResult{}, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	req := orderdto.PlaceOrderRequest{
		UserID:           s.UserID,
		TotalAmount:      cart.Total(lines),
		PaymentMethod:    paymentMethod,
		PaymentReference: paymentReference,
		StationNumber:    station,
		Items:            make([]orderdto.LineInput, 0, len(lines)),
	}
	for _, l := range lines {
		id := l.ItemID
		req.Items = append(req.Items, orderdto.LineInput{ItemID: &id, Name: l.Name, Quantity: l.Quantity, Price: l.Price})
	}

	var res orderdto.PlacementResult
	if err := c.do(ctx, http.MethodPost, "/orders", req, &res); err != nil {
		return orderdto.PlacementResult{}, err
	}
	c.carts.Clear(s.UserID)
	return res, nil
}

func (c *Client) ActiveOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/user/%d/active", c.Session().UserID), nil, &orders)
	return orders, err
}

// Navigate runs the route guard locally for the current session.
func (c *Client) Navigate(route string) access.Decision {
	return access.Decide(c.Session(), route)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	endpoint, err := url.JoinPath(c.baseURL, "api", path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.Session().Token; tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Detail == "" {
			apiErr.Detail = string(respBody)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
