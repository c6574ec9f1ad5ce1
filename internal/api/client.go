// Package api is the typed client for the London's Imports backend REST API.
// The backend owns all durable state; this client only shuttles snapshots and
// commands for the web layer.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 15 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

type ctxKey int

const (
	ctxKeyToken ctxKey = iota
	ctxKeyIdempotency
)

// WithToken attaches the caller's bearer token to the context. Requests made
// with that context authenticate as the session's user.
func WithToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyToken, token)
}

func tokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyToken).(string)
	return v
}

// WithIdempotencyKey pins the Idempotency-Key sent on Checkout. Callers that
// retry the same logical attempt pass the same key so the backend collapses
// duplicates into one order.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	key = strings.TrimSpace(key)
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyIdempotency, key)
}

func idempotencyKeyFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyIdempotency).(string)
	return v
}

// Client issues calls against the backend API.
type Client struct {
	rc      *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rc.SetTimeout(d) }
}

// WithLogger sets the client's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTransport swaps the underlying transport (tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.rc.SetTransport(rt) }
}

// NewClient constructs a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0) // failures feed the circuit breaker, not a retry loop

	c := &Client{rc: rc, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker("backend", c.logger)

	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if tok := tokenFrom(req.Context()); tok != "" {
			req.SetHeader("Authorization", "Bearer "+tok)
		}
		return nil
	})
	return c
}

type callOpts struct {
	headers map[string]string
	query   map[string]string
}

// do executes one request through the circuit breaker. Backend 4xx rejections
// are returned to the caller but do not count as breaker failures; transport
// errors and 5xx responses do.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts callOpts) error {
	start := time.Now()
	res, err := c.breaker.Execute(func() (any, error) {
		req := c.rc.R().SetContext(ctx)
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
		if out != nil {
			req.SetResult(out)
		}
		for k, v := range opts.headers {
			req.SetHeader(k, v)
		}
		if len(opts.query) > 0 {
			req.SetQueryParams(opts.query)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			apiErr := newError(resp.StatusCode(), resp.Body())
			if resp.StatusCode() >= http.StatusInternalServerError {
				return nil, apiErr
			}
			return apiErr, nil
		}
		return nil, nil
	})
	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("took", time.Since(start)),
		zap.Bool("ok", err == nil && res == nil),
	)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, breakerError(err))
	}
	if apiErr, ok := res.(*Error); ok && apiErr != nil {
		return apiErr
	}
	return nil
}

// GetCart fetches the authenticated user's current cart snapshot.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/orders/cart/", nil, &cart, callOpts{}); err != nil {
		return nil, err
	}
	return &cart, nil
}

type checkoutResponse struct {
	Order *Order `json:"order"`
}

// Checkout finalizes the cart into a committed order. The context-provided
// idempotency key is replayed on retried submissions of the same attempt so
// the backend creates at most one order; absent one, each call gets its own.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	var resp checkoutResponse
	key := idempotencyKeyFrom(ctx)
	if key == "" {
		key = uuid.NewString()
	}
	opts := callOpts{headers: map[string]string{idempotencyHeader: key}}
	if err := c.do(ctx, http.MethodPost, "/orders/checkout/", req, &resp, opts); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, &Error{Status: http.StatusBadGateway, Message: "checkout returned no order"}
	}
	return resp.Order, nil
}

// GetOrder fetches an order by its human-readable number.
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/orders/%s/", strings.TrimSpace(orderNumber))
	if err := c.do(ctx, http.MethodGet, path, nil, &order, callOpts{}); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches the user's order history.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, &orders, callOpts{}); err != nil {
		return nil, err
	}
	return orders, nil
}

type initiatePaymentRequest struct {
	OrderNumber  string `json:"order_number"`
	PaymentType  string `json:"payment_type"`
	CustomAmount string `json:"custom_amount,omitempty"`
}

// InitiatePayment requests a fresh payment session for one attempt. Sessions
// are never reused across attempts; the key here is minted per call and the
// context key used by Checkout is ignored.
func (c *Client) InitiatePayment(ctx context.Context, orderNumber, paymentType, customAmount string) (*PaymentSession, error) {
	var session PaymentSession
	req := initiatePaymentRequest{
		OrderNumber:  strings.TrimSpace(orderNumber),
		PaymentType:  paymentType,
		CustomAmount: customAmount,
	}
	opts := callOpts{headers: map[string]string{idempotencyHeader: uuid.NewString()}}
	if err := c.do(ctx, http.MethodPost, "/payments/initiate/", req, &session, opts); err != nil {
		return nil, err
	}
	if session.Reference == "" {
		return nil, &Error{Status: http.StatusBadGateway, Message: "payment initiation returned no reference"}
	}
	return &session, nil
}

type verifyRequest struct {
	Reference string `json:"reference"`
}

// VerifyPayment asks the backend to confirm a gateway payment server-side.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error) {
	var result VerifyResult
	req := verifyRequest{Reference: strings.TrimSpace(reference)}
	if err := c.do(ctx, http.MethodPost, "/payments/verify/", req, &result, callOpts{}); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me/", nil, &user, callOpts{}); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for tokens.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login/", req, &resp, callOpts{}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Count    int       `json:"count"`
	Next     string    `json:"next,omitempty"`
	Previous string    `json:"previous,omitempty"`
	Results  []Product `json:"results"`
}

// ListProducts fetches a catalog page. query maps straight to URL parameters
// (search, category, page).
func (c *Client) ListProducts(ctx context.Context, query map[string]string) (*ProductPage, error) {
	var page ProductPage
	if err := c.do(ctx, http.MethodGet, "/products/", nil, &page, callOpts{query: query}); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct fetches a single catalog entry by slug.
func (c *Client) GetProduct(ctx context.Context, slug string) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/products/%s/", strings.TrimSpace(slug))
	if err := c.do(ctx, http.MethodGet, path, nil, &product, callOpts{}); err != nil {
		return nil, err
	}
	return &product, nil
}
