package backend

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

	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/metrics"
	"github.com/Renal37/fuel-orders/internal/models"
	"go.uber.org/zap"
)

// PathStyle selects one of the two path conventions of the fuel order API.
type PathStyle string

const (
	PathStyleSingular PathStyle = "singular"
	PathStylePlural   PathStyle = "plural"
)

const (
	DefaultBaseURL = "http://localhost:8081/api"
	defaultTimeout = 10 * time.Second
)

type paths struct {
	register string
	login    string
	create   string
	list     string
	// status is a format string taking the escaped order id
	status string
}

func pathsFor(style PathStyle) (paths, error) {
	switch style {
	case PathStyleSingular, "":
		return paths{
			register: "/v1/auth/register",
			login:    "/v1/auth/login",
			create:   "/v1/order",
			list:     "/v1/order/list",
			status:   "/v1/order/%s/status",
		}, nil
	case PathStylePlural:
		return paths{
			register: "/v1/auth/register",
			login:    "/v1/auth/login",
			create:   "/v1/orders",
			list:     "/v1/orders/list-order",
			status:   "/v1/orders/%s/status",
		}, nil
	default:
		return paths{}, fmt.Errorf("unknown path style %q", style)
	}
}

type Config struct {
	BaseURL   string
	PathStyle PathStyle
	Timeout   time.Duration
}

// Client talks to the fuel order API. It holds no session state; every protected
// call takes the bearer token explicitly.
type Client struct {
	baseURL string
	paths   paths
	http    *http.Client
}

func New(config Config) (*Client, error) {
	p, err := pathsFor(config.PathStyle)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		paths:   p,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type tokenResponse struct {
	Token string `json:"token"`
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (c *Client) Register(ctx context.Context, registration models.Registration) error {
	return c.do(ctx, "register", http.MethodPost, c.paths.register, "", registration, nil)
}

func (c *Client) Login(ctx context.Context, credentials models.Credentials) (string, error) {
	var resp tokenResponse

	if err := c.do(ctx, "login", http.MethodPost, c.paths.login, "", credentials, &resp); err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", errors.New("login response contains no token")
	}

	return resp.Token, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, order models.NewOrder) (*models.Order, error) {
	var created models.Order

	if err := c.do(ctx, "create_order", http.MethodPost, c.paths.create, token, order, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

func (c *Client) ListOrders(ctx context.Context, token string, filter models.OrderFilter, page models.PageRequest) (*models.Page[models.Order], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Page))
	query.Set("size", strconv.Itoa(page.Size))

	var result models.Page[models.Order]

	if err := c.do(ctx, "list_orders", http.MethodPost, c.paths.list+"?"+query.Encode(), token, filter, &result); err != nil {
		return nil, err
	}

	if result.Content == nil {
		result.Content = []models.Order{}
	}

	return &result, nil
}

func (c *Client) UpdateStatus(ctx context.Context, token, orderID string, status models.OrderStatus) (*models.Order, error) {
	var updated models.Order
	path := fmt.Sprintf(c.paths.status, url.PathEscape(orderID))

	if err := c.do(ctx, "update_status", http.MethodPatch, path, token, statusRequest{Status: status}, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// do sends body as JSON and decodes a successful response into out when out is not nil.
func (c *Client) do(ctx context.Context, action, method, path, token string, body, out interface{}) error {
	startTime := time.Now()
	outcome := "ok"
	defer func() {
		metrics.ObserveUpstream(action, outcome, time.Since(startTime))
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		outcome = "encode_error"
		return fmt.Errorf("failed to marshal %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		outcome = "encode_error"
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcome = "cancelled"
			return ctxErr
		}

		outcome = "unreachable"
		logger.Log.Warn("fuel order api is unreachable", zap.String("action", action), zap.Error(err))
		return fmt.Errorf("%w: %s", ErrNetworkUnreachable, err.Error())
	}

	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		outcome = "read_error"
		return fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		outcome = strconv.Itoa(res.StatusCode)
		apiErr := newAPIError(res.StatusCode, data)

		logger.Log.Info("fuel order api rejected request",
			zap.String("action", action),
			zap.Int("status", res.StatusCode),
			zap.String("message", apiErr.Message),
		)

		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("failed to unmarshal %s response: %w", action, err)
	}

	return nil
}
