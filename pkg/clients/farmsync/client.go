// Package farmsync is the REST client for the farmsync API.
package farmsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error formats the status code and the server's message.
func (e *APIError) Error() string {
	return fmt.Sprintf("farmsync api error: code=%d, message=%s", e.StatusCode, e.Message)
}

// NotFound reports whether the resource does not exist.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

type errorBody struct {
	Error string `json:"error"`
}

// Client talks to the farmsync REST API. A Client is safe for concurrent use.
type Client struct {
	httpClient *resty.Client
	token      string
}

// NewClient builds a client rooted at baseURL (without the /api suffix).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{httpClient: restyClient}
}

// WithToken returns a client that authenticates with the bearer token. The
// receiver is left untouched.
func (c *Client) WithToken(token string) *Client {
	return &Client{httpClient: c.httpClient, token: token}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.httpClient.R().SetContext(ctx).SetError(&errorBody{})
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	return req
}

func send[T any](ctx context.Context, c *Client, method, path string, pathParams map[string]string, body any) (T, error) {
	var out T

	req := c.request(ctx).SetResult(&out)
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return out, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
		if eb, ok := resp.Error().(*errorBody); ok && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		return out, apiErr
	}

	return out, nil
}

func workerPath(id string) map[string]string {
	return map[string]string{"id": id}
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	return send[models.LoginResponse](ctx, c, http.MethodPost, "/auth/login", nil,
		models.LoginRequest{Email: email, Password: password})
}

// Register creates an account and returns its user id.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	resp, err := send[struct {
		UserID string `json:"userId"`
	}](ctx, c, http.MethodPost, "/auth/register", nil, req)
	return resp.UserID, err
}

// UserID returns the user id behind the current token.
func (c *Client) UserID(ctx context.Context) (string, error) {
	resp, err := send[struct {
		UserID string `json:"userId"`
	}](ctx, c, http.MethodGet, "/auth/user-id", nil, nil)
	return resp.UserID, err
}

// Dashboard returns the signed-in owner's summary, alerts and recent activity.
func (c *Client) Dashboard(ctx context.Context) (models.Dashboard, error) {
	return send[models.Dashboard](ctx, c, http.MethodGet, "/dashboard", nil, nil)
}

// Yields lists harvests with their unsold quantity.
func (c *Client) Yields(ctx context.Context) ([]models.Yield, error) {
	return send[[]models.Yield](ctx, c, http.MethodGet, "/yields", nil, nil)
}

// CreateYield records a harvest.
func (c *Client) CreateYield(ctx context.Context, req models.CreateYieldRequest) (models.Yield, error) {
	return send[models.Yield](ctx, c, http.MethodPost, "/yields", nil, req)
}

// Sales lists sales, oldest first.
func (c *Client) Sales(ctx context.Context) ([]models.Sale, error) {
	return send[[]models.Sale](ctx, c, http.MethodGet, "/sales", nil, nil)
}

// CreateSale sells part of a harvest. Overselling comes back as a 422.
func (c *Client) CreateSale(ctx context.Context, req models.CreateSaleRequest) (models.Sale, error) {
	return send[models.Sale](ctx, c, http.MethodPost, "/sales", nil, req)
}

// Workers lists workers with their outstanding loan balance.
func (c *Client) Workers(ctx context.Context) ([]models.Worker, error) {
	return send[[]models.Worker](ctx, c, http.MethodGet, "/workers", nil, nil)
}

// CreateWorker adds a worker.
func (c *Client) CreateWorker(ctx context.Context, req models.CreateWorkerRequest) (models.Worker, error) {
	return send[models.Worker](ctx, c, http.MethodPost, "/workers", nil, req)
}

// Worker returns a worker with its attendance map and loan ledger.
func (c *Client) Worker(ctx context.Context, id string) (models.WorkerDetails, error) {
	return send[models.WorkerDetails](ctx, c, http.MethodGet, "/workers/{id}", workerPath(id), nil)
}

// MarkAttendance upserts one day of attendance.
func (c *Client) MarkAttendance(ctx context.Context, id string, req models.AttendanceRequest) (models.AttendanceRecord, error) {
	return send[models.AttendanceRecord](ctx, c, http.MethodPost, "/workers/{id}/attendance", workerPath(id), req)
}

// AddLoan records a loan and books it as an expense.
func (c *Client) AddLoan(ctx context.Context, id string, req models.LoanRequest) (models.LoanLedgerEntry, error) {
	return send[models.LoanLedgerEntry](ctx, c, http.MethodPost, "/workers/{id}/loan", workerPath(id), req)
}

// RunPayroll returns once the server has written the deduction ledger entry.
func (c *Client) RunPayroll(ctx context.Context, id string, req models.PayrollRequest) (models.PayrollResponse, error) {
	return send[models.PayrollResponse](ctx, c, http.MethodPost, "/workers/{id}/payroll", workerPath(id), req)
}

// Financials lists revenue and expense transactions.
func (c *Client) Financials(ctx context.Context) ([]models.FinancialTransaction, error) {
	return send[[]models.FinancialTransaction](ctx, c, http.MethodGet, "/financials", nil, nil)
}

// Record books a revenue or expense transaction.
func (c *Client) Record(ctx context.Context, kind models.TransactionType, req models.TransactionRequest) (models.FinancialTransaction, error) {
	path := "/financials/expense"
	if kind == models.TransactionRevenue {
		path = "/financials/revenue"
	}
	return send[models.FinancialTransaction](ctx, c, http.MethodPost, path, nil, req)
}

// Inventory lists stock items.
func (c *Client) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	return send[[]models.InventoryItem](ctx, c, http.MethodGet, "/inventory", nil, nil)
}

// CreateInventoryItem adds a stock item.
func (c *Client) CreateInventoryItem(ctx context.Context, req models.CreateInventoryRequest) (models.InventoryItem, error) {
	return send[models.InventoryItem](ctx, c, http.MethodPost, "/inventory", nil, req)
}

// Reports returns the breakdowns, crop profitability and monthly trends.
func (c *Client) Reports(ctx context.Context) (models.Reports, error) {
	return send[models.Reports](ctx, c, http.MethodGet, "/reports", nil, nil)
}
