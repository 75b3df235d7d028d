// Package navigation drives the dashboard pages: which page is shown, the
// data fetched for it, and the error state it renders. Fetches are tagged
// with the page they were started for, and results arriving after the user
// has moved on are dropped.
package navigation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/service/payroll"
	"github.com/mamadbah2/farmsync/internal/service/reporting"
)

// Page is a dashboard screen.
type Page string

const (
	PageLogin         Page = "Login"
	PageDashboard     Page = "Dashboard"
	PageYields        Page = "Yields"
	PageWorkers       Page = "Workers"
	PageWorkerDetails Page = "WorkerDetails"
	PageFinancials    Page = "Financials"
	PageInventory     Page = "Inventory"
	PageReports       Page = "Reports"
)

func (p Page) valid() bool {
	switch p {
	case PageLogin, PageDashboard, PageYields, PageWorkers, PageWorkerDetails,
		PageFinancials, PageInventory, PageReports:
		return true
	}
	return false
}

// API is the slice of the REST client the pages need.
type API interface {
	Dashboard(ctx context.Context) (models.Dashboard, error)
	Yields(ctx context.Context) ([]models.Yield, error)
	Sales(ctx context.Context) ([]models.Sale, error)
	Workers(ctx context.Context) ([]models.Worker, error)
	Worker(ctx context.Context, id string) (models.WorkerDetails, error)
	MarkAttendance(ctx context.Context, id string, req models.AttendanceRequest) (models.AttendanceRecord, error)
	AddLoan(ctx context.Context, id string, req models.LoanRequest) (models.LoanLedgerEntry, error)
	RunPayroll(ctx context.Context, id string, req models.PayrollRequest) (models.PayrollResponse, error)
	Financials(ctx context.Context) ([]models.FinancialTransaction, error)
	Inventory(ctx context.Context) ([]models.InventoryItem, error)
}

// FinancialsView is the Financials page, with its charts computed locally.
type FinancialsView struct {
	Transactions     []models.FinancialTransaction
	Summary          models.FinancialSummary
	RevenueBreakdown []models.ChartPoint
	ExpenseBreakdown []models.ChartPoint
}

// WorkerView is the WorkerDetails page.
type WorkerView struct {
	Details  models.WorkerDetails
	Balance  float64
	Calendar payroll.Calendar
}

// Data is the snapshot fetched for the current page. Only the fields of that
// page are set.
type Data struct {
	Dashboard  *models.Dashboard
	Yields     []models.Yield
	Sales      []models.Sale
	Workers    []models.Worker
	Worker     *WorkerView
	Financials *FinancialsView
	Inventory  []models.InventoryItem
	Reports    *models.Reports
}

// View is what the current page renders.
type View struct {
	Page     Page
	WorkerID string
	Loading  bool
	Err      *PageError
	Data     Data
	// LastPay is the result of the last payroll run on this page.
	LastPay *models.PayResult
}

// epoch identifies one fetch. A result is applied only while its epoch is
// still the controller's current one.
type epoch struct {
	page     Page
	workerID string
	seq      uint64
}

// action is one backend call made by a worker action.
type action func(ctx context.Context, api API) error

// Option customises a Controller.
type Option func(*Controller)

// WithClock overrides the clock used for calendars and trends.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTrendMonths sets how many months the Reports page trends cover.
func WithTrendMonths(months int) Option {
	return func(c *Controller) {
		if months > 0 {
			c.trendMonths = months
		}
	}
}

// WithAuthenticator enables Login.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Controller) { c.auth = auth }
}

// Controller is the page state machine. It is safe for concurrent use.
type Controller struct {
	auth        Authenticator
	now         func() time.Time
	trendMonths int

	mu           sync.Mutex
	api          API
	session      Session
	current      epoch
	view         View
	knownWorkers map[string]bool
	// pending is the last action that failed with a retryable error. It is
	// dropped when the page changes.
	pending action
}

// New builds a controller for the session. Signed-in sessions start on the
// Dashboard, anonymous ones on Login; nothing is fetched until Navigate.
func New(api API, session Session, opts ...Option) *Controller {
	c := &Controller{
		api:         api,
		now:         time.Now,
		trendMonths: 6,
		session:     session,
	}
	for _, opt := range opts {
		opt(c)
	}

	start := PageLogin
	if session.Authenticated() {
		start = PageDashboard
	}
	c.current = epoch{page: start}
	c.view = View{Page: start}
	return c
}

// View returns the current page state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Session returns the active session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Navigate enters page and fetches its data. workerID is required for
// WorkerDetails and ignored elsewhere. The returned error is also the page's
// error state unless it is ErrUnknownPage or ErrUnauthenticated.
func (c *Controller) Navigate(ctx context.Context, page Page, workerID string) error {
	if !page.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}

	c.mu.Lock()
	if page != PageLogin && !c.session.Authenticated() {
		c.enter(PageLogin, "")
		c.mu.Unlock()
		return ErrUnauthenticated
	}
	if page == PageWorkerDetails && workerID == "" {
		c.mu.Unlock()
		return validationError(ErrWorkerRequired)
	}
	if page != PageWorkerDetails {
		workerID = ""
	}

	tag := c.enter(page, workerID)
	if page == PageWorkerDetails && c.knownWorkers != nil && !c.knownWorkers[workerID] {
		pe := &PageError{Kind: KindNotFound, Err: fmt.Errorf("worker %s is not in the worker list", workerID)}
		c.view.Loading = false
		c.view.Err = pe
		c.mu.Unlock()
		return pe
	}
	c.mu.Unlock()

	if page == PageLogin {
		return nil
	}
	return c.load(ctx, tag)
}

// Retry recovers from a retryable error on the current page. A failed worker
// action is re-issued, anything else refetches the page. The last good
// snapshot stays visible while it runs. Login failures are not retried;
// call Login again instead.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.view.Page == PageLogin || c.view.Err == nil || c.view.Err.Kind != KindRetryable {
		c.mu.Unlock()
		return ErrNotRetryable
	}
	if pending := c.pending; pending != nil {
		c.pending = nil
		c.view.Err = nil
		c.mu.Unlock()
		return c.act(ctx, pending)
	}
	tag := c.reenter()
	c.mu.Unlock()

	return c.load(ctx, tag)
}

// Logout returns to Login and forgets the session.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = Session{}
	c.knownWorkers = nil
	c.enter(PageLogin, "")
}

// enter starts a fresh page. Callers hold mu.
func (c *Controller) enter(page Page, workerID string) epoch {
	c.current = epoch{page: page, workerID: workerID, seq: c.current.seq + 1}
	c.view = View{Page: page, WorkerID: workerID, Loading: page != PageLogin}
	c.pending = nil
	return c.current
}

// client returns the API bound to the current session.
func (c *Controller) client() API {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.api
}

// reenter starts a new fetch for the current page, keeping its data. Callers
// hold mu.
func (c *Controller) reenter() epoch {
	c.current.seq++
	c.view.Loading = true
	c.view.Err = nil
	return c.current
}

// refresh refetches the current page after a mutation.
func (c *Controller) refresh(ctx context.Context) error {
	c.mu.Lock()
	tag := c.reenter()
	c.mu.Unlock()

	return c.load(ctx, tag)
}

func (c *Controller) load(ctx context.Context, tag epoch) error {
	data, err := c.fetch(ctx, c.client(), tag.page, tag.workerID)
	return c.apply(tag, data, err)
}

// apply stores a fetch result if tag is still current. Stale results are
// dropped without error.
func (c *Controller) apply(tag epoch, data Data, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tag != c.current {
		return nil
	}

	c.view.Loading = false
	if err != nil {
		pe := classify(err)
		c.view.Err = pe
		return pe
	}

	c.view.Err = nil
	c.view.Data = data
	if tag.page == PageWorkers {
		c.knownWorkers = make(map[string]bool, len(data.Workers))
		for _, w := range data.Workers {
			c.knownWorkers[w.ID] = true
		}
	}
	return nil
}

func (c *Controller) fetch(ctx context.Context, api API, page Page, workerID string) (Data, error) {
	var data Data

	switch page {
	case PageDashboard:
		dashboard, err := api.Dashboard(ctx)
		if err != nil {
			return data, err
		}
		data.Dashboard = &dashboard

	case PageYields:
		yields, err := api.Yields(ctx)
		if err != nil {
			return data, err
		}
		sales, err := api.Sales(ctx)
		if err != nil {
			return data, err
		}
		data.Yields, data.Sales = yields, sales

	case PageWorkers:
		workers, err := api.Workers(ctx)
		if err != nil {
			return data, err
		}
		data.Workers = workers

	case PageWorkerDetails:
		details, err := api.Worker(ctx, workerID)
		if err != nil {
			return data, err
		}
		now := c.now()
		data.Worker = &WorkerView{
			Details:  details,
			Balance:  payroll.LedgerBalance(details.Loans),
			Calendar: payroll.MonthCalendar(now.Year(), now.Month(), details.Attendance),
		}

	case PageFinancials:
		txs, err := api.Financials(ctx)
		if err != nil {
			return data, err
		}
		data.Financials = &FinancialsView{
			Transactions:     txs,
			Summary:          reporting.Totals(txs),
			RevenueBreakdown: reporting.RevenueBreakdown(txs),
			ExpenseBreakdown: reporting.ExpenseBreakdown(txs),
		}

	case PageInventory:
		items, err := api.Inventory(ctx)
		if err != nil {
			return data, err
		}
		data.Inventory = items

	case PageReports:
		yields, err := api.Yields(ctx)
		if err != nil {
			return data, err
		}
		txs, err := api.Financials(ctx)
		if err != nil {
			return data, err
		}
		reports := reporting.BuildReports(yields, txs, c.now(), c.trendMonths)
		data.Reports = &reports
	}

	return data, nil
}
