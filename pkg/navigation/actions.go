package navigation

import (
	"context"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/service/payroll"
)

// loadedWorker returns the worker shown on a loaded WorkerDetails page.
func (c *Controller) loadedWorker() (WorkerView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view.Page != PageWorkerDetails || c.view.Data.Worker == nil {
		return WorkerView{}, validationError(ErrWrongPage)
	}
	return *c.view.Data.Worker, nil
}

// ToggleAttendance flips the worker's presence on date. Hourly workers toggle
// between absent and a standard day's hours so status and hours stay in step.
func (c *Controller) ToggleAttendance(ctx context.Context, date string) error {
	wv, err := c.loadedWorker()
	if err != nil {
		return err
	}

	var current *models.AttendanceRecord
	if rec, ok := wv.Details.Attendance[date]; ok {
		current = &rec
	}

	next := payroll.ToggleDaily(date, current)
	rec, err := payroll.Normalize(wv.Details.Worker.PayType, next)
	if err != nil {
		return validationError(err)
	}
	return c.submitAttendance(ctx, wv.Details.Worker.ID, rec)
}

// SetAttendanceHours records hours worked on date; zero hours marks the day
// absent.
func (c *Controller) SetAttendanceHours(ctx context.Context, date string, hours float64) error {
	wv, err := c.loadedWorker()
	if err != nil {
		return err
	}

	rec, err := payroll.SetHours(date, hours)
	if err != nil {
		return validationError(err)
	}
	rec, err = payroll.Normalize(wv.Details.Worker.PayType, rec)
	if err != nil {
		return validationError(err)
	}
	return c.submitAttendance(ctx, wv.Details.Worker.ID, rec)
}

func (c *Controller) submitAttendance(ctx context.Context, workerID string, rec models.AttendanceRecord) error {
	req := models.AttendanceRequest{Date: rec.Date, Status: rec.Status, Hours: rec.Hours}
	return c.act(ctx, func(ctx context.Context, api API) error {
		_, err := api.MarkAttendance(ctx, workerID, req)
		return err
	})
}

// act issues a backend call for the current page and refetches the page once
// it succeeds. A failure becomes the page's error state, and a retryable one
// is kept for Retry. Failures arriving after the page changed are only
// returned.
func (c *Controller) act(ctx context.Context, run action) error {
	c.mu.Lock()
	tag, api := c.current, c.api
	c.mu.Unlock()

	if err := run(ctx, api); err != nil {
		pe := classify(err)

		c.mu.Lock()
		defer c.mu.Unlock()
		if tag != c.current {
			return pe
		}
		c.view.Err = pe
		if pe.Kind == KindRetryable {
			c.pending = run
		}
		return pe
	}

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	return c.refresh(ctx)
}

// AddLoan records a loan for the worker. Invalid input never reaches the
// backend.
func (c *Controller) AddLoan(ctx context.Context, amount *float64, description string) error {
	wv, err := c.loadedWorker()
	if err != nil {
		return err
	}
	if err := payroll.ValidateLoan(amount, description); err != nil {
		return validationError(err)
	}

	workerID := wv.Details.Worker.ID
	req := models.LoanRequest{Amount: amount, Description: description}
	return c.act(ctx, func(ctx context.Context, api API) error {
		_, err := api.AddLoan(ctx, workerID, req)
		return err
	})
}

// CalculatePay runs payroll for the worker. The details are refetched only
// after the backend has confirmed the deduction ledger write. The result is
// also kept as the view's LastPay, which is how a retried run reports it.
func (c *Controller) CalculatePay(ctx context.Context, deduction any, from, to string) (models.PayResult, error) {
	wv, err := c.loadedWorker()
	if err != nil {
		return models.PayResult{}, err
	}
	if from != "" || to != "" {
		if _, err := payroll.ResolvePeriod(from, to, c.now(), 1); err != nil {
			return models.PayResult{}, validationError(err)
		}
	}

	workerID := wv.Details.Worker.ID
	req := models.PayrollRequest{Deduction: payroll.ParseDeduction(deduction), From: from, To: to}

	var result models.PayResult
	err = c.act(ctx, func(ctx context.Context, api API) error {
		resp, err := api.RunPayroll(ctx, workerID, req)
		if err != nil {
			return err
		}
		result = resp.PayResult

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.view.Page == PageWorkerDetails && c.view.WorkerID == workerID {
			pay := resp.PayResult
			c.view.LastPay = &pay
		}
		return nil
	})
	return result, err
}
