// Package payroll holds the attendance and pay arithmetic shared by the API
// and the dashboard client. Everything here is pure: no storage, no clock.
package payroll

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// DayLayout is the ISO day key format used for attendance.
const DayLayout = "2006-01-02"

var (
	// ErrInvalidHours indicates a negative or non-finite hours value.
	ErrInvalidHours = errors.New("hours must be a non-negative number")
	// ErrInvalidLoan indicates a loan without a positive amount or a description.
	ErrInvalidLoan = errors.New("loan requires a positive amount and a description")
	// ErrInvalidPeriod indicates an unparseable or inverted pay period.
	ErrInvalidPeriod = errors.New("invalid pay period")
	// ErrInvalidPayType indicates a worker with an unknown pay type.
	ErrInvalidPayType = errors.New("unsupported pay type")
)

// ToggleDaily flips a daily worker's day between Present and Absent. A day
// without a record becomes Present.
func ToggleDaily(date string, current *models.AttendanceRecord) models.AttendanceRecord {
	if current != nil && current.Status == models.StatusPresent {
		return models.AttendanceRecord{Date: date, Status: models.StatusAbsent, Hours: 0}
	}
	return models.AttendanceRecord{Date: date, Status: models.StatusPresent, Hours: models.DefaultDailyHours}
}

// SetHours records the hours of an hourly worker. The status follows the
// hours: Present iff hours > 0.
func SetHours(date string, hours float64) (models.AttendanceRecord, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return models.AttendanceRecord{}, ErrInvalidHours
	}
	return models.AttendanceRecord{Date: date, Status: statusFromHours(hours), Hours: hours}, nil
}

// Normalize makes a submitted attendance record consistent with the worker's
// pay type.
func Normalize(payType models.PayType, rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	if _, err := time.Parse(DayLayout, rec.Date); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("attendance date %q: %w", rec.Date, err)
	}

	switch payType {
	case models.PayTypeHourly:
		out, err := SetHours(rec.Date, rec.Hours)
		if err != nil {
			return models.AttendanceRecord{}, err
		}
		out.OwnerID, out.WorkerID = rec.OwnerID, rec.WorkerID
		return out, nil
	case models.PayTypeDaily:
		if math.IsNaN(rec.Hours) || math.IsInf(rec.Hours, 0) || rec.Hours < 0 {
			return models.AttendanceRecord{}, ErrInvalidHours
		}
		status := rec.Status
		if status == "" {
			status = statusFromHours(rec.Hours)
		}
		out := rec
		out.Status = status
		switch status {
		case models.StatusPresent:
			if out.Hours == 0 {
				out.Hours = models.DefaultDailyHours
			}
		case models.StatusAbsent:
			out.Hours = 0
		default:
			return models.AttendanceRecord{}, fmt.Errorf("unknown attendance status %q", status)
		}
		return out, nil
	default:
		return models.AttendanceRecord{}, ErrInvalidPayType
	}
}

func statusFromHours(hours float64) models.AttendanceStatus {
	if hours > 0 {
		return models.StatusPresent
	}
	return models.StatusAbsent
}

// Period is an inclusive range of ISO days.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Contains reports whether the ISO day falls inside the period. ISO day keys
// order lexicographically, so no parsing is needed.
func (p Period) Contains(day string) bool {
	return day >= p.From && day <= p.To
}

// TrailingPeriod returns the period from days before now through now's
// calendar day. Both ends are inclusive, so days=7 spans eight days.
func TrailingPeriod(now time.Time, days int) Period {
	if days < 0 {
		days = 0
	}
	return Period{
		From: now.AddDate(0, 0, -days).Format(DayLayout),
		To:   now.Format(DayLayout),
	}
}

// ResolvePeriod builds a period from optional bounds. Missing bounds fall back
// to the trailing default period.
func ResolvePeriod(from, to string, now time.Time, defaultDays int) (Period, error) {
	period := TrailingPeriod(now, defaultDays)
	if to != "" {
		end, err := time.Parse(DayLayout, to)
		if err != nil {
			return Period{}, fmt.Errorf("%w: to %q", ErrInvalidPeriod, to)
		}
		period = TrailingPeriod(end, defaultDays)
	}
	if from != "" {
		if _, err := time.Parse(DayLayout, from); err != nil {
			return Period{}, fmt.Errorf("%w: from %q", ErrInvalidPeriod, from)
		}
		period.From = from
	}
	if period.From > period.To {
		return Period{}, fmt.Errorf("%w: %s is after %s", ErrInvalidPeriod, period.From, period.To)
	}
	return period, nil
}

// GrossPay computes the pay earned inside the period: rate × present days for
// daily workers, rate × hours on present days for hourly workers.
func GrossPay(worker models.Worker, attendance models.AttendanceMap, period Period) (float64, error) {
	rate := decimal.NewFromFloat(worker.PayRate)

	switch worker.PayType {
	case models.PayTypeDaily:
		days := 0
		for day, rec := range attendance {
			if period.Contains(day) && rec.Status == models.StatusPresent {
				days++
			}
		}
		return rate.Mul(decimal.NewFromInt(int64(days))).InexactFloat64(), nil
	case models.PayTypeHourly:
		hours := decimal.Zero
		for day, rec := range attendance {
			if period.Contains(day) && rec.Status == models.StatusPresent {
				hours = hours.Add(decimal.NewFromFloat(rec.Hours))
			}
		}
		return rate.Mul(hours).InexactFloat64(), nil
	default:
		return 0, ErrInvalidPayType
	}
}

// Calculate returns the gross pay, the deduction and the resulting net pay.
func Calculate(worker models.Worker, attendance models.AttendanceMap, period Period, deduction float64) (models.PayResult, error) {
	gross, err := GrossPay(worker, attendance, period)
	if err != nil {
		return models.PayResult{}, err
	}
	if math.IsNaN(deduction) || math.IsInf(deduction, 0) || deduction < 0 {
		deduction = 0
	}

	net := decimal.NewFromFloat(gross).Sub(decimal.NewFromFloat(deduction))
	return models.PayResult{
		TotalPay:  gross,
		Deduction: deduction,
		NetPay:    net.InexactFloat64(),
	}, nil
}

// ParseDeduction reads a deduction from loosely typed input. Anything that is
// not a finite non-negative number counts as zero.
func ParseDeduction(raw any) float64 {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		value = parsed
	default:
		return 0
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// ValidateLoan checks a loan before anything is written.
func ValidateLoan(amount *float64, description string) error {
	if amount == nil {
		return fmt.Errorf("%w: amount is required", ErrInvalidLoan)
	}
	if math.IsNaN(*amount) || math.IsInf(*amount, 0) || *amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidLoan)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidLoan)
	}
	return nil
}

// LedgerBalance is the running sum of a worker's loan ledger.
func LedgerBalance(entries []models.LoanLedgerEntry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total.InexactFloat64()
}
