package payroll

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

func present(date string, hours float64) models.AttendanceRecord {
	return models.AttendanceRecord{Date: date, Status: models.StatusPresent, Hours: hours}
}

func TestToggleDaily(t *testing.T) {
	first := ToggleDaily("2024-03-01", nil)
	assert.Equal(t, models.StatusPresent, first.Status)
	assert.Equal(t, float64(models.DefaultDailyHours), first.Hours)

	second := ToggleDaily("2024-03-01", &first)
	assert.Equal(t, models.StatusAbsent, second.Status)
	assert.Zero(t, second.Hours)

	third := ToggleDaily("2024-03-01", &second)
	assert.Equal(t, first, third)
}

func TestSetHours(t *testing.T) {
	rec, err := SetHours("2024-03-01", 4.5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, rec.Status)
	assert.Equal(t, 4.5, rec.Hours)

	rec, err = SetHours("2024-03-01", 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, rec.Status)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := SetHours("2024-03-01", bad)
		assert.ErrorIs(t, err, ErrInvalidHours)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		payType models.PayType
		in      models.AttendanceRecord
		want    models.AttendanceRecord
		wantErr error
	}{
		{
			name:    "daily present defaults to eight hours",
			payType: models.PayTypeDaily,
			in:      models.AttendanceRecord{Date: "2024-03-01", Status: models.StatusPresent},
			want:    present("2024-03-01", 8),
		},
		{
			name:    "daily absent clears hours",
			payType: models.PayTypeDaily,
			in:      models.AttendanceRecord{Date: "2024-03-01", Status: models.StatusAbsent, Hours: 6},
			want:    models.AttendanceRecord{Date: "2024-03-01", Status: models.StatusAbsent},
		},
		{
			name:    "daily without status follows hours",
			payType: models.PayTypeDaily,
			in:      models.AttendanceRecord{Date: "2024-03-01", Hours: 5},
			want:    present("2024-03-01", 5),
		},
		{
			name:    "hourly status is derived from hours",
			payType: models.PayTypeHourly,
			in:      models.AttendanceRecord{Date: "2024-03-01", Status: models.StatusPresent, Hours: 0},
			want:    models.AttendanceRecord{Date: "2024-03-01", Status: models.StatusAbsent},
		},
		{
			name:    "hourly keeps owner and worker",
			payType: models.PayTypeHourly,
			in:      models.AttendanceRecord{OwnerID: "o", WorkerID: "w", Date: "2024-03-01", Status: models.StatusAbsent, Hours: 3},
			want:    models.AttendanceRecord{OwnerID: "o", WorkerID: "w", Date: "2024-03-01", Status: models.StatusPresent, Hours: 3},
		},
		{
			name:    "hourly negative hours",
			payType: models.PayTypeHourly,
			in:      models.AttendanceRecord{Date: "2024-03-01", Hours: -2},
			wantErr: ErrInvalidHours,
		},
		{
			name:    "unknown pay type",
			payType: "Weekly",
			in:      models.AttendanceRecord{Date: "2024-03-01"},
			wantErr: ErrInvalidPayType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.payType, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_BadDate(t *testing.T) {
	_, err := Normalize(models.PayTypeDaily, models.AttendanceRecord{Date: "03/01/2024"})
	assert.Error(t, err)
}

func TestHourlyStatusInvariant(t *testing.T) {
	for _, hours := range []float64{0, 0.25, 1, 8, 12} {
		rec, err := Normalize(models.PayTypeHourly, models.AttendanceRecord{Date: "2024-03-01", Status: models.StatusAbsent, Hours: hours})
		require.NoError(t, err)
		assert.Equal(t, hours > 0, rec.Status == models.StatusPresent, "hours=%v", hours)
	}
}

func TestCalculate_Daily(t *testing.T) {
	worker := models.Worker{PayType: models.PayTypeDaily, PayRate: 500}
	attendance := models.AttendanceMap{}
	for d := 1; d <= 20; d++ {
		date := fmt.Sprintf("2024-03-%02d", d)
		attendance[date] = present(date, 8)
	}
	attendance["2024-03-21"] = models.AttendanceRecord{Date: "2024-03-21", Status: models.StatusAbsent}

	result, err := Calculate(worker, attendance, Period{From: "2024-03-01", To: "2024-03-31"}, 300)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, result.TotalPay)
	assert.Equal(t, 300.0, result.Deduction)
	assert.Equal(t, 9700.0, result.NetPay)
}

func TestCalculate_Hourly(t *testing.T) {
	worker := models.Worker{PayType: models.PayTypeHourly, PayRate: 50}
	attendance := models.AttendanceMap{
		"2024-03-01": present("2024-03-01", 8),
		"2024-03-02": present("2024-03-02", 8),
		"2024-03-03": present("2024-03-03", 4),
	}

	result, err := Calculate(worker, attendance, Period{From: "2024-03-01", To: "2024-03-07"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, result.TotalPay)
	assert.Equal(t, 1000.0, result.NetPay)
}

func TestCalculate_PeriodExcludesOutsideDays(t *testing.T) {
	worker := models.Worker{PayType: models.PayTypeDaily, PayRate: 100}
	attendance := models.AttendanceMap{
		"2024-02-29": present("2024-02-29", 8),
		"2024-03-01": present("2024-03-01", 8),
		"2024-03-08": present("2024-03-08", 8),
	}

	result, err := Calculate(worker, attendance, Period{From: "2024-03-01", To: "2024-03-07"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.TotalPay)
}

func TestCalculate_DeductionMayExceedPay(t *testing.T) {
	worker := models.Worker{PayType: models.PayTypeDaily, PayRate: 100}
	result, err := Calculate(worker, models.AttendanceMap{}, Period{From: "2024-03-01", To: "2024-03-07"}, 250)
	require.NoError(t, err)
	assert.Zero(t, result.TotalPay)
	assert.Equal(t, -250.0, result.NetPay)
}

func TestCalculate_NetEqualsGrossMinusDeduction(t *testing.T) {
	worker := models.Worker{PayType: models.PayTypeHourly, PayRate: 12.5}
	attendance := models.AttendanceMap{"2024-03-02": present("2024-03-02", 7.5)}
	for _, deduction := range []float64{0, 0.1, 33.3, 93.75} {
		result, err := Calculate(worker, attendance, Period{From: "2024-03-01", To: "2024-03-07"}, deduction)
		require.NoError(t, err)
		assert.InDelta(t, result.TotalPay-result.Deduction, result.NetPay, 1e-9)
	}
}

func TestParseDeduction(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{in: nil, want: 0},
		{in: "", want: 0},
		{in: "abc", want: 0},
		{in: " 300 ", want: 300},
		{in: "12.5", want: 12.5},
		{in: 42.0, want: 42},
		{in: 7, want: 7},
		{in: -5.0, want: 0},
		{in: "-5", want: 0},
		{in: math.NaN(), want: 0},
		{in: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDeduction(tt.in))
		})
	}
}

func TestValidateLoan(t *testing.T) {
	amount := func(v float64) *float64 { return &v }

	assert.NoError(t, ValidateLoan(amount(2000), "School fees"))
	assert.ErrorIs(t, ValidateLoan(nil, "School fees"), ErrInvalidLoan)
	assert.ErrorIs(t, ValidateLoan(amount(0), "School fees"), ErrInvalidLoan)
	assert.ErrorIs(t, ValidateLoan(amount(-10), "School fees"), ErrInvalidLoan)
	assert.ErrorIs(t, ValidateLoan(amount(100), ""), ErrInvalidLoan)
	assert.ErrorIs(t, ValidateLoan(amount(100), "   "), ErrInvalidLoan)
}

func TestLedgerBalance(t *testing.T) {
	entries := []models.LoanLedgerEntry{
		{Kind: models.LedgerKindLoan, Amount: 2000},
		{Kind: models.LedgerKindDeduction, Amount: -300},
	}
	assert.Equal(t, 1700.0, LedgerBalance(entries))
	assert.Zero(t, LedgerBalance(nil))

	// 0.1 + 0.2 must not drift.
	assert.Equal(t, 0.3, LedgerBalance([]models.LoanLedgerEntry{{Amount: 0.1}, {Amount: 0.2}}))
}

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod("", "", now, 7)
	require.NoError(t, err)
	assert.Equal(t, Period{From: "2024-03-03", To: "2024-03-10"}, p)

	p, err = ResolvePeriod("2024-03-01", "2024-03-31", now, 7)
	require.NoError(t, err)
	assert.Equal(t, Period{From: "2024-03-01", To: "2024-03-31"}, p)

	p, err = ResolvePeriod("", "2024-02-29", now, 7)
	require.NoError(t, err)
	assert.Equal(t, Period{From: "2024-02-22", To: "2024-02-29"}, p)

	_, err = ResolvePeriod("2024-03-20", "2024-03-01", now, 7)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = ResolvePeriod("yesterday", "", now, 7)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestTrailingPeriod_IncludesBoundaryDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)

	p := TrailingPeriod(now, 7)
	assert.Equal(t, Period{From: "2024-03-03", To: "2024-03-10"}, p)
	assert.True(t, p.Contains("2024-03-03"))
	assert.False(t, p.Contains("2024-03-02"))

	assert.Equal(t, Period{From: "2024-03-10", To: "2024-03-10"}, TrailingPeriod(now, 0))
}

func TestPeriodContains(t *testing.T) {
	p := Period{From: "2024-03-01", To: "2024-03-07"}
	assert.True(t, p.Contains("2024-03-01"))
	assert.True(t, p.Contains("2024-03-07"))
	assert.False(t, p.Contains("2024-02-29"))
	assert.False(t, p.Contains("2024-03-08"))
}
