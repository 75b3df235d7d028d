package models

import "time"

// PayType determines how gross pay is derived from attendance.
type PayType string

const (
	PayTypeDaily  PayType = "Daily"
	PayTypeHourly PayType = "Hourly"
)

// IsValid reports whether the pay type is supported.
func (p PayType) IsValid() bool {
	return p == PayTypeDaily || p == PayTypeHourly
}

// AttendanceStatus is the presence flag of an attendance day.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

// DefaultDailyHours is the number of hours credited to a daily worker for a
// present day.
const DefaultDailyHours = 8

// Worker is a farm hand on the payroll. Loans is a read projection of the
// worker's loan ledger and is never persisted.
type Worker struct {
	ID      string  `bson:"_id" json:"id"`
	OwnerID string  `bson:"owner_id" json:"-"`
	Name    string  `bson:"name" json:"name"`
	Role    string  `bson:"role" json:"role"`
	PayType PayType `bson:"pay_type" json:"payType"`
	PayRate float64 `bson:"pay_rate" json:"payRate"`
	Active  bool    `bson:"active" json:"active"`
	Loans   float64 `bson:"-" json:"loans"`
}

// AttendanceRecord is the attendance of one worker on one calendar day.
// Date is an ISO day key (YYYY-MM-DD).
type AttendanceRecord struct {
	OwnerID  string           `bson:"owner_id" json:"-"`
	WorkerID string           `bson:"worker_id" json:"-"`
	Date     string           `bson:"date" json:"date"`
	Status   AttendanceStatus `bson:"status" json:"status"`
	Hours    float64          `bson:"hours" json:"hours"`
}

// AttendanceMap indexes attendance records by ISO day key.
type AttendanceMap map[string]AttendanceRecord

// LedgerKind distinguishes loans issued from repayments.
type LedgerKind string

const (
	LedgerKindLoan      LedgerKind = "loan"
	LedgerKindDeduction LedgerKind = "deduction"
)

// LoanLedgerEntry is one append-only movement of a worker's loan balance.
// Loans are positive, deductions negative.
type LoanLedgerEntry struct {
	ID          string     `bson:"_id" json:"id"`
	OwnerID     string     `bson:"owner_id" json:"-"`
	WorkerID    string     `bson:"worker_id" json:"workerId"`
	Date        time.Time  `bson:"date" json:"date"`
	Kind        LedgerKind `bson:"kind" json:"kind"`
	Description string     `bson:"description" json:"description"`
	Amount      float64    `bson:"amount" json:"amount"`
}

// WorkerDetails bundles everything the worker details page shows.
type WorkerDetails struct {
	Worker     Worker            `json:"worker"`
	Attendance AttendanceMap     `json:"attendance"`
	Loans      []LoanLedgerEntry `json:"loans"`
}

// PayResult is the outcome of a payroll run.
type PayResult struct {
	TotalPay  float64 `json:"totalPay"`
	Deduction float64 `json:"deduction"`
	NetPay    float64 `json:"netPay"`
}
