package models

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session identifier issued at login.
type LoginResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

// CreateYieldRequest is the body of POST /api/yields.
type CreateYieldRequest struct {
	Name     string   `json:"name" binding:"required"`
	Quantity float64  `json:"quantity" binding:"required,gt=0"`
	Unit     CropUnit `json:"unit" binding:"required,oneof=kg tons count"`
}

// CreateSaleRequest is the body of POST /api/sales.
type CreateSaleRequest struct {
	CropID   string  `json:"cropId" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Seller   string  `json:"seller" binding:"required"`
}

// CreateWorkerRequest is the body of POST /api/workers.
type CreateWorkerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Role    string  `json:"role" binding:"required"`
	PayRate float64 `json:"payRate" binding:"required,gt=0"`
	PayType PayType `json:"payType" binding:"required,oneof=Daily Hourly"`
}

// AttendanceRequest is the body of POST /api/workers/{id}/attendance.
type AttendanceRequest struct {
	Date   string           `json:"date" binding:"required,datetime=2006-01-02"`
	Status AttendanceStatus `json:"status" binding:"omitempty,oneof=Present Absent"`
	Hours  float64          `json:"hours" binding:"gte=0"`
}

// LoanRequest is the body of POST /api/workers/{id}/loan.
type LoanRequest struct {
	Amount      *float64 `json:"amount" binding:"required"`
	Description string   `json:"description" binding:"required"`
}

// PayrollRequest is the body of POST /api/workers/{id}/payroll. Deduction
// accepts a number or a numeric string; anything else counts as zero. From
// and To optionally bound the pay period (inclusive ISO days).
type PayrollRequest struct {
	Deduction any    `json:"deduction"`
	From      string `json:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `json:"to" binding:"omitempty,datetime=2006-01-02"`
}

// PayrollResponse is the body returned by a payroll run.
type PayrollResponse struct {
	Message string `json:"message"`
	PayResult
}

// TransactionRequest is the body of POST /api/financials/{revenue,expense}.
type TransactionRequest struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	CropName    *string `json:"cropName"`
}

// CreateInventoryRequest is the body of POST /api/inventory.
type CreateInventoryRequest struct {
	Name     string  `json:"name" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit" binding:"required"`
}
