package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	amount := 2000.0

	tests := []struct {
		name    string
		value   any
		wantErr string
	}{
		{name: "valid yield", value: CreateYieldRequest{Name: "Maize", Quantity: 120, Unit: UnitKg}},
		{name: "yield bad unit", value: CreateYieldRequest{Name: "Maize", Quantity: 120, Unit: "bags"}, wantErr: "Unit failed on oneof"},
		{name: "yield zero quantity", value: CreateYieldRequest{Name: "Maize", Unit: UnitKg}, wantErr: "Quantity failed on required"},
		{name: "valid loan", value: LoanRequest{Amount: &amount, Description: "seed money"}},
		{name: "loan missing amount", value: LoanRequest{Description: "seed money"}, wantErr: "Amount failed on required"},
		{name: "loan missing description", value: LoanRequest{Amount: &amount}, wantErr: "Description failed on required"},
		{name: "attendance bad date", value: AttendanceRequest{Date: "12/03/2026"}, wantErr: "Date failed on datetime"},
		{name: "attendance negative hours", value: AttendanceRequest{Date: "2026-03-12", Hours: -1}, wantErr: "Hours failed on gte"},
		{name: "worker bad pay type", value: CreateWorkerRequest{Name: "Ali", Role: "Picker", PayRate: 10, PayType: "Weekly"}, wantErr: "PayType failed on oneof"},
		{name: "register bad email", value: RegisterRequest{Email: "nope", Password: "secret1", Name: "A"}, wantErr: "Email failed on email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.value)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, UnitTons.IsValid())
	assert.False(t, CropUnit("bushel").IsValid())
	assert.True(t, PayTypeHourly.IsValid())
	assert.False(t, PayType("").IsValid())
	assert.True(t, TransactionExpense.IsValid())
	assert.False(t, TransactionType("Transfer").IsValid())
}

func TestFinancialTransaction_CropLabel(t *testing.T) {
	crop := "Maize"
	assert.Equal(t, "Maize", FinancialTransaction{Crop: &crop}.CropLabel())
	assert.Equal(t, "", FinancialTransaction{}.CropLabel())
}
