package models

import "time"

// TransactionType classifies a financial transaction.
type TransactionType string

const (
	TransactionRevenue TransactionType = "Revenue"
	TransactionExpense TransactionType = "Expense"
)

// IsValid reports whether the transaction type is supported.
func (t TransactionType) IsValid() bool {
	return t == TransactionRevenue || t == TransactionExpense
}

// FinancialTransaction is an append-only revenue or expense booking. Crop is
// set when the transaction relates to a specific crop.
type FinancialTransaction struct {
	ID          string          `bson:"_id" json:"id"`
	OwnerID     string          `bson:"owner_id" json:"-"`
	Date        time.Time       `bson:"date" json:"date"`
	Type        TransactionType `bson:"type" json:"type"`
	Description string          `bson:"description" json:"description"`
	Amount      float64         `bson:"amount" json:"amount"`
	Crop        *string         `bson:"crop,omitempty" json:"crop"`
}

// CropLabel returns the crop name or an empty string.
func (t FinancialTransaction) CropLabel() string {
	if t.Crop == nil {
		return ""
	}
	return *t.Crop
}
