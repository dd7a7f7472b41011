package models

import "errors"

// PaymentStatus classifies a transaction record by how much of it has
// been paid. Derived, never set directly by callers.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// unpaidStatuses are the statuses that contribute to outstanding balance.
var unpaidStatuses = []string{
	string(PaymentStatusPending),
	string(PaymentStatusPartial),
}

// UnpaidStatuses returns the payment statuses that still carry an
// outstanding balance, for read-side queries.
func UnpaidStatuses() []string {
	return unpaidStatuses
}

type PaymentType string

const (
	PaymentTypeCash   PaymentType = "Cash"
	PaymentTypeCredit PaymentType = "Credit"
)

func (t *PaymentType) Parse(s string) error {
	switch s {
	case string(PaymentTypeCash):
		*t = PaymentTypeCash
	case string(PaymentTypeCredit):
		*t = PaymentTypeCredit
	default:
		return errors.New("invalid payment type")
	}
	return nil
}

// TransactionKind distinguishes order-backed records from direct ones
// recorded without a preceding order document.
type TransactionKind string

const (
	TransactionKindOrder  TransactionKind = "Order"
	TransactionKindDirect TransactionKind = "Direct"
)

type CreditStatus string

const (
	CreditStatusGood     CreditStatus = "Good"
	CreditStatusWarning  CreditStatus = "Warning"
	CreditStatusExceeded CreditStatus = "Exceeded"
	CreditStatusBlocked  CreditStatus = "Blocked"
)

type PaymentTerms string

const (
	PaymentTermsDueOnReceipt PaymentTerms = "DueOnReceipt"
	PaymentTermsNet15        PaymentTerms = "Net15"
	PaymentTermsNet30        PaymentTerms = "Net30"
	PaymentTermsNet45        PaymentTerms = "Net45"
	PaymentTermsNet60        PaymentTerms = "Net60"
	PaymentTermsCustom       PaymentTerms = "Custom"
)
