package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// paymentDerivation is the result of the per-record derivation rule.
// It is a pure function of (totalAmount, amountPaid, dueDate, now) and
// runs on every save of a Sale or Purchase through their BeforeSave
// hooks, never as a background job.
type paymentDerivation struct {
	AmountDue     decimal.Decimal
	PaymentStatus PaymentStatus
	IsOverdue     bool
}

// computePaymentDerivations derives amountDue, paymentStatus and
// isOverdue. amountDue is deliberately not clamped at zero: an overpaid
// record carries a negative due amount (see OverpaidAmount on the
// counterparty aggregates).
func computePaymentDerivations(totalAmount, amountPaid decimal.Decimal, dueDate *time.Time, now time.Time) paymentDerivation {
	d := paymentDerivation{
		AmountDue: totalAmount.Sub(amountPaid),
	}

	switch {
	case amountPaid.IsZero():
		d.PaymentStatus = PaymentStatusPending
	case amountPaid.GreaterThanOrEqual(totalAmount):
		d.PaymentStatus = PaymentStatusPaid
	default:
		d.PaymentStatus = PaymentStatusPartial
	}

	if dueDate != nil && d.AmountDue.IsPositive() && now.After(*dueDate) {
		d.IsOverdue = true
	}
	return d
}

// isOverdueAt re-evaluates the overdue flag against wall-clock time.
// The stored flag is only refreshed at save time and can go stale, so
// read paths that care about currency (dashboard, aggregation pass)
// call this instead of trusting the column.
func isOverdueAt(dueDate *time.Time, amountDue decimal.Decimal, now time.Time) bool {
	return dueDate != nil && amountDue.IsPositive() && now.After(*dueDate)
}

// IsOverdueAt is the read-side entry point for the overdue evaluation.
func IsOverdueAt(dueDate *time.Time, amountDue decimal.Decimal, now time.Time) bool {
	return isOverdueAt(dueDate, amountDue, now)
}

// creditStatusFor classifies a client's credit usage. A zero limit
// means unlimited credit and always classifies as Good. Blocked is a
// manual state and never produced here.
func creditStatusFor(currentCredit, creditLimit decimal.Decimal) CreditStatus {
	if creditLimit.IsZero() || creditLimit.IsNegative() {
		return CreditStatusGood
	}
	ratio := currentCredit.Div(creditLimit)
	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return CreditStatusExceeded
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.8)):
		return CreditStatusWarning
	default:
		return CreditStatusGood
	}
}

func calculateDueDate(date time.Time, paymentTerms PaymentTerms, customDays int) *time.Time {
	var dueDate time.Time
	switch terms := paymentTerms; terms {
	case PaymentTermsDueOnReceipt:
		dueDate = date
	case PaymentTermsNet15:
		dueDate = date.AddDate(0, 0, 15)
	case PaymentTermsNet30:
		dueDate = date.AddDate(0, 0, 30)
	case PaymentTermsNet45:
		dueDate = date.AddDate(0, 0, 45)
	case PaymentTermsNet60:
		dueDate = date.AddDate(0, 0, 60)
	case PaymentTermsCustom:
		dueDate = date.AddDate(0, 0, customDays)
	default:
		dueDate = date
	}
	return &dueDate
}
