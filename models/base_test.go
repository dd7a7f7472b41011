package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestComputePaymentDerivations(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name        string
		totalAmount string
		amountPaid  string
		dueDate     *time.Time
		wantDue     string
		wantStatus  PaymentStatus
		wantOverdue bool
	}{
		{"nothing paid", "5000", "0", nil, "5000", PaymentStatusPending, false},
		{"partially paid", "5000", "2000", nil, "3000", PaymentStatusPartial, false},
		{"fully paid", "5000", "5000", nil, "0", PaymentStatusPaid, false},
		{"overpaid still paid", "5000", "6000", nil, "-1000", PaymentStatusPaid, false},
		{"zero total zero paid", "0", "0", nil, "0", PaymentStatusPending, false},
		{"due date passed unpaid", "1000", "0", &past, "1000", PaymentStatusPending, true},
		{"due date passed but settled", "1000", "1000", &past, "0", PaymentStatusPaid, false},
		{"due date in future", "1000", "0", &future, "1000", PaymentStatusPending, false},
		{"partial and overdue", "1000", "400", &past, "600", PaymentStatusPartial, true},
		{"fractional amounts", "100.50", "100.25", nil, "0.25", PaymentStatusPartial, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := computePaymentDerivations(dec(tc.totalAmount), dec(tc.amountPaid), tc.dueDate, now)
			assert.True(t, dec(tc.wantDue).Equal(d.AmountDue), "amount due: want %s got %s", tc.wantDue, d.AmountDue)
			assert.Equal(t, tc.wantStatus, d.PaymentStatus)
			assert.Equal(t, tc.wantOverdue, d.IsOverdue)
		})
	}
}

func TestIsOverdueAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, isOverdueAt(nil, dec("100"), now), "no due date")
	assert.False(t, isOverdueAt(&past, dec("0"), now), "nothing outstanding")
	assert.False(t, isOverdueAt(&past, dec("-50"), now), "overpaid")
	assert.False(t, isOverdueAt(&future, dec("100"), now), "not due yet")
	assert.True(t, isOverdueAt(&past, dec("100"), now), "due date passed with balance")
}

func TestCreditStatusFor(t *testing.T) {
	tests := []struct {
		name          string
		currentCredit string
		creditLimit   string
		want          CreditStatus
	}{
		{"zero limit is unlimited", "999999", "0", CreditStatusGood},
		{"well under limit", "100", "1000", CreditStatusGood},
		{"just below warning", "799", "1000", CreditStatusGood},
		{"at warning threshold", "800", "1000", CreditStatusWarning},
		{"above warning", "950", "1000", CreditStatusWarning},
		{"at limit", "1000", "1000", CreditStatusExceeded},
		{"over limit", "1200", "1000", CreditStatusExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := creditStatusFor(dec(tc.currentCredit), dec(tc.creditLimit))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanExtendCredit(t *testing.T) {
	t.Run("zero limit always allows", func(t *testing.T) {
		c := &Client{CreditLimit: dec("0"), CurrentCredit: dec("123456")}
		decision := c.CanExtendCredit(dec("999999"))
		assert.True(t, decision.Allowed)
	})

	t.Run("within limit allows", func(t *testing.T) {
		c := &Client{CreditLimit: dec("1000"), CurrentCredit: dec("500")}
		decision := c.CanExtendCredit(dec("500"))
		assert.True(t, decision.Allowed)
	})

	t.Run("reports available on rejection", func(t *testing.T) {
		c := &Client{CreditLimit: dec("1000"), CurrentCredit: dec("800")}
		decision := c.CanExtendCredit(dec("300"))
		assert.False(t, decision.Allowed)
		if assert.NotNil(t, decision.Available) {
			assert.True(t, dec("200").Equal(*decision.Available), "available: want 200 got %s", decision.Available)
		}
	})

	t.Run("blocked client always rejects", func(t *testing.T) {
		c := &Client{CreditLimit: dec("0"), CreditStatus: CreditStatusBlocked}
		decision := c.CanExtendCredit(dec("1"))
		assert.False(t, decision.Allowed)
	})
}

func TestCalculateDueDate(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		terms      PaymentTerms
		customDays int
		wantDays   int
	}{
		{PaymentTermsDueOnReceipt, 0, 0},
		{PaymentTermsNet15, 0, 15},
		{PaymentTermsNet30, 0, 30},
		{PaymentTermsNet45, 0, 45},
		{PaymentTermsNet60, 0, 60},
		{PaymentTermsCustom, 7, 7},
	}

	for _, tc := range tests {
		t.Run(string(tc.terms), func(t *testing.T) {
			got := calculateDueDate(base, tc.terms, tc.customDays)
			if assert.NotNil(t, got) {
				assert.Equal(t, base.AddDate(0, 0, tc.wantDays), *got)
			}
		})
	}
}
