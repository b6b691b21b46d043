// Package finance contains production orders, payment-schedule invoices and
// the installment math that keeps invoice totals conserved.
package finance

import (
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultDueDay is the day-of-month installments fall due on when the
// payment plan does not specify one.
const DefaultDueDay = 10

// lumpSumTerm is how long after issuance a single-installment order is due.
const lumpSumTerm = 30 * 24 * time.Hour

// Installment is one entry of a payment schedule
type Installment struct {
	Number  int
	Value   valueobject.Money
	DueDate time.Time
}

// BuildSchedule computes the payment schedule for an order total.
//
// A lump-sum plan (or one without an explicit installment count) yields a
// single installment for the full total due 30 days after issuance. An
// N-installment plan yields N equal parts due on dueDay of each of the next
// N months, starting the month after issuance; the remainder cents left by
// the equal split land on the first installment, so the schedule always sums
// to the total exactly.
func BuildSchedule(total valueobject.Money, installments, dueDay int, issuedAt time.Time) ([]Installment, error) {
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	}

	total = total.Round(2)

	if installments <= 1 {
		return []Installment{{
			Number:  1,
			Value:   total,
			DueDate: issuedAt.Add(lumpSumTerm),
		}}, nil
	}

	if dueDay < 1 || dueDay > 28 {
		dueDay = DefaultDueDay
	}

	n := decimal.NewFromInt(int64(installments))
	part, err := total.Divide(n)
	if err != nil {
		return nil, err
	}
	part = part.Truncate(2)

	// Remainder cents go on the first installment.
	remainder := total.MustSubtract(part.MultiplyByInt(int64(installments)))
	first := part.MustAdd(remainder)

	schedule := make([]Installment, 0, installments)
	for i := 1; i <= installments; i++ {
		value := part
		if i == 1 {
			value = first
		}
		schedule = append(schedule, Installment{
			Number:  i,
			Value:   value,
			DueDate: installmentDueDate(issuedAt, i, dueDay),
		})
	}
	return schedule, nil
}

// installmentDueDate places installment i on dueDay of the i-th month after
// issuance. The first installment is always in the month after issuance,
// regardless of the day the budget was approved.
func installmentDueDate(issuedAt time.Time, i, dueDay int) time.Time {
	year, month, _ := issuedAt.Date()
	return time.Date(year, month+time.Month(i), dueDay, 0, 0, 0, 0, issuedAt.Location())
}

// ScheduleTotal sums the installment values
func ScheduleTotal(schedule []Installment) valueobject.Money {
	total := valueobject.ZeroBRL()
	for _, inst := range schedule {
		total = total.MustAdd(inst.Value)
	}
	return total
}
