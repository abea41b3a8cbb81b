package finance

import (
	"github.com/shopspring/decimal"
)

// TotalInput components of a ticket total
type TotalInput struct {
	TicketValue        decimal.Decimal
	DistanceTotal      decimal.Decimal
	DistanceRate       decimal.Decimal
	ExtraExpenses      decimal.Decimal
	ExtraHours         decimal.Decimal
	AdditionalHourRate decimal.Decimal
}

var secondsPerHour = decimal.NewFromInt(3600)

// ComputeTotal ticketValue + distanceTotal*distanceRate + extraExpenses + extraHours*additionalHourRate,
// rounded to cents and never negative
func ComputeTotal(in TotalInput) decimal.Decimal {
	total := in.TicketValue.
		Add(in.DistanceTotal.Mul(in.DistanceRate)).
		Add(in.ExtraExpenses).
		Add(in.ExtraHours.Mul(in.AdditionalHourRate))

	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

// ExtraHours hours worked beyond the included duration, rounded to two places
func ExtraHours(elapsedSeconds int64, includedHours decimal.Decimal) decimal.Decimal {
	worked := decimal.NewFromInt(elapsedSeconds).Div(secondsPerHour)
	extra := worked.Sub(includedHours)
	if !extra.IsPositive() {
		return decimal.Zero
	}
	return extra.Round(2)
}

// ResolveRate prefers a positive override, otherwise the stored rate
func ResolveRate(override *decimal.Decimal, stored decimal.Decimal) decimal.Decimal {
	if override != nil && override.IsPositive() {
		return *override
	}
	return stored
}
