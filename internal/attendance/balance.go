package attendance

import "github.com/shopspring/decimal"

// BankedLeave is the reconciliation of one employee's compensatory time
type BankedLeave struct {
	OldBalance             decimal.Decimal
	OvertimeTotal          decimal.Decimal
	RequestedCompLeave     decimal.Decimal
	RequestedPersonalLeave decimal.Decimal

	NewBalance        decimal.Decimal
	CompLeaveConsumed decimal.Decimal
	PersonalLeave     decimal.Decimal
}

// Deficit is the compensatory leave that could not be covered and was
// booked as personal leave instead
func (b BankedLeave) Deficit() decimal.Decimal {
	return b.PersonalLeave.Sub(b.RequestedPersonalLeave)
}

// ReconcileBankedLeave carries the balance forward. The balance never goes
// negative: comp leave beyond old balance plus overtime becomes personal
// leave one for one.
func ReconcileBankedLeave(oldBalance, overtime, compLeave, personalLeave decimal.Decimal) BankedLeave {
	b := BankedLeave{
		OldBalance:             oldBalance,
		OvertimeTotal:          overtime,
		RequestedCompLeave:     compLeave,
		RequestedPersonalLeave: personalLeave,
	}

	earned := oldBalance.Add(overtime)
	balance := earned.Sub(compLeave)
	if balance.IsNegative() {
		available := decimal.Max(decimal.Zero, earned)
		b.NewBalance = decimal.Zero
		b.CompLeaveConsumed = decimal.Min(compLeave, available)
		b.PersonalLeave = personalLeave.Add(balance.Neg())
		return b
	}

	b.NewBalance = balance
	b.CompLeaveConsumed = compLeave
	b.PersonalLeave = personalLeave
	return b
}
