package payroll

import "github.com/shopspring/decimal"

type Totals struct {
	Earnings   decimal.Decimal
	Deductions decimal.Decimal
	Net        decimal.Decimal
}

// SumComponents adds BASIC, ALLOWANCE and BONUS amounts into earnings and
// DEDUCTION amounts into deductions.
func SumComponents(components []SalaryComponent) Totals {
	t := Totals{Earnings: decimal.Zero, Deductions: decimal.Zero}
	for _, c := range components {
		switch {
		case c.ComponentType.IsEarning():
			t.Earnings = t.Earnings.Add(c.Amount)
		case c.ComponentType.IsDeduction():
			t.Deductions = t.Deductions.Add(c.Amount)
		}
	}
	t.Net = t.Earnings.Sub(t.Deductions)
	return t
}
