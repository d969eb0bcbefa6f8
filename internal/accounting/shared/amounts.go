package shared

import "math"

// BalanceEpsilon is the tolerance applied to debit/credit equality and
// to report materiality cut-offs, in currency units.
const BalanceEpsilon = 0.01

// Balanced reports whether total debit and credit agree within BalanceEpsilon.
func Balanced(debit, credit float64) bool {
	return math.Abs(debit-credit) <= BalanceEpsilon
}

// Material reports whether an amount is large enough to appear on a report.
func Material(amount float64) bool {
	return math.Abs(amount) >= BalanceEpsilon
}
