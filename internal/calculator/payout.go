package calculator

import "github.com/shopspring/decimal"

// CyclePayout computes the amount paid to a cycle's recipient: the sum of the
// paid contribution amounts with the service fee deducted, floored to a whole
// unit. Sub-unit remainders stay with the service, not the recipient.
// Returns zero when there are no paid contributions.
func CyclePayout(paidAmounts []decimal.Decimal, serviceFeePercentage int) decimal.Decimal {
	total := decimal.Zero
	for _, a := range paidAmounts {
		total = total.Add(a)
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return total.
		Mul(decimal.NewFromInt(int64(100 - serviceFeePercentage))).
		Div(decimal.NewFromInt(100)).
		Floor()
}
