package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCyclePayout(t *testing.T) {
	amounts := func(values ...string) []decimal.Decimal {
		out := make([]decimal.Decimal, len(values))
		for i, v := range values {
			out[i] = decimal.RequireFromString(v)
		}
		return out
	}

	tests := []struct {
		name string
		paid []decimal.Decimal
		fee  int
		want string
	}{
		{
			// 5 members x 1000, 10% fee: floor(5000 * 0.9) = 4500.
			name: "five members ten percent fee",
			paid: amounts("1000", "1000", "1000", "1000", "1000"),
			fee:  10,
			want: "4500",
		},
		{
			name: "no paid contributions",
			paid: nil,
			fee:  10,
			want: "0",
		},
		{
			name: "zero fee keeps the full pool",
			paid: amounts("500", "500"),
			fee:  0,
			want: "1000",
		},
		{
			name: "remainder stays with the service",
			paid: amounts("333", "333", "333"),
			fee:  10,
			want: "899", // 999 * 0.9 = 899.1
		},
		{
			name: "full fee pays nothing",
			paid: amounts("1000"),
			fee:  100,
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := decimal.RequireFromString(tt.want)
			got := CyclePayout(tt.paid, tt.fee)
			if !got.Equal(want) {
				t.Errorf("CyclePayout(fee=%d) = %s, want %s", tt.fee, got, want)
			}
		})
	}
}
