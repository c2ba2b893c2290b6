package sales

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDiscountPercentageFor(t *testing.T) {
	cases := []struct {
		quantity int
		want     int64
	}{
		{1, 0},
		{2, 0},
		{3, 0},
		{4, 10},
		{7, 10},
		{9, 10},
		{10, 20},
		{12, 20},
		{20, 20},
	}
	for _, tc := range cases {
		got := DiscountPercentageFor(tc.quantity)
		if !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("DiscountPercentageFor(%d) = %s, want %d", tc.quantity, got, tc.want)
		}
	}
}
