package usecase

import "github.com/shopspring/decimal"

// ShippingPolicy は送料計算。小計が閾値を「超えた」ら無料。
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: decimal.NewFromInt(200),
		FlatFee:       decimal.NewFromInt(15),
	}
}

func (p ShippingPolicy) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}
