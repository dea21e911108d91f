package accounting

import (
	"github.com/mhgaber/dukan_pos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// moneyScale is the number of decimal places every derived monetary field is
// rounded to. Rounding happens once per derived field, never per line and
// re-summed, so repeated recomputation cannot drift.
const moneyScale = 2

var hundred = decimal.NewFromInt(100)

// SettlementPolicy carries the header-level discount and tax inputs of an
// invoice. Both the discount interpretation and the tax base are explicit
// runtime choices; neither has a hardcoded "correct" default.
type SettlementPolicy struct {
	HeaderDiscount     decimal.Decimal
	HeaderDiscountType domain.DiscountType
	TaxRate            decimal.Decimal
	TaxOnNetOfDiscount bool
}

// Settlement is the full set of derived invoice totals.
type Settlement struct {
	SubTotal        decimal.Decimal
	ItemsDiscount   decimal.Decimal
	HeaderDiscount  decimal.Decimal
	DiscountTotal   decimal.Decimal
	TaxBase         decimal.Decimal
	TaxAmount       decimal.Decimal
	NetTotal        decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	// Overpaid is how much the paid amount exceeds the net total. Remaining
	// is clamped at zero, so overpayment is reported here instead.
	Overpaid decimal.Decimal
}

// LineNetAmount computes a single line's net: quantity*unitPrice less the line
// discount, floored at zero.
func LineNetAmount(quantity, unitPrice, discount decimal.Decimal) decimal.Decimal {
	net := quantity.Mul(unitPrice).Sub(discount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net.Round(moneyScale)
}

// ComputeSettlement derives invoice totals from the lines and the header
// policy. Pure: no side effects, safe to call on every line edit.
func ComputeSettlement(lines []domain.InvoiceLine, policy SettlementPolicy, paidAmount decimal.Decimal) Settlement {
	subTotal := decimal.Zero
	itemsDiscount := decimal.Zero
	for _, line := range lines {
		subTotal = subTotal.Add(line.Quantity.Mul(line.UnitPrice))
		itemsDiscount = itemsDiscount.Add(line.DiscountAmount)
	}
	subTotal = subTotal.Round(moneyScale)

	headerDiscount := policy.HeaderDiscount
	if policy.HeaderDiscountType == domain.DiscountPercentage {
		headerDiscount = subTotal.Mul(policy.HeaderDiscount).Div(hundred)
	}

	discountTotal := itemsDiscount.Add(headerDiscount).Round(moneyScale)

	netOfDiscount := subTotal.Sub(discountTotal)
	if netOfDiscount.IsNegative() {
		netOfDiscount = decimal.Zero
	}

	taxBase := subTotal
	if policy.TaxOnNetOfDiscount {
		taxBase = netOfDiscount
	}
	taxBase = taxBase.Round(moneyScale)

	taxAmount := taxBase.Mul(policy.TaxRate).Div(hundred).Round(moneyScale)
	netTotal := netOfDiscount.Add(taxAmount).Round(moneyScale)

	remaining := netTotal.Sub(paidAmount)
	overpaid := decimal.Zero
	if remaining.IsNegative() {
		overpaid = remaining.Neg()
		remaining = decimal.Zero
	}

	return Settlement{
		SubTotal:        subTotal,
		ItemsDiscount:   itemsDiscount,
		HeaderDiscount:  headerDiscount,
		DiscountTotal:   discountTotal,
		TaxBase:         taxBase,
		TaxAmount:       taxAmount,
		NetTotal:        netTotal,
		PaidAmount:      paidAmount,
		RemainingAmount: remaining,
		Overpaid:        overpaid,
	}
}

// Apply copies the derived totals onto an invoice header.
func (s Settlement) Apply(inv *domain.Invoice) {
	inv.SubTotal = s.SubTotal
	inv.DiscountTotal = s.DiscountTotal
	inv.TaxAmount = s.TaxAmount
	inv.NetTotal = s.NetTotal
	inv.PaidAmount = s.PaidAmount
	inv.RemainingAmount = s.RemainingAmount
}
