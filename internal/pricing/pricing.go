// Package pricing computes order totals from resolved cart lines, approved
// discounts and the store's shipping policy. It is pure: no I/O, no clock
// reads, no mutation of its inputs, so callers can recompute on every cart
// change.
package pricing

import (
	"math"
	"time"

	"ventazo/backend/internal/domain"
)

// DefaultDeliveryFeeCents is charged when the store has no configured
// delivery fee.
const DefaultDeliveryFeeCents = 1000

// GiftCardMinCents is the smallest purchasable gift card amount.
const GiftCardMinCents = 500

// ComputeTotals runs the full subtotal/discount/shipping pipeline.
//
// Discount selection is first-match-wins per line: the first discount whose
// product matches, whose status is approved and whose expiry (if any) is in
// the future. A percent of zero on the approved side falls back to the
// requested percent. Rounding happens once per line, never on running sums.
func ComputeTotals(
	lines []domain.CartLine,
	discounts []domain.Discount,
	policy domain.ShippingPolicy,
	deliveryMethod string,
	now time.Time,
) domain.OrderTotals {
	totals := domain.OrderTotals{AppliedDiscountIDs: []string{}}
	if len(lines) == 0 {
		return totals
	}

	applied := make(map[string]struct{}, 4)
	for _, line := range lines {
		lineTotal := line.UnitPriceCents * int64(line.Qty)
		totals.SubtotalCents += lineTotal

		discount, ok := matchDiscount(line, discounts, now)
		if !ok {
			continue
		}

		amount := discountAmount(lineTotal, discount)
		if amount < 1 {
			continue
		}
		totals.DiscountCents += amount
		if _, seen := applied[discount.ID]; !seen {
			applied[discount.ID] = struct{}{}
			totals.AppliedDiscountIDs = append(totals.AppliedDiscountIDs, discount.ID)
		}
	}

	totals.ShippingCents = shippingFee(totals.SubtotalCents, policy, deliveryMethod)
	totals.TotalCents = totals.SubtotalCents - totals.DiscountCents + totals.ShippingCents
	return totals
}

// matchDiscount returns the first applicable discount for the line. Expired,
// pending and rejected discounts are skipped silently.
func matchDiscount(line domain.CartLine, discounts []domain.Discount, now time.Time) (domain.Discount, bool) {
	for _, d := range discounts {
		if d.ProductID != line.ID {
			continue
		}
		if d.Status != domain.DiscountApproved {
			continue
		}
		if d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
			continue
		}
		return d, true
	}
	return domain.Discount{}, false
}

func discountAmount(lineTotalCents int64, discount domain.Discount) int64 {
	percent := discount.ApprovedPercent
	if percent <= 0 {
		percent = discount.RequestedPercent
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	amount := int64(math.Round(float64(lineTotalCents) * percent / 100))
	if amount > lineTotalCents {
		amount = lineTotalCents
	}
	return amount
}

// shippingFee charges the store's flat per-order delivery fee. The threshold
// comparison uses the pre-discount subtotal.
func shippingFee(subtotalCents int64, policy domain.ShippingPolicy, deliveryMethod string) int64 {
	if deliveryMethod == domain.DeliveryPickup {
		return 0
	}
	if policy.FreeShippingThresholdCents != nil && subtotalCents >= *policy.FreeShippingThresholdCents {
		return 0
	}
	if policy.DeliveryFeeCents > 0 {
		return policy.DeliveryFeeCents
	}
	return DefaultDeliveryFeeCents
}
