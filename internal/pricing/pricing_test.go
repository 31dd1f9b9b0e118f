package pricing

import (
	"reflect"
	"testing"
	"time"

	"ventazo/backend/internal/domain"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func physicalLine(id string, priceCents int64, qty int) domain.CartLine {
	return domain.CartLine{
		ID:             id,
		Name:           "Line " + id,
		UnitPriceCents: priceCents,
		Qty:            qty,
		Type:           domain.ProductPhysical,
	}
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, nil, domain.ShippingPolicy{}, domain.DeliveryHome, time.Now())
	if totals.SubtotalCents != 0 || totals.DiscountCents != 0 || totals.ShippingCents != 0 || totals.TotalCents != 0 {
		t.Fatalf("expected all-zero totals for empty cart, got %+v", totals)
	}
	if len(totals.AppliedDiscountIDs) != 0 {
		t.Fatalf("expected no applied discounts, got %v", totals.AppliedDiscountIDs)
	}
}

func TestComputeTotalsSubtotalAdditivity(t *testing.T) {
	lines := []domain.CartLine{
		physicalLine("p-1", 3500, 2),
		physicalLine("p-2", 26500, 1),
		physicalLine("p-3", 990, 3),
	}

	totals := ComputeTotals(lines, nil, domain.ShippingPolicy{}, domain.DeliveryPickup, time.Now())

	want := int64(3500*2 + 26500 + 990*3)
	if totals.SubtotalCents != want {
		t.Fatalf("expected subtotal %d, got %d", want, totals.SubtotalCents)
	}
	if totals.TotalCents != want {
		t.Fatalf("pickup order should total the subtotal, got %d", totals.TotalCents)
	}
}

func TestComputeTotalsFreeShippingAtThreshold(t *testing.T) {
	// Cart {price:5000, qty:2}, threshold 10000, flat fee 1000: threshold met.
	lines := []domain.CartLine{physicalLine("p-1", 5000, 2)}
	policy := domain.ShippingPolicy{
		DeliveryEnabled:            true,
		DeliveryFeeCents:           1000,
		FreeShippingThresholdCents: int64Ptr(10000),
	}

	totals := ComputeTotals(lines, nil, policy, domain.DeliveryHome, time.Now())

	if totals.ShippingCents != 0 {
		t.Fatalf("expected free shipping at threshold, got %d", totals.ShippingCents)
	}
	if totals.TotalCents != 10000 {
		t.Fatalf("expected total 10000, got %d", totals.TotalCents)
	}
}

func TestComputeTotalsFlatFeeBelowThreshold(t *testing.T) {
	lines := []domain.CartLine{physicalLine("p-1", 5000, 1)}
	policy := domain.ShippingPolicy{
		DeliveryEnabled:            true,
		DeliveryFeeCents:           1000,
		FreeShippingThresholdCents: int64Ptr(10000),
	}

	totals := ComputeTotals(lines, nil, policy, domain.DeliveryHome, time.Now())

	if totals.ShippingCents != 1000 {
		t.Fatalf("expected flat fee 1000, got %d", totals.ShippingCents)
	}
	if totals.TotalCents != 6000 {
		t.Fatalf("expected total 6000, got %d", totals.TotalCents)
	}
}

func TestComputeTotalsDefaultDeliveryFee(t *testing.T) {
	lines := []domain.CartLine{physicalLine("p-1", 500, 1)}

	totals := ComputeTotals(lines, nil, domain.ShippingPolicy{}, domain.DeliveryShipping, time.Now())

	if totals.ShippingCents != DefaultDeliveryFeeCents {
		t.Fatalf("expected default fee %d, got %d", DefaultDeliveryFeeCents, totals.ShippingCents)
	}
}

func TestComputeTotalsPickupIgnoresThreshold(t *testing.T) {
	lines := []domain.CartLine{physicalLine("p-1", 100, 1)}
	policy := domain.ShippingPolicy{
		DeliveryFeeCents:           1500,
		FreeShippingThresholdCents: int64Ptr(1000000),
	}

	totals := ComputeTotals(lines, nil, policy, domain.DeliveryPickup, time.Now())

	if totals.ShippingCents != 0 {
		t.Fatalf("pickup must never charge shipping, got %d", totals.ShippingCents)
	}
}

func TestComputeTotalsAppliedDiscount(t *testing.T) {
	// Cart {price:3000, qty:1}, 20% approved discount, pickup:
	// subtotal 3000, discount 600, total 2400.
	now := time.Now().UTC()
	lines := []domain.CartLine{physicalLine("p-1", 3000, 1)}
	discounts := []domain.Discount{
		{ID: "disc-1", ProductID: "p-1", Status: domain.DiscountApproved, ApprovedPercent: 20},
	}

	totals := ComputeTotals(lines, discounts, domain.ShippingPolicy{}, domain.DeliveryPickup, now)

	if totals.DiscountCents != 600 {
		t.Fatalf("expected discount 600, got %d", totals.DiscountCents)
	}
	if totals.TotalCents != 2400 {
		t.Fatalf("expected total 2400, got %d", totals.TotalCents)
	}
	if !reflect.DeepEqual(totals.AppliedDiscountIDs, []string{"disc-1"}) {
		t.Fatalf("expected applied ids [disc-1], got %v", totals.AppliedDiscountIDs)
	}
}

func TestComputeTotalsExpiredDiscountExcluded(t *testing.T) {
	now := time.Now().UTC()
	expired := now.Add(-time.Hour)
	lines := []domain.CartLine{physicalLine("p-1", 3000, 1)}
	discounts := []domain.Discount{
		{ID: "disc-old", ProductID: "p-1", Status: domain.DiscountApproved, ApprovedPercent: 50, ExpiresAt: &expired},
	}

	totals := ComputeTotals(lines, discounts, domain.ShippingPolicy{}, domain.DeliveryPickup, now)

	if totals.DiscountCents != 0 {
		t.Fatalf("expired discount must not apply, got %d", totals.DiscountCents)
	}
	if len(totals.AppliedDiscountIDs) != 0 {
		t.Fatalf("expected no applied ids, got %v", totals.AppliedDiscountIDs)
	}
}

func TestComputeTotalsNonApprovedStatusesExcluded(t *testing.T) {
	now := time.Now().UTC()
	lines := []domain.CartLine{physicalLine("p-1", 3000, 1)}
	discounts := []domain.Discount{
		{ID: "disc-p", ProductID: "p-1", Status: domain.DiscountPending, RequestedPercent: 40},
		{ID: "disc-r", ProductID: "p-1", Status: domain.DiscountRejected, RequestedPercent: 40},
	}

	totals := ComputeTotals(lines, discounts, domain.ShippingPolicy{}, domain.DeliveryPickup, now)

	if totals.DiscountCents != 0 {
		t.Fatalf("pending/rejected discounts must not apply, got %d", totals.DiscountCents)
	}
}

func TestComputeTotalsFirstMatchWins(t *testing.T) {
	now := time.Now().UTC()
	lines := []domain.CartLine{physicalLine("p-1", 10000, 1)}
	discounts := []domain.Discount{
		{ID: "disc-first", ProductID: "p-1", Status: domain.DiscountApproved, ApprovedPercent: 10},
		{ID: "disc-second", ProductID: "p-1", Status: domain.DiscountApproved, ApprovedPercent: 50},
	}

	totals := ComputeTotals(lines, discounts, domain.ShippingPolicy{}, domain.DeliveryPickup, now)

	if totals.DiscountCents != 1000 {
		t.Fatalf("expected first-match discount 1000, got %d", totals.DiscountCents)
	}
	if !reflect.DeepEqual(totals.AppliedDiscountIDs, []string{"disc-first"}) {
		t.Fatalf("expected [disc-first], got %v", totals.AppliedDiscountIDs)
	}
}

func TestComputeTotalsApprovedPercentFallsBackToRequested(t *testing.T) {
	now := time.Now().UTC()
	lines := []domain.CartLine{physicalLine("p-1", 2000, 1)}
	discounts := []domain.Discount{
		{ID: "disc-1", ProductID: "p-1", Status: domain.DiscountApproved, RequestedPercent: 25},
	}

	totals := ComputeTotals(lines, discounts, domain.ShippingPolicy{}, domain.DeliveryPickup, now)

	if totals.DiscountCents != 500 {
		t.Fatalf("expected fallback to requested percent (500), got %d", totals.DiscountCents)
	}
}

func TestComputeTotalsDiscountBounded(t *testing.T) {
	now := time.Now().UTC()
	lines := []domain.CartLine{physicalLine("p-1", 777, 3)}
	discounts := []domain.Discount{
		{ID: "disc-1", ProductID: "p-1", Status: domain.DiscountApproved, ApprovedPercent: 250},
	}

	totals := ComputeTotals(lines, discounts, domain.ShippingPolicy{}, domain.DeliveryPickup, now)

	lineTotal := int64(777 * 3)
	if totals.DiscountCents < 0 || totals.DiscountCents > lineTotal {
		t.Fatalf("discount %d out of [0,%d]", totals.DiscountCents, lineTotal)
	}
	if totals.DiscountCents != lineTotal {
		t.Fatalf("over-100 percent must clamp to the line total, got %d", totals.DiscountCents)
	}
}

func TestComputeTotalsGrandTotalIdentity(t *testing.T) {
	now := time.Now().UTC()
	lines := []domain.CartLine{
		physicalLine("p-1", 1234, 2),
		physicalLine("p-2", 999, 5),
	}
	discounts := []domain.Discount{
		{ID: "disc-1", ProductID: "p-2", Status: domain.DiscountApproved, ApprovedPercent: 13},
	}
	policy := domain.ShippingPolicy{DeliveryFeeCents: 850}

	totals := ComputeTotals(lines, discounts, policy, domain.DeliveryHome, now)

	if totals.TotalCents != totals.SubtotalCents-totals.DiscountCents+totals.ShippingCents {
		t.Fatalf("grand total identity violated: %+v", totals)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	lines := []domain.CartLine{
		physicalLine("p-1", 3100, 3),
		physicalLine("p-2", 150, 7),
	}
	discounts := []domain.Discount{
		{ID: "disc-1", ProductID: "p-1", Status: domain.DiscountApproved, ApprovedPercent: 7.5},
	}
	policy := domain.ShippingPolicy{DeliveryFeeCents: 1000, FreeShippingThresholdCents: int64Ptr(50000)}

	first := ComputeTotals(lines, discounts, policy, domain.DeliveryShipping, now)
	second := ComputeTotals(lines, discounts, policy, domain.DeliveryShipping, now)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical totals, got %+v vs %+v", first, second)
	}
}

func TestComputeTotalsDiscountIDRecordedOncePerCart(t *testing.T) {
	// Two denominations of the same product share the product-scoped
	// discount only when the discount targets the line ID; the ID list is
	// still de-duplicated.
	now := time.Now().UTC()
	lines := []domain.CartLine{
		physicalLine("den-25", 2500, 1),
		physicalLine("den-25", 2500, 2),
	}
	discounts := []domain.Discount{
		{ID: "disc-1", ProductID: "den-25", Status: domain.DiscountApproved, ApprovedPercent: 10},
	}

	totals := ComputeTotals(lines, discounts, domain.ShippingPolicy{}, domain.DeliveryPickup, now)

	if totals.DiscountCents != 250+500 {
		t.Fatalf("expected per-line discount accumulation 750, got %d", totals.DiscountCents)
	}
	if !reflect.DeepEqual(totals.AppliedDiscountIDs, []string{"disc-1"}) {
		t.Fatalf("expected de-duplicated [disc-1], got %v", totals.AppliedDiscountIDs)
	}
}
