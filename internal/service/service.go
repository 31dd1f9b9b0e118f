package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ventazo/backend/internal/domain"
	"ventazo/backend/internal/pricing"
	"ventazo/backend/internal/rates"
	"ventazo/backend/internal/store"
	"ventazo/backend/internal/wallet"
	"ventazo/backend/internal/xid"
)

var (
	ErrTermsNotAccepted       = errors.New("terms acceptance required")
	ErrRecipientNotRegistered = errors.New("recipient email is not a registered user")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// RechargeBounds are the configured limits a recharge amount is clamped
// to before the workflow runs.
type RechargeBounds struct {
	MinCents  int64
	MaxCents  int64
	StepCents int64
}

type Service struct {
	repo          store.Repository
	rates         *rates.Service
	verifier      wallet.Verifier
	verifyTimeout time.Duration
	bounds        RechargeBounds
}

func New(repo store.Repository, ratesService *rates.Service, verifier wallet.Verifier, verifyTimeout time.Duration, bounds RechargeBounds) *Service {
	if verifyTimeout <= 0 {
		verifyTimeout = 15 * time.Second
	}
	if bounds.MinCents <= 0 {
		// Wallet movements below a dollar are noise; gift cards raise the
		// floor further at purchase time.
		bounds.MinCents = 100
	}

	return &Service{
		repo:          repo,
		rates:         ratesService,
		verifier:      verifier,
		verifyTimeout: verifyTimeout,
		bounds:        bounds,
	}
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Name == "" || req.CategoryID == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.Type != domain.ProductPhysical && req.Type != domain.ProductDigital {
		return domain.Product{}, store.ErrInvalidInput
	}
	if len(req.Denominations) == 0 && req.PriceCents < 1 {
		return domain.Product{}, store.ErrInvalidInput
	}
	for _, den := range req.Denominations {
		if den.ID == "" || den.AmountCents < 1 {
			return domain.Product{}, store.ErrInvalidInput
		}
	}
	if req.WeightKg < 0 || req.FixedShippingCents < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	product := domain.Product{
		Name:               req.Name,
		CategoryID:         req.CategoryID,
		Type:               req.Type,
		PriceCents:         req.PriceCents,
		WeightKg:           req.WeightKg,
		Consolidable:       req.Consolidable,
		FixedShippingCents: req.FixedShippingCents,
		Denominations:      req.Denominations,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s,type=%s", created.Name, created.Type))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	product := *existing
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.CategoryID != nil {
		product.CategoryID = strings.TrimSpace(*req.CategoryID)
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}
	if req.WeightKg != nil {
		product.WeightKg = *req.WeightKg
	}
	if req.Consolidable != nil {
		product.Consolidable = *req.Consolidable
	}
	if req.FixedShippingCents != nil {
		product.FixedShippingCents = *req.FixedShippingCents
	}
	if req.Denominations != nil {
		product.Denominations = *req.Denominations
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if product.Name == "" || product.CategoryID == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	if len(product.Denominations) == 0 && product.PriceCents < 1 {
		return domain.Product{}, store.ErrInvalidInput
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", updated.ID, fmt.Sprintf("name=%s,active=%t", updated.Name, updated.Active))
	return *updated, nil
}

func (s *Service) GetSettings(ctx context.Context) (domain.StoreSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.StoreSettings{}, err
	}
	return *settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, settings domain.StoreSettings) (domain.StoreSettings, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.StoreSettings{}, err
	}

	if settings.Shipping.DeliveryFeeCents < 0 || settings.Shipping.FeePerKgCents < 0 ||
		settings.Shipping.PackagingFeeCents < 0 || settings.Shipping.MinConsolidatedFeeCents < 0 {
		return domain.StoreSettings{}, store.ErrInvalidInput
	}
	if t := settings.Shipping.FreeShippingThresholdCents; t != nil && *t < 0 {
		return domain.StoreSettings{}, store.ErrInvalidInput
	}

	updated, err := s.repo.UpdateSettings(ctx, settings)
	if err != nil {
		return domain.StoreSettings{}, err
	}

	s.logAudit(ctx, "settings_update", "settings", "store", fmt.Sprintf("delivery_fee=%d", updated.Shipping.DeliveryFeeCents))
	return *updated, nil
}

func (s *Service) ExchangeRates(ctx context.Context) domain.ExchangeRates {
	if s.rates == nil {
		return domain.ExchangeRates{}
	}
	return s.rates.Current(ctx)
}

func (s *Service) RequestDiscount(ctx context.Context, req domain.DiscountCreateRequest) (domain.Discount, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Discount{}, err
	}
	if req.ProductID == "" || req.RequestedPercent <= 0 || req.RequestedPercent > 100 {
		return domain.Discount{}, store.ErrInvalidInput
	}
	if _, err := s.repo.GetProductByID(ctx, req.ProductID); err != nil {
		return domain.Discount{}, err
	}

	discount := domain.Discount{
		ProductID:        req.ProductID,
		Status:           domain.DiscountPending,
		RequestedPercent: req.RequestedPercent,
		CreatedAt:        time.Now().UTC(),
	}
	if req.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return domain.Discount{}, store.ErrInvalidInput
		}
		discount.ExpiresAt = &expires
	}

	created, err := s.repo.CreateDiscount(ctx, discount)
	if err != nil {
		return domain.Discount{}, err
	}

	s.logAudit(ctx, "discount_request", "discount", created.ID, fmt.Sprintf("product=%s,requested=%.1f", created.ProductID, created.RequestedPercent))
	return *created, nil
}

func (s *Service) ListDiscounts(ctx context.Context, status string, limit int) ([]domain.Discount, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListDiscounts(ctx, status, limit)
}

// ApproveDiscount moves a pending discount to approved. An approved
// percent of zero keeps the requested percent in effect.
func (s *Service) ApproveDiscount(ctx context.Context, id string, approvedPercent float64) (domain.Discount, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Discount{}, err
	}
	if approvedPercent < 0 || approvedPercent > 100 {
		return domain.Discount{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetDiscountByID(ctx, id)
	if err != nil {
		return domain.Discount{}, err
	}
	if existing.Status != domain.DiscountPending {
		return domain.Discount{}, store.ErrInvalidInput
	}

	updated, err := s.repo.UpdateDiscountStatus(ctx, id, domain.DiscountApproved, approvedPercent)
	if err != nil {
		return domain.Discount{}, err
	}

	s.logAudit(ctx, "discount_approve", "discount", id, fmt.Sprintf("approved=%.1f", approvedPercent))
	return *updated, nil
}

func (s *Service) RejectDiscount(ctx context.Context, id string, reason string) (domain.Discount, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Discount{}, err
	}

	existing, err := s.repo.GetDiscountByID(ctx, id)
	if err != nil {
		return domain.Discount{}, err
	}
	if existing.Status != domain.DiscountPending {
		return domain.Discount{}, store.ErrInvalidInput
	}

	updated, err := s.repo.UpdateDiscountStatus(ctx, id, domain.DiscountRejected, 0)
	if err != nil {
		return domain.Discount{}, err
	}

	s.logAudit(ctx, "discount_reject", "discount", id, fmt.Sprintf("reason=%s", reason))
	return *updated, nil
}

// resolveCart turns client line refs into catalog-priced lines. Prices
// never come from the client.
func (s *Service) resolveCart(ctx context.Context, refs []domain.CartLineRef) ([]domain.CartLine, error) {
	if len(refs) == 0 {
		return nil, store.ErrInvalidInput
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID == "" || ref.Qty < 1 {
			return nil, store.ErrInvalidInput
		}
		ids = append(ids, ref.ID)
	}

	resolved, err := s.repo.ResolveCartLines(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(refs))
	for _, ref := range refs {
		line, ok := resolved[ref.ID]
		if !ok {
			return nil, store.ErrInvalidInput
		}
		line.Qty = ref.Qty
		lines = append(lines, line)
	}
	return lines, nil
}

func isDeliveryMethod(method string) bool {
	switch method {
	case domain.DeliveryPickup, domain.DeliveryHome, domain.DeliveryShipping:
		return true
	}
	return false
}

func (s *Service) totalsFor(ctx context.Context, lines []domain.CartLine, deliveryMethod string) (domain.OrderTotals, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.OrderTotals{}, err
	}
	if deliveryMethod != domain.DeliveryPickup && !settings.Shipping.DeliveryEnabled {
		return domain.OrderTotals{}, store.ErrInvalidInput
	}

	productIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ID)
	}
	discounts, err := s.repo.ListDiscountsForProducts(ctx, productIDs)
	if err != nil {
		return domain.OrderTotals{}, err
	}

	return pricing.ComputeTotals(lines, discounts, settings.Shipping, deliveryMethod, time.Now().UTC()), nil
}

func (s *Service) QuoteOrder(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResponse, error) {
	if !isDeliveryMethod(req.DeliveryMethod) {
		return domain.QuoteResponse{}, store.ErrInvalidInput
	}

	lines, err := s.resolveCart(ctx, req.Lines)
	if err != nil {
		return domain.QuoteResponse{}, err
	}

	totals, err := s.totalsFor(ctx, lines, req.DeliveryMethod)
	if err != nil {
		return domain.QuoteResponse{}, err
	}

	return domain.QuoteResponse{Totals: totals, Lines: lines}, nil
}

func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.OrderResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.OrderResponse{}, fmt.Errorf("authenticated customer required")
	}

	if !isDeliveryMethod(req.DeliveryMethod) {
		return domain.OrderResponse{}, store.ErrInvalidInput
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = xid.New("idem")
	}

	if existing, err := s.repo.FindOrderByIdempotency(ctx, req.IdempotencyKey); err == nil {
		return domain.OrderResponse{Order: *existing, Duplicate: true}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.OrderResponse{}, err
	}

	method, err := s.repo.GetPaymentMethodByID(ctx, req.PaymentMethodID)
	if err != nil {
		return domain.OrderResponse{}, err
	}
	if !method.Active {
		return domain.OrderResponse{}, store.ErrInvalidInput
	}
	reference := strings.TrimSpace(req.PaymentReference)
	if !method.AutoVerify && reference == "" {
		return domain.OrderResponse{}, store.ErrInvalidInput
	}

	lines, err := s.resolveCart(ctx, req.Lines)
	if err != nil {
		return domain.OrderResponse{}, err
	}
	totals, err := s.totalsFor(ctx, lines, req.DeliveryMethod)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	order := domain.Order{
		ID:                 xid.New("ord"),
		CustomerID:         actor.Username,
		IdempotencyKey:     req.IdempotencyKey,
		DeliveryMethod:     req.DeliveryMethod,
		PaymentMethodID:    method.ID,
		PaymentReference:   reference,
		SubtotalCents:      totals.SubtotalCents,
		DiscountCents:      totals.DiscountCents,
		ShippingCents:      totals.ShippingCents,
		TotalCents:         totals.TotalCents,
		AppliedDiscountIDs: totals.AppliedDiscountIDs,
		Status:             domain.OrderCreated,
		CreatedAt:          time.Now().UTC(),
		Lines:              lines,
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	s.logAudit(ctx, "order_create", "order", created.ID,
		fmt.Sprintf("total=%d,delivery=%s,payment=%s", created.TotalCents, created.DeliveryMethod, created.PaymentMethodID))

	duplicate := created.IdempotencyKey == order.IdempotencyKey && created.ID != order.ID
	return domain.OrderResponse{Order: *created, Duplicate: duplicate}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Order{}, fmt.Errorf("authenticated customer required")
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if actor.Role != "admin" && order.CustomerID != actor.Username {
		return domain.Order{}, store.ErrNotFound
	}
	return *order, nil
}

func (s *Service) GetBalance(ctx context.Context) (domain.Balance, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Balance{}, fmt.Errorf("authenticated customer required")
	}

	balance, err := s.repo.GetBalance(ctx, actor.Username)
	if err != nil {
		return domain.Balance{}, err
	}
	return *balance, nil
}

func (s *Service) DeductBalance(ctx context.Context, req domain.BalanceDeductRequest) (domain.Balance, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Balance{}, fmt.Errorf("authenticated customer required")
	}
	if req.AmountCents <= 0 {
		return domain.Balance{}, store.ErrInvalidInput
	}

	balance, err := s.repo.DeductBalance(ctx, actor.Username, req.AmountCents)
	if err != nil {
		return domain.Balance{}, err
	}

	s.logAudit(ctx, "balance_deduct", "balance", actor.Username, fmt.Sprintf("amount=%d,reason=%s", req.AmountCents, req.Reason))
	return *balance, nil
}

func (s *Service) TermsStatus(ctx context.Context) (domain.TermsStatus, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.TermsStatus{}, fmt.Errorf("authenticated customer required")
	}

	status, err := s.repo.GetTermsAcceptance(ctx, actor.Username)
	if err != nil {
		return domain.TermsStatus{}, err
	}
	return *status, nil
}

func (s *Service) AcceptTerms(ctx context.Context, req domain.TermsAcceptRequest) (domain.TermsStatus, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.TermsStatus{}, fmt.Errorf("authenticated customer required")
	}
	if strings.TrimSpace(req.Signature) == "" {
		return domain.TermsStatus{}, store.ErrInvalidInput
	}

	status, err := s.repo.AcceptTerms(ctx, actor.Username, strings.TrimSpace(req.Signature), time.Now().UTC())
	if err != nil {
		return domain.TermsStatus{}, err
	}

	s.logAudit(ctx, "terms_accept", "terms", actor.Username, "")
	return *status, nil
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethodInfo, error) {
	actor, _ := ActorFromContext(ctx)
	activeOnly := actor.Role != "admin"
	return s.repo.ListPaymentMethods(ctx, activeOnly)
}

// Recharge runs the full verification workflow for a wallet top-up:
// method selection, gateway verification, then the terminal decision.
// Approved recharges credit the balance immediately; unconfirmed ones
// stay pending for manual review; rejected ones are recorded so the
// customer can retry with a corrected reference.
func (s *Service) Recharge(ctx context.Context, req domain.RechargeRequest) (domain.RechargeResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.RechargeResponse{}, fmt.Errorf("authenticated customer required")
	}

	terms, err := s.repo.GetTermsAcceptance(ctx, actor.Username)
	if err != nil {
		return domain.RechargeResponse{}, err
	}
	if !terms.Accepted {
		return domain.RechargeResponse{}, ErrTermsNotAccepted
	}

	if req.AmountCents <= 0 {
		return domain.RechargeResponse{}, store.ErrInvalidInput
	}
	amount := wallet.ClampAmount(req.AmountCents, s.bounds.MinCents, s.bounds.MaxCents, s.bounds.StepCents)

	method, err := s.repo.GetPaymentMethodByID(ctx, req.PaymentMethodID)
	if err != nil {
		return domain.RechargeResponse{}, err
	}
	if !method.Active {
		return domain.RechargeResponse{}, store.ErrInvalidInput
	}

	wf := wallet.NewWorkflow()
	if err := wf.Begin(amount, *method, req.ReferenceCode); err != nil {
		return domain.RechargeResponse{}, store.ErrInvalidInput
	}
	attempt := wf.Attempt()

	tx, err := s.repo.CreateRecharge(ctx, domain.RechargeTransaction{
		ID:              xid.New("rch"),
		CustomerID:      actor.Username,
		AmountCents:     attempt.AmountCents,
		PaymentMethodID: method.ID,
		MethodKind:      method.Kind,
		ReferenceCode:   attempt.ReferenceCode,
		Status:          domain.RechargePending,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return domain.RechargeResponse{}, err
	}

	state, err := wf.Verify(ctx, s.verifier, actor.Username, s.verifyTimeout)
	if err != nil {
		return domain.RechargeResponse{}, err
	}

	now := time.Now().UTC()
	switch state {
	case wallet.StateApproved:
		updated, err := s.repo.UpdateRechargeStatus(ctx, tx.ID, domain.RechargeApproved, "", &now)
		if err != nil {
			return domain.RechargeResponse{}, err
		}
		balance, err := s.repo.CreditBalance(ctx, actor.Username, updated.AmountCents)
		if err != nil {
			return domain.RechargeResponse{}, err
		}

		s.logAudit(ctx, "recharge_approve", "recharge", updated.ID, fmt.Sprintf("amount=%d,method=%s", updated.AmountCents, method.Kind))
		return domain.RechargeResponse{
			Transaction:  *updated,
			Outcome:      wallet.StateApproved,
			Message:      "payment verified, balance credited",
			BalanceCents: balance.AmountCents,
		}, nil

	case wallet.StateRejected:
		updated, err := s.repo.UpdateRechargeStatus(ctx, tx.ID, domain.RechargeRejected, "", &now)
		if err != nil {
			return domain.RechargeResponse{}, err
		}

		s.logAudit(ctx, "recharge_reject", "recharge", updated.ID, fmt.Sprintf("reason=%s", wf.Reason()))
		return domain.RechargeResponse{
			Transaction: *updated,
			Outcome:     wallet.StateRejected,
			Message:     wf.Reason(),
		}, nil

	default:
		// Pending review: transaction stays pending for an operator.
		s.logAudit(ctx, "recharge_pending", "recharge", tx.ID, fmt.Sprintf("amount=%d,method=%s", tx.AmountCents, method.Kind))
		return domain.RechargeResponse{
			Transaction: *tx,
			Outcome:     wallet.StatePendingReview,
			Message:     "payment pending manual verification",
		}, nil
	}
}

func (s *Service) ListRecharges(ctx context.Context, limit int) ([]domain.RechargeTransaction, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("authenticated customer required")
	}

	customerID := actor.Username
	if actor.Role == "admin" {
		customerID = ""
	}
	return s.repo.ListRecharges(ctx, customerID, limit)
}

// CancelRecharge aborts a recharge that has not reached a terminal
// state. Cancellation never touches the balance.
func (s *Service) CancelRecharge(ctx context.Context, id string) (domain.RechargeTransaction, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.RechargeTransaction{}, fmt.Errorf("authenticated customer required")
	}

	tx, err := s.repo.GetRechargeByID(ctx, id)
	if err != nil {
		return domain.RechargeTransaction{}, err
	}
	if actor.Role != "admin" && tx.CustomerID != actor.Username {
		return domain.RechargeTransaction{}, store.ErrNotFound
	}
	if tx.Status != domain.RechargePending && tx.Status != domain.RechargeVerified {
		return domain.RechargeTransaction{}, store.ErrInvalidInput
	}

	now := time.Now().UTC()
	updated, err := s.repo.UpdateRechargeStatus(ctx, id, domain.RechargeCancelled, "", &now)
	if err != nil {
		return domain.RechargeTransaction{}, err
	}

	s.logAudit(ctx, "recharge_cancel", "recharge", id, "")
	return *updated, nil
}

// ResolveRecharge is the operator decision on a pending recharge.
// Approving credits the customer; rejecting frees the reference for
// reuse.
func (s *Service) ResolveRecharge(ctx context.Context, id string, approve bool) (domain.RechargeTransaction, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.RechargeTransaction{}, err
	}

	tx, err := s.repo.GetRechargeByID(ctx, id)
	if err != nil {
		return domain.RechargeTransaction{}, err
	}
	if tx.Status != domain.RechargePending && tx.Status != domain.RechargeVerified {
		return domain.RechargeTransaction{}, store.ErrInvalidInput
	}

	now := time.Now().UTC()
	status := domain.RechargeRejected
	if approve {
		status = domain.RechargeApproved
	}
	updated, err := s.repo.UpdateRechargeStatus(ctx, id, status, "", &now)
	if err != nil {
		return domain.RechargeTransaction{}, err
	}
	if approve {
		if _, err := s.repo.CreditBalance(ctx, updated.CustomerID, updated.AmountCents); err != nil {
			return domain.RechargeTransaction{}, err
		}
	}

	s.logAudit(ctx, "recharge_resolve", "recharge", id, fmt.Sprintf("approve=%t", approve))
	return *updated, nil
}

func (s *Service) PurchaseGiftCard(ctx context.Context, req domain.GiftCardRequest) (domain.GiftCardResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.GiftCardResponse{}, fmt.Errorf("authenticated customer required")
	}

	email := strings.TrimSpace(req.RecipientEmail)
	if req.DenominationID == "" || email == "" {
		return domain.GiftCardResponse{}, store.ErrInvalidInput
	}

	if _, err := s.repo.FindUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.GiftCardResponse{}, ErrRecipientNotRegistered
		}
		return domain.GiftCardResponse{}, err
	}

	resolved, err := s.repo.ResolveCartLines(ctx, []string{req.DenominationID})
	if err != nil {
		return domain.GiftCardResponse{}, err
	}
	line, ok := resolved[req.DenominationID]
	if !ok || line.Type != domain.ProductDigital {
		return domain.GiftCardResponse{}, store.ErrInvalidInput
	}
	if line.UnitPriceCents < pricing.GiftCardMinCents {
		return domain.GiftCardResponse{}, store.ErrInvalidInput
	}

	balance, err := s.repo.DeductBalance(ctx, actor.Username, line.UnitPriceCents)
	if err != nil {
		return domain.GiftCardResponse{}, err
	}

	card, err := s.repo.CreateGiftCard(ctx, domain.GiftCard{
		ID:             xid.New("gc"),
		Code:           xid.Code("GC", 6),
		DenominationID: req.DenominationID,
		AmountCents:    line.UnitPriceCents,
		PurchaserID:    actor.Username,
		RecipientEmail: email,
		Message:        strings.TrimSpace(req.Message),
		Status:         domain.GiftCardIssued,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		// Wallet was already charged; put the money back before failing.
		if _, creditErr := s.repo.CreditBalance(ctx, actor.Username, line.UnitPriceCents); creditErr != nil {
			log.Printf("[service] WARN: gift card refund failed for %s: %v", actor.Username, creditErr)
		}
		return domain.GiftCardResponse{}, err
	}

	s.logAudit(ctx, "gift_card_purchase", "gift_card", card.ID, fmt.Sprintf("amount=%d,recipient=%s", card.AmountCents, email))
	return domain.GiftCardResponse{GiftCard: *card, BalanceCents: balance.AmountCents}, nil
}

func (s *Service) ListGiftCards(ctx context.Context, limit int) ([]domain.GiftCard, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("authenticated customer required")
	}
	return s.repo.ListGiftCardsByPurchaser(ctx, actor.Username, limit)
}

func (s *Service) CheckUser(ctx context.Context, email string) (domain.UserCheckResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.UserCheckResponse{}, store.ErrInvalidInput
	}

	_, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserCheckResponse{Email: email, Exists: false}, nil
		}
		return domain.UserCheckResponse{}, err
	}
	return domain.UserCheckResponse{Email: email, Exists: true}, nil
}

func (s *Service) InviteUser(ctx context.Context, req domain.InviteRequest) (domain.Invite, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Invite{}, fmt.Errorf("authenticated customer required")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Invite{}, store.ErrInvalidInput
	}
	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return domain.Invite{}, store.ErrInvalidInput
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Invite{}, err
	}

	invite, err := s.repo.CreateInvite(ctx, domain.Invite{
		ID:        xid.New("inv"),
		Email:     email,
		InvitedBy: actor.Username,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Invite{}, err
	}

	s.logAudit(ctx, "user_invite", "invite", invite.ID, fmt.Sprintf("email=%s", email))
	return *invite, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	var from, to time.Time
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		from = day
		to = day.Add(24 * time.Hour)
	}
	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}
