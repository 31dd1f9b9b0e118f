package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ventazo/backend/internal/domain"
	"ventazo/backend/internal/store"
	"ventazo/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	categories      []domain.Category
	products        map[string]domain.Product
	productOrder    []string
	settings        domain.StoreSettings
	discountsByID   map[string]domain.Discount
	discountOrder   []string
	ordersByID      map[string]*domain.Order
	ordersByIdem    map[string]*domain.Order
	balances        map[string]domain.Balance
	terms           map[string]domain.TermsStatus
	paymentMethods  []domain.PaymentMethodInfo
	rechargesByID   map[string]*domain.RechargeTransaction
	rechargeOrder   []string
	giftCardsByCode map[string]domain.GiftCard
	giftCardOrder   []string
	invitesByID     map[string]domain.Invite
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_CUSTOMER_PASSWORD.
// If unset, hardcoded dev defaults are used with a warning. These
// credentials are never used in production (the backend uses PostgreSQL
// when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	customerPwd := envOr("SEED_CUSTOMER_PASSWORD", "customer123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CUSTOMER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CUSTOMER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		email    string
		password string
		role     string
	}{
		{"admin", "admin@ventazo.local", adminPwd, "admin"},
		{"maria", "maria@example.com", customerPwd, "customer"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Email:     u.email,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	categories := []domain.Category{
		{ID: "cat-giftcards", Name: "Gift Cards"},
		{ID: "cat-streaming", Name: "Streaming"},
		{ID: "cat-electronics", Name: "Electronics"},
		{ID: "cat-grocery", Name: "Grocery Box"},
	}

	products := []domain.Product{
		{
			ID: "prod-amazon-gc", Name: "Amazon Gift Card", CategoryID: "cat-giftcards",
			Type: domain.ProductDigital, Active: true,
			Denominations: []domain.Denomination{
				{ID: "den-amazon-10", Label: "$10", AmountCents: 1000},
				{ID: "den-amazon-25", Label: "$25", AmountCents: 2500},
				{ID: "den-amazon-50", Label: "$50", AmountCents: 5000},
			},
		},
		{
			ID: "prod-netflix", Name: "Netflix Monthly", CategoryID: "cat-streaming",
			Type: domain.ProductDigital, PriceCents: 1549, Active: true,
		},
		{
			ID: "prod-earbuds", Name: "Wireless Earbuds", CategoryID: "cat-electronics",
			Type: domain.ProductPhysical, PriceCents: 4599, WeightKg: 0.3,
			Consolidable: true, Active: true,
		},
		{
			ID: "prod-pantry-box", Name: "Pantry Essentials Box", CategoryID: "cat-grocery",
			Type: domain.ProductPhysical, PriceCents: 6500, WeightKg: 8.0,
			Consolidable: false, FixedShippingCents: 1200, Active: true,
		},
	}

	productMap := make(map[string]domain.Product, len(products))
	order := make([]string, 0, len(products))
	for _, p := range products {
		productMap[p.ID] = p
		order = append(order, p.ID)
	}

	threshold := int64(10000)
	settings := domain.StoreSettings{
		StoreName: "Ventazo",
		Shipping: domain.ShippingPolicy{
			DeliveryEnabled:            true,
			DeliveryFeeCents:           1000,
			FeePerKgCents:              150,
			MinConsolidatedFeeCents:    800,
			PackagingFeeCents:          200,
			FreeShippingThresholdCents: &threshold,
		},
		DisplayCurrencies: []string{"USD", "VES", "EUR"},
		HeroTitle:         "Todo lo que necesitas",
		HeroSubtitle:      "Recargas, gift cards y envios a tu puerta",
		UpdatedAt:         time.Now().UTC(),
	}

	paymentMethods := []domain.PaymentMethodInfo{
		{
			ID: "pm-pagomovil", Name: "Pago Movil", Kind: "mobile_payment",
			BankName: "Banco de Venezuela", PhoneNumber: "0412-5550123",
			AutoVerify: true, Active: true,
		},
		{
			ID: "pm-transfer", Name: "Transferencia Bancaria", Kind: "bank_transfer",
			BankName: "Banesco", AccountNumber: "0134-0000-0000-0000",
			Active: true,
		},
		{
			ID: "pm-usdt", Name: "USDT (TRC-20)", Kind: "crypto",
			WalletAddress: "TXexampleWalletAddr", QRImageURL: "/static/qr/usdt.png",
			Active: true,
		},
		{
			ID: "pm-zelle-old", Name: "Zelle (legacy)", Kind: "zelle",
			Active: false,
		},
	}

	return &Store{
		categories:      categories,
		products:        productMap,
		productOrder:    order,
		settings:        settings,
		discountsByID:   make(map[string]domain.Discount),
		ordersByID:      make(map[string]*domain.Order),
		ordersByIdem:    make(map[string]*domain.Order),
		balances:        make(map[string]domain.Balance),
		terms:           make(map[string]domain.TermsStatus),
		paymentMethods:  paymentMethods,
		rechargesByID:   make(map[string]*domain.RechargeTransaction),
		giftCardsByCode: make(map[string]domain.GiftCard),
		invitesByID:     make(map[string]domain.Invite),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Category, len(s.categories))
	copy(result, s.categories)
	return result, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		p := s.products[id]
		if !p.Active {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.CategoryID == "" {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrInvalidInput
	}

	product.Active = true
	s.products[product.ID] = product
	s.productOrder = append(s.productOrder, product.ID)
	created := product
	return &created, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" || product.CategoryID == "" {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.products[product.ID]; !exists {
		return nil, store.ErrNotFound
	}

	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) ResolveCartLines(_ context.Context, ids []string) (map[string]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.CartLine, len(ids))
	for _, id := range ids {
		if line, ok := s.resolveLineLocked(id); ok {
			result[id] = line
		}
	}
	return result, nil
}

// resolveLineLocked maps a product or denomination ID to a priced line.
// Denomination IDs win their own line identity so two tiers of the same
// gift card never collide.
func (s *Store) resolveLineLocked(id string) (domain.CartLine, bool) {
	if p, ok := s.products[id]; ok && p.Active {
		if len(p.Denominations) > 0 {
			// Base ID of a denominated product is not purchasable.
			return domain.CartLine{}, false
		}
		return domain.CartLine{
			ID:                 p.ID,
			Name:               p.Name,
			UnitPriceCents:     p.PriceCents,
			Type:               p.Type,
			WeightKg:           p.WeightKg,
			Consolidable:       p.Consolidable,
			FixedShippingCents: p.FixedShippingCents,
			ProductID:          p.ID,
		}, true
	}

	for _, pid := range s.productOrder {
		p := s.products[pid]
		if !p.Active {
			continue
		}
		for _, den := range p.Denominations {
			if den.ID == id {
				return domain.CartLine{
					ID:             den.ID,
					Name:           p.Name + " " + den.Label,
					UnitPriceCents: den.AmountCents,
					Type:           p.Type,
					ProductID:      p.ID,
				}, true
			}
		}
	}
	return domain.CartLine{}, false
}

func (s *Store) GetSettings(_ context.Context) (*domain.StoreSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.settings
	return &settings, nil
}

func (s *Store) UpdateSettings(_ context.Context, settings domain.StoreSettings) (*domain.StoreSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = time.Now().UTC()
	s.settings = settings
	updated := settings
	return &updated, nil
}

func (s *Store) CreateDiscount(_ context.Context, discount domain.Discount) (*domain.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if discount.ProductID == "" {
		return nil, store.ErrInvalidInput
	}
	if discount.ID == "" {
		discount.ID = xid.New("disc")
	}
	if discount.CreatedAt.IsZero() {
		discount.CreatedAt = time.Now().UTC()
	}
	s.discountsByID[discount.ID] = discount
	s.discountOrder = append(s.discountOrder, discount.ID)
	created := discount
	return &created, nil
}

func (s *Store) GetDiscountByID(_ context.Context, id string) (*domain.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	discount, exists := s.discountsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyDiscount := discount
	return &copyDiscount, nil
}

func (s *Store) ListDiscounts(_ context.Context, status string, limit int) ([]domain.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Discount, 0, len(s.discountOrder))
	for _, id := range s.discountOrder {
		d := s.discountsByID[id]
		if status != "" && d.Status != status {
			continue
		}
		result = append(result, d)
	}
	slices.Reverse(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) ListDiscountsForProducts(_ context.Context, productIDs []string) ([]domain.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}

	result := make([]domain.Discount, 0, len(productIDs))
	for _, id := range s.discountOrder {
		d := s.discountsByID[id]
		if _, ok := wanted[d.ProductID]; ok {
			result = append(result, d)
		}
	}
	return result, nil
}

func (s *Store) UpdateDiscountStatus(_ context.Context, id string, status string, approvedPercent float64) (*domain.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	discount, exists := s.discountsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	discount.Status = status
	if status == domain.DiscountApproved {
		discount.ApprovedPercent = approvedPercent
	}
	s.discountsByID[id] = discount
	updated := discount
	return &updated, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	stored := order
	s.ordersByID[order.ID] = &stored
	if order.IdempotencyKey != "" {
		s.ordersByIdem[order.IdempotencyKey] = &stored
	}
	created := order
	return &created, nil
}

func (s *Store) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.ordersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyOrder := *order
	return &copyOrder, nil
}

func (s *Store) FindOrderByIdempotency(_ context.Context, key string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.ordersByIdem[key]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyOrder := *order
	return &copyOrder, nil
}

func (s *Store) GetBalance(_ context.Context, customerID string) (*domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance, exists := s.balances[customerID]
	if !exists {
		balance = domain.Balance{CustomerID: customerID, UpdatedAt: time.Now().UTC()}
	}
	copyBalance := balance
	return &copyBalance, nil
}

func (s *Store) CreditBalance(_ context.Context, customerID string, amountCents int64) (*domain.Balance, error) {
	if amountCents <= 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[customerID]
	balance.CustomerID = customerID
	balance.AmountCents += amountCents
	balance.UpdatedAt = time.Now().UTC()
	s.balances[customerID] = balance
	copyBalance := balance
	return &copyBalance, nil
}

func (s *Store) DeductBalance(_ context.Context, customerID string, amountCents int64) (*domain.Balance, error) {
	if amountCents <= 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[customerID]
	if balance.AmountCents < amountCents {
		return nil, store.ErrInsufficientBalance
	}
	balance.CustomerID = customerID
	balance.AmountCents -= amountCents
	balance.UpdatedAt = time.Now().UTC()
	s.balances[customerID] = balance
	copyBalance := balance
	return &copyBalance, nil
}

func (s *Store) GetTermsAcceptance(_ context.Context, customerID string) (*domain.TermsStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.terms[customerID]
	copyStatus := status
	return &copyStatus, nil
}

func (s *Store) AcceptTerms(_ context.Context, customerID string, signature string, at time.Time) (*domain.TermsStatus, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acceptedAt := at.UTC()
	status := domain.TermsStatus{Accepted: true, AcceptedAt: &acceptedAt}
	s.terms[customerID] = status
	copyStatus := status
	return &copyStatus, nil
}

func (s *Store) ListPaymentMethods(_ context.Context, activeOnly bool) ([]domain.PaymentMethodInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.PaymentMethodInfo, 0, len(s.paymentMethods))
	for _, m := range s.paymentMethods {
		if activeOnly && !m.Active {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

func (s *Store) GetPaymentMethodByID(_ context.Context, id string) (*domain.PaymentMethodInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.paymentMethods {
		if m.ID == id {
			copyMethod := m
			return &copyMethod, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateRecharge(_ context.Context, tx domain.RechargeTransaction) (*domain.RechargeTransaction, error) {
	if tx.CustomerID == "" || tx.AmountCents <= 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ReferenceCode != "" && tx.ReferenceCode != domain.PendingVerificationRef {
		for _, existing := range s.rechargesByID {
			if existing.ReferenceCode == tx.ReferenceCode &&
				existing.Status != domain.RechargeRejected &&
				existing.Status != domain.RechargeCancelled {
				return nil, store.ErrDuplicateReference
			}
		}
	}

	if tx.ID == "" {
		tx.ID = xid.New("rch")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if tx.Status == "" {
		tx.Status = domain.RechargePending
	}
	stored := tx
	s.rechargesByID[tx.ID] = &stored
	s.rechargeOrder = append(s.rechargeOrder, tx.ID)
	created := tx
	return &created, nil
}

func (s *Store) GetRechargeByID(_ context.Context, id string) (*domain.RechargeTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.rechargesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyTx := *tx
	return &copyTx, nil
}

func (s *Store) FindRechargeByReference(_ context.Context, reference string) (*domain.RechargeTransaction, error) {
	if reference == "" || reference == domain.PendingVerificationRef {
		return nil, store.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.rechargesByID {
		if tx.ReferenceCode == reference &&
			tx.Status != domain.RechargeRejected &&
			tx.Status != domain.RechargeCancelled {
			copyTx := *tx
			return &copyTx, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateRechargeStatus(_ context.Context, id string, status string, reference string, resolvedAt *time.Time) (*domain.RechargeTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.rechargesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	tx.Status = status
	if reference != "" {
		tx.ReferenceCode = reference
	}
	if resolvedAt != nil {
		at := resolvedAt.UTC()
		tx.ResolvedAt = &at
	}
	copyTx := *tx
	return &copyTx, nil
}

func (s *Store) ListRecharges(_ context.Context, customerID string, limit int) ([]domain.RechargeTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RechargeTransaction, 0, len(s.rechargeOrder))
	for _, id := range s.rechargeOrder {
		tx := s.rechargesByID[id]
		if customerID != "" && tx.CustomerID != customerID {
			continue
		}
		result = append(result, *tx)
	}
	slices.Reverse(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateGiftCard(_ context.Context, card domain.GiftCard) (*domain.GiftCard, error) {
	if card.Code == "" || card.AmountCents <= 0 || card.PurchaserID == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.giftCardsByCode[card.Code]; exists {
		return nil, store.ErrInvalidInput
	}
	if card.ID == "" {
		card.ID = xid.New("gc")
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}
	if card.Status == "" {
		card.Status = domain.GiftCardIssued
	}
	s.giftCardsByCode[card.Code] = card
	s.giftCardOrder = append(s.giftCardOrder, card.Code)
	created := card
	return &created, nil
}

func (s *Store) GetGiftCardByCode(_ context.Context, code string) (*domain.GiftCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, exists := s.giftCardsByCode[code]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCard := card
	return &copyCard, nil
}

func (s *Store) ListGiftCardsByPurchaser(_ context.Context, purchaserID string, limit int) ([]domain.GiftCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.GiftCard, 0, 8)
	for _, code := range s.giftCardOrder {
		card := s.giftCardsByCode[code]
		if card.PurchaserID != purchaserID {
			continue
		}
		result = append(result, card)
	}
	slices.Reverse(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateInvite(_ context.Context, invite domain.Invite) (*domain.Invite, error) {
	if invite.Email == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if invite.ID == "" {
		invite.ID = xid.New("inv")
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	s.invitesByID[invite.ID] = invite
	created := invite
	return &created, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.usersByUsername {
		if strings.ToLower(u.Email) == email {
			copyUser := u
			return &copyUser, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, len(s.auditLogs))
	for _, entry := range s.auditLogs {
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.CreatedAt.After(to) {
			continue
		}
		result = append(result, entry)
	}
	slices.Reverse(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		result = append(result, u)
	}
	slices.SortFunc(result, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return result, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	if username == "" || password == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
