package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ventazo/backend/internal/domain"
	"ventazo/backend/internal/store"
	"ventazo/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category_id, type, price_cents, weight_kg, consolidable, fixed_shipping_cents, denominations, active
		FROM products
		WHERE active = true
		ORDER BY category_id, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var denomsRaw []byte
	if err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Type, &p.PriceCents, &p.WeightKg, &p.Consolidable, &p.FixedShippingCents, &denomsRaw, &p.Active); err != nil {
		return domain.Product{}, err
	}
	if len(denomsRaw) > 0 {
		if err := json.Unmarshal(denomsRaw, &p.Denominations); err != nil {
			return domain.Product{}, err
		}
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.CategoryID == "" {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}

	denomsJSON, err := json.Marshal(product.Denominations)
	if err != nil {
		return nil, err
	}

	product.Active = true
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category_id, type, price_cents, weight_kg, consolidable, fixed_shipping_cents, denominations, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
	`, product.ID, product.Name, product.CategoryID, product.Type, product.PriceCents, product.WeightKg, product.Consolidable, product.FixedShippingCents, denomsJSON, product.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category_id, type, price_cents, weight_kg, consolidable, fixed_shipping_cents, denominations, active
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.CategoryID == "" {
		return nil, store.ErrInvalidInput
	}

	denomsJSON, err := json.Marshal(product.Denominations)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category_id = $3, price_cents = $4, weight_kg = $5, consolidable = $6, fixed_shipping_cents = $7, denominations = $8, active = $9, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, product.CategoryID, product.PriceCents, product.WeightKg, product.Consolidable, product.FixedShippingCents, denomsJSON, product.Active)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) ResolveCartLines(ctx context.Context, ids []string) (map[string]domain.CartLine, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]domain.CartLine, len(ids))
	for _, id := range ids {
		for _, p := range products {
			if p.ID == id && len(p.Denominations) == 0 {
				result[id] = domain.CartLine{
					ID:                 p.ID,
					Name:               p.Name,
					UnitPriceCents:     p.PriceCents,
					Type:               p.Type,
					WeightKg:           p.WeightKg,
					Consolidable:       p.Consolidable,
					FixedShippingCents: p.FixedShippingCents,
					ProductID:          p.ID,
				}
				break
			}
			matched := false
			for _, den := range p.Denominations {
				if den.ID == id {
					result[id] = domain.CartLine{
						ID:             den.ID,
						Name:           p.Name + " " + den.Label,
						UnitPriceCents: den.AmountCents,
						Type:           p.Type,
						ProductID:      p.ID,
					}
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}
	return result, nil
}

func (s *Store) GetSettings(ctx context.Context) (*domain.StoreSettings, error) {
	var settings domain.StoreSettings
	var shippingRaw []byte
	var currenciesRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT store_name, shipping, display_currencies, hero_title, hero_subtitle, updated_at
		FROM store_settings
		WHERE id = 1
	`).Scan(&settings.StoreName, &shippingRaw, &currenciesRaw, &settings.HeroTitle, &settings.HeroSubtitle, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(shippingRaw, &settings.Shipping); err != nil {
		return nil, err
	}
	if len(currenciesRaw) > 0 {
		if err := json.Unmarshal(currenciesRaw, &settings.DisplayCurrencies); err != nil {
			return nil, err
		}
	}
	return &settings, nil
}

func (s *Store) UpdateSettings(ctx context.Context, settings domain.StoreSettings) (*domain.StoreSettings, error) {
	shippingJSON, err := json.Marshal(settings.Shipping)
	if err != nil {
		return nil, err
	}
	currenciesJSON, err := json.Marshal(settings.DisplayCurrencies)
	if err != nil {
		return nil, err
	}

	settings.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO store_settings (id, store_name, shipping, display_currencies, hero_title, hero_subtitle, updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE
		SET store_name = $1, shipping = $2, display_currencies = $3, hero_title = $4, hero_subtitle = $5, updated_at = $6
	`, settings.StoreName, shippingJSON, currenciesJSON, settings.HeroTitle, settings.HeroSubtitle, settings.UpdatedAt)
	if err != nil {
		return nil, err
	}

	updated := settings
	return &updated, nil
}

func (s *Store) CreateDiscount(ctx context.Context, discount domain.Discount) (*domain.Discount, error) {
	if discount.ProductID == "" {
		return nil, store.ErrInvalidInput
	}
	if discount.ID == "" {
		discount.ID = xid.New("disc")
	}
	if discount.CreatedAt.IsZero() {
		discount.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discounts (id, product_id, status, requested_percent, approved_percent, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, discount.ID, discount.ProductID, discount.Status, discount.RequestedPercent, discount.ApprovedPercent, nullTime(discount.ExpiresAt), discount.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := discount
	return &created, nil
}

func (s *Store) GetDiscountByID(ctx context.Context, id string) (*domain.Discount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, status, requested_percent, approved_percent, expires_at, created_at
		FROM discounts
		WHERE id = $1
	`, id)

	discount, err := scanDiscount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &discount, nil
}

func scanDiscount(row rowScanner) (domain.Discount, error) {
	var d domain.Discount
	var expiresAt sql.NullTime
	if err := row.Scan(&d.ID, &d.ProductID, &d.Status, &d.RequestedPercent, &d.ApprovedPercent, &expiresAt, &d.CreatedAt); err != nil {
		return domain.Discount{}, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		d.ExpiresAt = &t
	}
	return d, nil
}

func (s *Store) ListDiscounts(ctx context.Context, status string, limit int) ([]domain.Discount, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, product_id, status, requested_percent, approved_percent, expires_at, created_at
		FROM discounts
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discounts := make([]domain.Discount, 0, limit)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

func (s *Store) ListDiscountsForProducts(ctx context.Context, productIDs []string) ([]domain.Discount, error) {
	if len(productIDs) == 0 {
		return []domain.Discount{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, status, requested_percent, approved_percent, expires_at, created_at
		FROM discounts
		WHERE product_id = ANY($1)
		ORDER BY created_at
	`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discounts := make([]domain.Discount, 0, len(productIDs))
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

func (s *Store) UpdateDiscountStatus(ctx context.Context, id string, status string, approvedPercent float64) (*domain.Discount, error) {
	query := `
		UPDATE discounts
		SET status = $2
		WHERE id = $1
	`
	args := []any{id, status}
	if status == domain.DiscountApproved {
		query = `
			UPDATE discounts
			SET status = $2, approved_percent = $3
			WHERE id = $1
		`
		args = append(args, approvedPercent)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetDiscountByID(ctx, id)
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, err
	}
	discountIDsJSON, err := json.Marshal(order.AppliedDiscountIDs)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, idempotency_key, delivery_method, payment_method_id, payment_reference,
			subtotal_cents, discount_cents, shipping_cents, total_cents, applied_discount_ids, status, lines, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, order.ID, order.CustomerID, order.IdempotencyKey, order.DeliveryMethod, order.PaymentMethodID, nullIfEmpty(order.PaymentReference),
		order.SubtotalCents, order.DiscountCents, order.ShippingCents, order.TotalCents, discountIDsJSON, order.Status, linesJSON, order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return s.FindOrderByIdempotency(ctx, order.IdempotencyKey)
		}
		return nil, err
	}

	created := order
	return &created, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.findOrder(ctx, "id", id)
}

func (s *Store) FindOrderByIdempotency(ctx context.Context, key string) (*domain.Order, error) {
	return s.findOrder(ctx, "idempotency_key", key)
}

func (s *Store) findOrder(ctx context.Context, column string, value string) (*domain.Order, error) {
	var order domain.Order
	var reference sql.NullString
	var discountIDsRaw []byte
	var linesRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, idempotency_key, delivery_method, payment_method_id, payment_reference,
			subtotal_cents, discount_cents, shipping_cents, total_cents, applied_discount_ids, status, lines, created_at
		FROM orders
		WHERE `+column+` = $1
	`, value).Scan(&order.ID, &order.CustomerID, &order.IdempotencyKey, &order.DeliveryMethod, &order.PaymentMethodID, &reference,
		&order.SubtotalCents, &order.DiscountCents, &order.ShippingCents, &order.TotalCents, &discountIDsRaw, &order.Status, &linesRaw, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	order.PaymentReference = reference.String
	if err := json.Unmarshal(discountIDsRaw, &order.AppliedDiscountIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linesRaw, &order.Lines); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) GetBalance(ctx context.Context, customerID string) (*domain.Balance, error) {
	var balance domain.Balance
	err := s.db.QueryRowContext(ctx, `
		SELECT customer_id, amount_cents, updated_at
		FROM balances
		WHERE customer_id = $1
	`, customerID).Scan(&balance.CustomerID, &balance.AmountCents, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Balance{CustomerID: customerID, UpdatedAt: time.Now().UTC()}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (s *Store) CreditBalance(ctx context.Context, customerID string, amountCents int64) (*domain.Balance, error) {
	if amountCents <= 0 {
		return nil, store.ErrInvalidInput
	}

	var balance domain.Balance
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO balances (customer_id, amount_cents, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (customer_id) DO UPDATE
		SET amount_cents = balances.amount_cents + $2, updated_at = now()
		RETURNING customer_id, amount_cents, updated_at
	`, customerID, amountCents).Scan(&balance.CustomerID, &balance.AmountCents, &balance.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *Store) DeductBalance(ctx context.Context, customerID string, amountCents int64) (*domain.Balance, error) {
	if amountCents <= 0 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	err = tx.QueryRowContext(ctx, `
		SELECT amount_cents
		FROM balances
		WHERE customer_id = $1
		FOR UPDATE
	`, customerID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInsufficientBalance
		}
		return nil, err
	}
	if current < amountCents {
		return nil, store.ErrInsufficientBalance
	}

	var balance domain.Balance
	err = tx.QueryRowContext(ctx, `
		UPDATE balances
		SET amount_cents = amount_cents - $2, updated_at = now()
		WHERE customer_id = $1
		RETURNING customer_id, amount_cents, updated_at
	`, customerID, amountCents).Scan(&balance.CustomerID, &balance.AmountCents, &balance.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *Store) GetTermsAcceptance(ctx context.Context, customerID string) (*domain.TermsStatus, error) {
	var acceptedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT accepted_at
		FROM terms_acceptances
		WHERE customer_id = $1
	`, customerID).Scan(&acceptedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.TermsStatus{}, nil
		}
		return nil, err
	}
	return &domain.TermsStatus{Accepted: true, AcceptedAt: &acceptedAt}, nil
}

func (s *Store) AcceptTerms(ctx context.Context, customerID string, signature string, at time.Time) (*domain.TermsStatus, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, store.ErrInvalidInput
	}

	acceptedAt := at.UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO terms_acceptances (customer_id, signature, accepted_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (customer_id) DO UPDATE
		SET signature = $2, accepted_at = $3
	`, customerID, signature, acceptedAt)
	if err != nil {
		return nil, err
	}
	return &domain.TermsStatus{Accepted: true, AcceptedAt: &acceptedAt}, nil
}

func (s *Store) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethodInfo, error) {
	query := `
		SELECT id, name, kind, bank_name, phone_number, account_number, wallet_address, qr_image_url, auto_verify, active
		FROM payment_methods
	`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	methods := make([]domain.PaymentMethodInfo, 0, 8)
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func scanPaymentMethod(row rowScanner) (domain.PaymentMethodInfo, error) {
	var m domain.PaymentMethodInfo
	var bankName, phone, account, wallet, qr sql.NullString
	if err := row.Scan(&m.ID, &m.Name, &m.Kind, &bankName, &phone, &account, &wallet, &qr, &m.AutoVerify, &m.Active); err != nil {
		return domain.PaymentMethodInfo{}, err
	}
	m.BankName = bankName.String
	m.PhoneNumber = phone.String
	m.AccountNumber = account.String
	m.WalletAddress = wallet.String
	m.QRImageURL = qr.String
	return m, nil
}

func (s *Store) GetPaymentMethodByID(ctx context.Context, id string) (*domain.PaymentMethodInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, bank_name, phone_number, account_number, wallet_address, qr_image_url, auto_verify, active
		FROM payment_methods
		WHERE id = $1
	`, id)

	method, err := scanPaymentMethod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &method, nil
}

func (s *Store) CreateRecharge(ctx context.Context, tx domain.RechargeTransaction) (*domain.RechargeTransaction, error) {
	if tx.CustomerID == "" || tx.AmountCents <= 0 {
		return nil, store.ErrInvalidInput
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

	// The partial unique index on reference_code covers open transactions
	// only, so a reference freed by a rejected or cancelled recharge can be
	// reused.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recharges (id, customer_id, amount_cents, payment_method_id, method_kind, reference_code, status, created_at, resolved_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, tx.ID, tx.CustomerID, tx.AmountCents, tx.PaymentMethodID, tx.MethodKind, tx.ReferenceCode, tx.Status, tx.CreatedAt, nullTime(tx.ResolvedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateReference
		}
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) GetRechargeByID(ctx context.Context, id string) (*domain.RechargeTransaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, amount_cents, payment_method_id, method_kind, reference_code, status, created_at, resolved_at
		FROM recharges
		WHERE id = $1
	`, id)

	tx, err := scanRecharge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func scanRecharge(row rowScanner) (domain.RechargeTransaction, error) {
	var tx domain.RechargeTransaction
	var resolvedAt sql.NullTime
	if err := row.Scan(&tx.ID, &tx.CustomerID, &tx.AmountCents, &tx.PaymentMethodID, &tx.MethodKind, &tx.ReferenceCode, &tx.Status, &tx.CreatedAt, &resolvedAt); err != nil {
		return domain.RechargeTransaction{}, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		tx.ResolvedAt = &t
	}
	return tx, nil
}

func (s *Store) FindRechargeByReference(ctx context.Context, reference string) (*domain.RechargeTransaction, error) {
	if reference == "" || reference == domain.PendingVerificationRef {
		return nil, store.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, amount_cents, payment_method_id, method_kind, reference_code, status, created_at, resolved_at
		FROM recharges
		WHERE reference_code = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, reference, domain.RechargeRejected, domain.RechargeCancelled)

	tx, err := scanRecharge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (s *Store) UpdateRechargeStatus(ctx context.Context, id string, status string, reference string, resolvedAt *time.Time) (*domain.RechargeTransaction, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recharges
		SET status = $2,
			reference_code = COALESCE(NULLIF($3, ''), reference_code),
			resolved_at = COALESCE($4, resolved_at)
		WHERE id = $1
	`, id, status, reference, nullTime(resolvedAt))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetRechargeByID(ctx, id)
}

func (s *Store) ListRecharges(ctx context.Context, customerID string, limit int) ([]domain.RechargeTransaction, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, customer_id, amount_cents, payment_method_id, method_kind, reference_code, status, created_at, resolved_at
		FROM recharges
	`
	args := []any{}
	if customerID != "" {
		query += ` WHERE customer_id = $1`
		args = append(args, customerID)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recharges := make([]domain.RechargeTransaction, 0, limit)
	for rows.Next() {
		tx, err := scanRecharge(rows)
		if err != nil {
			return nil, err
		}
		recharges = append(recharges, tx)
	}
	return recharges, rows.Err()
}

func (s *Store) CreateGiftCard(ctx context.Context, card domain.GiftCard) (*domain.GiftCard, error) {
	if card.Code == "" || card.AmountCents <= 0 || card.PurchaserID == "" {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gift_cards (id, code, denomination_id, amount_cents, purchaser_id, recipient_email, message, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, card.ID, card.Code, card.DenominationID, card.AmountCents, card.PurchaserID, card.RecipientEmail, nullIfEmpty(card.Message), card.Status, card.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := card
	return &created, nil
}

func (s *Store) GetGiftCardByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	var card domain.GiftCard
	var message sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, denomination_id, amount_cents, purchaser_id, recipient_email, message, status, created_at
		FROM gift_cards
		WHERE code = $1
	`, code).Scan(&card.ID, &card.Code, &card.DenominationID, &card.AmountCents, &card.PurchaserID, &card.RecipientEmail, &message, &card.Status, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	card.Message = message.String
	return &card, nil
}

func (s *Store) ListGiftCardsByPurchaser(ctx context.Context, purchaserID string, limit int) ([]domain.GiftCard, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, denomination_id, amount_cents, purchaser_id, recipient_email, message, status, created_at
		FROM gift_cards
		WHERE purchaser_id = $1
		ORDER BY created_at DESC
		LIMIT `+strconv.Itoa(limit), purchaserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]domain.GiftCard, 0, limit)
	for rows.Next() {
		var card domain.GiftCard
		var message sql.NullString
		if err := rows.Scan(&card.ID, &card.Code, &card.DenominationID, &card.AmountCents, &card.PurchaserID, &card.RecipientEmail, &message, &card.Status, &card.CreatedAt); err != nil {
			return nil, err
		}
		card.Message = message.String
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *Store) CreateInvite(ctx context.Context, invite domain.Invite) (*domain.Invite, error) {
	if invite.Email == "" {
		return nil, store.ErrInvalidInput
	}
	if invite.ID == "" {
		invite.ID = xid.New("inv")
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invites (id, email, invited_by, created_at)
		VALUES ($1,$2,$3,$4)
	`, invite.ID, invite.Email, invite.InvitedBy, invite.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := invite
	return &created, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, role, active, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, strings.TrimSpace(email)).Scan(&user.Username, &user.Email, &user.Password, &user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 || limit > 1000 {
		limit = 200
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
		LIMIT `+strconv.Itoa(limit), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, user.Username, user.Email, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, email, password_hash, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Email, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	if username == "" || password == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}
