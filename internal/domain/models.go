package domain

import "time"

// All monetary amounts are integer cents. Display conversion to other
// currencies happens at the edge and never feeds back into settlement.

const (
	ProductPhysical = "physical"
	ProductDigital  = "digital"
)

const (
	DeliveryPickup   = "pickup"
	DeliveryHome     = "home_delivery"
	DeliveryShipping = "shipping"
)

const (
	DiscountPending  = "pending"
	DiscountApproved = "approved"
	DiscountRejected = "rejected"
)

const (
	RechargePending   = "pending"
	RechargeVerified  = "verified"
	RechargeApproved  = "approved"
	RechargeRejected  = "rejected"
	RechargeCancelled = "cancelled"
)

// PendingVerificationRef is the sentinel reference stored for auto-verifiable
// recharges created before the customer knows the bank reference.
const PendingVerificationRef = "PENDING_VERIFICATION"

const (
	GiftCardIssued = "issued"
)

const (
	OrderCreated = "created"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Denomination is a distinct purchasable amount of a digital product, with
// its own cart-line identity separate from the base product.
type Denomination struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

type Product struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	CategoryID         string         `json:"category_id"`
	Type               string         `json:"type"`
	PriceCents         int64          `json:"price_cents"`
	WeightKg           float64        `json:"weight_kg"`
	Consolidable       bool           `json:"consolidable"`
	FixedShippingCents int64          `json:"fixed_shipping_cents"`
	Denominations      []Denomination `json:"denominations,omitempty"`
	Active             bool           `json:"active"`
}

type ProductCreateRequest struct {
	Name               string         `json:"name"`
	CategoryID         string         `json:"category_id"`
	Type               string         `json:"type"`
	PriceCents         int64          `json:"price_cents"`
	WeightKg           float64        `json:"weight_kg"`
	Consolidable       bool           `json:"consolidable"`
	FixedShippingCents int64          `json:"fixed_shipping_cents"`
	Denominations      []Denomination `json:"denominations,omitempty"`
}

type ProductUpdateRequest struct {
	Name               *string         `json:"name,omitempty"`
	CategoryID         *string         `json:"category_id,omitempty"`
	PriceCents         *int64          `json:"price_cents,omitempty"`
	WeightKg           *float64        `json:"weight_kg,omitempty"`
	Consolidable       *bool           `json:"consolidable,omitempty"`
	FixedShippingCents *int64          `json:"fixed_shipping_cents,omitempty"`
	Denominations      *[]Denomination `json:"denominations,omitempty"`
	Active             *bool           `json:"active,omitempty"`
}

// CartLine is one resolved cart entry. For digital products the ID is the
// denomination ID, so two tiers of the same gift card are distinct lines.
type CartLine struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	UnitPriceCents     int64   `json:"unit_price_cents"`
	Qty                int     `json:"qty"`
	Type               string  `json:"type"`
	WeightKg           float64 `json:"weight_kg"`
	Consolidable       bool    `json:"consolidable"`
	FixedShippingCents int64   `json:"fixed_shipping_cents"`
	ProductID          string  `json:"product_id"`
}

// CartLineRef is the client-supplied shape: an ID plus quantity. Prices and
// physical attributes are always resolved from the catalog server-side.
type CartLineRef struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

type Discount struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	Status           string     `json:"status"`
	RequestedPercent float64    `json:"requested_percent"`
	ApprovedPercent  float64    `json:"approved_percent"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type DiscountCreateRequest struct {
	ProductID        string  `json:"product_id"`
	RequestedPercent float64 `json:"requested_percent"`
	ExpiresAt        string  `json:"expires_at,omitempty"`
}

type DiscountApproveRequest struct {
	ApprovedPercent float64 `json:"approved_percent"`
	ManagerPIN      string  `json:"manager_pin"`
}

type DiscountRejectRequest struct {
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

// ShippingPolicy is the store-wide delivery configuration. The flat
// DeliveryFeeCents is what checkout charges; the per-kg fields are part of
// the documented settings payload but do not enter the checkout formula.
type ShippingPolicy struct {
	DeliveryEnabled            bool   `json:"delivery_enabled"`
	DeliveryFeeCents           int64  `json:"delivery_fee_cents"`
	FeePerKgCents              int64  `json:"fee_per_kg_cents"`
	MinConsolidatedFeeCents    int64  `json:"min_consolidated_fee_cents"`
	PackagingFeeCents          int64  `json:"packaging_fee_cents"`
	FreeShippingThresholdCents *int64 `json:"free_shipping_threshold_cents,omitempty"`
}

type StoreSettings struct {
	StoreName         string         `json:"store_name"`
	Shipping          ShippingPolicy `json:"shipping"`
	DisplayCurrencies []string       `json:"display_currencies"`
	HeroTitle         string         `json:"hero_title"`
	HeroSubtitle      string         `json:"hero_subtitle"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ExchangeRates are display-only conversion rates, never authoritative for
// settlement.
type ExchangeRates struct {
	VES       float64   `json:"VES"`
	EUR       float64   `json:"EUR,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

type OrderTotals struct {
	SubtotalCents      int64    `json:"subtotal_cents"`
	DiscountCents      int64    `json:"discount_cents"`
	ShippingCents      int64    `json:"shipping_cents"`
	TotalCents         int64    `json:"total_cents"`
	AppliedDiscountIDs []string `json:"applied_discount_ids"`
}

type QuoteRequest struct {
	DeliveryMethod string        `json:"delivery_method"`
	Lines          []CartLineRef `json:"lines"`
}

type QuoteResponse struct {
	Totals OrderTotals `json:"totals"`
	Lines  []CartLine  `json:"lines"`
}

type OrderCreateRequest struct {
	IdempotencyKey   string        `json:"idempotency_key"`
	DeliveryMethod   string        `json:"delivery_method"`
	PaymentMethodID  string        `json:"payment_method_id"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	Lines            []CartLineRef `json:"lines"`
}

type Order struct {
	ID                 string     `json:"id"`
	CustomerID         string     `json:"customer_id"`
	IdempotencyKey     string     `json:"idempotency_key"`
	DeliveryMethod     string     `json:"delivery_method"`
	PaymentMethodID    string     `json:"payment_method_id"`
	PaymentReference   string     `json:"payment_reference,omitempty"`
	SubtotalCents      int64      `json:"subtotal_cents"`
	DiscountCents      int64      `json:"discount_cents"`
	ShippingCents      int64      `json:"shipping_cents"`
	TotalCents         int64      `json:"total_cents"`
	AppliedDiscountIDs []string   `json:"applied_discount_ids"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	Lines              []CartLine `json:"lines"`
}

type OrderResponse struct {
	Order     Order `json:"order"`
	Duplicate bool  `json:"duplicate"`
}

// PaymentMethodInfo is one store-configured payment rail with the display
// metadata the checkout and recharge screens show.
type PaymentMethodInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	BankName      string `json:"bank_name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	QRImageURL    string `json:"qr_image_url,omitempty"`
	AutoVerify    bool   `json:"auto_verify"`
	Active        bool   `json:"active"`
}

type Balance struct {
	CustomerID  string    `json:"customer_id"`
	AmountCents int64     `json:"amount_cents"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BalanceDeductRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type RechargeRequest struct {
	AmountCents     int64  `json:"amount_cents"`
	PaymentMethodID string `json:"payment_method_id"`
	ReferenceCode   string `json:"reference_code,omitempty"`
}

type RechargeTransaction struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customer_id"`
	AmountCents     int64      `json:"amount_cents"`
	PaymentMethodID string     `json:"payment_method_id"`
	MethodKind      string     `json:"method_kind"`
	ReferenceCode   string     `json:"reference_code"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

type RechargeResponse struct {
	Transaction  RechargeTransaction `json:"transaction"`
	Outcome      string              `json:"outcome"`
	Message      string              `json:"message,omitempty"`
	BalanceCents int64               `json:"balance_cents"`
}

type RechargeResolveRequest struct {
	Approve    bool   `json:"approve"`
	ManagerPIN string `json:"manager_pin"`
}

type TermsStatus struct {
	Accepted   bool       `json:"accepted"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

type TermsAcceptRequest struct {
	Signature string `json:"signature"`
}

type GiftCardRequest struct {
	DenominationID string `json:"denomination_id"`
	RecipientEmail string `json:"recipient_email"`
	Message        string `json:"message,omitempty"`
}

type GiftCard struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	DenominationID string    `json:"denomination_id"`
	AmountCents    int64     `json:"amount_cents"`
	PurchaserID    string    `json:"purchaser_id"`
	RecipientEmail string    `json:"recipient_email"`
	Message        string    `json:"message,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type GiftCardResponse struct {
	GiftCard     GiftCard `json:"gift_card"`
	BalanceCents int64    `json:"balance_cents"`
}

type UserCheckResponse struct {
	Email  string `json:"email"`
	Exists bool   `json:"exists"`
}

type InviteRequest struct {
	Email string `json:"email"`
}

type Invite struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	InvitedBy string    `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CustomerCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CustomerUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Email     string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}
