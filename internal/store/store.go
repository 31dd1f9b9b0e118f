package store

import (
	"context"
	"errors"
	"time"

	"ventazo/backend/internal/domain"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("duplicate payment reference")
)

type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	// ResolveCartLines maps product or denomination IDs to fully priced cart
	// lines. Unknown or inactive IDs are absent from the result.
	ResolveCartLines(ctx context.Context, ids []string) (map[string]domain.CartLine, error)

	GetSettings(ctx context.Context) (*domain.StoreSettings, error)
	UpdateSettings(ctx context.Context, settings domain.StoreSettings) (*domain.StoreSettings, error)

	CreateDiscount(ctx context.Context, discount domain.Discount) (*domain.Discount, error)
	GetDiscountByID(ctx context.Context, id string) (*domain.Discount, error)
	ListDiscounts(ctx context.Context, status string, limit int) ([]domain.Discount, error)
	ListDiscountsForProducts(ctx context.Context, productIDs []string) ([]domain.Discount, error)
	UpdateDiscountStatus(ctx context.Context, id string, status string, approvedPercent float64) (*domain.Discount, error)

	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	FindOrderByIdempotency(ctx context.Context, key string) (*domain.Order, error)

	GetBalance(ctx context.Context, customerID string) (*domain.Balance, error)
	CreditBalance(ctx context.Context, customerID string, amountCents int64) (*domain.Balance, error)
	DeductBalance(ctx context.Context, customerID string, amountCents int64) (*domain.Balance, error)

	GetTermsAcceptance(ctx context.Context, customerID string) (*domain.TermsStatus, error)
	AcceptTerms(ctx context.Context, customerID string, signature string, at time.Time) (*domain.TermsStatus, error)

	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]domain.PaymentMethodInfo, error)
	GetPaymentMethodByID(ctx context.Context, id string) (*domain.PaymentMethodInfo, error)

	CreateRecharge(ctx context.Context, tx domain.RechargeTransaction) (*domain.RechargeTransaction, error)
	GetRechargeByID(ctx context.Context, id string) (*domain.RechargeTransaction, error)
	FindRechargeByReference(ctx context.Context, reference string) (*domain.RechargeTransaction, error)
	UpdateRechargeStatus(ctx context.Context, id string, status string, reference string, resolvedAt *time.Time) (*domain.RechargeTransaction, error)
	ListRecharges(ctx context.Context, customerID string, limit int) ([]domain.RechargeTransaction, error)

	CreateGiftCard(ctx context.Context, card domain.GiftCard) (*domain.GiftCard, error)
	GetGiftCardByCode(ctx context.Context, code string) (*domain.GiftCard, error)
	ListGiftCardsByPurchaser(ctx context.Context, purchaserID string, limit int) ([]domain.GiftCard, error)

	CreateInvite(ctx context.Context, invite domain.Invite) (*domain.Invite, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
