package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ventazo/backend/internal/bankgw"
	"ventazo/backend/internal/domain"
	"ventazo/backend/internal/service"
	"ventazo/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, nil, bankgw.ManualReviewVerifier{}, 2*time.Second, service.RechargeBounds{
		MinCents: 100,
		MaxCents: 1000000,
	})
	auth := NewAuthManager("test-secret-key", time.Hour, "123456", repo)

	return New(svc, auth, "*")
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleProducts_WithValidToken(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["products"] == nil {
		t.Fatalf("expected products key in response, got %v", body)
	}
}

func TestHandleProducts_CreateRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.ProductCreateRequest{
		Name:       "Cafe Molido 500g",
		CategoryID: "cat-grocery",
		Type:       domain.ProductPhysical,
		PriceCents: 850,
		WeightKg:   0.5,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer product create, got %d", rec.Code)
	}
}

func TestHandleQuote_PickupSkipsShipping(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.QuoteRequest{
		DeliveryMethod: domain.DeliveryPickup,
		Lines: []domain.CartLineRef{
			{ID: "prod-earbuds", Qty: 1},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/quote", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.QuoteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Totals.SubtotalCents != 4599 {
		t.Fatalf("expected subtotal 4599, got %d", resp.Totals.SubtotalCents)
	}
	if resp.Totals.ShippingCents != 0 {
		t.Fatalf("expected zero shipping for pickup, got %d", resp.Totals.ShippingCents)
	}
}

func TestHandleQuote_UnknownLineRejected(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.QuoteRequest{
		DeliveryMethod: domain.DeliveryPickup,
		Lines: []domain.CartLineRef{
			{ID: "prod-nonexistent", Qty: 1},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/quote", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown cart line, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleRecharge_TermsGate(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.RechargeRequest{
		AmountCents:     5000,
		PaymentMethodID: "pm-transfer",
		ReferenceCode:   "REF-0001",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customer/balance/recharge", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before terms acceptance, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleRecharge_PendingReviewFlow(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")
	csrf := fetchCSRFToken(t, api)

	acceptTerms(t, handler, token, csrf)

	payload, _ := json.Marshal(domain.RechargeRequest{
		AmountCents:     5000,
		PaymentMethodID: "pm-transfer",
		ReferenceCode:   "REF-0002",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customer/balance/recharge", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.RechargeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Outcome != "pending_review" {
		t.Fatalf("expected pending_review outcome, got %q", resp.Outcome)
	}
	if resp.Transaction.Status != domain.RechargePending {
		t.Fatalf("expected pending transaction, got %q", resp.Transaction.Status)
	}
}

func TestHandleRecharge_DuplicateReferenceConflict(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")
	csrf := fetchCSRFToken(t, api)

	acceptTerms(t, handler, token, csrf)

	payload, _ := json.Marshal(domain.RechargeRequest{
		AmountCents:     5000,
		PaymentMethodID: "pm-transfer",
		ReferenceCode:   "REF-0003",
	})
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customer/balance/recharge", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-CSRF-Token", csrf)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusCreated {
			t.Fatalf("first recharge expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
		}
		if i == 1 && rec.Code != http.StatusConflict {
			t.Fatalf("duplicate reference expected 409, got %d (body: %s)", rec.Code, rec.Body.String())
		}
	}
}

func TestHandleUserCheck(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/check?email=maria@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.UserCheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !resp.Exists {
		t.Fatalf("expected seeded customer email to exist")
	}
}

func TestHandleDiscounts_ForbiddenForCustomer(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "maria", "customer123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer on discounts, got %d", rec.Code)
	}
}

// acceptTerms posts the wallet terms acceptance for the authenticated customer.
func acceptTerms(t *testing.T, handler http.Handler, token, csrf string) {
	t.Helper()

	payload, _ := json.Marshal(domain.TermsAcceptRequest{Signature: "maria"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customer/balance/terms", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("accept terms failed: %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func loginAs(t *testing.T, api *API, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	api.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s failed, status %d", username, rec.Code)
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if payload.AccessToken == "" {
		t.Fatalf("expected access token in login response")
	}
	return payload.AccessToken
}
