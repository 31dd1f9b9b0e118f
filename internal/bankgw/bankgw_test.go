package bankgw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ventazo/backend/internal/wallet"
)

func TestClientVerifyConfirmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payments/verify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}

		var req wallet.VerificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ReferenceCode != "REF-123" || req.AmountCents != 5000 {
			t.Errorf("unexpected request body: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"outcome":"confirmed"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	result, err := client.Verify(context.Background(), wallet.VerificationRequest{
		MethodKind:    "mobile_payment",
		ReferenceCode: "REF-123",
		AmountCents:   5000,
		CustomerID:    "cust-1",
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Outcome != wallet.OutcomeConfirmed {
		t.Fatalf("expected confirmed, got %+v", result)
	}
}

func TestClientVerifyRejectedWithReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outcome":"rejected","reason":"amount mismatch"}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL, "").Verify(context.Background(), wallet.VerificationRequest{ReferenceCode: "REF-1"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Outcome != wallet.OutcomeRejected || result.Reason != "amount mismatch" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClientVerifyGatewayErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "").Verify(context.Background(), wallet.VerificationRequest{}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestClientVerifyUnknownOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outcome":"maybe"}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "").Verify(context.Background(), wallet.VerificationRequest{}); err == nil {
		t.Fatal("expected error on unknown outcome")
	}
}

func TestManualReviewVerifier(t *testing.T) {
	result, err := ManualReviewVerifier{}.Verify(context.Background(), wallet.VerificationRequest{})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Outcome != wallet.OutcomeUnconfirmed {
		t.Fatalf("expected unconfirmed, got %+v", result)
	}
}
