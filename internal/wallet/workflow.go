// Package wallet implements the recharge workflow: method selection,
// payment verification against a gateway, and the approval decision.
package wallet

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"ventazo/backend/internal/domain"
)

// Workflow states.
const (
	StateSelectMethod  = "select_method"
	StateVerifyPayment = "verify_payment"
	StateApproved      = "approved"
	StatePendingReview = "pending_review"
	StateRejected      = "rejected"
	StateCancelled     = "cancelled"
)

// Verifier outcomes.
const (
	OutcomeConfirmed   = "confirmed"
	OutcomeUnconfirmed = "unconfirmed"
	OutcomeRejected    = "rejected"
)

var (
	ErrInvalidAmount     = errors.New("wallet: amount must be positive")
	ErrMethodRequired    = errors.New("wallet: payment method required")
	ErrReferenceRequired = errors.New("wallet: payment reference required")
	ErrNotVerifying      = errors.New("wallet: no payment awaiting verification")
	ErrVerifyInFlight    = errors.New("wallet: verification already in progress")
	ErrTerminalState     = errors.New("wallet: workflow already finished")
)

// VerificationRequest is what the gateway needs to confirm a payment.
type VerificationRequest struct {
	MethodKind    string `json:"method_kind"`
	ReferenceCode string `json:"reference_code"`
	AmountCents   int64  `json:"amount_cents"`
	CustomerID    string `json:"customer_id"`
}

// VerificationResult carries the gateway's decision. Outcome is one of
// the Outcome constants; Reason explains rejections.
type VerificationResult struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// Verifier checks a submitted payment against an external source.
// Implementations must respect ctx cancellation.
type Verifier interface {
	Verify(ctx context.Context, req VerificationRequest) (VerificationResult, error)
}

// Attempt is the payment the workflow is currently carrying.
type Attempt struct {
	AmountCents   int64
	MethodID      string
	MethodKind    string
	ReferenceCode string
	AutoVerify    bool
}

// Workflow drives a single recharge from method selection to a terminal
// decision. It is safe for concurrent use; only one verification may be
// in flight at a time.
type Workflow struct {
	mu       sync.Mutex
	state    string
	attempt  Attempt
	inFlight bool
	reason   string
}

func NewWorkflow() *Workflow {
	return &Workflow{state: StateSelectMethod}
}

func (w *Workflow) State() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Reason reports why the last verification rejected the payment.
func (w *Workflow) Reason() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reason
}

func (w *Workflow) Attempt() Attempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempt
}

// Begin records the selected method and moves to verification. Methods
// without automatic verification require a customer-supplied reference;
// auto-verified methods get the pending sentinel until the gateway
// reports the real one.
func (w *Workflow) Begin(amountCents int64, method domain.PaymentMethodInfo, referenceCode string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectMethod {
		return ErrTerminalState
	}
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	if method.ID == "" {
		return ErrMethodRequired
	}

	referenceCode = strings.TrimSpace(referenceCode)
	if method.AutoVerify && referenceCode == "" {
		referenceCode = domain.PendingVerificationRef
	}
	if referenceCode == "" {
		return ErrReferenceRequired
	}

	w.attempt = Attempt{
		AmountCents:   amountCents,
		MethodID:      method.ID,
		MethodKind:    method.Kind,
		ReferenceCode: referenceCode,
		AutoVerify:    method.AutoVerify,
	}
	w.state = StateVerifyPayment
	w.reason = ""
	return nil
}

// Verify runs the gateway check with a bounded timeout and applies the
// decision: confirmed approves, unconfirmed or a timed-out/erroring
// gateway parks the recharge for manual review, rejected sends the
// workflow back to method selection so the customer can retry.
func (w *Workflow) Verify(ctx context.Context, verifier Verifier, customerID string, timeout time.Duration) (string, error) {
	w.mu.Lock()
	if w.state != StateVerifyPayment {
		w.mu.Unlock()
		return w.state, ErrNotVerifying
	}
	if w.inFlight {
		w.mu.Unlock()
		return w.state, ErrVerifyInFlight
	}
	w.inFlight = true
	attempt := w.attempt
	w.mu.Unlock()

	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := verifier.Verify(verifyCtx, VerificationRequest{
		MethodKind:    attempt.MethodKind,
		ReferenceCode: attempt.ReferenceCode,
		AmountCents:   attempt.AmountCents,
		CustomerID:    customerID,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if w.state != StateVerifyPayment {
		// Cancelled while the gateway call was outstanding.
		return w.state, nil
	}

	if err != nil {
		// Gateway unreachable or timed out: never reject on our own,
		// hand the transaction to a human.
		w.state = StatePendingReview
		return w.state, nil
	}

	switch result.Outcome {
	case OutcomeConfirmed:
		w.state = StateApproved
	case OutcomeRejected:
		w.reason = result.Reason
		w.state = StateSelectMethod
		return StateRejected, nil
	default:
		w.state = StatePendingReview
	}
	return w.state, nil
}

// Cancel aborts the workflow from any non-terminal state. It refuses to
// race an in-flight verification.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight {
		return ErrVerifyInFlight
	}
	switch w.state {
	case StateApproved, StatePendingReview, StateRejected, StateCancelled:
		return ErrTerminalState
	}
	w.state = StateCancelled
	return nil
}

// ClampAmount normalizes a requested recharge amount to the configured
// bounds and step. Amounts are snapped down to the nearest step, then
// raised to the minimum if snapping undershot it.
func ClampAmount(amountCents, minCents, maxCents, stepCents int64) int64 {
	if maxCents > 0 && amountCents > maxCents {
		amountCents = maxCents
	}
	if stepCents > 1 {
		amountCents -= amountCents % stepCents
	}
	if minCents > 0 && amountCents < minCents {
		amountCents = minCents
	}
	return amountCents
}
