package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("MANAGER_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.ManagerPIN != "" {
		t.Fatalf("expected empty MANAGER_PIN when unset, got %q", cfg.ManagerPIN)
	}
}

func TestLoadRechargeBounds(t *testing.T) {
	t.Setenv("RECHARGE_MIN_CENTS", "500")
	t.Setenv("RECHARGE_MAX_CENTS", "not-a-number")
	t.Setenv("RECHARGE_STEP_CENTS", "-5")

	cfg := Load()
	if cfg.RechargeMinCents != 500 {
		t.Fatalf("expected min 500, got %d", cfg.RechargeMinCents)
	}
	if cfg.RechargeMaxCents != 1000000 {
		t.Fatalf("expected fallback max, got %d", cfg.RechargeMaxCents)
	}
	if cfg.RechargeStepCents != 0 {
		t.Fatalf("expected fallback step, got %d", cfg.RechargeStepCents)
	}
}

func TestLoadVerifyTimeoutFallback(t *testing.T) {
	t.Setenv("VERIFY_TIMEOUT_SECONDS", "0")

	cfg := Load()
	if cfg.VerifyTimeoutSeconds != 15 {
		t.Fatalf("expected fallback verify timeout, got %d", cfg.VerifyTimeoutSeconds)
	}
}
