package main

import (
	"testing"

	"ventazo/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short", ManagerPIN: "123456"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", ManagerPIN: "739154"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestValidatePINStrength(t *testing.T) {
	cases := []struct {
		pin     string
		wantErr bool
	}{
		{"739154", false},
		{"000000", true},
		{"123456", true},
		{"987654", true},
		{"555555", true},
		{"481206", false},
	}
	for _, tc := range cases {
		err := validatePINStrength(tc.pin)
		if tc.wantErr && err == nil {
			t.Errorf("pin %s: expected rejection", tc.pin)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("pin %s: unexpected error %v", tc.pin, err)
		}
	}
}
