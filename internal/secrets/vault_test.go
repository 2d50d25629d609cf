package secrets

import (
	"context"
	"testing"
)

func TestVaultClientDisabledModeStoresInCache(t *testing.T) {
	c, err := NewVaultClient(VaultConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	creds := Credentials{Exchange: "binance", APIKey: "ak", SecretKey: "sk"}
	if err := c.StoreCredentials(context.Background(), creds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.GetCredentials(context.Background(), "binance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != creds {
		t.Errorf("expected %+v, got %+v", creds, got)
	}
}

func TestVaultClientDisabledModeMissingExchangeErrors(t *testing.T) {
	c, err := NewVaultClient(VaultConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.GetCredentials(context.Background(), "coinbase"); err == nil {
		t.Error("expected an error for an exchange that was never stored")
	}
}

func TestVaultClientDisabledModeIsHealthy(t *testing.T) {
	c, err := NewVaultClient(VaultConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("a disabled vault client should always report healthy, got %v", err)
	}
}
