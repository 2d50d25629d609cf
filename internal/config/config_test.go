package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPassesValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Engine.BuyThreshold = -0.5
	cfg.Engine.SellThreshold = 0.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected an inverted buy/sell threshold to fail validation")
	}
}

func TestValidateRejectsNegativeDetectorWeight(t *testing.T) {
	cfg := Default()
	cfg.Engine.DetectorWeights = map[string]float64{"macd": -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a negative detector weight to fail validation")
	}
}

func TestValidateRejectsCrossedVolumeFilterThresholds(t *testing.T) {
	cfg := Default()
	cfg.VolumeFilter.RejectThreshold = 2.0
	cfg.VolumeFilter.BoostThreshold = 1.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected reject_threshold >= boost_threshold to fail validation")
	}
}

func TestLoadAppliesEnvOverrideOverFileAndDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"backtest":{"symbol":"ETHUSDT","initial_capital":5000}}`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("BACKTEST_INITIAL_CAPITAL", "7500")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backtest.Symbol != "ETHUSDT" {
		t.Errorf("expected file value to win over default, got %q", cfg.Backtest.Symbol)
	}
	if cfg.Backtest.InitialCapital != 7500 {
		t.Errorf("expected env override to win over file, got %v", cfg.Backtest.InitialCapital)
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backtest.Symbol != Default().Backtest.Symbol {
		t.Errorf("expected default symbol when no file present, got %q", cfg.Backtest.Symbol)
	}
}

func TestToVolumeFilterUsesConfiguredThresholds(t *testing.T) {
	cfg := Default()
	cfg.VolumeFilter.Lookback = 20
	f := cfg.ToVolumeFilter()
	if f.Lookback != 20 {
		t.Errorf("expected lookback 20, got %d", f.Lookback)
	}
}
