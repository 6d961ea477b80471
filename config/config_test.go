package config

import (
	"errors"
	"testing"
)

func validConfig() Config {
	return Config{
		Chain: ChainConfig{
			GatewayURL:      "http://localhost:8545",
			ContractAddress: "0x1234",
			ProjectID:       "proj-1",
			RequestTimeout:  10,
		},
		Analytics: AnalyticsConfig{
			StorageKey:     "analytics:events",
			Capacity:       5000,
			RefreshSeconds: 5,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
}

func TestValidate_MissingContractAddressIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.Chain.ContractAddress = ""

	if err := Validate(cfg); !errors.Is(err, ErrMissingContractAddress) {
		t.Fatalf("Expected ErrMissingContractAddress, got %v", err)
	}
}

func TestValidate_MissingProjectIDIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.Chain.ProjectID = ""

	if err := Validate(cfg); !errors.Is(err, ErrMissingProjectID) {
		t.Fatalf("Expected ErrMissingProjectID, got %v", err)
	}
}

func TestValidate_NonPositiveCapacityRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Analytics.Capacity = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected zero capacity to be rejected")
	}
}
