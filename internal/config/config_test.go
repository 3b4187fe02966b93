package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voiceagent", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "voiceagent"
	c.Auth.JWTAudience = "dashboard"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_WebhookDefaultsApplied(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Webhooks.Timeout != 30*time.Second {
		t.Fatalf("expected 30s webhook timeout default, got %v", c.Webhooks.Timeout)
	}
	if c.Webhooks.ProvisioningTimeout != 30*time.Second {
		t.Fatalf("expected 30s provisioning timeout default, got %v", c.Webhooks.ProvisioningTimeout)
	}
}

func TestValidate_MissingWebhookURLsDoNotFail(t *testing.T) {
	// Missing integration URLs must never block startup; they only disable
	// the corresponding feature.
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error with empty webhook config, got %v", err)
	}
}

func TestValidate_BillingDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Billing.AgentCreateCostMinor != 100 {
		t.Fatalf("expected default create cost 100, got %d", c.Billing.AgentCreateCostMinor)
	}
	if c.Billing.Currency != "USD" {
		t.Fatalf("expected default currency USD, got %q", c.Billing.Currency)
	}
}
