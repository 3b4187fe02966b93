package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Webhooks WebhookConfig
	OpenAI   OpenAIConfig
	Billing  BillingConfig
}

type AppConfig struct {
	Env  string
	Port int

	// BaseURL is the externally visible URL of the dashboard (used in
	// notification links). Optional.
	BaseURL string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// WebhookConfig carries the externally hosted automation endpoints.
// Every URL is optional at startup: a missing URL disables the corresponding
// feature and is reported at call time, not at boot.
type WebhookConfig struct {
	NumberProvisioningURL string
	BotCreationURL        string
	AgentEditURL          string
	AgentBindURL          string
	AgentUnbindURL        string
	TextExtractionURL     string

	// Timeout applies to every outbound webhook call.
	Timeout time.Duration

	// ProvisioningTimeout applies to number provisioning only, which is
	// allowed a longer window than the rest.
	ProvisioningTimeout time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type BillingConfig struct {
	// AgentCreateCostMinor is the fixed charge (minor units) for committing
	// a brand-new or draft-promoted agent.
	AgentCreateCostMinor int64
	Currency             string
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.BaseURL = strings.TrimSpace(os.Getenv("APP_BASE_URL"))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")

	c.Webhooks.NumberProvisioningURL = strings.TrimSpace(os.Getenv("WEBHOOK_NUMBER_PROVISIONING_URL"))
	c.Webhooks.BotCreationURL = strings.TrimSpace(os.Getenv("WEBHOOK_BOT_CREATION_URL"))
	c.Webhooks.AgentEditURL = strings.TrimSpace(os.Getenv("WEBHOOK_AGENT_EDIT_URL"))
	c.Webhooks.AgentBindURL = strings.TrimSpace(os.Getenv("WEBHOOK_AGENT_BIND_URL"))
	c.Webhooks.AgentUnbindURL = strings.TrimSpace(os.Getenv("WEBHOOK_AGENT_UNBIND_URL"))
	c.Webhooks.TextExtractionURL = strings.TrimSpace(os.Getenv("WEBHOOK_TEXT_EXTRACTION_URL"))
	c.Webhooks.Timeout = mustDuration("WEBHOOK_TIMEOUT")
	c.Webhooks.ProvisioningTimeout = mustDuration("WEBHOOK_PROVISIONING_TIMEOUT")

	c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAI.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	c.OpenAI.Model = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))

	{
		v := strings.TrimSpace(os.Getenv("AGENT_CREATE_COST_MINOR"))
		if v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				parseErrs = append(parseErrs, fmt.Errorf("AGENT_CREATE_COST_MINOR must be an integer, got %q", v))
			}
			c.Billing.AgentCreateCostMinor = n
		}
	}
	c.Billing.Currency = strings.TrimSpace(os.Getenv("BILLING_CURRENCY"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.Webhooks.Timeout <= 0 {
		c.Webhooks.Timeout = 30 * time.Second
	}
	if c.Webhooks.ProvisioningTimeout <= 0 {
		c.Webhooks.ProvisioningTimeout = 30 * time.Second
	}

	if c.Billing.AgentCreateCostMinor < 0 {
		errs = append(errs, fmt.Errorf("AGENT_CREATE_COST_MINOR must be >= 0, got %d", c.Billing.AgentCreateCostMinor))
	}
	if c.Billing.AgentCreateCostMinor == 0 {
		// Default: one dollar per agent.
		c.Billing.AgentCreateCostMinor = 100
	}
	if c.Billing.Currency == "" {
		c.Billing.Currency = "USD"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}

	return joinErrors(errs)
}

// WarnOnMissingIntegrations reports missing webhook/AI configuration without
// failing startup. A missing URL disables the feature; callers surface the
// gap when the feature is actually used.
func (c Config) WarnOnMissingIntegrations(log *slog.Logger) {
	type entry struct{ key, val string }
	checks := []entry{
		{"WEBHOOK_NUMBER_PROVISIONING_URL", c.Webhooks.NumberProvisioningURL},
		{"WEBHOOK_BOT_CREATION_URL", c.Webhooks.BotCreationURL},
		{"WEBHOOK_AGENT_EDIT_URL", c.Webhooks.AgentEditURL},
		{"WEBHOOK_AGENT_BIND_URL", c.Webhooks.AgentBindURL},
		{"WEBHOOK_AGENT_UNBIND_URL", c.Webhooks.AgentUnbindURL},
		{"WEBHOOK_TEXT_EXTRACTION_URL", c.Webhooks.TextExtractionURL},
		{"OPENAI_API_KEY", c.OpenAI.APIKey},
	}
	for _, e := range checks {
		if e.val == "" {
			log.Warn("integration not configured", "env", e.key)
		}
	}
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
