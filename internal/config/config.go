package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Decimal embeds decimal.Decimal so rate values can appear as plain
// YAML scalars. yaml.v3 does not consult encoding.TextUnmarshaler.
type Decimal struct {
	decimal.Decimal
}

func Dec(d decimal.Decimal) Decimal { return Decimal{d} }

func (d *Decimal) UnmarshalYAML(node *yaml.Node) error {
	v, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", node.Value, err)
	}
	d.Decimal = v
	return nil
}

func (d Decimal) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	Pricing  Pricing        `yaml:"pricing"`
	Policy   Policy         `yaml:"policy"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

func (c RedisConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// Pricing holds the externally supplied rate configuration. Nothing in
// the pricing engine is hardcoded; regional differences live here.
type Pricing struct {
	Currency         string   `yaml:"currency"`
	CityTaxPercent   Decimal  `yaml:"city_tax_percent"`
	VATPercent       Decimal  `yaml:"vat_percent"`
	DiscountAfterTax bool     `yaml:"discount_after_tax"`
	Seasons          []Season `yaml:"seasons"`
}

// Season is a month-day window resolving a seasonal-pricing label.
// From is inclusive, To exclusive; the window may wrap the year end.
type Season struct {
	Label string `yaml:"label"`
	From  string `yaml:"from"` // MM-DD
	To    string `yaml:"to"`   // MM-DD
}

// Contains reports whether the given date falls inside the window.
func (s Season) Contains(d time.Time) bool {
	md := d.Format("01-02")
	if s.From <= s.To {
		return md >= s.From && md < s.To
	}
	return md >= s.From || md < s.To
}

// Policy holds the business rules that the source material leaves to
// the operator: confirmation threshold, refund schedule, house hours.
type Policy struct {
	DepositPercent Decimal      `yaml:"deposit_percent"`
	RefundSchedule []RefundRule `yaml:"refund_schedule"`
	CheckInHour    int          `yaml:"check_in_hour"`
	CheckOutHour   int          `yaml:"check_out_hour"`
}

// RefundRule maps a minimum cancellation lead time in days to the
// percentage of the paid amount returned. First matching rule wins.
type RefundRule struct {
	MinLeadDays int     `yaml:"min_lead_days"`
	Percent     Decimal `yaml:"percent"`
}

// RefundPercent resolves the refund percentage for a cancellation made
// leadDays before check-in. No matching rule means no refund.
func (p Policy) RefundPercent(leadDays int) decimal.Decimal {
	for _, r := range p.RefundSchedule {
		if leadDays >= r.MinLeadDays {
			return r.Percent.Decimal
		}
	}
	return decimal.Zero
}

// Load reads the YAML config file and applies environment overrides.
// A missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App:  AppConfig{Name: "innkeeper", Environment: "dev", Version: "dev"},
		HTTP: HTTPConfig{Port: 8080},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			LockTTLSeconds: 10,
		},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Auth:    AuthConfig{TokenTTLHours: 24},
		Pricing: Pricing{
			Currency:       "EUR",
			CityTaxPercent: Dec(decimal.NewFromInt(5)),
			VATPercent:     Dec(decimal.NewFromInt(7)),
		},
		Policy: Policy{
			DepositPercent: Dec(decimal.NewFromInt(20)),
			RefundSchedule: []RefundRule{
				{MinLeadDays: 7, Percent: Dec(decimal.NewFromInt(100))},
				{MinLeadDays: 2, Percent: Dec(decimal.NewFromInt(50))},
			},
			CheckInHour:  14,
			CheckOutHour: 11,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = port
		}
	}
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (or DATABASE_URL)")
	}
	if c.Pricing.Currency == "" {
		return fmt.Errorf("pricing.currency is required")
	}
	if c.Policy.CheckInHour < 0 || c.Policy.CheckInHour > 23 ||
		c.Policy.CheckOutHour < 0 || c.Policy.CheckOutHour > 23 {
		return fmt.Errorf("policy check-in/check-out hours must be 0..23")
	}
	for i, s := range c.Pricing.Seasons {
		if s.Label == "" || len(s.From) != 5 || len(s.To) != 5 {
			return fmt.Errorf("pricing.seasons[%d]: label and MM-DD from/to are required", i)
		}
	}
	return nil
}
