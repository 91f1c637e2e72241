package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"fsreport/internal/logger"
	"fsreport/internal/qrpayment"
	"fsreport/pkg/models"
)

// EnvPrefix prefixes environment overrides, e.g. FSREPORT_FAKTUROID_CLIENT_SECRET.
const EnvPrefix = "FSREPORT"

type Config struct {
	// Filing period
	Period models.Period `mapstructure:"period"`

	// Fakturoid API access
	Fakturoid Fakturoid `mapstructure:"fakturoid"`

	// Filer identity
	User    models.User    `mapstructure:"user"`
	Account models.Account `mapstructure:"account"`

	// Output directory, reports land in <Output>/<year>_<month>
	Output       string `mapstructure:"output" validate:"required"`
	TemplatesDir string `mapstructure:"templates_dir"`

	// Merge expenses from <Output>/<year>_<month>/expenses.json
	UseExpenseCache bool `mapstructure:"use_expense_cache"`

	Payment Payment `mapstructure:"payment"`
	Summary bool    `mapstructure:"summary"`
	Sheets  Sheets  `mapstructure:"sheets"`
	Log     Log     `mapstructure:"log"`

	// Counterparty allow-lists
	ValidClientVatNumbers   []VatNumber `mapstructure:"valid_client_vat_numbers" validate:"dive"`
	ValidSupplierVatNumbers []VatNumber `mapstructure:"valid_supplier_vat_numbers" validate:"dive"`
}

type Fakturoid struct {
	Slug         string `mapstructure:"slug" validate:"required"`
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" validate:"required"`
	Email        string `mapstructure:"email" validate:"required,email"`
}

type Payment struct {
	Enabled bool   `mapstructure:"enabled"`
	Message string `mapstructure:"message" validate:"max=60"`
}

type Sheets struct {
	URL       string `mapstructure:"url"`
	Worksheet string `mapstructure:"worksheet"`
}

type Log struct {
	Level      string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format     string `mapstructure:"format" validate:"oneof=console json"`
	TimeFormat string `mapstructure:"time_format"`
	Output     string `mapstructure:"output"`
}

// VatNumber is one allow-list entry.
type VatNumber struct {
	Name   string `mapstructure:"name"`
	Number string `mapstructure:"number" validate:"required"`
}

// secrets are bound explicitly so they can live only in the environment
var secrets = []string{
	"fakturoid.client_id",
	"fakturoid.client_secret",
	"fakturoid.email",
	"fakturoid.slug",
	"sheets.url",
}

// Load reads the JSON configuration file at path, applies FSREPORT_* environment
// overrides and validates the result. A non-empty period (YYYY-MM) replaces
// the configured one.
func Load(path, period string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for _, key := range secrets {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if period != "" {
		p, err := models.ParsePeriod(period)
		if err != nil {
			return nil, err
		}
		cfg.Period = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "./reports")
	v.SetDefault("payment.enabled", true)
	v.SetDefault("payment.message", "DPH")
	v.SetDefault("summary", false)
	v.SetDefault("sheets.worksheet", "VAT")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.output", "stdout")
}

// Validate checks struct constraints, the payment account and the filing period.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Payment.Enabled {
		if strings.TrimSpace(c.Account.FsTaxAccount) == "" {
			return errors.New("Config.Account.FsTaxAccount is required when payment.enabled is set")
		}
		if _, err := qrpayment.ToIBAN(c.Account.FsTaxAccount); err != nil {
			return fmt.Errorf("Config.Account.FsTaxAccount: %w", err)
		}
	}
	return c.Period.Validate()
}

// ClientAllowList returns the known client VAT numbers.
func (c *Config) ClientAllowList() models.VatAllowList {
	return allowList(c.ValidClientVatNumbers)
}

// SupplierAllowList returns the known supplier VAT numbers.
func (c *Config) SupplierAllowList() models.VatAllowList {
	return allowList(c.ValidSupplierVatNumbers)
}

func allowList(entries []VatNumber) models.VatAllowList {
	list := make(models.VatAllowList, len(entries))
	for _, e := range entries {
		list[strings.TrimSpace(e.Number)] = e.Name
	}
	return list
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		TimeFormat: c.Log.TimeFormat,
		Output:     c.Log.Output,
	}
}
