package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GUARD"

type AppConfig struct {
	App     AppSettings     `mapstructure:"app"`
	Policy  PolicySettings  `mapstructure:"policy"`
	Login   LoginSettings   `mapstructure:"login"`
	TOTP    TOTPSettings    `mapstructure:"totp"`
	Argon2  Argon2Settings  `mapstructure:"argon2"`
	Metrics MetricsSettings `mapstructure:"metrics"`
	Dataset DatasetSettings `mapstructure:"dataset"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// PolicySettings configures password scoring and renewal rules
type PolicySettings struct {
	MinLength        int `mapstructure:"min_length"`
	MinEntropyScore  int `mapstructure:"min_entropy_score"`
	HistorySize      int `mapstructure:"history_size"`
	RenewalMonths    int `mapstructure:"renewal_months"`
	SimilarityWindow int `mapstructure:"similarity_window"`
	DictionaryRun    int `mapstructure:"dictionary_run"`
	KeyboardRun      int `mapstructure:"keyboard_run"`
}

type LoginSettings struct {
	MaxAttempts int `mapstructure:"max_attempts"`
}

// TOTPSettings configures the second factor
type TOTPSettings struct {
	Period      time.Duration `mapstructure:"period"`
	Digits      int           `mapstructure:"digits"`
	Window      time.Duration `mapstructure:"window"`
	SecretBytes int           `mapstructure:"secret_bytes"`
}

// Argon2Settings configures Argon2id password hashing parameters
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// MetricsSettings controls the optional Prometheus endpoint; an empty Addr disables it.
type MetricsSettings struct {
	Addr string `mapstructure:"addr"`
}

type DatasetSettings struct {
	WordlistFile string `mapstructure:"wordlist_file"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"policy.min_length",
		"policy.min_entropy_score",
		"policy.history_size",
		"policy.renewal_months",
		"policy.similarity_window",
		"policy.dictionary_run",
		"policy.keyboard_run",
		"login.max_attempts",
		"totp.period",
		"totp.digits",
		"totp.window",
		"totp.secret_bytes",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"metrics.addr",
		"dataset.wordlist_file",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Login.MaxAttempts <= 0 {
		return fmt.Errorf("login.max_attempts must be positive, got %d", c.Login.MaxAttempts)
	}
	if c.TOTP.Period <= 0 || c.TOTP.Window <= 0 {
		return fmt.Errorf("totp.period and totp.window must be positive")
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 8 {
		return fmt.Errorf("totp.digits must be between 6 and 8, got %d", c.TOTP.Digits)
	}
	if c.Policy.MinEntropyScore < 0 || c.Policy.MinEntropyScore > 4 {
		return fmt.Errorf("policy.min_entropy_score must be between 0 and 4, got %d", c.Policy.MinEntropyScore)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "account-guard")
	v.SetDefault("app.env", "development")

	v.SetDefault("policy.min_length", 8)
	v.SetDefault("policy.min_entropy_score", 0)
	v.SetDefault("policy.history_size", 3)
	v.SetDefault("policy.renewal_months", 6)
	v.SetDefault("policy.similarity_window", 4)
	v.SetDefault("policy.dictionary_run", 4)
	v.SetDefault("policy.keyboard_run", 3)

	v.SetDefault("login.max_attempts", 5)

	v.SetDefault("totp.period", "30s")
	v.SetDefault("totp.digits", 6)
	v.SetDefault("totp.window", "180s")
	v.SetDefault("totp.secret_bytes", 20)

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("dataset.wordlist_file", "")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envPrefix+"_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
