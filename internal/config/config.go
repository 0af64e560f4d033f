package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"` // empty disables rate limiting
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		AppBaseURL   string `yaml:"app_base_url"` // used to build links in emails
	} `yaml:"email"`

	Auth struct {
		SessionTTLDays       int    `yaml:"session_ttl_days"`        // default 30
		RenewalThresholdDays int    `yaml:"renewal_threshold_days"`  // default 15
		ResetTokenTTLMin     int    `yaml:"reset_token_ttl_min"`     // default 15
		VerificationTTLHours int    `yaml:"verification_ttl_hours"`  // default 24
		OtpTTLMin            int    `yaml:"otp_ttl_min"`             // default 5
		InviteSecret         string `yaml:"invite_secret"`           // HMAC key for invitation JWTs
		InviteTTLDays        int    `yaml:"invite_ttl_days"`         // default 7
		PwnedCheckEnabled    bool   `yaml:"pwned_check_enabled"`     //
		RateLimitPerMinute   int    `yaml:"rate_limit_per_minute"`   // per-IP on /auth/*, default 30
	} `yaml:"auth"`

	Billing struct {
		MerchantLogin string `yaml:"merchant_login"`
		Password1     string `yaml:"password1"`
		Password2     string `yaml:"password2"`
		BaseURL       string `yaml:"base_url"`
		Currency      string `yaml:"currency"`
	} `yaml:"billing"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Username string `yaml:"username"`
	} `yaml:"admin"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or falls back to environment variables
// when DATABASE_URL is set (tests and container deployments).
func LoadConfig() {
	var cfg Config

	// Best effort; a missing .env is fine.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Auth.InviteSecret = os.Getenv("INVITE_SECRET")

	cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Email.SMTPPort, _ = strconv.Atoi(os.Getenv("SMTP_PORT"))
	cfg.Email.SMTPUsername = os.Getenv("SMTP_USER")
	cfg.Email.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Email.FromEmail = os.Getenv("SMTP_FROM")
	cfg.Email.AppBaseURL = os.Getenv("APP_BASE_URL")

	cfg.Billing.MerchantLogin = os.Getenv("BILLING_LOGIN")
	cfg.Billing.Password1 = os.Getenv("BILLING_PASSWORD1")
	cfg.Billing.Password2 = os.Getenv("BILLING_PASSWORD2")

	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")
	cfg.Admin.Username = os.Getenv("ADMIN_USERNAME")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Auth.SessionTTLDays == 0 {
		cfg.Auth.SessionTTLDays = 30
	}
	if cfg.Auth.RenewalThresholdDays == 0 {
		cfg.Auth.RenewalThresholdDays = 15
	}
	if cfg.Auth.ResetTokenTTLMin == 0 {
		cfg.Auth.ResetTokenTTLMin = 15
	}
	if cfg.Auth.VerificationTTLHours == 0 {
		cfg.Auth.VerificationTTLHours = 24
	}
	if cfg.Auth.OtpTTLMin == 0 {
		cfg.Auth.OtpTTLMin = 5
	}
	if cfg.Auth.InviteTTLDays == 0 {
		cfg.Auth.InviteTTLDays = 7
	}
	if cfg.Auth.RateLimitPerMinute == 0 {
		cfg.Auth.RateLimitPerMinute = 30
	}
	if cfg.Billing.BaseURL == "" {
		cfg.Billing.BaseURL = "https://auth.robokassa.kz/Merchant/Index.aspx"
	}
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "KZT"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
