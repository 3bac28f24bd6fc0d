package bookshop

import (
	"os"
	"strconv"
	"time"
)

// AppConfig is the concrete Config used by cmd/server. Values come
// from environment variables layered over development defaults.
//
// NOTE: the defaults are insecure and exist only so the server runs
// out of the box; override them in any real deployment.
type AppConfig struct {
	ListenAddr  string
	BaseURL     string
	DatabaseDSN string

	SigningKey          string
	SigningMethod       string
	Issuer              string
	AuthScheme          string
	TokenExpiration     time.Duration
	AuthTokenExpiration time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

var _ Config = (*AppConfig)(nil)

// LoadConfig builds an AppConfig from defaults overlaid with
// BOOKSHOP_* environment variables.
func LoadConfig() *AppConfig {
	cfg := &AppConfig{}
	cfg.loadDefaults()
	cfg.loadEnv()
	return cfg
}

func (c *AppConfig) loadDefaults() {
	c.ListenAddr = ":8080"
	c.BaseURL = "http://localhost:8080"
	c.DatabaseDSN = "file:bookshop.db?cache=shared&mode=rwc"
	c.SigningKey = "dev-signing-key"
	c.SigningMethod = "HS256"
	c.Issuer = "bookshop"
	c.AuthScheme = "Bearer"
	c.TokenExpiration = 15 * time.Minute
	c.AuthTokenExpiration = 24 * time.Hour
	c.SMTPHost = "localhost"
	c.SMTPPort = 25
	c.MailFrom = "no-reply@localhost"
}

func (c *AppConfig) loadEnv() {
	setString(&c.ListenAddr, "BOOKSHOP_LISTEN_ADDR")
	setString(&c.BaseURL, "BOOKSHOP_BASE_URL")
	setString(&c.DatabaseDSN, "BOOKSHOP_DATABASE_DSN")
	setString(&c.SigningKey, "BOOKSHOP_SIGNING_KEY")
	setString(&c.SigningMethod, "BOOKSHOP_SIGNING_METHOD")
	setString(&c.Issuer, "BOOKSHOP_ISSUER")
	setString(&c.AuthScheme, "BOOKSHOP_AUTH_SCHEME")
	setDuration(&c.TokenExpiration, "BOOKSHOP_TOKEN_EXPIRATION")
	setDuration(&c.AuthTokenExpiration, "BOOKSHOP_AUTH_TOKEN_EXPIRATION")
	setString(&c.SMTPHost, "BOOKSHOP_SMTP_HOST")
	setInt(&c.SMTPPort, "BOOKSHOP_SMTP_PORT")
	setString(&c.SMTPUsername, "BOOKSHOP_SMTP_USERNAME")
	setString(&c.SMTPPassword, "BOOKSHOP_SMTP_PASSWORD")
	setString(&c.MailFrom, "BOOKSHOP_MAIL_FROM")
}

func (c *AppConfig) GetSigningKey() string                 { return c.SigningKey }
func (c *AppConfig) GetSigningMethod() string              { return c.SigningMethod }
func (c *AppConfig) GetIssuer() string                     { return c.Issuer }
func (c *AppConfig) GetAuthScheme() string                 { return c.AuthScheme }
func (c *AppConfig) GetTokenExpiration() time.Duration     { return c.TokenExpiration }
func (c *AppConfig) GetAuthTokenExpiration() time.Duration { return c.AuthTokenExpiration }

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
