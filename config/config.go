package config

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// MissingVariablesError names every required variable that was not set.
type MissingVariablesError struct {
	Names []string
}

func (e *MissingVariablesError) Error() string {
	return ErrMissingEnvironmentVariables.Error() + ": " + strings.Join(e.Names, ", ")
}

func (e *MissingVariablesError) Is(target error) bool {
	return target == ErrMissingEnvironmentVariables
}

// Profile selects which variables are required.
type Profile int

const (
	ProfileServer Profile = iota
	ProfileImport
)

// Config holds application configuration
type Config struct {
	Env  string
	Port string

	DatabaseDriver string // postgres, mysql or sqlite
	DatabaseURL    string

	SessionSecret string
	SessionTTL    time.Duration

	AuthProvider   string // firebase or local
	FirebaseAPIKey string

	Sanity  Sanity
	Shopify Shopify

	StoreRetryAttempts int
	StoreRetryDelay    time.Duration
	StoreProbeInterval time.Duration

	FeaturedCourseSlug      string
	StrictCourseEntitlement bool

	SendGridAPIKey string
	MailFrom       string
	CORSOrigins    string
}

// Sanity holds content repository settings. Read and write tokens are kept apart
// so that reads can run with reduced privileges.
type Sanity struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	ReadToken  string
	WriteToken string
	UseCDN     bool
}

type Shopify struct {
	StoreDomain     string
	StorefrontToken string
	APIVersion      string
}

// Load reads .env (if present) and the process environment, then checks that
// every variable required by profile is set.
func Load(profile Profile) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}
	return fromViper(newViper(), profile)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("AUTH_PROVIDER", "firebase")
	v.SetDefault("SANITY_API_VERSION", "2024-01-01")
	v.SetDefault("SANITY_USE_CDN", false)
	v.SetDefault("SHOPIFY_API_VERSION", "2024-01")
	v.SetDefault("STORE_RETRY_ATTEMPTS", 2)
	v.SetDefault("STORE_RETRY_DELAY", "200ms")
	v.SetDefault("STORE_PROBE_INTERVAL", "30s")
	v.SetDefault("FEATURED_COURSE_SLUG", "fstop-to-success")
	v.SetDefault("STRICT_COURSE_ENTITLEMENT", false)
	v.SetDefault("MAIL_FROM", "no-reply@fstoptosuccess.com")
	v.SetDefault("CORS_ORIGINS", "*")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"DATABASE_URL", "SESSION_SECRET", "FIREBASE_API_KEY",
		"SANITY_PROJECT_ID", "SANITY_DATASET", "SANITY_READ_TOKEN", "SANITY_WRITE_TOKEN",
		"SHOPIFY_STORE_DOMAIN", "SHOPIFY_STOREFRONT_TOKEN", "SENDGRID_API_KEY",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func fromViper(v *viper.Viper, profile Profile) (*Config, error) {
	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		AuthProvider:   strings.ToLower(v.GetString("AUTH_PROVIDER")),
		FirebaseAPIKey: v.GetString("FIREBASE_API_KEY"),
		Sanity: Sanity{
			ProjectID:  v.GetString("SANITY_PROJECT_ID"),
			Dataset:    v.GetString("SANITY_DATASET"),
			APIVersion: v.GetString("SANITY_API_VERSION"),
			ReadToken:  v.GetString("SANITY_READ_TOKEN"),
			WriteToken: v.GetString("SANITY_WRITE_TOKEN"),
			UseCDN:     v.GetBool("SANITY_USE_CDN"),
		},
		Shopify: Shopify{
			StoreDomain:     v.GetString("SHOPIFY_STORE_DOMAIN"),
			StorefrontToken: v.GetString("SHOPIFY_STOREFRONT_TOKEN"),
			APIVersion:      v.GetString("SHOPIFY_API_VERSION"),
		},
		StoreRetryAttempts:      v.GetInt("STORE_RETRY_ATTEMPTS"),
		StoreRetryDelay:         v.GetDuration("STORE_RETRY_DELAY"),
		StoreProbeInterval:      v.GetDuration("STORE_PROBE_INTERVAL"),
		FeaturedCourseSlug:      v.GetString("FEATURED_COURSE_SLUG"),
		StrictCourseEntitlement: v.GetBool("STRICT_COURSE_ENTITLEMENT"),
		SendGridAPIKey:          v.GetString("SENDGRID_API_KEY"),
		MailFrom:                v.GetString("MAIL_FROM"),
		CORSOrigins:             v.GetString("CORS_ORIGINS"),
	}

	if missing := cfg.missing(profile); len(missing) > 0 {
		return nil, &MissingVariablesError{Names: missing}
	}
	return cfg, nil
}

func (c *Config) missing(profile Profile) []string {
	required := map[string]string{
		"SANITY_PROJECT_ID":  c.Sanity.ProjectID,
		"SANITY_DATASET":     c.Sanity.Dataset,
		"SANITY_WRITE_TOKEN": c.Sanity.WriteToken,
	}
	if profile == ProfileServer {
		required["SANITY_READ_TOKEN"] = c.Sanity.ReadToken
		required["SESSION_SECRET"] = c.SessionSecret
		required["SHOPIFY_STORE_DOMAIN"] = c.Shopify.StoreDomain
		required["SHOPIFY_STOREFRONT_TOKEN"] = c.Shopify.StorefrontToken
		if c.DatabaseDriver != "sqlite" {
			required["DATABASE_URL"] = c.DatabaseURL
		}
		if c.AuthProvider != "local" {
			required["FIREBASE_API_KEY"] = c.FirebaseAPIKey
		}
	}

	var names []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
